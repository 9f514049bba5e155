package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Ngechemoris1/payup/internal/bill"
	billPostgres "github.com/Ngechemoris1/payup/internal/bill/postgres"
	"github.com/Ngechemoris1/payup/internal/mpesa"
	"github.com/Ngechemoris1/payup/pkg/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers: the STK sandbox simulator and the overdue-bill sweeper.`,
}

// Sandbox simulator command
var simulatorWorkerCmd = &cobra.Command{
	Use:   "simulator",
	Short: "Start the STK push sandbox simulator",
	Long: `Run a local stand-in for the M-Pesa sandbox. It accepts OAuth and STK
push requests on a local port and posts asynchronous callbacks to the
configured webhook. Point MPESA_BASE_URL at it during development.`,
	Run: func(cmd *cobra.Command, args []string) {
		startSimulatorWorker()
	},
}

// Overdue bill sweeper command
var billsWorkerCmd = &cobra.Command{
	Use:   "bills",
	Short: "Start the overdue-bill sweeper",
	Long:  `Periodically marks OPEN bills past their due date as OVERDUE.`,
	Run: func(cmd *cobra.Command, args []string) {
		startBillsWorker()
	},
}

var (
	maxWorkers    int
	jobQueueSize  int
	successRate   float32
	simulatorPort int
	webhookURL    string
	sweepInterval time.Duration
)

func startSimulatorWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.LoggerWrapper()

	hook := webhookURL
	if hook == "" {
		hook = fmt.Sprintf("http://localhost:%d/api/v1/payments/mpesa/callback", config.Server.Port)
	}

	simulator := mpesa.NewSimulator(mpesa.SimulatorConfig{
		WebhookURL:   hook,
		MaxWorkers:   maxWorkers,
		JobQueueSize: jobQueueSize,
		SuccessRate:  successRate,
	}, lg)

	mux := http.NewServeMux()

	// Token endpoint; the sandbox accepts any Basic credentials.
	mux.HandleFunc("/oauth/v1/generate", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "sandbox-token",
			"expires_in":   3599,
		})
	})

	mux.HandleFunc("/mpesa/stkpush/v1/processrequest", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CheckoutOverride string `json:"CheckoutRequestID"`
			PhoneNumber      string `json:"PhoneNumber"`
			Amount           int64  `json:"Amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		checkoutRequestID := req.CheckoutOverride
		if checkoutRequestID == "" {
			checkoutRequestID = fmt.Sprintf("ws_CO_%d", time.Now().UnixNano())
		}

		if err := simulator.Enqueue(mpesa.CallbackJob{
			CheckoutRequestID: checkoutRequestID,
			PhoneNumber:       req.PhoneNumber,
			Amount:            decimal.NewFromInt(req.Amount),
		}); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"MerchantRequestID":   fmt.Sprintf("sim-%d", time.Now().UnixNano()),
			"CheckoutRequestID":   checkoutRequestID,
			"ResponseCode":        "0",
			"ResponseDescription": "Success. Request accepted for processing",
			"CustomerMessage":     "Success. Request accepted for processing",
		})
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", simulatorPort),
		Handler: mux,
	}

	lg.Info("sandbox simulator listening",
		"port", simulatorPort,
		"webhook_url", hook)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Error("simulator server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	lg.Info("received signal, shutting down simulator", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		lg.Error("simulator server shutdown error", "error", err)
	}
	simulator.Shutdown()
}

func startBillsWorker() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg := logger.LoggerWrapper()

	sqlDB, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init db: %v\n", err)
		os.Exit(1)
	}

	gormDB, err := initGormDB(sqlDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init orm: %v\n", err)
		os.Exit(1)
	}

	billService := bill.NewService(billPostgres.NewBillRepository(gormDB), lg)

	lg.Info("overdue-bill sweeper started", "interval", sweepInterval)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			if _, err := billService.MarkOverdueBills(); err != nil {
				lg.Error("overdue sweep failed", "error", err)
			}
		case sig := <-sigChan:
			lg.Info("received signal, shutting down sweeper", "signal", sig)
			_ = sqlDB.Close()
			return
		}
	}
}

func init() {
	simulatorWorkerCmd.Flags().IntVar(&maxWorkers, "max-workers", 0, "Maximum number of simulator workers")
	simulatorWorkerCmd.Flags().IntVar(&jobQueueSize, "job-queue-size", 0, "Job queue buffer size")
	simulatorWorkerCmd.Flags().Float32Var(&successRate, "success-rate", 0.9, "Fraction of pushes that succeed")
	simulatorWorkerCmd.Flags().IntVar(&simulatorPort, "port", 9090, "Port for the sandbox endpoints")
	simulatorWorkerCmd.Flags().StringVar(&webhookURL, "webhook-url", "", "Callback webhook URL (defaults to the local server)")

	billsWorkerCmd.Flags().DurationVar(&sweepInterval, "interval", time.Hour, "How often to sweep for overdue bills")

	workerCmd.AddCommand(simulatorWorkerCmd)
	workerCmd.AddCommand(billsWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
