package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Ngechemoris1/payup/internal"
	"github.com/Ngechemoris1/payup/internal/auth"
	authPostgres "github.com/Ngechemoris1/payup/internal/auth/postgres"
	"github.com/Ngechemoris1/payup/internal/bill"
	billPostgres "github.com/Ngechemoris1/payup/internal/bill/postgres"
	"github.com/Ngechemoris1/payup/internal/core/events"
	"github.com/Ngechemoris1/payup/internal/mpesa"
	"github.com/Ngechemoris1/payup/internal/notification"
	"github.com/Ngechemoris1/payup/internal/payment"
	paymentPostgres "github.com/Ngechemoris1/payup/internal/payment/postgres"
	"github.com/Ngechemoris1/payup/internal/property"
	propertyPostgres "github.com/Ngechemoris1/payup/internal/property/postgres"
	"github.com/Ngechemoris1/payup/internal/tenant"
	tenantPostgres "github.com/Ngechemoris1/payup/internal/tenant/postgres"
	"github.com/Ngechemoris1/payup/internal/transport"
	"github.com/Ngechemoris1/payup/internal/transport/rest"
	"github.com/Ngechemoris1/payup/internal/user"
	userPostgres "github.com/Ngechemoris1/payup/internal/user/postgres"
	"github.com/Ngechemoris1/payup/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger

	AuthHandler     *auth.Handler
	UserHandler     *user.Handler
	TenantHandler   *tenant.Handler
	PropertyHandler *property.Handler
	BillHandler     *bill.Handler
	PaymentHandler  *payment.Handler
	WebhookHandler  *payment.WebhookHandler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		deps.AuthHandler,
		deps.UserHandler,
		deps.TenantHandler,
		deps.PropertyHandler,
		deps.BillHandler,
		deps.PaymentHandler,
		deps.WebhookHandler,
		deps.Logger,
	)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGormDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	baseHandler := transport.NewBaseHandler(lg)
	eventBus := events.NewEventBus(lg)

	// Notification side of the bus
	smsSender := notification.NewSMSSender(
		config.Notification.SMSGatewayURL,
		config.Notification.SMSAPIKey,
		config.Notification.SMSSenderID,
		lg,
	)
	emailSender := notification.NewEmailSender(
		config.Notification.SMTPHost,
		config.Notification.SMTPPort,
		config.Notification.SMTPUser,
		config.Notification.SMTPPassword,
		config.Notification.FromAddress,
		lg,
	)
	notification.NewEventHandler(smsSender, emailSender, lg).RegisterEventHandlers(eventBus)

	// M-Pesa client with cached OAuth credentials
	credentials := mpesa.NewCredentialCache(
		config.Mpesa.BaseURL,
		config.Mpesa.ConsumerKey,
		config.Mpesa.ConsumerSecret,
		lg,
	)
	mpesaClient := mpesa.NewClient(mpesa.Config{
		BaseURL:     config.Mpesa.BaseURL,
		ShortCode:   config.Mpesa.ShortCode,
		Passkey:     config.Mpesa.Passkey,
		CallbackURL: config.Mpesa.CallbackURL,
		Timeout:     config.Mpesa.RequestTimeout,
	}, credentials, lg)

	// Repositories
	paymentRepo := paymentPostgres.NewPaymentRepository(gormDB)
	tenantRepo := tenantPostgres.NewTenantRepository(gormDB)
	propertyRepo := propertyPostgres.NewPropertyRepository(gormDB)
	billRepo := billPostgres.NewBillRepository(gormDB)
	uow := paymentPostgres.NewUnitOfWork(gormDB)

	// Services
	paymentService := payment.NewPaymentService(
		mpesaClient,
		paymentRepo,
		tenantRepo,
		uow,
		payment.NewLedgerUpdater(lg),
		eventBus,
		config.Mpesa.MinAmount,
		config.Mpesa.MaxAmount,
		lg,
	)
	tenantService := tenant.NewService(tenantRepo, lg)
	propertyService := property.NewService(propertyRepo, lg)
	billService := bill.NewService(billRepo, lg)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokenGen, config.Security.BCryptCost)
	userService := user.NewService(userPostgres.NewRepository(gormDB))

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),

		AuthHandler:     auth.NewHandler(authService),
		UserHandler:     user.NewHandler(userService),
		TenantHandler:   tenant.NewHandler(baseHandler, tenantService, lg),
		PropertyHandler: property.NewHandler(baseHandler, propertyService, lg),
		BillHandler:     bill.NewHandler(baseHandler, billService, lg),
		PaymentHandler:  payment.NewHandler(baseHandler, paymentService, lg),
		WebhookHandler:  payment.NewWebhookHandler(baseHandler, paymentService, lg),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGormDB layers the ORM over the already-open connection pool so both
// share the same pool limits.
func initGormDB(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{})
}
