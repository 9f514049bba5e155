package mpesa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// CallbackJob is one simulated in-flight STK push awaiting its result.
type CallbackJob struct {
	CheckoutRequestID string
	PhoneNumber       string
	Amount            decimal.Decimal
}

type simWorker struct {
	id         int
	workerPool chan chan CallbackJob
	jobChannel chan CallbackJob
	logger     *slog.Logger
}

func newSimWorker(id int, workerPool chan chan CallbackJob, logger *slog.Logger) *simWorker {
	return &simWorker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan CallbackJob),
		logger:     logger,
	}
}

func (w *simWorker) start(ctx context.Context, wg *sync.WaitGroup, processFunc func(CallbackJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.workerPool <- w.jobChannel

			select {
			case job := <-w.jobChannel:
				w.logger.Debug("simulator worker processing job",
					"worker_id", w.id, "checkout_request_id", job.CheckoutRequestID)
				processFunc(job)
			case <-ctx.Done():
				w.logger.Debug("simulator worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

// SimulatorConfig tunes the sandbox callback simulator.
type SimulatorConfig struct {
	WebhookURL   string
	MaxWorkers   int
	JobQueueSize int
	SuccessRate  float32
}

// Simulator is a development-only stand-in for the provider's asynchronous
// side: queued pushes are resolved after a short random delay and the
// resulting stkCallback is POSTed to the local webhook.
type Simulator struct {
	cfg    SimulatorConfig
	logger *slog.Logger

	jobQueue   chan CallbackJob
	workerPool chan chan CallbackJob
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewSimulator(cfg SimulatorConfig, logger *slog.Logger) *Simulator {
	ctx, cancel := context.WithCancel(context.Background())

	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	if cfg.JobQueueSize <= 0 {
		cfg.JobQueueSize = 100
	}
	if cfg.SuccessRate <= 0 || cfg.SuccessRate > 1 {
		cfg.SuccessRate = 0.9
	}

	s := &Simulator{
		cfg:        cfg,
		logger:     logger,
		jobQueue:   make(chan CallbackJob, cfg.JobQueueSize),
		workerPool: make(chan chan CallbackJob, cfg.MaxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	s.start()
	return s
}

func (s *Simulator) start() {
	s.once.Do(func() {
		for i := 0; i < s.cfg.MaxWorkers; i++ {
			worker := newSimWorker(i, s.workerPool, s.logger)
			worker.start(s.ctx, &s.wg, s.resolveJob)
		}

		s.wg.Add(1)
		go s.dispatch()

		s.logger.Info("STK sandbox simulator started",
			"max_workers", s.cfg.MaxWorkers,
			"queue_size", cap(s.jobQueue))
	})
}

func (s *Simulator) dispatch() {
	defer s.wg.Done()

	for {
		select {
		case job := <-s.jobQueue:
			select {
			case jobChannel := <-s.workerPool:
				select {
				case jobChannel <- job:
				case <-s.ctx.Done():
					return
				}
			case <-s.ctx.Done():
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}

// Enqueue schedules a callback for the given push. Returns an error when the
// queue is saturated rather than blocking the caller.
func (s *Simulator) Enqueue(job CallbackJob) error {
	select {
	case s.jobQueue <- job:
		s.logger.Info("simulator job queued",
			"checkout_request_id", job.CheckoutRequestID,
			"queue_length", len(s.jobQueue))
		return nil
	default:
		return fmt.Errorf("simulator queue full")
	}
}

func (s *Simulator) Shutdown() {
	s.logger.Info("shutting down STK simulator")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("STK simulator shutdown complete")
}

func (s *Simulator) resolveJob(job CallbackJob) {
	delay := time.Duration(1+rand.Intn(4)) * time.Second

	select {
	case <-time.After(delay):
	case <-s.ctx.Done():
		return
	}

	callback := STKCallback{
		MerchantRequestID: fmt.Sprintf("sim-%d", rand.Int63()),
		CheckoutRequestID: job.CheckoutRequestID,
	}

	if rand.Float32() < s.cfg.SuccessRate {
		callback.ResultCode = ResultCodeSuccess
		callback.ResultDesc = "The service request is processed successfully."
		callback.CallbackMetadata = &CallbackMetadata{
			Item: []MetadataItem{
				{Name: "Amount", Value: job.Amount.InexactFloat64()},
				{Name: "MpesaReceiptNumber", Value: fmt.Sprintf("SIM%010d", rand.Int63n(1e10))},
				{Name: "PhoneNumber", Value: job.PhoneNumber},
			},
		}
	} else {
		callback.ResultCode = 1032
		callback.ResultDesc = "Request cancelled by user"
	}

	s.deliver(callback)
}

func (s *Simulator) deliver(callback STKCallback) {
	envelope := CallbackEnvelope{Body: CallbackBody{StkCallback: &callback}}

	body, err := json.Marshal(envelope)
	if err != nil {
		s.logger.Error("simulator failed to marshal callback", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewBuffer(body))
	if err != nil {
		s.logger.Error("simulator failed to create callback request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		s.logger.Error("simulator callback delivery failed",
			"checkout_request_id", callback.CheckoutRequestID, "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("simulator callback rejected by webhook",
			"checkout_request_id", callback.CheckoutRequestID,
			"status_code", resp.StatusCode)
		return
	}

	s.logger.Info("simulator callback delivered",
		"checkout_request_id", callback.CheckoutRequestID,
		"result_code", callback.ResultCode)
}
