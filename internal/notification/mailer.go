package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// EmailJob is one outbound message. Jobs are processed by the worker pool;
// the caller never waits on delivery.
type EmailJob struct {
	To      []string
	Subject string
	Body    string
}

type Worker struct {
	ID         int
	WorkerPool chan chan EmailJob
	JobChannel chan EmailJob
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan EmailJob, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan EmailJob),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(EmailJob)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker processing email", "worker_id", w.ID, "subject", job.Subject)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type Config struct {
	MailAPIURL      string
	APIKey          string
	FromAddress     string
	DispatchTimeout time.Duration
	MaxWorkers      int
	JobQueueSize    int
}

// Mailer delivers email through an external mail API behind a bounded worker
// pool. Delivery is best effort: a full queue or a failed send is logged,
// never propagated.
type Mailer struct {
	apiURL          string
	apiKey          string
	fromAddress     string
	dispatchTimeout time.Duration
	logger          *slog.Logger

	jobQueue   chan EmailJob
	workerPool chan chan EmailJob
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once
}

func NewMailer(config Config, logger *slog.Logger) *Mailer {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 5
	}
	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}
	dispatchTimeout := config.DispatchTimeout
	if dispatchTimeout <= 0 {
		dispatchTimeout = 10 * time.Second
	}

	mailer := &Mailer{
		apiURL:          config.MailAPIURL,
		apiKey:          config.APIKey,
		fromAddress:     config.FromAddress,
		dispatchTimeout: dispatchTimeout,
		logger:          logger,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan EmailJob, jobQueueSize),
		workerPool: make(chan chan EmailJob, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
	}

	mailer.startWorkerPool()
	return mailer
}

func (m *Mailer) startWorkerPool() {
	m.once.Do(func() {
		for i := 0; i < m.maxWorkers; i++ {
			worker := NewWorker(i, m.workerPool, m.logger)
			worker.Start(m.ctx, &m.wg, m.deliver)
		}

		go m.dispatch()

		m.logger.Info("mailer worker pool started",
			"max_workers", m.maxWorkers,
			"queue_size", cap(m.jobQueue))
	})
}

func (m *Mailer) dispatch() {
	m.wg.Add(1)
	defer m.wg.Done()

	for {
		select {
		case job := <-m.jobQueue:
			select {
			case jobChannel := <-m.workerPool:
				select {
				case jobChannel <- job:
				case <-m.ctx.Done():
					return
				}
			case <-m.ctx.Done():
				return
			}
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Mailer) Shutdown() {
	m.logger.Info("shutting down mailer")
	m.cancel()
	m.wg.Wait()
	m.logger.Info("mailer shutdown complete")
}

// Enqueue queues an email for asynchronous delivery. A full queue drops the
// message with a log entry rather than blocking the caller.
func (m *Mailer) Enqueue(job EmailJob) {
	select {
	case m.jobQueue <- job:
		m.logger.Debug("email queued", "subject", job.Subject, "queue_length", len(m.jobQueue))
	default:
		m.logger.Warn("email queue full, dropping message", "subject", job.Subject)
	}
}

func (m *Mailer) deliver(job EmailJob) {
	payload := map[string]interface{}{
		"from":    m.fromAddress,
		"to":      job.To,
		"subject": job.Subject,
		"body":    job.Body,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		m.logger.Error("failed to marshal email payload", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(m.ctx, m.dispatchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL+"/send", bytes.NewBuffer(jsonData))
	if err != nil {
		m.logger.Error("failed to create mail request", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", m.apiKey))

	client := &http.Client{Timeout: m.dispatchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		m.logger.Error("mail delivery failed", "error", err, "subject", job.Subject)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		m.logger.Warn("mail API returned error status",
			"status_code", resp.StatusCode,
			"subject", job.Subject)
		return
	}

	m.logger.Info("email delivered", "subject", job.Subject, "recipients", len(job.To))
}
