package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"invoiceguard/internal/port"
)

// QueueConfig holds settings for the extraction queue worker.
type QueueConfig struct {
	PollInterval time.Duration
	MaxRetries   int
	Concurrency  int
}

// ExtractionQueueWorker polls for queued invoices and dispatches them for
// extraction and validation.
type ExtractionQueueWorker struct {
	invoiceRepo port.InvoiceRepository
	invoiceSvc  InvoiceService
	cfg         QueueConfig
	log         logrus.FieldLogger
	wg          sync.WaitGroup
}

// NewExtractionQueueWorker creates a new ExtractionQueueWorker.
func NewExtractionQueueWorker(invoiceRepo port.InvoiceRepository, invoiceSvc InvoiceService, cfg QueueConfig, log logrus.FieldLogger) *ExtractionQueueWorker {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	return &ExtractionQueueWorker{
		invoiceRepo: invoiceRepo,
		invoiceSvc:  invoiceSvc,
		cfg:         cfg,
		log:         log,
	}
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight jobs have finished.
func (w *ExtractionQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	w.log.Infof("extractionQueueWorker: started (poll=%s, concurrency=%d, maxRetries=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency, w.cfg.MaxRetries)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("extractionQueueWorker: shutting down, waiting for in-flight jobs...")
			w.wg.Wait()
			w.log.Info("extractionQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			w.poll(ctx, sem)
		}
	}
}

func (w *ExtractionQueueWorker) poll(ctx context.Context, sem chan struct{}) {
	available := w.cfg.Concurrency - len(sem)
	if available <= 0 {
		return
	}

	invoices, err := w.invoiceRepo.ClaimQueued(ctx, available)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		w.log.WithError(err).Error("extractionQueueWorker: ClaimQueued error")
		return
	}

	for i := range invoices {
		inv := invoices[i]
		inv.ParseAttempts++

		sem <- struct{}{}
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-sem }()

			// Detached from the poll context so in-flight jobs finish during shutdown.
			jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			w.log.WithField("invoice_id", inv.ID.String()).
				Infof("extractionQueueWorker: dispatching invoice (attempt %d)", inv.ParseAttempts)
			w.invoiceSvc.ProcessQueued(jobCtx, &inv, w.cfg.MaxRetries)
		}()
	}
}

// Wait blocks until all dispatched jobs have finished.
func (w *ExtractionQueueWorker) Wait() {
	w.wg.Wait()
}
