// @title InvoiceGuard API
// @version 1.0
// @description Invoice upload, extraction and validation service.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	_ "invoiceguard/docs"
	"invoiceguard/internal/auth"
	"invoiceguard/internal/config"
	"invoiceguard/internal/email/noop"
	"invoiceguard/internal/email/ses"
	"invoiceguard/internal/handler"
	"invoiceguard/internal/logging"
	"invoiceguard/internal/metrics"
	"invoiceguard/internal/middleware"
	"invoiceguard/internal/parser"
	"invoiceguard/internal/parser/claude"
	"invoiceguard/internal/parser/openai"
	"invoiceguard/internal/port"
	"invoiceguard/internal/repository/postgres"
	"invoiceguard/internal/router"
	"invoiceguard/internal/service"
	s3storage "invoiceguard/internal/storage/s3"
	"invoiceguard/internal/validator"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logging.New(&cfg.Log)

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	fileRepo := postgres.NewFileMetaRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize extraction providers
	parser.RegisterProvider("claude", func(pc *config.ParserProviderConfig) (port.DocumentParser, error) {
		return claude.NewParser(pc), nil
	})
	parser.RegisterProvider("openai", func(pc *config.ParserProviderConfig) (port.DocumentParser, error) {
		return openai.NewParser(pc), nil
	})
	docParser, err := parser.NewFromConfig(&cfg.Parser)
	if err != nil {
		return fmt.Errorf("failed to initialize parser: %w", err)
	}

	notifier, err := newNotifier(&cfg.Email, log)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}

	// Validation engine and named business rules
	registry := validator.NewStandardRegistry()
	uploadRules, err := registry.Resolve(cfg.Validation.UploadRules)
	if err != nil {
		return fmt.Errorf("invalid upload rules: %w", err)
	}
	defaults := cfg.Validation.ValidatorConfig()
	engine := validator.NewEngine(&defaults,
		validator.WithConcurrency(cfg.Validation.BatchConcurrency),
		validator.WithLogger(log),
	)

	m := metrics.New()

	// Initialize services
	fileSvc := service.NewFileService(fileRepo, s3Client, service.FileServiceConfig{
		Bucket:        cfg.S3.Bucket,
		MaxFileSizeMB: cfg.S3.MaxFileSizeMB,
		PresignExpiry: cfg.S3.PresignExpiry,
	}, log)
	invoiceSvc := service.NewInvoiceService(fileSvc, invoiceRepo, docParser, notifier, engine, registry,
		service.InvoiceServiceConfig{
			MaxBatchSize:     cfg.Validation.MaxBatchSize,
			MaxParseAttempts: cfg.Queue.MaxRetries,
			UploadRules:      uploadRules,
			Metrics:          m,
		}, log)

	// Initialize handlers
	invoiceH := handler.NewInvoiceHandler(invoiceSvc, fileSvc, log)
	healthH := handler.NewHealthHandler(invoiceRepo, s3Client, cfg.S3.Bucket)

	opts := router.Options{
		Log:         log,
		Metrics:     m,
		CORSOrigins: cfg.CORS.AllowedOrigins,
		Swagger:     cfg.Server.Environment != "production",
	}
	if cfg.Auth.Enabled() {
		opts.Verifier = auth.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	} else {
		log.Warn("bearer auth disabled: INVOICEGUARD_AUTH_JWT_SECRET is not set")
	}
	if cfg.RateLimit.RequestsPerMinute > 0 {
		opts.UploadLimiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, log)
	}

	// Setup router
	r := router.Setup(invoiceH, healthH, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	worker := service.NewExtractionQueueWorker(invoiceRepo, invoiceSvc, service.QueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxRetries:   cfg.Queue.MaxRetries,
		Concurrency:  cfg.Queue.Concurrency,
	}, log)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		stop()
		<-workerDone
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	<-workerDone
	log.Info("server stopped")
	return nil
}

func newNotifier(cfg *config.EmailConfig, log logrus.FieldLogger) (port.Notifier, error) {
	switch cfg.Provider {
	case "ses":
		return ses.NewSESNotifier(cfg.Region, cfg.FromAddress, cfg.FromName, cfg.ReviewerAddress)
	case "", "noop":
		return noop.NewNoopNotifier(log), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Provider)
	}
}
