package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"invoiceguard/internal/auth"
	"invoiceguard/internal/handler"
	"invoiceguard/internal/metrics"
	"invoiceguard/internal/middleware"
)

// Options holds the optional pieces of the HTTP stack.
type Options struct {
	Log         logrus.FieldLogger
	Metrics     *metrics.Metrics
	CORSOrigins []string
	// Verifier enables bearer auth on /api/v1 when non-nil.
	Verifier *auth.TokenVerifier
	// UploadLimiter throttles uploads per client when non-nil.
	UploadLimiter *middleware.RateLimiter
	// Swagger serves the API docs at /swagger/*any.
	Swagger bool
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(invoiceH *handler.InvoiceHandler, healthH *handler.HealthHandler, opts Options) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(opts.Log))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(opts.Log))
	r.Use(middleware.CORS(opts.CORSOrigins))
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	if opts.Verifier != nil {
		v1.Use(middleware.AuthMiddleware(opts.Verifier))
	}

	invoices := v1.Group("/invoices")
	upload := []gin.HandlerFunc{invoiceH.Upload}
	if opts.UploadLimiter != nil {
		upload = append([]gin.HandlerFunc{opts.UploadLimiter.Handler()}, upload...)
	}
	invoices.POST("/upload", upload...)
	invoices.POST("/validate", invoiceH.Validate)
	invoices.POST("/validate/batch", invoiceH.ValidateBatch)
	invoices.GET("", invoiceH.List)
	invoices.GET("/stats", invoiceH.Stats)
	invoices.GET("/export", invoiceH.Export)
	invoices.GET("/rules", invoiceH.Rules)
	invoices.GET("/:id", invoiceH.GetByID)
	invoices.GET("/:id/download", invoiceH.Download)

	return r
}
