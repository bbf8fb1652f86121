package router_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"invoiceguard/internal/auth"
	"invoiceguard/internal/domain"
	"invoiceguard/internal/handler"
	"invoiceguard/internal/metrics"
	"invoiceguard/internal/middleware"
	"invoiceguard/internal/router"
	"invoiceguard/internal/validator"
	"invoiceguard/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type routerFixture struct {
	invoiceSvc *mocks.MockInvoiceService
	engine     *gin.Engine
}

func newRouter(opts router.Options) *routerFixture {
	log, _ := test.NewNullLogger()
	opts.Log = log
	invoiceSvc := new(mocks.MockInvoiceService)
	repo := new(mocks.MockInvoiceRepo)
	repo.On("Ping", mock.Anything).Return(nil)
	storage := new(mocks.MockObjectStorage)
	storage.On("Ping", mock.Anything, "bucket").Return(nil)

	invoiceH := handler.NewInvoiceHandler(invoiceSvc, new(mocks.MockFileService), log)
	healthH := handler.NewHealthHandler(repo, storage, "bucket")
	return &routerFixture{invoiceSvc: invoiceSvc, engine: router.Setup(invoiceH, healthH, opts)}
}

func (f *routerFixture) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthAndCorrelation(t *testing.T) {
	f := newRouter(router.Options{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	req.Header.Set("X-Correlation-ID", "corr-42")
	w := f.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "corr-42", w.Header().Get("X-Correlation-ID"))

	w = f.do(httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_StaticRoutesBeatIDParam(t *testing.T) {
	f := newRouter(router.Options{})
	f.invoiceSvc.On("Statistics", mock.Anything, 1000).Return(&validator.Statistics{}, nil)
	f.invoiceSvc.On("Rules").Return(validator.StandardRules())

	assert.Equal(t, http.StatusOK, f.do(httptest.NewRequest(http.MethodGet, "/api/v1/invoices/stats", http.NoBody)).Code)
	assert.Equal(t, http.StatusOK, f.do(httptest.NewRequest(http.MethodGet, "/api/v1/invoices/rules", http.NoBody)).Code)
	f.invoiceSvc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestRouter_ValidatePropagatesCorrelationID(t *testing.T) {
	f := newRouter(router.Options{})
	f.invoiceSvc.On("Validate", mock.Anything, mock.Anything).
		Return(&validator.Result{IsValid: true, ValidationScore: 100, CorrelationID: "corr-7"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/validate", strings.NewReader(`{"data":{}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "corr-7")
	w := f.do(req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "corr-7", w.Header().Get("X-Correlation-ID"))
	assert.Contains(t, w.Body.String(), `"correlation_id":"corr-7"`)
}

func TestRouter_AuthRequiredWhenEnabled(t *testing.T) {
	v := auth.NewTokenVerifier("secret", "invoiceguard")
	f := newRouter(router.Options{Verifier: v})
	id := uuid.New()
	f.invoiceSvc.On("GetByID", mock.Anything, id).Return(&domain.Invoice{ID: id}, nil)

	w := f.do(httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+id.String(), http.NoBody))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := v.Issue("ap-clerk", time.Hour, time.Now())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/"+id.String(), http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, f.do(req).Code)

	// health stays public
	assert.Equal(t, http.StatusOK, f.do(httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)).Code)
}

func TestRouter_UploadRateLimited(t *testing.T) {
	log, _ := test.NewNullLogger()
	f := newRouter(router.Options{UploadLimiter: middleware.NewRateLimiter(1, 1, log)})

	first := f.do(httptest.NewRequest(http.MethodPost, "/api/v1/invoices/upload", http.NoBody))
	assert.Equal(t, http.StatusBadRequest, first.Code) // no file, but allowed through

	second := f.do(httptest.NewRequest(http.MethodPost, "/api/v1/invoices/upload", http.NoBody))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRouter_Metrics(t *testing.T) {
	f := newRouter(router.Options{Metrics: metrics.New()})

	f.do(httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
	w := f.do(httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `invoiceguard_http_requests_total{method="GET",path="/healthz",status="200"} 1`)
}
