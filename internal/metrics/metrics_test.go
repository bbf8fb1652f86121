package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordValidation(t *testing.T) {
	m := New()

	m.RecordValidation(true, 100)
	m.RecordValidation(false, 45)
	m.RecordValidation(false, 35)
	m.RecordValidationFailure()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("valid")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.validations.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.validations.WithLabelValues("error")))
}

func TestRequestStarted(t *testing.T) {
	m := New()

	done := m.RequestStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpInFlight))
	done("get", "/api/v1/invoices/:id", http.StatusOK)

	assert.Equal(t, 0.0, testutil.ToFloat64(m.httpInFlight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/api/v1/invoices/:id", "200")))
}

func TestHandler_ExposesMetrics(t *testing.T) {
	m := New()
	m.RecordExtraction("rate_limited")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `invoiceguard_extraction_attempts_total{result="rate_limited"} 1`)
}
