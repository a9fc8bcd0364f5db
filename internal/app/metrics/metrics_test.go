package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerExposesCollectors(t *testing.T) {
	RecordSignup()
	RecordDeposit()
	RecordHTTPRequest(http.MethodPost, "/api/signup", "201", 15*time.Millisecond)
	IncrementInFlight()
	defer DecrementInFlight()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	Handler().ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	body := resp.Body.String()
	assert.Contains(t, body, "piggyvest_accounts_signups_total")
	assert.Contains(t, body, "piggyvest_savings_deposits_total")
	assert.Contains(t, body, "piggyvest_http_requests_total")
	assert.Contains(t, body, "piggyvest_http_request_duration_seconds")
	assert.Contains(t, body, "piggyvest_http_inflight_requests")
}

func TestRegistryIsolatedFromDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	Handler().ServeHTTP(resp, req)

	// Only application collectors are exported, not the Go runtime set
	// from the global default registry.
	assert.NotContains(t, resp.Body.String(), "go_goroutines")
}
