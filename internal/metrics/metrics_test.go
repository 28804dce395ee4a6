package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStatusChange(t *testing.T) {
	before := testutil.ToFloat64(statusChanges.WithLabelValues("APPROVED"))

	RecordStatusChange("APPROVED")
	RecordStatusChange("APPROVED")

	assert.Equal(t, before+2, testutil.ToFloat64(statusChanges.WithLabelValues("APPROVED")))
}

func TestObserveRequest_EmptyRouteIsBucketed(t *testing.T) {
	before := testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404"))

	ObserveRequest("GET", "", "404", 0.01)

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "unmatched", "404")))
}

func TestHandler_ServesRegistry(t *testing.T) {
	RecordStatusChange("SUBMITTED")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "buyinbuyout_purchase_requests_status_changes_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
