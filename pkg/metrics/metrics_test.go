package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveStore(t *testing.T) {
	before := testutil.ToFloat64(StoreOps.WithLabelValues("memory", "set", "error"))
	ObserveStore("memory", "set", errors.New("boom"))
	ObserveStore("memory", "set", nil)

	assert.Equal(t, before+1, testutil.ToFloat64(StoreOps.WithLabelValues("memory", "set", "error")))
}

func TestHandlerExposesStorefrontMetrics(t *testing.T) {
	Notifications.WithLabelValues("cart").Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "storefront_notify_shown_total")
}
