package labelsprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelhub/labelhub-api/pkg/config"
	"github.com/labelhub/labelhub-api/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "development", Level: "error"})
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(config.ProviderConfig{
		BaseURL:  srv.URL,
		UserName: "test-user",
		APIKey:   "test-key",
		Timeout:  2 * time.Second,
	}, testLogger())
	return c, srv
}

func TestGenerateTracking(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, trackingPath, r.URL.Path)
		q := r.URL.Query()
		// Credenciales y parámetros del batch en el query string
		assert.Equal(t, "test-user", q.Get("user_name"))
		assert.Equal(t, "test-key", q.Get("api_key"))
		assert.Equal(t, "usps", q.Get("vendor"))
		assert.Equal(t, "priority", q.Get("class"))
		assert.Equal(t, "3", q.Get("count"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tracking_numbers": []string{"TRK1", "TRK2", "TRK3"},
		})
	}))

	got, err := c.GenerateTracking(context.Background(), "usps", "priority", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"TRK1", "TRK2", "TRK3"}, got)
}

func TestGenerateTrackingProviderError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "insufficient inventory"})
	}))

	_, err := c.GenerateTracking(context.Background(), "usps", "priority", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient inventory")
}

func TestGenerateTrackingHTTPError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))

	_, err := c.GenerateTracking(context.Background(), "usps", "priority", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestGenerateBarcode(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, barcodePath, r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "33101", q.Get("zip"))
		assert.Equal(t, "TRK1", q.Get("tracking"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"barcode_data_url": "data:image/png;base64,AAA=",
		})
	}))

	got, err := c.GenerateBarcode(context.Background(), "33101", "TRK1")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAA=", got)
}

// El barcode es idempotente por (zip, tracking): un fallo de transporte se
// reintenta exactamente una vez.
func TestGenerateBarcodeRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"barcode_data_url": "data:image/png;base64,BBB=",
		})
	}))

	got, err := c.GenerateBarcode(context.Background(), "90210", "TRK9")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,BBB=", got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGenerateBarcodeFailsAfterRetry(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))

	_, err := c.GenerateBarcode(context.Background(), "90210", "TRK9")
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())
}
