package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListTips(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tips", r.URL.Path)
		assert.Equal(t, "devnet", r.URL.Query().Get("network"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		assert.Equal(t, "4", r.URL.Query().Get("offset"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"tips": []map[string]interface{}{
				{
					"record_address":  "rec2",
					"tipper":          "GsJYonU5Kz4MJBHZ5UFx9oyStBpXXswnZcFUorktj2yZ",
					"tipper_short":    "GsJY...j2yZ",
					"amount_lamports": 500000000,
					"amount_sol":      0.5,
					"message":         "Great work!",
					"timestamp_ms":    1700000100000,
					"network":         "devnet",
				},
				{
					"record_address": "rec1",
					"tipper_short":   "abcd...wxyz",
					"amount_sol":     1.0,
					"message":        "thanks",
					"timestamp_ms":   1700000000000,
					"network":        "devnet",
				},
			},
		})
	}))
	defer server.Close()

	cl := NewClient(server.URL, nil, nil)
	tips, err := cl.ListTips(context.Background(), ListTipsOptions{
		Network: "devnet",
		Limit:   2,
		Offset:  4,
	})

	require.NoError(t, err)
	require.Len(t, tips, 2)
	assert.Equal(t, "rec2", tips[0].RecordAddress)
	assert.Equal(t, "GsJY...j2yZ", tips[0].TipperShort)
	assert.Equal(t, 0.5, tips[0].AmountSOL)
	assert.Equal(t, int64(1700000100000), tips[0].TimestampMS)
}

func TestListTips_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
	}))
	defer server.Close()

	cl := NewClient(server.URL, nil, nil)
	_, err := cl.ListTips(context.Background(), ListTipsOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "internal server error")
}

func TestGetTip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tips/rec1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"record_address": "rec1",
			"message":        "thanks",
			"amount_sol":     1.0,
		})
	}))
	defer server.Close()

	cl := NewClient(server.URL, nil, nil)
	tip, err := cl.GetTip(context.Background(), "rec1")

	require.NoError(t, err)
	assert.Equal(t, "rec1", tip.RecordAddress)
	assert.Equal(t, "thanks", tip.Message)
}

func TestGetTip_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "tip not found"})
	}))
	defer server.Close()

	cl := NewClient(server.URL, nil, nil)
	_, err := cl.GetTip(context.Background(), "missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "tip not found")
}

func TestHealth(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/health", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		cl := NewClient(server.URL, nil, nil)
		require.NoError(t, cl.Health(context.Background()))
	})

	t.Run("unhealthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		cl := NewClient(server.URL, nil, nil)
		require.Error(t, cl.Health(context.Background()))
	})
}
