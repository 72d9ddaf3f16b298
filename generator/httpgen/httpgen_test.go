package httpgen

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req request
		require.NoError(t, json.Unmarshal(body, &req))

		out := response{}
		for _, in := range req.Inputs {
			out.Outputs = append(out.Outputs, append([]int{0}, in...))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	c := New(srv.URL, WithHeader("Authorization", "Bearer t"))
	got, err := c.GenerateBatch(context.Background(), [][]int{{1, 2}, {3}})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 2}, {0, 3}}, got)
}

func TestGenerateBatchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":"model loading"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, WithHTTPClient(srv.Client())).GenerateBatch(context.Background(), [][]int{{1}})
	require.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "model loading")
}

func TestGenerateBatchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New("http://127.0.0.1:1").GenerateBatch(ctx, [][]int{{1}})
	assert.ErrorIs(t, err, context.Canceled)
}
