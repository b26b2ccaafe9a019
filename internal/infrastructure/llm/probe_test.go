package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelProbeListsModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/models", r.URL.Path)
		assert.Equal(t, "AI Article Generator", r.Header.Get("X-Title"))
		assert.Equal(t, "Bearer sk-or-v1-0123456789abcdef", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[` +
			`{"id":"deepseek/deepseek-r1:free","object":"model","created":1,"owned_by":"deepseek"},` +
			`{"id":"mistralai/mixtral-8x7b:free","object":"model","created":2,"owned_by":"mistralai"}]}`))
	}))
	defer srv.Close()

	probe := NewModelProbe(newTestFactory(0))
	ids, err := probe.ListModels(context.Background(), testConfig(srv.URL+"/api/v1/"))
	require.NoError(t, err)
	assert.Equal(t, []string{"deepseek/deepseek-r1:free", "mistralai/mixtral-8x7b:free"}, ids)
}

func TestModelProbeReportsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"auth_error"}}`))
	}))
	defer srv.Close()

	probe := NewModelProbe(newTestFactory(0))
	_, err := probe.ListModels(context.Background(), testConfig(srv.URL+"/api/v1"))
	assert.Error(t, err)
}
