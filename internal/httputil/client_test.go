package httputil

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStandardClient_DefaultTimeout(t *testing.T) {
	client := NewStandardClient(nil)
	assert.Equal(t, DefaultTimeout, client.Timeout)

	custom := &http.Client{}
	assert.Same(t, custom, NewStandardClient(custom).Client)
}

func TestStandardClient_RoundTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(r.Method + ":" + r.URL.Path + ":" + string(body)))
	}))
	defer server.Close()

	client := NewStandardClient(nil)

	tests := []struct {
		name string
		do   func() (*http.Response, error)
		want string
	}{
		{"get", func() (*http.Response, error) { return client.Get(server.URL + "/api/params") }, "GET:/api/params:"},
		{"post", func() (*http.Response, error) {
			return client.Post(server.URL+"/api/params", "application/json", strings.NewReader(`{}`))
		}, "POST:/api/params:{}"},
		{"do", func() (*http.Response, error) {
			req, err := http.NewRequest(http.MethodPut, server.URL+"/x", strings.NewReader("data"))
			require.NoError(t, err)
			return client.Do(req)
		}, "PUT:/x:data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.do()
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusAccepted, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.want, string(body))
		})
	}
}

func TestHandlerClient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSONOK(w, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
		io.Copy(w, r.Body)
	})
	client := NewHandlerClient(mux)

	resp, err := client.Get("http://monitor/health?verbose=1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	resp.Body.Close()

	resp, err = client.Post("http://monitor/echo", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "hello", string(body))

	resp, err = client.Get("http://monitor/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, []string{"GET /health?verbose=1", "POST /echo", "GET /missing"}, client.Requests())
}

func TestMockHTTPClient_Queue(t *testing.T) {
	boom := errors.New("connection refused")
	mock := NewMockHTTPClient().
		AddResponse(http.StatusCreated, `{"id":1}`).
		AddErrorResponse(boom)

	resp, err := mock.Post("http://example.com/api", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, `{"id":1}`, string(body))
	assert.Equal(t, "application/json", mock.Requests[0].Header.Get("Content-Type"))

	_, err = mock.Get("http://example.com/api")
	assert.ErrorIs(t, err, boom)

	// Drained queue falls back to an empty 200.
	resp, err = mock.Get("http://example.com/api")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, 3, mock.RequestCount())
}
