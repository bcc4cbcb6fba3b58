package openai_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	docqaopenai "github.com/fwojciec/docqa/openai"
	openai "github.com/sashabaranov/go-openai"
)

// fakeAPI serves a canned response and records the last request.
type fakeAPI struct {
	mu       sync.Mutex
	status   int
	response string
	path     string
	body     map[string]any
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var decoded map[string]any
	_ = json.Unmarshal(raw, &decoded)

	f.mu.Lock()
	f.path = r.URL.Path
	f.body = decoded
	status, response := f.status, f.response
	f.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, response)
}

func (f *fakeAPI) last() (string, map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path, f.body
}

func newClient(t *testing.T, api *fakeAPI) *openai.Client {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return docqaopenai.NewClient("test-key", srv.URL+"/v1")
}
