package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/johnmai-dev/CuteMLX/pkg/types"
)

type mockService struct {
	models []types.Model
	status types.StatusResponse
	ready  bool
}

func (m *mockService) Models() []types.Model        { return append([]types.Model(nil), m.models...) }
func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Ready() bool                  { return m.ready }

func newTestMux(svc Service) http.Handler {
	return NewMux(svc, zerolog.Nop())
}

func doGet(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := doGet(t, newTestMux(&mockService{}), "/healthz")
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestReadyz(t *testing.T) {
	h := newTestMux(&mockService{ready: false})
	w := doGet(t, h, "/readyz")
	if w.Code != http.StatusServiceUnavailable || w.Body.String() != "loading" {
		t.Fatalf("not-ready: status=%d body=%q", w.Code, w.Body.String())
	}

	h = newTestMux(&mockService{ready: true})
	w = doGet(t, h, "/readyz")
	if w.Code != http.StatusOK || w.Body.String() != "ready" {
		t.Fatalf("ready: status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{
		State:           types.StateCompleted,
		Model:           types.ModelStatus{ID: "m.gguf", Phase: "ready", SizeMB: 900},
		TokensPerSecond: 12.3,
	}}
	w := doGet(t, newTestMux(svc), "/status")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var got types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("json: %v", err)
	}
	if got.State != types.StateCompleted || got.Model.Phase != "ready" || got.TokensPerSecond != 12.3 {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestModelsHandler(t *testing.T) {
	svc := &mockService{models: []types.Model{{ID: "a.gguf"}, {ID: "b.gguf"}}}
	w := doGet(t, newTestMux(svc), "/models")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var got types.ModelsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(got.Models) != 2 || got.Models[0].ID != "a.gguf" {
		t.Fatalf("models=%+v", got.Models)
	}
}

func TestNotFoundIsJSON(t *testing.T) {
	w := doGet(t, newTestMux(&mockService{}), "/nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	var got types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("json: %v", err)
	}
	if got.Code != http.StatusNotFound || got.Error == "" {
		t.Fatalf("error body=%+v", got)
	}
}

func TestMethodNotAllowedIsJSON(t *testing.T) {
	h := newTestMux(&mockService{})
	req := httptest.NewRequest(http.MethodPost, "/status", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", w.Code)
	}
	var got types.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("json: %v", err)
	}
	if got.Code != http.StatusMethodNotAllowed {
		t.Fatalf("error body=%+v", got)
	}
}

func TestMetricsEndpointExposesHTTPInstruments(t *testing.T) {
	h := newTestMux(&mockService{})
	// Prime the request counter so the series exists.
	doGet(t, h, "/healthz")
	w := doGet(t, h, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "cutemlx_http_requests_total") {
		t.Fatalf("metrics body missing request counter")
	}
}

func TestSecurityHeaderSet(t *testing.T) {
	w := doGet(t, newTestMux(&mockService{}), "/status")
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("nosniff header=%q", got)
	}
}
