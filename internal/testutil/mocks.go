package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"codeberg.org/snonux/kanavox/internal/engine"
)

// EngineCall records one request received by a MockEngine
type EngineCall struct {
	Path   string
	Text   string
	Params url.Values
	Body   []byte // query sent to synthesis
}

// MockEngine is an in-process synthesis engine speaking the HTTP protocol of
// the real one. Queries embed the text, so synthesis knows what it renders.
type MockEngine struct {
	Server *httptest.Server

	// OnRequest is called before each request is answered
	OnRequest func(EngineCall)

	mu                  sync.Mutex
	audio               map[string][]byte
	queryFailures       map[string]int
	presetQueryFailures map[string]int
	renderFailures      map[string]int
	presets             []engine.Preset
	calls               []EngineCall
}

// MockQuery is the audio query document produced by MockEngine
type MockQuery struct {
	Text     string `json:"text"`
	Speaker  string `json:"speaker,omitempty"`
	PresetID string `json:"preset_id,omitempty"`
}

// NewMockEngine starts a mock engine that is shut down with the test
func NewMockEngine(t *testing.T) *MockEngine {
	t.Helper()

	m := &MockEngine{
		audio:               make(map[string][]byte),
		queryFailures:       make(map[string]int),
		presetQueryFailures: make(map[string]int),
		renderFailures:      make(map[string]int),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.Server.Close)

	return m
}

// URL returns the base URL of the mock engine
func (m *MockEngine) URL() string {
	return m.Server.URL
}

// Client returns an engine client for the mock with the breaker disabled
func (m *MockEngine) Client(t *testing.T) *engine.Client {
	t.Helper()

	client, err := engine.NewClient(&engine.Config{
		BaseURL: m.URL(),
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create engine client: %v", err)
	}
	return client
}

// SetAudio sets the audio rendered for text
func (m *MockEngine) SetAudio(text string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audio[text] = data
}

// FailQuery makes audio_query answer status for text
func (m *MockEngine) FailQuery(text string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryFailures[text] = status
}

// FailPresetQuery makes audio_query_from_preset answer status for text
func (m *MockEngine) FailPresetQuery(text string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presetQueryFailures[text] = status
}

// FailRender makes synthesis answer status for text
func (m *MockEngine) FailRender(text string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.renderFailures[text] = status
}

// Heal removes all configured failures for text
func (m *MockEngine) Heal(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.queryFailures, text)
	delete(m.presetQueryFailures, text)
	delete(m.renderFailures, text)
}

// SetPresets sets the presets listed by the engine
func (m *MockEngine) SetPresets(presets []engine.Preset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presets = presets
}

// Calls returns a copy of the received requests
func (m *MockEngine) Calls() []EngineCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]EngineCall(nil), m.calls...)
}

// CallsTo counts the received requests for path
func (m *MockEngine) CallsTo(path string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Path == path {
			n++
		}
	}
	return n
}

// AudioFor returns the audio the mock renders for text
func (m *MockEngine) AudioFor(text string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.audioFor(text)
}

func (m *MockEngine) audioFor(text string) []byte {
	if data, ok := m.audio[text]; ok {
		return data
	}
	return []byte("RIFF mock audio for " + text)
}

func (m *MockEngine) handle(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	call := EngineCall{Path: r.URL.Path, Text: params.Get("text"), Params: params}

	var body []byte
	if r.URL.Path == "/synthesis" {
		body, _ = io.ReadAll(r.Body)
		var q MockQuery
		if err := json.Unmarshal(body, &q); err != nil {
			http.Error(w, "invalid query", http.StatusUnprocessableEntity)
			return
		}
		call.Text = q.Text
		call.Body = body
	}

	m.mu.Lock()
	m.calls = append(m.calls, call)
	hook := m.OnRequest
	m.mu.Unlock()

	if hook != nil {
		hook(call)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch r.URL.Path {
	case "/audio_query":
		if status, ok := m.queryFailures[call.Text]; ok {
			http.Error(w, fmt.Sprintf(`{"detail":"query failed for %s"}`, call.Text), status)
			return
		}
		writeJSON(w, MockQuery{Text: call.Text, Speaker: params.Get("speaker")})

	case "/audio_query_from_preset":
		if status, ok := m.presetQueryFailures[call.Text]; ok {
			http.Error(w, fmt.Sprintf(`{"detail":"preset query failed for %s"}`, call.Text), status)
			return
		}
		writeJSON(w, MockQuery{Text: call.Text, PresetID: params.Get("preset_id")})

	case "/synthesis":
		if status, ok := m.renderFailures[call.Text]; ok {
			http.Error(w, fmt.Sprintf(`{"detail":"synthesis failed for %s"}`, call.Text), status)
			return
		}
		w.Header().Set("Content-Type", "audio/wav")
		_, _ = w.Write(m.audioFor(call.Text))

	case "/presets":
		presets := m.presets
		if presets == nil {
			presets = []engine.Preset{}
		}
		writeJSON(w, presets)

	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
