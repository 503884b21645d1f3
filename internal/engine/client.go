package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Endpoint paths of the engine API.
const (
	pathAudioQuery           = "/audio_query"
	pathAudioQueryFromPreset = "/audio_query_from_preset"
	pathPresets              = "/presets"
	pathSynthesis            = "/synthesis"
)

const (
	contentTypeJSON = "application/json"
	contentTypeWAV  = "audio/wav"
)

// Config holds the engine connection settings.
type Config struct {
	BaseURL string        // e.g. "http://127.0.0.1:50021"
	Timeout time.Duration // per request; synthesis is CPU bound and can take seconds

	RateLimit float64 // requests per second, 0 disables limiting

	// BreakerFailures is the number of consecutive transport or 5xx failures
	// that open the circuit breaker. 0 disables the breaker.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// DefaultConfig returns the settings for an engine on its default local port.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         "http://127.0.0.1:50021",
		Timeout:         60 * time.Second,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// AudioQuery is the structured rendering description returned by the engine.
// Body is passed to synthesis unmodified.
type AudioQuery struct {
	Text string
	Body json.RawMessage
}

// Validate checks that the query can be sent to synthesis.
func (q *AudioQuery) Validate() error {
	if q == nil || len(q.Body) == 0 {
		return fmt.Errorf("audio query is empty")
	}
	if !json.Valid(q.Body) {
		return fmt.Errorf("audio query for %q is not valid JSON", q.Text)
	}
	return nil
}

// Preset is a named bundle of speaker and prosody defaults.
type Preset struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	SpeakerUUID       string  `json:"speaker_uuid"`
	StyleID           int     `json:"style_id"`
	SpeedScale        float64 `json:"speedScale"`
	PitchScale        float64 `json:"pitchScale"`
	IntonationScale   float64 `json:"intonationScale"`
	VolumeScale       float64 `json:"volumeScale"`
	PrePhonemeLength  float64 `json:"prePhonemeLength"`
	PostPhonemeLength float64 `json:"postPhonemeLength"`
}

// SynthesisOptions are the request parameters of a synthesis call.
type SynthesisOptions struct {
	Speaker           int
	SpeedScale        float64
	VolumeScale       float64
	IntonationScale   float64
	PrePhonemeLength  float64
	PostPhonemeLength float64
}

func (o SynthesisOptions) values() url.Values {
	v := url.Values{}
	v.Set("speaker", strconv.Itoa(o.Speaker))
	v.Set("speedScale", formatFloat(o.SpeedScale))
	v.Set("volumeScale", formatFloat(o.VolumeScale))
	v.Set("intonationScale", formatFloat(o.IntonationScale))
	v.Set("prePhonemeLength", formatFloat(o.PrePhonemeLength))
	v.Set("postPhonemeLength", formatFloat(o.PostPhonemeLength))
	return v
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Client talks to one synthesis engine. It is safe to reuse across a batch run.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

// NewClient creates a client for the engine described by config.
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	parsed, err := url.Parse(config.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid engine URL %q", config.BaseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		timeout:    config.Timeout,
		httpClient: &http.Client{},
	}

	if config.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	if config.BreakerFailures > 0 {
		threshold := config.BreakerFailures
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        parsed.Host,
			MaxRequests: 1,
			Timeout:     config.BreakerCooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || isClientError(err)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				slog.Warn("Engine circuit breaker changed state", "engine", name, "from", from.String(), "to", to.String())
			},
		})
	}

	return c, nil
}

// BaseURL returns the engine origin the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AudioQuery builds a query for text with the given speaker.
func (c *Client) AudioQuery(ctx context.Context, text string, speaker int) (*AudioQuery, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("speaker", strconv.Itoa(speaker))

	return c.query(ctx, "audio_query", pathAudioQuery, text, params)
}

// AudioQueryFromPreset builds a query for text with the given preset. The
// speaker is implied by the preset on the engine side.
func (c *Client) AudioQueryFromPreset(ctx context.Context, text string, presetID int) (*AudioQuery, error) {
	params := url.Values{}
	params.Set("text", text)
	params.Set("preset_id", strconv.Itoa(presetID))

	return c.query(ctx, "audio_query_from_preset", pathAudioQueryFromPreset, text, params)
}

func (c *Client) query(ctx context.Context, op, path, text string, params url.Values) (*AudioQuery, error) {
	body, err := c.do(ctx, request{
		op:     op,
		kind:   ErrRemoteQuery,
		method: http.MethodPost,
		path:   path,
		params: params,
		accept: contentTypeJSON,
	})
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s returned invalid JSON", ErrRemoteQuery, op)
	}

	return &AudioQuery{Text: text, Body: json.RawMessage(body)}, nil
}

// Presets lists the presets configured on the engine.
func (c *Client) Presets(ctx context.Context) ([]Preset, error) {
	body, err := c.do(ctx, request{
		op:     "presets",
		kind:   ErrRemotePresets,
		method: http.MethodGet,
		path:   pathPresets,
		accept: contentTypeJSON,
	})
	if err != nil {
		return nil, err
	}

	var presets []Preset
	if err := json.Unmarshal(body, &presets); err != nil {
		return nil, fmt.Errorf("%w: failed to decode presets: %v", ErrRemotePresets, err)
	}
	return presets, nil
}

// Synthesis renders query into audio bytes.
func (c *Client) Synthesis(ctx context.Context, query *AudioQuery, opts SynthesisOptions) ([]byte, error) {
	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteRender, err)
	}

	return c.do(ctx, request{
		op:     "synthesis",
		kind:   ErrRemoteRender,
		method: http.MethodPost,
		path:   pathSynthesis,
		params: opts.values(),
		body:   query.Body,
		accept: contentTypeWAV,
	})
}

type request struct {
	op     string
	kind   error
	method string
	path   string
	params url.Values
	body   []byte
	accept string
}

// do runs one request with the per-call timeout, the rate limiter and the
// circuit breaker applied. Every error it returns is a *RemoteError.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportError(r.op, r.kind, err)
		}
	}

	if c.breaker == nil {
		return c.roundTrip(ctx, r)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.roundTrip(ctx, r)
	})
	if err != nil {
		if _, ok := err.(*RemoteError); ok {
			return nil, err
		}
		// gobreaker.ErrOpenState or ErrTooManyRequests
		return nil, transportError(r.op, r.kind, err)
	}
	return result.([]byte), nil
}

func (c *Client) roundTrip(ctx context.Context, r request) ([]byte, error) {
	target := c.baseURL + r.path
	if len(r.params) > 0 {
		target += "?" + r.params.Encode()
	}

	var reqBody io.Reader = http.NoBody
	if r.body != nil {
		reqBody = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, reqBody)
	if err != nil {
		return nil, transportError(r.op, r.kind, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", r.accept)
	if r.body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("Engine request failed", "op", r.op, "error", err)
		return nil, transportError(r.op, r.kind, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(r.op, r.kind, fmt.Errorf("failed to read response: %w", err))
	}

	slog.Debug("Engine request", "op", r.op, "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(r.op, r.kind, resp.StatusCode, body)
	}
	return body, nil
}
