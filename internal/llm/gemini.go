// Package llm calls the hosted generative model that produces a diagnosis
// before the rule engine is consulted.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/diagnosis"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// Name is reported in logs and health output.
const Name = "gemini"

const (
	maxResponseBytes  = 1 << 20
	maxErrorBodyBytes = 200
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model returned HTTP %d: %s", e.Code, e.Body)
}

type Client struct {
	cfg     config.ModelConfig
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*diagnosis.Result]
	log     *zap.Logger
}

func NewClient(cfg config.ModelConfig, log *zap.Logger) *Client {
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 3
	}
	c.breaker = gobreaker.NewCircuitBreaker[*diagnosis.Result](gobreaker.Settings{
		Name:        Name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// A caller giving up is not the model's fault.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("model circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return c
}

func (c *Client) Enabled() bool {
	return c != nil && c.cfg.Enabled()
}

// Diagnose asks the model for a structured result. Any failure, including an
// open breaker, is returned as an error and the caller is expected to fall back.
func (c *Client) Diagnose(ctx context.Context, req *diagnosis.Request) (*diagnosis.Result, error) {
	if !c.Enabled() {
		return nil, diagnosis.ErrModelDisabled
	}
	return c.breaker.Execute(func() (*diagnosis.Result, error) {
		return c.generate(ctx, buildPrompt(req))
	})
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, prompt string) (*diagnosis.Result, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{Temperature: 0.2, ResponseMimeType: "application/json"},
	})
	if err != nil {
		return nil, fmt.Errorf("encoding model request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.PathEscape(c.cfg.Name))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building model request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.cfg.APIKey)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling model: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading model response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: truncate(string(raw), maxErrorBodyBytes)}
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, fmt.Errorf("%w: %v", diagnosis.ErrModelResponse, err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no candidates", diagnosis.ErrModelResponse)
	}

	var text strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}

	res, err := ParseResult(text.String())
	if err != nil {
		return nil, err
	}

	c.log.Debug("model diagnosis received",
		zap.String("diagnosis", res.PrimaryDiagnosis),
		zap.Duration("latency", time.Since(start)),
	)
	return res, nil
}

// ParseResult decodes model output that may be wrapped in a markdown code
// fence. A result without a primary diagnosis is rejected.
func ParseResult(text string) (*diagnosis.Result, error) {
	text = stripFence(text)

	var res diagnosis.Result
	if err := json.Unmarshal([]byte(text), &res); err != nil {
		return nil, fmt.Errorf("%w: %v", diagnosis.ErrModelResponse, err)
	}
	if strings.TrimSpace(res.PrimaryDiagnosis) == "" {
		return nil, fmt.Errorf("%w: missing primary_diagnosis", diagnosis.ErrModelResponse)
	}

	// Some responses use percentages despite the instructions.
	if res.ConfidenceScore > 1 && res.ConfidenceScore <= 100 {
		res.ConfidenceScore /= 100
	}
	res.Normalize()
	return &res, nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// FailureReason classifies a Diagnose error for metrics and logs.
func FailureReason(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, diagnosis.ErrModelDisabled):
		return "disabled"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "breaker_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &statusErr):
		return "http_status"
	case errors.Is(err, diagnosis.ErrModelResponse):
		return "bad_response"
	default:
		return "transport"
	}
}
