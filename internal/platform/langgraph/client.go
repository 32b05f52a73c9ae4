package langgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/siteproof-backend/internal/platform/envutil"
	"github.com/yungbote/siteproof-backend/internal/platform/logger"
)

var ErrNotConfigured = errors.New("langgraph is not configured")

type Config struct {
	BaseURL     string
	APIKey      string
	AssistantID string
	GraphRAGURL string
	DialTimeout time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		BaseURL:     strings.TrimRight(envutil.String("LANGGRAPH_API_URL", ""), "/"),
		APIKey:      envutil.String("LANGGRAPH_API_KEY", ""),
		AssistantID: envutil.String("LANGGRAPH_ASSISTANT_ID", "orchestrator"),
		GraphRAGURL: strings.TrimRight(envutil.String("GRAPHRAG_SERVICE_URL", ""), "/"),
		DialTimeout: time.Duration(envutil.Int("LANGGRAPH_DIAL_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

// HTTPError is a non-2xx answer from an upstream AI service.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}

type Thread struct {
	ThreadID string `json:"thread_id"`
}

type Run struct {
	RunID       string `json:"run_id"`
	ThreadID    string `json:"thread_id"`
	AssistantID string `json:"assistant_id"`
	Status      string `json:"status"`
}

type RunInput struct {
	ProjectID   string   `json:"project_id"`
	DocumentIDs []string `json:"document_ids"`
}

// Client talks to the LangGraph server and the GraphRAG chat service.
// Stream methods return the open upstream body; the caller must close it.
type Client interface {
	Enabled() bool
	ChatEnabled() bool
	CreateThread(ctx context.Context, metadata map[string]string) (*Thread, error)
	CreateRun(ctx context.Context, threadID string, input RunInput) (*Run, error)
	StreamRun(ctx context.Context, threadID, runID string) (io.ReadCloser, error)
	ChatStream(ctx context.Context, body []byte) (io.ReadCloser, error)
}

type client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

// New builds a client whose transport bounds connection setup but sets no
// overall deadline, so event streams can stay open.
func New(cfg Config, log *logger.Logger) Client {
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = 10 * time.Second
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: dial, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout: dial,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
	}
	c := &client{log: log.With("client", "LangGraph"), cfg: cfg, httpClient: &http.Client{Transport: transport}}
	if cfg.BaseURL == "" {
		c.log.Warn("LangGraph disabled (LANGGRAPH_API_URL not set)")
	}
	return c
}

func (c *client) Enabled() bool     { return c != nil && c.cfg.BaseURL != "" }
func (c *client) ChatEnabled() bool { return c != nil && c.cfg.GraphRAGURL != "" }

func (c *client) CreateThread(ctx context.Context, metadata map[string]string) (*Thread, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	var out Thread
	if err := c.doJSON(ctx, http.MethodPost, c.cfg.BaseURL+"/threads", map[string]any{"metadata": metadata}, &out); err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	if out.ThreadID == "" {
		return nil, fmt.Errorf("create thread: empty thread_id")
	}
	return &out, nil
}

func (c *client) CreateRun(ctx context.Context, threadID string, input RunInput) (*Run, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	if input.DocumentIDs == nil {
		input.DocumentIDs = []string{}
	}
	body := map[string]any{"assistant_id": c.cfg.AssistantID, "input": input}
	var out Run
	path := c.cfg.BaseURL + "/threads/" + url.PathEscape(threadID) + "/runs"
	if err := c.doJSON(ctx, http.MethodPost, path, body, &out); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	if out.ThreadID == "" {
		out.ThreadID = threadID
	}
	return &out, nil
}

func (c *client) StreamRun(ctx context.Context, threadID, runID string) (io.ReadCloser, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	path := c.cfg.BaseURL + "/threads/" + url.PathEscape(threadID) + "/runs/" + url.PathEscape(runID) + "/stream"
	return c.openStream(ctx, http.MethodGet, path, nil)
}

func (c *client) ChatStream(ctx context.Context, body []byte) (io.ReadCloser, error) {
	if !c.ChatEnabled() {
		return nil, ErrNotConfigured
	}
	return c.openStream(ctx, http.MethodPost, c.cfg.GraphRAGURL+"/api/chat/stream", body)
}

func (c *client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", c.cfg.APIKey)
	}
	return req, nil
}

func (c *client) doJSON(ctx context.Context, method, target string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := c.newRequest(ctx, method, target, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// openStream returns the body of a 2xx event-stream response. Any other
// status is read, closed and returned as *HTTPError.
func (c *client) openStream(ctx context.Context, method, target string, body []byte) (io.ReadCloser, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := c.newRequest(ctx, method, target, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		c.log.Warn("upstream stream refused", "status", resp.StatusCode, "path", req.URL.Path)
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}
	return resp.Body, nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n]
}
