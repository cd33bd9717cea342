package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"nhooyr.io/websocket"
)

// Client is a minimal Chrome DevTools Protocol client bound to one page
// target. Calls are serialized: the engine drives a single storefront session
// and never issues concurrent driver actions.
type Client struct {
	conn      *websocket.Conn
	idCounter int64
	mu        sync.Mutex
}

type target struct {
	Type                 string `json:"type"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl"`
}

type envelope struct {
	ID     int64           `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *callError      `json:"error,omitempty"`
}

type callError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Dial discovers the first page target behind a DevTools endpoint and opens
// its websocket.
func Dial(ctx context.Context, baseURL string) (*Client, error) {
	endpoint := strings.TrimSpace(baseURL)
	if endpoint == "" {
		endpoint = "http://127.0.0.1:9222"
	}
	endpoint = strings.TrimSuffix(endpoint, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/json/list", nil)
	if err != nil {
		return nil, fmt.Errorf("build target request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query cdp target endpoint: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cdp target endpoint returned status %d", resp.StatusCode)
	}

	var targets []target
	if err := json.NewDecoder(resp.Body).Decode(&targets); err != nil {
		return nil, fmt.Errorf("decode cdp target response: %w", err)
	}

	var socketURL string
	for _, t := range targets {
		if t.Type == "page" && strings.TrimSpace(t.WebSocketDebuggerURL) != "" {
			socketURL = t.WebSocketDebuggerURL
			break
		}
	}
	if socketURL == "" {
		return nil, fmt.Errorf("no page target websocket found")
	}

	conn, _, err := websocket.Dial(ctx, socketURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial cdp websocket: %w", err)
	}
	conn.SetReadLimit(16 << 20)

	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "closing")
}

// Navigate loads targetURL in the page.
func (c *Client) Navigate(ctx context.Context, targetURL string) error {
	if err := c.Call(ctx, "Page.enable", nil, nil); err != nil {
		return err
	}
	return c.Call(ctx, "Page.navigate", map[string]any{"url": targetURL}, nil)
}

// CaptureScreenshot returns the page as base64-encoded PNG data.
func (c *Client) CaptureScreenshot(ctx context.Context) (string, error) {
	if err := c.Call(ctx, "Page.enable", nil, nil); err != nil {
		return "", err
	}
	var response struct {
		Data string `json:"data"`
	}
	if err := c.Call(ctx, "Page.captureScreenshot", map[string]any{"format": "png"}, &response); err != nil {
		return "", err
	}
	return response.Data, nil
}

// Call performs one CDP request/response exchange. Unsolicited events and
// responses to other ids are drained and discarded.
func (c *Client) Call(ctx context.Context, method string, params any, out any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.idCounter++
	requestID := c.idCounter

	payload := map[string]any{
		"id":     requestID,
		"method": method,
	}
	if params != nil {
		payload["params"] = params
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode cdp request: %w", err)
	}

	deadline := time.Now().Add(20 * time.Second)
	if explicit, ok := ctx.Deadline(); ok {
		deadline = explicit
	}
	writeCtx, cancelWrite := context.WithDeadline(ctx, deadline)
	defer cancelWrite()
	if err := c.conn.Write(writeCtx, websocket.MessageText, raw); err != nil {
		return fmt.Errorf("write cdp request: %w", err)
	}

	for {
		readCtx, cancelRead := context.WithDeadline(ctx, deadline)
		_, message, err := c.conn.Read(readCtx)
		cancelRead()
		if err != nil {
			return fmt.Errorf("read cdp response: %w", err)
		}

		var env envelope
		if err := json.Unmarshal(message, &env); err != nil {
			continue
		}
		if env.ID != requestID {
			continue
		}
		if env.Error != nil {
			return fmt.Errorf("cdp %s failed (%d): %s", method, env.Error.Code, env.Error.Message)
		}
		if out != nil && len(env.Result) > 0 {
			if err := json.Unmarshal(env.Result, out); err != nil {
				return fmt.Errorf("decode %s response: %w", method, err)
			}
		}
		return nil
	}
}
