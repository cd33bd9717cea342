package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asaply/orderflow/internal/cdp"
)

// Options tune one browser session. Zero values fall back to defaults.
type Options struct {
	CDPBaseURL   string
	RenderDelay  time.Duration
	WaitTimeout  time.Duration
	DialAttempts int
}

// Session owns one browser page for the duration of one plan execution. It
// implements engine.Page: every mutating primitive waits for the target to
// become visible before acting. Close must run on every exit path.
type Session struct {
	client      *cdp.Client
	waitTimeout time.Duration
}

// Open dials the DevTools endpoint (with retry, since a freshly launched
// browser takes a moment to expose it), navigates to baseURL, and waits out
// the render delay.
func Open(ctx context.Context, baseURL string, opts Options) (*Session, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("storefront base url is required")
	}

	client, err := dialWithRetry(ctx, opts.CDPBaseURL, opts.DialAttempts)
	if err != nil {
		return nil, err
	}

	session := &Session{client: client, waitTimeout: opts.WaitTimeout}
	if err := client.Navigate(ctx, baseURL); err != nil {
		client.Close()
		return nil, fmt.Errorf("navigate to %s: %w", baseURL, err)
	}

	if opts.RenderDelay > 0 {
		select {
		case <-ctx.Done():
			client.Close()
			return nil, ctx.Err()
		case <-time.After(opts.RenderDelay):
		}
	}
	return session, nil
}

func dialWithRetry(ctx context.Context, cdpBaseURL string, attempts int) (*cdp.Client, error) {
	if attempts <= 0 {
		attempts = 20
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		client, err := cdp.Dial(ctx, cdpBaseURL)
		if err == nil {
			return client, nil
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
	return nil, fmt.Errorf("dial cdp after retries: %w", lastErr)
}

func (s *Session) Close() error {
	return s.client.Close()
}

func (s *Session) Click(ctx context.Context, selector string) error {
	if err := s.client.WaitForSelector(ctx, selector, s.waitTimeout); err != nil {
		return err
	}
	return s.client.ClickSelector(ctx, selector)
}

func (s *Session) Fill(ctx context.Context, selector, value string) error {
	if err := s.client.WaitForSelector(ctx, selector, s.waitTimeout); err != nil {
		return err
	}
	return s.client.FillSelector(ctx, selector, value)
}

func (s *Session) TextContent(ctx context.Context, selector string) (string, error) {
	if err := s.client.WaitForSelector(ctx, selector, s.waitTimeout); err != nil {
		return "", err
	}
	return s.client.TextContent(ctx, selector)
}

// Screenshot captures the current page as base64 PNG data. Best-effort
// callers log and continue on error.
func (s *Session) Screenshot(ctx context.Context) (string, error) {
	return s.client.CaptureScreenshot(ctx)
}
