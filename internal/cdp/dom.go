package cdp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	defaultWaitTimeout = 12 * time.Second
	pollInterval       = 150 * time.Millisecond
)

// visibleFinderJS locates the first visible element matching a selector.
// Hidden or zero-area elements are ignored so waits line up with what a
// human could actually click.
const visibleFinderJS = `
	const visible = (el) => {
		const style = window.getComputedStyle(el);
		if (!style || style.display === "none" || style.visibility === "hidden") return false;
		const rect = el.getBoundingClientRect();
		return rect.width > 1 && rect.height > 1;
	};
	const el = Array.from(document.querySelectorAll(%q)).find(visible);
`

func (c *Client) evaluate(ctx context.Context, expression string) (any, error) {
	if err := c.Call(ctx, "Runtime.enable", nil, nil); err != nil {
		return nil, err
	}
	var response struct {
		Result struct {
			Value any `json:"value"`
		} `json:"result"`
	}
	if err := c.Call(ctx, "Runtime.evaluate", map[string]any{
		"expression":    expression,
		"returnByValue": true,
	}, &response); err != nil {
		return nil, err
	}
	return response.Result.Value, nil
}

func (c *Client) evaluateString(ctx context.Context, expression string) (string, error) {
	value, err := c.evaluate(ctx, expression)
	if err != nil {
		return "", err
	}
	if value == nil {
		return "", nil
	}
	return fmt.Sprint(value), nil
}

// WaitForSelector polls until a visible element matches selector or the
// timeout elapses. A timeout here is fatal for the run; the engine applies
// no retry on top of it.
func (c *Client) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return errors.New("selector is required")
	}
	if timeout <= 0 {
		timeout = defaultWaitTimeout
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	expression := fmt.Sprintf(`(() => {`+visibleFinderJS+`
	return el !== undefined;
	})()`, selector)

	for {
		value, err := c.evaluate(waitCtx, expression)
		if err != nil {
			return err
		}
		if found, ok := value.(bool); ok && found {
			return nil
		}

		select {
		case <-waitCtx.Done():
			return fmt.Errorf("timeout waiting for selector %q", selector)
		case <-time.After(pollInterval):
		}
	}
}

// ClickSelector clicks the first visible element matching selector.
func (c *Client) ClickSelector(ctx context.Context, selector string) error {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return errors.New("selector is required")
	}

	expression := fmt.Sprintf(`(() => {`+visibleFinderJS+`
	if (!el) return "not_found";
	el.scrollIntoView({block:"center", inline:"center"});
	if (typeof el.focus === "function") el.focus();
	el.click();
	return "ok";
	})()`, selector)

	result, err := c.evaluateString(ctx, expression)
	if err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("click failed: %s", result)
	}
	return nil
}

// FillSelector clears the first visible element matching selector and types
// text into it through the input event pipeline, so frameworks observing
// input events see the change.
func (c *Client) FillSelector(ctx context.Context, selector, text string) error {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return errors.New("selector is required")
	}

	expression := fmt.Sprintf(`(() => {`+visibleFinderJS+`
	if (!el) return "not_found";
	el.scrollIntoView({block:"center", inline:"center"});
	el.focus();
	if ("value" in el) {
		el.value = "";
		el.dispatchEvent(new Event("input", {bubbles: true}));
	}
	return "ok";
	})()`, selector)

	result, err := c.evaluateString(ctx, expression)
	if err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("fill failed: %s", result)
	}
	if err := c.Call(ctx, "Input.insertText", map[string]any{"text": text}, nil); err != nil {
		return fmt.Errorf("fill failed: insert text: %w", err)
	}
	return nil
}

// TextContent returns the text content of the first visible element matching
// selector. Read-only: verification must never mutate the DOM.
func (c *Client) TextContent(ctx context.Context, selector string) (string, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return "", errors.New("selector is required")
	}

	expression := fmt.Sprintf(`(() => {`+visibleFinderJS+`
	if (!el) return null;
	return el.textContent || "";
	})()`, selector)

	value, err := c.evaluate(ctx, expression)
	if err != nil {
		return "", err
	}
	if value == nil {
		return "", fmt.Errorf("no visible element for selector %q", selector)
	}
	return fmt.Sprint(value), nil
}
