package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTP is a Tool that performs GET and POST requests, for handlers that
// fetch from REST APIs or post to webhooks.
//
// Arguments:
//   - "url" (string, required): target URL
//   - "method" (string): "GET" (default) or "POST"
//   - "headers" (map[string]any): request headers, string values
//   - "body" (string): request body, POST only
//
// Result:
//   - "status_code" (int), "body" (string), "headers" (map[string]any)
//
// Timeouts come from the caller's context; the embedded client sets none of
// its own.
type HTTP struct {
	client *http.Client
}

// NewHTTP creates an HTTP tool. A nil client uses a default one.
func NewHTTP(client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTP{client: client}
}

// Name implements Tool.
func (*HTTP) Name() string { return "http_request" }

// Call implements Tool.
func (h *HTTP) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	url, ok := args["url"].(string)
	if !ok || url == "" {
		return nil, fmt.Errorf("http_request: url argument is required")
	}

	method := http.MethodGet
	if m, ok := args["method"].(string); ok && m != "" {
		method = strings.ToUpper(m)
	}
	if method != http.MethodGet && method != http.MethodPost {
		return nil, fmt.Errorf("http_request: unsupported method %q", method)
	}

	var body io.Reader
	if b, ok := args["body"].(string); ok && b != "" {
		body = strings.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("http_request: build request: %w", err)
	}
	if headers, ok := args["headers"].(map[string]any); ok {
		for k, v := range headers {
			if s, ok := v.(string); ok {
				req.Header.Set(k, s)
			}
		}
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http_request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("http_request: read response: %w", err)
	}

	respHeaders := make(map[string]any, len(resp.Header))
	for k, values := range resp.Header {
		if len(values) == 1 {
			respHeaders[k] = values[0]
		} else {
			respHeaders[k] = values
		}
	}

	return map[string]any{
		"status_code": resp.StatusCode,
		"body":        string(respBody),
		"headers":     respHeaders,
	}, nil
}
