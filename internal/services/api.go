// Raw method calls against the VK API
package services

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/desertthunder/flow/internal/shared"
)

// APIResponse represents a raw method response.
type APIResponse struct {
	Method string
	URL    string // request URL with the access token redacted
	Body   []byte
	IsXML  bool
}

// Call invokes an arbitrary API method with the stored tokens and returns the raw body.
//
// Method names ending in ".xml" get XML back; other responses are returned untouched.
// The API's <error> envelope is reported as an [*APIError].
func (s *VKService) Call(ctx context.Context, method string, params url.Values) (*APIResponse, error) {
	method = strings.Trim(strings.TrimSpace(method), "/")
	if method == "" {
		return nil, fmt.Errorf("%w: method name", shared.ErrMissingArgument)
	}

	tokens, ok := s.Tokens()
	if !ok {
		return nil, fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	endpoint := methodURL(s.baseURL, method, tokens, params)

	body, err := s.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	resp := &APIResponse{
		Method: method,
		URL:    redact(endpoint),
		Body:   data,
		IsXML:  strings.HasSuffix(method, ".xml"),
	}

	if resp.IsXML {
		var envelope struct {
			XMLName xml.Name
			Code    int    `xml:"error_code"`
			Message string `xml:"error_msg"`
		}
		if err := xml.Unmarshal(data, &envelope); err == nil && envelope.XMLName.Local == "error" {
			return resp, &APIError{Code: envelope.Code, Message: envelope.Message}
		}
	}

	return resp, nil
}

// redact hides the access_token query value of endpoint.
func redact(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	q := u.Query()
	if q.Has("access_token") {
		q.Set("access_token", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}
