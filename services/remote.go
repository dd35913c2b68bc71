// services/remote.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"chapter-community/utils"

	"github.com/google/uuid"
)

const maxResponseBytes = 1 << 20

// apiEnvelope is the response shape every remote endpoint uses.
type apiEnvelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	ErrorCode string          `json:"error_code,omitempty"`
}

// APIClient performs JSON calls against the chapter API and classifies failures.
type APIClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func NewAPIClient(baseURL, token string, timeout time.Duration) *APIClient {
	return &APIClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client:  utils.NewHTTPClient(timeout),
	}
}

// call sends body as JSON and decodes the envelope's data into out.
// Anything that goes wrong after the request is built is a *RemoteError.
func (c *APIClient) call(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return NewTransportError(op, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	// From here on the server answered; every failure is authoritative.
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &RemoteError{Op: op, ServerReached: true, StatusCode: resp.StatusCode,
			Code: CodeInvalidResponse, Message: "failed to read response body", Cause: err}
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		msg := strings.TrimSpace(string(raw))
		if len(msg) > 256 {
			msg = msg[:256]
		}
		code := ""
		if resp.StatusCode < 300 {
			code = CodeInvalidResponse
		}
		return &RemoteError{Op: op, ServerReached: true, StatusCode: resp.StatusCode, Code: code, Message: msg, Cause: err}
	}

	if resp.StatusCode >= 300 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return NewDenial(op, resp.StatusCode, env.ErrorCode, msg)
	}

	if out != nil {
		if len(env.Data) == 0 {
			return NewDenial(op, resp.StatusCode, CodeInvalidResponse, "response carried no data")
		}
		if err := json.Unmarshal(env.Data, out); err != nil {
			return &RemoteError{Op: op, ServerReached: true, StatusCode: resp.StatusCode,
				Code: CodeInvalidResponse, Message: "malformed response data", Cause: err}
		}
	}
	return nil
}
