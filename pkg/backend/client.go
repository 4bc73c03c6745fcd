package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// Client talks to the hosted backend's REST APIs (auth and storage). Every
// request carries the project key in the apikey header.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Request struct {
	Method string
	Path   string
	// Token is sent as the bearer token. The API key is used when it's empty.
	Token  string
	Header http.Header
	// JSON is encoded as the request body when set. Otherwise Body is sent
	// as-is with ContentType.
	JSON        interface{}
	Body        io.Reader
	ContentType string
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend responded with %d: %s", e.StatusCode, e.Message)
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// URL returns the absolute URL for the given path.
func (c *Client) URL(path string) string {
	return c.baseURL + path
}

// Do sends the request and decodes a JSON response into out, if out is not
// nil.
func (c *Client) Do(ctx context.Context, r Request, out interface{}) error {
	body := r.Body
	contentType := r.ContentType
	if r.JSON != nil {
		b, err := json.Marshal(r.JSON)
		if err != nil {
			return errors.WithStack(err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.URL(r.Path), body)
	if err != nil {
		return errors.WithStack(err)
	}
	for k, vs := range r.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	token := r.Token
	if token == "" {
		token = c.apiKey
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", r.Method, r.Path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WithStack(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.WithStack(&APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.StatusCode, data),
		})
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	return errors.WithStack(json.Unmarshal(data, out))
}

// errorMessage pulls the human readable message out of an error body. The
// auth and storage APIs don't agree on the field name.
func errorMessage(status int, data []byte) string {
	var body struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		for _, m := range []string{body.Msg, body.Message, body.ErrorDescription, body.Error} {
			if m != "" {
				return m
			}
		}
	}
	return http.StatusText(status)
}

// StatusCode returns the HTTP status of an APIError wrapped in err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
