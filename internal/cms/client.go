// Package cms is the query layer over the Strapi content backend that owns
// tables, orders and the catalog.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	pageSize     = 100
	maxBodyBytes = 8 << 20
)

type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// APIError relays a failure reported by the backend.
type APIError struct {
	Status  int
	Name    string
	Message string
}

func (e *APIError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("cms: %d %s: %s", e.Status, e.Name, e.Message)
	}
	return fmt.Sprintf("cms: %d: %s", e.Status, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

type Meta struct {
	Pagination Pagination `json:"pagination"`
}

type Response[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

type Single[T any] struct {
	Data T `json:"data"`
}

type errorBody struct {
	Status  int             `json:"status"`
	Name    string          `json:"name"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

func (b *errorBody) present() bool {
	if b == nil {
		return false
	}
	details := bytes.TrimSpace(b.Details)
	hasDetails := len(details) > 0 && !bytes.Equal(details, []byte("{}")) && !bytes.Equal(details, []byte("null"))
	return b.Status != 0 || b.Name != "" || b.Message != "" || hasDetails
}

type errorEnvelope struct {
	Error *errorBody `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := fmt.Sprintf("%s/api/%s", c.baseURL, path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if apiErr := decodeError(resp.StatusCode, raw); apiErr != nil {
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeError turns a non-2xx status, or a 2xx body carrying an error
// envelope, into an *APIError.
func decodeError(status int, raw []byte) *APIError {
	var env errorEnvelope
	_ = json.Unmarshal(raw, &env)

	ok := status >= 200 && status < 300
	if ok && !env.Error.present() {
		return nil
	}

	apiErr := &APIError{Status: status}
	if env.Error != nil {
		apiErr.Name = env.Error.Name
		apiErr.Message = env.Error.Message
		if env.Error.Status != 0 {
			apiErr.Status = env.Error.Status
		}
		if apiErr.Message == "" && len(env.Error.Details) > 0 {
			var details errorBody
			if json.Unmarshal(env.Error.Details, &details) == nil {
				apiErr.Message = details.Message
				if apiErr.Name == "" {
					apiErr.Name = details.Name
				}
				if details.Status != 0 {
					apiErr.Status = details.Status
				}
			}
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
	}
	return apiErr
}

// list walks every page of a collection.
func list[T any](ctx context.Context, c *Client, collection string, query url.Values) ([]T, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("pagination[pageSize]", strconv.Itoa(pageSize))

	var out []T
	for page := 1; ; page++ {
		q.Set("pagination[page]", strconv.Itoa(page))

		var resp Response[T]
		if err := c.do(ctx, http.MethodGet, collection, q, nil, &resp); err != nil {
			return nil, fmt.Errorf("list %s: %w", collection, err)
		}
		out = append(out, resp.Data...)

		if page >= resp.Meta.Pagination.PageCount || len(resp.Data) == 0 {
			return out, nil
		}
	}
}

// Create posts payload wrapped as {"data": payload} and decodes the stored
// record into out when out is non-nil.
func (c *Client) Create(ctx context.Context, collection string, payload, out any) error {
	return c.write(ctx, http.MethodPost, collection, payload, out)
}

func (c *Client) Update(ctx context.Context, collection, documentID string, payload, out any) error {
	return c.write(ctx, http.MethodPut, collection+"/"+url.PathEscape(documentID), payload, out)
}

func (c *Client) Delete(ctx context.Context, collection, documentID string) error {
	path := collection + "/" + url.PathEscape(documentID)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (c *Client) write(ctx context.Context, method, path string, payload, out any) error {
	body := map[string]any{"data": payload}
	if out == nil {
		if err := c.do(ctx, method, path, nil, body, nil); err != nil {
			return fmt.Errorf("%s %s: %w", strings.ToLower(method), path, err)
		}
		return nil
	}
	var single Single[json.RawMessage]
	if err := c.do(ctx, method, path, nil, body, &single); err != nil {
		return fmt.Errorf("%s %s: %w", strings.ToLower(method), path, err)
	}
	if len(single.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(single.Data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
