// Package leadapi is the HTTP client the admin tools use to talk to the
// lead service.
package leadapi

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

// maxPages bounds ListAll when a server keeps returning tokens.
const maxPages = 50

type Client struct {
	baseURL     string
	apiKey      string
	adminOrigin string
	http        *http.Client
}

// NewClient builds a client for baseURL. The API key authorizes listing;
// status updates are sent with adminOrigin as the Origin header.
func NewClient(baseURL, apiKey, adminOrigin string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		adminOrigin: strings.TrimRight(adminOrigin, "/"),
		http:        httpClient,
	}
}

func (c *Client) List(ctx context.Context, p ListParams) (*ListResponse, error) {
	q := url.Values{}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	for k, v := range map[string]string{
		"status":    p.Status,
		"q":         p.Query,
		"start":     p.Start,
		"end":       p.End,
		"pageToken": p.PageToken,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}

	target := c.baseURL + "/api/admin/consults"
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	c.addAuthHeaders(req)

	var out ListResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return &out, nil
}

// ListAll follows page tokens until the last page.
func (c *Client) ListAll(ctx context.Context, p ListParams) (*ListResponse, error) {
	all := &ListResponse{OK: true}
	for range maxPages {
		page, err := c.List(ctx, p)
		if err != nil {
			return nil, err
		}
		all.Items = append(all.Items, page.Items...)
		all.Degraded = all.Degraded || page.Degraded
		if page.NextPageToken == "" {
			return all, nil
		}
		p.PageToken = page.NextPageToken
	}
	all.NextPageToken = p.PageToken
	return all, nil
}

func (c *Client) UpdateStatus(ctx context.Context, id, status string) error {
	payload, err := json.Marshal(updateStatusRequest{Status: status})
	if err != nil {
		return err
	}

	target := c.baseURL + "/api/consults/" + url.PathEscape(id) + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, target, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addAuthHeaders(req)

	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("update status of %s: %w", id, err)
	}
	return nil
}

func (c *Client) addAuthHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if c.adminOrigin != "" {
		req.Header.Set("Origin", c.adminOrigin)
	}
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			apiErr.Code = eb.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}
