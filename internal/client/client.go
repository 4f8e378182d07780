// Package client is the REST client for the publication API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"solifin/internal/models"
	"solifin/internal/submission"
)

type Client struct {
	baseURL    string
	token      string
	authScheme string
	httpClient *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		authScheme: "Bearer",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *Client) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.httpClient = hc
	}
}

func (c *Client) SetToken(token string) {
	c.token = strings.TrimSpace(token)
}

type errorBody struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields"`
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	if c.baseURL == "" {
		return &TransportError{Op: op, Message: "API base URL is not configured"}
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.authScheme+" "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		te := &TransportError{Op: op, StatusCode: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil && (eb.Error != "" || eb.Message != "") {
			te.Code = eb.Error
			te.Message = eb.Message
			te.Fields = eb.Fields
		} else {
			te.Message = strings.TrimSpace(string(data))
		}
		return te
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("invalid json: %w", err)}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return &TransportError{Op: op, Err: err}
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, op, method, path, nil, body, contentType, out)
}

func itemPath(t models.PublicationType, id string) string {
	return "/" + t.Resource() + "/" + url.PathEscape(id)
}

// MyPage fetches the owner's page and publications.
func (c *Client) MyPage(ctx context.Context) (*models.MyPage, error) {
	var out models.MyPage
	if err := c.doJSON(ctx, "my page", http.MethodGet, "/my-page", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Get(ctx context.Context, t models.PublicationType, id string) (*models.Publication, error) {
	var out models.Publication
	if err := c.doJSON(ctx, "get "+string(t), http.MethodGet, itemPath(t, id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOptions filters the administrator listing.
type ListOptions struct {
	Status   string
	State    string
	Search   string
	Page     int
	PageSize int
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type ListResult struct {
	Data       []models.Publication `json:"data"`
	Pagination Pagination           `json:"pagination"`
}

// List is the moderation listing of every owner's publications of type t.
func (c *Client) List(ctx context.Context, t models.PublicationType, opts ListOptions) (*ListResult, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("statut", opts.Status)
	}
	if opts.State != "" {
		q.Set("etat", opts.State)
	}
	if opts.Search != "" {
		q.Set("q", opts.Search)
	}
	if opts.Page > 0 {
		q.Set("page", fmt.Sprint(opts.Page))
	}
	if opts.PageSize > 0 {
		q.Set("page_size", fmt.Sprint(opts.PageSize))
	}
	var out ListResult
	if err := c.do(ctx, "list "+string(t), http.MethodGet, "/"+t.Resource(), q, nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Submit sends a built payload: a create, or an update when id is set. An
// update is a POST carrying the method override.
func (c *Client) Submit(ctx context.Context, t models.PublicationType, id string, p *submission.Payload) (*models.Publication, error) {
	var buf bytes.Buffer
	contentType, err := p.Encode(&buf)
	if err != nil {
		return nil, &TransportError{Op: "encode " + string(t), Err: err}
	}

	op, path := "create "+string(t), "/"+t.Resource()
	var q url.Values
	if id != "" {
		op, path = "update "+string(t), itemPath(t, id)
		q = url.Values{submission.MethodOverrideField: {http.MethodPut}}
	}
	var out models.Publication
	if err := c.do(ctx, op, http.MethodPost, path, q, &buf, contentType, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Delete(ctx context.Context, t models.PublicationType, id string) error {
	return c.doJSON(ctx, "delete "+string(t), http.MethodDelete, itemPath(t, id), nil, nil)
}

// SetApprovalStatus is the administrator moderation call.
func (c *Client) SetApprovalStatus(ctx context.Context, t models.PublicationType, id string, status models.ApprovalStatus, reason string) (*models.Publication, error) {
	in := models.UpdateStatusRequest{Status: status, Reason: reason}
	var out models.Publication
	if err := c.doJSON(ctx, "set status", http.MethodPatch, itemPath(t, id)+"/status", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SetAvailability(ctx context.Context, t models.PublicationType, id string, state models.AvailabilityState) (*models.Publication, error) {
	in := models.UpdateStateRequest{State: string(state)}
	var out models.Publication
	if err := c.doJSON(ctx, "set state", http.MethodPatch, itemPath(t, id)+"/state", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
