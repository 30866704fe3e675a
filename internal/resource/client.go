package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 16 << 20

// Client performs list/get/create/update/remove against one collection
// endpoint. Each call is attempted exactly once.
type Client struct {
	baseURL  string
	ep       Endpoint
	http     *http.Client
	token    string
	observer Observer
	log      *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithToken sends the admin token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient builds a client for ep. baseURL is the API root, for example
// "https://api.example.com/admin_api".
func NewClient(baseURL string, ep Endpoint, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		ep:      ep,
		http:    http.DefaultClient,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Endpoint() Endpoint { return c.ep }

func (c *Client) url(query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(c.ep.Path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) List(ctx context.Context) ([]Record, error) {
	body, err := c.do(ctx, "list", http.MethodGet, c.url(nil), nil, "")
	if err != nil {
		return nil, err
	}
	out, err := decodeCollection(body, c.ep)
	if err != nil {
		return nil, c.undecodable("list", err)
	}
	return out, nil
}

// Get fetches one record via GET ?id=.
func (c *Client) Get(ctx context.Context, id string) (Record, error) {
	body, err := c.do(ctx, "get", http.MethodGet, c.url(url.Values{"id": {id}}), nil, "")
	if err != nil {
		return nil, err
	}
	rec, ok, err := decodeRecord(body, c.ep)
	if err != nil {
		return nil, c.undecodable("get", err)
	}
	if ok {
		return rec, nil
	}
	// some endpoints ignore ?id= and return the whole list
	all, err := decodeCollection(body, c.ep)
	if err != nil {
		return nil, c.undecodable("get", err)
	}
	for _, r := range all {
		if rid, _ := r.ID(c.ep.IDKey()); rid == id {
			return r, nil
		}
	}
	return nil, &ServerError{Op: "get", Status: http.StatusNotFound, Message: "Record not found."}
}

func (c *Client) Create(ctx context.Context, p Payload) (Record, error) {
	body, ct, err := p.encode(c.ep.Multipart, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, "create", http.MethodPost, c.url(nil), body, ct)
	if err != nil {
		return nil, err
	}
	return c.result(resp, p, "")
}

// Update applies p to record id. Depending on the endpoint this is a PUT, a
// POST with a method override, or a POST upsert.
func (c *Client) Update(ctx context.Context, id string, p Payload) (Record, error) {
	extra := map[string]any{c.ep.IDKey(): id}
	method := http.MethodPut
	target := c.url(nil)

	switch c.ep.updateMode() {
	case UpdatePostOverride:
		method = http.MethodPost
		extra[methodOverrideField] = http.MethodPut
		target = c.url(url.Values{"id": {id}, methodOverrideField: {http.MethodPut}})
	case UpdatePost:
		method = http.MethodPost
	}

	body, ct, err := p.encode(c.ep.Multipart, extra)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(ctx, "update", method, target, body, ct)
	if err != nil {
		return nil, err
	}
	return c.result(resp, p, id)
}

func (c *Client) Remove(ctx context.Context, id string) error {
	if c.ep.deleteMode() == DeleteQuery {
		_, err := c.do(ctx, "remove", http.MethodDelete, c.url(url.Values{"id": {id}}), nil, "")
		return err
	}
	b, err := json.Marshal(map[string]string{c.ep.IDKey(): id})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, "remove", http.MethodDelete, c.url(nil), bytes.NewReader(b), "application/json")
	return err
}

// result turns a mutation response into a record. Endpoints that only
// acknowledge the call get the submitted fields echoed back.
func (c *Client) result(body []byte, p Payload, id string) (Record, error) {
	rec, full, err := decodeRecord(body, c.ep)
	if err != nil {
		// a 2xx with a non-JSON body still means the write happened
		rec = nil
	}
	if full {
		return rec, nil
	}
	out := Record{}
	for k, v := range p.Fields {
		out[k] = v
	}
	for k, v := range rec {
		out[k] = v
	}
	if id != "" {
		out[c.ep.IDKey()] = id
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, target string, body io.Reader, contentType string) ([]byte, error) {
	start := time.Now()
	out, status, err := c.roundTrip(ctx, op, method, target, body, contentType)
	elapsed := time.Since(start)

	if c.observer != nil {
		c.observer.ObserveCall(c.ep.Path, op, outcomeOf(err), elapsed)
	}

	attrs := []slog.Attr{
		slog.String("endpoint", c.ep.Path),
		slog.String("op", op),
		slog.String("method", method),
		slog.Int("status", status),
		slog.Duration("latency", elapsed),
	}
	if err != nil {
		attrs = append(attrs, slog.Any("err", err))
		c.log.LogAttrs(ctx, slog.LevelWarn, "resource_call_failed", attrs...)
		return nil, err
	}
	c.log.LogAttrs(ctx, slog.LevelDebug, "resource_call", attrs...)
	return out, nil
}

func (c *Client) roundTrip(ctx context.Context, op, method, target string, body io.Reader, contentType string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if rid := requestIDFrom(ctx); rid != "" {
		req.Header.Set(HeaderRequestID, rid)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, &NetworkError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, classify(op, resp.StatusCode, raw)
	}
	if err := rejected(op, resp.StatusCode, raw); err != nil {
		return nil, resp.StatusCode, err
	}
	return raw, resp.StatusCode, nil
}

func (c *Client) undecodable(op string, err error) error {
	c.log.Warn("resource_decode_failed", slog.String("endpoint", c.ep.Path), slog.String("op", op), slog.Any("err", err))
	return &ServerError{Op: op, Status: http.StatusOK, Message: GenericMessage}
}
