// Package client talks to the bookshelf HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookshelf/internal/book"
	"bookshelf/internal/user"
)

// ErrBadCredentials is returned for any 401 answer.
var ErrBadCredentials = errors.New("bad credentials")

// TransportError wraps failures to reach the server at all.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// APIError is any other non-2xx answer.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api: status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// SetToken sets the bearer token attached to every request.
func (c *Client) SetToken(token string) { c.token = token }

// Token returns the current bearer token.
func (c *Client) Token() string { return c.token }

// Session is the answer to signup and login.
type Session struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

func (c *Client) Signup(ctx context.Context, email, username, password string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/users/register", map[string]string{
		"email": email, "username": username, "password": password,
	}, &s)
	if err == nil {
		c.token = s.Token
	}
	return s, err
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var s Session
	err := c.do(ctx, http.MethodPost, "/users/login", map[string]string{
		"email": email, "password": password,
	}, &s)
	if err == nil {
		c.token = s.Token
	}
	return s, err
}

func (c *Client) Me(ctx context.Context) (user.User, error) {
	var u user.User
	err := c.do(ctx, http.MethodGet, "/me", nil, &u)
	return u, err
}

func (c *Client) SaveBook(ctx context.Context, in book.Input) (user.User, error) {
	var u user.User
	err := c.do(ctx, http.MethodPost, "/me/books", in, &u)
	return u, err
}

func (c *Client) RemoveBook(ctx context.Context, bookID string) (user.User, error) {
	var u user.User
	err := c.do(ctx, http.MethodDelete, "/me/books/"+url.PathEscape(bookID), nil, &u)
	return u, err
}

// Search queries the shared catalog.
func (c *Client) Search(ctx context.Context, q string) ([]book.Book, error) {
	var books []book.Book
	err := c.do(ctx, http.MethodGet, "/books/search?q="+url.QueryEscape(q), nil, &books)
	return books, err
}

// Lookup queries the upstream provider through the server.
func (c *Client) Lookup(ctx context.Context, q string) ([]book.Book, error) {
	var books []book.Book
	err := c.do(ctx, http.MethodGet, "/books/lookup?q="+url.QueryEscape(q), nil, &books)
	return books, err
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return &TransportError{Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrBadCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Code: env.Error.Code, Message: env.Error.Message}
	}
	if decodeErr != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "malformed response"}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: "malformed response data"}
	}
	return nil
}
