// Package remote talks to the ticket backend. It only moves data and wraps
// failures; it holds no board state and never retries.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/kanban-board/internal/auth"
	"github.com/spec-kit/kanban-board/internal/config"
	"github.com/spec-kit/kanban-board/internal/domain"
	"github.com/spec-kit/kanban-board/internal/observability"
	apperrors "github.com/spec-kit/kanban-board/pkg/util/errorutil"
)

// Operation names, used for metrics and log fields.
const (
	OpListTickets  = "list_tickets"
	OpListUsers    = "list_users"
	OpCreateTicket = "create_ticket"
	OpUpdateTicket = "update_ticket"
	OpDeleteTicket = "delete_ticket"
)

const maxErrorBody = 512

// Client issues the ticket backend calls against a configured endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	tokens     *auth.TokenSource
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource attaches a bearer token to every request.
func WithTokenSource(tokens *auth.TokenSource) Option {
	return func(c *Client) { c.tokens = tokens }
}

// WithMetrics counts every call.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger sets the logger; the default discards.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient builds a client for cfg.Endpoint().
func NewClient(cfg config.APIConfig, opts ...Option) *Client {
	c := &Client{
		endpoint: cfg.Endpoint(),
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(zap.String("component", "remote-client"))
	return c
}

// ListTickets fetches every ticket. Any failure is a FETCH_FAILED error and
// no partial result is returned.
func (c *Client) ListTickets(ctx context.Context) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	if err := c.call(ctx, OpListTickets, http.MethodGet, "/tickets", nil, &tickets); err != nil {
		return nil, wrap(apperrors.CodeFetchFailed, "failed to fetch tickets", err)
	}
	if tickets == nil {
		tickets = []domain.Ticket{}
	}
	return tickets, nil
}

// ListUsers fetches every user.
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := c.call(ctx, OpListUsers, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, wrap(apperrors.CodeFetchFailed, "failed to fetch users", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// CreateTicket stores draft and returns the record the backend kept.
func (c *Client) CreateTicket(ctx context.Context, draft domain.Ticket) (domain.Ticket, error) {
	var created domain.Ticket
	if err := c.call(ctx, OpCreateTicket, http.MethodPost, "/tickets", draft, &created); err != nil {
		return domain.Ticket{}, wrap(apperrors.CodeCreateFailed, "failed to create ticket", err)
	}
	return created, nil
}

// UpdateTicket applies patch to ticket id and returns the stored record.
func (c *Client) UpdateTicket(ctx context.Context, id string, patch domain.TicketPatch) (domain.Ticket, error) {
	var updated domain.Ticket
	if err := c.call(ctx, OpUpdateTicket, http.MethodPatch, "/tickets/"+url.PathEscape(id), patch, &updated); err != nil {
		return domain.Ticket{}, wrap(apperrors.CodeUpdateFailed, "failed to update ticket", err)
	}
	return updated, nil
}

// DeleteTicket removes ticket id. Whether deleting an absent id succeeds is
// up to the backend.
func (c *Client) DeleteTicket(ctx context.Context, id string) error {
	if err := c.call(ctx, OpDeleteTicket, http.MethodDelete, "/tickets/"+url.PathEscape(id), nil, nil); err != nil {
		return wrap(apperrors.CodeDeleteFailed, "failed to delete ticket", err)
	}
	return nil
}

// statusError is a non-2xx backend response.
type statusError struct {
	method string
	path   string
	status int
	body   string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("%s %s: unexpected status %d", e.method, e.path, e.status)
	}
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.method, e.path, e.status, e.body)
}

func wrap(code, message string, err error) error {
	upstream := 0
	var se *statusError
	if errors.As(err, &se) {
		upstream = se.status
	}
	return apperrors.NewRemoteError(code, message, upstream, err)
}

func (c *Client) call(ctx context.Context, op, method, path string, body, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			var se *statusError
			if errors.As(err, &se) {
				outcome = fmt.Sprintf("http_%d", se.status)
			}
		}
		elapsed := time.Since(start)
		c.metrics.RecordRemoteCall(op, outcome, elapsed)
		c.logger.Debug("remote call",
			zap.String("op", op),
			zap.String("method", method),
			zap.String("path", path),
			zap.String("outcome", outcome),
			zap.Duration("duration", elapsed),
			zap.Error(err))
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("sign request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &statusError{method: method, path: path, status: resp.StatusCode, body: string(bytes.TrimSpace(snippet))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}
