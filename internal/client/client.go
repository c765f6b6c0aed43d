// Package client is a typed client for the hradmin REST API. Every endpoint
// has an explicit decoder: responses missing required fields are rejected
// with a *DecodeError instead of yielding zero values.
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
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"hradmin/internal/domain/core"
	"hradmin/internal/transport/http/api"
)

var responseValidator = sync.OnceValue(func() *validator.Validate {
	return validator.New()
})

type Options struct {
	BaseURL         string
	Token           string
	HTTPClient      *http.Client
	RetryMaxElapsed time.Duration
	Logger          *zap.Logger
}

type Client struct {
	baseURL         string
	token           string
	http            *http.Client
	retryMaxElapsed time.Duration
	logger          *zap.Logger
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		token:           opts.Token,
		http:            httpClient,
		retryMaxElapsed: opts.RetryMaxElapsed,
		logger:          logger.Named("api_client"),
	}
}

func (c *Client) GetEmployee(ctx context.Context, id string) (*core.Employee, error) {
	return getOne[core.Employee](ctx, c, "/employees/"+url.PathEscape(id))
}

func (c *Client) ListEmployees(ctx context.Context) ([]core.Employee, error) {
	return getList[core.Employee](ctx, c, "/employees")
}

// UpdateEmployee sends the full record and returns the server's version.
func (c *Client) UpdateEmployee(ctx context.Context, emp core.Employee) (*core.Employee, error) {
	return sendOne[core.Employee](ctx, c, http.MethodPut, "/employees/"+url.PathEscape(emp.ID), emp)
}

func (c *Client) DeleteEmployee(ctx context.Context, id string) error {
	_, err := c.send(ctx, http.MethodDelete, "/employees/"+url.PathEscape(id), nil)
	return err
}

// ListReferences loads every role, level or organisation as display references.
func (c *Client) ListReferences(ctx context.Context, kind core.ReferenceKind) ([]core.Reference, error) {
	path := "/" + string(kind)
	switch kind {
	case core.ReferenceRole:
		return listRefs[core.Role](ctx, c, path, core.Role.Reference)
	case core.ReferenceLevel:
		return listRefs[core.Level](ctx, c, path, core.Level.Reference)
	case core.ReferenceOrganisation:
		return listRefs[core.Organisation](ctx, c, path, core.Organisation.Reference)
	}
	return nil, fmt.Errorf("unknown reference kind %q", kind)
}

func (c *Client) GetReference(ctx context.Context, kind core.ReferenceKind, id string) (core.Reference, error) {
	path := "/" + string(kind) + "/" + url.PathEscape(id)
	switch kind {
	case core.ReferenceRole:
		return getRef[core.Role](ctx, c, path, core.Role.Reference)
	case core.ReferenceLevel:
		return getRef[core.Level](ctx, c, path, core.Level.Reference)
	case core.ReferenceOrganisation:
		return getRef[core.Organisation](ctx, c, path, core.Organisation.Reference)
	}
	return core.Reference{}, fmt.Errorf("unknown reference kind %q", kind)
}

func (c *Client) ListClientAssignments(ctx context.Context, employeeID string) ([]core.ClientAssignment, error) {
	return getList[core.ClientAssignment](ctx, c, "/client-employees/employee/"+url.PathEscape(employeeID))
}

func (c *Client) ListPayments(ctx context.Context) ([]core.Payment, error) {
	return getList[core.Payment](ctx, c, "/payments")
}

func (c *Client) GetPayment(ctx context.Context, id string) (*core.Payment, error) {
	return getOne[core.Payment](ctx, c, "/payments/"+url.PathEscape(id))
}

func (c *Client) CreatePayment(ctx context.Context, payment core.Payment) (*core.Payment, error) {
	return sendOne[core.Payment](ctx, c, http.MethodPost, "/payments", payment)
}

func (c *Client) UpdatePayment(ctx context.Context, payment core.Payment) (*core.Payment, error) {
	return sendOne[core.Payment](ctx, c, http.MethodPut, "/payments/"+url.PathEscape(payment.ID), payment)
}

// PaymentReceipt returns the rendered PDF bytes.
func (c *Client) PaymentReceipt(ctx context.Context, id string) ([]byte, error) {
	return c.get(ctx, "/payments/"+url.PathEscape(id)+"/receipt")
}

func getOne[T any](ctx context.Context, c *Client, path string) (*T, error) {
	raw, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeOne[T](path, raw)
}

func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	raw, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeList[T](path, raw)
}

func sendOne[T any](ctx context.Context, c *Client, method, path string, body any) (*T, error) {
	raw, err := c.send(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return decodeOne[T](path, raw)
}

func listRefs[T any](ctx context.Context, c *Client, path string, project func(T) core.Reference) ([]core.Reference, error) {
	items, err := getList[T](ctx, c, path)
	if err != nil {
		return nil, err
	}
	refs := make([]core.Reference, 0, len(items))
	for _, item := range items {
		refs = append(refs, project(item))
	}
	return refs, nil
}

func getRef[T any](ctx context.Context, c *Client, path string, project func(T) core.Reference) (core.Reference, error) {
	item, err := getOne[T](ctx, c, path)
	if err != nil {
		return core.Reference{}, err
	}
	return project(*item), nil
}

type wireEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *api.Error      `json:"error"`
}

func unwrap(raw []byte) (json.RawMessage, error) {
	var env wireEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, errors.New("envelope not marked successful")
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, errors.New("envelope has no data")
	}
	return env.Data, nil
}

func decodeOne[T any](endpoint string, raw []byte) (*T, error) {
	data, err := unwrap(raw)
	if err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}
	if err := responseValidator().Struct(&out); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}
	return &out, nil
}

func decodeList[T any](endpoint string, raw []byte) ([]T, error) {
	data, err := unwrap(raw)
	if err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: err}
	}
	for i := range out {
		if err := responseValidator().Struct(&out[i]); err != nil {
			return nil, &DecodeError{Endpoint: endpoint, Err: fmt.Errorf("item %d: %w", i, err)}
		}
	}
	return out, nil
}

// get retries transport failures and 5xx responses with exponential backoff.
// 4xx responses are final.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxElapsedTime = c.retryMaxElapsed

	var body []byte
	operation := func() error {
		raw, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			var statusErr *StatusError
			if errors.As(err, &statusErr) && statusErr.Status < http.StatusInternalServerError {
				return backoff.Permanent(err)
			}
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		body = raw
		return nil
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Debug("retrying request",
			zap.String("path", path),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
	var err error
	if c.retryMaxElapsed <= 0 {
		err = operation()
	} else {
		err = backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify)
	}
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return nil, permanent.Err
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (c *Client) send(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = encoded
	}
	return c.do(ctx, method, path, body)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.logger.Debug("api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, raw)
	}
	return raw, nil
}

func statusError(status int, raw []byte) *StatusError {
	out := &StatusError{Status: status}
	var env wireEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil {
		out.Code = env.Error.Code
		out.Message = env.Error.Message
	}
	return out
}
