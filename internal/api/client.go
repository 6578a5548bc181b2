// Package api is the typed consumer of the external storefront REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	commonHttp "github.com/Alturino/storefront/internal/common/http"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/log"
)

const DefaultNotificationTimeout = 5 * time.Second

// Credentials supplies the auth headers for every call. Expire is called
// when the API answers 401.
type Credentials interface {
	Token() string
	SessionID() string
	Expire(c context.Context) error
}

type Client struct {
	baseURL             string
	http                *http.Client
	creds               Credentials
	notificationTimeout time.Duration
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(cl *Client) { cl.http = client }
}

func WithNotificationTimeout(timeout time.Duration) Option {
	return func(cl *Client) {
		if timeout > 0 {
			cl.notificationTimeout = timeout
		}
	}
}

// NewHTTPClient returns a client whose transport is traced with otelhttp.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// New creates a client for baseURL. creds may be nil for anonymous use.
func New(baseURL string, creds Credentials, opts ...Option) *Client {
	cl := &Client{
		baseURL:             strings.TrimRight(baseURL, "/"),
		http:                otelhttp.DefaultClient,
		creds:               creds,
		notificationTimeout: DefaultNotificationTimeout,
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// WithCredentials returns a copy of the client bound to other credentials.
func (cl *Client) WithCredentials(creds Credentials) *Client {
	cp := *cl
	cp.creds = creds
	return &cp
}

type envelope struct {
	Success *bool               `json:"success"`
	Message string              `json:"message"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`
}

// Error is a non-2xx answer (or success=false) from the API.
type Error struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api responded statusCode=%d message=%s", e.StatusCode, e.UserMessage())
}

// UserMessage is the first field error if any, otherwise the envelope message.
func (e *Error) UserMessage() string {
	keys := make([]string, 0, len(e.Fields))
	for k, msgs := range e.Fields {
		if len(msgs) > 0 {
			keys = append(keys, k)
		}
	}
	if len(keys) > 0 {
		sort.Strings(keys)
		return e.Fields[keys[0]][0]
	}
	if e.Message != "" {
		return e.Message
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return text
	}
	return "request failed"
}

func (e *Error) HTTPStatus() int { return e.StatusCode }

func (e *Error) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return commonErrors.ErrUnauthorized
	case http.StatusNotFound:
		return commonErrors.ErrNotFound
	}
	return nil
}

// UserMessage extracts the message to show for any error returned by the client.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "the request timed out, please try again"
	}
	return "something went wrong, please try again"
}

type call struct {
	method      string
	path        string
	query       url.Values
	body        any
	contentType string
	reader      io.Reader
}

// do performs the call and decodes the envelope data into out. It reports
// whether the envelope carried a non-empty data field.
func (cl *Client) do(c context.Context, req call, out any) (bool, error) {
	c, span := otel.Tracer.Start(
		c,
		"api Client do",
		trace.WithAttributes(
			attribute.String(log.KeyRequestMethod, req.method),
			attribute.String(log.KeyRequestURI, req.path),
		),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "api Client do").
		Str(log.KeyRequestMethod, req.method).
		Str(log.KeyRequestURI, req.path).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "building request").Logger()
	logger.Trace().Msg("building request")
	target := cl.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}
	body := req.reader
	contentType := req.contentType
	if body == nil && req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			err = fmt.Errorf("failed marshaling request body with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return false, err
		}
		body = bytes.NewReader(b)
		contentType = commonHttp.HeaderValueJson
	}
	httpReq, err := http.NewRequestWithContext(c, req.method, target, body)
	if err != nil {
		err = fmt.Errorf("failed building request with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false, err
	}
	cl.setHeaders(c, httpReq, contentType)
	logger.Trace().Msg("built request")

	logger = logger.With().Str(log.KeyProcess, "sending request").Logger()
	logger.Debug().Msg("sending request")
	resp, err := cl.http.Do(httpReq)
	if err != nil {
		err = fmt.Errorf("failed sending request %s %s with error=%w", req.method, req.path, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false, err
	}
	defer resp.Body.Close()
	logger = logger.With().Int(log.KeyResponseStatus, resp.StatusCode).Logger()
	span.SetAttributes(attribute.Int(log.KeyResponseStatus, resp.StatusCode))
	logger.Debug().Msg("sent request")

	logger = logger.With().Str(log.KeyProcess, "decoding response").Logger()
	logger.Trace().Msg("decoding response")
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed reading response body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false, err
	}
	env := envelope{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < http.StatusBadRequest {
			err = fmt.Errorf("failed decoding response envelope with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return false, err
		}
	}

	if resp.StatusCode >= http.StatusBadRequest || (env.Success != nil && !*env.Success) {
		apiErr := &Error{StatusCode: resp.StatusCode, Message: env.Message, Fields: env.Errors}
		if resp.StatusCode == http.StatusUnauthorized && cl.creds != nil {
			logger.Warn().Msg("token rejected, expiring session")
			if err := cl.creds.Expire(c); err != nil {
				err = fmt.Errorf("failed expiring session with error=%w", err)
				commonErrors.HandleError(err, span)
				logger.Error().Err(err).Msg(err.Error())
			}
		}
		err = fmt.Errorf("failed %s %s with error=%w", req.method, req.path, apiErr)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false, err
	}

	if !hasData(env.Data) {
		logger.Trace().Msg("decoded response without data")
		return false, nil
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			err = fmt.Errorf("failed decoding response data with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return false, err
		}
	}
	logger.Trace().Msg("decoded response")

	return true, nil
}

func (cl *Client) setHeaders(c context.Context, r *http.Request, contentType string) {
	r.Header.Set("Accept", commonHttp.HeaderValueJson)
	if contentType != "" {
		r.Header.Set(commonHttp.HeaderContentType, contentType)
	}
	requestID := log.RequestIDFromContext(c)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	r.Header.Set(commonHttp.HeaderRequestID, requestID)
	if cl.creds == nil {
		return
	}
	if token := cl.creds.Token(); token != "" {
		r.Header.Set(commonHttp.HeaderAuthorization, commonHttp.BearerPrefix+token)
	}
	if sessionID := cl.creds.SessionID(); sessionID != "" {
		r.Header.Set(commonHttp.HeaderSessionID, sessionID)
	}
}

func hasData(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", "{}", "[]", `""`:
		return false
	}
	return true
}
