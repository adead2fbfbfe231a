// Package httpx is the small JSON-over-HTTP client shared by the lookup and
// reputation commands: one per-call timeout, a bounded retry count applied
// to transport failures and 5xx responses only.
package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mrtamaki/mt/internal/errkind"
)

// maxBody는 에러 메시지에 포함할 응답 본문 최대 길이다.
const maxBody = 500

// StatusError는 200이 아닌 응답이다. 본문을 그대로 담는다.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if body == "" {
		body = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d from %s: %s", e.StatusCode, e.URL, body)
}

func (e *StatusError) Unwrap() error { return errkind.ErrNetwork }

// TransportError는 연결 실패나 타임아웃처럼 응답을 받지 못한 경우다.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() []error { return []error{errkind.ErrNetwork, e.Err} }

// Policy는 재시도 정책이다. Retries는 첫 시도 이후 추가 시도 횟수다.
type Policy struct {
	Retries    int
	Delay      time.Duration
	Multiplier float64
	MaxDelay   time.Duration
}

// DefaultPolicy는 retries회 재시도, 300ms부터 두 배씩 늘어나는 대기다.
func DefaultPolicy(retries int) Policy {
	return Policy{Retries: retries, Delay: 300 * time.Millisecond, Multiplier: 2, MaxDelay: 3 * time.Second}
}

func (p Policy) delay(attempt int) time.Duration {
	d := p.Delay
	for i := 0; i < attempt; i++ {
		d = time.Duration(float64(d) * p.Multiplier)
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Retryable은 err가 재시도 대상(전송 실패, 5xx)인지 판단한다.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	var te *TransportError
	return errors.As(err, &te)
}

// Retry는 fn을 policy에 따라 다시 시도한다. 재시도 불가 에러는 바로 반환한다.
func Retry[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error), onRetry func(attempt int, err error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !Retryable(err) || attempt >= p.Retries {
			return zero, err
		}
		if onRetry != nil {
			onRetry(attempt+1, err)
		}
		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("httpx.Retry: %w", ctx.Err())
		case <-time.After(p.delay(attempt)):
		}
	}
}

// Client는 JSON 요청을 보내는 HTTP 클라이언트다.
type Client struct {
	HTTP   *http.Client
	Policy Policy
	Logger *slog.Logger
}

// New는 호출당 timeout과 retries를 쓰는 Client를 생성한다.
func New(timeout time.Duration, retries int) *Client {
	return &Client{
		HTTP:   &http.Client{Timeout: timeout},
		Policy: DefaultPolicy(retries),
		Logger: slog.New(slog.DiscardHandler),
	}
}

// Request는 보낼 요청 하나다. Body가 nil이 아니면 JSON으로 인코딩한다.
type Request struct {
	Method string
	URL    string
	Header map[string]string
	Body   any
}

// Do는 요청을 보내고 200 응답의 본문을 반환한다.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	var payload []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("httpx.Do: encode body: %w", err)
		}
		payload = b
	}

	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return Retry(ctx, c.Policy, func(ctx context.Context) ([]byte, error) {
		return c.once(ctx, req, payload)
	}, func(attempt int, err error) {
		logger.Debug("retrying request", "url", req.URL, "attempt", attempt, "error", err)
	})
}

func (c *Client) once(ctx context.Context, req Request, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("httpx.Do: %w", err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("httpx.Do: %w", ctx.Err())
		}
		return nil, &TransportError{URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: req.URL, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: req.URL, StatusCode: resp.StatusCode, Body: truncate(string(bytes.TrimSpace(data)))}
	}
	return data, nil
}

func truncate(s string) string {
	if len(s) > maxBody {
		return s[:maxBody] + "..."
	}
	return s
}
