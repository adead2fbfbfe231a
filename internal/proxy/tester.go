package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mrtamaki/mt/internal/cmdexec"
	"github.com/mrtamaki/mt/internal/httpx"
)

// DefaultEchoURL은 요청한 IP를 그대로 돌려주는 서비스다.
const DefaultEchoURL = "https://api.ipify.org"

// Tester는 curl로 프록시를 거쳐 외부 IP를 확인한다.
type Tester struct {
	Commander cmdexec.Commander
	EchoURL   string
	Timeout   time.Duration
	Policy    httpx.Policy
	Logger    *slog.Logger
}

// Test는 프록시를 통해 본 외부 IP를 반환한다.
// curl 실패는 전송 실패로 보고 Policy만큼 다시 시도한다.
func (t *Tester) Test(ctx context.Context, s Settings) (string, error) {
	if err := s.Validate(); err != nil {
		return "", fmt.Errorf("proxy.Test: %w", err)
	}
	if _, err := t.Commander.LookPath("curl"); err != nil {
		return "", fmt.Errorf("proxy.Test: %w", err)
	}

	echo := t.EchoURL
	if echo == "" {
		echo = DefaultEchoURL
	}
	secs := int(t.Timeout.Seconds())
	if secs <= 0 {
		secs = 10
	}
	logger := t.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ip, err := httpx.Retry(ctx, t.Policy, func(ctx context.Context) (string, error) {
		out, err := t.Commander.Run(ctx, "curl", "-sS", "--max-time", strconv.Itoa(secs), "-x", s.URL(), echo)
		if err != nil {
			msg := strings.TrimSpace(string(out))
			return "", &httpx.TransportError{URL: echo, Err: fmt.Errorf("curl via %s: %s: %w", s.Redacted(), msg, err)}
		}
		return strings.TrimSpace(string(out)), nil
	}, func(attempt int, err error) {
		logger.Debug("retrying proxy test", "attempt", attempt, "error", err)
	})
	if err != nil {
		return "", fmt.Errorf("proxy.Test: %w", err)
	}
	return ip, nil
}
