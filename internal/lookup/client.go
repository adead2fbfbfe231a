// Package lookup is a client for the 1lookup API: IP and email lookups plus
// the three "append" searches served by the generic /lookup endpoint.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mrtamaki/mt/internal/errkind"
	"github.com/mrtamaki/mt/internal/httpx"
)

// DefaultBaseURL은 API 기본 주소다.
const DefaultBaseURL = "https://app.1lookup.io/api"

// ErrInvalidResponse는 200 응답이 JSON 객체가 아닐 때의 에러다.
var ErrInvalidResponse = fmt.Errorf("lookup: invalid JSON response: %w", errkind.ErrNetwork)

// ErrAPI는 200 응답 본문이 "error": true를 담고 있을 때의 에러다.
var ErrAPI = fmt.Errorf("lookup: API reported an error: %w", errkind.ErrNetwork)

// /lookup 요청의 type 값.
const (
	TypeEmailAppend        = "email-append"
	TypeReverseEmailAppend = "reverse-email-append"
	TypeReverseIPAppend    = "reverse-ip-append"
)

// Result는 API 응답 객체다. 응답 구조는 API가 정한다.
type Result map[string]any

// AppendInput은 email-append 검색 입력이다.
type AppendInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	City      string `json:"city"`
	Zip       string `json:"zip"`
	Address   string `json:"address,omitempty"`
}

// Validate는 필수 필드가 모두 채워졌는지 확인한다.
func (in AppendInput) Validate() error {
	var missing []string
	for name, v := range map[string]string{"first": in.FirstName, "last": in.LastName, "city": in.City, "zip": in.Zip} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingField, strings.Join(sortedCopy(missing), ", "))
	}
	return nil
}

// Client는 1lookup API 클라이언트다.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *httpx.Client
}

// New는 호출당 timeout, retries 재시도를 쓰는 Client를 생성한다.
func New(baseURL, apiKey string, timeout time.Duration, retries int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    httpx.New(timeout, retries),
	}
}

// IP는 IP 주소 정보를 조회한다.
func (c *Client) IP(ctx context.Context, ip string) (Result, error) {
	addr, err := ValidateIP(ip)
	if err != nil {
		return nil, fmt.Errorf("lookup.IP: %w", err)
	}
	return c.post(ctx, "v1/ip", map[string]string{"ip": addr.String()})
}

// Email은 이메일 주소를 검증한다.
func (c *Client) Email(ctx context.Context, email string) (Result, error) {
	e, err := ValidateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("lookup.Email: %w", err)
	}
	return c.post(ctx, "v1/email", map[string]string{"email": e})
}

// EmailAppend는 이름과 주소로 이메일을 찾는다.
func (c *Client) EmailAppend(ctx context.Context, in AppendInput) (Result, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("lookup.EmailAppend: %w", err)
	}
	return c.post(ctx, "lookup", map[string]any{"type": TypeEmailAppend, "input": in})
}

// ReverseEmail은 이메일로 인물 정보를 찾는다.
func (c *Client) ReverseEmail(ctx context.Context, email string) (Result, error) {
	e, err := ValidateEmail(email)
	if err != nil {
		return nil, fmt.Errorf("lookup.ReverseEmail: %w", err)
	}
	return c.post(ctx, "lookup", map[string]any{"type": TypeReverseEmailAppend, "input": e})
}

// ReverseIP는 IP 주소로 상세 정보를 찾는다.
func (c *Client) ReverseIP(ctx context.Context, ip string) (Result, error) {
	addr, err := ValidateIP(ip)
	if err != nil {
		return nil, fmt.Errorf("lookup.ReverseIP: %w", err)
	}
	return c.post(ctx, "lookup", map[string]any{"type": TypeReverseIPAppend, "input": addr.String()})
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (Result, error) {
	data, err := c.HTTP.Do(ctx, httpx.Request{
		Method: http.MethodPost,
		URL:    c.BaseURL + "/" + endpoint,
		Header: map[string]string{"Authorization": "Bearer " + c.APIKey},
		Body:   payload,
	})
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", endpoint, err)
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil || res == nil {
		return nil, fmt.Errorf("lookup %s: %w: %s", endpoint, ErrInvalidResponse, snippet(data))
	}
	if failed, _ := res["error"].(bool); failed {
		msg, _ := res["message"].(string)
		if msg == "" {
			msg = "unknown error"
		}
		return nil, fmt.Errorf("lookup %s: %w: %s", endpoint, ErrAPI, msg)
	}
	return res, nil
}

func snippet(data []byte) string {
	s := strings.TrimSpace(string(data))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
