// Package reputation checks an IP address against an ipinfo-style service
// and condenses the answer into a short verdict.
package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mrtamaki/mt/internal/errkind"
	"github.com/mrtamaki/mt/internal/httpx"
	"github.com/mrtamaki/mt/internal/lookup"
)

// DefaultURL은 %s 자리에 IP가 들어가는 조회 주소다.
const DefaultURL = "https://ipinfo.io/%s/json"

// ErrInvalidResponse는 응답을 해석할 수 없을 때의 에러다.
var ErrInvalidResponse = fmt.Errorf("reputation: invalid response: %w", errkind.ErrNetwork)

// Privacy는 익명화 서비스 탐지 결과다. 유료 토큰이 있어야 채워진다.
type Privacy struct {
	VPN     bool `json:"vpn" yaml:"vpn"`
	Proxy   bool `json:"proxy" yaml:"proxy"`
	Tor     bool `json:"tor" yaml:"tor"`
	Relay   bool `json:"relay" yaml:"relay"`
	Hosting bool `json:"hosting" yaml:"hosting"`
}

// Report는 IP 하나의 조회 결과다.
type Report struct {
	IP       string   `json:"ip" yaml:"ip"`
	Hostname string   `json:"hostname,omitempty" yaml:"hostname,omitempty"`
	City     string   `json:"city,omitempty" yaml:"city,omitempty"`
	Region   string   `json:"region,omitempty" yaml:"region,omitempty"`
	Country  string   `json:"country,omitempty" yaml:"country,omitempty"`
	Org      string   `json:"org,omitempty" yaml:"org,omitempty"`
	Bogon    bool     `json:"bogon,omitempty" yaml:"bogon,omitempty"`
	Privacy  *Privacy `json:"privacy,omitempty" yaml:"privacy,omitempty"`
}

// Verdict는 보고서를 한 단어로 요약한다: clean, flagged, private, unknown.
func (r Report) Verdict() string {
	switch {
	case r.Bogon:
		return "private"
	case r.Privacy == nil:
		return "unknown"
	case r.Privacy.VPN || r.Privacy.Proxy || r.Privacy.Tor || r.Privacy.Relay:
		return "flagged"
	default:
		return "clean"
	}
}

// Flags는 참인 privacy 항목 이름이다.
func (r Report) Flags() []string {
	if r.Privacy == nil {
		return nil
	}
	var out []string
	for _, f := range []struct {
		name string
		on   bool
	}{
		{"vpn", r.Privacy.VPN},
		{"proxy", r.Privacy.Proxy},
		{"tor", r.Privacy.Tor},
		{"relay", r.Privacy.Relay},
		{"hosting", r.Privacy.Hosting},
	} {
		if f.on {
			out = append(out, f.name)
		}
	}
	return out
}

// Checker는 IP 평판 조회기다.
type Checker struct {
	// URLTemplate은 %s 하나를 포함한 주소다.
	URLTemplate string
	Token       string
	HTTP        *httpx.Client
}

// New는 Checker를 생성한다. urlTemplate이 비어있으면 DefaultURL.
func New(urlTemplate, token string, timeout time.Duration, retries int) *Checker {
	if urlTemplate == "" {
		urlTemplate = DefaultURL
	}
	return &Checker{URLTemplate: urlTemplate, Token: token, HTTP: httpx.New(timeout, retries)}
}

// Check는 ip를 검증한 뒤 조회한다.
func (c *Checker) Check(ctx context.Context, ip string) (Report, error) {
	addr, err := lookup.ValidateIP(ip)
	if err != nil {
		return Report{}, fmt.Errorf("reputation.Check: %w", err)
	}
	if !strings.Contains(c.URLTemplate, "%s") {
		return Report{}, fmt.Errorf("reputation.Check: url template %q has no %%s: %w", c.URLTemplate, errkind.ErrValidation)
	}

	req := httpx.Request{Method: http.MethodGet, URL: fmt.Sprintf(c.URLTemplate, addr.String())}
	if c.Token != "" {
		req.Header = map[string]string{"Authorization": "Bearer " + c.Token}
	}
	data, err := c.HTTP.Do(ctx, req)
	if err != nil {
		return Report{}, fmt.Errorf("reputation.Check: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil || r.IP == "" {
		return Report{}, fmt.Errorf("reputation.Check: %w: %.200s", ErrInvalidResponse, strings.TrimSpace(string(data)))
	}
	return r, nil
}
