package lookup

import (
	"fmt"
	"net/netip"
	"strings"

	"golang.org/x/net/idna"

	"github.com/mrtamaki/mt/internal/errkind"
)

var (
	// ErrInvalidIP는 IPv4/IPv6 주소로 해석되지 않는 입력이다.
	ErrInvalidIP = fmt.Errorf("invalid IP address: %w", errkind.ErrValidation)
	// ErrInvalidEmail은 local@domain 형식이 아닌 입력이다.
	ErrInvalidEmail = fmt.Errorf("invalid email address: %w", errkind.ErrValidation)
	// ErrMissingField는 필수 입력이 비어있을 때의 에러다.
	ErrMissingField = fmt.Errorf("missing required field: %w", errkind.ErrValidation)
)

// ValidateIP는 s를 IP 주소로 해석한다. 요청 전에 호출된다.
func ValidateIP(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %q", ErrInvalidIP, s)
	}
	return addr, nil
}

// ValidateEmail은 local@domain 형식과 도메인 이름을 검사한다.
// 국제화 도메인은 IDNA 규칙으로 확인한다.
func ValidateEmail(s string) (string, error) {
	s = strings.TrimSpace(s)
	local, domain, ok := strings.Cut(s, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") || strings.ContainsAny(s, " \t") {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, s)
	}
	ascii, err := idna.Lookup.ToASCII(domain)
	if err != nil || !strings.Contains(ascii, ".") || strings.HasPrefix(ascii, ".") || strings.HasSuffix(ascii, ".") || strings.Contains(ascii, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, s)
	}
	return local + "@" + domain, nil
}
