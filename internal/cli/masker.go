package cli

import (
	"regexp"
	"strings"
)

var (
	bearerPattern   = regexp.MustCompile(`(?i)(bearer\s+)\S+`)
	userinfoPattern = regexp.MustCompile(`(://[^:/@\s]+:)[^@\s]+@`)
	assignPattern   = regexp.MustCompile(`((?:API_KEY|TOKEN|PASS|PASSWORD)=)\S+`)
)

// MaskTokens는 bearer 토큰, URL의 비밀번호, KEY=value 형태의 자격 증명을 마스킹한다.
func MaskTokens(s string) string {
	s = bearerPattern.ReplaceAllString(s, "${1}****")
	s = userinfoPattern.ReplaceAllString(s, "${1}****@")
	return assignPattern.ReplaceAllString(s, "${1}****")
}

// MaskSecrets는 MaskTokens에 더해 주어진 값이 그대로 나타나면 가린다.
// 4자 미만의 값은 일반 단어와 겹칠 수 있어 건너뛴다.
func MaskSecrets(s string, secrets ...string) string {
	for _, v := range secrets {
		if len(v) < 4 {
			continue
		}
		s = strings.ReplaceAll(s, v, "****")
	}
	return MaskTokens(s)
}

// MaskError는 설정에서 읽은 자격 증명을 가린 에러 메시지를 반환한다.
func (a *App) MaskError(err error) string {
	if err == nil {
		return ""
	}
	if a.cfg == nil {
		return MaskTokens(err.Error())
	}
	return MaskSecrets(err.Error(), a.cfg.Lookup.APIKey, a.cfg.Proxy.Pass, a.cfg.Reputation.Token)
}
