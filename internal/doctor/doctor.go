// Package doctor diagnoses the local setup: helper binaries, credentials,
// feature environments, the bookmark file and the shell hook.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mrtamaki/mt/internal/bookmark"
	"github.com/mrtamaki/mt/internal/cmdexec"
	"github.com/mrtamaki/mt/internal/venv"
)

// Status는 진단 결과 상태다.
type Status string

const (
	// StatusOK는 정상 상태다.
	StatusOK Status = "OK"
	// StatusWarn는 경고 상태다.
	StatusWarn Status = "WARN"
	// StatusFail는 실패 상태다.
	StatusFail Status = "FAIL"
)

// DiagResult는 하나의 진단 결과다.
type DiagResult struct {
	Name    string `json:"name" yaml:"name"`
	Status  Status `json:"status" yaml:"status"`
	Message string `json:"message" yaml:"message"`
	Fix     string `json:"fix,omitempty" yaml:"fix,omitempty"`
}

// Binary는 확인할 외부 도구다. Optional이면 없을 때 WARN이다.
type Binary struct {
	Name     string
	Args     []string
	Install  string
	Optional bool
}

// DefaultBinaries는 mt가 호출하는 도구 목록이다.
func DefaultBinaries(python string) []Binary {
	return []Binary{
		{Name: "curl", Args: []string{"--version"}, Install: "brew install curl"},
		{Name: python, Args: []string{"--version"}, Install: "brew install python"},
		{Name: "dscacheutil", Args: []string{"-h"}, Install: "macOS 전용 (dns flush)", Optional: true},
	}
}

// CheckBinaries는 도구 존재 여부와 버전을 확인한다.
func CheckBinaries(ctx context.Context, cmd cmdexec.Commander, bins []Binary) []DiagResult {
	var results []DiagResult
	for _, b := range bins {
		if _, err := cmd.LookPath(b.Name); err != nil {
			status := StatusFail
			if b.Optional {
				status = StatusWarn
			}
			results = append(results, DiagResult{
				Name:    b.Name,
				Status:  status,
				Message: fmt.Sprintf("%s 없음", b.Name),
				Fix:     fmt.Sprintf("설치: %s", b.Install),
			})
			continue
		}
		out, _ := cmd.Run(ctx, b.Name, b.Args...) // 일부 도구는 버전 출력 시 0이 아닌 코드로 끝난다
		msg := firstLine(string(out))
		if msg == "" {
			msg = "설치됨"
		}
		results = append(results, DiagResult{Name: b.Name, Status: StatusOK, Message: msg})
	}
	return results
}

// Credential은 확인할 환경변수다.
type Credential struct {
	Env      string
	Purpose  string
	Optional bool
}

// DefaultCredentials는 mt가 읽는 자격 증명 환경변수다.
func DefaultCredentials() []Credential {
	return []Credential{
		{Env: "ONELOOKUP_API_KEY", Purpose: "lookup"},
		{Env: "MT_PROXY_HOST", Purpose: "proxy"},
		{Env: "MT_PROXY_USER", Purpose: "proxy"},
		{Env: "MT_PROXY_PASS", Purpose: "proxy"},
		{Env: "IPINFO_TOKEN", Purpose: "ip check privacy flags", Optional: true},
	}
}

// CheckCredentials는 환경변수 설정 여부를 확인한다. 값은 출력하지 않는다.
func CheckCredentials(creds []Credential, getenv func(string) string) []DiagResult {
	if getenv == nil {
		getenv = os.Getenv
	}
	var results []DiagResult
	for _, c := range creds {
		if getenv(c.Env) != "" {
			results = append(results, DiagResult{Name: c.Env, Status: StatusOK, Message: "설정됨"})
			continue
		}
		msg := fmt.Sprintf("미설정: %s 사용 불가", c.Purpose)
		if c.Optional {
			msg = fmt.Sprintf("미설정 (선택): %s 생략", c.Purpose)
		}
		results = append(results, DiagResult{
			Name:    c.Env,
			Status:  StatusWarn,
			Message: msg,
			Fix:     fmt.Sprintf("export %s=... 또는 ~/.config/mrtamaki/.env", c.Env),
		})
	}
	return results
}

// CheckEnvironments는 기능별 가상환경 상태를 확인한다.
func CheckEnvironments(statuses []venv.Status) []DiagResult {
	var results []DiagResult
	for _, s := range statuses {
		name := "env_" + s.Feature.String()
		switch {
		case s.Ready:
			results = append(results, DiagResult{Name: name, Status: StatusOK, Message: s.Dir})
		case s.Exists:
			results = append(results, DiagResult{
				Name:    name,
				Status:  StatusWarn,
				Message: "설치가 완료되지 않음",
				Fix:     "mt env ensure " + s.Feature.String(),
			})
		default:
			results = append(results, DiagResult{Name: name, Status: StatusOK, Message: "아직 생성 안됨 (필요 시 자동 생성)"})
		}
	}
	return results
}

// CheckBookmarks는 북마크 파일을 읽고 사라진 경로를 찾는다.
func CheckBookmarks(store *bookmark.Store) DiagResult {
	marks, err := store.List()
	if err != nil {
		fix := ""
		if errors.Is(err, bookmark.ErrCorrupt) {
			fix = fmt.Sprintf("%s 파일을 확인하거나 삭제", store.Path())
		}
		return DiagResult{Name: "bookmarks", Status: StatusFail, Message: err.Error(), Fix: fix}
	}
	var stale []string
	for _, b := range marks {
		if bookmark.CheckDir(b.Path) != nil {
			stale = append(stale, b.Name)
		}
	}
	if len(stale) > 0 {
		return DiagResult{
			Name:    "bookmarks",
			Status:  StatusWarn,
			Message: fmt.Sprintf("경로가 없는 북마크: %s", strings.Join(stale, ", ")),
			Fix:     "mt bm delete <name>",
		}
	}
	return DiagResult{Name: "bookmarks", Status: StatusOK, Message: fmt.Sprintf("%d개", len(marks))}
}

// CheckShellHook는 rc 파일에 mt hook이 설치되어 있는지 확인한다.
func CheckShellHook(rcPath string) DiagResult {
	data, err := os.ReadFile(rcPath)
	if err == nil && strings.Contains(string(data), "mt shell integration") {
		return DiagResult{Name: "shell_hook", Status: StatusOK, Message: rcPath}
	}
	return DiagResult{
		Name:    "shell_hook",
		Status:  StatusWarn,
		Message: "hook 미설치: mkcd, jump, menu가 디렉토리를 바꾸지 못함",
		Fix:     "mt shell install",
	}
}

// Inputs는 RunAll에 필요한 값이다.
type Inputs struct {
	Python    string
	Envs      []venv.Status
	Bookmarks *bookmark.Store
	RCPath    string
	Getenv    func(string) string
}

// RunAll은 모든 진단을 실행한다.
func RunAll(ctx context.Context, cmd cmdexec.Commander, in Inputs) []DiagResult {
	var results []DiagResult
	results = append(results, CheckBinaries(ctx, cmd, DefaultBinaries(in.Python))...)
	results = append(results, CheckCredentials(DefaultCredentials(), in.Getenv)...)
	results = append(results, CheckEnvironments(in.Envs)...)
	if in.Bookmarks != nil {
		results = append(results, CheckBookmarks(in.Bookmarks))
	}
	if in.RCPath != "" {
		results = append(results, CheckShellHook(in.RCPath))
	}
	return results
}

// HasFailure는 FAIL 결과가 하나라도 있으면 true다.
func HasFailure(results []DiagResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
