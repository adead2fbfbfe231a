package shell

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrtamaki/mt/internal/errkind"
)

// EnvEvalFile은 hook이 자식 mt에 넘기는 eval 파일 경로 환경변수다.
const EnvEvalFile = "MT_EVAL_FILE"

// hookMarker는 rc 파일에 hook이 설치되었는지 판단하는 표식이다.
const hookMarker = "# mt shell integration"

// ErrUnsupportedShell은 zsh, bash 외의 셸이다.
var ErrUnsupportedShell = fmt.Errorf("unsupported shell: %w", errkind.ErrValidation)

// Alias는 hook이 정의하는 단축 명령 하나다.
type Alias struct {
	Name    string
	Command string
}

// Quote는 문자열을 작은따옴표로 감싼 POSIX 셸 단어로 만든다.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// Cd는 디렉토리 이동 명령을 생성한다.
func Cd(path string) string {
	return "cd -- " + Quote(path) + "\n"
}

// Source는 rc 파일을 다시 읽는 명령을 생성한다.
func Source(rc string) string {
	return ". " + Quote(rc) + "\n"
}

// Emit은 명령을 evalFile에 덧붙인다. evalFile이 비어있으면 (hook 밖에서
// 실행된 경우) 직접 실행할 수 있도록 out에 출력하고 false를 반환한다.
func Emit(evalFile string, out io.Writer, cmds ...string) (bool, error) {
	body := strings.Join(cmds, "")
	if evalFile == "" {
		_, err := io.WriteString(out, body)
		return false, err
	}
	f, err := os.OpenFile(evalFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return false, fmt.Errorf("shell.Emit: %w", err)
	}
	defer f.Close()
	if _, err := io.WriteString(f, body); err != nil {
		return false, fmt.Errorf("shell.Emit: %w", err)
	}
	return true, nil
}

// HookSnippet은 셸 hook 스니펫을 반환한다. 지원하지 않는 셸이면 빈 문자열.
func HookSnippet(shellType string, aliases []Alias) string {
	if shellType != "zsh" && shellType != "bash" {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", hookMarker, shellType)
	b.WriteString(`mt() {
  local __mt_eval __mt_rc
  __mt_eval="$(mktemp "${TMPDIR:-/tmp}/mt-eval.XXXXXX")" || return 1
  MT_EVAL_FILE="$__mt_eval" command mt "$@"
  __mt_rc=$?
  if [ -s "$__mt_eval" ]; then
    . "$__mt_eval"
  fi
  rm -f "$__mt_eval"
  return $__mt_rc
}
`)
	for _, a := range aliases {
		fmt.Fprintf(&b, "alias %s=%s\n", a.Name, Quote(a.Command))
	}
	return b.String()
}

// DetectShell은 $SHELL 값에서 셸 이름을 얻는다.
func DetectShell(shellEnv string) string {
	if shellEnv == "" {
		return ""
	}
	return filepath.Base(shellEnv)
}

// RCPath는 home 아래 셸별 rc 파일 경로를 반환한다.
func RCPath(home, shellType string) string {
	switch shellType {
	case "zsh":
		return filepath.Join(home, ".zshrc")
	case "bash":
		return filepath.Join(home, ".bashrc")
	default:
		return ""
	}
}

// InstallLine은 rc 파일에 추가하는 줄이다.
func InstallLine(shellType string) string {
	return fmt.Sprintf("%s\neval \"$(mt shell hook %s)\"\n", hookMarker, shellType)
}

// Install은 rc 파일에 hook을 불러오는 줄을 추가한다.
// 이미 설치되어 있으면 false를 반환한다.
func Install(shellType, rcPath string) (bool, error) {
	if shellType != "zsh" && shellType != "bash" {
		return false, fmt.Errorf("shell.Install: %w: %q", ErrUnsupportedShell, shellType)
	}

	existing, _ := os.ReadFile(rcPath) // 파일이 없으면 빈 바이트
	if strings.Contains(string(existing), hookMarker) {
		return false, nil
	}

	f, err := os.OpenFile(rcPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return false, fmt.Errorf("shell.Install: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "\n%s", InstallLine(shellType)); err != nil {
		return false, fmt.Errorf("shell.Install: %w", err)
	}
	return true, nil
}
