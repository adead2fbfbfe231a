package menu

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/mrtamaki/mt/internal/cmdexec"
)

// Launcher는 메뉴 자식 프로세스를 터미널에 붙여 실행하고 결과 파일을 해석한다.
type Launcher struct {
	Commander cmdexec.Commander
	// Executable은 자식으로 실행할 바이너리다 (보통 os.Executable()).
	Executable string
	// Args는 "menu-ui" 앞에 붙는 인자다 (예: --config).
	Args []string
	// TempDir이 비어있으면 os.TempDir()를 쓴다.
	TempDir    string
	NewSession func() string
	Logger     *slog.Logger
}

// Launch는 메뉴를 실행한다. 자식이 0이 아닌 코드로 끝나면 선택 없음이다.
// 후속 입력은 Launch가 반환된 뒤 호출자가 받는다.
func (l *Launcher) Launch(ctx context.Context) (Selection, bool, error) {
	newSession := l.NewSession
	if newSession == nil {
		newSession = uuid.NewString
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	f, err := os.CreateTemp(l.TempDir, "mt-menu-*.json")
	if err != nil {
		return Selection{}, false, fmt.Errorf("menu.Launch: %w", err)
	}
	resultPath := f.Name()
	_ = f.Close()
	defer func() { _ = os.Remove(resultPath) }()

	session := newSession()
	args := append(append([]string{}, l.Args...), "menu-ui", "--result-file", resultPath, "--session", session)

	logger.Debug("launching menu", "executable", l.Executable, "session", session)
	if err := l.Commander.RunInteractive(ctx, l.Executable, args...); err != nil {
		if code, ok := cmdexec.ExitCode(err); ok {
			logger.Debug("menu exited without selection", "code", code)
			return Selection{}, false, nil
		}
		return Selection{}, false, fmt.Errorf("menu.Launch: %w", err)
	}

	data, err := os.ReadFile(resultPath)
	if err != nil {
		return Selection{}, false, fmt.Errorf("menu.Launch: %w", err)
	}
	return Decode(data, session)
}
