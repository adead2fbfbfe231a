package proxy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mrtamaki/mt/internal/cmdexec"
	"github.com/mrtamaki/mt/internal/errkind"
	"github.com/mrtamaki/mt/internal/venv"
)

// ErrScriptMissing은 변환 스크립트가 설정되지 않았거나 파일이 없을 때의 에러다.
var ErrScriptMissing = fmt.Errorf("proxy converter script %w", errkind.ErrNotFound)

// Environment는 기능별 인터프리터를 준비한다.
type Environment interface {
	Ensure(ctx context.Context, f venv.Feature) (string, error)
}

// Converter는 프록시 변환 스크립트를 proxy 기능 환경에서 실행한다.
type Converter struct {
	Commander cmdexec.Commander
	Env       Environment
	Script    string
}

// Run은 환경을 준비하고 스크립트를 터미널에 붙여 실행한다.
func (c *Converter) Run(ctx context.Context, args []string) error {
	if c.Script == "" {
		return fmt.Errorf("proxy.Run: [proxy] script is not configured: %w", ErrScriptMissing)
	}
	if _, err := os.Stat(c.Script); err != nil {
		return fmt.Errorf("proxy.Run: %s: %w", c.Script, ErrScriptMissing)
	}

	interp, err := c.Env.Ensure(ctx, venv.FeatureProxy)
	if err != nil {
		return fmt.Errorf("proxy.Run: %w", err)
	}
	if err := c.Commander.RunInteractive(ctx, interp, append([]string{c.Script}, args...)...); err != nil {
		return fmt.Errorf("proxy.Run: %w", err)
	}
	return nil
}

// RemoveBindFile은 변환기가 남긴 바인딩 기록 파일을 지운다. 없으면 false.
func RemoveBindFile(path string) (bool, error) {
	err := os.Remove(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("proxy.RemoveBindFile: %w", err)
	}
}
