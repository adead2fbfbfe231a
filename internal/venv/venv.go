// Package venv creates per-feature Python virtual environments on demand.
// An environment is ready once its interpreter exists and the ready marker
// recording the installed package list has been written.
package venv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mrtamaki/mt/internal/cmdexec"
	"github.com/mrtamaki/mt/internal/errkind"
	"github.com/mrtamaki/mt/internal/spin"
)

var (
	// ErrBootstrapFailed는 가상환경 생성 또는 패키지 설치 실패다.
	ErrBootstrapFailed = fmt.Errorf("venv: %w", errkind.ErrBootstrap)
	// ErrInterpreterMissing는 생성 후에도 인터프리터가 없을 때의 에러다.
	ErrInterpreterMissing = fmt.Errorf("venv: interpreter missing: %w", errkind.ErrBootstrap)
	// ErrNotCreated는 아직 만들어지지 않은 환경에 purge를 요청했을 때의 에러다.
	ErrNotCreated = fmt.Errorf("venv: environment %w", errkind.ErrNotFound)
)

const readyMarker = ".mt-ready"

// keepWhenPurging는 purge 시 남겨두는 패키지다.
var keepWhenPurging = map[string]bool{"pip": true, "setuptools": true, "wheel": true}

// pipEnv는 모든 pip 호출에 더하는 환경 변수다. 버전 안내가 출력에 섞이지 않게 한다.
var pipEnv = map[string]string{"PIP_DISABLE_PIP_VERSION_CHECK": "1"}

// Waiter는 오래 걸리는 작업을 감싸는 훅이다 (예: spin.Spinner).
type Waiter interface {
	Wait(label string, fn func() error) error
}

// Status는 기능 하나의 환경 상태다.
type Status struct {
	Feature Feature
	Dir     string
	Exists  bool
	Ready   bool
}

// Bootstrapper는 기능별 가상환경을 관리한다. 인터프리터 경로를 프로세스 안에서 캐시한다.
type Bootstrapper struct {
	Root      string
	Python    string
	Commander cmdexec.Commander
	Waiter    Waiter
	Logger    *slog.Logger

	cache map[Feature]string
}

// New는 root 아래에 환경을 만드는 Bootstrapper를 생성한다.
func New(root, python string, cmd cmdexec.Commander) *Bootstrapper {
	return &Bootstrapper{
		Root:      root,
		Python:    python,
		Commander: cmd,
		Logger:    slog.New(slog.DiscardHandler),
		cache:     make(map[Feature]string),
	}
}

// Dir는 기능 환경의 디렉토리다.
func (b *Bootstrapper) Dir(f Feature) string {
	return filepath.Join(b.Root, f.String())
}

// Interpreter는 기능 환경의 python 실행 파일 경로다.
func (b *Bootstrapper) Interpreter(f Feature) string {
	return filepath.Join(b.Dir(f), "bin", "python")
}

// Ensure는 기능 환경이 준비되어 있도록 하고 인터프리터 경로를 반환한다.
// 이미 준비된 환경에서는 아무 것도 실행하지 않는다.
func (b *Bootstrapper) Ensure(ctx context.Context, f Feature) (string, error) {
	if !f.Valid() {
		return "", fmt.Errorf("venv.Ensure: %s: %w", f, ErrUnknownFeature)
	}
	if p, ok := b.cache[f]; ok {
		return p, nil
	}
	if b.ready(f) {
		b.remember(f)
		return b.cache[f], nil
	}

	interp := b.Interpreter(f)
	if _, err := os.Stat(interp); err != nil {
		if err := b.create(ctx, f); err != nil {
			return "", err
		}
		if _, err := os.Stat(interp); err != nil {
			return "", fmt.Errorf("venv.Ensure: %s: %w", interp, ErrInterpreterMissing)
		}
	}

	dir := b.Dir(f)
	args := append([]string{"-m", "pip", "install"}, f.Packages()...)
	var (
		out []byte
		err error
	)
	install := func() error {
		var runErr error
		out, runErr = b.Commander.RunWithEnv(ctx, pipEnv, interp, args...)
		return runErr
	}
	if b.Waiter != nil {
		err = b.Waiter.Wait(fmt.Sprintf("installing %s packages", f), install)
	} else {
		err = install()
	}
	if errors.Is(err, spin.ErrTimeout) {
		// pip는 계속 실행 중이다. marker가 없으므로 다음 Ensure가 설치를 다시 시도한다.
		return "", fmt.Errorf("venv.Ensure: install %s: %w: %w", f, err, ErrBootstrapFailed)
	}
	if err != nil {
		_ = os.RemoveAll(dir) // 다음 호출에서 다시 만든다
		return "", bootstrapError("venv.Ensure: install", out, err)
	}

	marker := strings.Join(f.Packages(), "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, readyMarker), []byte(marker), 0600); err != nil {
		return "", fmt.Errorf("venv.Ensure: %w", err)
	}
	b.remember(f)
	return interp, nil
}

// create는 인터프리터 없는 잔여 디렉토리를 지우고 python -m venv로 새로 만든다.
func (b *Bootstrapper) create(ctx context.Context, f Feature) error {
	python, err := b.Commander.LookPath(b.Python)
	if err != nil {
		return fmt.Errorf("venv.Ensure: %w", err)
	}

	dir := b.Dir(f)
	if _, err := os.Stat(dir); err == nil {
		b.Logger.Debug("removing incomplete environment", "feature", f.String(), "dir", dir)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("venv.Ensure: %w", err)
		}
	}
	if err := os.MkdirAll(b.Root, 0700); err != nil {
		return fmt.Errorf("venv.Ensure: %w", err)
	}

	b.Logger.Debug("creating environment", "feature", f.String(), "dir", dir)
	if out, err := b.Commander.Run(ctx, python, "-m", "venv", dir); err != nil {
		return bootstrapError("venv.Ensure: create", out, err)
	}
	return nil
}

// Status는 모든 기능 환경의 상태를 반환한다.
func (b *Bootstrapper) Status() []Status {
	var out []Status
	for _, f := range Features() {
		_, err := os.Stat(b.Dir(f))
		out = append(out, Status{
			Feature: f,
			Dir:     b.Dir(f),
			Exists:  err == nil,
			Ready:   b.ready(f),
		})
	}
	return out
}

// Purge는 pip/setuptools/wheel을 제외한 모든 패키지를 제거한다. 환경 자체는 남긴다.
// 제거한 패키지 이름을 반환한다.
func (b *Bootstrapper) Purge(ctx context.Context, f Feature) ([]string, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("venv.Purge: %s: %w", f, ErrUnknownFeature)
	}
	interp := b.Interpreter(f)
	if _, err := os.Stat(interp); err != nil {
		return nil, fmt.Errorf("venv.Purge: %s: %w", f, ErrNotCreated)
	}

	out, err := b.Commander.RunWithEnv(ctx, pipEnv, interp, "-m", "pip", "freeze")
	if err != nil {
		return nil, bootstrapError("venv.Purge: freeze", out, err)
	}
	pkgs := parseFreeze(string(out))
	if len(pkgs) == 0 {
		return nil, nil
	}

	args := append([]string{"-m", "pip", "uninstall", "-y"}, pkgs...)
	if out, err := b.Commander.RunWithEnv(ctx, pipEnv, interp, args...); err != nil {
		return nil, bootstrapError("venv.Purge: uninstall", out, err)
	}
	// 패키지가 빠졌으므로 다음 Ensure에서 다시 설치되도록 한다.
	_ = os.Remove(filepath.Join(b.Dir(f), readyMarker))
	delete(b.cache, f)
	return pkgs, nil
}

// Delete는 기능 환경 디렉토리를 지운다. 없었으면 false.
func (b *Bootstrapper) Delete(f Feature) (bool, error) {
	if !f.Valid() {
		return false, fmt.Errorf("venv.Delete: %s: %w", f, ErrUnknownFeature)
	}
	delete(b.cache, f)
	dir := b.Dir(f)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return false, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("venv.Delete: %w", err)
	}
	return true, nil
}

func (b *Bootstrapper) ready(f Feature) bool {
	if _, err := os.Stat(b.Interpreter(f)); err != nil {
		return false
	}
	_, err := os.Stat(filepath.Join(b.Dir(f), readyMarker))
	return err == nil
}

func (b *Bootstrapper) remember(f Feature) {
	if b.cache == nil {
		b.cache = make(map[Feature]string)
	}
	b.cache[f] = b.Interpreter(f)
}

// parseFreeze는 pip freeze 출력에서 제거 대상 패키지 이름을 뽑는다.
func parseFreeze(out string) []string {
	seen := make(map[string]bool)
	var pkgs []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "-e ") {
			continue
		}
		name := line
		for _, sep := range []string{"==", " @ ", "@", "[", ">=", "<="} {
			if i := strings.Index(name, sep); i >= 0 {
				name = name[:i]
			}
		}
		name = strings.TrimSpace(name)
		if name == "" || keepWhenPurging[strings.ToLower(name)] || seen[name] {
			continue
		}
		seen[name] = true
		pkgs = append(pkgs, name)
	}
	sort.Strings(pkgs)
	return pkgs
}

func bootstrapError(op string, out []byte, err error) error {
	if errors.Is(err, cmdexec.ErrToolMissing) {
		return fmt.Errorf("%s: %w", op, err)
	}
	detail := strings.TrimSpace(string(out))
	if detail != "" {
		return fmt.Errorf("%s: %v\n%s: %w", op, err, detail, ErrBootstrapFailed)
	}
	return fmt.Errorf("%s: %v: %w", op, err, ErrBootstrapFailed)
}
