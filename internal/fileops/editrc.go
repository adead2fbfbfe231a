package fileops

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mrtamaki/mt/internal/cmdexec"
)

// RCEditor는 셸 설정 파일을 백업한 뒤 에디터로 열고 변경 여부를 보고한다.
type RCEditor struct {
	Commander cmdexec.Commander
	// Editor는 실행할 에디터 명령이다 (예: "vim", "code -w").
	Editor string
	Now    func() time.Time
	Logger *slog.Logger
}

// EditResult는 RCEditor.Edit 결과다.
type EditResult struct {
	Backup string
	// Changed는 에디터 종료 후 파일 내용이 달라졌으면 true다.
	Changed bool
	// Saves는 편집 중 관찰한 쓰기 이벤트 수다.
	Saves int
}

// Edit은 rc를 백업하고 에디터를 터미널에 붙여 실행한다.
// 에디터가 실행되는 동안 rc가 있는 디렉토리를 감시한다.
func (e *RCEditor) Edit(ctx context.Context, rc string) (EditResult, error) {
	fields := strings.Fields(e.Editor)
	if len(fields) == 0 {
		return EditResult{}, fmt.Errorf("fileops.Edit: editor is not set: %w", ErrInvalidInput)
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	before, err := os.ReadFile(rc)
	if err != nil {
		return EditResult{}, fmt.Errorf("fileops.Edit: %w", notFound(err))
	}
	backup, err := Backup(rc, now())
	if err != nil {
		return EditResult{}, err
	}

	w, err := newRCWatcher(rc)
	if err != nil {
		logger.Warn("file watch unavailable", "path", rc, "error", err)
	}

	args := append(fields[1:], rc)
	runErr := e.Commander.RunInteractive(ctx, fields[0], args...)

	saves := w.stop()
	if runErr != nil {
		return EditResult{Backup: backup}, fmt.Errorf("fileops.Edit: %s: %w", fields[0], runErr)
	}

	after, err := os.ReadFile(rc)
	if err != nil {
		return EditResult{Backup: backup}, fmt.Errorf("fileops.Edit: %w", notFound(err))
	}
	logger.Debug("editor exited", "path", rc, "saves", saves)
	return EditResult{
		Backup:  backup,
		Changed: !bytes.Equal(before, after),
		Saves:   saves,
	}, nil
}

// rcWatcher는 대상 파일의 쓰기 이벤트를 센다.
// 에디터가 rename으로 저장하는 경우가 있어 디렉토리를 감시한다.
type rcWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}

	mu    sync.Mutex
	saves int
}

func newRCWatcher(path string) (*rcWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &rcWatcher{watcher: fw, done: make(chan struct{})}
	target := filepath.Clean(path)
	go func() {
		defer close(w.done)
		for {
			select {
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					w.mu.Lock()
					w.saves++
					w.mu.Unlock()
				}
			case _, ok := <-fw.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return w, nil
}

// stop은 감시를 끝내고 관찰한 쓰기 이벤트 수를 반환한다. nil에서도 안전하다.
func (w *rcWatcher) stop() int {
	if w == nil {
		return 0
	}
	_ = w.watcher.Close()
	<-w.done
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saves
}
