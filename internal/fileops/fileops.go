// Package fileops implements the file helpers behind `mt files`: content
// search, large-file listing, backups, dated folders and the directory tree.
// Walks honour .gitignore and skip the usual dependency directories.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mrtamaki/mt/internal/errkind"
)

var (
	// ErrInvalidInput는 빈 이름이나 디렉토리가 아닌 경로 같은 잘못된 입력이다.
	ErrInvalidInput = fmt.Errorf("fileops: %w", errkind.ErrValidation)
	// ErrNotFound는 대상 파일이나 디렉토리가 없을 때의 에러다.
	ErrNotFound = fmt.Errorf("fileops: %w", errkind.ErrNotFound)
)

// 타임스탬프 레이아웃.
const (
	BackupLayout   = "20060102_150405"
	DatedDirLayout = "2006-01-02_150405"
)

// FileInfo는 경로와 크기, 수정 시각이다.
type FileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

func notFound(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}

// MakeDir는 path를 (중간 디렉토리 포함) 만들고 절대 경로를 반환한다.
func MakeDir(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("fileops.MakeDir: directory name is empty: %w", ErrInvalidInput)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("fileops.MakeDir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("fileops.MakeDir: %w", err)
	}
	return abs, nil
}

// TempDir는 새 임시 디렉토리를 만든다.
func TempDir() (string, error) {
	dir, err := os.MkdirTemp("", "mt-")
	if err != nil {
		return "", fmt.Errorf("fileops.TempDir: %w", err)
	}
	return dir, nil
}

// DatedDir는 base 아래에 YYYY-MM-DD_HHMMSS 디렉토리를 만든다.
func DatedDir(base string, now time.Time) (string, error) {
	dir := filepath.Join(base, now.Format(DatedDirLayout))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("fileops.DatedDir: %w", err)
	}
	return dir, nil
}

// Backup은 path를 path.YYYYMMDD_HHMMSS.bak 으로 복사하고 사본 경로를 반환한다.
func Backup(path string, now time.Time) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("fileops.Backup: %w", notFound(err))
	}
	if info.IsDir() {
		return "", fmt.Errorf("fileops.Backup: %s is a directory: %w", path, ErrInvalidInput)
	}

	dst := fmt.Sprintf("%s.%s.bak", path, now.Format(BackupLayout))
	if err := copyFile(path, dst, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("fileops.Backup: %w", err)
	}
	return dst, nil
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}

// RecentFiles는 dir 바로 아래의 숨김이 아닌 일반 파일을 최근 수정순으로 최대 n개 반환한다.
func RecentFiles(dir string, n int) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("fileops.RecentFiles: %w", notFound(err))
	}

	var files []FileInfo
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.After(files[j].ModTime)
	})
	if n > 0 && len(files) > n {
		files = files[:n]
	}
	return files, nil
}

// LastModified는 dir에서 가장 최근에 수정된 파일을 반환한다.
func LastModified(dir string) (FileInfo, error) {
	files, err := RecentFiles(dir, 1)
	if err != nil {
		return FileInfo{}, err
	}
	if len(files) == 0 {
		return FileInfo{}, fmt.Errorf("fileops.LastModified: no files in %s: %w", dir, ErrNotFound)
	}
	return files[0], nil
}

// LargeFiles는 root 아래에서 threshold 바이트 이상인 파일을 크기 내림차순으로 반환한다.
func LargeFiles(root string, threshold int64) ([]FileInfo, error) {
	ig := LoadIgnore(root)
	var found []FileInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if path != root && ig.Ignored(path, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() >= threshold {
			found = append(found, FileInfo{Path: path, Size: info.Size(), ModTime: info.ModTime()})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("fileops.LargeFiles: %w", notFound(err))
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Size != found[j].Size {
			return found[i].Size > found[j].Size
		}
		return found[i].Path < found[j].Path
	})
	return found, nil
}
