// Package bookmark stores named shortcuts to directories in a single JSON
// object on disk (name → absolute path). The file has no schema version and
// no nesting; writes replace the whole file via rename.
package bookmark

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mrtamaki/mt/internal/errkind"
)

var (
	// ErrInvalidName는 정제 후 이름이 비어있을 때의 에러다.
	ErrInvalidName = fmt.Errorf("invalid bookmark name: %w", errkind.ErrValidation)
	// ErrNotFound는 해당 이름의 북마크가 없을 때의 에러다.
	ErrNotFound = fmt.Errorf("bookmark %w", errkind.ErrNotFound)
	// ErrStalePath는 북마크 경로가 더 이상 디렉토리로 존재하지 않을 때의 에러다.
	ErrStalePath = fmt.Errorf("bookmark path %w", errkind.ErrNotFound)
	// ErrCorrupt는 북마크 파일이 이름→경로 객체가 아닐 때의 에러다.
	ErrCorrupt = errors.New("bookmark file is corrupt")
)

// Bookmark는 이름과 절대 경로 한 쌍이다.
type Bookmark struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Store는 파일 하나에 저장되는 북마크 저장소다.
// 동시에 여러 셸에서 쓰면 마지막 rename이 이긴다.
type Store struct {
	path string
}

// NewStore는 path의 JSON 파일을 사용하는 Store를 생성한다.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path는 북마크 파일 경로를 반환한다.
func (s *Store) Path() string {
	return s.path
}

// Sanitize는 [A-Za-z0-9_-] 이외의 문자를 모두 제거한다.
// 모든 호출 경로(CLI, 메뉴)가 이 규칙 하나만 사용한다.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Save는 name → path를 기록한다. 같은 이름이 있으면 조용히 덮어쓴다.
// 정제된 이름을 반환한다.
func (s *Store) Save(name, path string) (string, error) {
	clean := Sanitize(name)
	if clean == "" {
		return "", fmt.Errorf("bookmark.Save: %q: %w", name, ErrInvalidName)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("bookmark.Save: %w", err)
	}

	m, err := s.load()
	if err != nil {
		return "", err
	}
	m[clean] = abs
	if err := s.persist(m); err != nil {
		return "", err
	}
	return clean, nil
}

// List는 모든 북마크를 이름순으로 반환한다. 파일이 없으면 빈 결과다.
func (s *Store) List() ([]Bookmark, error) {
	m, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]Bookmark, 0, len(m))
	for name, p := range m {
		out = append(out, Bookmark{Name: name, Path: p})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Resolve는 저장된 경로를 반환한다. 경로가 실제로 존재하는지는 확인하지 않는다.
// name은 Save와 같은 규칙으로 정리한 뒤 찾는다.
func (s *Store) Resolve(name string) (string, error) {
	m, err := s.load()
	if err != nil {
		return "", err
	}
	p, ok := m[Sanitize(name)]
	if !ok {
		return "", fmt.Errorf("bookmark.Resolve: %q: %w", name, ErrNotFound)
	}
	return p, nil
}

// Delete는 북마크를 제거한다. 없으면 파일을 건드리지 않고 ErrNotFound.
func (s *Store) Delete(name string) error {
	m, err := s.load()
	if err != nil {
		return err
	}
	key := Sanitize(name)
	if _, ok := m[key]; !ok {
		return fmt.Errorf("bookmark.Delete: %q: %w", name, ErrNotFound)
	}
	delete(m, key)
	return s.persist(m)
}

// CheckDir는 path가 존재하는 디렉토리인지 확인한다.
func CheckDir(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrStalePath)
	}
	return nil
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]string), nil
	}
	if err != nil {
		return nil, fmt.Errorf("bookmark.load: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return make(map[string]string), nil
	}
	if err := validateDocument(data); err != nil {
		return nil, fmt.Errorf("bookmark.load: %s: %w", s.path, err)
	}
	m := make(map[string]string)
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("bookmark.load: %s: %v: %w", s.path, err, ErrCorrupt)
	}
	return m, nil
}

func (s *Store) persist(m map[string]string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("bookmark.persist: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("bookmark.persist: %w", err)
	}
	if err := atomicWriteFile(s.path, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("bookmark.persist: %w", err)
	}
	return nil
}

// atomicWriteFile writes content to a temp file in the same directory and
// renames it over path.
func atomicWriteFile(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
