package fileops

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// maxSearchFileSize보다 큰 파일은 검색하지 않는다.
const maxSearchFileSize = 10 << 20

var errSearchLimit = errors.New("search limit reached")

// Match는 검색어가 포함된 한 줄이다.
type Match struct {
	Path string
	Line int
	Text string
}

// SearchOptions는 Search 동작을 조정한다.
type SearchOptions struct {
	// Glob은 파일 이름 필터다 (예: "*.go"). 비어 있으면 모든 파일.
	Glob       string
	IgnoreCase bool
	// Limit은 최대 결과 수다. 0이면 제한 없음.
	Limit int
}

// Search는 root 아래 텍스트 파일에서 term이 포함된 줄을 찾는다.
func Search(ctx context.Context, root, term string, opts SearchOptions) ([]Match, error) {
	if strings.TrimSpace(term) == "" {
		return nil, fmt.Errorf("fileops.Search: search term is empty: %w", ErrInvalidInput)
	}

	var nameFilter glob.Glob
	if opts.Glob != "" {
		g, err := glob.Compile(opts.Glob)
		if err != nil {
			return nil, fmt.Errorf("fileops.Search: invalid glob %q: %w", opts.Glob, ErrInvalidInput)
		}
		nameFilter = g
	}

	needle := term
	if opts.IgnoreCase {
		needle = strings.ToLower(term)
	}

	ig := LoadIgnore(root)
	var matches []Match

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
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
		if nameFilter != nil && !nameFilter.Match(d.Name()) {
			return nil
		}

		found, err := searchFile(path, needle, opts.IgnoreCase)
		if err != nil {
			return nil
		}
		for _, m := range found {
			matches = append(matches, m)
			if opts.Limit > 0 && len(matches) >= opts.Limit {
				return errSearchLimit
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, errSearchLimit) {
		return nil, fmt.Errorf("fileops.Search: %w", notFound(err))
	}
	return matches, nil
}

func searchFile(path, needle string, ignoreCase bool) ([]Match, error) {
	info, err := os.Stat(path)
	if err != nil || info.Size() > maxSearchFileSize {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if isBinary(data) {
		return nil, nil
	}

	var out []Match
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		hay := text
		if ignoreCase {
			hay = strings.ToLower(text)
		}
		if strings.Contains(hay, needle) {
			out = append(out, Match{Path: path, Line: line, Text: strings.TrimSpace(text)})
		}
	}
	return out, nil
}

// isBinary는 앞부분에 NUL 바이트가 있으면 바이너리로 본다.
func isBinary(data []byte) bool {
	head := data
	if len(head) > 8000 {
		head = head[:8000]
	}
	return bytes.IndexByte(head, 0) >= 0
}
