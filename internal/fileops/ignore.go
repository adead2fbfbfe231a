package fileops

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// defaultIgnorePatterns는 .gitignore와 무관하게 항상 건너뛰는 경로다.
var defaultIgnorePatterns = []string{
	".git/",
	"node_modules/",
	".venv/",
	"__pycache__/",
	".DS_Store",
}

// Matcher는 root 기준 상대 경로가 무시 대상인지 판정한다.
type Matcher struct {
	root    string
	matcher *gitignore.GitIgnore
}

// LoadIgnore는 기본 패턴과 root/.gitignore를 합쳐 Matcher를 만든다.
func LoadIgnore(root string) *Matcher {
	patterns := append([]string{}, defaultIgnorePatterns...)
	if lines, err := readIgnoreLines(filepath.Join(root, ".gitignore")); err == nil {
		patterns = append(patterns, lines...)
	}
	return &Matcher{root: root, matcher: gitignore.CompileIgnoreLines(patterns...)}
}

// Ignored는 path(절대 또는 root 상대)가 무시 대상이면 true다.
func (m *Matcher) Ignored(path string, isDir bool) bool {
	if m == nil || m.matcher == nil {
		return false
	}
	rel := path
	if filepath.IsAbs(path) {
		r, err := filepath.Rel(m.root, path)
		if err != nil {
			return false
		}
		rel = r
	}
	if rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	if isDir {
		rel += "/"
	}
	return m.matcher.MatchesPath(rel)
}

func readIgnoreLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}
