package fileops

import (
	"fmt"
	"os"
	"strings"
)

// RecentLimit는 메뉴 헤더에 보여줄 최근 파일 수다.
const RecentLimit = 5

// DirContext는 메뉴 헤더에 표시하는 현재 디렉토리 요약이다.
type DirContext struct {
	Path   string
	Files  int
	Dirs   int
	Recent []FileInfo
}

// ReadDirContext는 dir의 파일/디렉토리 수와 최근 파일 목록을 읽는다.
// 숨김 항목은 세지 않는다.
func ReadDirContext(dir string) (DirContext, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return DirContext{}, fmt.Errorf("fileops.ReadDirContext: %w", notFound(err))
	}
	dc := DirContext{Path: dir}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if e.IsDir() {
			dc.Dirs++
		} else {
			dc.Files++
		}
	}
	recent, err := RecentFiles(dir, RecentLimit)
	if err != nil {
		return DirContext{}, err
	}
	dc.Recent = recent
	return dc, nil
}
