// Package menu implements the interactive file menu and the protocol the
// menu child process uses to hand its selection back to the invoking `mt`.
package menu

import (
	"fmt"
	"strings"

	"github.com/mrtamaki/mt/internal/errkind"
)

// ErrUnknownCommand는 닫힌 명령 집합에 없는 토큰이다.
var ErrUnknownCommand = fmt.Errorf("menu: unknown command: %w", errkind.ErrValidation)

// Command는 메뉴에서 선택할 수 있는 명령이다.
type Command string

// 메뉴 명령 집합.
const (
	CmdEditRC   Command = "edit-rc"
	CmdSearch   Command = "search"
	CmdMkcd     Command = "mkcd"
	CmdLast     Command = "last"
	CmdLarge    Command = "large"
	CmdTempDir  Command = "tempdir"
	CmdBackup   Command = "backup"
	CmdDatedDir Command = "dated-dir"
	CmdTree     Command = "tree"
	CmdBookmark Command = "bookmark"
	CmdJump     Command = "jump"
)

// Entry는 메뉴 한 줄이다. Alias는 예전 셸 함수 이름이다.
type Entry struct {
	Command     Command
	Alias       string
	Title       string
	Description string
}

var entries = []Entry{
	{CmdEditRC, "fa", "Edit .zshrc", "Edit .zshrc with backup and reload on change"},
	{CmdSearch, "fb", "Search Files", "Recursive text search in the current directory"},
	{CmdMkcd, "mkcd", "Make & Enter", "Create a directory and cd into it"},
	{CmdLast, "flast", "Open Last", "Open the most recently modified file"},
	{CmdLarge, "fe", "Large Files", "Find files larger than the configured size"},
	{CmdTempDir, "tempdir", "Temp Dir", "Create and enter a temporary directory"},
	{CmdBackup, "ff", "Backup File", "Create a timestamped backup of a file"},
	{CmdDatedDir, "fg", "Desktop Dir", "Create a timestamped folder on the Desktop"},
	{CmdTree, "ftree", "Tree View", "Show the directory tree"},
	{CmdBookmark, "fbook", "Bookmark", "Save the current directory as a bookmark"},
	{CmdJump, "fgo", "Go to Bookmark", "Jump to a bookmarked directory"},
}

// Entries는 메뉴 표시 순서대로 명령 목록의 사본을 반환한다.
func Entries() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Lookup은 명령의 메뉴 항목을 반환한다.
func Lookup(c Command) (Entry, bool) {
	for _, e := range entries {
		if e.Command == c {
			return e, true
		}
	}
	return Entry{}, false
}

// ParseCommand는 명령 이름이나 예전 별칭을 Command로 변환한다.
func ParseCommand(token string) (Command, error) {
	token = strings.TrimSpace(token)
	for _, e := range entries {
		if token == string(e.Command) || token == e.Alias {
			return e.Command, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, token)
}
