package menu

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// 예전 한 줄 프로토콜의 접두사.
const (
	Sentinel   = "__FILEMENU_CMD__:"
	CDSentinel = "__CD__:"
)

// RecordVersion은 결과 레코드 형식 버전이다.
const RecordVersion = 1

// ErrMalformed는 결과 레코드를 해석할 수 없을 때의 에러다.
var ErrMalformed = errors.New("menu: malformed result record")

// Kind는 선택 종류다.
type Kind string

const (
	KindCommand Kind = "command"
	KindCD      Kind = "cd"
)

// Selection은 메뉴에서 고른 결과다. KindCD면 Path, 아니면 Command가 채워진다.
type Selection struct {
	Kind    Kind
	Command Command
	Path    string
}

// CommandSelection은 명령 선택을 만든다.
func CommandSelection(c Command) Selection {
	return Selection{Kind: KindCommand, Command: c}
}

// CDSelection은 디렉토리 이동 선택을 만든다.
func CDSelection(path string) Selection {
	return Selection{Kind: KindCD, Path: path}
}

type record struct {
	V       int    `json:"v"`
	Session string `json:"session"`
	Kind    Kind   `json:"kind"`
	Command string `json:"command,omitempty"`
	Path    string `json:"path,omitempty"`
}

// Encode는 sel을 한 줄 JSON 레코드로 w에 쓴다.
func Encode(w io.Writer, session string, sel Selection) error {
	rec := record{V: RecordVersion, Session: session, Kind: sel.Kind}
	switch sel.Kind {
	case KindCommand:
		if _, ok := Lookup(sel.Command); !ok {
			return fmt.Errorf("menu.Encode: %w: %q", ErrUnknownCommand, sel.Command)
		}
		rec.Command = string(sel.Command)
	case KindCD:
		if !filepath.IsAbs(sel.Path) {
			return fmt.Errorf("menu.Encode: path %q is not absolute: %w", sel.Path, ErrMalformed)
		}
		rec.Path = sel.Path
	default:
		return fmt.Errorf("menu.Encode: kind %q: %w", sel.Kind, ErrMalformed)
	}
	return json.NewEncoder(w).Encode(rec)
}

// Decode는 메뉴 프로세스의 결과를 해석한다.
// 레코드나 sentinel 줄이 없으면 선택 없음(false, nil)이다.
// session이 비어있지 않으면 레코드의 session과 같아야 한다.
func Decode(data []byte, session string) (Selection, bool, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "{"):
			sel, err := decodeRecord([]byte(line), session)
			if err != nil {
				return Selection{}, false, err
			}
			return sel, true, nil
		case strings.HasPrefix(line, Sentinel):
			sel, err := decodeLegacy(strings.TrimPrefix(line, Sentinel))
			if err != nil {
				return Selection{}, false, err
			}
			return sel, true, nil
		}
	}
	if err := sc.Err(); err != nil {
		return Selection{}, false, fmt.Errorf("menu.Decode: %w", err)
	}
	return Selection{}, false, nil
}

func decodeRecord(line []byte, session string) (Selection, error) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return Selection{}, fmt.Errorf("menu.Decode: %w: %v", ErrMalformed, err)
	}
	if rec.V != RecordVersion {
		return Selection{}, fmt.Errorf("menu.Decode: unsupported version %d: %w", rec.V, ErrMalformed)
	}
	if session != "" && rec.Session != session {
		return Selection{}, fmt.Errorf("menu.Decode: session mismatch: %w", ErrMalformed)
	}

	switch rec.Kind {
	case KindCommand:
		cmd, err := ParseCommand(rec.Command)
		if err != nil {
			return Selection{}, fmt.Errorf("menu.Decode: %w", err)
		}
		return CommandSelection(cmd), nil
	case KindCD:
		if !filepath.IsAbs(rec.Path) {
			return Selection{}, fmt.Errorf("menu.Decode: path %q is not absolute: %w", rec.Path, ErrMalformed)
		}
		return CDSelection(rec.Path), nil
	default:
		return Selection{}, fmt.Errorf("menu.Decode: kind %q: %w", rec.Kind, ErrMalformed)
	}
}

func decodeLegacy(token string) (Selection, error) {
	if path, ok := strings.CutPrefix(token, CDSentinel); ok {
		if !filepath.IsAbs(path) {
			return Selection{}, fmt.Errorf("menu.Decode: path %q is not absolute: %w", path, ErrMalformed)
		}
		return CDSelection(path), nil
	}
	cmd, err := ParseCommand(token)
	if err != nil {
		return Selection{}, fmt.Errorf("menu.Decode: %w", err)
	}
	return CommandSelection(cmd), nil
}
