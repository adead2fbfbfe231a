package ui

import "github.com/atotto/clipboard"

// Clipboard는 클립보드 쓰기를 추상화한다. 테스트에서는 fake를 쓴다.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard는 pbcopy/xclip/xsel 등 OS 클립보드를 사용한다.
type SystemClipboard struct{}

// WriteAll은 text를 클립보드에 쓴다.
func (SystemClipboard) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

