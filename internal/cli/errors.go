package cli

import (
	"errors"

	"github.com/mrtamaki/mt/internal/bookmark"
	"github.com/mrtamaki/mt/internal/config"
	"github.com/mrtamaki/mt/internal/errkind"
	"github.com/mrtamaki/mt/internal/menu"
	"github.com/mrtamaki/mt/internal/venv"
)

// ErrUsage는 인자 개수, 알 수 없는 명령, 잘못된 플래그를 나타낸다.
var ErrUsage = errors.New("usage error")

// ErrNoSelection은 menu-ui가 선택 없이 끝났음을 부모에게 알리는 에러다 (종료 코드 1).
var ErrNoSelection = errors.New("no selection")

// 각 도메인 패키지의 sentinel error를 CLI 레이어에서 편의상 re-export한다.
var (
	// ErrConfig는 설정 파일 또는 자격 증명 오류다.
	ErrConfig = config.ErrConfig
	// ErrCancelled는 사용자가 프롬프트를 취소했을 때의 에러다.
	ErrCancelled = errkind.ErrCancelled
	// ErrValidation은 잘못된 입력이다.
	ErrValidation = errkind.ErrValidation
	// ErrNetwork는 HTTP/전송 실패다.
	ErrNetwork = errkind.ErrNetwork
	// ErrStalePath는 북마크 경로가 더 이상 디렉토리가 아닐 때의 에러다.
	ErrStalePath = bookmark.ErrStalePath
	// ErrUnknownCommand는 메뉴가 알 수 없는 명령을 돌려줬을 때의 에러다.
	ErrUnknownCommand = menu.ErrUnknownCommand
	// ErrBootstrapFailed는 가상환경 준비 실패다.
	ErrBootstrapFailed = venv.ErrBootstrapFailed
)
