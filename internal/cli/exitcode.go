package cli

import (
	"errors"
)

// ExitCode는 mt의 종료 코드다.
type ExitCode int

const (
	// ExitSuccess는 정상 종료다. 확인 프롬프트를 거절한 경우도 포함한다.
	ExitSuccess ExitCode = 0
	// ExitGeneral는 일반 에러다.
	ExitGeneral ExitCode = 1
	// ExitUsage는 인자 개수나 플래그가 잘못된 사용법 에러다.
	ExitUsage ExitCode = 2
)

// MapExitCode는 sentinel error를 기반으로 적절한 종료 코드를 반환한다.
func MapExitCode(err error) ExitCode {
	if err == nil {
		return ExitSuccess
	}
	switch {
	case errors.Is(err, ErrUsage):
		return ExitUsage
	case errors.Is(err, ErrCancelled):
		return ExitSuccess
	default:
		return ExitGeneral
	}
}

// Silent는 main이 에러 메시지를 출력하지 않아야 하는 에러인지 반환한다.
func Silent(err error) bool {
	return errors.Is(err, ErrNoSelection) || errors.Is(err, ErrCancelled)
}
