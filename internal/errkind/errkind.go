// Package errkind defines the error categories shared by every mt package.
// Domain packages declare their own sentinels wrapping one of these kinds so
// callers can branch on either the specific error or its category.
package errkind

import "errors"

var (
	// ErrValidation은 잘못된 사용자 입력이다 (IP/이메일 형식, 포트 범위, 빈 필수값).
	ErrValidation = errors.New("validation error")
	// ErrNotFound는 북마크나 파일이 존재하지 않을 때의 에러다.
	ErrNotFound = errors.New("not found")
	// ErrToolMissing는 필요한 외부 바이너리가 없을 때의 에러다.
	ErrToolMissing = errors.New("external tool missing")
	// ErrNetwork는 타임아웃, 연결 실패, non-2xx 응답이다.
	ErrNetwork = errors.New("network error")
	// ErrBootstrap는 가상환경 구성 실패다.
	ErrBootstrap = errors.New("bootstrap failed")
	// ErrCancelled는 사용자가 확인 프롬프트를 거절했을 때의 에러다.
	ErrCancelled = errors.New("cancelled by user")
)
