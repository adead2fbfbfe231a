// Package dns flushes the macOS resolver caches.
package dns

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrtamaki/mt/internal/cmdexec"
)

// Step은 캐시 초기화 명령 하나다.
type Step struct {
	Name string
	Args []string
}

// String은 사람이 읽을 명령 줄이다.
func (s Step) String() string {
	return strings.TrimSpace(s.Name + " " + strings.Join(s.Args, " "))
}

// Steps는 macOS에서 DNS 캐시를 비우는 명령 순서다.
func Steps() []Step {
	return []Step{
		{Name: "dscacheutil", Args: []string{"-flushcache"}},
		{Name: "killall", Args: []string{"-HUP", "mDNSResponder"}},
	}
}

// Flusher는 sudo로 캐시 초기화 명령을 실행한다.
type Flusher struct {
	Commander cmdexec.Commander
}

// Flush는 Steps를 차례로 실행한다. sudo 비밀번호 입력을 위해 터미널에 붙는다.
// 필요한 도구가 없으면 (macOS가 아니면) 아무것도 실행하지 않고 ErrToolMissing.
func (f *Flusher) Flush(ctx context.Context) ([]Step, error) {
	steps := Steps()
	for _, name := range []string{"sudo", steps[0].Name, steps[1].Name} {
		if _, err := f.Commander.LookPath(name); err != nil {
			return nil, fmt.Errorf("dns.Flush: %w", err)
		}
	}

	var done []Step
	for _, s := range steps {
		args := append([]string{s.Name}, s.Args...)
		if err := f.Commander.RunInteractive(ctx, "sudo", args...); err != nil {
			return done, fmt.Errorf("dns.Flush: %s: %w", s, err)
		}
		done = append(done, s)
	}
	return done, nil
}
