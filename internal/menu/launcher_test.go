package menu_test

import (
	"context"
	"errors"
	"os"
	"runtime"
	"testing"

	"github.com/mrtamaki/mt/internal/cmdexec"
	"github.com/mrtamaki/mt/internal/menu"
	"github.com/mrtamaki/mt/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedSession() string { return "sess-1" }

// resultFile은 "menu-ui --result-file PATH --session S" 인자에서 PATH를 꺼낸다.
func resultFile(args []string) string {
	for i, a := range args {
		if a == "--result-file" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestLaunch_DecodesRecord(t *testing.T) {
	t.Parallel()
	cmd := testutil.NewFakeCommander()
	var seen string
	cmd.OnRun("/bin/mt --config /c.toml menu-ui", func(args []string) {
		seen = resultFile(args)
		rec := `{"v":1,"session":"sess-1","kind":"command","command":"backup"}` + "\n"
		require.NoError(t, os.WriteFile(seen, []byte(rec), 0o600))
	})
	cmd.Register("/bin/mt", "", nil)

	l := &menu.Launcher{
		Commander:  cmd,
		Executable: "/bin/mt",
		Args:       []string{"--config", "/c.toml"},
		TempDir:    t.TempDir(),
		NewSession: fixedSession,
	}
	sel, ok, err := l.Launch(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, menu.CommandSelection(menu.CmdBackup), sel)
	assert.Equal(t, []string{"/bin/mt --config /c.toml menu-ui --result-file " + seen + " --session sess-1"}, cmd.Calls)
	assert.NoFileExists(t, seen)
}

func TestLaunch_EmptyResultIsNoSelection(t *testing.T) {
	t.Parallel()
	cmd := testutil.NewFakeCommander()
	cmd.Register("/bin/mt", "", nil)

	l := &menu.Launcher{Commander: cmd, Executable: "/bin/mt", TempDir: t.TempDir(), NewSession: fixedSession}
	sel, ok, err := l.Launch(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, menu.Selection{}, sel)
}

func TestLaunch_StartFailure(t *testing.T) {
	t.Parallel()
	cmd := testutil.NewFakeCommander()
	cmd.Register("/bin/mt", "", errors.New("fork failed"))

	l := &menu.Launcher{Commander: cmd, Executable: "/bin/mt", TempDir: t.TempDir(), NewSession: fixedSession}
	_, ok, err := l.Launch(context.Background())
	require.Error(t, err)
	assert.False(t, ok)
}

func TestLaunch_SessionMismatch(t *testing.T) {
	t.Parallel()
	cmd := testutil.NewFakeCommander()
	cmd.OnRun("/bin/mt", func(args []string) {
		rec := `{"v":1,"session":"stale","kind":"cd","path":"/tmp"}`
		require.NoError(t, os.WriteFile(resultFile(args), []byte(rec), 0o600))
	})
	cmd.Register("/bin/mt", "", nil)

	l := &menu.Launcher{Commander: cmd, Executable: "/bin/mt", TempDir: t.TempDir(), NewSession: fixedSession}
	_, _, err := l.Launch(context.Background())
	assert.ErrorIs(t, err, menu.ErrMalformed)
}

// 실제 프로세스로 종료 코드 처리를 확인한다. 인자는 $1..$5 =
// menu-ui --result-file PATH --session S 이다.
func TestLaunch_RealProcessExitCodes(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	t.Parallel()

	tests := []struct {
		name   string
		script string
		wantOK bool
		want   menu.Selection
	}{
		{
			name:   "selection then exit 0",
			script: `printf '{"v":1,"session":"%s","kind":"cd","path":"/tmp"}\n' "$5" > "$3"`,
			wantOK: true,
			want:   menu.CDSelection("/tmp"),
		},
		{
			name:   "written but exit 1 is cancellation",
			script: `printf '__FILEMENU_CMD__:fb\n' > "$3"; exit 1`,
		},
		{
			name:   "exit 130 is cancellation",
			script: `exit 130`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &menu.Launcher{
				Commander:  &cmdexec.RealCommander{},
				Executable: "sh",
				Args:       []string{"-c", tt.script, "sh"},
				TempDir:    t.TempDir(),
			}
			sel, ok, err := l.Launch(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, sel)
		})
	}
}
