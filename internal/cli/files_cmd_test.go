package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mrtamaki/mt/internal/bookmark"
	"github.com/mrtamaki/mt/internal/cli"
	"github.com/mrtamaki/mt/internal/errkind"
	"github.com/mrtamaki/mt/internal/menu"
	"github.com/mrtamaki/mt/internal/shell"
	"github.com/mrtamaki/mt/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

// --- files ---

func TestMkcdCmd_WithHook(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	target := filepath.Join(e.dir, "work", "new")

	out, _, err := e.run("files", "mkcd", target)
	require.NoError(t, err)

	assert.DirExists(t, target)
	assert.Equal(t, shell.Cd(target), e.evalScript(t))
	assert.NotContains(t, out, "cd --")
}

func TestMkcdCmd_WithoutHook(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	e.env[shell.EnvEvalFile] = ""
	target := filepath.Join(e.dir, "plain")

	out, errOut, err := e.run("files", "mkcd", target)
	require.NoError(t, err)

	assert.Equal(t, shell.Cd(target), out)
	assert.Contains(t, errOut, "mt shell install")
}

func TestSearchCmd(t *testing.T) {
	t.Parallel()
	root := testutil.TempTree(t, map[string]string{
		"notes/a.txt": "first line\nHello World\n",
		"b.go":        "package b // hello\n",
		"c.txt":       "nothing here\n",
	})
	e := newTestEnv(t, "")

	out, _, err := e.run("files", "search", "hello", root, "-i")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join("notes", "a.txt")+":2:")
	assert.Contains(t, out, "b.go:1:")
	assert.NotContains(t, out, "c.txt")

	out, _, err = e.run("files", "search", "hello", root, "-g", "*.go")
	require.NoError(t, err)
	assert.Contains(t, out, "b.go:1:")
	assert.NotContains(t, out, "a.txt")
}

func TestSearchCmd_NoMatches(t *testing.T) {
	t.Parallel()
	root := testutil.TempTree(t, map[string]string{"a.txt": "abc\n"})
	e := newTestEnv(t, "")

	out, _, err := e.run("files", "search", "zzz", root)
	require.NoError(t, err)
	assert.Contains(t, out, `no matches for "zzz"`)
}

func TestLargeCmd(t *testing.T) {
	t.Parallel()
	root := testutil.TempTree(t, map[string]string{
		"big.bin":   strings.Repeat("x", 4096),
		"small.txt": "tiny",
	})
	e := newTestEnv(t, "")

	out, _, err := e.run("files", "large", root, "--threshold", "2KB")
	require.NoError(t, err)
	assert.Contains(t, out, "big.bin")
	assert.NotContains(t, out, "small.txt")
}

func TestLargeCmd_BadThreshold(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	_, _, err := e.run("files", "large", e.dir, "--threshold", "lots")
	assert.ErrorIs(t, err, cli.ErrUsage)
}

func TestLargeCmd_ConfigThreshold(t *testing.T) {
	t.Parallel()
	root := testutil.TempTree(t, map[string]string{"mid.bin": strings.Repeat("x", 1500)})
	e := newTestEnv(t, "large_file_threshold = \"1KB\"\n")

	out, _, err := e.run("files", "large", root)
	require.NoError(t, err)
	assert.Contains(t, out, "mid.bin")
}

func TestBackupCmd(t *testing.T) {
	t.Parallel()
	root := testutil.TempTree(t, map[string]string{"notes.txt": "keep me"})
	e := newTestEnv(t, "")
	e.app.Now = func() time.Time { return fixedNow }

	out, _, err := e.run("files", "backup", filepath.Join(root, "notes.txt"))
	require.NoError(t, err)
	assert.Contains(t, out, "backup created")

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, ent := range entries {
		data, err := os.ReadFile(filepath.Join(root, ent.Name()))
		require.NoError(t, err)
		assert.Equal(t, "keep me", string(data))
	}
}

func TestBackupCmd_MissingFile(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	_, _, err := e.run("files", "backup", filepath.Join(e.dir, "nope.txt"))
	assert.ErrorIs(t, err, errkind.ErrNotFound)
}

func TestDatedDirCmd(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	e.app.Now = func() time.Time { return fixedNow }

	_, _, err := e.run("files", "dated-dir")
	require.NoError(t, err)

	script := e.evalScript(t)
	desktop := filepath.Join(e.home, "Desktop")
	assert.True(t, strings.HasPrefix(script, "cd -- '"+desktop+string(filepath.Separator)), script)
	entries, err := os.ReadDir(desktop)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestTreeCmd(t *testing.T) {
	t.Parallel()
	root := testutil.TempTree(t, map[string]string{
		"src/main.go":     "package main",
		"src/deep/x/y.go": "package y",
		"README.md":       "# hi",
	})
	e := newTestEnv(t, "")

	out, _, err := e.run("files", "tree", root, "--depth", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "src")
	assert.Contains(t, out, "README.md")
	assert.NotContains(t, out, "y.go")
}

func TestLastCmd_PrintOnly(t *testing.T) {
	t.Parallel()
	root := testutil.TempTree(t, map[string]string{"old.txt": "a", "new.txt": "b"})
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(root, "old.txt"), past, past))
	e := newTestEnv(t, "")

	out, _, err := e.run("files", "last", root, "--print")
	require.NoError(t, err)
	assert.Contains(t, out, "new.txt")
	assert.Empty(t, e.fc.Calls)
}

func TestLastCmd_Opens(t *testing.T) {
	t.Parallel()
	root := testutil.TempTree(t, map[string]string{"only.txt": "a"})
	e := newTestEnv(t, "")
	e.fc.Register("open", "", nil)

	_, _, err := e.run("files", "last", root)
	require.NoError(t, err)
	assert.Equal(t, []string{"open " + filepath.Join(root, "only.txt")}, e.fc.Calls)
}

func TestEditRCCmd_ReloadsOnChange(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	rc := filepath.Join(e.dir, ".zshrc")
	require.NoError(t, os.WriteFile(rc, []byte("export A=1\n"), 0600))
	e.app.Now = func() time.Time { return fixedNow }
	e.fc.OnRun("vim", func(args []string) {
		require.NoError(t, os.WriteFile(args[len(args)-1], []byte("export A=2\n"), 0600))
	})
	e.fc.Register("vim", "", nil)

	out, _, err := e.run("files", "edit-rc")
	require.NoError(t, err)
	assert.True(t, e.fc.Called("vim "+rc))
	assert.Equal(t, shell.Source(rc), e.evalScript(t))
	assert.Contains(t, out, "reloaded")
}

func TestEditRCCmd_Unchanged(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	rc := filepath.Join(e.dir, ".zshrc")
	require.NoError(t, os.WriteFile(rc, []byte("export A=1\n"), 0600))
	e.fc.Register("vim", "", nil)

	out, _, err := e.run("files", "edit-rc")
	require.NoError(t, err)
	assert.Contains(t, out, "unchanged")
	assert.Empty(t, e.evalScript(t))
}

// --- bookmarks ---

func TestBookmarkCmd_SaveListJump(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	proj := filepath.Join(e.dir, "proj")
	require.NoError(t, os.Mkdir(proj, 0755))

	out, _, err := e.run("bm", "save", "my-proj!", proj)
	require.NoError(t, err)
	assert.Contains(t, out, `name sanitized to "my-proj"`)
	assert.Equal(t, map[string]string{"my-proj": proj}, testutil.ReadBookmarkFile(t, filepath.Join(e.dir, "bookmarks.json")))

	out, _, err = e.run("bm", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "my-proj")
	assert.Contains(t, out, proj)

	_, _, err = e.run("bm", "jump", "my-proj")
	require.NoError(t, err)
	assert.Equal(t, shell.Cd(proj), e.evalScript(t))
}

func TestBookmarkCmd_SavePromptsForName(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	e.prompter.Inputs = []string{"docs"}

	_, _, err := e.run("bm", "save")
	require.NoError(t, err)

	store := bookmark.NewStore(filepath.Join(e.dir, "bookmarks.json"))
	path, err := store.Resolve("docs")
	require.NoError(t, err)
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, path)
}

func TestBookmarkCmd_JumpSelectsFromList(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	a, b := filepath.Join(e.dir, "a"), filepath.Join(e.dir, "b")
	require.NoError(t, os.Mkdir(a, 0755))
	require.NoError(t, os.Mkdir(b, 0755))
	_, _, err := e.run("bm", "save", "alpha", a)
	require.NoError(t, err)
	_, _, err = e.run("bm", "save", "beta", b)
	require.NoError(t, err)
	e.prompter.Selects = []string{"beta"}

	_, _, err = e.run("bm", "jump")
	require.NoError(t, err)
	assert.Equal(t, shell.Cd(b), e.evalScript(t))
}

func TestBookmarkCmd_JumpStalePath(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	gone := filepath.Join(e.dir, "gone")
	require.NoError(t, os.Mkdir(gone, 0755))
	_, _, err := e.run("bm", "save", "gone", gone)
	require.NoError(t, err)
	require.NoError(t, os.Remove(gone))

	out, _, err := e.run("bm", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "(missing)")

	_, _, err = e.run("bm", "jump", "gone")
	assert.ErrorIs(t, err, cli.ErrStalePath)
	assert.Empty(t, e.evalScript(t))
}

func TestBookmarkCmd_DeleteAndErrors(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	_, _, err := e.run("bm", "save", "tmp", e.dir)
	require.NoError(t, err)

	_, _, err = e.run("bm", "rm", "tmp", "--yes")
	require.NoError(t, err)
	assert.Empty(t, testutil.ReadBookmarkFile(t, filepath.Join(e.dir, "bookmarks.json")))

	// 없는 북마크는 묻기 전에 실패한다.
	_, _, err = e.run("bm", "delete", "tmp")
	assert.ErrorIs(t, err, errkind.ErrNotFound)
	assert.Empty(t, e.prompter.Asked)

	_, _, err = e.run("bm", "jump", "nope")
	assert.ErrorIs(t, err, bookmark.ErrNotFound)

	_, _, err = e.run("bm", "save", "!!!", e.dir)
	assert.ErrorIs(t, err, errkind.ErrValidation)
}

func TestBookmarkCmd_DeleteConfirm(t *testing.T) {
	t.Parallel()
	bookmarks := func(e *testEnv) map[string]string {
		return testutil.ReadBookmarkFile(t, filepath.Join(e.dir, "bookmarks.json"))
	}

	t.Run("declined", func(t *testing.T) {
		e := newTestEnv(t, "")
		_, _, err := e.run("bm", "save", "work", e.dir)
		require.NoError(t, err)
		e.prompter.Confirms = []bool{false}

		out, _, err := e.run("bm", "delete", "work")
		require.NoError(t, err)
		assert.Equal(t, []string{"Delete bookmark work (" + e.dir + ")?"}, e.prompter.Asked)
		assert.Contains(t, out, "cancelled, nothing changed")
		assert.Contains(t, bookmarks(e), "work")
	})

	t.Run("confirmed", func(t *testing.T) {
		e := newTestEnv(t, "")
		_, _, err := e.run("bm", "save", "work", e.dir)
		require.NoError(t, err)
		e.prompter.Confirms = []bool{true}

		out, _, err := e.run("bm", "delete", "work")
		require.NoError(t, err)
		assert.Len(t, e.prompter.Asked, 1)
		assert.Contains(t, out, "deleted bookmark work")
		assert.NotContains(t, bookmarks(e), "work")
	})

	t.Run("unsanitized name", func(t *testing.T) {
		e := newTestEnv(t, "")
		_, _, err := e.run("bm", "save", "my work", e.dir)
		require.NoError(t, err)

		_, _, err = e.run("bm", "delete", "my work", "-y")
		require.NoError(t, err)
		assert.Empty(t, e.prompter.Asked)
		assert.Empty(t, bookmarks(e))
	})
}

func TestBookmarkCmd_CorruptFile(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	require.NoError(t, os.WriteFile(filepath.Join(e.dir, "bookmarks.json"), []byte("[1,2]"), 0600))

	_, _, err := e.run("bm", "list")
	assert.ErrorIs(t, err, bookmark.ErrCorrupt)
}

func TestBookmarkCmd_ListJSON(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	_, _, err := e.run("bm", "save", "here", e.dir)
	require.NoError(t, err)

	out, _, err := e.run("bm", "list", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "here"`)
	assert.Contains(t, out, `"path": `)
}

// --- menu ---

func TestMenuUICmd_WritesRecord(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	e.app.RunMenu = func(ctx context.Context, opts menu.Options) (menu.Selection, bool, error) {
		assert.NotNil(t, opts.Store)
		return menu.CommandSelection(menu.CmdTree), true, nil
	}
	result := filepath.Join(e.dir, "result.json")

	_, _, err := e.run("menu-ui", "--result-file", result, "--session", "s-1")
	require.NoError(t, err)

	data, err := os.ReadFile(result)
	require.NoError(t, err)
	sel, ok, err := menu.Decode(data, "s-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, menu.CmdTree, sel.Command)
}

func TestMenuUICmd_NoSelection(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	e.app.RunMenu = func(context.Context, menu.Options) (menu.Selection, bool, error) {
		return menu.Selection{}, false, nil
	}
	result := filepath.Join(e.dir, "result.json")

	_, _, err := e.run("menu-ui", "--result-file", result, "--session", "s-1")
	require.ErrorIs(t, err, cli.ErrNoSelection)
	assert.Equal(t, cli.ExitGeneral, cli.MapExitCode(err))
	assert.True(t, cli.Silent(err))
	assert.NoFileExists(t, result)
}

func TestMenuUICmd_RequiresFlags(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	_, _, err := e.run("menu-ui", "--session", "s-1")
	assert.ErrorIs(t, err, cli.ErrUsage)
}

// menuChild registers a fake menu child process that answers with sel.
func menuChild(e *testEnv, sel menu.Selection) {
	e.app.Executable = "/opt/mt/bin/mt"
	e.fc.Register(e.app.Executable, "", nil)
	e.fc.OnRun(e.app.Executable, func(args []string) {
		var resultFile, session string
		for i := 0; i+1 < len(args); i++ {
			switch args[i] {
			case "--result-file":
				resultFile = args[i+1]
			case "--session":
				session = args[i+1]
			}
		}
		f, err := os.Create(resultFile)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		if err := menu.Encode(f, session, sel); err != nil {
			panic(err)
		}
	})
}

func TestFilesMenuCmd_DispatchesCD(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	target := filepath.Join(e.dir, "picked")
	require.NoError(t, os.Mkdir(target, 0755))
	menuChild(e, menu.CDSelection(target))

	_, _, err := e.run("files", "menu")
	require.NoError(t, err)

	require.Len(t, e.fc.Calls, 1)
	assert.Contains(t, e.fc.Calls[0], "/opt/mt/bin/mt --config "+e.cfgPath+" menu-ui --result-file ")
	assert.Equal(t, shell.Cd(target), e.evalScript(t))
}

func TestFilesMenuCmd_DispatchesCommandWithFollowUpPrompt(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	target := filepath.Join(e.dir, "from-menu")
	menuChild(e, menu.CommandSelection(menu.CmdMkcd))
	e.prompter.Inputs = []string{target}

	_, _, err := e.run("files", "menu")
	require.NoError(t, err)

	assert.Equal(t, []string{"Directory name"}, e.prompter.Asked)
	assert.DirExists(t, target)
	assert.Equal(t, shell.Cd(target), e.evalScript(t))
}

func TestFilesMenuCmd_ChildFailure(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	e.app.Executable = "/opt/mt/bin/mt"
	e.fc.Missing["/opt/mt/bin/mt"] = true

	_, _, err := e.run("files", "menu")
	assert.ErrorIs(t, err, errkind.ErrToolMissing)
	assert.Empty(t, e.evalScript(t))
}

// --- shell ---

func TestShellHookCmd(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	e.env["SHELL"] = "/bin/zsh"

	out, _, err := e.run("shell", "hook")
	require.NoError(t, err)
	assert.Contains(t, out, "(zsh)")
	assert.Contains(t, out, "mt() {")
	assert.Contains(t, out, "alias fm='mt files menu'")
	assert.Contains(t, out, "alias fgo='mt bm jump'")
	assert.Contains(t, out, "alias fb='mt files search'")
	assert.NotContains(t, out, "alias fg=")
}

func TestShellHookCmd_Unsupported(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	_, _, err := e.run("shell", "hook", "fish")
	assert.ErrorIs(t, err, shell.ErrUnsupportedShell)
}

func TestShellInstallCmd(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	e.env["SHELL"] = "/usr/local/bin/bash"

	out, _, err := e.run("shell", "install")
	require.NoError(t, err)
	rc := filepath.Join(e.home, ".bashrc")
	assert.Contains(t, out, "hook added to "+rc)
	data, err := os.ReadFile(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `eval "$(mt shell hook bash)"`)

	out, _, err = e.run("shell", "install")
	require.NoError(t, err)
	assert.Contains(t, out, "already installed")
}

// --- setup / doctor / dns ---

func TestSetupCmd_Interactive(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	e.cfgPath = filepath.Join(e.dir, "fresh", "config.toml")
	e.prompter.Selects = []string{"ocean"}
	e.prompter.Inputs = []string{"gw.example.net", "3128"}

	out, _, err := e.run("setup")
	require.NoError(t, err)
	assert.Contains(t, out, "config written")

	data, err := os.ReadFile(e.cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `theme = "ocean"`)
	assert.Contains(t, string(data), `host = "gw.example.net"`)
	assert.Contains(t, string(data), "port = 3128")
	assert.NotContains(t, string(data), "pass")
}

func TestSetupCmd_BadPort(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	e.cfgPath = filepath.Join(e.dir, "fresh", "config.toml")
	e.prompter.Selects = []string{"default"}
	e.prompter.Inputs = []string{"gw.example.net", "99999"}

	_, _, err := e.run("setup")
	assert.ErrorIs(t, err, errkind.ErrValidation)
	assert.NoFileExists(t, e.cfgPath)
}

func TestSetupCmd_ExistingConfig(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	_, _, err := e.run("setup", "--defaults")
	assert.ErrorIs(t, err, cli.ErrConfig)
	assert.Empty(t, e.prompter.Asked)
}

func TestDoctorCmd_JSON(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	e.env["SHELL"] = "/bin/zsh"
	e.fc.DefaultResponse = &testutil.Response{Output: []byte("tool 1.0\n")}

	out, _, err := e.run("doctor", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "config"`)
	assert.Contains(t, out, `"name": "shell_hook"`)
	assert.Contains(t, out, `"status": "WARN"`)
	assert.NotContains(t, out, `"status": "FAIL"`)
}

func TestDoctorCmd_FailureExitsNonZero(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	e.fc.DefaultResponse = &testutil.Response{}
	e.fc.Missing["curl"] = true

	out, _, err := e.run("doctor")
	require.Error(t, err)
	assert.Equal(t, cli.ExitGeneral, cli.MapExitCode(err))
	assert.Contains(t, out, "[FAIL] curl")
	assert.Contains(t, out, "brew install curl")
}

func TestDNSFlushCmd(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	e.fc.DefaultResponse = &testutil.Response{}

	out, _, err := e.run("dns", "flush")
	require.NoError(t, err)
	assert.Equal(t, []string{"sudo dscacheutil -flushcache", "sudo killall -HUP mDNSResponder"}, e.fc.Calls)
	assert.Contains(t, out, "DNS cache flushed")
}

func TestDNSFlushCmd_NotMacOS(t *testing.T) {
	t.Parallel()
	e := newTestEnv(t, "")
	e.fc.Missing["dscacheutil"] = true

	_, _, err := e.run("dns", "flush")
	assert.ErrorIs(t, err, errkind.ErrToolMissing)
	assert.Empty(t, e.fc.Calls)
}
