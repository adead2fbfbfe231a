package fileops_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mrtamaki/mt/internal/errkind"
	"github.com/mrtamaki/mt/internal/fileops"
	"github.com/mrtamaki/mt/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditor(cmd *testutil.FakeCommander, editor string) *fileops.RCEditor {
	return &fileops.RCEditor{Commander: cmd, Editor: editor, Now: func() time.Time { return fixedNow }}
}

func TestEdit_ChangedFile(t *testing.T) {
	t.Parallel()
	root := testutil.TempTree(t, map[string]string{".zshrc": "export A=1\n"})
	rc := filepath.Join(root, ".zshrc")

	cmd := testutil.NewFakeCommander()
	cmd.OnRun("code -w", func(args []string) {
		require.Equal(t, rc, args[len(args)-1])
		require.NoError(t, os.WriteFile(rc, []byte("export A=2\n"), 0o644))
	})
	cmd.Register("code -w", "", nil)

	res, err := newEditor(cmd, "code -w").Edit(context.Background(), rc)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, rc+".20240309_140507.bak", res.Backup)

	data, err := os.ReadFile(res.Backup)
	require.NoError(t, err)
	assert.Equal(t, "export A=1\n", string(data))
	assert.Equal(t, []string{"code -w " + rc}, cmd.Calls)
}

func TestEdit_UnchangedFile(t *testing.T) {
	t.Parallel()
	root := testutil.TempTree(t, map[string]string{".zshrc": "export A=1\n"})
	rc := filepath.Join(root, ".zshrc")

	cmd := testutil.NewFakeCommander()
	cmd.Register("vim", "", nil)

	res, err := newEditor(cmd, "vim").Edit(context.Background(), rc)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.FileExists(t, res.Backup)
}

func TestEdit_Errors(t *testing.T) {
	t.Parallel()

	newRC := func(t *testing.T) string {
		root := testutil.TempTree(t, map[string]string{".zshrc": "x"})
		return filepath.Join(root, ".zshrc")
	}

	t.Run("no editor", func(t *testing.T) {
		_, err := newEditor(testutil.NewFakeCommander(), "").Edit(context.Background(), newRC(t))
		assert.ErrorIs(t, err, errkind.ErrValidation)
	})

	t.Run("missing rc", func(t *testing.T) {
		rc := filepath.Join(t.TempDir(), ".zshrc")
		_, err := newEditor(testutil.NewFakeCommander(), "vim").Edit(context.Background(), rc)
		assert.ErrorIs(t, err, errkind.ErrNotFound)
	})

	t.Run("editor missing", func(t *testing.T) {
		cmd := testutil.NewFakeCommander()
		cmd.Missing["nano"] = true
		_, err := newEditor(cmd, "nano").Edit(context.Background(), newRC(t))
		assert.ErrorIs(t, err, errkind.ErrToolMissing)
	})

	t.Run("editor fails", func(t *testing.T) {
		cmd := testutil.NewFakeCommander()
		cmd.Register("vim", "", errors.New("exit status 1"))
		res, err := newEditor(cmd, "vim").Edit(context.Background(), newRC(t))
		require.Error(t, err)
		assert.FileExists(t, res.Backup)
	})
}
