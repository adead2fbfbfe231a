package venv_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mrtamaki/mt/internal/cmdexec"
	"github.com/mrtamaki/mt/internal/errkind"
	"github.com/mrtamaki/mt/internal/spin"
	"github.com/mrtamaki/mt/internal/testutil"
	"github.com/mrtamaki/mt/internal/venv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVenvCreation은 python3 -m venv 호출 시 인터프리터 파일을 만들도록 등록한다.
func fakeVenvCreation(t *testing.T, fc *testutil.FakeCommander) {
	t.Helper()
	fc.Register("/usr/bin/python3 -m venv", "", nil)
	fc.OnRun("/usr/bin/python3 -m venv", func(args []string) {
		dir := args[len(args)-1]
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "bin"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bin", "python"), []byte("#!/bin/sh\n"), 0755))
	})
}

func newBootstrapper(t *testing.T, fc *testutil.FakeCommander) *venv.Bootstrapper {
	t.Helper()
	return venv.New(filepath.Join(t.TempDir(), "envs"), "python3", fc)
}

func TestParseFeature(t *testing.T) {
	t.Parallel()

	f, err := venv.ParseFeature("files")
	require.NoError(t, err)
	assert.Equal(t, venv.FeatureFiles, f)

	f, err = venv.ParseFeature(" Proxy ")
	require.NoError(t, err)
	assert.Equal(t, venv.FeatureProxy, f)

	_, err = venv.ParseFeature("videos")
	assert.ErrorIs(t, err, venv.ErrUnknownFeature)
	assert.ErrorIs(t, err, errkind.ErrValidation)
}

func TestFeature_PackagesIsCopy(t *testing.T) {
	t.Parallel()

	pkgs := venv.FeatureFiles.Packages()
	assert.Equal(t, []string{"rich", "readchar"}, pkgs)
	pkgs[0] = "mutated"
	assert.Equal(t, "rich", venv.FeatureFiles.Packages()[0])
	assert.Nil(t, venv.Feature(99).Packages())
	assert.Equal(t, "Feature(99)", venv.Feature(99).String())
}

func TestEnsure_CreatesInstallsAndCaches(t *testing.T) {
	t.Parallel()

	fc := testutil.NewFakeCommander()
	fakeVenvCreation(t, fc)
	b := newBootstrapper(t, fc)
	interp := b.Interpreter(venv.FeatureFiles)
	fc.Register(interp+" -m pip install", "Successfully installed rich readchar\n", nil)

	got, err := b.Ensure(context.Background(), venv.FeatureFiles)
	require.NoError(t, err)
	assert.Equal(t, interp, got)
	assert.FileExists(t, got)

	require.Equal(t, 1, fc.CallCount(interp+" -m pip install"))
	var installCall string
	for _, c := range fc.Calls {
		if strings.HasPrefix(c, interp+" -m pip install") {
			installCall = c
		}
	}
	assert.Equal(t, interp+" -m pip install rich readchar", installCall)
	require.Len(t, fc.EnvCalls, 1)
	assert.Equal(t, "1", fc.EnvCalls[0]["PIP_DISABLE_PIP_VERSION_CHECK"])

	again, err := b.Ensure(context.Background(), venv.FeatureFiles)
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, 1, fc.CallCount("/usr/bin/python3 -m venv"))
	assert.Equal(t, 1, fc.CallCount(interp+" -m pip install"))
}

func TestEnsure_ExistingReadyEnvAcrossInstances(t *testing.T) {
	t.Parallel()

	fc := testutil.NewFakeCommander()
	fakeVenvCreation(t, fc)
	root := filepath.Join(t.TempDir(), "envs")
	first := venv.New(root, "python3", fc)
	fc.Register(first.Interpreter(venv.FeatureLookup)+" -m pip install", "", nil)

	_, err := first.Ensure(context.Background(), venv.FeatureLookup)
	require.NoError(t, err)
	calls := len(fc.Calls)

	second := venv.New(root, "python3", fc)
	p, err := second.Ensure(context.Background(), venv.FeatureLookup)
	require.NoError(t, err)
	assert.Equal(t, first.Interpreter(venv.FeatureLookup), p)
	assert.Len(t, fc.Calls, calls, "ready environment must not run anything")
}

func TestEnsure_UnknownFeature(t *testing.T) {
	t.Parallel()

	fc := testutil.NewFakeCommander()
	b := newBootstrapper(t, fc)

	_, err := b.Ensure(context.Background(), venv.Feature(42))
	assert.ErrorIs(t, err, venv.ErrUnknownFeature)
	assert.Empty(t, fc.Calls)
}

func TestEnsure_PythonMissing(t *testing.T) {
	t.Parallel()

	fc := testutil.NewFakeCommander()
	fc.Missing["python3"] = true
	b := newBootstrapper(t, fc)

	_, err := b.Ensure(context.Background(), venv.FeatureFiles)
	assert.ErrorIs(t, err, cmdexec.ErrToolMissing)
}

func TestEnsure_InterpreterMissingAfterCreate(t *testing.T) {
	t.Parallel()

	fc := testutil.NewFakeCommander()
	fc.Register("/usr/bin/python3 -m venv", "", nil) // 파일을 만들지 않는다
	b := newBootstrapper(t, fc)

	_, err := b.Ensure(context.Background(), venv.FeatureFiles)
	assert.ErrorIs(t, err, venv.ErrInterpreterMissing)
	assert.False(t, fc.Called(b.Interpreter(venv.FeatureFiles)))
}

func TestEnsure_InstallFailureRemovesEnv(t *testing.T) {
	t.Parallel()

	fc := testutil.NewFakeCommander()
	fakeVenvCreation(t, fc)
	b := newBootstrapper(t, fc)
	interp := b.Interpreter(venv.FeatureProxy)
	fc.Register(interp+" -m pip install", "ERROR: Could not find a version that satisfies PySocks\n", errors.New("exit status 1"))

	_, err := b.Ensure(context.Background(), venv.FeatureProxy)
	require.Error(t, err)
	assert.ErrorIs(t, err, venv.ErrBootstrapFailed)
	assert.ErrorIs(t, err, errkind.ErrBootstrap)
	assert.Contains(t, err.Error(), "Could not find a version")
	assert.NoDirExists(t, b.Dir(venv.FeatureProxy))

	// 다음 호출은 처음부터 다시 시도한다.
	fc.Register(interp+" -m pip install", "", nil)
	_, err = b.Ensure(context.Background(), venv.FeatureProxy)
	require.NoError(t, err)
	assert.Equal(t, 2, fc.CallCount("/usr/bin/python3 -m venv"))
}

func TestEnsure_CreateFailure(t *testing.T) {
	t.Parallel()

	fc := testutil.NewFakeCommander()
	fc.Register("/usr/bin/python3 -m venv", "Error: ensurepip not available", errors.New("exit status 1"))
	b := newBootstrapper(t, fc)

	_, err := b.Ensure(context.Background(), venv.FeatureFiles)
	assert.ErrorIs(t, err, venv.ErrBootstrapFailed)
	assert.Contains(t, err.Error(), "ensurepip")
}

func TestEnsure_IncompleteEnvIsRecreated(t *testing.T) {
	t.Parallel()

	fc := testutil.NewFakeCommander()
	fakeVenvCreation(t, fc)
	b := newBootstrapper(t, fc)
	stray := filepath.Join(b.Dir(venv.FeatureFiles), "stray.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(stray), 0755))
	require.NoError(t, os.WriteFile(stray, []byte("x"), 0600))
	fc.Register(b.Interpreter(venv.FeatureFiles)+" -m pip install", "", nil)

	_, err := b.Ensure(context.Background(), venv.FeatureFiles)
	require.NoError(t, err)
	assert.NoFileExists(t, stray)
}

type timeoutWaiter struct{}

func (timeoutWaiter) Wait(string, func() error) error { return spin.ErrTimeout }

func TestEnsure_WaiterTimeoutKeepsEnvUnready(t *testing.T) {
	t.Parallel()

	fc := testutil.NewFakeCommander()
	fakeVenvCreation(t, fc)
	b := newBootstrapper(t, fc)
	b.Waiter = timeoutWaiter{}

	_, err := b.Ensure(context.Background(), venv.FeatureFiles)
	assert.ErrorIs(t, err, spin.ErrTimeout)
	assert.ErrorIs(t, err, venv.ErrBootstrapFailed)

	st := b.Status()
	assert.True(t, st[0].Exists)
	assert.False(t, st[0].Ready)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	fc := testutil.NewFakeCommander()
	fakeVenvCreation(t, fc)
	b := newBootstrapper(t, fc)
	fc.Register(b.Interpreter(venv.FeatureLookup)+" -m pip install", "", nil)
	_, err := b.Ensure(context.Background(), venv.FeatureLookup)
	require.NoError(t, err)

	st := b.Status()
	require.Len(t, st, 3)
	assert.Equal(t, venv.FeatureFiles, st[0].Feature)
	assert.False(t, st[0].Exists)
	assert.True(t, st[1].Exists)
	assert.True(t, st[1].Ready)
}

func TestPurge(t *testing.T) {
	t.Parallel()

	fc := testutil.NewFakeCommander()
	fakeVenvCreation(t, fc)
	b := newBootstrapper(t, fc)
	interp := b.Interpreter(venv.FeatureProxy)
	fc.Register(interp+" -m pip install", "", nil)
	_, err := b.Ensure(context.Background(), venv.FeatureProxy)
	require.NoError(t, err)

	fc.Register(interp+" -m pip freeze", "PySocks==1.7.1\nrequests==2.31.0\npip==24.0\nrich[jupyter]==13.7.0\nwheel==0.42.0\nmylib @ file:///tmp/mylib\n", nil)
	fc.Register(interp+" -m pip uninstall", "", nil)

	removed, err := b.Purge(context.Background(), venv.FeatureProxy)
	require.NoError(t, err)
	assert.Equal(t, []string{"PySocks", "mylib", "requests", "rich"}, removed)
	assert.True(t, fc.Called(interp+" -m pip uninstall -y PySocks mylib requests rich"))
	// install, freeze, uninstall 모두 같은 pip 환경으로 실행된다.
	require.Len(t, fc.EnvCalls, 3)
	for _, env := range fc.EnvCalls {
		assert.Equal(t, map[string]string{"PIP_DISABLE_PIP_VERSION_CHECK": "1"}, env)
	}
	assert.False(t, b.Status()[2].Ready, "purged env must be reinstalled on next Ensure")

	_, err = b.Ensure(context.Background(), venv.FeatureProxy)
	require.NoError(t, err)
	assert.Equal(t, 2, fc.CallCount(interp+" -m pip install"))
	assert.Equal(t, 1, fc.CallCount("/usr/bin/python3 -m venv"))
}

func TestPurge_NotCreated(t *testing.T) {
	t.Parallel()

	b := newBootstrapper(t, testutil.NewFakeCommander())
	_, err := b.Purge(context.Background(), venv.FeatureFiles)
	assert.ErrorIs(t, err, venv.ErrNotCreated)
}

func TestDelete(t *testing.T) {
	t.Parallel()

	fc := testutil.NewFakeCommander()
	fakeVenvCreation(t, fc)
	b := newBootstrapper(t, fc)
	fc.Register(b.Interpreter(venv.FeatureFiles)+" -m pip install", "", nil)
	_, err := b.Ensure(context.Background(), venv.FeatureFiles)
	require.NoError(t, err)

	deleted, err := b.Delete(venv.FeatureFiles)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoDirExists(t, b.Dir(venv.FeatureFiles))

	deleted, err = b.Delete(venv.FeatureFiles)
	require.NoError(t, err)
	assert.False(t, deleted)
}
