package util_test

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workledger/registry-services/util"
)

func TestPidFileAcquireRelease(t *testing.T) {
	pidFile := util.NewPidFile(filepath.Join(t.TempDir(), "registrar.pid"))
	assert.Equal(t, 0, pidFile.Read())
	assert.False(t, pidFile.HeldByOtherProcess())

	require.Nil(t, pidFile.Acquire())
	assert.Equal(t, os.Getpid(), pidFile.Read())
	assert.False(t, pidFile.HeldByOtherProcess())

	// Acquiring again from the same process is fine.
	require.Nil(t, pidFile.Acquire())

	require.Nil(t, pidFile.Release())
	assert.False(t, util.FileExists(pidFile.Path))
}

func TestPidFileHeldByParent(t *testing.T) {
	pidFile := util.NewPidFile(filepath.Join(t.TempDir(), "registrar.pid"))
	require.Nil(t, os.WriteFile(pidFile.Path, []byte(strconv.Itoa(os.Getppid())), 0664))
	assert.True(t, pidFile.HeldByOtherProcess())
	assert.NotNil(t, pidFile.Acquire())
	assert.NotNil(t, pidFile.Release())
}

func TestPidFileGarbage(t *testing.T) {
	pidFile := util.NewPidFile(filepath.Join(t.TempDir(), "registrar.pid"))
	require.Nil(t, os.WriteFile(pidFile.Path, []byte("not a pid"), 0664))
	assert.Equal(t, 0, pidFile.Read())
	assert.False(t, pidFile.HeldByOtherProcess())
}

func TestProcessIsRunning(t *testing.T) {
	assert.True(t, util.ProcessIsRunning(os.Getpid()))
}
