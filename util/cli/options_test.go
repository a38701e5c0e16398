package cli_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workledger/registry-services/util/cli"
)

func TestParseRegisterOptions(t *testing.T) {
	opts, _, err := cli.ParseRegisterOptions([]string{"-f", "sunset.png", "--title", "Sunset Painting", "--type", "image", "-m", "Original artwork"})
	require.Nil(t, err)
	assert.Equal(t, "sunset.png", opts.File)
	assert.Equal(t, "Sunset Painting", opts.Title)
	assert.Equal(t, "image", opts.WorkType)
	assert.Equal(t, "Original artwork", opts.Metadata)

	_, _, err = cli.ParseRegisterOptions([]string{"-f", "sunset.png"})
	assert.NotNil(t, err)

	opts, _, err = cli.ParseRegisterOptions([]string{"--help"})
	require.Nil(t, err)
	assert.True(t, opts.PrintHelp)
}

func TestParseVerifyOptions(t *testing.T) {
	opts, _, err := cli.ParseVerifyOptions([]string{"--id", "WORK-1A2B3C4D", "--hash", "0xABC"})
	require.Nil(t, err)
	assert.Equal(t, "WORK-1A2B3C4D", opts.WorkID)
	assert.Equal(t, "0xABC", opts.Hash)
	assert.Empty(t, opts.File)

	_, _, err = cli.ParseVerifyOptions([]string{"--bogus"})
	assert.NotNil(t, err)
}

func TestParseListOptions(t *testing.T) {
	opts, _, err := cli.ParseListOptions([]string{"-c", "0xabc"})
	require.Nil(t, err)
	assert.Equal(t, "0xabc", opts.Creator)
}

func TestParseWorkerOptions(t *testing.T) {
	opts, _, err := cli.ParseWorkerOptions("work_registrar", nil)
	require.Nil(t, err)
	assert.Equal(t, 3, opts.NumWorkers)
	assert.Equal(t, 1, opts.MaxAttempts)
	assert.Equal(t, time.Minute, opts.RequeueTimeout)

	opts, _, err = cli.ParseWorkerOptions("work_registrar", []string{"--workers", "8", "--requeue-timeout", "3m30s", "--pid-file", "/tmp/r.pid"})
	require.Nil(t, err)
	assert.Equal(t, 8, opts.NumWorkers)
	assert.Equal(t, 210*time.Second, opts.RequeueTimeout)
	assert.Equal(t, "/tmp/r.pid", opts.PidFile)

	_, _, err = cli.ParseWorkerOptions("work_registrar", []string{"--workers", "0"})
	assert.NotNil(t, err)
}

func TestPrintUsage(t *testing.T) {
	_, flags, _ := cli.ParseListOptions(nil)
	buf := &bytes.Buffer{}
	cli.PrintUsage(buf, "Lists works.", flags)
	assert.Contains(t, buf.String(), "Lists works.")
	assert.Contains(t, buf.String(), "--creator")
	assert.Contains(t, buf.String(), "WR_CONFIG_DIR")
}
