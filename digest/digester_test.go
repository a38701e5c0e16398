package digest_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/workledger/registry-services/digest"
)

type brokenReader struct {
	sent bool
}

func (r *brokenReader) Read(p []byte) (int, error) {
	if !r.sent {
		r.sent = true
		return copy(p, []byte("partial")), nil
	}
	return 0, errors.New("disk on fire")
}

func TestDigestHello(t *testing.T) {
	d := digest.NewDigester(0)
	assert.Equal(t, 4096, d.ChunkSize())
	result, err := d.Digest(context.Background(), bytes.NewReader([]byte("hello")))
	require.Nil(t, err)
	assert.Equal(t, digest.HashString(helloHash), result.Hex())
}

func TestDigestIndependentOfChunkSize(t *testing.T) {
	data := bytes.Repeat([]byte("The quick brown fox jumps over the lazy dog. "), 5000)
	expected, err := digest.NewDigester(4096).Digest(context.Background(), bytes.NewReader(data))
	require.Nil(t, err)
	for _, size := range []int{1, 7, 64, 1000, 4095, 65536, len(data) + 1} {
		actual, err := digest.NewDigester(size).Digest(context.Background(), bytes.NewReader(data))
		require.Nil(t, err)
		assert.Equal(t, expected, actual, "chunk size %d", size)
	}
}

func TestDigestEmptyInput(t *testing.T) {
	result, err := digest.NewDigester(16).Digest(context.Background(), bytes.NewReader(nil))
	require.Nil(t, err)
	assert.Equal(t, digest.HashString("e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"), result.Hex())
}

func TestDigestReadFailure(t *testing.T) {
	result, err := digest.NewDigester(16).Digest(context.Background(), &brokenReader{})
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, digest.ErrIO))
	assert.Contains(t, err.Error(), "disk on fire")
	assert.Equal(t, digest.ContentDigest{}, result)
}

func TestDigestNilReader(t *testing.T) {
	_, err := digest.NewDigester(16).Digest(context.Background(), nil)
	assert.True(t, errors.Is(err, digest.ErrIO))
}

func TestDigestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := digest.NewDigester(16).Digest(ctx, io.LimitReader(bytes.NewReader(make([]byte, 1024)), 1024))
	require.NotNil(t, err)
	assert.True(t, errors.Is(err, digest.ErrIO))
	assert.Equal(t, digest.ContentDigest{}, result)
}

func TestDigestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	require.Nil(t, os.WriteFile(path, []byte("hello"), 0644))
	result, err := digest.NewDigester(2).DigestFile(context.Background(), path)
	require.Nil(t, err)
	assert.Equal(t, digest.HashString(helloHash), result.Hex())

	_, err = digest.NewDigester(2).DigestFile(context.Background(), path+".missing")
	assert.True(t, errors.Is(err, digest.ErrIO))
}
