package digest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/minio/sha256-simd"
	"github.com/workledger/registry-services/constants"
)

// Size is the length in bytes of a ContentDigest.
const Size = sha256.Size

// ErrIO means we could not read all of the content we were asked
// to digest.
var ErrIO = errors.New("cannot read content")

// ContentDigest is the sha256 digest of a work's bytes. Identical bytes
// always produce identical digests, which makes this the dedup key.
type ContentDigest [Size]byte

func (d ContentDigest) Hex() HashString {
	return FromDigest(d)
}

// Digester computes content digests by streaming input through
// sha256 in fixed-size chunks, so memory use does not grow with
// the size of the file.
type Digester struct {
	chunkSize int
}

// NewDigester returns a Digester that reads chunkSize bytes at a time.
// A chunkSize less than one gets the default.
func NewDigester(chunkSize int) *Digester {
	if chunkSize < 1 {
		chunkSize = constants.DefaultChunkSize
	}
	return &Digester{chunkSize: chunkSize}
}

func (d *Digester) ChunkSize() int {
	return d.chunkSize
}

// Digest reads r to EOF and returns its digest. On any read error, or
// if ctx is cancelled before we finish, this returns an error wrapping
// ErrIO and a zero digest. It never returns a partial digest.
func (d *Digester) Digest(ctx context.Context, r io.Reader) (ContentDigest, error) {
	var digest ContentDigest
	if r == nil {
		return digest, fmt.Errorf("%w: no input stream", ErrIO)
	}
	hash := sha256.New()
	buf := make([]byte, d.chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return digest, fmt.Errorf("%w: %w", ErrIO, err)
		}
		n, err := r.Read(buf)
		if n > 0 {
			hash.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return digest, fmt.Errorf("%w: %w", ErrIO, err)
		}
	}
	copy(digest[:], hash.Sum(nil))
	return digest, nil
}

// DigestFile opens the file at path and returns its digest.
func (d *Digester) DigestFile(ctx context.Context, path string) (ContentDigest, error) {
	f, err := os.Open(path)
	if err != nil {
		return ContentDigest{}, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()
	return d.Digest(ctx, f)
}
