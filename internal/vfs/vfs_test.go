package vfs

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniffAndName(t *testing.T) {
	assert.Equal(t, Gzip, Sniff([]byte{0x1f, 0x8b, 8, 0}))
	assert.Equal(t, Zstd, Sniff([]byte{0x28, 0xb5, 0x2f, 0xfd}))
	assert.Equal(t, None, Sniff([]byte("GIF89a")))
	assert.Equal(t, None, Sniff(nil))

	assert.Equal(t, Gzip, FromName("a/b.LCP.GZ"))
	assert.Equal(t, Zstd, FromName("b.lcp.zst"))
	assert.Equal(t, None, FromName("b.lcp"))
	assert.Equal(t, "dir/x.lcp", StripCompressionExt("dir/x.lcp.gz"))
	assert.Equal(t, "dir/x.lcp", StripCompressionExt("dir/x.lcp"))
}

func TestCreateOpenRoundTrip(t *testing.T) {
	payload := []byte("0123456789abcdefghijklmnopqrstuvwxyz")
	for _, name := range []string{"plain.bin", "packed.bin.gz", "packed.bin.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			w, err := Create(path)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			f, err := Open(path)
			require.NoError(t, err)
			defer f.Close()

			assert.Equal(t, FromName(name), f.Compression())
			assert.Equal(t, int64(len(payload)), f.Size())
			assert.Equal(t, path, f.Name())

			buf := make([]byte, 5)
			_, err = f.ReadAt(buf, 10)
			require.NoError(t, err)
			assert.Equal(t, "abcde", string(buf))

			_, err = f.Seek(30, io.SeekStart)
			require.NoError(t, err)
			rest, err := io.ReadAll(f)
			require.NoError(t, err)
			assert.Equal(t, "uvwxyz", string(rest))
		})
	}
}

func TestOpenSniffsRegardlessOfName(t *testing.T) {
	dir := t.TempDir()
	gzPath := filepath.Join(dir, "x.gz")
	w, err := Create(gzPath)
	require.NoError(t, err)
	_, err = w.Write([]byte("hidden"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	renamed := filepath.Join(dir, "x.lcp")
	require.NoError(t, os.Rename(gzPath, renamed))

	f, err := Open(renamed)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, Gzip, f.Compression())
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hidden", string(data))
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestOpenCorruptGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gz")
	require.NoError(t, os.WriteFile(path, []byte{0x1f, 0x8b, 0, 0, 0}, 0o644))
	_, err := Open(path)
	assert.Error(t, err)
}

func TestMemFileDoubleClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.zst")
	w, err := Create(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("z"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	f, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.ErrorIs(t, f.Close(), os.ErrClosed)
}
