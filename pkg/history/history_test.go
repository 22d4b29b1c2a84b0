package history

import (
	"os"
	"path/filepath"
	"testing"

	"bedownloader/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	urls := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.NotNil(t, urls)
	assert.Empty(t, urls)
}

func TestLoadAcceptsCRLFAndLF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")
	content := "https://www.behance.net/gallery/1/a\r\n\r\n  https://www.behance.net/gallery/2/b  \nhttps://www.behance.net/gallery/3/c"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	assert.Equal(t, []string{
		"https://www.behance.net/gallery/1/a",
		"https://www.behance.net/gallery/2/b",
		"https://www.behance.net/gallery/3/c",
	}, Load(path))
}

func TestAppendIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings", "history.txt")

	require.NoError(t, Append(path, "https://www.behance.net/gallery/1/a"))
	require.NoError(t, Append(path, "https://www.behance.net/gallery/2/b"))
	require.NoError(t, Append(path, "https://www.behance.net/gallery/1/a"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "https://www.behance.net/gallery/1/a\nhttps://www.behance.net/gallery/2/b\n", string(data))

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestAppendKeepsExternalEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")
	require.NoError(t, Append(path, "https://www.behance.net/gallery/1/a"))

	// another process adds a line between our reads
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("https://www.behance.net/gallery/9/z\r\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, Append(path, "https://www.behance.net/gallery/2/b"))
	assert.Equal(t, []string{
		"https://www.behance.net/gallery/1/a",
		"https://www.behance.net/gallery/9/z",
		"https://www.behance.net/gallery/2/b",
	}, Load(path))
}

func TestStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")
	store := NewStore(path, logger.NewNopLogger())

	assert.Empty(t, store.Load())
	require.NoError(t, store.Append("https://www.behance.net/gallery/1/a"))
	assert.Equal(t, []string{"https://www.behance.net/gallery/1/a"}, store.Load())

	require.NoError(t, store.Clear())
	assert.Empty(t, store.Load())
	assert.Equal(t, path, store.Path())
}
