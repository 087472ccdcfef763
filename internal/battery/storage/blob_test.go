package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataURL(t *testing.T) {
	url := EncodeDataURL("image/png", []byte{1, 2, 3})
	assert.Equal(t, "data:image/png;base64,AQID", url)

	ct, data, err := DecodeDataURL(url)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, []byte{1, 2, 3}, data)

	for _, bad := range []string{"", "http://x/a.png", "data:image/png,AQID", "data:image/png;base64,@@"} {
		_, _, err := DecodeDataURL(bad)
		assert.ErrorIs(t, err, ErrInvalidDataURL, bad)
	}
}

func TestObjectName(t *testing.T) {
	name := ObjectName("../../etc/photo.jpg", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(name, "2024/02/"))
	assert.True(t, strings.HasSuffix(name, "_photo.jpg"))
}

func TestLocalBlobStore(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalBlobStore(dir, "/uploads/")

	url, err := store.Put(context.Background(), "a.png", "image/png", []byte("png"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/uploads/"))

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(url, "/uploads/"))))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}
