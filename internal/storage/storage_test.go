package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageLifecycle(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(Config{BasePath: t.TempDir(), BaseURL: "/api/v1/files/"})
	require.NoError(t, err)

	key := ObjectKey(BucketAvatars, "u1", "avatar.png")
	url, err := s.Save(ctx, key, strings.NewReader("png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/files/avatars/u1/avatar.png", url)

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "png-bytes", string(body))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key), "deleting twice is fine")

	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(Config{BasePath: t.TempDir()})
	require.NoError(t, err)

	for _, key := range []string{"../etc/passwd", "/abs/path", "", "a/../../b"} {
		_, err := s.Save(ctx, key, strings.NewReader("x"), "text/plain")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestCloudinaryKeyMapping(t *testing.T) {
	assert.Equal(t, "image", cloudinaryResourceType("avatars/u1/a.PNG"))
	assert.Equal(t, "raw", cloudinaryResourceType("certificates/u1/c.pdf"))
	assert.Equal(t, "avatars/u1/a", cloudinaryPublicID("avatars/u1/a.png", "image"))
	assert.Equal(t, "certificates/u1/c.pdf", cloudinaryPublicID("certificates/u1/c.pdf", "raw"))
}

func TestNewStorageUnknownType(t *testing.T) {
	_, err := NewStorage(Config{Type: "ftp"})
	assert.Error(t, err)
}
