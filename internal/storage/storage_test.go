package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalPutAndDelete(t *testing.T) {
	dir := t.TempDir()
	l := NewLocal(dir, "/uploads/")
	ctx := context.Background()

	res, err := l.Put(ctx, strings.NewReader("glb-bytes"), PutInput{Filename: "Model.GLB"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Key, "model-"))
	assert.True(t, strings.HasSuffix(res.Key, ".glb"))
	assert.Equal(t, "uploads/"+res.Key, res.URL)

	b, err := os.ReadFile(filepath.Join(dir, res.Key))
	require.NoError(t, err)
	assert.Equal(t, "glb-bytes", string(b))

	require.NoError(t, l.Delete(ctx, res.URL))
	_, err = os.Stat(filepath.Join(dir, res.Key))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, l.Delete(ctx, res.Key))
}

func TestLocalRejectsUnknownTypes(t *testing.T) {
	l := NewLocal(t.TempDir(), "uploads")
	_, err := l.Put(context.Background(), strings.NewReader("x"), PutInput{Filename: "run.sh"})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	res, err := Open(ctx, Config{LocalDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "local", res.Driver)
	assert.Equal(t, dir, res.LocalDir)

	_, err = Open(ctx, Config{Driver: "ftp"})
	assert.ErrorContains(t, err, "ftp")

	_, err = Open(ctx, Config{Driver: "s3", S3Bucket: "media"})
	assert.ErrorContains(t, err, "S3_REGION")
}
