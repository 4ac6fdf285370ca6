package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDisk_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	disk := NewLocalDisk(t.TempDir(), "/storage/")

	require.NoError(t, disk.Put(ctx, "images/img1.jpg", []byte("jpeg")))

	ok, err := disk.Exists(ctx, "images/img1.jpg")
	require.NoError(t, err)
	assert.True(t, ok)

	data, err := disk.Get(ctx, "images/img1.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg"), data)

	require.NoError(t, disk.Delete(ctx, "images/img1.jpg"))
	require.NoError(t, disk.Delete(ctx, "images/img1.jpg"))

	_, err = disk.Get(ctx, "images/img1.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalDisk_StaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	disk := NewLocalDisk(filepath.Join(root, "public"), "/storage")

	require.NoError(t, disk.Put(context.Background(), "../../escape.txt", []byte("x")))

	_, err := os.Stat(filepath.Join(root, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "public", "escape.txt"))
	assert.NoError(t, err)
}

func TestLocalDisk_URLAndHandler(t *testing.T) {
	disk := NewLocalDisk(t.TempDir(), "/storage/")
	require.NoError(t, disk.Put(context.Background(), "images/img2.jpg", []byte("dosa")))

	assert.Equal(t, "/storage/images/img2.jpg", disk.URL("/images/img2.jpg"))

	h := http.StripPrefix("/storage", disk.Handler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/images/img2.jpg", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dosa", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/storage/images/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestManager(t *testing.T) {
	ctx := context.Background()
	local := NewLocalDisk(t.TempDir(), "/storage")
	mirror := NewLocalDisk(t.TempDir(), "https://cdn.example.com")

	m := NewManager("mirror")
	m.Register("local", local)

	assert.Equal(t, "/storage/images/img3.jpg", m.URL("images/img3.jpg"), "falls back to local")

	m.Register("mirror", mirror)
	assert.Equal(t, "https://cdn.example.com/images/img3.jpg", m.URL("images/img3.jpg"))

	_, err := m.Use("s3")
	assert.Error(t, err)

	require.NoError(t, local.Put(ctx, "images/img3.jpg", []byte("chole")))

	copied, err := m.Copy(ctx, "local", "mirror", "images/img3.jpg")
	require.NoError(t, err)
	assert.True(t, copied)

	copied, err = m.Copy(ctx, "local", "mirror", "images/img3.jpg")
	require.NoError(t, err)
	assert.False(t, copied)

	_, err = m.Copy(ctx, "local", "mirror", "images/missing.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_Publish(t *testing.T) {
	ctx := context.Background()
	local := NewLocalDisk(t.TempDir(), "/storage")
	mirror := NewLocalDisk(t.TempDir(), "https://cdn.example.com")

	m := NewManager("local")
	m.Register("local", local)
	m.Register("mirror", mirror)

	paths := []string{"images/img1.jpg", "images/img2.jpg", "images/img3.jpg"}
	for _, p := range paths {
		require.NoError(t, local.Put(ctx, p, []byte(p)))
	}
	require.NoError(t, mirror.Put(ctx, "images/img2.jpg", []byte("already there")))

	results, err := m.Publish(ctx, "local", "mirror", paths, 2)
	require.NoError(t, err)
	assert.Equal(t, []CopyResult{
		{Path: "images/img1.jpg", Copied: true},
		{Path: "images/img2.jpg", Copied: false},
		{Path: "images/img3.jpg", Copied: true},
	}, results)

	data, err := mirror.Get(ctx, "images/img3.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("images/img3.jpg"), data)

	_, err = m.Publish(ctx, "local", "mirror", []string{"images/missing.jpg", "images/img1.jpg"}, 2)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Publish(ctx, "local", "s3", paths, 2)
	assert.Error(t, err)
}

func TestNewS3Disk_RequiresBucket(t *testing.T) {
	_, err := NewS3Disk(context.Background(), S3Config{})
	assert.Error(t, err)
}

func TestNewS3Disk_DefaultURL(t *testing.T) {
	d, err := NewS3Disk(context.Background(), S3Config{Bucket: "menu", Region: "ap-south-1", Key: "k", Secret: "s"})
	require.NoError(t, err)
	assert.Equal(t, "https://menu.s3.ap-south-1.amazonaws.com/images/img1.jpg", d.URL("images/img1.jpg"))
}
