package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/services/shared/config"
)

func TestFileStore_SaveCreatesDirAndOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Product_Catalog")
	store := NewFileStore(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "1_1700000000.png", []byte("first")))
	require.NoError(t, store.Save(ctx, "1_1700000000.png", []byte("second")))

	data, err := os.ReadFile(filepath.Join(dir, "1_1700000000.png"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestFileStore_StripsDirectories(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)

	require.NoError(t, store.Save(context.Background(), "../../escape.png", []byte("x")))
	_, err := os.Stat(filepath.Join(dir, "escape.png"))
	assert.NoError(t, err)
}

func TestS3Store_PutsObject(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path = r.Method, r.URL.Path
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := NewS3Store(context.Background(), config.S3Config{
		Bucket:    "catalog",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), "7_1700000000.jpg", []byte("jpeg-bytes")))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/catalog/7_1700000000.jpg", path)
}

func TestNew(t *testing.T) {
	var cfg config.Config
	cfg.LoadDefaults("svc", "1")

	store, err := New(context.Background(), &cfg)
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	cfg.Images.Backend = "s3"
	_, err = New(context.Background(), &cfg)
	assert.Error(t, err, "bucket is required")
}
