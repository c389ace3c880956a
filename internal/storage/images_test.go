package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"cinema-api/pkg/apierror"
)

func pngBytes(t *testing.T, width int, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageStore_SaveScalesAndStoresJPEG(t *testing.T) {
	t.Parallel()

	store, err := NewImageStore(t.TempDir(), 1<<20, 64)
	require.NoError(t, err)

	url, err := store.Save(context.Background(), bytes.NewReader(pngBytes(t, 200, 100)))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, URLPrefix))
	require.True(t, strings.HasSuffix(url, ".jpg"))

	stored, err := os.Open(filepath.Join(store.RootAbs(), strings.TrimPrefix(url, URLPrefix)))
	require.NoError(t, err)
	defer stored.Close()

	cfg, err := jpeg.DecodeConfig(stored)
	require.NoError(t, err)
	require.Equal(t, 64, cfg.Width)
	require.Equal(t, 32, cfg.Height)
}

func TestImageStore_SmallImagesKeepTheirSize(t *testing.T) {
	t.Parallel()

	store, err := NewImageStore(t.TempDir(), 1<<20, 800)
	require.NoError(t, err)

	url, err := store.Save(context.Background(), bytes.NewReader(pngBytes(t, 40, 30)))
	require.NoError(t, err)

	stored, err := os.Open(filepath.Join(store.RootAbs(), strings.TrimPrefix(url, URLPrefix)))
	require.NoError(t, err)
	defer stored.Close()

	cfg, err := jpeg.DecodeConfig(stored)
	require.NoError(t, err)
	require.Equal(t, 40, cfg.Width)
}

func TestImageStore_RejectsNonImages(t *testing.T) {
	t.Parallel()

	store, err := NewImageStore(t.TempDir(), 1<<20, 64)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), strings.NewReader("<html>not an image</html>"))
	var apiErr *apierror.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "INVALID_IMAGE", apiErr.Code)

	entries, err := os.ReadDir(store.RootAbs())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestImageStore_RejectsOversizedUploads(t *testing.T) {
	t.Parallel()

	data := pngBytes(t, 50, 50)
	store, err := NewImageStore(t.TempDir(), int64(len(data)-1), 64)
	require.NoError(t, err)

	_, err = store.Save(context.Background(), bytes.NewReader(data))
	var apiErr *apierror.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusRequestEntityTooLarge, apiErr.HTTPStatus)
}

func TestImageStore_RemoveAndServe(t *testing.T) {
	t.Parallel()

	store, err := NewImageStore(t.TempDir(), 1<<20, 64)
	require.NoError(t, err)

	url, err := store.Save(context.Background(), bytes.NewReader(pngBytes(t, 10, 10)))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, URLPrefix, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, store.Remove(url))
	require.NoError(t, store.Remove(url), "removing a missing file is not an error")

	rec = httptest.NewRecorder()
	store.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	require.Error(t, store.Remove("/etc/passwd"))
	require.Error(t, store.Remove(URLPrefix+"../config.env"))
}
