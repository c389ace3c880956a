package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"math"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"cinema-api/pkg/apierror"
)

const (
	URLPrefix   = "/images/"
	jpegQuality = 90
)

var acceptedImageMIMEs = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
	"image/bmp":  {},
}

// ImageStore writes uploaded posters as JPEG files named <uuid>.jpg and
// serves them back under URLPrefix.
type ImageStore struct {
	validator *PathValidator
	maxBytes  int64
	maxWidth  int
}

func NewImageStore(root string, maxBytes int64, maxWidth int) (*ImageStore, error) {
	validator, err := NewPathValidator(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(validator.RootAbs(), 0o755); err != nil {
		return nil, fmt.Errorf("create image root: %w", err)
	}

	return &ImageStore{validator: validator, maxBytes: maxBytes, maxWidth: maxWidth}, nil
}

func (s *ImageStore) RootAbs() string {
	return s.validator.RootAbs()
}

// Save decodes src, scales it down to the configured width and stores it
// as a new JPEG file. It returns the URL the file is served at.
func (s *ImageStore) Save(ctx context.Context, src io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(src, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return "", apierror.New("PAYLOAD_TOO_LARGE", "image exceeds maximum upload size", "", http.StatusRequestEntityTooLarge)
	}

	mimeType := DetectMIME(data)
	if _, ok := acceptedImageMIMEs[mimeType]; !ok {
		return "", apierror.New("INVALID_IMAGE", "unsupported image type", mimeType, http.StatusBadRequest)
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", apierror.Wrap(err, "INVALID_IMAGE", "image could not be decoded", http.StatusBadRequest)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + ".jpg"
	target, err := s.validator.ResolveName(name)
	if err != nil {
		return "", err
	}

	if err := s.writeJPEG(target, scaleToWidth(decoded, s.maxWidth)); err != nil {
		return "", err
	}

	return URLPrefix + name, nil
}

func (s *ImageStore) writeJPEG(target string, img image.Image) error {
	tmp, err := os.CreateTemp(s.validator.RootAbs(), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	tmpName := tmp.Name()

	encodeErr := jpeg.Encode(tmp, img, &jpeg.Options{Quality: jpegQuality})
	closeErr := tmp.Close()
	if encodeErr != nil || closeErr != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write image: %w", errors.Join(encodeErr, closeErr))
	}

	if err := os.Rename(tmpName, target); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("store image: %w", err)
	}

	return nil
}

// Remove deletes the file behind a URL returned by Save. Missing files are
// not an error.
func (s *ImageStore) Remove(url string) error {
	name := strings.TrimPrefix(url, URLPrefix)
	if name == url {
		return apierror.New("INVALID_PATH", "not an image URL", url, http.StatusBadRequest)
	}

	resolved, err := s.validator.ResolveName(name)
	if err != nil {
		return err
	}

	if err := os.Remove(resolved); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove image %q: %w", name, err)
	}
	return nil
}

// Handler serves stored images. Directory listings are not served.
func (s *ImageStore) Handler() http.Handler {
	files := http.FileServer(http.Dir(s.validator.RootAbs()))

	return http.StripPrefix(strings.TrimSuffix(URLPrefix, "/"), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/")
		resolved, err := s.validator.ResolveName(name)
		if err != nil || strings.HasPrefix(name, ".") {
			http.NotFound(w, r)
			return
		}

		info, err := os.Stat(resolved)
		if err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=86400")
		files.ServeHTTP(w, r)
	}))
}

// DetectMIME sniffs the content type from the leading bytes.
func DetectMIME(data []byte) string {
	if len(data) > 512 {
		data = data[:512]
	}
	mimeType := http.DetectContentType(data)
	if idx := strings.IndexByte(mimeType, ';'); idx >= 0 {
		mimeType = mimeType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

func scaleToWidth(src image.Image, maxWidth int) image.Image {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if maxWidth <= 0 || width <= maxWidth {
		return src
	}

	scale := float64(maxWidth) / float64(width)
	targetHeight := int(math.Round(float64(height) * scale))
	if targetHeight < 1 {
		targetHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
