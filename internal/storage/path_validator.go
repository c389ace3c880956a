package storage

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"unicode"

	"cinema-api/pkg/apierror"
)

// PathValidator confines file names to a single directory.
type PathValidator struct {
	rootAbs string
}

func NewPathValidator(root string) (*PathValidator, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("root path cannot be empty")
	}

	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}

	return &PathValidator{rootAbs: rootAbs}, nil
}

func (v *PathValidator) RootAbs() string {
	return v.rootAbs
}

// ResolveName maps a bare file name to its absolute path under the root.
// Separators, traversal segments and control characters are rejected.
func (v *PathValidator) ResolveName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed == "." {
		return "", apierror.New("INVALID_PATH", "file name cannot be empty", name, http.StatusBadRequest)
	}

	if strings.Contains(trimmed, "\x00") || hasControlCharacters(trimmed) {
		return "", apierror.New("INVALID_PATH", "file name contains invalid characters", name, http.StatusBadRequest)
	}

	if trimmed == ".." || strings.ContainsAny(trimmed, `/\`) {
		return "", apierror.New("PATH_TRAVERSAL", "file name must not contain path segments", name, http.StatusForbidden)
	}

	resolved := filepath.Join(v.rootAbs, trimmed)
	if !isWithinRoot(v.rootAbs, resolved) || resolved == v.rootAbs {
		return "", apierror.New("PATH_TRAVERSAL", "resolved path is outside storage root", name, http.StatusForbidden)
	}

	return resolved, nil
}

func hasControlCharacters(value string) bool {
	for _, char := range value {
		if unicode.IsControl(char) {
			return true
		}
	}

	return false
}

func isWithinRoot(rootAbs string, candidateAbs string) bool {
	if candidateAbs == rootAbs {
		return true
	}

	rootWithSeparator := rootAbs + string(filepath.Separator)
	return strings.HasPrefix(candidateAbs, rootWithSeparator)
}
