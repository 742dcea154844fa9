package evidence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"banshare/internal/models"
	"banshare/internal/util"
)

// DefaultMaxFileSize caps a single evidence file at 25 MB
const DefaultMaxFileSize = 25 * 1024 * 1024

var (
	// ErrRejected indicates the content failed magic-number validation
	ErrRejected = errors.New("evidence content type rejected")
	// ErrTooLarge indicates the upload exceeds the per-file size cap
	ErrTooLarge = errors.New("evidence file too large")
	// ErrUnsafeRef indicates a reference escaping the evidence root
	ErrUnsafeRef = errors.New("evidence reference escapes storage root")
)

// extensions by declared content type
var contentTypeExt = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/bmp":       ".bmp",
	"application/pdf": ".pdf",
	"video/mp4":       ".mp4",
	"video/webm":      ".webm",
	"text/plain":      ".txt",
}

var safeExtRe = regexp.MustCompile(`^\.[A-Za-z0-9]{1,8}$`)

// Store writes accepted uploads under a single root directory
type Store struct {
	root    string
	maxSize int64
}

// NewStore creates the evidence root if needed
func NewStore(root string, maxSize int64) (*Store, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve evidence root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create evidence directory: %w", err)
	}
	return &Store{root: abs, maxSize: maxSize}, nil
}

// Save validates and persists an upload, returning its evidence entry.
// declaredSize is the remote size header, which is untrusted: both it
// and the actually-downloaded byte count are checked against the cap.
// The caller-supplied filename is only ever consulted for an extension.
func (s *Store) Save(data []byte, contentType, originalName string, declaredSize int64, note string) (*models.EvidenceEntry, error) {
	if declaredSize > s.maxSize || int64(len(data)) > s.maxSize {
		return nil, ErrTooLarge
	}
	if !Validate(data) {
		return nil, ErrRejected
	}

	id := util.NewCompactID()
	name := id + extensionFor(contentType, originalName)
	path := filepath.Join(s.root, name)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write evidence file: %w", err)
	}

	return &models.EvidenceEntry{
		ID:      id,
		Kind:    kindFor(contentType),
		Storage: models.EvidenceStorageFile,
		Ref:     name,
		Note:    note,
		Size:    int64(len(data)),
	}, nil
}

// Resolve maps a stored reference back to an absolute path, rejecting
// anything that would escape the evidence root
func (s *Store) Resolve(ref string) (string, error) {
	if ref == "" || filepath.IsAbs(ref) {
		return "", ErrUnsafeRef
	}
	path := filepath.Join(s.root, ref)
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrUnsafeRef
	}
	return path, nil
}

// Remove deletes a stored evidence file
func (s *Store) Remove(ref string) error {
	path, err := s.Resolve(ref)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// extensionFor picks a file extension: declared content type first,
// then the original filename, then a generic binary extension
func extensionFor(contentType, originalName string) string {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if ext, ok := contentTypeExt[ct]; ok {
		return ext
	}
	if ext := strings.ToLower(filepath.Ext(originalName)); safeExtRe.MatchString(ext) {
		return ext
	}
	return ".bin"
}

func kindFor(contentType string) models.EvidenceKind {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if strings.HasPrefix(ct, "image/") || strings.HasPrefix(ct, "video/") {
		return models.EvidenceImage
	}
	return models.EvidenceText
}
