// Package storage is the blob store behind uploads: files land on local
// disk under a root directory and are served back by URL. Keeping the bytes
// locally lets the bulk submission download re-read them when bundling.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	SubmissionSizeLimit = 10 * 1024 * 1024
	MaterialSizeLimit   = 50 * 1024 * 1024
)

var (
	ErrFileTooLarge   = errors.New("file exceeds the size limit")
	ErrTypeNotAllowed = errors.New("file type is not allowed")
)

var submissionExts = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".txt": true,
	".zip": true, ".rar": true, ".jpg": true, ".jpeg": true, ".png": true,
}

var materialExts = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".ppt": true, ".pptx": true,
	".xls": true, ".xlsx": true, ".txt": true, ".zip": true, ".rar": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".mp4": true, ".avi": true, ".mov": true, ".wmv": true,
	".mp3": true, ".wav": true,
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

type Store struct {
	Root    string
	BaseURL string
}

func New(root, baseURL string) *Store {
	return &Store{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}
}

// SaveSubmission stores a learner's uploaded answer file and returns its URL.
func (s *Store) SaveSubmission(userID uint, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	name := fmt.Sprintf("submission-%d-%s%s", userID, uuid.NewString(), ext)
	return s.save("submissions", name, file, submissionExts, SubmissionSizeLimit)
}

// SaveMaterial stores course material, keeping a sanitized original name.
func (s *Store) SaveMaterial(userID uint, file *multipart.FileHeader) (string, error) {
	safe := unsafeChars.ReplaceAllString(strings.ReplaceAll(file.Filename, " ", "_"), "")
	name := fmt.Sprintf("material-%d-%s-%s", userID, uuid.NewString(), safe)
	return s.save("materials", name, file, materialExts, MaterialSizeLimit)
}

func (s *Store) save(subdir, name string, file *multipart.FileHeader, allowed map[string]bool, limit int64) (string, error) {
	if file.Size > limit {
		return "", ErrFileTooLarge
	}
	if !allowed[strings.ToLower(filepath.Ext(file.Filename))] {
		return "", ErrTypeNotAllowed
	}

	dir := filepath.Join(s.Root, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return s.BaseURL + mountPath + "/" + subdir + "/" + name, nil
}

// mountPath is where the HTTP layer serves the store's root from. URLs are
// built against it rather than the root directory, so relocating the root
// on disk never changes the public URL shape.
const mountPath = "/uploads"

// Path maps a stored file URL back to its on-disk location. URLs outside
// this store resolve to an empty path.
func (s *Store) Path(fileURL string) string {
	rel, ok := strings.CutPrefix(fileURL, s.BaseURL+mountPath+"/")
	if !ok {
		return ""
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(os.PathSeparator)) || filepath.IsAbs(clean) {
		return ""
	}
	return filepath.Join(s.Root, clean)
}
