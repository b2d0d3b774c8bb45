// Package storage persists fee letter payloads on the local filesystem.
// Files are keyed by their generated object id; metadata lives in the
// fee_letters table.
package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrObjectIDInvalid is returned for object ids that would escape
	// the letter directory.
	ErrObjectIDInvalid = errors.New("object id is invalid")
	// ErrObjectNotFound is returned when no payload exists for the id.
	ErrObjectNotFound = errors.New("object not found")
)

// LetterStore reads and writes fee letter payloads under one directory.
type LetterStore struct {
	dir string
}

// NewLetterStore creates the letter directory if needed and returns a
// store over it.
func NewLetterStore(dir string) (*LetterStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, err
	}

	return &LetterStore{dir: dir}, nil
}

func (s *LetterStore) path(objectID string) (string, error) {
	if objectID == "" || strings.ContainsAny(objectID, "/\\") || strings.Contains(objectID, "..") {
		return "", ErrObjectIDInvalid
	}

	return filepath.Join(s.dir, objectID), nil
}

// Save streams a payload to disk under the given object id.
func (s *LetterStore) Save(objectID string, src io.Reader) error {
	p, err := s.path(objectID)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}

// Open returns a reader over the stored payload.
func (s *LetterStore) Open(objectID string) (io.ReadCloser, error) {
	p, err := s.path(objectID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrObjectNotFound
		}

		return nil, err
	}

	return f, nil
}

// Remove deletes the stored payload. Removing a missing payload is not
// an error; the metadata row is the source of truth.
func (s *LetterStore) Remove(objectID string) error {
	p, err := s.path(objectID)
	if err != nil {
		return err
	}

	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
