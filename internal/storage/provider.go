// Package storage defines the journal file-system abstraction.
package storage

import "github.com/veleth/dagaz/internal/models"

// Provider is the interface for journal file operations.
type Provider interface {
	// List returns metadata for every .md entry file under dir (relative
	// to the journal root).
	List(dir string) ([]models.EntryMetadata, error)
	// Read returns the raw bytes of the file at path (relative to the journal root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to the journal root).
	Write(path string, content []byte) error
	// Delete removes the file at path (relative to the journal root).
	Delete(path string) error
	// Move renames oldPath to newPath (both relative to the journal root).
	Move(oldPath, newPath string) error
}
