package driver

import (
	"context"
	"fmt"
	"regexp"
)

// Version is a string representing the storage driver version, of the form
// Major.Minor. The service must accept storage drivers with equal major
// version and greater minor version, but may not be compatible with older
// storage driver versions.
type Version string

// CurrentVersion is the current storage driver Version.
const CurrentVersion Version = "0.1"

// StorageDriver defines methods that a storage driver must implement for a
// filesystem-like key/value object storage. Documents and blobs are small
// enough that whole-content operations suffice.
type StorageDriver interface {
	// Name returns the human-readable "name" of the driver, useful in error
	// messages and logging. By convention, this will just be the registration
	// name, but drivers may provide other information here.
	Name() string

	// GetContent retrieves the content stored at "path" as a []byte.
	GetContent(ctx context.Context, path string) ([]byte, error)

	// PutContent stores the []byte content at a location designated by
	// "path".
	PutContent(ctx context.Context, path string, content []byte) error

	// Stat retrieves the FileInfo for the given path, including the current
	// size in bytes and the creation time.
	Stat(ctx context.Context, path string) (FileInfo, error)

	// List returns a list of the objects that are direct descendants of the
	// given path.
	List(ctx context.Context, path string) ([]string, error)

	// Move moves an object stored at sourcePath to destPath, removing the
	// original object. Note: This may be no more efficient than a copy
	// followed by a delete for many implementations.
	Move(ctx context.Context, sourcePath string, destPath string) error

	// Delete recursively deletes all objects stored at "path" and its
	// subpaths.
	Delete(ctx context.Context, path string) error
}

// PathRegexp is the regular expression which each path must match. A path
// must be absolute, beginning with a slash, with path components separated by
// slashes.
var PathRegexp = regexp.MustCompile(`^(/[A-Za-z0-9._:-]+)+$`)

// ErrUnsupportedMethod may be returned in the case where a StorageDriver
// implementation does not support an optional method.
type ErrUnsupportedMethod struct {
	DriverName string
}

func (err ErrUnsupportedMethod) Error() string {
	return fmt.Sprintf("%s: unsupported method", err.DriverName)
}

// PathNotFoundError is returned when operating on a nonexistent path.
type PathNotFoundError struct {
	Path       string
	DriverName string
}

func (err PathNotFoundError) Error() string {
	return fmt.Sprintf("%s: Path not found: %s", err.DriverName, err.Path)
}

// InvalidPathError is returned when the provided path is malformed.
type InvalidPathError struct {
	Path       string
	DriverName string
}

func (err InvalidPathError) Error() string {
	return fmt.Sprintf("%s: invalid path: %s", err.DriverName, err.Path)
}

// Error is a catch-all error type which captures an error and the driver
// that returned it.
type Error struct {
	DriverName string
	Enclosed   error
}

func (err Error) Error() string {
	return fmt.Sprintf("%s: %s", err.DriverName, err.Enclosed)
}

// Unwrap returns the enclosed error.
func (err Error) Unwrap() error {
	return err.Enclosed
}
