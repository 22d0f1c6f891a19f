// Package inmemory provides a volatile storage driver backed by a map guarded
// by a mutex. Intended for use in tests and local development only.
package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	storagedriver "github.com/heavydata/dms/storage/driver"
	"github.com/heavydata/dms/storage/driver/base"
	"github.com/heavydata/dms/storage/driver/factory"
)

const driverName = "inmemory"

func init() {
	factory.Register(driverName, &inMemoryDriverFactory{})
}

// inMemoryDriverFactory implements the factory.StorageDriverFactory interface.
type inMemoryDriverFactory struct{}

func (factory *inMemoryDriverFactory) Create(parameters map[string]interface{}) (storagedriver.StorageDriver, error) {
	return New(), nil
}

type entry struct {
	content []byte
	modtime time.Time
}

type driver struct {
	mutex sync.RWMutex
	files map[string]entry
}

// baseEmbed allows us to hide the Base embed.
type baseEmbed struct {
	base.Base
}

// Driver is a storagedriver.StorageDriver implementation backed by a local
// map. All data is volatile and lost on process exit.
type Driver struct {
	baseEmbed
}

// New constructs a new Driver.
func New() *Driver {
	return &Driver{
		baseEmbed: baseEmbed{
			Base: base.Base{
				StorageDriver: &driver{
					files: make(map[string]entry),
				},
			},
		},
	}
}

// Implement the storagedriver.StorageDriver interface.

func (d *driver) Name() string {
	return driverName
}

// GetContent retrieves the content stored at "path" as a []byte.
func (d *driver) GetContent(ctx context.Context, path string) ([]byte, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	e, ok := d.files[path]
	if !ok {
		return nil, storagedriver.PathNotFoundError{Path: path}
	}

	content := make([]byte, len(e.content))
	copy(content, e.content)
	return content, nil
}

// PutContent stores the []byte content at a location designated by "path".
func (d *driver) PutContent(ctx context.Context, path string, contents []byte) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	content := make([]byte, len(contents))
	copy(content, contents)
	d.files[path] = entry{content: content, modtime: time.Now()}
	return nil
}

// Stat returns info about the provided path.
func (d *driver) Stat(ctx context.Context, path string) (storagedriver.FileInfo, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	fi := storagedriver.FileInfoFields{Path: path}

	if e, ok := d.files[path]; ok {
		fi.Size = int64(len(e.content))
		fi.ModTime = e.modtime
		return storagedriver.FileInfoInternal{FileInfoFields: fi}, nil
	}

	prefix := d.dirPrefix(path)
	for p := range d.files {
		if strings.HasPrefix(p, prefix) {
			fi.IsDir = true
			return storagedriver.FileInfoInternal{FileInfoFields: fi}, nil
		}
	}

	return nil, storagedriver.PathNotFoundError{Path: path}
}

// List returns a list of the objects that are direct descendants of the given
// path.
func (d *driver) List(ctx context.Context, path string) ([]string, error) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	prefix := d.dirPrefix(path)

	children := map[string]struct{}{}
	found := false
	for p := range d.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		found = true
		rest := strings.TrimPrefix(p, prefix)
		if i := strings.Index(rest, "/"); i >= 0 {
			rest = rest[:i]
		}
		children[prefix+rest] = struct{}{}
	}

	if !found && path != "/" {
		return nil, storagedriver.PathNotFoundError{Path: path}
	}

	keys := make([]string, 0, len(children))
	for k := range children {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Move moves an object stored at sourcePath to destPath, removing the
// original object.
func (d *driver) Move(ctx context.Context, sourcePath string, destPath string) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	e, ok := d.files[sourcePath]
	if !ok {
		return storagedriver.PathNotFoundError{Path: sourcePath}
	}

	delete(d.files, sourcePath)
	d.files[destPath] = entry{content: e.content, modtime: time.Now()}
	return nil
}

// Delete recursively deletes all objects stored at "path" and its subpaths.
func (d *driver) Delete(ctx context.Context, path string) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	prefix := d.dirPrefix(path)

	found := false
	for p := range d.files {
		if p == path || strings.HasPrefix(p, prefix) {
			delete(d.files, p)
			found = true
		}
	}

	if !found {
		return storagedriver.PathNotFoundError{Path: path}
	}
	return nil
}

// dirPrefix normalizes path into a directory prefix ending in a slash.
func (d *driver) dirPrefix(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimSuffix(path, "/") + "/"
}
