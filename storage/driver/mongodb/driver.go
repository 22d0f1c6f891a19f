// Package mongodb provides a storage driver backed by MongoDB GridFS. Stored
// paths map to GridFS filenames, which keeps listing and prefix deletion
// simple regex queries.
package mongodb

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	storagedriver "github.com/heavydata/dms/storage/driver"
	"github.com/heavydata/dms/storage/driver/base"
	"github.com/heavydata/dms/storage/driver/factory"
)

const (
	driverName      = "mongodb"
	fsPrefix        = "dms"
	separator       = "/"
	defaultDatabase = "dms"
)

func init() {
	factory.Register(driverName, &mongodbDriverFactory{})
}

// mongodbDriverFactory implements the factory.StorageDriverFactory interface.
type mongodbDriverFactory struct{}

func (factory *mongodbDriverFactory) Create(parameters map[string]interface{}) (storagedriver.StorageDriver, error) {
	return FromParameters(parameters)
}

type driver struct {
	session *mgo.Session
	db      *mgo.Database
}

type baseEmbed struct {
	base.Base
}

// Driver is a storagedriver.StorageDriver implementation backed by MongoDB
// GridFS.
type Driver struct {
	baseEmbed
}

type gridFSEntry struct {
	ID       bson.ObjectId `bson:"_id,omitempty"`
	Filename string
	Length   int64
}

var _ storagedriver.StorageDriver = &Driver{}

// FromParameters constructs a new Driver with a given parameters map.
// Required parameters:
// - url
// Optional parameters:
// - dbname
func FromParameters(parameters map[string]interface{}) (*Driver, error) {
	url, ok := parameters["url"]
	if !ok || fmt.Sprint(url) == "" {
		return nil, fmt.Errorf("no 'url' parameter provided")
	}
	databaseName, ok := parameters["dbname"]
	if !ok || fmt.Sprint(databaseName) == "" {
		databaseName = defaultDatabase
	}
	return New(fmt.Sprint(url), fmt.Sprint(databaseName))
}

// New constructs a new Driver connected to the MongoDB server at url.
func New(url, databaseName string) (*Driver, error) {
	session, err := mgo.Dial(url)
	if err != nil {
		return nil, err
	}

	d := &driver{
		session: session,
		db:      session.DB(databaseName),
	}
	return &Driver{baseEmbed: baseEmbed{Base: base.Base{StorageDriver: d}}}, nil
}

// Implement the storagedriver.StorageDriver interface.

func (d *driver) Name() string {
	return driverName
}

// GetContent retrieves the content stored at "path" as a []byte.
func (d *driver) GetContent(ctx context.Context, path string) ([]byte, error) {
	file, err := d.gridFS().Open(path)
	if err != nil {
		if err == mgo.ErrNotFound {
			return nil, storagedriver.PathNotFoundError{Path: path}
		}
		return nil, err
	}
	content, err := io.ReadAll(file)
	closeErr := file.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, closeErr
	}
	return content, nil
}

// PutContent stores the []byte content at a location designated by "path".
func (d *driver) PutContent(ctx context.Context, path string, contents []byte) error {
	if err := d.gridFS().Remove(path); err != nil {
		return err
	}
	file, err := d.gridFS().Create(path)
	if err != nil {
		return err
	}
	if _, err := file.Write(contents); err != nil {
		file.Abort()
		file.Close()
		return err
	}
	return file.Close()
}

// Stat returns info about the provided path.
func (d *driver) Stat(ctx context.Context, path string) (storagedriver.FileInfo, error) {
	file, err := d.gridFS().Open(path)
	if err != nil {
		if err == mgo.ErrNotFound {
			return d.dirStat(path)
		}
		return nil, err
	}
	fi := storagedriver.FileInfoFields{
		Path:    path,
		ModTime: file.UploadDate(),
		Size:    file.Size(),
	}
	if err := file.Close(); err != nil {
		return nil, err
	}
	return storagedriver.FileInfoInternal{FileInfoFields: fi}, nil
}

func (d *driver) dirStat(path string) (storagedriver.FileInfo, error) {
	var files []gridFSEntry
	err := d.gridFS().Find(bson.M{"filename": bson.M{"$regex": bson.RegEx{Pattern: "^" + path + "/"}}}).All(&files)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, storagedriver.PathNotFoundError{Path: path}
	}
	return storagedriver.FileInfoInternal{FileInfoFields: storagedriver.FileInfoFields{
		Path:    path,
		IsDir:   true,
		ModTime: files[0].ID.Time(),
	}}, nil
}

// List returns a list of the objects that are direct descendants of the given
// path.
func (d *driver) List(ctx context.Context, path string) ([]string, error) {
	if !strings.HasSuffix(path, separator) {
		path += separator
	}
	var files []gridFSEntry
	err := d.gridFS().Find(bson.M{"filename": bson.M{"$regex": bson.RegEx{Pattern: "^" + path}}}).All(&files)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	for _, file := range files {
		descendant := strings.TrimPrefix(file.Filename, path)
		if descendant != file.Filename {
			set[path+strings.SplitN(descendant, separator, 2)[0]] = true
		}
	}
	if path != separator && len(set) == 0 {
		return nil, storagedriver.PathNotFoundError{Path: strings.TrimSuffix(path, separator)}
	}

	result := make([]string, 0, len(set))
	for key := range set {
		result = append(result, key)
	}
	return result, nil
}

// Move moves an object stored at sourcePath to destPath, removing the
// original object.
func (d *driver) Move(ctx context.Context, sourcePath string, destPath string) error {
	content, err := d.GetContent(ctx, sourcePath)
	if err != nil {
		return err
	}
	if err := d.PutContent(ctx, destPath, content); err != nil {
		return err
	}
	return d.gridFS().Remove(sourcePath)
}

// Delete recursively deletes all objects stored at "path" and its subpaths.
func (d *driver) Delete(ctx context.Context, path string) error {
	var files []gridFSEntry
	err := d.gridFS().Find(bson.M{"$or": []bson.M{
		{"filename": bson.M{"$regex": bson.RegEx{Pattern: "^" + path + "/"}}},
		{"filename": path},
	}}).All(&files)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return storagedriver.PathNotFoundError{Path: path}
	}
	for _, file := range files {
		if err := d.gridFS().RemoveId(file.ID); err != nil {
			return err
		}
	}
	return nil
}

// gridFS returns the GridFS handle, refreshing the session if the server has
// become unreachable.
func (d *driver) gridFS() *mgo.GridFS {
	if err := d.session.Ping(); err != nil {
		logrus.Errorf("error while trying to reach mongodb, refreshing connection: %v", err)
		d.session.Refresh()
	}
	return d.db.GridFS(fsPrefix)
}
