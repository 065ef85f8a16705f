// Package storage keeps uploaded images in MongoDB GridFS. Objects are
// addressed by slash separated paths such as posts/<id>/<file>.jpg.
package storage

import (
	"context"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrObjectNotFound = errors.New("object not found")

type Object struct {
	Path        string    `json:"path"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type ObjectStorage interface {
	Upload(ctx context.Context, objectPath string, contentType string, body io.Reader) (string, error)
	List(ctx context.Context, folder string) ([]Object, error)
	Delete(ctx context.Context, objectPath string) error
	Open(ctx context.Context, objectPath string) (*Object, io.ReadCloser, error)
	PathFromURL(url string) (string, bool)
}

type gridFSFile struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"filename"`
	Length     int64              `bson:"length"`
	UploadDate time.Time          `bson:"uploadDate"`
	Metadata   struct {
		ContentType string `bson:"contentType"`
		Folder      string `bson:"folder"`
	} `bson:"metadata"`
}

type GridFS struct {
	bucket        *gridfs.Bucket
	publicBaseURL string
}

func NewMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "mongo ping")
	}

	return client, nil
}

func NewGridFS(db *mongo.Database, bucketName string, publicBaseURL string) (*GridFS, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, errors.Wrap(err, "create gridfs bucket")
	}

	return &GridFS{
		bucket:        bucket,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}, nil
}

func CleanPath(objectPath string) string {
	return strings.TrimPrefix(path.Clean("/"+objectPath), "/")
}

func (s *GridFS) URL(objectPath string) string {
	return s.publicBaseURL + "/" + objectPath
}

// PathFromURL reverses URL. Foreign URLs are reported with ok=false.
func (s *GridFS) PathFromURL(url string) (string, bool) {
	p, ok := strings.CutPrefix(url, s.publicBaseURL+"/")
	if !ok || p == "" {
		return "", false
	}
	return CleanPath(p), true
}

func (s *GridFS) Upload(ctx context.Context, objectPath string, contentType string, body io.Reader) (string, error) {
	objectPath = CleanPath(objectPath)

	opts := options.GridFSUpload().SetMetadata(bson.M{
		"contentType": contentType,
		"folder":      path.Dir(objectPath),
	})

	if _, err := s.bucket.UploadFromStream(objectPath, body, opts); err != nil {
		return "", errors.Wrapf(err, "upload %s", objectPath)
	}

	return s.URL(objectPath), nil
}

func (s *GridFS) find(ctx context.Context, filter interface{}) ([]gridFSFile, error) {
	cursor, err := s.bucket.FindContext(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var files []gridFSFile
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}

	return files, nil
}

func (s *GridFS) List(ctx context.Context, folder string) ([]Object, error) {
	prefix := CleanPath(folder) + "/"

	files, err := s.find(ctx, bson.M{"filename": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}})
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", prefix)
	}

	objects := make([]Object, 0, len(files))
	for _, f := range files {
		objects = append(objects, s.toObject(f))
	}

	return objects, nil
}

func (s *GridFS) toObject(f gridFSFile) Object {
	return Object{
		Path:        f.Name,
		URL:         s.URL(f.Name),
		ContentType: f.Metadata.ContentType,
		Size:        f.Length,
		UploadedAt:  f.UploadDate,
	}
}

// Delete removes every revision stored under objectPath.
func (s *GridFS) Delete(ctx context.Context, objectPath string) error {
	objectPath = CleanPath(objectPath)

	files, err := s.find(ctx, bson.M{"filename": objectPath})
	if err != nil {
		return errors.Wrapf(err, "find %s", objectPath)
	}

	if len(files) == 0 {
		return errors.Wrap(ErrObjectNotFound, objectPath)
	}

	for _, f := range files {
		if err := s.bucket.DeleteContext(ctx, f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return errors.Wrapf(err, "delete %s", objectPath)
		}
	}

	return nil
}

func (s *GridFS) Open(ctx context.Context, objectPath string) (*Object, io.ReadCloser, error) {
	objectPath = CleanPath(objectPath)

	files, err := s.find(ctx, bson.M{"filename": objectPath})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "find %s", objectPath)
	}

	if len(files) == 0 {
		return nil, nil, errors.Wrap(ErrObjectNotFound, objectPath)
	}

	latest := files[0]
	for _, f := range files[1:] {
		if f.UploadDate.After(latest.UploadDate) {
			latest = f
		}
	}

	stream, err := s.bucket.OpenDownloadStream(latest.ID)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "open %s", objectPath)
	}

	object := s.toObject(latest)

	return &object, stream, nil
}
