package mock_storage

import (
	"context"
	"io"

	"github.com/bluehaven/rentals/internal/storage"

	"github.com/stretchr/testify/mock"
)

type ObjectStorage struct {
	mock.Mock
}

func (m *ObjectStorage) Upload(ctx context.Context, objectPath string, contentType string, body io.Reader) (string, error) {
	args := m.Called(ctx, objectPath, contentType, body)
	return args.String(0), args.Error(1)
}

func (m *ObjectStorage) List(ctx context.Context, folder string) ([]storage.Object, error) {
	args := m.Called(ctx, folder)
	objects, _ := args.Get(0).([]storage.Object)
	return objects, args.Error(1)
}

func (m *ObjectStorage) Delete(ctx context.Context, objectPath string) error {
	args := m.Called(ctx, objectPath)
	return args.Error(0)
}

func (m *ObjectStorage) Open(ctx context.Context, objectPath string) (*storage.Object, io.ReadCloser, error) {
	args := m.Called(ctx, objectPath)
	object, _ := args.Get(0).(*storage.Object)
	body, _ := args.Get(1).(io.ReadCloser)
	return object, body, args.Error(2)
}

func (m *ObjectStorage) PathFromURL(url string) (string, bool) {
	args := m.Called(url)
	return args.String(0), args.Bool(1)
}
