//go:build integration
// +build integration

package storage_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/bluehaven/rentals/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupGridFS(t *testing.T) *storage.GridFS {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForListeningPort("27017/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err, "start mongo container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "mongodb")
	require.NoError(t, err)

	client, err := storage.NewMongoClient(ctx, endpoint)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	s, err := storage.NewGridFS(client.Database("bluehaven_test"), "images", "http://localhost/images")
	require.NoError(t, err)

	return s
}

func TestIntegration_GridFS(t *testing.T) {
	s := setupGridFS(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.Upload(ctx, fmt.Sprintf("posts/p1/%d.png", i), "image/png", bytes.NewReader([]byte{0x89, 'P', 'N', 'G'}))
		require.NoError(t, err)
	}
	url, err := s.Upload(ctx, "posts/p10/0.png", "image/png", bytes.NewReader([]byte("other")))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/images/posts/p10/0.png", url)

	objects, err := s.List(ctx, "posts/p1")
	require.NoError(t, err)
	assert.Len(t, objects, 2)

	obj, body, err := s.Open(ctx, "posts/p1/0.png")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	require.NoError(t, body.Close())
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)

	require.NoError(t, s.Delete(ctx, "posts/p1/0.png"))
	assert.ErrorIs(t, s.Delete(ctx, "posts/p1/0.png"), storage.ErrObjectNotFound)
}
