package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/storage"

	"github.com/gabriel-vasile/mimetype"
)

// ImageUpload is one file of an upload batch. ContentType must come from
// the bytes, never from the client supplied header.
type ImageUpload struct {
	Name        string
	Size        int64
	ContentType string
	Body        io.Reader
}

func (u ImageUpload) meta() domain.ImageMeta {
	return domain.ImageMeta{Name: u.Name, Size: u.Size, ContentType: u.ContentType}
}

// DetectContentType sniffs r and rewinds it.
func DetectContentType(r io.ReadSeeker) (string, error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", fmt.Errorf("detect content type failed: %w", err)
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload failed: %w", err)
	}

	contentType, _, _ := strings.Cut(mt.String(), ";")

	return strings.TrimSpace(contentType), nil
}

func imageMetas(images []ImageUpload) []domain.ImageMeta {
	metas := make([]domain.ImageMeta, 0, len(images))
	for _, img := range images {
		metas = append(metas, img.meta())
	}
	return metas
}

// uploadImages stores a validated batch under folder. When one upload fails
// the ones already stored are removed again.
func uploadImages(ctx context.Context, objects storage.ObjectStorage, folder string, images []ImageUpload) ([]string, error) {
	urls := make([]string, 0, len(images))

	for _, img := range images {
		objectPath := storage.NewObjectPath(folder, domain.AllowedImageTypes[img.ContentType])

		url, err := objects.Upload(ctx, objectPath, img.ContentType, img.Body)
		if err != nil {
			removeObjects(ctx, objects, urls)
			return nil, domain.NewDependencyError(fmt.Sprintf("upload %s failed", img.Name), err)
		}

		urls = append(urls, url)
	}

	return urls, nil
}

// removeObjects deletes stored objects by URL and returns one error per
// object that could not be removed.
func removeObjects(ctx context.Context, objects storage.ObjectStorage, urls []string) []error {
	var errs []error

	for _, url := range urls {
		objectPath, ok := objects.PathFromURL(url)
		if !ok {
			continue
		}
		if err := objects.Delete(ctx, objectPath); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			errs = append(errs, err)
		}
	}

	return errs
}

// folderURLs merges the objects listed under folder with known URLs,
// so records that reference missing files and files without a record are
// both covered.
func folderURLs(ctx context.Context, objects storage.ObjectStorage, folder string, known []string) ([]string, error) {
	seen := make(map[string]struct{}, len(known))
	urls := make([]string, 0, len(known))

	add := func(url string) {
		if _, ok := seen[url]; ok {
			return
		}
		seen[url] = struct{}{}
		urls = append(urls, url)
	}

	for _, url := range known {
		add(url)
	}

	listed, err := objects.List(ctx, folder)
	for _, obj := range listed {
		add(obj.URL)
	}

	return urls, err
}
