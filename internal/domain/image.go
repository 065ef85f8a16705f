package domain

import "fmt"

const (
	MaxImageBytes = 3 << 20
	MaxPostImages = 5
)

// AllowedImageTypes maps accepted MIME types to the extension used in storage paths.
var AllowedImageTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type ImageMeta struct {
	Name        string
	Size        int64
	ContentType string
}

type ImageLimits struct {
	MaxBytes int64
	MaxCount int
}

func DefaultImageLimits() ImageLimits {
	return ImageLimits{MaxBytes: MaxImageBytes, MaxCount: MaxPostImages}
}

// ValidateImages checks a whole upload batch. existing is the number of
// images already attached to the target. The batch is accepted or rejected
// as a unit.
func ValidateImages(images []ImageMeta, existing int, limits ImageLimits) error {
	if len(images) == 0 {
		return NewValidationError("no images provided")
	}

	if limits.MaxCount > 0 && existing+len(images) > limits.MaxCount {
		return NewValidationError(fmt.Sprintf("at most %d images are allowed, got %d", limits.MaxCount, existing+len(images)))
	}

	for _, img := range images {
		if _, ok := AllowedImageTypes[img.ContentType]; !ok {
			return NewValidationError(fmt.Sprintf("%s: unsupported image type %q, use jpeg, png or webp", img.Name, img.ContentType))
		}
		if img.Size > limits.MaxBytes {
			return NewValidationError(fmt.Sprintf("%s: image is larger than %d MB", img.Name, limits.MaxBytes>>20))
		}
	}

	return nil
}
