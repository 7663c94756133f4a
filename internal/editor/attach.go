package editor

import (
	"errors"
	"fmt"

	"github.com/p-n-ai/lesson-admin/internal/lesson"
	"github.com/p-n-ai/lesson-admin/internal/storage"
)

// Attachment pipeline errors surfaced to the admin UI.
var (
	ErrBadImageType   = errors.New("unsupported image type")
	ErrUploadInFlight = errors.New("an upload is already in progress for this image")
	ErrNothingStaged  = errors.New("no staged file to upload")
)

// stageImage moves an attachment from Empty or Attached into Staged. The
// declared media type must be an accepted image type; a rejected file changes
// nothing. Re-staging over an attached image keeps the old key until the new
// upload completes, so a failed replacement never loses the current image.
func stageImage(img lesson.Image, name, mimeType string, data []byte) (lesson.Image, error) {
	if img.Uploading {
		return img, ErrUploadInFlight
	}
	if !storage.AllowedImageType(mimeType) {
		return img, fmt.Errorf("%w: %s (want PNG or JPEG)", ErrBadImageType, mimeType)
	}
	if len(data) == 0 {
		return img, fmt.Errorf("%w: file is empty", ErrBadImageType)
	}

	img.PendingFile = data
	img.PendingName = name
	img.PendingMIME = mimeType
	return img, nil
}

// beginUpload marks a staged attachment as Uploading. Only one upload may be
// in flight per leaf.
func beginUpload(img lesson.Image) (lesson.Image, error) {
	switch img.State() {
	case lesson.AttachUploading:
		return img, ErrUploadInFlight
	case lesson.AttachStaged:
		img.Uploading = true
		return img, nil
	default:
		return img, ErrNothingStaged
	}
}

// completeUpload reconciles a successful store response: the staged bytes are
// dropped and the resolved key and preview URL recorded.
func completeUpload(img lesson.Image, res storage.UploadResult) lesson.Image {
	return lesson.Image{
		ObjectKey:  storage.NormalizeKey(res.ObjectKey),
		PreviewURL: res.URL,
	}
}

// failUpload returns the attachment to Staged with the local file intact so
// the user can retry.
func failUpload(img lesson.Image) lesson.Image {
	img.Uploading = false
	return img
}
