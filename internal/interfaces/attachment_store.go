package interfaces

import (
	"context"

	"solifin/internal/attachment"
)

// AttachmentStore keeps the files of publication slots.
type AttachmentStore interface {
	// Put stores f under key and returns its public URL.
	Put(ctx context.Context, key string, f *attachment.File) (string, error)
	Delete(ctx context.Context, key string) error
}
