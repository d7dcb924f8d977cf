package recipes

import "context"

// System defines the public contract for recipe domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	List(ctx context.Context, params Params, cursor string) (*Page, error)
	Find(ctx context.Context, id string) (*Recipe, error)
	Create(ctx context.Context, cmd CreateCommand) (*Recipe, error)
	Update(ctx context.Context, id string, cmd UpdateCommand) (*Recipe, error)
	Delete(ctx context.Context, id string) error

	// UploadImage stores an image and returns the URL to save as imageUrl.
	UploadImage(ctx context.Context, filename, contentType string, data []byte) (string, error)
}
