package mock

import (
	"context"

	"photo-albums/internal"
	cl "photo-albums/pkg/catalog"
)

var _ internal.ImageService = (*ImageService)(nil)

// ImageService implements the ImageService interface for mocking purposes.
type ImageService struct {
	ListImagesFn     func(ctx context.Context, albumID, tags string) (cl.ListImagesRes, error)
	UploadImageFn    func(ctx context.Context, albumID string, req cl.UploadImageRequest) (cl.ImageRes, error)
	ToggleFavoriteFn func(ctx context.Context, albumID, imageID string) (cl.ImageRes, error)
	DeleteImageFn    func(ctx context.Context, albumID, imageID string) (cl.ImageRes, error)
	AddCommentFn     func(ctx context.Context, albumID, imageID string, req cl.AddCommentRequest) (cl.CommentRes, error)
	SearchImagesFn   func(ctx context.Context, q cl.SearchQuery) (cl.ListImagesRes, error)
}

// ListImages proxies the request to the injected ListImagesFn.
func (s *ImageService) ListImages(ctx context.Context, albumID, tags string) (cl.ListImagesRes, error) {
	return s.ListImagesFn(ctx, albumID, tags)
}

// UploadImage proxies the request to the injected UploadImageFn.
func (s *ImageService) UploadImage(ctx context.Context, albumID string, req cl.UploadImageRequest) (cl.ImageRes, error) {
	return s.UploadImageFn(ctx, albumID, req)
}

// ToggleFavorite proxies the request to the injected ToggleFavoriteFn.
func (s *ImageService) ToggleFavorite(ctx context.Context, albumID, imageID string) (cl.ImageRes, error) {
	return s.ToggleFavoriteFn(ctx, albumID, imageID)
}

// DeleteImage proxies the request to the injected DeleteImageFn.
func (s *ImageService) DeleteImage(ctx context.Context, albumID, imageID string) (cl.ImageRes, error) {
	return s.DeleteImageFn(ctx, albumID, imageID)
}

// AddComment proxies the request to the injected AddCommentFn.
func (s *ImageService) AddComment(ctx context.Context, albumID, imageID string, req cl.AddCommentRequest) (cl.CommentRes, error) {
	return s.AddCommentFn(ctx, albumID, imageID, req)
}

// SearchImages proxies the request to the injected SearchImagesFn.
func (s *ImageService) SearchImages(ctx context.Context, q cl.SearchQuery) (cl.ListImagesRes, error) {
	return s.SearchImagesFn(ctx, q)
}
