package mock

import (
	"context"

	"photo-albums/internal"
	cl "photo-albums/pkg/catalog"
)

var _ internal.AlbumService = (*AlbumService)(nil)

// AlbumService implements the AlbumService interface for mocking purposes.
type AlbumService struct {
	ListAlbumsFn       func(ctx context.Context) (cl.ListAlbumsRes, error)
	ListSharedAlbumsFn func(ctx context.Context) (cl.ListAlbumsRes, error)
	GetAlbumFn         func(ctx context.Context, id string) (cl.AlbumRes, error)
	CreateAlbumFn      func(ctx context.Context, req cl.CreateAlbumRequest) (cl.AlbumRes, error)
	UpdateAlbumFn      func(ctx context.Context, id string, req cl.UpdateAlbumRequest) (cl.AlbumRes, error)
	DeleteAlbumFn      func(ctx context.Context, id string) (cl.AlbumRes, error)
	ShareAlbumFn       func(ctx context.Context, id string, req cl.ShareAlbumRequest) (cl.AlbumRes, error)
}

// ListAlbums proxies the request to the injected ListAlbumsFn.
func (s *AlbumService) ListAlbums(ctx context.Context) (cl.ListAlbumsRes, error) {
	return s.ListAlbumsFn(ctx)
}

// ListSharedAlbums proxies the request to the injected ListSharedAlbumsFn.
func (s *AlbumService) ListSharedAlbums(ctx context.Context) (cl.ListAlbumsRes, error) {
	return s.ListSharedAlbumsFn(ctx)
}

// GetAlbum proxies the request to the injected GetAlbumFn.
func (s *AlbumService) GetAlbum(ctx context.Context, id string) (cl.AlbumRes, error) {
	return s.GetAlbumFn(ctx, id)
}

// CreateAlbum proxies the request to the injected CreateAlbumFn.
func (s *AlbumService) CreateAlbum(ctx context.Context, req cl.CreateAlbumRequest) (cl.AlbumRes, error) {
	return s.CreateAlbumFn(ctx, req)
}

// UpdateAlbum proxies the request to the injected UpdateAlbumFn.
func (s *AlbumService) UpdateAlbum(ctx context.Context, id string, req cl.UpdateAlbumRequest) (cl.AlbumRes, error) {
	return s.UpdateAlbumFn(ctx, id, req)
}

// DeleteAlbum proxies the request to the injected DeleteAlbumFn.
func (s *AlbumService) DeleteAlbum(ctx context.Context, id string) (cl.AlbumRes, error) {
	return s.DeleteAlbumFn(ctx, id)
}

// ShareAlbum proxies the request to the injected ShareAlbumFn.
func (s *AlbumService) ShareAlbum(ctx context.Context, id string, req cl.ShareAlbumRequest) (cl.AlbumRes, error) {
	return s.ShareAlbumFn(ctx, id, req)
}
