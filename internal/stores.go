package internal

import (
	"context"

	cl "photo-albums/pkg/catalog"
)

// TokenSource yields the bearer token attached to authenticated requests.
// An empty token means the request is sent anonymously.
type TokenSource interface {
	Token() string
}

// AuthService is the remote authentication API. Logout and CurrentUser take
// the token explicitly because they validate or invalidate that token.
type AuthService interface {
	Register(ctx context.Context, req cl.RegisterRequest) (cl.UserRes, error)
	Login(ctx context.Context, req cl.LoginRequest) (cl.LoginRes, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (cl.UserRes, error)
}

type AlbumService interface {
	ListAlbums(ctx context.Context) (cl.ListAlbumsRes, error)
	ListSharedAlbums(ctx context.Context) (cl.ListAlbumsRes, error)
	GetAlbum(ctx context.Context, id string) (cl.AlbumRes, error)
	CreateAlbum(ctx context.Context, req cl.CreateAlbumRequest) (cl.AlbumRes, error)
	UpdateAlbum(ctx context.Context, id string, req cl.UpdateAlbumRequest) (cl.AlbumRes, error)
	DeleteAlbum(ctx context.Context, id string) (cl.AlbumRes, error)
	ShareAlbum(ctx context.Context, id string, req cl.ShareAlbumRequest) (cl.AlbumRes, error)
}

type ImageService interface {
	ListImages(ctx context.Context, albumID, tags string) (cl.ListImagesRes, error)
	UploadImage(ctx context.Context, albumID string, req cl.UploadImageRequest) (cl.ImageRes, error)
	ToggleFavorite(ctx context.Context, albumID, imageID string) (cl.ImageRes, error)
	DeleteImage(ctx context.Context, albumID, imageID string) (cl.ImageRes, error)
	AddComment(ctx context.Context, albumID, imageID string, req cl.AddCommentRequest) (cl.CommentRes, error)
	SearchImages(ctx context.Context, q cl.SearchQuery) (cl.ListImagesRes, error)
}

type ProfileService interface {
	GetProfile(ctx context.Context) (cl.UserRes, error)
	UpdateProfile(ctx context.Context, req cl.UpdateProfileRequest) (cl.UserRes, error)
	UpdatePassword(ctx context.Context, req cl.UpdatePasswordRequest) (cl.MessageRes, error)
}

// LocalStorage is durable key/value storage that survives restarts. A
// missing key is reported with ok == false and a nil error.
type LocalStorage interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}
