package catalog

import (
	"io"
	"time"

	"gopkg.in/guregu/null.v3"
)

type Image struct {
	ID         string      `json:"_id"`
	AlbumID    string      `json:"albumId"`
	Name       string      `json:"name"`
	FileURL    string      `json:"imageUrl"`
	Tags       []string    `json:"tags"`
	Person     null.String `json:"person"`
	IsFavorite bool        `json:"isFavorite"`
	Size       int64       `json:"size,omitempty"`
	UploadedAt time.Time   `json:"uploadedAt"`
	Comments   []Comment   `json:"comments"`
}

// Clone returns a copy of the image that shares no slices with img.
func (img Image) Clone() Image {
	if img.Tags != nil {
		img.Tags = append([]string(nil), img.Tags...)
	}
	if img.Comments != nil {
		img.Comments = append([]Comment(nil), img.Comments...)
	}
	return img
}

// Comment is an append-only note attached to an image. Author and CreatedAt
// are assigned by the server.
type Comment struct {
	Author    string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type ListImagesRes struct {
	Images []Image `json:"images"`
}

type ImageRes struct {
	Image *Image `json:"image"`
}

type CommentRes struct {
	Comment *Comment `json:"comment"`
}

type AddCommentRequest struct {
	Text string `json:"text"`
}

// UploadImageRequest is sent as multipart/form-data; File is streamed as the
// "file" part.
type UploadImageRequest struct {
	Name       string
	Tags       []string
	Person     string
	IsFavorite bool
	FileName   string
	File       io.Reader
}

// SearchQuery filters GET /search/images. Zero values are omitted.
type SearchQuery struct {
	Query    string
	Tags     string
	Person   string
	Favorite bool
}
