package catalog

import (
	"time"

	"gopkg.in/guregu/null.v3"
)

// Album is a named container of images owned by a single user.
type Album struct {
	ID            string      `json:"_id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	CoverImageURL null.String `json:"albumCover"`
	OwnerID       string      `json:"owner"`
	SharedWith    []string    `json:"sharedWith"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// Clone returns a copy of the album that shares no slices with a.
func (a Album) Clone() Album {
	if a.SharedWith != nil {
		a.SharedWith = append([]string(nil), a.SharedWith...)
	}
	return a
}

type ListAlbumsRes struct {
	Albums []Album `json:"albums"`
}

// AlbumRes is the envelope the API uses for every single-album response,
// including create, update, share and delete.
type AlbumRes struct {
	Album *Album `json:"album"`
}

type CreateAlbumRequest struct {
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	CoverImageURL null.String `json:"albumCover"`
}

// UpdateAlbumRequest is a partial update; nil fields are left untouched.
type UpdateAlbumRequest struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	CoverImageURL *string `json:"albumCover,omitempty"`
}

type ShareAlbumRequest struct {
	Usernames []string `json:"usernames"`
}
