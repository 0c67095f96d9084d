package api

import (
	"context"
	"net/http"

	cl "photo-albums/pkg/catalog"

	"github.com/pkg/errors"
)

// ListAlbums returns the albums owned by the caller.
func (c *Client) ListAlbums(ctx context.Context) (cl.ListAlbumsRes, error) {
	var res cl.ListAlbumsRes
	err := c.doJSON(ctx, http.MethodGet, path("albums"), c.token(), nil, &res)
	return res, errors.Wrap(err, "list albums")
}

// ListSharedAlbums returns the albums other users shared with the caller.
func (c *Client) ListSharedAlbums(ctx context.Context) (cl.ListAlbumsRes, error) {
	var res cl.ListAlbumsRes
	err := c.doJSON(ctx, http.MethodGet, path("albums", "shared"), c.token(), nil, &res)
	return res, errors.Wrap(err, "list shared albums")
}

func (c *Client) GetAlbum(ctx context.Context, id string) (cl.AlbumRes, error) {
	return c.albumCall(ctx, http.MethodGet, "get album", id, nil)
}

func (c *Client) CreateAlbum(ctx context.Context, req cl.CreateAlbumRequest) (cl.AlbumRes, error) {
	var res cl.AlbumRes
	if err := c.doJSON(ctx, http.MethodPost, path("albums"), c.token(), req, &res); err != nil {
		return res, errors.Wrap(err, "create album")
	}
	if res.Album == nil {
		return res, errors.New("create album: response carried no album")
	}
	return res, nil
}

func (c *Client) UpdateAlbum(ctx context.Context, id string, req cl.UpdateAlbumRequest) (cl.AlbumRes, error) {
	return c.albumCall(ctx, http.MethodPut, "update album", id, req)
}

// DeleteAlbum removes the album; the reply only carries the deleted id.
func (c *Client) DeleteAlbum(ctx context.Context, id string) (cl.AlbumRes, error) {
	return c.albumCall(ctx, http.MethodDelete, "delete album", id, nil)
}

func (c *Client) ShareAlbum(ctx context.Context, id string, req cl.ShareAlbumRequest) (cl.AlbumRes, error) {
	var res cl.AlbumRes
	if err := c.doJSON(ctx, http.MethodPost, path("albums", id, "share"), c.token(), req, &res); err != nil {
		return res, errors.Wrap(err, "share album")
	}
	if res.Album == nil {
		return res, errors.New("share album: response carried no album")
	}
	return res, nil
}

func (c *Client) albumCall(ctx context.Context, method, op, id string, body interface{}) (cl.AlbumRes, error) {
	var res cl.AlbumRes
	if id == "" {
		return res, errors.Wrap(cl.ErrNotFound, op)
	}
	if err := c.doJSON(ctx, method, path("albums", id), c.token(), body, &res); err != nil {
		return res, errors.Wrap(err, op)
	}
	if res.Album == nil {
		return res, errors.Errorf("%s: response carried no album", op)
	}
	return res, nil
}
