package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"photo-albums/internal/imaging"
	cl "photo-albums/pkg/catalog"

	"github.com/pkg/errors"
)

// ListImages returns the images of an album, optionally narrowed by a
// comma separated tag filter evaluated by the server.
func (c *Client) ListImages(ctx context.Context, albumID, tags string) (cl.ListImagesRes, error) {
	var res cl.ListImagesRes
	rel := path("albums", albumID, "images")
	if t := strings.TrimSpace(tags); t != "" {
		rel.RawQuery = url.Values{"tags": {t}}.Encode()
	}
	err := c.doJSON(ctx, http.MethodGet, rel, c.token(), nil, &res)
	return res, errors.Wrap(err, "list images")
}

// UploadImage sends req as multipart/form-data. The file is buffered so it
// can be downscaled first when a maximum dimension is configured.
func (c *Client) UploadImage(ctx context.Context, albumID string, req cl.UploadImageRequest) (cl.ImageRes, error) {
	var res cl.ImageRes
	if req.File == nil {
		return res, errors.Wrap(cl.ErrMissingFile, "upload image")
	}
	data, err := io.ReadAll(req.File)
	if err != nil {
		return res, errors.Wrap(err, "read upload")
	}
	data, resized, err := imaging.Downscale(data, c.maxUploadDim)
	if err != nil {
		return res, errors.Wrap(err, "downscale upload")
	}
	if resized && c.logger != nil {
		c.logger.Debug("[UploadImage] downscaled upload", "album_id", albumID, "bytes", len(data))
	}

	body, contentType, err := encodeUpload(req, data)
	if err != nil {
		return res, errors.Wrap(err, "encode upload")
	}

	rel := path("albums", albumID, "images")
	httpReq, err := c.newRequest(ctx, http.MethodPost, rel, c.token(), body)
	if err != nil {
		return res, errors.Wrap(err, "upload image")
	}
	httpReq.Header.Set("Content-Type", contentType)
	if err := c.send(httpReq, rel, &res); err != nil {
		return res, errors.Wrap(err, "upload image")
	}
	if res.Image == nil {
		return res, errors.New("upload image: response carried no image")
	}
	return res, nil
}

func encodeUpload(req cl.UploadImageRequest, data []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	name := req.FileName
	if name == "" {
		name = req.Name
	}
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	fields := []struct{ key, value string }{
		{"name", req.Name},
		{"tags", strings.Join(req.Tags, ",")},
		{"person", req.Person},
		{"isFavorite", strconv.FormatBool(req.IsFavorite)},
	}
	for _, f := range fields {
		if err := w.WriteField(f.key, f.value); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// ToggleFavorite flips the favorite flag server side and returns the
// canonical image.
func (c *Client) ToggleFavorite(ctx context.Context, albumID, imageID string) (cl.ImageRes, error) {
	var res cl.ImageRes
	rel := path("albums", albumID, "images", imageID, "favorite")
	if err := c.doJSON(ctx, http.MethodPut, rel, c.token(), nil, &res); err != nil {
		return res, errors.Wrap(err, "toggle favorite")
	}
	if res.Image == nil {
		return res, errors.New("toggle favorite: response carried no image")
	}
	return res, nil
}

func (c *Client) DeleteImage(ctx context.Context, albumID, imageID string) (cl.ImageRes, error) {
	var res cl.ImageRes
	rel := path("albums", albumID, "images", imageID)
	err := c.doJSON(ctx, http.MethodDelete, rel, c.token(), nil, &res)
	return res, errors.Wrap(err, "delete image")
}

func (c *Client) AddComment(ctx context.Context, albumID, imageID string, req cl.AddCommentRequest) (cl.CommentRes, error) {
	var res cl.CommentRes
	rel := path("albums", albumID, "images", imageID, "comments")
	if err := c.doJSON(ctx, http.MethodPost, rel, c.token(), req, &res); err != nil {
		return res, errors.Wrap(err, "add comment")
	}
	if res.Comment == nil {
		return res, errors.New("add comment: response carried no comment")
	}
	return res, nil
}

// SearchImages searches across every album the caller can see.
func (c *Client) SearchImages(ctx context.Context, q cl.SearchQuery) (cl.ListImagesRes, error) {
	var res cl.ListImagesRes
	values := url.Values{}
	if v := strings.TrimSpace(q.Query); v != "" {
		values.Set("query", v)
	}
	if v := strings.TrimSpace(q.Tags); v != "" {
		values.Set("tags", v)
	}
	if v := strings.TrimSpace(q.Person); v != "" {
		values.Set("person", v)
	}
	if q.Favorite {
		values.Set("favorite", "true")
	}
	rel := path("search", "images")
	rel.RawQuery = values.Encode()
	err := c.doJSON(ctx, http.MethodGet, rel, c.token(), nil, &res)
	return res, errors.Wrap(err, "search images")
}
