package state

import (
	"context"
	"strings"

	"photo-albums/internal"
	cl "photo-albums/pkg/catalog"

	"github.com/pkg/errors"
)

const (
	msgFetchImagesFailed  = "Failed to fetch images"
	msgUploadFailed       = "Failed to upload image"
	msgFavoriteFailed     = "Failed to toggle favorite"
	msgDeleteImageFailed  = "Failed to delete image"
	msgCommentFailed      = "Failed to add comment"
	msgSearchFailed       = "Failed to search images"
	msgImageNotInResponse = "response carried no image"
)

// ImagesState is a copy of the image store visible to callers.
type ImagesState struct {
	// AlbumID is the album whose images are loaded.
	AlbumID  string
	Images   []cl.Image
	Results  []cl.Image
	Status   RequestStatus
	Error    string
	Ops      map[OpKey]OpState
	Failures []Failure
}

// Images is the resource store for the images of one album at a time, plus
// the results of the last search.
//
// Favorite toggles are optimistic. Deletes, comments and uploads wait for
// the server. At most one operation per (image, kind) is in flight; a
// second one is rejected with catalog.ErrOperationPending.
type Images struct {
	resource

	api     internal.ImageService
	albumID string
	tags    string
	images  *collection[cl.Image]
	results *collection[cl.Image]
}

func NewImages(api internal.ImageService, opts Options) *Images {
	return &Images{
		resource: newResource(opts),
		api:      api,
		images:   newCollection(cl.Image.Clone),
		results:  newCollection(cl.Image.Clone),
	}
}

// Snapshot returns a copy of the current state.
func (s *Images) Snapshot() ImagesState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := ImagesState{
		AlbumID:  s.albumID,
		Images:   s.images.list(),
		Results:  s.results.list(),
		Ops:      s.ops.snapshot(),
		Failures: s.ops.failures(),
	}
	st.Status, st.Error = s.ops.status()
	return st
}

// Reset forgets every loaded image and search result, e.g. on sign-out.
func (s *Images) Reset() {
	s.mu.Lock()
	s.albumID, s.tags = "", ""
	s.images = newCollection(cl.Image.Clone)
	s.results = newCollection(cl.Image.Clone)
	s.ops = newTracker()
	s.mu.Unlock()
	s.notify()
}

// Visible returns the loaded images that match f, in collection order.
func (s *Images) Visible(f Filter) []cl.Image {
	s.mu.Lock()
	all := s.images.list()
	s.mu.Unlock()
	return FilterImages(all, f)
}

// Uploading reports whether an upload into albumID is in flight.
func (s *Images) Uploading(albumID string) bool {
	return s.Pending(albumID, OpUpload)
}

// Fetch loads the images of albumID, replacing whatever album was loaded.
// tags is an optional comma separated filter applied by the server.
func (s *Images) Fetch(ctx context.Context, albumID, tags string) ([]cl.Image, error) {
	key := OpKey{EntityID: albumID, Kind: OpFetch}
	s.begin(key)
	tctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	res, err := s.api.ListImages(tctx, albumID, tags)
	if err != nil {
		s.reconcile(ctx, err, nil)
		s.fail(key, err, msgFetchImagesFailed)
		return nil, err
	}
	s.succeed(key, func() {
		s.albumID, s.tags = albumID, tags
		s.images.reset(res.Images, imageID)
	})
	return cloneImages(res.Images), nil
}

// Upload sends a new image. Nothing is added locally until the server
// returns the canonical image; Uploading(albumID) reports progress.
func (s *Images) Upload(ctx context.Context, albumID string, req cl.UploadImageRequest) (cl.Image, error) {
	key := OpKey{EntityID: albumID, Kind: OpUpload}
	if req.File == nil {
		s.fail(key, cl.ErrMissingFile, msgUploadFailed)
		return cl.Image{}, errors.Wrap(cl.ErrMissingFile, "upload image")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = req.FileName
	}
	if !s.acquire(key) {
		return cl.Image{}, errors.Wrapf(cl.ErrOperationPending, "upload into %s", albumID)
	}
	tctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	res, err := s.api.UploadImage(tctx, albumID, req)
	if err == nil && res.Image == nil {
		err = errors.New(msgImageNotInResponse)
	}
	if err != nil {
		s.reconcile(ctx, err, nil)
		s.fail(key, err, msgUploadFailed)
		return cl.Image{}, err
	}
	img := *res.Image
	s.succeed(key, func() {
		if s.albumID == albumID {
			s.images.put(img.ID, img.Clone())
		}
	})
	return img.Clone(), nil
}

// ToggleFavorite flips the favorite flag of imageID at once and reconciles
// with the server: the server's value wins on success, the prior value is
// restored on failure. It returns the value left in the store.
func (s *Images) ToggleFavorite(ctx context.Context, albumID, imageID string) (bool, error) {
	c := controller[cl.Image]{mu: &s.mu, items: s.images, ops: &s.ops, changed: s.notify}
	ch := fieldChange[cl.Image, bool]{
		key:      OpKey{EntityID: imageID, Kind: OpFavorite},
		read:     func(img cl.Image) bool { return img.IsFavorite },
		write:    func(img *cl.Image, v bool) { img.IsFavorite = v },
		guess:    func(v bool) bool { return !v },
		fallback: msgFavoriteFailed,
	}
	tctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	fav, issued, err := runOptimistic(tctx, c, ch, func(ctx context.Context) (cl.Image, error) {
		res, err := s.api.ToggleFavorite(ctx, albumID, imageID)
		if err == nil && res.Image == nil {
			err = errors.New(msgImageNotInResponse)
		}
		if err != nil {
			return cl.Image{}, err
		}
		return *res.Image, nil
	})
	if !issued {
		return fav, err
	}
	s.mirror(imageID, func(img *cl.Image) { img.IsFavorite = fav })
	if err != nil {
		s.opts.Logger.Warn("[Images.ToggleFavorite] favorite rolled back", "image_id", imageID, "details", err.Error())
		s.reconcile(ctx, err, s.refetch(albumID))
	}
	return fav, err
}

// Delete removes imageID once the server confirms. Until then the image
// stays visible and Pending(imageID, OpDelete) reports true. On failure the
// album's images are fetched again to reconcile.
func (s *Images) Delete(ctx context.Context, albumID, imageID string) error {
	key := OpKey{EntityID: imageID, Kind: OpDelete}
	if !s.acquire(key) {
		return errors.Wrapf(cl.ErrOperationPending, "delete image %s", imageID)
	}
	tctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	if _, err := s.api.DeleteImage(tctx, albumID, imageID); err != nil {
		if cl.KindOf(err) == cl.KindAuthentication {
			s.reconcile(ctx, err, nil)
		} else {
			s.refetch(albumID)(context.WithoutCancel(ctx))
		}
		s.fail(key, err, msgDeleteImageFailed)
		return err
	}
	s.succeed(key, func() {
		s.images.remove(imageID)
		s.results.remove(imageID)
		for _, kind := range []OpKind{OpFavorite, OpComment} {
			s.ops.reset(OpKey{EntityID: imageID, Kind: kind})
		}
	})
	return nil
}

// AddComment posts a comment and, once the server returns it, appends it to
// imageID. If the image was removed meanwhile nothing is appended and no
// error is reported.
func (s *Images) AddComment(ctx context.Context, albumID, imageID, text string) (cl.Comment, error) {
	key := OpKey{EntityID: imageID, Kind: OpComment}
	text = strings.TrimSpace(text)
	if text == "" {
		s.fail(key, cl.ErrMissingCommentText, msgCommentFailed)
		return cl.Comment{}, errors.Wrap(cl.ErrMissingCommentText, "add comment")
	}
	if !s.acquire(key) {
		return cl.Comment{}, errors.Wrapf(cl.ErrOperationPending, "comment on %s", imageID)
	}
	tctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	res, err := s.api.AddComment(tctx, albumID, imageID, cl.AddCommentRequest{Text: text})
	if err == nil && res.Comment == nil {
		err = errors.New("response carried no comment")
	}
	if err != nil {
		s.reconcile(ctx, err, s.refetch(albumID))
		s.fail(key, err, msgCommentFailed)
		return cl.Comment{}, err
	}
	comment := *res.Comment
	s.succeed(key, func() {
		appendComment := func(img *cl.Image) { img.Comments = append(img.Comments, comment) }
		s.updateLocked(imageID, appendComment)
	})
	return comment, nil
}

// Search runs a server side search; the results replace the previous ones.
func (s *Images) Search(ctx context.Context, q cl.SearchQuery) ([]cl.Image, error) {
	key := OpKey{Kind: OpSearch}
	q.Query = strings.TrimSpace(q.Query)
	q.Tags = strings.TrimSpace(q.Tags)
	q.Person = strings.TrimSpace(q.Person)

	s.begin(key)
	tctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	res, err := s.api.SearchImages(tctx, q)
	if err != nil {
		s.reconcile(ctx, err, nil)
		s.fail(key, err, msgSearchFailed)
		return nil, err
	}
	s.succeed(key, func() { s.results.reset(res.Images, imageID) })
	return cloneImages(res.Images), nil
}

// refetch returns a function that reloads albumID when it is still the
// loaded album.
func (s *Images) refetch(albumID string) func(context.Context) {
	return func(ctx context.Context) {
		s.mu.Lock()
		loaded, tags := s.albumID, s.tags
		s.mu.Unlock()
		if loaded != albumID {
			return
		}
		if _, err := s.Fetch(ctx, albumID, tags); err != nil {
			s.opts.Logger.Warn("[Images.refetch] unable to reconcile images", "album_id", albumID, "details", err.Error())
		}
	}
}

// mirror applies fn to the search result copy of imageID, if any.
func (s *Images) mirror(imageID string, fn func(*cl.Image)) {
	s.mu.Lock()
	img, ok := s.results.get(imageID)
	if ok {
		fn(&img)
		s.results.replace(imageID, img)
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
}

// updateLocked applies fn to every held copy of imageID. s.mu must be held.
func (s *Images) updateLocked(imageID string, fn func(*cl.Image)) {
	for _, c := range []*collection[cl.Image]{s.images, s.results} {
		if img, ok := c.get(imageID); ok {
			img = img.Clone()
			fn(&img)
			c.replace(imageID, img)
		}
	}
}

func imageID(img cl.Image) string { return img.ID }

func cloneImages(in []cl.Image) []cl.Image {
	out := make([]cl.Image, 0, len(in))
	for _, img := range in {
		out = append(out, img.Clone())
	}
	return out
}
