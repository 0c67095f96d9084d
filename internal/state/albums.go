package state

import (
	"context"
	"strings"

	"photo-albums/internal"
	cl "photo-albums/pkg/catalog"

	"github.com/pkg/errors"
)

const (
	msgListAlbumsFailed   = "Failed to fetch albums"
	msgListSharedFailed   = "Failed to fetch shared albums"
	msgFetchAlbumFailed   = "Failed to fetch album"
	msgCreateAlbumFailed  = "Failed to create album"
	msgUpdateAlbumFailed  = "Failed to update album"
	msgDeleteAlbumFailed  = "Failed to delete album"
	msgShareAlbumFailed   = "Failed to share album"
	msgAlbumNotInResponse = "response carried no album"
)

// AlbumsState is a copy of the album store visible to callers.
type AlbumsState struct {
	Albums   []cl.Album
	Shared   []cl.Album
	Details  map[string]cl.Album
	Status   RequestStatus
	Error    string
	Ops      map[OpKey]OpState
	Failures []Failure
}

// Albums is the resource store for the caller's albums, the albums shared
// with the caller and the album details fetched one by one.
//
// Mutations are not optimistic: the store changes only once the server has
// answered, and a failure never clears data loaded earlier.
type Albums struct {
	resource

	api     internal.AlbumService
	mine    *collection[cl.Album]
	shared  *collection[cl.Album]
	details map[string]cl.Album
}

func NewAlbums(api internal.AlbumService, opts Options) *Albums {
	return &Albums{
		resource: newResource(opts),
		api:      api,
		mine:     newCollection(cl.Album.Clone),
		shared:   newCollection(cl.Album.Clone),
		details:  make(map[string]cl.Album),
	}
}

// Snapshot returns a copy of the current state.
func (s *Albums) Snapshot() AlbumsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := AlbumsState{
		Albums:   s.mine.list(),
		Shared:   s.shared.list(),
		Details:  make(map[string]cl.Album, len(s.details)),
		Ops:      s.ops.snapshot(),
		Failures: s.ops.failures(),
	}
	st.Status, st.Error = s.ops.status()
	for id, a := range s.details {
		st.Details[id] = a.Clone()
	}
	return st
}

// Reset drops every album the store holds.
func (s *Albums) Reset() {
	s.mu.Lock()
	s.mine = newCollection(cl.Album.Clone)
	s.shared = newCollection(cl.Album.Clone)
	s.details = make(map[string]cl.Album)
	s.ops = newTracker()
	s.mu.Unlock()
	s.notify()
}

// ListMine replaces the owned albums with the server's list.
func (s *Albums) ListMine(ctx context.Context) ([]cl.Album, error) {
	key := OpKey{Kind: OpList}
	s.begin(key)
	tctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	res, err := s.api.ListAlbums(tctx)
	if err != nil {
		s.reconcile(ctx, err, nil)
		s.fail(key, err, msgListAlbumsFailed)
		return nil, err
	}
	s.succeed(key, func() { s.mine.reset(res.Albums, albumID) })
	return cloneAlbums(res.Albums), nil
}

// ListShared replaces the albums shared with the caller.
func (s *Albums) ListShared(ctx context.Context) ([]cl.Album, error) {
	key := OpKey{Kind: OpListShared}
	s.begin(key)
	tctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	res, err := s.api.ListSharedAlbums(tctx)
	if err != nil {
		s.reconcile(ctx, err, nil)
		s.fail(key, err, msgListSharedFailed)
		return nil, err
	}
	s.succeed(key, func() { s.shared.reset(res.Albums, albumID) })
	return cloneAlbums(res.Albums), nil
}

// Fetch loads one album into Details and refreshes any listed copy of it.
func (s *Albums) Fetch(ctx context.Context, id string) (cl.Album, error) {
	key := OpKey{EntityID: id, Kind: OpFetch}
	s.begin(key)
	tctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	res, err := s.api.GetAlbum(tctx, id)
	if err == nil && res.Album == nil {
		err = errors.New(msgAlbumNotInResponse)
	}
	if err != nil {
		s.reconcile(ctx, err, s.refresh)
		s.fail(key, err, msgFetchAlbumFailed)
		return cl.Album{}, err
	}
	album := *res.Album
	s.succeed(key, func() {
		s.details[id] = album.Clone()
		s.mergeLocked(album)
	})
	return album.Clone(), nil
}

// Create adds an album. The canonical record returned by the server is
// appended to the owned albums.
func (s *Albums) Create(ctx context.Context, req cl.CreateAlbumRequest) (cl.Album, error) {
	key := OpKey{Kind: OpCreate}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		s.fail(key, cl.ErrMissingName, msgCreateAlbumFailed)
		return cl.Album{}, errors.Wrap(cl.ErrMissingName, "create album")
	}

	s.begin(key)
	tctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	res, err := s.api.CreateAlbum(tctx, req)
	if err == nil && res.Album == nil {
		err = errors.New(msgAlbumNotInResponse)
	}
	if err != nil {
		s.reconcile(ctx, err, nil)
		s.fail(key, err, msgCreateAlbumFailed)
		return cl.Album{}, err
	}
	album := *res.Album
	s.succeed(key, func() { s.mine.put(album.ID, album.Clone()) })
	return album.Clone(), nil
}

// Update applies a partial update and merges the canonical record wherever
// the album is held, keeping its position in each list.
func (s *Albums) Update(ctx context.Context, id string, req cl.UpdateAlbumRequest) (cl.Album, error) {
	key := OpKey{EntityID: id, Kind: OpUpdate}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			s.fail(key, cl.ErrMissingName, msgUpdateAlbumFailed)
			return cl.Album{}, errors.Wrap(cl.ErrMissingName, "update album")
		}
		req.Name = &name
	}
	if !s.acquire(key) {
		return cl.Album{}, errors.Wrapf(cl.ErrOperationPending, "update album %s", id)
	}
	tctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	res, err := s.api.UpdateAlbum(tctx, id, req)
	if err == nil && res.Album == nil {
		err = errors.New(msgAlbumNotInResponse)
	}
	if err != nil {
		s.reconcile(ctx, err, s.refresh)
		s.fail(key, err, msgUpdateAlbumFailed)
		return cl.Album{}, err
	}
	album := *res.Album
	s.succeed(key, func() { s.mergeLocked(album) })
	return album.Clone(), nil
}

// Delete removes the album once the server confirms. Until then the album
// stays listed and Pending(id, OpDelete) reports true.
func (s *Albums) Delete(ctx context.Context, id string) error {
	key := OpKey{EntityID: id, Kind: OpDelete}
	if !s.acquire(key) {
		return errors.Wrapf(cl.ErrOperationPending, "delete album %s", id)
	}
	tctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	if _, err := s.api.DeleteAlbum(tctx, id); err != nil {
		s.reconcile(ctx, err, s.refresh)
		s.fail(key, err, msgDeleteAlbumFailed)
		return err
	}
	s.succeed(key, func() {
		s.mine.remove(id)
		s.shared.remove(id)
		delete(s.details, id)
		for _, kind := range []OpKind{OpFetch, OpUpdate, OpShare} {
			s.ops.reset(OpKey{EntityID: id, Kind: kind})
		}
	})
	return nil
}

// Share grants the users named in input access to the album. input is free
// text; see NormalizeUsernames. The returned sharedWith set replaces the
// stored one.
func (s *Albums) Share(ctx context.Context, id, input string) (cl.Album, error) {
	key := OpKey{EntityID: id, Kind: OpShare}
	usernames := NormalizeUsernames(input)
	if len(usernames) == 0 {
		s.fail(key, cl.ErrMissingUsernames, msgShareAlbumFailed)
		return cl.Album{}, errors.Wrap(cl.ErrMissingUsernames, "share album")
	}
	if !s.acquire(key) {
		return cl.Album{}, errors.Wrapf(cl.ErrOperationPending, "share album %s", id)
	}
	tctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	res, err := s.api.ShareAlbum(tctx, id, cl.ShareAlbumRequest{Usernames: usernames})
	if err == nil && res.Album == nil {
		err = errors.New(msgAlbumNotInResponse)
	}
	if err != nil {
		s.reconcile(ctx, err, s.refresh)
		s.fail(key, err, msgShareAlbumFailed)
		return cl.Album{}, err
	}
	sharedWith := append([]string(nil), res.Album.SharedWith...)
	s.succeed(key, func() {
		set := func(a *cl.Album) { a.SharedWith = append([]string(nil), sharedWith...) }
		s.updateLocked(id, set)
	})
	return res.Album.Clone(), nil
}

// refresh re-reads the owned albums after the server reported one missing.
func (s *Albums) refresh(ctx context.Context) {
	if _, err := s.ListMine(ctx); err != nil {
		s.opts.Logger.Warn("[Albums.refresh] unable to reconcile albums", "details", err.Error())
	}
}

// mergeLocked overwrites every held copy of album. s.mu must be held.
func (s *Albums) mergeLocked(album cl.Album) {
	s.updateLocked(album.ID, func(a *cl.Album) { *a = album.Clone() })
}

// updateLocked applies fn to every held copy of the album id. s.mu must be
// held.
func (s *Albums) updateLocked(id string, fn func(*cl.Album)) {
	for _, c := range []*collection[cl.Album]{s.mine, s.shared} {
		if a, ok := c.get(id); ok {
			fn(&a)
			c.replace(id, a)
		}
	}
	if a, ok := s.details[id]; ok {
		fn(&a)
		s.details[id] = a
	}
}

func albumID(a cl.Album) string { return a.ID }

func cloneAlbums(in []cl.Album) []cl.Album {
	out := make([]cl.Album, 0, len(in))
	for _, a := range in {
		out = append(out, a.Clone())
	}
	return out
}
