package fakeapi

import (
	"net/http"
	"strings"
	"sync"

	cl "photo-albums/pkg/catalog"

	"github.com/google/uuid"
	"github.com/twitsprout/tools/clock"
	"gopkg.in/guregu/null.v3"
)

// apiError is a failure with the status code the API answers with.
type apiError struct {
	Code    int
	Message string
}

func (e *apiError) Error() string { return e.Message }

func badRequest(msg string) error   { return &apiError{Code: http.StatusBadRequest, Message: msg} }
func unauthorized(msg string) error { return &apiError{Code: http.StatusUnauthorized, Message: msg} }
func forbidden(msg string) error    { return &apiError{Code: http.StatusForbidden, Message: msg} }
func notFound(msg string) error     { return &apiError{Code: http.StatusNotFound, Message: msg} }
func conflict(msg string) error     { return &apiError{Code: http.StatusConflict, Message: msg} }

type account struct {
	user     cl.User
	password string
}

// Memory holds the state of the fake API. It is a development stub: nothing
// is persisted and passwords are kept as given.
type Memory struct {
	mu     sync.Mutex
	clock  clock.Clock
	users  map[string]*account // by username
	tokens map[string]string   // token to username
	albums map[string]*cl.Album
	images map[string]*cl.Image
	// Creation order, for stable listings.
	albumOrder []string
	imageOrder []string
}

// NewMemory returns an empty Memory.
func NewMemory(c clock.Clock) *Memory {
	if c == nil {
		c = &clock.Default{}
	}
	return &Memory{
		clock:  c,
		users:  make(map[string]*account),
		tokens: make(map[string]string),
		albums: make(map[string]*cl.Album),
		images: make(map[string]*cl.Image),
	}
}

func (m *Memory) Register(req cl.RegisterRequest) (cl.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)
	if req.Name == "" || req.Username == "" || req.Password == "" {
		return cl.User{}, badRequest("Name, username and password are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[req.Username]; ok {
		return cl.User{}, conflict("Username already exists")
	}
	u := cl.User{ID: uuid.NewString(), Name: req.Name, Username: req.Username}
	m.users[req.Username] = &account{user: u, password: req.Password}
	return u, nil
}

func (m *Memory) Login(req cl.LoginRequest) (cl.LoginRes, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.users[strings.TrimSpace(req.Username)]
	if !ok || acc.password != req.Password {
		return cl.LoginRes{}, unauthorized("Invalid credentials")
	}
	token := uuid.NewString()
	m.tokens[token] = acc.user.Username
	u := acc.user
	return cl.LoginRes{Token: token, User: &u}, nil
}

func (m *Memory) Logout(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
}

// Authenticate returns the user holding token.
func (m *Memory) Authenticate(token string) (cl.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	username, ok := m.tokens[token]
	if !ok {
		return cl.User{}, unauthorized("Not authorized, token failed")
	}
	return m.users[username].user, nil
}

func (m *Memory) UpdateProfile(caller cl.User, req cl.UpdateProfileRequest) (cl.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return cl.User{}, badRequest("Name is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.users[caller.Username]
	acc.user.Name = name
	if pic := strings.TrimSpace(req.ProfilePicture); pic != "" {
		acc.user.ProfilePicture = null.StringFrom(pic)
	}
	return acc.user, nil
}

func (m *Memory) UpdatePassword(caller cl.User, req cl.UpdatePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return badRequest("Current and new password are required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc := m.users[caller.Username]
	if acc.password != req.CurrentPassword {
		return badRequest("Current password is incorrect")
	}
	acc.password = req.NewPassword
	return nil
}

func (m *Memory) ListAlbums(caller cl.User) []cl.Album {
	return m.listAlbums(func(a *cl.Album) bool { return a.OwnerID == caller.ID })
}

func (m *Memory) ListSharedAlbums(caller cl.User) []cl.Album {
	return m.listAlbums(func(a *cl.Album) bool { return contains(a.SharedWith, caller.Username) })
}

func (m *Memory) listAlbums(keep func(*cl.Album) bool) []cl.Album {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []cl.Album{}
	for _, id := range m.albumOrder {
		if a := m.albums[id]; keep(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}

func (m *Memory) CreateAlbum(caller cl.User, req cl.CreateAlbumRequest) (cl.Album, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return cl.Album{}, badRequest("Album name is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a := &cl.Album{
		ID:            uuid.NewString(),
		Name:          name,
		Description:   req.Description,
		CoverImageURL: req.CoverImageURL,
		OwnerID:       caller.ID,
		SharedWith:    []string{},
		CreatedAt:     m.clock.Now(),
	}
	m.albums[a.ID] = a
	m.albumOrder = append(m.albumOrder, a.ID)
	return a.Clone(), nil
}

func (m *Memory) GetAlbum(caller cl.User, id string) (cl.Album, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, err := m.readableLocked(caller, id)
	if err != nil {
		return cl.Album{}, err
	}
	return a.Clone(), nil
}

func (m *Memory) UpdateAlbum(caller cl.User, id string, req cl.UpdateAlbumRequest) (cl.Album, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, err := m.ownedLocked(caller, id)
	if err != nil {
		return cl.Album{}, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return cl.Album{}, badRequest("Album name is required")
		}
		a.Name = name
	}
	if req.Description != nil {
		a.Description = *req.Description
	}
	if req.CoverImageURL != nil {
		a.CoverImageURL = null.NewString(*req.CoverImageURL, *req.CoverImageURL != "")
	}
	return a.Clone(), nil
}

func (m *Memory) DeleteAlbum(caller cl.User, id string) (cl.Album, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, err := m.ownedLocked(caller, id)
	if err != nil {
		return cl.Album{}, err
	}
	delete(m.albums, id)
	m.albumOrder = without(m.albumOrder, id)
	for _, imgID := range append([]string(nil), m.imageOrder...) {
		if m.images[imgID].AlbumID == id {
			delete(m.images, imgID)
			m.imageOrder = without(m.imageOrder, imgID)
		}
	}
	return cl.Album{ID: a.ID}, nil
}

// ShareAlbum adds usernames to the album's sharedWith set. Unknown users are
// rejected as a whole; the owner and existing members are skipped.
func (m *Memory) ShareAlbum(caller cl.User, id string, req cl.ShareAlbumRequest) (cl.Album, error) {
	if len(req.Usernames) == 0 {
		return cl.Album{}, badRequest("At least one username is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a, err := m.ownedLocked(caller, id)
	if err != nil {
		return cl.Album{}, err
	}
	var unknown []string
	for _, name := range req.Usernames {
		if _, ok := m.users[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return cl.Album{}, notFound("Users not found: " + strings.Join(unknown, ", "))
	}
	for _, name := range req.Usernames {
		if name == caller.Username || contains(a.SharedWith, name) {
			continue
		}
		a.SharedWith = append(a.SharedWith, name)
	}
	return a.Clone(), nil
}

// ListImages returns the album's images; tags keeps images carrying any of
// the comma separated tags.
func (m *Memory) ListImages(caller cl.User, albumID, tags string) ([]cl.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.readableLocked(caller, albumID); err != nil {
		return nil, err
	}
	want := splitTags(tags)
	out := []cl.Image{}
	for _, id := range m.imageOrder {
		img := m.images[id]
		if img.AlbumID != albumID {
			continue
		}
		if len(want) > 0 && !anyTag(img.Tags, want) {
			continue
		}
		out = append(out, img.Clone())
	}
	return out, nil
}

// NewImage describes an uploaded file.
type NewImage struct {
	Name       string
	FileName   string
	Tags       []string
	Person     string
	IsFavorite bool
	Size       int64
}

func (m *Memory) AddImage(caller cl.User, albumID string, n NewImage) (cl.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.readableLocked(caller, albumID); err != nil {
		return cl.Image{}, err
	}
	name := strings.TrimSpace(n.Name)
	if name == "" {
		name = n.FileName
	}
	img := &cl.Image{
		ID:         uuid.NewString(),
		AlbumID:    albumID,
		Name:       name,
		Tags:       n.Tags,
		Person:     null.NewString(n.Person, n.Person != ""),
		IsFavorite: n.IsFavorite,
		Size:       n.Size,
		UploadedAt: m.clock.Now(),
		Comments:   []cl.Comment{},
	}
	if img.Tags == nil {
		img.Tags = []string{}
	}
	img.FileURL = "/uploads/" + img.ID + "/" + n.FileName
	m.images[img.ID] = img
	m.imageOrder = append(m.imageOrder, img.ID)
	return img.Clone(), nil
}

func (m *Memory) ToggleFavorite(caller cl.User, albumID, imageID string) (cl.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	img, err := m.imageLocked(caller, albumID, imageID)
	if err != nil {
		return cl.Image{}, err
	}
	img.IsFavorite = !img.IsFavorite
	return img.Clone(), nil
}

func (m *Memory) DeleteImage(caller cl.User, albumID, imageID string) (cl.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.ownedLocked(caller, albumID); err != nil {
		return cl.Image{}, err
	}
	img, err := m.imageLocked(caller, albumID, imageID)
	if err != nil {
		return cl.Image{}, err
	}
	delete(m.images, imageID)
	m.imageOrder = without(m.imageOrder, imageID)
	return cl.Image{ID: img.ID, AlbumID: img.AlbumID}, nil
}

func (m *Memory) AddComment(caller cl.User, albumID, imageID string, req cl.AddCommentRequest) (cl.Comment, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return cl.Comment{}, badRequest("Comment text is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	img, err := m.imageLocked(caller, albumID, imageID)
	if err != nil {
		return cl.Comment{}, err
	}
	c := cl.Comment{Author: caller.Username, Text: text, CreatedAt: m.clock.Now()}
	img.Comments = append(img.Comments, c)
	return c, nil
}

// SearchImages looks through every album the caller can read.
func (m *Memory) SearchImages(caller cl.User, q cl.SearchQuery) []cl.Image {
	m.mu.Lock()
	defer m.mu.Unlock()
	query := strings.ToLower(strings.TrimSpace(q.Query))
	person := strings.ToLower(strings.TrimSpace(q.Person))
	tags := splitTags(q.Tags)

	out := []cl.Image{}
	for _, id := range m.imageOrder {
		img := m.images[id]
		if _, err := m.readableLocked(caller, img.AlbumID); err != nil {
			continue
		}
		if q.Favorite && !img.IsFavorite {
			continue
		}
		if person != "" && !strings.Contains(strings.ToLower(img.Person.String), person) {
			continue
		}
		if len(tags) > 0 && !anyTag(img.Tags, tags) {
			continue
		}
		if query != "" && !matchesQuery(img, query) {
			continue
		}
		out = append(out, img.Clone())
	}
	return out
}

// readableLocked returns the album when the caller owns it or it is shared
// with them. m.mu must be held.
func (m *Memory) readableLocked(caller cl.User, id string) (*cl.Album, error) {
	a, ok := m.albums[id]
	if !ok {
		return nil, notFound("Album not found")
	}
	if a.OwnerID != caller.ID && !contains(a.SharedWith, caller.Username) {
		return nil, notFound("Album not found")
	}
	return a, nil
}

// ownedLocked returns the album when the caller owns it. m.mu must be held.
func (m *Memory) ownedLocked(caller cl.User, id string) (*cl.Album, error) {
	a, err := m.readableLocked(caller, id)
	if err != nil {
		return nil, err
	}
	if a.OwnerID != caller.ID {
		return nil, forbidden("Only the album owner can do that")
	}
	return a, nil
}

func (m *Memory) imageLocked(caller cl.User, albumID, imageID string) (*cl.Image, error) {
	if _, err := m.readableLocked(caller, albumID); err != nil {
		return nil, err
	}
	img, ok := m.images[imageID]
	if !ok || img.AlbumID != albumID {
		return nil, notFound("Image not found")
	}
	return img, nil
}

func matchesQuery(img *cl.Image, q string) bool {
	if strings.Contains(strings.ToLower(img.Name), q) || strings.Contains(strings.ToLower(img.Person.String), q) {
		return true
	}
	return anyTag(img.Tags, []string{q})
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func anyTag(tags, want []string) bool {
	for _, t := range tags {
		for _, w := range want {
			if strings.Contains(strings.ToLower(t), w) {
				return true
			}
		}
	}
	return false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func without(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
