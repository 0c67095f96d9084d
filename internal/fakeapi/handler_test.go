package fakeapi

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cl "photo-albums/pkg/catalog"

	"github.com/google/go-cmp/cmp"
	httputils "github.com/twitsprout/tools/http"
	jsonutils "github.com/twitsprout/tools/json"
	tm "github.com/twitsprout/tools/mock"
	"gopkg.in/guregu/null.v3"
)

var fixedNow = time.Date(2024, 5, 6, 20, 11, 4, 0, time.UTC)

type fixture struct {
	h        *Handler
	jane     string // token
	bob      string // token
	album    cl.Album
	image    cl.Image
	janeUser cl.User
}

// newFixture registers jane and bob; jane owns one album with one image.
func newFixture(t *testing.T) fixture {
	t.Helper()
	m := NewMemory(&tm.Clock{NowFn: func() time.Time { return fixedNow }})
	var f fixture
	var err error
	if f.janeUser, err = m.Register(cl.RegisterRequest{Name: "Jane Doe", Username: "jane", Password: "secret"}); err != nil {
		t.Fatalf("unexpected error registering jane: %s", err.Error())
	}
	if _, err = m.Register(cl.RegisterRequest{Name: "Bob", Username: "bob", Password: "hunter2"}); err != nil {
		t.Fatalf("unexpected error registering bob: %s", err.Error())
	}
	res, _ := m.Login(cl.LoginRequest{Username: "jane", Password: "secret"})
	f.jane = res.Token
	res, _ = m.Login(cl.LoginRequest{Username: "bob", Password: "hunter2"})
	f.bob = res.Token

	if f.album, err = m.CreateAlbum(f.janeUser, cl.CreateAlbumRequest{Name: "Mountains"}); err != nil {
		t.Fatalf("unexpected error creating album: %s", err.Error())
	}
	f.image, err = m.AddImage(f.janeUser, f.album.ID, NewImage{
		Name: "Summit", FileName: "summit.jpg", Tags: []string{"Peak", "snow"}, Size: 4,
	})
	if err != nil {
		t.Fatalf("unexpected error adding image: %s", err.Error())
	}

	f.h = &Handler{AppName: "fakeapi", Version: "test", Logger: tm.NopLogger, Store: m}
	f.h.Handler()
	return f
}

func (f fixture) serve(method, url, token, contentType string, body []byte) *httptest.ResponseRecorder {
	wr := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	f.h.router.ServeHTTP(wr, req)
	return wr
}

func decodeError(t *testing.T, wr *httptest.ResponseRecorder) string {
	t.Helper()
	var res httputils.JSONErrRes
	if err := jsonutils.Decode(wr.Body, &res); err != nil {
		t.Fatalf("unexpected error returned from decoding response body: %s", err.Error())
	}
	return res.Error.Message
}

func TestAlbumHandlers(t *testing.T) {
	table := []struct {
		label   string
		method  string
		url     func(f fixture) string
		token   func(f fixture) string
		body    string
		setup   func(t *testing.T, f fixture)
		expCode int
		expMsg  string
		check   func(t *testing.T, f fixture, wr *httptest.ResponseRecorder)
	}{
		{
			label:   "should reject requests without a token",
			method:  "GET",
			url:     func(f fixture) string { return "/api/albums" },
			token:   func(f fixture) string { return "" },
			expCode: http.StatusUnauthorized,
			expMsg:  "Not authorized, no token",
		},
		{
			label:   "should reject unknown tokens",
			method:  "GET",
			url:     func(f fixture) string { return "/api/albums" },
			token:   func(f fixture) string { return "nope" },
			expCode: http.StatusUnauthorized,
			expMsg:  "Not authorized, token failed",
		},
		{
			label:   "should list the owner's albums",
			method:  "GET",
			url:     func(f fixture) string { return "/api/albums" },
			token:   func(f fixture) string { return f.jane },
			expCode: http.StatusOK,
			check: func(t *testing.T, f fixture, wr *httptest.ResponseRecorder) {
				var res cl.ListAlbumsRes
				if err := jsonutils.Decode(wr.Body, &res); err != nil {
					t.Fatalf("unexpected error returned from decoding response body: %s", err.Error())
				}
				if diff := cmp.Diff(cl.ListAlbumsRes{Albums: []cl.Album{f.album}}, res); diff != "" {
					t.Fatalf("unexpected response returned: %s", diff)
				}
			},
		},
		{
			label:   "should fail if there's an error decoding json",
			method:  "POST",
			url:     func(f fixture) string { return "/api/albums" },
			token:   func(f fixture) string { return f.jane },
			body:    `{badjson`,
			expCode: http.StatusBadRequest,
			expMsg:  "json: invalid character 'b' looking for beginning of object key string: '{badjson'",
		},
		{
			label:   "should fail if the album name is blank",
			method:  "POST",
			url:     func(f fixture) string { return "/api/albums" },
			token:   func(f fixture) string { return f.jane },
			body:    `{"name": "  "}`,
			expCode: http.StatusBadRequest,
			expMsg:  "Album name is required",
		},
		{
			label:   "should create an album",
			method:  "POST",
			url:     func(f fixture) string { return "/api/albums" },
			token:   func(f fixture) string { return f.bob },
			body:    `{"name": "Beach", "description": "Summer"}`,
			expCode: http.StatusCreated,
			check: func(t *testing.T, f fixture, wr *httptest.ResponseRecorder) {
				var res cl.AlbumRes
				if err := jsonutils.Decode(wr.Body, &res); err != nil {
					t.Fatalf("unexpected error returned from decoding response body: %s", err.Error())
				}
				if res.Album == nil || res.Album.ID == "" || res.Album.Name != "Beach" || res.Album.Description != "Summer" {
					t.Fatalf("unexpected album returned: %+v", res.Album)
				}
				if !res.Album.CreatedAt.Equal(fixedNow) {
					t.Fatalf("unexpected createdAt: %s", res.Album.CreatedAt)
				}
			},
		},
		{
			label:   "should hide albums that are not shared with the caller",
			method:  "GET",
			url:     func(f fixture) string { return "/api/albums/" + f.album.ID },
			token:   func(f fixture) string { return f.bob },
			expCode: http.StatusNotFound,
			expMsg:  "Album not found",
		},
		{
			label:   "should forbid updates by non owners of a shared album",
			method:  "PUT",
			url:     func(f fixture) string { return "/api/albums/" + f.album.ID },
			token:   func(f fixture) string { return f.bob },
			body:    `{"name": "Mine now"}`,
			setup: func(t *testing.T, f fixture) {
				if _, err := f.h.Store.ShareAlbum(f.janeUser, f.album.ID, cl.ShareAlbumRequest{Usernames: []string{"bob"}}); err != nil {
					t.Fatalf("unexpected error sharing the album: %s", err.Error())
				}
			},
			expCode: http.StatusForbidden,
			expMsg:  "Only the album owner can do that",
		},
		{
			label:   "should report unknown users when sharing",
			method:  "POST",
			url:     func(f fixture) string { return "/api/albums/" + f.album.ID + "/share" },
			token:   func(f fixture) string { return f.jane },
			body:    `{"usernames": ["bob", "ghost"]}`,
			expCode: http.StatusNotFound,
			expMsg:  "Users not found: ghost",
		},
		{
			label:   "should share with known users and skip the owner",
			method:  "POST",
			url:     func(f fixture) string { return "/api/albums/" + f.album.ID + "/share" },
			token:   func(f fixture) string { return f.jane },
			body:    `{"usernames": ["bob", "jane", "bob"]}`,
			expCode: http.StatusOK,
			check: func(t *testing.T, f fixture, wr *httptest.ResponseRecorder) {
				var res cl.AlbumRes
				if err := jsonutils.Decode(wr.Body, &res); err != nil {
					t.Fatalf("unexpected error returned from decoding response body: %s", err.Error())
				}
				if diff := cmp.Diff([]string{"bob"}, res.Album.SharedWith); diff != "" {
					t.Fatalf("unexpected sharedWith: %s", diff)
				}
				shared := f.serve("GET", "/api/albums/shared", f.bob, "", nil)
				var list cl.ListAlbumsRes
				if err := jsonutils.Decode(shared.Body, &list); err != nil {
					t.Fatalf("unexpected error returned from decoding response body: %s", err.Error())
				}
				if len(list.Albums) != 1 || list.Albums[0].ID != f.album.ID {
					t.Fatalf("expected bob to see the shared album, got %+v", list.Albums)
				}
			},
		},
		{
			label:   "should delete an album and its images",
			method:  "DELETE",
			url:     func(f fixture) string { return "/api/albums/" + f.album.ID },
			token:   func(f fixture) string { return f.jane },
			expCode: http.StatusOK,
			check: func(t *testing.T, f fixture, wr *httptest.ResponseRecorder) {
				var res cl.AlbumRes
				if err := jsonutils.Decode(wr.Body, &res); err != nil {
					t.Fatalf("unexpected error returned from decoding response body: %s", err.Error())
				}
				if diff := cmp.Diff(&cl.Album{ID: f.album.ID}, res.Album); diff != "" {
					t.Fatalf("unexpected response returned: %s", diff)
				}
				if got := f.h.Store.SearchImages(f.janeUser, cl.SearchQuery{}); len(got) != 0 {
					t.Fatalf("expected the album's images to be removed, got %+v", got)
				}
			},
		},
	}
	for i := 0; i < len(table); i++ {
		ts := table[i]
		t.Run(ts.label, func(t *testing.T) {
			f := newFixture(t)
			if ts.setup != nil {
				ts.setup(t, f)
			}
			ct := ""
			if ts.body != "" {
				ct = "application/json"
			}
			wr := f.serve(ts.method, ts.url(f), ts.token(f), ct, []byte(ts.body))

			if wr.Code != ts.expCode {
				t.Fatalf("unexpected response code returned: %s %s", cmp.Diff(ts.expCode, wr.Code), decodeError(t, wr))
			}
			if ts.expMsg != "" {
				if msg := decodeError(t, wr); msg != ts.expMsg {
					t.Fatalf("unexpected error message returned: %s", cmp.Diff(ts.expMsg, msg))
				}
			}
			if ts.check != nil {
				ts.check(t, f, wr)
			}
		})
	}
}

func uploadBody(t *testing.T, fields map[string]string, file []byte) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("unexpected error writing field: %s", err.Error())
		}
	}
	if file != nil {
		fw, err := mw.CreateFormFile("file", "lake.png")
		if err != nil {
			t.Fatalf("unexpected error creating file part: %s", err.Error())
		}
		_, _ = fw.Write(file)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("unexpected error closing multipart writer: %s", err.Error())
	}
	return mw.FormDataContentType(), buf.Bytes()
}

func TestUploadImage(t *testing.T) {
	table := []struct {
		label   string
		fields  map[string]string
		file    []byte
		expCode int
		expMsg  string
		expImg  cl.Image
	}{
		{
			label:   "should fail without a file part",
			fields:  map[string]string{"name": "Lake"},
			expCode: http.StatusBadRequest,
			expMsg:  "[parseUploadImageRequest] file must be provided",
		},
		{
			label:   "should fail if isFavorite is not a boolean",
			fields:  map[string]string{"isFavorite": "maybe"},
			file:    []byte("png!"),
			expCode: http.StatusBadRequest,
			expMsg:  "[parseUploadImageRequest] isFavorite must be a boolean",
		},
		{
			label:   "should fall back to the file name",
			file:    []byte("png!"),
			expCode: http.StatusCreated,
			expImg:  cl.Image{Name: "lake.png", Tags: []string{}, Size: 4},
		},
		{
			label: "should store every form field",
			fields: map[string]string{
				"name":       "Lake",
				"tags":       "water, blue ,,",
				"person":     " Ann ",
				"isFavorite": "true",
			},
			file:    []byte("png!!"),
			expCode: http.StatusCreated,
			expImg: cl.Image{
				Name:       "Lake",
				Tags:       []string{"water", "blue"},
				Person:     null.StringFrom("Ann"),
				IsFavorite: true,
				Size:       5,
			},
		},
	}
	for i := 0; i < len(table); i++ {
		ts := table[i]
		t.Run(ts.label, func(t *testing.T) {
			f := newFixture(t)
			ct, body := uploadBody(t, ts.fields, ts.file)
			wr := f.serve("POST", "/api/albums/"+f.album.ID+"/images", f.jane, ct, body)

			if wr.Code != ts.expCode {
				t.Fatalf("unexpected response code returned: %s %s", cmp.Diff(ts.expCode, wr.Code), decodeError(t, wr))
			}
			if ts.expMsg != "" {
				if msg := decodeError(t, wr); msg != ts.expMsg {
					t.Fatalf("unexpected error message returned: %s", cmp.Diff(ts.expMsg, msg))
				}
				return
			}
			var res cl.ImageRes
			if err := jsonutils.Decode(wr.Body, &res); err != nil {
				t.Fatalf("unexpected error returned from decoding response body: %s", err.Error())
			}
			got := *res.Image
			if got.ID == "" || got.AlbumID != f.album.ID || !strings.HasSuffix(got.FileURL, "/lake.png") {
				t.Fatalf("unexpected server assigned fields: %+v", got)
			}
			exp := ts.expImg
			exp.ID, exp.AlbumID, exp.FileURL = got.ID, got.AlbumID, got.FileURL
			exp.UploadedAt = fixedNow
			exp.Comments = []cl.Comment{}
			if diff := cmp.Diff(exp, got); diff != "" {
				t.Fatalf("unexpected image returned: %s", diff)
			}
		})
	}
}

func TestImageHandlers(t *testing.T) {
	f := newFixture(t)
	base := "/api/albums/" + f.album.ID + "/images/" + f.image.ID

	wr := f.serve("PUT", base+"/favorite", f.jane, "", nil)
	var img cl.ImageRes
	if err := jsonutils.Decode(wr.Body, &img); err != nil || wr.Code != http.StatusOK {
		t.Fatalf("unexpected toggle response %d: %v", wr.Code, err)
	}
	if !img.Image.IsFavorite {
		t.Fatalf("expected the image to become a favorite")
	}

	wr = f.serve("POST", base+"/comments", f.jane, "application/json", []byte(`{"text": "  "}`))
	if wr.Code != http.StatusBadRequest || decodeError(t, wr) != "Comment text is required" {
		t.Fatalf("expected blank comments to be rejected, got %d", wr.Code)
	}
	wr = f.serve("POST", base+"/comments", f.jane, "application/json", []byte(`{"text": " Wow "}`))
	var com cl.CommentRes
	if err := jsonutils.Decode(wr.Body, &com); err != nil || wr.Code != http.StatusCreated {
		t.Fatalf("unexpected comment response %d: %v", wr.Code, err)
	}
	exp := &cl.Comment{Author: "jane", Text: "Wow", CreatedAt: fixedNow}
	if diff := cmp.Diff(exp, com.Comment); diff != "" {
		t.Fatalf("unexpected comment returned: %s", diff)
	}

	table := []struct {
		label  string
		url    string
		expIDs []string
	}{
		{label: "tag substring", url: "/api/search/images?tags=pea", expIDs: []string{f.image.ID}},
		{label: "favorites only", url: "/api/search/images?favorite=true", expIDs: []string{f.image.ID}},
		{label: "query on name", url: "/api/search/images?query=SUMM", expIDs: []string{f.image.ID}},
		{label: "no match", url: "/api/search/images?person=ann", expIDs: []string{}},
		{label: "album listing by tag", url: "/api/albums/" + f.album.ID + "/images?tags=snow", expIDs: []string{f.image.ID}},
		{label: "album listing without match", url: "/api/albums/" + f.album.ID + "/images?tags=sand", expIDs: []string{}},
	}
	for _, ts := range table {
		t.Run(ts.label, func(t *testing.T) {
			wr := f.serve("GET", ts.url, f.jane, "", nil)
			var res cl.ListImagesRes
			if err := jsonutils.Decode(wr.Body, &res); err != nil || wr.Code != http.StatusOK {
				t.Fatalf("unexpected search response %d: %v", wr.Code, err)
			}
			ids := []string{}
			for _, img := range res.Images {
				ids = append(ids, img.ID)
			}
			if diff := cmp.Diff(ts.expIDs, ids); diff != "" {
				t.Fatalf("unexpected images: %s", diff)
			}
		})
	}

	wr = f.serve("DELETE", base, f.bob, "", nil)
	if wr.Code != http.StatusNotFound {
		t.Fatalf("expected bob not to see jane's image, got %d", wr.Code)
	}
	wr = f.serve("DELETE", base, f.jane, "", nil)
	if wr.Code != http.StatusOK {
		t.Fatalf("unexpected delete response %d: %s", wr.Code, decodeError(t, wr))
	}
	wr = f.serve("DELETE", base, f.jane, "", nil)
	if wr.Code != http.StatusNotFound || decodeError(t, wr) != "Image not found" {
		t.Fatalf("expected a second delete to be a 404, got %d", wr.Code)
	}
}

func TestAuthHandlers(t *testing.T) {
	f := newFixture(t)

	wr := f.serve("POST", "/api/auth/register", "", "application/json", []byte(`{"name": "J", "username": "jane", "password": "x"}`))
	if wr.Code != http.StatusConflict || decodeError(t, wr) != "Username already exists" {
		t.Fatalf("expected a duplicate username to conflict, got %d", wr.Code)
	}
	wr = f.serve("POST", "/api/auth/login", "", "application/json", []byte(`{"username": "jane", "password": "wrong"}`))
	if wr.Code != http.StatusUnauthorized || decodeError(t, wr) != "Invalid credentials" {
		t.Fatalf("expected bad credentials to be rejected, got %d", wr.Code)
	}

	wr = f.serve("GET", "/api/auth/me", f.jane, "", nil)
	var me cl.UserRes
	if err := jsonutils.Decode(wr.Body, &me); err != nil || wr.Code != http.StatusOK {
		t.Fatalf("unexpected me response %d: %v", wr.Code, err)
	}
	if diff := cmp.Diff(&f.janeUser, me.User); diff != "" {
		t.Fatalf("unexpected user: %s", diff)
	}

	wr = f.serve("PUT", "/api/profile/password", f.jane, "application/json", []byte(`{"currentPassword": "nope", "newPassword": "n"}`))
	if wr.Code != http.StatusBadRequest || decodeError(t, wr) != "Current password is incorrect" {
		t.Fatalf("expected a wrong current password to be rejected, got %d", wr.Code)
	}

	wr = f.serve("POST", "/api/auth/logout", f.jane, "", nil)
	if wr.Code != http.StatusOK {
		t.Fatalf("unexpected logout response %d", wr.Code)
	}
	wr = f.serve("GET", "/api/auth/me", f.jane, "", nil)
	if wr.Code != http.StatusUnauthorized {
		t.Fatalf("expected the token to be revoked, got %d", wr.Code)
	}
}

func TestVersionAndNotFound(t *testing.T) {
	f := newFixture(t)
	if wr := f.serve("GET", "/version", "", "", nil); wr.Code != http.StatusOK {
		t.Fatalf("unexpected version response %d", wr.Code)
	}
	if wr := f.serve("GET", "/api/nothing", f.jane, "", nil); wr.Code != http.StatusNotFound {
		t.Fatalf("unexpected response for an unknown route %d", wr.Code)
	}
}
