package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"photo-albums/internal/state"
	cl "photo-albums/pkg/catalog"

	"github.com/pkg/errors"
	jsonutils "github.com/twitsprout/tools/json"
)

const usage = `usage: photo-albums <command> [flags] [args]

commands:
  register <name> <username> <password>
  login <username> <password>
  logout
  me
  albums | shared
  album <id>
  create-album [-description d] <name>
  rename-album <id> <name>
  delete-album <id>
  share <id> <usernames...>
  images [-tags t] <albumID>
  upload [-name n] [-tags a,b] [-person p] [-favorite] <albumID> <file>
  favorite <albumID> <imageID>
  delete-image <albumID> <imageID>
  comment <albumID> <imageID> <text...>
  search [-tags t] [-person p] [-favorite] [query]
  profile
  update-profile [-picture url] <name>
  password <current> <new>
  storage-keys
`

var errUsage = errors.New("invalid arguments")

type command struct {
	auth bool
	run  func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"register":       {run: (*app).register},
	"login":          {run: (*app).login},
	"logout":         {run: (*app).logout},
	"storage-keys":   {run: (*app).storageKeys},
	"me":             {auth: true, run: (*app).me},
	"albums":         {auth: true, run: (*app).listAlbums},
	"shared":         {auth: true, run: (*app).listShared},
	"album":          {auth: true, run: (*app).album},
	"create-album":   {auth: true, run: (*app).createAlbum},
	"rename-album":   {auth: true, run: (*app).renameAlbum},
	"delete-album":   {auth: true, run: (*app).deleteAlbum},
	"share":          {auth: true, run: (*app).share},
	"images":         {auth: true, run: (*app).listImages},
	"upload":         {auth: true, run: (*app).upload},
	"favorite":       {auth: true, run: (*app).favorite},
	"delete-image":   {auth: true, run: (*app).deleteImage},
	"comment":        {auth: true, run: (*app).comment},
	"search":         {auth: true, run: (*app).search},
	"profile":        {auth: true, run: (*app).showProfile},
	"update-profile": {auth: true, run: (*app).updateProfile},
	"password":       {auth: true, run: (*app).password},
}

// run restores the persisted session and executes one command.
func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprint(os.Stderr, usage)
		return errors.Errorf("unknown command %q", args[0])
	}
	if err := a.session.Rehydrate(ctx); err != nil {
		return err
	}
	if cmd.auth && !a.session.Snapshot().Authenticated {
		return errors.New("not logged in")
	}
	return cmd.run(a, ctx, args[1:])
}

func printJSON(v interface{}) error {
	return jsonutils.Encode(os.Stdout, v, "  ")
}

func want(args []string, n int) error {
	if len(args) < n {
		fmt.Fprint(os.Stderr, usage)
		return errUsage
	}
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	if err := want(args, 3); err != nil {
		return err
	}
	u, err := a.session.Register(ctx, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	return printJSON(u)
}

func (a *app) login(ctx context.Context, args []string) error {
	if err := want(args, 2); err != nil {
		return err
	}
	if err := a.session.Login(ctx, args[0], args[1]); err != nil {
		return errors.New(a.session.Snapshot().Error)
	}
	return printJSON(a.session.Snapshot().User)
}

func (a *app) logout(ctx context.Context, args []string) error {
	a.session.Logout(ctx)
	return nil
}

func (a *app) storageKeys(ctx context.Context, args []string) error {
	keys, err := a.storage.Keys(ctx)
	if err != nil {
		return err
	}
	return printJSON(keys)
}

// me validates the persisted token and prints the merged identity.
func (a *app) me(ctx context.Context, args []string) error {
	if _, err := a.session.FetchCurrentUser(ctx); err != nil {
		return errors.New(a.session.Snapshot().Error)
	}
	var profile *cl.User
	if u, err := a.profile.Fetch(ctx); err == nil {
		profile = &u
	}
	return printJSON(state.CurrentUser(a.session.Snapshot().User, profile))
}

func (a *app) listAlbums(ctx context.Context, args []string) error {
	albums, err := a.albums.ListMine(ctx)
	if err != nil {
		return err
	}
	return printJSON(albums)
}

func (a *app) listShared(ctx context.Context, args []string) error {
	albums, err := a.albums.ListShared(ctx)
	if err != nil {
		return err
	}
	return printJSON(albums)
}

func (a *app) album(ctx context.Context, args []string) error {
	if err := want(args, 1); err != nil {
		return err
	}
	album, err := a.albums.Fetch(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(album)
}

func (a *app) createAlbum(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-album", flag.ContinueOnError)
	description := fs.String("description", "", "album description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := want(fs.Args(), 1); err != nil {
		return err
	}
	album, err := a.albums.Create(ctx, cl.CreateAlbumRequest{
		Name:        strings.Join(fs.Args(), " "),
		Description: *description,
	})
	if err != nil {
		return err
	}
	return printJSON(album)
}

func (a *app) renameAlbum(ctx context.Context, args []string) error {
	if err := want(args, 2); err != nil {
		return err
	}
	name := strings.Join(args[1:], " ")
	album, err := a.albums.Update(ctx, args[0], cl.UpdateAlbumRequest{Name: &name})
	if err != nil {
		return err
	}
	return printJSON(album)
}

func (a *app) deleteAlbum(ctx context.Context, args []string) error {
	if err := want(args, 1); err != nil {
		return err
	}
	return a.albums.Delete(ctx, args[0])
}

func (a *app) share(ctx context.Context, args []string) error {
	if err := want(args, 2); err != nil {
		return err
	}
	album, err := a.albums.Share(ctx, args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	return printJSON(album.SharedWith)
}

func (a *app) listImages(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("images", flag.ContinueOnError)
	tags := fs.String("tags", "", "comma separated tags")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := want(fs.Args(), 1); err != nil {
		return err
	}
	images, err := a.images.Fetch(ctx, fs.Arg(0), *tags)
	if err != nil {
		return err
	}
	return printJSON(images)
}

func (a *app) upload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	name := fs.String("name", "", "image name, defaults to the file name")
	tags := fs.String("tags", "", "comma separated tags")
	person := fs.String("person", "", "person in the image")
	favorite := fs.Bool("favorite", false, "mark as favorite")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := want(fs.Args(), 2); err != nil {
		return err
	}
	f, err := os.Open(fs.Arg(1))
	if err != nil {
		return errors.Wrap(err, "open image")
	}
	defer f.Close()

	img, err := a.images.Upload(ctx, fs.Arg(0), cl.UploadImageRequest{
		Name:       *name,
		Tags:       splitList(*tags),
		Person:     *person,
		IsFavorite: *favorite,
		FileName:   filepath.Base(fs.Arg(1)),
		File:       f,
	})
	if err != nil {
		return err
	}
	return printJSON(img)
}

func (a *app) favorite(ctx context.Context, args []string) error {
	if err := want(args, 2); err != nil {
		return err
	}
	// Load the album first so the toggle has a local image to flip.
	if _, err := a.images.Fetch(ctx, args[0], ""); err != nil {
		return err
	}
	fav, err := a.images.ToggleFavorite(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	return printJSON(map[string]bool{"isFavorite": fav})
}

func (a *app) deleteImage(ctx context.Context, args []string) error {
	if err := want(args, 2); err != nil {
		return err
	}
	return a.images.Delete(ctx, args[0], args[1])
}

func (a *app) comment(ctx context.Context, args []string) error {
	if err := want(args, 3); err != nil {
		return err
	}
	c, err := a.images.AddComment(ctx, args[0], args[1], strings.Join(args[2:], " "))
	if err != nil {
		return err
	}
	return printJSON(c)
}

func (a *app) search(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	tags := fs.String("tags", "", "comma separated tags")
	person := fs.String("person", "", "person in the image")
	favorite := fs.Bool("favorite", false, "favorites only")
	if err := fs.Parse(args); err != nil {
		return err
	}
	images, err := a.images.Search(ctx, cl.SearchQuery{
		Query:    strings.Join(fs.Args(), " "),
		Tags:     *tags,
		Person:   *person,
		Favorite: *favorite,
	})
	if err != nil {
		return err
	}
	return printJSON(images)
}

func (a *app) showProfile(ctx context.Context, args []string) error {
	u, err := a.profile.Fetch(ctx)
	if err != nil {
		return err
	}
	return printJSON(u)
}

func (a *app) updateProfile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update-profile", flag.ContinueOnError)
	picture := fs.String("picture", "", "profile picture url")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := want(fs.Args(), 1); err != nil {
		return err
	}
	u, err := a.profile.Update(ctx, cl.UpdateProfileRequest{
		Name:           strings.Join(fs.Args(), " "),
		ProfilePicture: *picture,
	})
	if err != nil {
		return err
	}
	return printJSON(u)
}

func (a *app) password(ctx context.Context, args []string) error {
	if err := want(args, 2); err != nil {
		return err
	}
	if err := a.profile.UpdatePassword(ctx, args[0], args[1]); err != nil {
		return errors.New(a.profile.Snapshot().PasswordError)
	}
	fmt.Println(a.profile.Snapshot().PasswordMessage)
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
