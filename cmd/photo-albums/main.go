package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"photo-albums/internal"
	"photo-albums/internal/api"
	"photo-albums/internal/sqlite"
	"photo-albums/internal/state"
	"photo-albums/internal/tomlfile"

	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/twitsprout/tools"
	"github.com/twitsprout/tools/lifecycle"
	"github.com/twitsprout/tools/zap"
)

var version string

type variables struct {
	APIURL             string        `required:"true" envconfig:"api_url"`
	StorageDriver      string        `required:"false" envconfig:"storage_driver"`
	StoragePath        string        `required:"false" envconfig:"storage_path"`
	RequestTimeout     time.Duration `required:"false" envconfig:"request_timeout"`
	MaxUploadDimension uint          `required:"false" envconfig:"max_upload_dimension"`
	LogLevel           string        `required:"false" envconfig:"log_level"`
}

var v variables

func init() {
	envconfig.MustProcess("photo_albums", &v)
	if v.LogLevel == "" {
		v.LogLevel = "warn"
	}
	if v.StorageDriver == "" {
		v.StorageDriver = "sqlite"
	}
	if v.RequestTimeout <= 0 {
		v.RequestTimeout = state.DefaultTimeout
	}
}

// localStorage is what the CLI needs from a storage backend.
type localStorage interface {
	internal.LocalStorage
	Keys(ctx context.Context) ([]string, error)
}

func main() {
	// Results go to stdout; logs stay on stderr.
	logger := zap.New("photo-albums", version, os.Stderr)
	if err := logger.SetLevel(v.LogLevel); err != nil {
		logger.Error("failed to set log level", "error", err.Error())
	}

	ctx := context.Background()
	storage, closeStorage, err := newStorage(ctx, v)
	if err != nil {
		fmt.Fprintln(os.Stderr, "photo-albums:", err.Error())
		os.Exit(1)
	}
	defer closeStorage()

	app, err := newApp(v, storage, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "photo-albums:", err.Error())
		os.Exit(1)
	}

	chErr := make(chan error, 1)
	lc, ctx := lifecycle.New(ctx, logger)
	lc.Start("photo-albums command", func() error {
		chErr <- app.run(ctx, os.Args[1:])
		return errors.New("command finished")
	})
	lc.StartSignals(syscall.SIGINT, syscall.SIGTERM)
	_ = lc.Wait(5 * time.Second)

	var cmdErr error
	select {
	case cmdErr = <-chErr:
	default:
		cmdErr = errors.New("interrupted")
	}
	if cmdErr != nil {
		closeStorage()
		fmt.Fprintln(os.Stderr, "photo-albums:", cmdErr.Error())
		os.Exit(1)
	}
}

func newStorage(ctx context.Context, v variables) (localStorage, func(), error) {
	switch strings.ToLower(v.StorageDriver) {
	case "sqlite":
		path := v.StoragePath
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, nil, errors.Wrap(err, "resolve home dir")
			}
			path = filepath.Join(home, ".config", "photo-albums", "session.db")
		}
		db, err := sqlite.New(ctx, path, nil)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { _ = db.Close() }, nil
	case "toml":
		s, err := tomlfile.New(v.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	default:
		return nil, nil, errors.Errorf("unknown storage driver %q", v.StorageDriver)
	}
}

type app struct {
	storage localStorage
	session *state.Session
	albums  *state.Albums
	images  *state.Images
	profile *state.Profile
}

func newApp(v variables, storage localStorage, logger tools.Logger) (*app, error) {
	creds := &state.Credentials{}
	client, err := api.New(v.APIURL, creds,
		api.WithTimeout(v.RequestTimeout),
		api.WithLogger(logger),
		api.WithUserAgent("photo-albums/"+versionOr("dev")),
		api.WithMaxUploadDimension(v.MaxUploadDimension),
	)
	if err != nil {
		return nil, err
	}
	session := state.NewSession(client, creds, storage, state.Options{Logger: logger, Timeout: v.RequestTimeout})
	opts := state.Options{Logger: logger, Timeout: v.RequestTimeout, Session: session}
	a := &app{
		storage: storage,
		session: session,
		albums:  state.NewAlbums(client, opts),
		images:  state.NewImages(client, opts),
		profile: state.NewProfile(client, opts),
	}
	session.OnSignOut(a.albums.Reset)
	session.OnSignOut(a.images.Reset)
	session.OnSignOut(a.profile.Reset)
	return a, nil
}

func versionOr(def string) string {
	if version == "" {
		return def
	}
	return version
}
