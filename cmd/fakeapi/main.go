package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"syscall"
	"time"

	"photo-albums/internal/fakeapi"

	"cloud.google.com/go/compute/metadata"
	"github.com/kelseyhightower/envconfig"
	httputils "github.com/twitsprout/tools/http"
	"github.com/twitsprout/tools/lifecycle"
	"github.com/twitsprout/tools/zap"
)

var version string

type variables struct {
	Addr     string `required:"true" envconfig:"addr"`
	AppName  string `required:"false" envconfig:"app_name"`
	LogLevel string `required:"false" envconfig:"log_level"`
}

var v variables

func init() {
	if metadata.OnGCE() {
		port := os.Getenv("PORT")
		err := os.Setenv("FAKEAPI_ADDR", ":"+port)
		if err != nil {
			log.Fatal(err)
		}
	}

	envconfig.MustProcess("fakeapi", &v)
	fmt.Println("Env variables :", v)
	if v.LogLevel == "" {
		v.LogLevel = "info"
	}
	if v.AppName == "" {
		v.AppName = "photo-albums-fakeapi"
	}
}

func main() {
	logger := zap.New("fakeapi", version, os.Stdout)
	if err := logger.SetLevel(v.LogLevel); err != nil {
		logger.Error("failed to set log level", "error", err.Error())
	}

	ctx := context.Background()

	lc, ctx := lifecycle.New(ctx, logger)
	lc.Start("fakeapi root context", func() error {
		<-ctx.Done()
		return ctx.Err()
	})

	h := fakeapi.Handler{
		Logger:  logger,
		Version: version,
		AppName: v.AppName,
		Store:   fakeapi.NewMemory(nil),
		Replays: fakeapi.NewReplayCache(),
	}
	server := httputils.NewServer(v.Addr, h.Handler())
	lc.StartServer(server)
	lc.StartSignals(syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	_ = lc.Wait(15 * time.Second)
}
