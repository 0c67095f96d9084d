package main

import (
	"flag"
	"log"

	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

var (
	path = flag.String("path", "session.db", "sqlite database file")
	dir  = flag.String("migrations", "internal/sqlite/migrations", "")
	down = flag.Bool("down", false, "roll back every migration")
)

func main() {
	flag.Parse()
	m, err := migrate.New("file://"+*dir, "sqlite://"+*path)
	if err != nil {
		log.Fatal(err)
	}
	if *down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && err != migrate.ErrNoChange {
		log.Fatal(err)
	}
}
