package db

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/rqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rqlite/gorqlite"
)

// Location is where the profile store lives, in the two forms its clients
// need: gorqlite takes the http(s) URL, golang-migrate the rqlite:// one.
type Location struct {
	DataSourceName string
	MigrateURL     string
	// Redacted has the password masked and is safe to log.
	Redacted string
}

// ParseLocation accepts an http or https rqlite URL. The port defaults to
// 4001. Plain http is passed to golang-migrate as x-connect-insecure, since
// its rqlite driver otherwise dials https.
func ParseLocation(raw string) (loc Location, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return loc, fmt.Errorf("db: invalid rqlite URL: %w", err)
	}
	switch {
	case u.Scheme != "http" && u.Scheme != "https":
		return loc, fmt.Errorf("db: invalid rqlite URL: scheme must be http or https, got %q", u.Scheme)
	case u.Hostname() == "":
		return loc, errors.New("db: invalid rqlite URL: missing host")
	}
	if u.Port() == "" {
		u.Host += ":4001"
	}
	m := url.URL{Scheme: "rqlite", User: u.User, Host: u.Host}
	if u.Scheme == "http" {
		m.RawQuery = url.Values{"x-connect-insecure": {"true"}}.Encode()
	}
	return Location{
		DataSourceName: u.String(),
		MigrateURL:     m.String(),
		Redacted:       u.Redacted(),
	}, nil
}

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the profile schema up to date and returns its version.
func Migrate(loc Location) (version uint, err error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return 0, fmt.Errorf("db: failed to read migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, loc.MigrateURL)
	if err != nil {
		return 0, fmt.Errorf("db: failed to connect for migration: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		err = errors.Join(err, srcErr, dbErr)
	}()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("db: migration failed: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("db: failed to read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("db: schema version %d is dirty", version)
	}
	return version, nil
}

// Open connects to the profile store at raw and migrates it. The returned
// Queries must be closed with Close.
func Open(log *slog.Logger, raw string) (q *Queries, err error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}
	log.Info("opening profile store", slog.String("url", loc.Redacted))
	conn, err := gorqlite.Open(loc.DataSourceName)
	if err != nil {
		return nil, fmt.Errorf("db: failed to connect: %w", err)
	}
	version, err := Migrate(loc)
	if err != nil {
		conn.Close()
		return nil, err
	}
	log.Info("profile store ready", slog.Uint64("schemaVersion", uint64(version)))
	return New(conn), nil
}
