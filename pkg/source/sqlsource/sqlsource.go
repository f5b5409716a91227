// Package sqlsource loads a transit network from a PostgreSQL or SQLite
// database.
//
// Both dialects use the same two tables:
//
//	stations(name, latitude, longitude, type)
//	segments(seq, from_station, to_station, tip, sure_dk, hat, aciklama)
//
// [Source.Migrate] creates them and [Source.Save] replaces their contents
// with a dataset, so a JSON network can be imported once and served from a
// database afterwards.
package sqlsource

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/matzehuels/routetrace/pkg/dataset"
	errs "github.com/matzehuels/routetrace/pkg/errors"
)

// Dialect selects the SQL driver.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func (d Dialect) driver() (string, error) {
	switch d {
	case Postgres:
		return "pgx", nil
	case SQLite:
		return "sqlite", nil
	}
	return "", errs.New(errs.ErrCodeUnsupported, "unknown sql dialect %q", string(d))
}

// Source reads stations and segments from a database.
type Source struct {
	db      *sql.DB
	dialect Dialect
}

// Open connects to dsn and pings the database.
func Open(ctx context.Context, dialect Dialect, dsn string) (*Source, error) {
	driver, err := dialect.driver()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "open %s", dialect)
	}

	if dialect == SQLite {
		// One connection keeps :memory: databases coherent and serializes writers.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "ping %s", dialect)
	}
	return &Source{db: db, dialect: dialect}, nil
}

// New wraps an open database.
func New(db *sql.DB, dialect Dialect) *Source {
	return &Source{db: db, dialect: dialect}
}

// Name returns the dialect name.
func (s *Source) Name() string { return string(s.dialect) }

// Close closes the database.
func (s *Source) Close() error { return s.db.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS stations (
	name      TEXT PRIMARY KEY,
	latitude  DOUBLE PRECISION NOT NULL,
	longitude DOUBLE PRECISION NOT NULL,
	type      TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS segments (
	seq          INTEGER PRIMARY KEY,
	from_station TEXT NOT NULL,
	to_station   TEXT NOT NULL,
	tip          TEXT NOT NULL DEFAULT '',
	sure_dk      DOUBLE PRECISION NOT NULL DEFAULT 0,
	hat          TEXT NOT NULL DEFAULT '',
	aciklama     TEXT NOT NULL DEFAULT ''
);`

// Migrate creates the tables if they do not exist.
func (s *Source) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Load reads the whole network. Stations come back ordered by name and
// segments in insertion order.
func (s *Source) Load(ctx context.Context) (*dataset.Dataset, error) {
	stations, err := s.loadStations(ctx)
	if err != nil {
		return nil, err
	}
	segments, err := s.loadSegments(ctx)
	if err != nil {
		return nil, err
	}
	return &dataset.Dataset{Stations: stations, Segments: segments}, nil
}

func (s *Source) loadStations(ctx context.Context) ([]dataset.Station, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, latitude, longitude, type FROM stations ORDER BY name`)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "query stations")
	}
	defer rows.Close()

	var out []dataset.Station
	for rows.Next() {
		var st dataset.Station
		if err := rows.Scan(&st.Name, &st.Latitude, &st.Longitude, &st.Type); err != nil {
			return nil, fmt.Errorf("scan station: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Source) loadSegments(ctx context.Context) ([]dataset.Segment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT from_station, to_station, tip, sure_dk, hat, aciklama FROM segments ORDER BY seq`)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "query segments")
	}
	defer rows.Close()

	var out []dataset.Segment
	for rows.Next() {
		var sg dataset.Segment
		if err := rows.Scan(&sg.From, &sg.To, &sg.Tip, &sg.Minutes, &sg.Line, &sg.Description); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		out = append(out, sg)
	}
	return out, rows.Err()
}

// Save replaces the stored network with ds in one transaction.
func (s *Source) Save(ctx context.Context, ds *dataset.Dataset) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range []string{`DELETE FROM segments`, `DELETE FROM stations`} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	}

	insStation := s.rebind(`INSERT INTO stations (name, latitude, longitude, type) VALUES (?, ?, ?, ?)`)
	for _, st := range ds.Stations {
		if _, err = tx.ExecContext(ctx, insStation, st.Name, st.Latitude, st.Longitude, st.Type); err != nil {
			return fmt.Errorf("insert station %q: %w", st.Name, err)
		}
	}

	insSegment := s.rebind(`INSERT INTO segments (seq, from_station, to_station, tip, sure_dk, hat, aciklama) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	for i, sg := range ds.Segments {
		if _, err = tx.ExecContext(ctx, insSegment, i, sg.From, sg.To, sg.Tip, sg.Minutes, sg.Line, sg.Description); err != nil {
			return fmt.Errorf("insert segment %s->%s: %w", sg.From, sg.To, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *Source) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
