// Package source abstracts where a transit network comes from.
//
// A [Source] yields a [dataset.Dataset]; [Load] turns it into a routable
// [Network]. Implementations:
//
//   - [JSON]: the stations and segments files (see package dataset), read
//     from disk or downloaded with httputil
//   - sqlsource: PostgreSQL via pgx, or SQLite
//   - mongosource: MongoDB
//
// [Open] picks one from configuration.
package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/routetrace/pkg/config"
	"github.com/matzehuels/routetrace/pkg/dataset"
	errs "github.com/matzehuels/routetrace/pkg/errors"
	"github.com/matzehuels/routetrace/pkg/httputil"
	"github.com/matzehuels/routetrace/pkg/network"
	"github.com/matzehuels/routetrace/pkg/source/mongosource"
	"github.com/matzehuels/routetrace/pkg/source/sqlsource"
)

// Source loads a network description.
type Source interface {
	Name() string
	Load(ctx context.Context) (*dataset.Dataset, error)
	Close() error
}

// JSON reads the stations and segments files. Either may be a URL, which
// is downloaded with Fetcher.
type JSON struct {
	StationsFile string
	SegmentsFile string
	Fetcher      *httputil.Fetcher
}

func (JSON) Name() string { return config.SourceJSON }

func (j JSON) Load(ctx context.Context) (*dataset.Dataset, error) {
	if !httputil.IsURL(j.StationsFile) && !httputil.IsURL(j.SegmentsFile) {
		return dataset.Import(j.StationsFile, j.SegmentsFile)
	}
	stations, err := fetch(ctx, j, j.StationsFile, dataset.ReadStations)
	if err != nil {
		return nil, err
	}
	segments, err := fetch(ctx, j, j.SegmentsFile, dataset.ReadSegments)
	if err != nil {
		return nil, err
	}
	ds := &dataset.Dataset{Stations: stations, Segments: segments}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// fetch decodes one file of a JSON source that has at least one remote file.
func fetch[T any](ctx context.Context, j JSON, path string, read func(io.Reader) ([]T, error)) ([]T, error) {
	var data []byte
	var err error
	if httputil.IsURL(path) {
		f := j.Fetcher
		if f == nil {
			f = httputil.NewFetcher(nil, nil)
		}
		data, err = f.Get(ctx, path)
	} else {
		data, err = os.ReadFile(path)
		if os.IsNotExist(err) {
			err = errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
	}
	if err != nil {
		return nil, err
	}
	out, err := read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func (JSON) Close() error { return nil }

// Open returns the source selected by cfg.Source.
func Open(ctx context.Context, cfg config.DataConfig) (Source, error) {
	switch cfg.Source {
	case config.SourceJSON:
		src := JSON{StationsFile: cfg.StationsFile, SegmentsFile: cfg.SegmentsFile}
		if httputil.IsURL(cfg.StationsFile) || httputil.IsURL(cfg.SegmentsFile) {
			var mirror *httputil.Mirror
			if cfg.MirrorDir != "" {
				m, err := httputil.NewMirror(cfg.MirrorDir, cfg.MirrorTTL)
				if err != nil {
					return nil, fmt.Errorf("open mirror: %w", err)
				}
				mirror = m
			}
			src.Fetcher = httputil.NewFetcher(mirror, nil)
		}
		return src, nil
	case config.SourcePostgres, config.SourceSQLite:
		src, err := sqlsource.Open(ctx, sqlsource.Dialect(cfg.Source), cfg.DSN)
		if err != nil {
			return nil, err
		}
		return src, nil
	case config.SourceMongo:
		src, err := mongosource.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	return nil, errs.New(errs.ErrCodeUnsupported, "unknown data source %q", cfg.Source)
}

// Network is a loaded, routable network.
type Network struct {
	Graph   *network.Graph
	Catalog *dataset.Catalog
	// Hash identifies the dataset the graph was built from.
	Hash   string
	Report dataset.Report
}

// Load reads src and builds its graph.
func Load(ctx context.Context, src Source) (*Network, error) {
	ds, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	g, rep, err := dataset.Build(ctx, ds, dataset.BuildOptions{Source: src.Name()})
	if err != nil {
		return nil, err
	}
	return &Network{
		Graph:   g,
		Catalog: dataset.NewCatalog(ds.Segments),
		Hash:    ds.Hash(),
		Report:  rep,
	}, nil
}
