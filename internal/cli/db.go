package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/routetrace/pkg/config"
	"github.com/matzehuels/routetrace/pkg/dataset"
	errs "github.com/matzehuels/routetrace/pkg/errors"
	"github.com/matzehuels/routetrace/pkg/source"
	"github.com/matzehuels/routetrace/pkg/source/mongosource"
	"github.com/matzehuels/routetrace/pkg/source/sqlsource"
)

// store is a network source that can also be written.
type store interface {
	source.Source
	Save(ctx context.Context, ds *dataset.Dataset) error
}

// dbCommand moves networks between the JSON files and a database.
func (c *CLI) dbCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Import the network into a database or export it to JSON",
		Long: `Copy the network between the stations and segments JSON files and the
database configured in [data] (source = "postgres", "sqlite" or "mongo").`,
	}
	cmd.AddCommand(c.dbImportCommand())
	cmd.AddCommand(c.dbExportCommand())
	return cmd
}

func (c *CLI) dbImportCommand() *cobra.Command {
	var stations, segments string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the database network with the JSON files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			stations, segments = orDefault(stations, cfg.Data.StationsFile), orDefault(segments, cfg.Data.SegmentsFile)

			ds, err := dataset.Import(stations, segments)
			if err != nil {
				return err
			}
			if err := ds.Validate(); err != nil {
				return err
			}

			db, err := openStore(ctx, cfg.Data)
			if err != nil {
				return err
			}
			defer db.Close()

			prog := newProgress(loggerFromContext(ctx))
			if err := db.Save(ctx, ds); err != nil {
				return err
			}
			prog.done("Imported network")
			printSuccess("Imported %d stations and %d segments into %s", len(ds.Stations), len(ds.Segments), db.Name())
			return nil
		},
	}
	cmd.Flags().StringVar(&stations, "stations", "", "stations file (default from config)")
	cmd.Flags().StringVar(&segments, "segments", "", "segments file (default from config)")
	return cmd
}

func (c *CLI) dbExportCommand() *cobra.Command {
	var stations, segments string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the database network to JSON files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if stations == "" || segments == "" {
				return errs.New(errs.ErrCodeInvalidInput, "--stations and --segments are required")
			}

			db, err := openStore(ctx, cfg.Data)
			if err != nil {
				return err
			}
			defer db.Close()

			ds, err := db.Load(ctx)
			if err != nil {
				return err
			}
			if err := dataset.Export(ds, stations, segments); err != nil {
				return err
			}
			printSuccess("Exported %d stations and %d segments from %s", len(ds.Stations), len(ds.Segments), db.Name())
			printFile(stations, false)
			printFile(segments, false)
			return nil
		},
	}
	cmd.Flags().StringVar(&stations, "stations", "", "stations output file")
	cmd.Flags().StringVar(&segments, "segments", "", "segments output file")
	return cmd
}

// openStore opens the configured database, creating SQL tables if needed.
func openStore(ctx context.Context, cfg config.DataConfig) (store, error) {
	switch cfg.Source {
	case config.SourcePostgres, config.SourceSQLite:
		db, err := sqlsource.Open(ctx, sqlsource.Dialect(cfg.Source), cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	case config.SourceMongo:
		db, err := mongosource.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	return nil, errs.New(errs.ErrCodeInvalidInput, "data source %q is not a database", cfg.Source)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
