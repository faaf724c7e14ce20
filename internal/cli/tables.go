package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/salesdb/internal/archive"
	"github.com/roach88/salesdb/internal/dataset"
	"github.com/roach88/salesdb/internal/model"
	"github.com/roach88/salesdb/internal/store"
)

// tableOps binds the generic store and archive operations for one record
// type, so commands can walk every table without naming the type.
type tableOps struct {
	name        string
	create      func(*store.Database) error
	length      func(*store.Database) (int, error)
	serialize   func(*store.Database, string) error
	deserialize func(*store.Database, string) error
	save        func(context.Context, *archive.Archive, string, *store.Database) error
	load        func(context.Context, *archive.Archive, string, *store.Database) error
}

func opsFor[T model.Entity]() tableOps {
	return tableOps{
		name:        store.TableName[T](),
		create:      store.CreateTable[T],
		length:      store.Len[T],
		serialize:   store.Serialize[T],
		deserialize: store.Deserialize[T],
		save:        archive.SaveTable[T],
		load:        archive.LoadTable[T],
	}
}

// salesTables lists the four tables in dataset order.
var salesTables = []tableOps{
	opsFor[model.Good](),
	opsFor[model.Buyer](),
	opsFor[model.Shop](),
	opsFor[model.Sale](),
}

// tableFile is the file name a table is exported to.
func tableFile(dir, table string) string {
	return filepath.Join(dir, table+".json")
}

// Source kinds.
const (
	sourceDataset = "dataset"
	sourceDir     = "tables"
	sourceArchive = "archive"
)

// sourceKind classifies a source path: a directory of table files, a YAML
// dataset or a SQLite archive.
func sourceKind(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return sourceDir, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return sourceDataset, nil
	case ".db", ".sqlite", ".sqlite3":
		return sourceArchive, nil
	}
	return "", fmt.Errorf("unsupported source %s: want a .yaml dataset, a table directory or a .db archive", path)
}

// openSource loads every sales table from path into a new Database.
// Tables missing from a directory or archive snapshot are created empty.
func openSource(ctx context.Context, path string, logger *slog.Logger) (*store.Database, error) {
	kind, err := sourceKind(path)
	if err != nil {
		return nil, err
	}

	db := store.New(store.WithLogger(logger))
	switch kind {
	case sourceDataset:
		ds, err := dataset.LoadFile(path)
		if err != nil {
			return nil, err
		}
		if err := dataset.Load(db, ds); err != nil {
			return nil, err
		}
	case sourceDir:
		if err := loadTableDir(db, path, logger); err != nil {
			return nil, err
		}
	case sourceArchive:
		if err := loadLatestSnapshot(ctx, db, path, logger); err != nil {
			return nil, err
		}
	}

	logger.Debug("source opened", "path", path, "kind", kind, "tables", db.Tables())
	return db, nil
}

func loadTableDir(db *store.Database, dir string, logger *slog.Logger) error {
	for _, t := range salesTables {
		path := tableFile(dir, t.name)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			logger.Debug("table file missing, creating empty table", "table", t.name, "path", path)
			if err := t.create(db); err != nil {
				return err
			}
			continue
		}
		if err := t.deserialize(db, path); err != nil {
			return err
		}
	}
	return nil
}

func loadLatestSnapshot(ctx context.Context, db *store.Database, path string, logger *slog.Logger) error {
	a, err := archive.Open(path, archive.WithLogger(logger))
	if err != nil {
		return err
	}
	defer a.Close()

	snap, err := a.LatestSnapshot(ctx)
	if err != nil {
		return err
	}

	for _, t := range salesTables {
		err := t.load(ctx, a, snap.ID, db)
		if errors.Is(err, archive.ErrTableNotArchived) {
			logger.Debug("table not in snapshot, creating empty table", "table", t.name, "snapshot", snap.ID)
			if err := t.create(db); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
