package store

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/roach88/salesdb/internal/model"
)

// Database holds one insertion-ordered table per record type.
type Database struct {
	tables map[reflect.Type]*table
	order  []reflect.Type // creation order, for Tables
	logger *slog.Logger
}

// table is the type-erased collection for one record type.
type table struct {
	name string
	rows []model.Entity
}

// Option configures a Database.
type Option func(*Database)

// WithLogger sets the logger used for table lifecycle and persistence events.
func WithLogger(logger *slog.Logger) Option {
	return func(db *Database) {
		if logger != nil {
			db.logger = logger
		}
	}
}

// New creates an empty Database.
func New(opts ...Option) *Database {
	db := &Database{
		tables: make(map[reflect.Type]*table),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// TableName returns the name of T's table: the Go type name.
func TableName[T model.Entity]() string {
	rt := reflect.TypeFor[T]()
	if rt.Name() != "" {
		return rt.Name()
	}
	return rt.String()
}

// Tables returns the names of all tables in creation order.
// Tables created by Deserialize or Replace are listed at the point they were
// first created.
func (db *Database) Tables() []string {
	names := make([]string, 0, len(db.order))
	for _, key := range db.order {
		names = append(names, db.tables[key].name)
	}
	return names
}

// CreateTable registers an empty table for T.
// Returns a DUPLICATE_TABLE error if T already has a table; the existing
// table is left untouched.
func CreateTable[T model.Entity](db *Database) error {
	key := reflect.TypeFor[T]()
	name := TableName[T]()
	if _, ok := db.tables[key]; ok {
		return newError(ErrCodeDuplicateTable, name, nil)
	}
	db.register(key, &table{name: name, rows: []model.Entity{}})
	db.logger.Debug("table created", "table", name)
	return nil
}

// Insert calls factory once and appends the record it returns to T's table.
//
// Returns TABLE_NOT_FOUND if T has no table; factory is not called in that
// case. Returns INSERTION wrapping the cause if factory returns an error,
// panics or returns a nil record; the table is unchanged.
func Insert[T model.Entity](db *Database, factory func() (T, error)) error {
	t, err := lookup[T](db)
	if err != nil {
		return err
	}

	rec, err := materialize(factory)
	if err != nil {
		return newError(ErrCodeInsertion, t.name, err)
	}

	t.rows = append(t.rows, rec)
	db.logger.Debug("row inserted", "table", t.name, "id", rec.EntityID(), "rows", len(t.rows))
	return nil
}

// InsertValue appends v to T's table.
func InsertValue[T model.Entity](db *Database, v T) error {
	return Insert(db, func() (T, error) { return v, nil })
}

// GetTable returns T's rows in insertion order.
//
// The returned slice is a snapshot: later inserts do not change it and
// changes to it do not reach the Database. It is never nil.
func GetTable[T model.Entity](db *Database) ([]T, error) {
	t, err := lookup[T](db)
	if err != nil {
		return nil, err
	}
	return typedRows[T](t), nil
}

// Len returns the number of rows in T's table.
func Len[T model.Entity](db *Database) (int, error) {
	t, err := lookup[T](db)
	if err != nil {
		return 0, err
	}
	return len(t.rows), nil
}

// Replace sets T's table to rows, creating the table if needed.
// The previous contents, if any, are discarded.
func Replace[T model.Entity](db *Database, rows []T) {
	erased := make([]model.Entity, len(rows))
	for i, rec := range rows {
		erased[i] = rec
	}

	key := reflect.TypeFor[T]()
	if t, ok := db.tables[key]; ok {
		t.rows = erased
	} else {
		db.register(key, &table{name: TableName[T](), rows: erased})
	}
	db.logger.Debug("table replaced", "table", TableName[T](), "rows", len(erased))
}

func (db *Database) register(key reflect.Type, t *table) {
	db.tables[key] = t
	db.order = append(db.order, key)
}

// lookup returns T's table or a TABLE_NOT_FOUND error.
func lookup[T model.Entity](db *Database) (*table, error) {
	t, ok := db.tables[reflect.TypeFor[T]()]
	if !ok {
		return nil, newError(ErrCodeTableNotFound, TableName[T](), nil)
	}
	return t, nil
}

// typedRows copies t's rows into a []T.
// Every path that adds rows to t is typed on T, so the assertion only fails
// if that invariant is broken.
func typedRows[T model.Entity](t *table) []T {
	out := make([]T, len(t.rows))
	for i, row := range t.rows {
		rec, ok := row.(T)
		if !ok {
			panic(fmt.Sprintf("store: table %s holds %T", t.name, row))
		}
		out[i] = rec
	}
	return out
}

// materialize runs factory, converting a panic into an error.
func materialize[T model.Entity](factory func() (T, error)) (rec T, err error) {
	if factory == nil {
		return rec, errors.New("nil factory")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("factory panicked: %v", r)
		}
	}()
	rec, err = factory()
	if err != nil {
		return rec, err
	}
	if isNil(rec) {
		return rec, errors.New("factory returned a nil record")
	}
	return rec, nil
}

// isNil reports whether rec is a nil interface or a nil pointer, map, slice
// or similar inside a non-nil interface.
func isNil(rec any) bool {
	if rec == nil {
		return true
	}
	switch v := reflect.ValueOf(rec); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
