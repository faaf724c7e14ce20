package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/roach88/salesdb/internal/model"
	"github.com/roach88/salesdb/internal/tablefile"
)

// Serialize writes T's table to path.
//
// Returns TABLE_NOT_FOUND if T has no table, SERIALIZATION if the rows cannot
// be encoded and IO if the file cannot be written. The file is published by
// rename once fully written; on failure path is left as it was.
func Serialize[T model.Entity](db *Database, path string) error {
	var buf bytes.Buffer
	if err := WriteTable[T](db, &buf); err != nil {
		return withPath(err, path)
	}

	name := TableName[T]()
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return newFileError(ErrCodeIO, name, path, err)
	}

	rows, _ := Len[T](db)
	db.logger.Info("table serialized", "table", name, "path", path, "rows", rows)
	return nil
}

// Deserialize reads T's table from path, replacing any existing table or
// creating it if absent.
//
// Returns IO if the file cannot be read and DESERIALIZATION if its content is
// malformed. On failure the existing table, if any, is unchanged.
func Deserialize[T model.Entity](db *Database, path string) error {
	name := TableName[T]()

	f, err := os.Open(path)
	if err != nil {
		return newFileError(ErrCodeIO, name, path, err)
	}
	defer f.Close()

	if err := ReadTable[T](db, f); err != nil {
		return withPath(err, path)
	}

	rows, _ := Len[T](db)
	db.logger.Info("table deserialized", "table", name, "path", path, "rows", rows)
	return nil
}

// WriteTable writes T's table to w in table file form.
// Unlike Serialize there is no atomic publish: a failed write may leave
// partial output in w.
func WriteTable[T model.Entity](db *Database, w io.Writer) error {
	t, err := lookup[T](db)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := tablefile.Encode(&buf, t.name, typedRows[T](t)); err != nil {
		return newError(ErrCodeSerialization, t.name, err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return newError(ErrCodeIO, t.name, err)
	}
	return nil
}

// ReadTable reads T's table from r, replacing any existing table.
// r is consumed entirely before the Database is touched.
func ReadTable[T model.Entity](db *Database, r io.Reader) error {
	name := TableName[T]()

	data, err := io.ReadAll(r)
	if err != nil {
		return newError(ErrCodeIO, name, err)
	}

	rows, err := tablefile.Decode[T](bytes.NewReader(data), name)
	if err != nil {
		return newError(ErrCodeDeserialization, name, err)
	}

	Replace(db, rows)
	return nil
}

// withPath records path on a file operation's *Error.
func withPath(err error, path string) error {
	var se *Error
	if errors.As(err, &se) && se.Path == "" {
		se.Path = path
	}
	return err
}

// writeFileAtomic writes data to a temp file next to path and renames it
// over path. The temp file is removed if any step fails.
func writeFileAtomic(path string, data []byte) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()

	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if _, err = f.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = f.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publish %s: %w", path, err)
	}
	return nil
}
