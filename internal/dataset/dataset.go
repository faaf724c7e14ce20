// Package dataset reads and writes YAML dataset files holding the Good,
// Buyer, Shop and Sale tables, and moves them in and out of a store.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/salesdb/internal/model"
	"github.com/roach88/salesdb/internal/store"
)

// Dataset is the content of a dataset file.
type Dataset struct {
	Goods  []model.Good  `yaml:"goods,omitempty" json:"goods,omitempty"`
	Buyers []model.Buyer `yaml:"buyers,omitempty" json:"buyers,omitempty"`
	Shops  []model.Shop  `yaml:"shops,omitempty" json:"shops,omitempty"`
	Sales  []model.Sale  `yaml:"sales,omitempty" json:"sales,omitempty"`
}

// Decode parses a dataset from r.
// Unknown fields are rejected so typos such as "sale:" surface early.
func Decode(r io.Reader) (*Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		if errors.Is(err, io.EOF) {
			return &ds, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &ds, nil
}

// LoadFile reads, parses and validates the dataset file at path.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}

	ds, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if err := Validate(ds); err != nil {
		return nil, fmt.Errorf("invalid dataset %s: %w", path, err)
	}
	return ds, nil
}

// Encode writes ds as YAML.
func Encode(w io.Writer, ds *Dataset) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(ds); err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	return enc.Close()
}

// Load creates the four tables in db and inserts every record of ds in
// file order. It fails if any of the tables already exists.
func Load(db *store.Database, ds *Dataset) error {
	if err := loadTable(db, ds.Goods); err != nil {
		return err
	}
	if err := loadTable(db, ds.Buyers); err != nil {
		return err
	}
	if err := loadTable(db, ds.Shops); err != nil {
		return err
	}
	return loadTable(db, ds.Sales)
}

func loadTable[T model.Entity](db *store.Database, rows []T) error {
	if err := store.CreateTable[T](db); err != nil {
		return fmt.Errorf("load %s: %w", store.TableName[T](), err)
	}
	for _, row := range rows {
		err := store.Insert(db, func() (T, error) { return row, nil })
		if err != nil {
			return fmt.Errorf("load %s: %w", store.TableName[T](), err)
		}
	}
	return nil
}

// Dump reads the four tables of db into a Dataset.
func Dump(db *store.Database) (*Dataset, error) {
	var ds Dataset
	var err error
	if ds.Goods, err = store.GetTable[model.Good](db); err != nil {
		return nil, fmt.Errorf("dump: %w", err)
	}
	if ds.Buyers, err = store.GetTable[model.Buyer](db); err != nil {
		return nil, fmt.Errorf("dump: %w", err)
	}
	if ds.Shops, err = store.GetTable[model.Shop](db); err != nil {
		return nil, fmt.Errorf("dump: %w", err)
	}
	if ds.Sales, err = store.GetTable[model.Sale](db); err != nil {
		return nil, fmt.Errorf("dump: %w", err)
	}
	return &ds, nil
}
