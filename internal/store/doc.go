// Package store provides the in-memory typed table store.
//
// A Database holds at most one table per record type. Tables are keyed by the
// record's Go type and keep their rows in insertion order. Rows are held
// behind model.Entity internally; the only downcast back to the concrete type
// happens in typedRows, so GetTable[T] can never return a record that is not
// a T.
//
// Go methods cannot carry type parameters, so the table operations are
// package-level generic functions taking the Database:
//
//	db := store.New()
//	if err := store.CreateTable[model.Good](db); err != nil { ... }
//	err := store.Insert(db, func() (model.Good, error) {
//	    return model.Good{ID: 1, Category: "tea", Price: 250}, nil
//	})
//	goods, err := store.GetTable[model.Good](db)
//
// # Persistence
//
// Serialize writes one table to one file through tablefile. The file is
// written to a temp file in the destination directory, synced and renamed
// into place, so a failed Serialize never leaves a partial file at the
// destination. Deserialize decodes the whole file before touching the
// Database; on any failure the existing table is unchanged.
//
// # Concurrency
//
// A Database is not safe for concurrent use. Hosts that share one across
// goroutines must serialise access themselves.
package store
