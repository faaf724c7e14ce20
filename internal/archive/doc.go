// Package archive stores snapshots of store tables in a SQLite file.
//
// A snapshot is a named point in time holding any number of tables. Each
// table is written in one transaction, row by row, with its insertion
// position, so loading it back reproduces the table's content and order.
//
// The archive is written only when a caller asks; it is not a journal and
// nothing in the store writes to it implicitly.
//
// # Ordering
//
// Snapshots are ordered by seq INTEGER, assigned as max(seq)+1 at creation.
// Rows are read back ORDER BY position ASC.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Rows cannot outlive their snapshot
package archive
