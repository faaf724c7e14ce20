// Package model defines the record types held by the table store.
//
// This package contains type definitions only. The store, query, dataset and
// archive packages import model; model imports nothing internal.
//
// Key design constraints:
//   - Every record carries an int64 identity unique within its own table
//   - NO float types anywhere - prices are int64 minor currency units
//   - All JSON and YAML tags use snake_case
//   - References between tables (Sale.GoodID etc.) are plain ids; nothing
//     below the query layer resolves them
package model
