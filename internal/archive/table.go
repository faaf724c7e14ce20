package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/salesdb/internal/model"
	"github.com/roach88/salesdb/internal/store"
)

// ErrTableNotArchived is returned by LoadTable when the snapshot exists
// but the table was never saved in it.
var ErrTableNotArchived = errors.New("table not archived in snapshot")

// SaveTable writes T's table from db into the snapshot, replacing any
// earlier save of the same table in that snapshot. The write is one
// transaction: either every row lands or none do.
func SaveTable[T model.Entity](ctx context.Context, a *Archive, snapshotID string, db *store.Database) error {
	name := store.TableName[T]()
	rows, err := store.GetTable[T](db)
	if err != nil {
		return fmt.Errorf("save table %s: %w", name, err)
	}

	bodies := make([]string, len(rows))
	for i, rec := range rows {
		body, err := marshalRecord(rec)
		if err != nil {
			return fmt.Errorf("save table %s: row %d: %w", name, i, err)
		}
		bodies[i] = body
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save table %s: begin tx: %w", name, err)
	}
	defer tx.Rollback() // No-op if committed

	var exists int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM snapshots WHERE id = ?
	`, snapshotID).Scan(&exists); err != nil {
		return fmt.Errorf("save table %s: %w", name, err)
	}
	if exists == 0 {
		return fmt.Errorf("save table %s: snapshot %s: %w", name, snapshotID, ErrSnapshotNotFound)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM table_rows WHERE snapshot_id = ? AND table_name = ?
	`, snapshotID, name); err != nil {
		return fmt.Errorf("save table %s: clear rows: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO archived_tables (snapshot_id, table_name, row_count)
		VALUES (?, ?, ?)
		ON CONFLICT(snapshot_id, table_name) DO UPDATE SET row_count = excluded.row_count
	`, snapshotID, name, len(rows)); err != nil {
		return fmt.Errorf("save table %s: register: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO table_rows (snapshot_id, table_name, position, entity_id, body)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("save table %s: prepare: %w", name, err)
	}
	defer stmt.Close()

	for i, rec := range rows {
		if _, err := stmt.ExecContext(ctx, snapshotID, name, i, rec.EntityID(), bodies[i]); err != nil {
			return fmt.Errorf("save table %s: insert row %d: %w", name, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save table %s: commit: %w", name, err)
	}

	a.logger.Info("table archived", "snapshot", snapshotID, "table", name, "rows", len(rows))
	return nil
}

// LoadTable reads T's table from the snapshot into db, replacing the
// table's contents or creating it. On error db is left unchanged.
//
// Returns ErrSnapshotNotFound if the snapshot does not exist and
// ErrTableNotArchived if it exists without T's table.
func LoadTable[T model.Entity](ctx context.Context, a *Archive, snapshotID string, db *store.Database) error {
	name := store.TableName[T]()

	if _, err := a.GetSnapshot(ctx, snapshotID); err != nil {
		return fmt.Errorf("load table %s: %w", name, err)
	}

	var rowCount int
	err := a.db.QueryRowContext(ctx, `
		SELECT row_count FROM archived_tables
		WHERE snapshot_id = ? AND table_name = ?
	`, snapshotID, name).Scan(&rowCount)
	if err != nil {
		if isNoRows(err) {
			return fmt.Errorf("load table %s: snapshot %s: %w", name, snapshotID, ErrTableNotArchived)
		}
		return fmt.Errorf("load table %s: %w", name, err)
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT body FROM table_rows
		WHERE snapshot_id = ? AND table_name = ?
		ORDER BY position ASC
	`, snapshotID, name)
	if err != nil {
		return fmt.Errorf("load table %s: %w", name, err)
	}
	defer rows.Close()

	records := make([]T, 0, rowCount)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return fmt.Errorf("load table %s: scan: %w", name, err)
		}
		rec, err := unmarshalRecord[T](body)
		if err != nil {
			return fmt.Errorf("load table %s: row %d: %w", name, len(records), err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load table %s: %w", name, err)
	}

	if len(records) != rowCount {
		return fmt.Errorf("load table %s: found %d rows, snapshot records %d", name, len(records), rowCount)
	}

	store.Replace(db, records)
	a.logger.Info("table restored", "snapshot", snapshotID, "table", name, "rows", len(records))
	return nil
}

// marshalRecord converts a record to compact JSON TEXT for storage.
// HTML escaping is disabled so names round-trip byte for byte.
func marshalRecord(rec any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(rec); err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

func unmarshalRecord[T model.Entity](body string) (T, error) {
	var rec T
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&rec); err != nil {
		return rec, fmt.Errorf("unmarshal record: %w", err)
	}
	return rec, nil
}
