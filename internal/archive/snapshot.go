package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoSnapshots is returned by LatestSnapshot on an empty archive.
var ErrNoSnapshots = errors.New("archive holds no snapshots")

// ErrSnapshotNotFound is returned when a snapshot id is unknown.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Snapshot is one saved point in time.
type Snapshot struct {
	ID     string         `json:"id"`
	Label  string         `json:"label"`
	Seq    int64          `json:"seq"`
	Tables []TableSummary `json:"tables"`
}

// TableSummary names a table saved in a snapshot and its row count.
type TableSummary struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// CreateSnapshot registers a new, empty snapshot and returns it.
// Its seq is one past the highest seq in the archive.
func (a *Archive) CreateSnapshot(ctx context.Context, label string) (Snapshot, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("create snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM snapshots`).Scan(&seq); err != nil {
		return Snapshot{}, fmt.Errorf("create snapshot: next seq: %w", err)
	}

	snap := Snapshot{
		ID:     a.ids.Generate(),
		Label:  label,
		Seq:    seq,
		Tables: []TableSummary{},
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, label, seq) VALUES (?, ?, ?)
	`, snap.ID, snap.Label, snap.Seq); err != nil {
		return Snapshot{}, fmt.Errorf("create snapshot: insert: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("create snapshot: commit: %w", err)
	}

	a.logger.Info("snapshot created", "id", snap.ID, "label", snap.Label, "seq", snap.Seq)
	return snap, nil
}

// ListSnapshots returns every snapshot ordered by seq ascending,
// each with its saved tables ordered by name.
// Returns an empty slice (not nil) if the archive is empty.
func (a *Archive) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, label, seq
		FROM snapshots
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]Snapshot, 0)
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Label, &snap.Seq); err != nil {
			return nil, fmt.Errorf("list snapshots: scan: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	// Close before issuing further queries on the single connection.
	rows.Close()

	for i := range snapshots {
		tables, err := a.tableSummaries(ctx, snapshots[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		snapshots[i].Tables = tables
	}

	return snapshots, nil
}

// LatestSnapshot returns the snapshot with the highest seq.
// Returns ErrNoSnapshots if the archive is empty.
func (a *Archive) LatestSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := a.db.QueryRowContext(ctx, `
		SELECT id, label, seq
		FROM snapshots
		ORDER BY seq DESC
		LIMIT 1
	`).Scan(&snap.ID, &snap.Label, &snap.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshots
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest snapshot: %w", err)
	}

	snap.Tables, err = a.tableSummaries(ctx, snap.ID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("latest snapshot: %w", err)
	}
	return snap, nil
}

// GetSnapshot returns the snapshot with the given id.
// Returns ErrSnapshotNotFound if there is none.
func (a *Archive) GetSnapshot(ctx context.Context, id string) (Snapshot, error) {
	snap := Snapshot{ID: id}
	err := a.db.QueryRowContext(ctx, `
		SELECT label, seq FROM snapshots WHERE id = ?
	`, id).Scan(&snap.Label, &snap.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("get snapshot %s: %w", id, ErrSnapshotNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot %s: %w", id, err)
	}

	snap.Tables, err = a.tableSummaries(ctx, id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot %s: %w", id, err)
	}
	return snap, nil
}

func (a *Archive) tableSummaries(ctx context.Context, snapshotID string) ([]TableSummary, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT table_name, row_count
		FROM archived_tables
		WHERE snapshot_id = ?
		ORDER BY table_name ASC
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("table summaries: %w", err)
	}
	defer rows.Close()

	tables := make([]TableSummary, 0)
	for rows.Next() {
		var ts TableSummary
		if err := rows.Scan(&ts.Name, &ts.Rows); err != nil {
			return nil, fmt.Errorf("table summaries: scan: %w", err)
		}
		tables = append(tables, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("table summaries: %w", err)
	}
	return tables, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
