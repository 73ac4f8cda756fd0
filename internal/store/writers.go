package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nawanshaju/pitlane/internal/constants"
	"github.com/nawanshaju/pitlane/internal/openf1"
)

// InsertMeetings bulk-inserts meeting records, ignoring duplicates.
func (db *DB) InsertMeetings(ctx context.Context, records []openf1.Record) error {
	return db.InsertInto(ctx, constants.TableMeetings, records)
}

// InsertSessions bulk-inserts session records, ignoring duplicates.
func (db *DB) InsertSessions(ctx context.Context, records []openf1.Record) error {
	return db.InsertInto(ctx, constants.TableSessions, records)
}

// InsertDrivers upserts per-session driver records. On conflict the mutable
// fields (broadcast_name, team_name, team_colour) are refreshed.
func (db *DB) InsertDrivers(ctx context.Context, records []openf1.Record) error {
	return db.InsertInto(ctx, constants.TableDrivers, records)
}

// InsertLaps bulk-inserts lap records, ignoring duplicates.
func (db *DB) InsertLaps(ctx context.Context, records []openf1.Record) error {
	return db.InsertInto(ctx, constants.TableLaps, records)
}

// InsertCarData inserts telemetry samples in fixed-size chunks, one
// transaction per chunk, to bound transaction size and memory. The table has
// no unique constraint: re-inserting the same samples duplicates them.
func (db *DB) InsertCarData(ctx context.Context, records []openf1.Record) error {
	return db.InsertInto(ctx, constants.TableCarData, records)
}

// InsertInto bulk-inserts records into any registered table using its
// registry columns and conflict policy. Empty input is a no-op.
func (db *DB) InsertInto(ctx context.Context, table string, records []openf1.Record) error {
	spec, ok := Spec(table)
	if !ok {
		return fmt.Errorf("unknown table %q", table)
	}
	if len(records) == 0 {
		return nil
	}

	query := buildInsert(spec)
	batch := spec.BatchSize
	if batch <= 0 {
		batch = len(records)
	}

	for start := 0; start < len(records); start += batch {
		end := start + batch
		if end > len(records) {
			end = len(records)
		}
		if err := db.execBatch(ctx, query, spec.Columns, records[start:end]); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", spec.Name, err)
		}
	}
	return nil
}

// execBatch runs one prepare-once/bind-many transaction over a slice of
// records, rolling back on the first failure.
func (db *DB) execBatch(ctx context.Context, query string, columns []string, records []openf1.Record) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, rec := range records {
		args := make([]any, len(columns))
		for i, col := range columns {
			args[i] = bindValue(rec[col])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func buildInsert(spec TableSpec) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(spec.Columns)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		spec.Name, strings.Join(spec.Columns, ", "), placeholders)
	if spec.Conflict != "" {
		query += " " + spec.Conflict
	}
	return query
}

// bindValue normalizes a decoded JSON value for the driver. Arrays and
// objects (e.g. segments_sector_*) are serialized to JSON text.
func bindValue(v any) any {
	switch val := v.(type) {
	case nil, string, bool, float64, int, int64:
		return val
	case []any, map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return nil
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", val)
	}
}
