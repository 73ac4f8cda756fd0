package store

import (
	"context"
	"fmt"

	"github.com/nawanshaju/pitlane/internal/constants"
)

// TableCached reports whether the table already holds rows, filtered by
// session key when one is given. Presence of a single row counts as a cache
// hit: a partially loaded session is indistinguishable from a complete one.
func (db *DB) TableCached(ctx context.Context, table string, sessionKey int) (bool, error) {
	spec, ok := Spec(table)
	if !ok {
		return false, fmt.Errorf("unknown table %q", table)
	}

	var count int
	var err error
	if sessionKey > 0 {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE session_key = ?", spec.Name)
		err = db.GetContext(ctx, &count, query, sessionKey)
	} else {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", spec.Name)
		err = db.GetContext(ctx, &count, query)
	}
	if err != nil {
		return false, fmt.Errorf("failed to count rows in %s: %w", spec.Name, err)
	}
	return count > 0, nil
}

// CachedTelemetrySessions lists the session keys that already have car
// telemetry loaded.
func (db *DB) CachedTelemetrySessions(ctx context.Context) ([]int, error) {
	var keys []int
	query := fmt.Sprintf("SELECT DISTINCT session_key FROM %s", constants.TableCarData)
	if err := db.SelectContext(ctx, &keys, query); err != nil {
		return nil, fmt.Errorf("failed to list cached telemetry sessions: %w", err)
	}
	return keys, nil
}
