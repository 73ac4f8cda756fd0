package store

import (
	"context"
	"fmt"
)

// Existence validators let route handlers answer with a specific 404 before
// running the main query.

func (db *DB) DriverExistsInYear(ctx context.Context, driverNumber, year int) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM drivers d
		JOIN sessions s ON s.session_key = d.session_key
		WHERE d.driver_number = ? AND s.year = ?`
	return db.exists(ctx, query, driverNumber, year)
}

func (db *DB) DriverExistsInSession(ctx context.Context, driverNumber, sessionKey int) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM drivers d
		WHERE d.driver_number = ? AND d.session_key = ?`
	return db.exists(ctx, query, driverNumber, sessionKey)
}

func (db *DB) SessionExists(ctx context.Context, sessionKey int) (bool, error) {
	return db.exists(ctx, "SELECT COUNT(*) FROM sessions WHERE session_key = ?", sessionKey)
}

func (db *DB) MeetingExists(ctx context.Context, meetingKey int) (bool, error) {
	return db.exists(ctx, "SELECT COUNT(*) FROM meetings WHERE meeting_key = ?", meetingKey)
}

func (db *DB) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("existence check failed: %w", err)
	}
	return count > 0, nil
}
