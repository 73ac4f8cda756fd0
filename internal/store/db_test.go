package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nawanshaju/pitlane/internal/openf1"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() {
		if cErr := db.Close(); cErr != nil {
			t.Logf("db.Close error: %v", cErr)
		}
	})
	return db
}

func rowCount(t *testing.T, db *DB, table string) int {
	t.Helper()
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return count
}

func meetingRecord(meetingKey, year int, dateStart string) openf1.Record {
	return openf1.Record{
		"meeting_key":           float64(meetingKey),
		"circuit_key":           float64(meetingKey * 10),
		"circuit_short_name":    "Circuit",
		"country_code":          "XX",
		"country_key":           float64(1),
		"country_name":          "Testland",
		"date_start":            dateStart,
		"gmt_offset":            "00:00:00",
		"location":              "Testville",
		"meeting_name":          "Test Grand Prix",
		"meeting_official_name": "Formula 1 Test Grand Prix",
		"year":                  float64(year),
	}
}

func sessionRecord(sessionKey, meetingKey, year int, name, sessionType, dateStart string) openf1.Record {
	return openf1.Record{
		"session_key":        float64(sessionKey),
		"meeting_key":        float64(meetingKey),
		"circuit_key":        float64(meetingKey * 10),
		"circuit_short_name": "Circuit",
		"country_code":       "XX",
		"country_key":        float64(1),
		"country_name":       "Testland",
		"date_start":         dateStart,
		"date_end":           dateStart,
		"gmt_offset":         "00:00:00",
		"location":           "Testville",
		"session_name":       name,
		"session_type":       sessionType,
		"year":               float64(year),
	}
}

func driverRecord(sessionKey, meetingKey, driverNumber int, fullName, teamName string) openf1.Record {
	return openf1.Record{
		"session_key":    float64(sessionKey),
		"meeting_key":    float64(meetingKey),
		"driver_number":  float64(driverNumber),
		"broadcast_name": fullName,
		"country_code":   "XX",
		"first_name":     "Test",
		"last_name":      fullName,
		"full_name":      fullName,
		"name_acronym":   "TST",
		"team_name":      teamName,
		"team_colour":    "FF0000",
		"headshot_url":   "https://example.com/headshot.png",
	}
}

func lapRecord(sessionKey, driverNumber, lapNumber int) openf1.Record {
	return openf1.Record{
		"session_key":       float64(sessionKey),
		"meeting_key":       float64(1),
		"driver_number":     float64(driverNumber),
		"lap_number":        float64(lapNumber),
		"date_start":        "2025-05-04T13:00:00+00:00",
		"lap_duration":      92.345,
		"is_pit_out_lap":    false,
		"duration_sector_1": 28.1,
		"duration_sector_2": 31.2,
		"duration_sector_3": 33.0,
		"i1_speed":          float64(280),
		"i2_speed":          float64(301),
		"st_speed":          float64(315),
		"segments_sector_1": []any{float64(2048), float64(2049)},
		"segments_sector_2": []any{float64(2051)},
		"segments_sector_3": []any{float64(2048)},
	}
}

func carDataRecord(sessionKey, driverNumber, speed int) openf1.Record {
	return openf1.Record{
		"session_key":   float64(sessionKey),
		"meeting_key":   float64(1),
		"driver_number": float64(driverNumber),
		"date":          "2025-05-04T13:00:00.123000+00:00",
		"brake":         float64(0),
		"drs":           float64(8),
		"n_gear":        float64(7),
		"rpm":           float64(11250),
		"speed":         float64(speed),
		"throttle":      float64(99),
	}
}

func resultRecord(sessionKey, driverNumber, position, points int) openf1.Record {
	return openf1.Record{
		"session_key":    float64(sessionKey),
		"meeting_key":    float64(1),
		"driver_number":  float64(driverNumber),
		"position":       float64(position),
		"number_of_laps": float64(57),
		"points":         float64(points),
		"dnf":            false,
		"dns":            false,
		"dsq":            false,
		"duration":       "5410.1",
		"gap_to_leader":  "12.5",
	}
}

func TestOpen_AppliesSchema(t *testing.T) {
	db := setupTestDB(t)

	var name string
	err := db.Get(&name, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'meetings'")
	if err != nil {
		t.Fatalf("Expected meetings table to exist: %v", err)
	}

	// Every registry table must exist in the schema
	for _, table := range []string{
		"meetings", "sessions", "drivers", "laps", "car_data", "stints", "pit",
		"session_result", "starting_grid", "race_control", "weather",
		"location", "intervals", "position",
	} {
		if _, ok := Spec(table); !ok {
			t.Errorf("Expected registry entry for %s", table)
		}
		var n string
		if err := db.Get(&n, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table); err != nil {
			t.Errorf("Expected table %s in schema: %v", table, err)
		}
	}
}

func TestTableCached(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	cached, err := db.TableCached(ctx, "laps", 9161)
	if err != nil {
		t.Fatalf("TableCached failed: %v", err)
	}
	if cached {
		t.Error("Expected cache miss on empty table")
	}

	if err := db.InsertLaps(ctx, []openf1.Record{lapRecord(9161, 1, 1)}); err != nil {
		t.Fatalf("InsertLaps failed: %v", err)
	}

	cached, err = db.TableCached(ctx, "laps", 9161)
	if err != nil {
		t.Fatalf("TableCached failed: %v", err)
	}
	if !cached {
		t.Error("Expected cache hit after insert")
	}

	// Other sessions remain uncached
	cached, err = db.TableCached(ctx, "laps", 9999)
	if err != nil {
		t.Fatalf("TableCached failed: %v", err)
	}
	if cached {
		t.Error("Expected cache miss for different session")
	}

	if _, err := db.TableCached(ctx, "nonexistent", 1); err == nil {
		t.Error("Expected error for unknown table")
	}
}

func TestCachedTelemetrySessions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	keys, err := db.CachedTelemetrySessions(ctx)
	if err != nil {
		t.Fatalf("CachedTelemetrySessions failed: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("Expected no cached sessions, got %d", len(keys))
	}

	records := []openf1.Record{
		carDataRecord(9161, 1, 300),
		carDataRecord(9161, 1, 301),
		carDataRecord(9162, 44, 295),
	}
	if err := db.InsertCarData(ctx, records); err != nil {
		t.Fatalf("InsertCarData failed: %v", err)
	}

	keys, err = db.CachedTelemetrySessions(ctx)
	if err != nil {
		t.Fatalf("CachedTelemetrySessions failed: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("Expected 2 cached sessions, got %d", len(keys))
	}
}
