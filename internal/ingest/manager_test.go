package ingest

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/nawanshaju/pitlane/internal/logger"
	"github.com/nawanshaju/pitlane/internal/openf1"
	"github.com/nawanshaju/pitlane/internal/store"
)

// fakeFetcher serves scripted responses per endpoint and counts calls.
type fakeFetcher struct {
	responses map[string][]openf1.Record
	calls     map[string]int
	err       error
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		responses: map[string][]openf1.Record{},
		calls:     map[string]int{},
	}
}

func (f *fakeFetcher) Fetch(_ context.Context, endpoint string, _ url.Values) ([]openf1.Record, error) {
	f.calls[endpoint]++
	if f.err != nil {
		return nil, f.err
	}
	return f.responses[endpoint], nil
}

func setupManager(t *testing.T) (*Manager, *store.DB, *fakeFetcher) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})

	fetcher := newFakeFetcher()
	m := NewManager(db, fetcher, DefaultConfig(), logger.Default())
	return m, db, fetcher
}

func carData(sessionKey, driverNumber, speed int) openf1.Record {
	return openf1.Record{
		"session_key":   float64(sessionKey),
		"meeting_key":   float64(1219),
		"driver_number": float64(driverNumber),
		"date":          "2025-05-04T13:00:00+00:00",
		"brake":         float64(0),
		"drs":           float64(8),
		"n_gear":        float64(7),
		"rpm":           float64(11000),
		"speed":         float64(speed),
		"throttle":      float64(99),
	}
}

func TestGetData_CacheMissFetchesOnce(t *testing.T) {
	m, _, fetcher := setupManager(t)
	ctx := context.Background()

	fetcher.responses["car_data"] = []openf1.Record{
		carData(9161, 1, 310),
		carData(9161, 1, 312),
		carData(9161, 44, 300),
	}

	rows, err := m.GetData(ctx, "car_data", 9161, map[string]any{"driver_number": 1})
	if err != nil {
		t.Fatalf("GetData failed: %v", err)
	}
	if fetcher.calls["car_data"] != 1 {
		t.Errorf("Expected exactly 1 fetch, got %d", fetcher.calls["car_data"])
	}
	// The response is re-read from the store and filtered
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows for driver 1, got %d", len(rows))
	}

	// Second call is a cache hit: no further fetch
	rows, err = m.GetData(ctx, "car_data", 9161, nil)
	if err != nil {
		t.Fatalf("GetData failed: %v", err)
	}
	if fetcher.calls["car_data"] != 1 {
		t.Errorf("Expected no additional fetch on cache hit, got %d", fetcher.calls["car_data"])
	}
	if len(rows) != 3 {
		t.Errorf("Expected all 3 stored rows, got %d", len(rows))
	}
}

func TestGetData_FetchFailureReadsStore(t *testing.T) {
	m, _, fetcher := setupManager(t)
	fetcher.err = errors.New("connection refused")

	// Transport failure is swallowed: the caller sees the (empty) committed
	// state, not an error.
	rows, err := m.GetData(context.Background(), "laps", 9161, nil)
	if err != nil {
		t.Fatalf("GetData failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no rows, got %d", len(rows))
	}
}

func TestGetData_RejectsUnknownTable(t *testing.T) {
	m, _, _ := setupManager(t)

	if _, err := m.GetData(context.Background(), "nope", 1, nil); err == nil {
		t.Fatal("Expected error for unknown table")
	}
}

func seedUpstream(f *fakeFetcher) {
	f.responses["meetings"] = []openf1.Record{{
		"meeting_key": float64(1219), "circuit_key": float64(10),
		"circuit_short_name": "Melbourne", "country_code": "AUS",
		"country_key": float64(5), "country_name": "Australia",
		"date_start": "2025-03-14T01:30:00+00:00", "gmt_offset": "11:00:00",
		"location": "Melbourne", "meeting_name": "Australian Grand Prix",
		"meeting_official_name": "Formula 1 Australian Grand Prix 2025", "year": float64(2025),
	}}
	f.responses["sessions"] = []openf1.Record{
		{
			"session_key": float64(9001), "meeting_key": float64(1219),
			"circuit_key": float64(10), "circuit_short_name": "Melbourne",
			"country_code": "AUS", "country_key": float64(5), "country_name": "Australia",
			"date_start": "2025-03-15T05:00:00+00:00", "date_end": "2025-03-15T06:00:00+00:00",
			"gmt_offset": "11:00:00", "location": "Melbourne",
			"session_name": "Qualifying", "session_type": "Qualifying", "year": float64(2025),
		},
		{
			"session_key": float64(9002), "meeting_key": float64(1219),
			"circuit_key": float64(10), "circuit_short_name": "Melbourne",
			"country_code": "AUS", "country_key": float64(5), "country_name": "Australia",
			"date_start": "2025-03-16T04:00:00+00:00", "date_end": "2025-03-16T06:00:00+00:00",
			"gmt_offset": "11:00:00", "location": "Melbourne",
			"session_name": "Race", "session_type": "Race", "year": float64(2025),
		},
	}
	f.responses["drivers"] = []openf1.Record{{
		"session_key": float64(9002), "meeting_key": float64(1219),
		"driver_number": float64(1), "broadcast_name": "M VERSTAPPEN",
		"country_code": "NED", "first_name": "Max", "last_name": "Verstappen",
		"full_name": "Max VERSTAPPEN", "name_acronym": "VER",
		"team_name": "Red Bull Racing", "team_colour": "3671C6",
		"headshot_url": "https://example.com/ver.png",
	}}
	f.responses["laps"] = []openf1.Record{{
		"session_key": float64(9002), "meeting_key": float64(1219),
		"driver_number": float64(1), "lap_number": float64(1),
		"date_start": "2025-03-16T04:03:00+00:00", "lap_duration": 92.5,
		"is_pit_out_lap": false,
		"duration_sector_1": 28.0, "duration_sector_2": 31.5, "duration_sector_3": 33.0,
		"i1_speed": float64(280), "i2_speed": float64(300), "st_speed": float64(310),
		"segments_sector_1": []any{float64(2048)},
		"segments_sector_2": []any{float64(2049)},
		"segments_sector_3": []any{float64(2051)},
	}}
	f.responses["weather"] = []openf1.Record{{
		"session_key": float64(9002), "meeting_key": float64(1219),
		"date":            "2025-03-16T04:00:00+00:00",
		"air_temperature": 24.5, "humidity": 60.0, "pressure": 1013.2,
		"rainfall": float64(0), "track_temperature": 41.2,
		"wind_direction": float64(180), "wind_speed": 3.4,
	}}
	f.responses["car_data"] = []openf1.Record{carData(9002, 1, 305)}
	f.responses["location"] = []openf1.Record{{
		"session_key": float64(9002), "meeting_key": float64(1219),
		"driver_number": float64(1), "date": "2025-03-16T04:03:01+00:00",
		"x": 1024.0, "y": -512.0, "z": 5.0,
	}}
	f.responses["intervals"] = []openf1.Record{{
		"session_key": float64(9002), "meeting_key": float64(1219),
		"driver_number": float64(1), "date": "2025-03-16T04:10:00+00:00",
		"gap_to_leader": 1.25, "interval": 0.5,
	}}
	f.responses["position"] = []openf1.Record{{
		"session_key": float64(9002), "meeting_key": float64(1219),
		"driver_number": float64(1), "date": "2025-03-16T04:00:00+00:00",
		"position": float64(1),
	}}
}

func TestInitialSetup_PopulatesSeasonAndTelemetry(t *testing.T) {
	m, db, fetcher := setupManager(t)
	ctx := context.Background()
	seedUpstream(fetcher)

	if err := m.InitialSetup(ctx, 2025); err != nil {
		t.Fatalf("InitialSetup failed: %v", err)
	}

	counts := map[string]int{
		"meetings": 1,
		"sessions": 2,
		"drivers":  1,
		"laps":     1,
		"weather":  1,
		"car_data": 1,
		"location": 1,
	}
	for table, want := range counts {
		var got int
		if err := db.Get(&got, "SELECT COUNT(*) FROM "+table); err != nil {
			t.Fatalf("Failed to count %s: %v", table, err)
		}
		if got != want {
			t.Errorf("Expected %d rows in %s, got %d", want, table, got)
		}
	}

	// Every priority table was fetched exactly once, plus the lazy tables
	// for the one recent race session.
	for _, endpoint := range []string{"meetings", "sessions", "drivers", "laps", "car_data", "intervals"} {
		if fetcher.calls[endpoint] != 1 {
			t.Errorf("Expected 1 fetch for %s, got %d", endpoint, fetcher.calls[endpoint])
		}
	}

	// Intervals gap fields were coerced to text
	var gap string
	if err := db.Get(&gap, "SELECT gap_to_leader FROM intervals LIMIT 1"); err != nil {
		t.Fatalf("Failed to read interval: %v", err)
	}
	if gap != "1.25" {
		t.Errorf("Expected stringified gap_to_leader, got %q", gap)
	}
}

func TestInitialSetup_Rerun_IdempotencyAsymmetry(t *testing.T) {
	m, db, fetcher := setupManager(t)
	ctx := context.Background()
	seedUpstream(fetcher)

	if err := m.InitialSetup(ctx, 2025); err != nil {
		t.Fatalf("InitialSetup failed: %v", err)
	}
	if err := m.InitialSetup(ctx, 2025); err != nil {
		t.Fatalf("Second InitialSetup failed: %v", err)
	}

	// Conflict-ignoring tables are unchanged by the second run
	for _, table := range []string{"meetings", "sessions", "laps"} {
		var got int
		if err := db.Get(&got, "SELECT COUNT(*) FROM "+table); err != nil {
			t.Fatalf("Failed to count %s: %v", table, err)
		}
		want := map[string]int{"meetings": 1, "sessions": 2, "laps": 1}[table]
		if got != want {
			t.Errorf("Expected %s idempotent at %d rows, got %d", table, want, got)
		}
	}

	// car_data has no unique constraint and accumulates duplicates
	var telemetry int
	if err := db.Get(&telemetry, "SELECT COUNT(*) FROM car_data"); err != nil {
		t.Fatalf("Failed to count car_data: %v", err)
	}
	if telemetry != 2 {
		t.Errorf("Expected duplicated telemetry after rerun, got %d rows", telemetry)
	}
}

func TestInitialSetup_UpstreamFailureIsNonFatal(t *testing.T) {
	m, db, fetcher := setupManager(t)
	fetcher.err = errors.New("503 service unavailable")

	if err := m.InitialSetup(context.Background(), 2025); err != nil {
		t.Fatalf("Expected best-effort run, got %v", err)
	}
	var got int
	if err := db.Get(&got, "SELECT COUNT(*) FROM meetings"); err != nil {
		t.Fatalf("Failed to count meetings: %v", err)
	}
	if got != 0 {
		t.Errorf("Expected empty store after failed run, got %d meetings", got)
	}
}

func TestInitialSetup_CancelledContext(t *testing.T) {
	m, _, fetcher := setupManager(t)
	seedUpstream(fetcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.InitialSetup(ctx, 2025); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestLoadSessionResults_CoercesGapAndDuration(t *testing.T) {
	m, db, fetcher := setupManager(t)
	ctx := context.Background()

	fetcher.responses["sessions"] = []openf1.Record{{
		"session_key": float64(9002), "meeting_key": float64(1219),
		"session_name": "Race", "session_type": "Race", "year": float64(2025),
		"date_start": "2025-03-16T04:00:00+00:00",
	}}
	fetcher.responses["session_result"] = []openf1.Record{{
		"session_key": float64(9002), "meeting_key": float64(1219),
		"driver_number": float64(1), "position": float64(1),
		"number_of_laps": float64(57), "points": float64(25),
		"dnf": false, "dns": false, "dsq": false,
		"duration": 5410.123, "gap_to_leader": float64(0),
	}}

	if err := m.LoadSessionResults(ctx, 2025); err != nil {
		t.Fatalf("LoadSessionResults failed: %v", err)
	}

	var duration, gap string
	if err := db.Get(&duration, "SELECT duration FROM session_result LIMIT 1"); err != nil {
		t.Fatalf("Failed to read result: %v", err)
	}
	if err := db.Get(&gap, "SELECT gap_to_leader FROM session_result LIMIT 1"); err != nil {
		t.Fatalf("Failed to read result: %v", err)
	}
	if duration != "5410.123" {
		t.Errorf("Expected stringified duration, got %q", duration)
	}
	if gap != "0" {
		t.Errorf("Expected stringified gap, got %q", gap)
	}
}

func TestLoadDriversByYear(t *testing.T) {
	m, db, fetcher := setupManager(t)
	ctx := context.Background()
	seedUpstream(fetcher)

	if err := m.LoadDriversByYear(ctx, 2025); err != nil {
		t.Fatalf("LoadDriversByYear failed: %v", err)
	}

	// One drivers fetch per upstream session
	if fetcher.calls["drivers"] != 2 {
		t.Errorf("Expected 2 driver fetches, got %d", fetcher.calls["drivers"])
	}
	var got int
	if err := db.Get(&got, "SELECT COUNT(*) FROM drivers"); err != nil {
		t.Fatalf("Failed to count drivers: %v", err)
	}
	if got != 1 {
		t.Errorf("Expected 1 driver row after upsert, got %d", got)
	}
}
