// Package ingest hydrates the local store from the OpenF1 API using a
// two-tier loading strategy: priority tables are backfilled eagerly for a
// season, lazy tables are fetched on first access per session.
package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nawanshaju/pitlane/internal/constants"
	"github.com/nawanshaju/pitlane/internal/logger"
	"github.com/nawanshaju/pitlane/internal/openf1"
	"github.com/nawanshaju/pitlane/internal/store"
)

// Fetcher fetches one endpoint's records from the remote API.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string, params url.Values) ([]openf1.Record, error)
}

// Config controls what is pre-loaded versus lazy-loaded.
type Config struct {
	PriorityTables []string
	LazyTables     []string
	RecentSessions int // pre-load telemetry for the last N race sessions
}

// DefaultConfig mirrors the service's standing loading policy.
func DefaultConfig() Config {
	return Config{
		PriorityTables: []string{
			constants.TableMeetings, constants.TableSessions, constants.TableDrivers,
			constants.TableLaps, constants.TableStints, constants.TablePit,
			constants.TableSessionResult, constants.TableStartingGrid,
			constants.TableRaceControl, constants.TableWeather,
		},
		LazyTables: []string{
			constants.TableCarData, constants.TableLocation,
			constants.TableIntervals, constants.TablePosition,
		},
		RecentSessions: constants.DefaultRecentSessions,
	}
}

// Manager sequences backfills and serves cache-miss-triggers-fetch reads.
//
// Concurrent GetData calls for the same missing session/table are not
// serialized: both may fetch and insert. Unique constraints absorb the
// duplicates everywhere except car_data, which has none.
type Manager struct {
	db     *store.DB
	client Fetcher
	cfg    Config
	log    *logger.Logger
}

func NewManager(db *store.DB, client Fetcher, cfg Config, log *logger.Logger) *Manager {
	if cfg.RecentSessions <= 0 {
		cfg.RecentSessions = constants.DefaultRecentSessions
	}
	if log == nil {
		log = logger.Default()
	}
	return &Manager{
		db:     db,
		client: client,
		cfg:    cfg,
		log:    log.WithComponent("ingest"),
	}
}

// InitialSetup backfills a full season: meetings, sessions, the remaining
// priority tables in fixed order, then telemetry for the most recent race
// sessions. Per-table failures are logged and the run continues.
func (m *Manager) InitialSetup(ctx context.Context, year int) error {
	run := m.log.WithRun(uuid.NewString())
	start := time.Now()
	run.Info("starting initial setup", "year", year)

	params := yearParams(year)

	run.Info("loading meetings")
	meetings := m.fetch(ctx, run, constants.TableMeetings, params)
	if err := m.db.InsertMeetings(ctx, meetings); err != nil {
		run.Error("failed to insert meetings", "error", err)
	}

	run.Info("loading sessions")
	sessions := m.fetch(ctx, run, constants.TableSessions, params)
	if err := m.db.InsertSessions(ctx, sessions); err != nil {
		run.Error("failed to insert sessions", "error", err)
	}

	recent, err := m.db.RecentRaceSessions(ctx, m.cfg.RecentSessions)
	if err != nil {
		run.Error("failed to resolve recent sessions", "error", err)
	}

	for _, table := range m.cfg.PriorityTables {
		if table == constants.TableMeetings || table == constants.TableSessions {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		run.Info("loading priority table", "table", table)
		data := m.fetch(ctx, run, table, params)
		if err := m.insert(ctx, table, data); err != nil {
			run.Error("failed to insert priority table", "table", table, "error", err)
		}
	}

	run.Info("pre-loading telemetry", "sessions", len(recent))
	for _, sessionKey := range recent {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.LoadSessionTelemetry(ctx, sessionKey)
	}

	run.Info("initial setup completed", "elapsed", time.Since(start).String())
	return nil
}

// LoadSessionTelemetry hydrates the four lazy datasets for one session.
func (m *Manager) LoadSessionTelemetry(ctx context.Context, sessionKey int) {
	log := m.log.WithSession(sessionKey)
	log.Info("loading session telemetry")

	params := sessionParams(sessionKey)

	if data := m.fetch(ctx, log, constants.TableCarData, params); len(data) > 0 {
		if err := m.db.InsertCarData(ctx, data); err != nil {
			log.Error("failed to insert car_data", "error", err)
		}
	}

	if data := m.fetch(ctx, log, constants.TableLocation, params); len(data) > 0 {
		if err := m.db.InsertInto(ctx, constants.TableLocation, data); err != nil {
			log.Error("failed to insert location", "error", err)
		}
	}

	if data := m.fetch(ctx, log, constants.TableIntervals, params); len(data) > 0 {
		// Gaps and intervals are not guaranteed to be plain numbers; coerce
		// them to text to fit the column type.
		stringifyFields(data, "gap_to_leader", "interval")
		if err := m.db.InsertInto(ctx, constants.TableIntervals, data); err != nil {
			log.Error("failed to insert intervals", "error", err)
		}
	}

	if data := m.fetch(ctx, log, constants.TablePosition, params); len(data) > 0 {
		if err := m.db.InsertInto(ctx, constants.TablePosition, data); err != nil {
			log.Error("failed to insert position", "error", err)
		}
	}

	log.Info("session telemetry loaded")
}

// LoadDriversByYear refreshes per-session driver records for every session of
// a season. The driver upsert keeps identity fields and refreshes team data.
func (m *Manager) LoadDriversByYear(ctx context.Context, year int) error {
	sessions := m.fetch(ctx, m.log, constants.TableSessions, yearParams(year))
	for _, session := range sessions {
		if err := ctx.Err(); err != nil {
			return err
		}
		sessionKey, ok := recordInt(session, "session_key")
		if !ok {
			continue
		}
		data := m.fetch(ctx, m.log, constants.TableDrivers, sessionParams(sessionKey))
		if err := m.db.InsertDrivers(ctx, data); err != nil {
			m.log.Error("failed to insert drivers", "session_key", sessionKey, "error", err)
		}
	}
	return nil
}

// LoadSessionResults hydrates finishing classifications for every session of
// a season.
func (m *Manager) LoadSessionResults(ctx context.Context, year int) error {
	sessions := m.fetch(ctx, m.log, constants.TableSessions, yearParams(year))
	for _, session := range sessions {
		if err := ctx.Err(); err != nil {
			return err
		}
		sessionKey, ok := recordInt(session, "session_key")
		if !ok {
			continue
		}
		data := m.fetch(ctx, m.log, constants.TableSessionResult, sessionParams(sessionKey))
		stringifyFields(data, "gap_to_leader", "duration")
		if err := m.db.InsertInto(ctx, constants.TableSessionResult, data); err != nil {
			m.log.Error("failed to insert session results", "session_key", sessionKey, "error", err)
		}
	}
	return nil
}

// GetData reads a table for a session, fetching from the API first when the
// store has no rows for it. The response always comes from the store so it
// reflects committed state, not just the freshly fetched rows.
func (m *Manager) GetData(ctx context.Context, table string, sessionKey int, filters map[string]any) ([]map[string]any, error) {
	cached, err := m.db.TableCached(ctx, table, sessionKey)
	if err != nil {
		return nil, err
	}

	if !cached {
		m.log.Info("cache miss, fetching from API", "table", table, "session_key", sessionKey)

		params := sessionParams(sessionKey)
		for k, v := range filters {
			params.Set(k, fmt.Sprintf("%v", v))
		}

		data := m.fetch(ctx, m.log, table, params)
		if table == constants.TableIntervals {
			stringifyFields(data, "gap_to_leader", "interval")
		}
		if err := m.insert(ctx, table, data); err != nil {
			m.log.Error("failed to insert fetched data", "table", table, "error", err)
		}
	}

	return m.db.QueryTable(ctx, table, sessionKey, filters)
}

// fetch wraps the client call with the "fetch failed means no data" contract:
// errors are logged and an empty batch is returned.
func (m *Manager) fetch(ctx context.Context, log *logger.Logger, endpoint string, params url.Values) []openf1.Record {
	records, err := m.client.Fetch(ctx, endpoint, params)
	if err != nil {
		log.Error("API request failed", "endpoint", endpoint, "error", err)
		return nil
	}
	log.Info("fetched records", "endpoint", endpoint, "count", len(records))
	return records
}

// insert dispatches to the specialized writer for the table.
func (m *Manager) insert(ctx context.Context, table string, records []openf1.Record) error {
	switch table {
	case constants.TableMeetings:
		return m.db.InsertMeetings(ctx, records)
	case constants.TableSessions:
		return m.db.InsertSessions(ctx, records)
	case constants.TableDrivers:
		return m.db.InsertDrivers(ctx, records)
	case constants.TableLaps:
		return m.db.InsertLaps(ctx, records)
	case constants.TableCarData:
		return m.db.InsertCarData(ctx, records)
	default:
		return m.db.InsertInto(ctx, table, records)
	}
}

func stringifyFields(records []openf1.Record, fields ...string) {
	for _, rec := range records {
		for _, field := range fields {
			if v, ok := rec[field]; ok && v != nil {
				rec[field] = fmt.Sprintf("%v", v)
			}
		}
	}
}

func recordInt(rec openf1.Record, key string) (int, bool) {
	switch v := rec[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}

func yearParams(year int) url.Values {
	return url.Values{"year": {strconv.Itoa(year)}}
}

func sessionParams(sessionKey int) url.Values {
	return url.Values{"session_key": {strconv.Itoa(sessionKey)}}
}
