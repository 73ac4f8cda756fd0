package store

import (
	"slices"

	"github.com/nawanshaju/pitlane/internal/constants"
)

const Schema = `
CREATE TABLE IF NOT EXISTS meetings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	meeting_key INTEGER NOT NULL UNIQUE,
	circuit_key INTEGER,
	circuit_short_name TEXT,
	country_code TEXT,
	country_key INTEGER,
	country_name TEXT,
	date_start TEXT,
	gmt_offset TEXT,
	location TEXT,
	meeting_name TEXT,
	meeting_official_name TEXT,
	year INTEGER
);

CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_key INTEGER NOT NULL UNIQUE,
	meeting_key INTEGER,
	circuit_key INTEGER,
	circuit_short_name TEXT,
	country_code TEXT,
	country_key INTEGER,
	country_name TEXT,
	date_start TEXT,
	date_end TEXT,
	gmt_offset TEXT,
	location TEXT,
	session_name TEXT,
	session_type TEXT,
	year INTEGER
);

CREATE INDEX IF NOT EXISTS idx_sessions_meeting_key ON sessions(meeting_key);
CREATE INDEX IF NOT EXISTS idx_sessions_year ON sessions(year);

CREATE TABLE IF NOT EXISTS drivers (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_key INTEGER NOT NULL,
	meeting_key INTEGER,
	driver_number INTEGER NOT NULL,
	broadcast_name TEXT,
	country_code TEXT,
	first_name TEXT,
	last_name TEXT,
	full_name TEXT,
	name_acronym TEXT,
	team_name TEXT,
	team_colour TEXT,
	headshot_url TEXT,
	UNIQUE(session_key, driver_number)
);

CREATE TABLE IF NOT EXISTS laps (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_key INTEGER NOT NULL,
	meeting_key INTEGER,
	driver_number INTEGER NOT NULL,
	lap_number INTEGER NOT NULL,
	date_start TEXT,
	lap_duration REAL,
	is_pit_out_lap BOOLEAN,
	duration_sector_1 REAL,
	duration_sector_2 REAL,
	duration_sector_3 REAL,
	i1_speed INTEGER,
	i2_speed INTEGER,
	st_speed INTEGER,
	segments_sector_1 TEXT,
	segments_sector_2 TEXT,
	segments_sector_3 TEXT,
	UNIQUE(session_key, driver_number, lap_number)
);

CREATE TABLE IF NOT EXISTS car_data (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_key INTEGER NOT NULL,
	meeting_key INTEGER,
	driver_number INTEGER,
	date TEXT,
	brake INTEGER,
	drs INTEGER,
	n_gear INTEGER,
	rpm INTEGER,
	speed INTEGER,
	throttle INTEGER
);

CREATE INDEX IF NOT EXISTS idx_car_data_session_key ON car_data(session_key);

CREATE TABLE IF NOT EXISTS stints (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_key INTEGER NOT NULL,
	meeting_key INTEGER,
	driver_number INTEGER,
	stint_number INTEGER,
	lap_start INTEGER,
	lap_end INTEGER,
	compound TEXT,
	tyre_age_at_start INTEGER,
	UNIQUE(session_key, driver_number, stint_number)
);

CREATE TABLE IF NOT EXISTS pit (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_key INTEGER NOT NULL,
	meeting_key INTEGER,
	driver_number INTEGER,
	date TEXT,
	lap_number INTEGER,
	pit_duration REAL,
	UNIQUE(session_key, driver_number, lap_number)
);

CREATE TABLE IF NOT EXISTS session_result (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_key INTEGER NOT NULL,
	meeting_key INTEGER,
	driver_number INTEGER NOT NULL,
	position INTEGER,
	number_of_laps INTEGER,
	points INTEGER,
	dnf BOOLEAN,
	dns BOOLEAN,
	dsq BOOLEAN,
	duration TEXT,
	gap_to_leader TEXT,
	UNIQUE(session_key, driver_number)
);

CREATE TABLE IF NOT EXISTS starting_grid (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_key INTEGER NOT NULL,
	meeting_key INTEGER,
	driver_number INTEGER,
	position INTEGER,
	lap_duration REAL,
	UNIQUE(session_key, driver_number)
);

CREATE TABLE IF NOT EXISTS race_control (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_key INTEGER NOT NULL,
	meeting_key INTEGER,
	driver_number INTEGER,
	date TEXT,
	lap_number INTEGER,
	category TEXT,
	flag TEXT,
	scope TEXT,
	sector INTEGER,
	message TEXT
);

CREATE TABLE IF NOT EXISTS weather (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_key INTEGER NOT NULL,
	meeting_key INTEGER,
	date TEXT,
	air_temperature REAL,
	humidity REAL,
	pressure REAL,
	rainfall INTEGER,
	track_temperature REAL,
	wind_direction INTEGER,
	wind_speed REAL
);

CREATE TABLE IF NOT EXISTS location (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_key INTEGER NOT NULL,
	meeting_key INTEGER,
	driver_number INTEGER,
	date TEXT,
	x REAL,
	y REAL,
	z REAL
);

CREATE INDEX IF NOT EXISTS idx_location_session_key ON location(session_key);

CREATE TABLE IF NOT EXISTS intervals (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_key INTEGER NOT NULL,
	meeting_key INTEGER,
	driver_number INTEGER,
	date TEXT,
	gap_to_leader TEXT,
	interval TEXT
);

CREATE TABLE IF NOT EXISTS position (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_key INTEGER NOT NULL,
	meeting_key INTEGER,
	driver_number INTEGER,
	date TEXT,
	position INTEGER
);

CREATE INDEX IF NOT EXISTS idx_position_session_key ON position(session_key);
`

// TableSpec describes one ingestible table: its insert columns, conflict
// policy and batch size. The registry replaces runtime column inference, and
// filter keys are validated against it before reaching SQL.
type TableSpec struct {
	Name      string
	Columns   []string
	Conflict  string // clause appended to the INSERT, empty for none
	BatchSize int    // rows per transaction, 0 means all at once
}

// HasColumn reports whether col is an insertable column of the table.
func (s TableSpec) HasColumn(col string) bool {
	return slices.Contains(s.Columns, col)
}

var tables = map[string]TableSpec{
	constants.TableMeetings: {
		Name: constants.TableMeetings,
		Columns: []string{
			"meeting_key", "circuit_key", "circuit_short_name", "country_code",
			"country_key", "country_name", "date_start", "gmt_offset",
			"location", "meeting_name", "meeting_official_name", "year",
		},
		Conflict: "ON CONFLICT(meeting_key) DO NOTHING",
	},
	constants.TableSessions: {
		Name: constants.TableSessions,
		Columns: []string{
			"session_key", "meeting_key", "circuit_key", "circuit_short_name",
			"country_code", "country_key", "country_name", "date_start", "date_end",
			"gmt_offset", "location", "session_name", "session_type", "year",
		},
		Conflict: "ON CONFLICT(session_key) DO NOTHING",
	},
	constants.TableDrivers: {
		Name: constants.TableDrivers,
		Columns: []string{
			"session_key", "meeting_key", "driver_number", "broadcast_name",
			"country_code", "first_name", "last_name", "full_name",
			"name_acronym", "team_name", "team_colour", "headshot_url",
		},
		Conflict: `ON CONFLICT(session_key, driver_number) DO UPDATE SET
			broadcast_name = excluded.broadcast_name,
			team_name = excluded.team_name,
			team_colour = excluded.team_colour`,
	},
	constants.TableLaps: {
		Name: constants.TableLaps,
		Columns: []string{
			"session_key", "meeting_key", "driver_number", "lap_number",
			"date_start", "lap_duration", "is_pit_out_lap",
			"duration_sector_1", "duration_sector_2", "duration_sector_3",
			"i1_speed", "i2_speed", "st_speed",
			"segments_sector_1", "segments_sector_2", "segments_sector_3",
		},
		Conflict: "ON CONFLICT(session_key, driver_number, lap_number) DO NOTHING",
	},
	constants.TableCarData: {
		Name: constants.TableCarData,
		Columns: []string{
			"session_key", "meeting_key", "driver_number", "date",
			"brake", "drs", "n_gear", "rpm", "speed", "throttle",
		},
		BatchSize: constants.CarDataBatchSize,
	},
	constants.TableStints: {
		Name: constants.TableStints,
		Columns: []string{
			"session_key", "meeting_key", "driver_number", "stint_number",
			"lap_start", "lap_end", "compound", "tyre_age_at_start",
		},
		Conflict: "ON CONFLICT DO NOTHING",
	},
	constants.TablePit: {
		Name: constants.TablePit,
		Columns: []string{
			"session_key", "meeting_key", "driver_number", "date",
			"lap_number", "pit_duration",
		},
		Conflict: "ON CONFLICT DO NOTHING",
	},
	constants.TableSessionResult: {
		Name: constants.TableSessionResult,
		Columns: []string{
			"session_key", "meeting_key", "driver_number", "position",
			"number_of_laps", "points", "dnf", "dns", "dsq",
			"duration", "gap_to_leader",
		},
		Conflict: "ON CONFLICT DO NOTHING",
	},
	constants.TableStartingGrid: {
		Name: constants.TableStartingGrid,
		Columns: []string{
			"session_key", "meeting_key", "driver_number", "position", "lap_duration",
		},
		Conflict: "ON CONFLICT DO NOTHING",
	},
	constants.TableRaceControl: {
		Name: constants.TableRaceControl,
		Columns: []string{
			"session_key", "meeting_key", "driver_number", "date",
			"lap_number", "category", "flag", "scope", "sector", "message",
		},
		Conflict: "ON CONFLICT DO NOTHING",
	},
	constants.TableWeather: {
		Name: constants.TableWeather,
		Columns: []string{
			"session_key", "meeting_key", "date", "air_temperature", "humidity",
			"pressure", "rainfall", "track_temperature", "wind_direction", "wind_speed",
		},
		Conflict: "ON CONFLICT DO NOTHING",
	},
	constants.TableLocation: {
		Name: constants.TableLocation,
		Columns: []string{
			"session_key", "meeting_key", "driver_number", "date", "x", "y", "z",
		},
		Conflict: "ON CONFLICT DO NOTHING",
	},
	constants.TableIntervals: {
		Name: constants.TableIntervals,
		Columns: []string{
			"session_key", "meeting_key", "driver_number", "date",
			"gap_to_leader", "interval",
		},
		Conflict: "ON CONFLICT DO NOTHING",
	},
	constants.TablePosition: {
		Name: constants.TablePosition,
		Columns: []string{
			"session_key", "meeting_key", "driver_number", "date", "position",
		},
		Conflict: "ON CONFLICT DO NOTHING",
	},
}

// Spec returns the registry entry for a table.
func Spec(table string) (TableSpec, bool) {
	s, ok := tables[table]
	return s, ok
}
