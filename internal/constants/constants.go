// Package constants contains application-wide constants to avoid magic numbers and strings.
package constants

import "time"

// Application defaults
const (
	DefaultPort           = "8000"
	DefaultDBPath         = "pitlane.db"
	DefaultOpenF1URL      = "https://api.openf1.org/v1"
	DefaultScrapeBaseURL  = "https://www.formula1.com"
	DefaultYear           = 2025
	DefaultRecentSessions = 3
	DefaultRequestRate    = 2.0 // OpenF1 requests per second
)

// Timeouts
const (
	APIRequestTimeout = 30 * time.Second
	ScrapeTimeout     = 15 * time.Second
	ShutdownTimeout   = 5 * time.Second
)

// Ingestion
const (
	CarDataBatchSize = 5000
	QueryRowLimit    = 1000
)

// Table names
const (
	TableMeetings      = "meetings"
	TableSessions      = "sessions"
	TableDrivers       = "drivers"
	TableLaps          = "laps"
	TableCarData       = "car_data"
	TableStints        = "stints"
	TablePit           = "pit"
	TableSessionResult = "session_result"
	TableStartingGrid  = "starting_grid"
	TableRaceControl   = "race_control"
	TableWeather       = "weather"
	TableLocation      = "location"
	TableIntervals     = "intervals"
	TablePosition      = "position"
)

// Session types
const (
	SessionTypeRace = "Race"
)
