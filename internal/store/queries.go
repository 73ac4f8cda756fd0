package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/nawanshaju/pitlane/internal/constants"
)

// SeasonDriver is one driver active in a season, taken from their most recent
// session of that year so team fields reflect the latest upsert.
type SeasonDriver struct {
	ID            int64   `db:"id" json:"id"`
	DriverNumber  int     `db:"driver_number" json:"driver_number"`
	FirstName     *string `db:"first_name" json:"first_name"`
	LastName      *string `db:"last_name" json:"last_name"`
	FullName      *string `db:"full_name" json:"full_name"`
	BroadcastName *string `db:"broadcast_name" json:"broadcast_name"`
	NameAcronym   *string `db:"name_acronym" json:"name_acronym"`
	TeamName      *string `db:"team_name" json:"team_name"`
	TeamColour    *string `db:"team_colour" json:"team_colour"`
	CountryCode   *string `db:"country_code" json:"country_code"`
	HeadshotURL   *string `db:"headshot_url" json:"headshot_url"`
}

// RaceFinish is one race win or podium for a driver in a season.
type RaceFinish struct {
	CircuitShortName *string `db:"circuit_short_name" json:"circuit_short_name"`
	Location         *string `db:"location" json:"location"`
	DriverNumber     int     `db:"driver_number" json:"driver_number"`
	FullName         *string `db:"full_name" json:"full_name"`
	TeamName         *string `db:"team_name" json:"team_name"`
	WinDate          *string `db:"win_date" json:"win_date"`
}

// MeetingSummary is the season-listing projection of a meeting.
type MeetingSummary struct {
	MeetingKey  int     `db:"meeting_key" json:"meeting_key"`
	CountryCode *string `db:"country_code" json:"country_code"`
	CountryName *string `db:"country_name" json:"country_name"`
	DateStart   *string `db:"date_start" json:"date_start"`
	Location    *string `db:"location" json:"location"`
	MeetingName *string `db:"meeting_name" json:"meeting_name"`
}

// MeetingDetail is the single-meeting projection.
type MeetingDetail struct {
	CircuitShortName    *string `db:"circuit_short_name" json:"circuit_short_name"`
	CountryCode         *string `db:"country_code" json:"country_code"`
	CountryName         *string `db:"country_name" json:"country_name"`
	DateStart           *string `db:"date_start" json:"date_start"`
	Location            *string `db:"location" json:"location"`
	MeetingName         *string `db:"meeting_name" json:"meeting_name"`
	MeetingOfficialName *string `db:"meeting_official_name" json:"meeting_official_name"`
	Year                int     `db:"year" json:"year"`
}

// SessionSummary is one session of a meeting.
type SessionSummary struct {
	SessionKey       int     `db:"session_key" json:"session_key"`
	CircuitShortName *string `db:"circuit_short_name" json:"circuit_short_name"`
	DateStart        *string `db:"date_start" json:"date_start"`
	DateEnd          *string `db:"date_end" json:"date_end"`
	Location         *string `db:"location" json:"location"`
	SessionName      *string `db:"session_name" json:"session_name"`
	SessionType      *string `db:"session_type" json:"session_type"`
}

// SessionResultRow is one finishing classification entry joined with driver
// identity.
type SessionResultRow struct {
	Position     *int    `db:"position" json:"position"`
	NumberOfLaps *int    `db:"number_of_laps" json:"number_of_laps"`
	GapToLeader  *string `db:"gap_to_leader" json:"gap_to_leader"`
	Duration     *string `db:"duration" json:"duration"`
	DriverNumber int     `db:"driver_number" json:"driver_number"`
	FullName     *string `db:"full_name" json:"full_name"`
	TeamName     *string `db:"team_name" json:"team_name"`
	TeamColour   *string `db:"team_colour" json:"team_colour"`
	DNF          bool    `db:"dnf" json:"dnf"`
	DNS          bool    `db:"dns" json:"dns"`
	DSQ          bool    `db:"dsq" json:"dsq"`
	Points       *int    `db:"points" json:"points"`
	HeadshotURL  *string `db:"headshot_url" json:"headshot_url"`
}

// DriversByYear lists drivers active in a season, one row per driver number.
func (db *DB) DriversByYear(ctx context.Context, year int) ([]SeasonDriver, error) {
	query := `
		SELECT d.id, d.driver_number, d.first_name, d.last_name, d.full_name,
		       d.broadcast_name, d.name_acronym, d.team_name, d.team_colour,
		       d.country_code, d.headshot_url
		FROM drivers d
		JOIN sessions s ON d.session_key = s.session_key
		WHERE s.year = ?
		  AND d.session_key = (
			SELECT MAX(d2.session_key)
			FROM drivers d2
			JOIN sessions s2 ON d2.session_key = s2.session_key
			WHERE d2.driver_number = d.driver_number AND s2.year = ?
		  )
		ORDER BY d.driver_number`

	drivers := []SeasonDriver{}
	if err := db.SelectContext(ctx, &drivers, query, year, year); err != nil {
		return nil, fmt.Errorf("failed to query drivers for year %d: %w", year, err)
	}
	return drivers, nil
}

// RaceWins lists a driver's race victories in a season.
func (db *DB) RaceWins(ctx context.Context, driverNumber, year int) ([]RaceFinish, error) {
	return db.raceFinishes(ctx, driverNumber, year, 1)
}

// Podiums lists a driver's top-3 race finishes in a season.
func (db *DB) Podiums(ctx context.Context, driverNumber, year int) ([]RaceFinish, error) {
	return db.raceFinishes(ctx, driverNumber, year, 3)
}

func (db *DB) raceFinishes(ctx context.Context, driverNumber, year, maxPosition int) ([]RaceFinish, error) {
	query := `
		SELECT s.circuit_short_name, s.location, d.driver_number, d.full_name,
		       d.team_name, s.date_start AS win_date
		FROM session_result sr
		JOIN drivers d ON d.driver_number = sr.driver_number AND d.session_key = sr.session_key
		JOIN sessions s ON sr.session_key = s.session_key
		WHERE d.driver_number = ? AND s.year = ?
		  AND sr.position <= ? AND s.session_name = 'Race'
		ORDER BY win_date, s.circuit_short_name`

	finishes := []RaceFinish{}
	if err := db.SelectContext(ctx, &finishes, query, driverNumber, year, maxPosition); err != nil {
		return nil, fmt.Errorf("failed to query race finishes for driver %d: %w", driverNumber, err)
	}
	return finishes, nil
}

// MeetingsByYear lists a season's meetings ordered by start date.
func (db *DB) MeetingsByYear(ctx context.Context, year int) ([]MeetingSummary, error) {
	query := `
		SELECT m.meeting_key, m.country_code, m.country_name, m.date_start,
		       m.location, m.meeting_name
		FROM meetings m
		WHERE m.year = ?
		ORDER BY m.date_start`

	meetings := []MeetingSummary{}
	if err := db.SelectContext(ctx, &meetings, query, year); err != nil {
		return nil, fmt.Errorf("failed to query meetings for year %d: %w", year, err)
	}
	return meetings, nil
}

// MeetingByKey returns one meeting's detail, or nil when the key is unknown.
func (db *DB) MeetingByKey(ctx context.Context, meetingKey int) (*MeetingDetail, error) {
	query := `
		SELECT m.circuit_short_name, m.country_code, m.country_name, m.date_start,
		       m.location, m.meeting_name, m.meeting_official_name, m.year
		FROM meetings m
		WHERE m.meeting_key = ?`

	var meeting MeetingDetail
	err := db.GetContext(ctx, &meeting, query, meetingKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query meeting %d: %w", meetingKey, err)
	}
	return &meeting, nil
}

// SessionsForMeeting lists a meeting's sessions ordered by start date.
func (db *DB) SessionsForMeeting(ctx context.Context, meetingKey int) ([]SessionSummary, error) {
	query := `
		SELECT s.session_key, s.circuit_short_name, s.date_start, s.date_end,
		       s.location, s.session_name, s.session_type
		FROM sessions s
		WHERE s.meeting_key = ?
		ORDER BY s.date_start`

	sessions := []SessionSummary{}
	if err := db.SelectContext(ctx, &sessions, query, meetingKey); err != nil {
		return nil, fmt.Errorf("failed to query sessions for meeting %d: %w", meetingKey, err)
	}
	return sessions, nil
}

// SessionByKey returns one session, or nil when the key is unknown.
func (db *DB) SessionByKey(ctx context.Context, sessionKey int) (*SessionSummary, error) {
	query := `
		SELECT s.session_key, s.circuit_short_name, s.date_start, s.date_end,
		       s.location, s.session_name, s.session_type
		FROM sessions s
		WHERE s.session_key = ?`

	var session SessionSummary
	err := db.GetContext(ctx, &session, query, sessionKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session %d: %w", sessionKey, err)
	}
	return &session, nil
}

// SessionResults lists a session's finishing classification joined with
// driver identity, ordered by position.
func (db *DB) SessionResults(ctx context.Context, sessionKey int) ([]SessionResultRow, error) {
	query := `
		SELECT sr.position, sr.number_of_laps, sr.gap_to_leader, sr.duration,
		       sr.driver_number, d.full_name, d.team_name, d.team_colour,
		       sr.dnf, sr.dns, sr.dsq, sr.points, d.headshot_url
		FROM session_result sr
		JOIN drivers d ON d.driver_number = sr.driver_number AND d.session_key = sr.session_key
		WHERE sr.session_key = ?
		ORDER BY sr.position, sr.driver_number`

	results := []SessionResultRow{}
	if err := db.SelectContext(ctx, &results, query, sessionKey); err != nil {
		return nil, fmt.Errorf("failed to query results for session %d: %w", sessionKey, err)
	}
	return results, nil
}

// RecentRaceSessions returns the keys of the most recent race sessions,
// newest first.
func (db *DB) RecentRaceSessions(ctx context.Context, count int) ([]int, error) {
	query := `
		SELECT session_key
		FROM sessions
		WHERE session_type = ?
		ORDER BY date_start DESC
		LIMIT ?`

	keys := []int{}
	if err := db.SelectContext(ctx, &keys, query, constants.SessionTypeRace, count); err != nil {
		return nil, fmt.Errorf("failed to query recent race sessions: %w", err)
	}
	return keys, nil
}

// QueryTable reads rows from any registered table for a session, with
// optional equality filters. Filter keys must name registry columns; values
// are always bound as parameters. Results are ordered by the internal row id
// and capped as a safety bound, not a pagination mechanism.
func (db *DB) QueryTable(ctx context.Context, table string, sessionKey int, filters map[string]any) ([]map[string]any, error) {
	spec, ok := Spec(table)
	if !ok {
		return nil, fmt.Errorf("unknown table %q", table)
	}

	query := fmt.Sprintf("SELECT * FROM %s WHERE session_key = ?", spec.Name)
	args := []any{sessionKey}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !spec.HasColumn(k) {
			return nil, fmt.Errorf("unknown filter column %q for table %s", k, spec.Name)
		}
		query += fmt.Sprintf(" AND %s = ?", k)
		args = append(args, filters[k])
	}
	query += fmt.Sprintf(" ORDER BY id LIMIT %d", constants.QueryRowLimit)

	rows, err := db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", spec.Name, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	results := []map[string]any{}
	for rows.Next() {
		row := map[string]any{}
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", spec.Name, err)
		}
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				row[k] = string(b)
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s rows: %w", spec.Name, err)
	}
	return results, nil
}
