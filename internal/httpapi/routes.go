package httpapi

import (
	"fmt"
	"net/http"

	"github.com/nawanshaju/pitlane/internal/constants"
)

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "F1 API is running",
	})
}

func (h *Handler) DriversByYear(w http.ResponseWriter, r *http.Request) {
	year := intQuery(r, "year", constants.DefaultYear)

	drivers, err := h.Store.DriversByYear(r.Context(), year)
	h.respond(w, drivers, len(drivers), err)
}

func (h *Handler) DriverRaceWins(w http.ResponseWriter, r *http.Request) {
	h.driverRaceFinishes(w, r, true)
}

func (h *Handler) DriverPodiums(w http.ResponseWriter, r *http.Request) {
	h.driverRaceFinishes(w, r, false)
}

// driverRaceFinishes serves wins and podiums. A valid driver/year pair with
// zero finishes is a 200 with an informational body, never a 404.
func (h *Handler) driverRaceFinishes(w http.ResponseWriter, r *http.Request, winsOnly bool) {
	driverNumber, ok := requiredIntQuery(r, "driver_number")
	if !ok {
		writeError(w, http.StatusNotFound, "driver_number is required")
		return
	}
	year := intQuery(r, "year", constants.DefaultYear)

	exists, err := h.Store.DriverExistsInYear(r.Context(), driverNumber, year)
	if err != nil {
		h.Logger.Error("driver existence check failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("driver %d not found in year %d", driverNumber, year))
		return
	}

	var finishes any
	var count int
	if winsOnly {
		rows, qErr := h.Store.RaceWins(r.Context(), driverNumber, year)
		finishes, count, err = rows, len(rows), qErr
	} else {
		rows, qErr := h.Store.Podiums(r.Context(), driverNumber, year)
		finishes, count, err = rows, len(rows), qErr
	}
	if err != nil {
		h.Logger.Error("race finishes query failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if count == 0 {
		kind := "race wins"
		if !winsOnly {
			kind = "podiums"
		}
		writeInfo(w, fmt.Sprintf("no %s for driver %d in %d", kind, driverNumber, year))
		return
	}
	writeJSON(w, http.StatusOK, finishes)
}

func (h *Handler) DriverStats(w http.ResponseWriter, r *http.Request) {
	firstName := r.URL.Query().Get("first_name")
	lastName := r.URL.Query().Get("last_name")
	if firstName == "" || lastName == "" {
		writeError(w, http.StatusNotFound, "first_name and last_name are required")
		return
	}

	stats, err := h.Scraper.DriverStats(r.Context(), firstName, lastName)
	h.respond(w, stats, len(stats), err)
}

func (h *Handler) MeetingsByYear(w http.ResponseWriter, r *http.Request) {
	year := intQuery(r, "year", constants.DefaultYear)

	meetings, err := h.Store.MeetingsByYear(r.Context(), year)
	h.respond(w, meetings, len(meetings), err)
}

func (h *Handler) MeetingByKey(w http.ResponseWriter, r *http.Request) {
	meetingKey, ok := requiredIntQuery(r, "meeting_key")
	if !ok {
		writeError(w, http.StatusNotFound, "meeting_key is required")
		return
	}

	exists, err := h.Store.MeetingExists(r.Context(), meetingKey)
	if err != nil {
		h.Logger.Error("meeting existence check failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "Meeting not found")
		return
	}

	meeting, err := h.Store.MeetingByKey(r.Context(), meetingKey)
	if err != nil {
		h.Logger.Error("meeting query failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if meeting == nil {
		writeError(w, http.StatusNotFound, "Meeting not found")
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}

// MeetingInfo resolves a meeting and scrapes the circuit facts page for its
// country and season.
func (h *Handler) MeetingInfo(w http.ResponseWriter, r *http.Request) {
	meetingKey, ok := requiredIntQuery(r, "meeting_key")
	if !ok {
		writeError(w, http.StatusNotFound, "meeting_key is required")
		return
	}

	meeting, err := h.Store.MeetingByKey(r.Context(), meetingKey)
	if err != nil {
		h.Logger.Error("meeting query failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if meeting == nil || meeting.CountryName == nil {
		writeError(w, http.StatusNotFound, "Meeting not found")
		return
	}

	info, err := h.Scraper.CircuitInfo(r.Context(), meeting.Year, *meeting.CountryName)
	h.respond(w, info, len(info), err)
}

func (h *Handler) SessionsForMeeting(w http.ResponseWriter, r *http.Request) {
	meetingKey, ok := requiredIntQuery(r, "meeting_key")
	if !ok {
		writeError(w, http.StatusNotFound, "meeting_key is required")
		return
	}

	sessions, err := h.Store.SessionsForMeeting(r.Context(), meetingKey)
	h.respond(w, sessions, len(sessions), err)
}

func (h *Handler) SessionByKey(w http.ResponseWriter, r *http.Request) {
	sessionKey, ok := requiredIntQuery(r, "session_key")
	if !ok {
		writeError(w, http.StatusNotFound, "session_key is required")
		return
	}

	session, err := h.Store.SessionByKey(r.Context(), sessionKey)
	if err != nil {
		h.Logger.Error("session query failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if session == nil {
		writeError(w, http.StatusNotFound, msgDataNotAvailable)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) SessionResults(w http.ResponseWriter, r *http.Request) {
	sessionKey, ok := requiredIntQuery(r, "session_key")
	if !ok {
		writeError(w, http.StatusNotFound, "session_key is required")
		return
	}

	exists, err := h.Store.SessionExists(r.Context(), sessionKey)
	if err != nil {
		h.Logger.Error("session existence check failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("session %d not found", sessionKey))
		return
	}

	results, err := h.Store.SessionResults(r.Context(), sessionKey)
	h.respond(w, results, len(results), err)
}

// sessionDataTables are the tables SessionData may touch: session-scoped
// datasets only, never meetings or sessions themselves.
var sessionDataTables = map[string]bool{
	constants.TableDrivers:       true,
	constants.TableLaps:          true,
	constants.TableCarData:       true,
	constants.TableStints:        true,
	constants.TablePit:           true,
	constants.TableSessionResult: true,
	constants.TableStartingGrid:  true,
	constants.TableRaceControl:   true,
	constants.TableWeather:       true,
	constants.TableLocation:      true,
	constants.TableIntervals:     true,
	constants.TablePosition:      true,
}

// SessionData exposes the cache-miss-triggers-fetch read path for one
// session-scoped table, optionally filtered by driver number.
func (h *Handler) SessionData(w http.ResponseWriter, r *http.Request) {
	sessionKey, ok := requiredIntQuery(r, "session_key")
	if !ok {
		writeError(w, http.StatusNotFound, "session_key is required")
		return
	}
	table := r.URL.Query().Get("table")
	if !sessionDataTables[table] {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown table %q", table))
		return
	}

	exists, err := h.Store.SessionExists(r.Context(), sessionKey)
	if err != nil {
		h.Logger.Error("session existence check failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, fmt.Sprintf("session %d not found", sessionKey))
		return
	}

	var filters map[string]any
	if driverNumber, ok := requiredIntQuery(r, "driver_number"); ok {
		filters = map[string]any{"driver_number": driverNumber}
	}

	rows, err := h.Ingest.GetData(r.Context(), table, sessionKey, filters)
	h.respond(w, rows, len(rows), err)
}
