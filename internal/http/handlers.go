package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/matchdesk/internal/events"
	"github.com/mauv0809/matchdesk/internal/match"
	"github.com/mauv0809/matchdesk/internal/view"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// writeError maps domain errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, match.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, match.ErrNotActive):
		status = http.StatusConflict
	case errors.Is(err, match.ErrNotFound):
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
	} else {
		log.Debug("Request rejected", "error", err, "status", status)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", match.ErrValidation, err)
	}
	return nil
}

// mutate runs fn through the controller and writes the resulting record.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn match.Updater) {
	rec, err := s.Controller.Mutate(r.Context(), fn)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) CurrentMatchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Controller.Current())
	}
}

func (s *Server) ConfigureHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req configureRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		rec, err := s.Controller.Configure(r.Context(), req.Home, req.Away)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

func (s *Server) GameClockHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fn match.Updater
		switch action := r.PathValue("action"); action {
		case "start":
			fn = match.StartClock
		case "stop":
			fn = match.StopClock
		case "toggle":
			fn = match.ToggleClock
		default:
			writeError(w, fmt.Errorf("%w: unknown clock action %q", match.ErrValidation, action))
			return
		}
		s.mutate(w, r, fn)
	}
}

// SetShotClockHandler edits the shot clock value without touching its running flag.
func (s *Server) SetShotClockHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req shotClockRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		switch {
		case req.Reset:
			s.mutate(w, r, match.ResetShotClock)
		case req.Seconds != nil:
			s.mutate(w, r, match.SetShotClock(*req.Seconds))
		default:
			writeError(w, fmt.Errorf("%w: either seconds or reset is required", match.ErrValidation))
		}
	}
}

func (s *Server) ShotClockHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch action := r.PathValue("action"); action {
		case "start":
			s.mutate(w, r, match.StartShotClock)
		case "stop":
			s.mutate(w, r, match.StopShotClock)
		default:
			writeError(w, fmt.Errorf("%w: unknown shot clock action %q", match.ErrValidation, action))
		}
	}
}

func (s *Server) TimeoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch action := r.PathValue("action"); action {
		case "start":
			s.mutate(w, r, match.StartTimeout(s.Controller.Now()))
		case "end":
			s.mutate(w, r, match.EndTimeout)
		default:
			writeError(w, fmt.Errorf("%w: unknown timeout action %q", match.ErrValidation, action))
		}
	}
}

func (s *Server) PossessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req possessionRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.Switch {
			s.mutate(w, r, match.SwitchPossession)
			return
		}
		s.mutate(w, r, match.SetPossession(req.Team))
	}
}

// AppendEventHandler logs a match event. Timeouts and substitutions change clocks and
// rosters too, so they have their own endpoints.
func (s *Server) AppendEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req eventRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, err)
			return
		}

		now := s.Controller.Now()
		var fn match.Updater
		switch req.Type {
		case events.TypeShot:
			fn = match.RecordShot(req.Team, req.PlayerID, req.Result, now)
		case events.TypeRebound:
			fn = match.RecordRebound(req.Team, req.PlayerID, now)
		case events.TypeFoul:
			fn = match.RecordFoul(req.Team, req.PlayerID, now)
		case events.TypeCard:
			fn = match.RecordCard(req.Team, req.PlayerID, req.Card, now)
		case events.TypeTimeout, events.TypeSubstitution:
			writeError(w, fmt.Errorf("%w: use the dedicated %s endpoint", match.ErrValidation, req.Type))
			return
		case events.TypePenalty, events.TypeFreePass:
			fn = match.AppendEvent(events.Event{
				Type:     req.Type,
				Team:     string(req.Team),
				PlayerID: req.PlayerID,
			}, now)
		default:
			writeError(w, fmt.Errorf("%w: unknown event type %q", match.ErrValidation, req.Type))
			return
		}

		rec, err := s.Controller.Mutate(r.Context(), fn)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec.Events[len(rec.Events)-1])
	}
}

func (s *Server) SubstitutionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req substitutionRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		s.mutate(w, r, match.Substitute(req.Team, req.Out, req.In, s.Controller.Now()))
	}
}

func (s *Server) NextHalfHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mutate(w, r, match.NextHalf)
	}
}

func (s *Server) FinishHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := s.Controller.Finish(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func (s *Server) ListHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		history, err := s.Controller.History(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, history)
	}
}

func (s *Server) DiscardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if err := s.Controller.Discard(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// StatsHandler returns the durable lifecycle counters and the current match statistics.
func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters := map[string]int{}
		if s.Counters != nil {
			var err error
			counters, err = s.Counters.GetAll()
			if err != nil {
				writeError(w, fmt.Errorf("failed to read counters: %w", err))
				return
			}
		}
		current, err := view.Render(view.Stats, s.Controller.Current())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, statsResponse{Counters: counters, Current: current})
	}
}

func (s *Server) ViewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := view.Parse(r.PathValue("view"))
		if err != nil {
			writeError(w, err)
			return
		}
		out, err := view.Render(v, s.Controller.Current())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
