package http

import (
	"net/http"

	"github.com/mauv0809/matchdesk/internal/config"
	"github.com/mauv0809/matchdesk/internal/controller"
	"github.com/mauv0809/matchdesk/internal/events"
	"github.com/mauv0809/matchdesk/internal/match"
	"github.com/mauv0809/matchdesk/internal/metrics"
)

type Server struct {
	Controller     *controller.Controller
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Counters       metrics.MetricsStore
	Cfg            config.Config
	Router         *http.ServeMux
	Hub            *Hub
	handler        http.Handler
}

type configureRequest struct {
	Home match.Team `json:"home"`
	Away match.Team `json:"away"`
}

type shotClockRequest struct {
	Seconds *float64 `json:"seconds,omitempty"`
	Reset   bool     `json:"reset,omitempty"`
}

type possessionRequest struct {
	Team   match.TeamID `json:"team,omitempty"`
	Switch bool         `json:"switch,omitempty"`
}

type eventRequest struct {
	Type     events.Type       `json:"type"`
	Team     match.TeamID      `json:"team"`
	PlayerID string            `json:"player_id,omitempty"`
	Result   events.ShotResult `json:"result,omitempty"`
	Card     events.Card       `json:"card,omitempty"`
}

type substitutionRequest struct {
	Team match.TeamID `json:"team"`
	Out  string       `json:"out"`
	In   string       `json:"in"`
}

type statsResponse struct {
	Counters map[string]int `json:"counters"`
	Current  any            `json:"current"`
}

type errorResponse struct {
	Error string `json:"error"`
}
