package http

import (
	"net/http"

	"github.com/mauv0809/matchdesk/internal/config"
	"github.com/mauv0809/matchdesk/internal/controller"
	"github.com/mauv0809/matchdesk/internal/metrics"
	"github.com/rs/cors"
)

func NewServer(ctrl *controller.Controller, metricsSvc metrics.Metrics, metricsHandler http.Handler, counters metrics.MetricsStore, cfg config.Config) *Server {
	server := &Server{
		Controller:     ctrl,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Counters:       counters,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
		Hub:            NewHub(ctrl),
	}

	server.routes()

	// Display surfaces are served from other origins, so CORS is open.
	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
	})
	server.handler = c.Handler(server.Router)
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))

	s.Router.Handle("GET /match", Chain(s.CurrentMatchHandler(), paramsMiddleware))
	s.Router.Handle("POST /match/configure", Chain(s.ConfigureHandler(), paramsMiddleware))
	s.Router.Handle("POST /match/clock/{action}", Chain(s.GameClockHandler(), paramsMiddleware))
	s.Router.Handle("POST /match/shotclock", Chain(s.SetShotClockHandler(), paramsMiddleware))
	s.Router.Handle("POST /match/shotclock/{action}", Chain(s.ShotClockHandler(), paramsMiddleware))
	s.Router.Handle("POST /match/timeout/{action}", Chain(s.TimeoutHandler(), paramsMiddleware))
	s.Router.Handle("POST /match/possession", Chain(s.PossessionHandler(), paramsMiddleware))
	s.Router.Handle("POST /match/events", Chain(s.AppendEventHandler(), paramsMiddleware))
	s.Router.Handle("POST /match/substitutions", Chain(s.SubstitutionHandler(), paramsMiddleware))
	s.Router.Handle("POST /match/half", Chain(s.NextHalfHandler(), paramsMiddleware))
	s.Router.Handle("POST /match/finish", Chain(s.FinishHandler(), paramsMiddleware))

	s.Router.Handle("GET /history", Chain(s.ListHistoryHandler(), paramsMiddleware))
	s.Router.Handle("DELETE /history/{id}", Chain(s.DiscardHandler(), paramsMiddleware))
	s.Router.Handle("GET /stats", Chain(s.StatsHandler(), paramsMiddleware))
	s.Router.Handle("GET /views/{view}", Chain(s.ViewHandler(), paramsMiddleware))
	s.Router.Handle("GET /ws", s.WebSocketHandler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
