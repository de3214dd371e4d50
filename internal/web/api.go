package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"nuha.dev/surtrack/internal/tracking"
	"nuha.dev/surtrack/internal/transport/wshub"
)

type ApiConfig struct {
	ListenAddr string
}

type Api struct {
	r      chi.Router
	s      *http.Server
	config *ApiConfig
	log    zerolog.Logger
	vld    *validator.Validate

	live *tracking.LiveService
	hist *tracking.HistoryService
	dir  *tracking.DirectoryService
}

func NewApi(live *tracking.LiveService, hist *tracking.HistoryService, dir *tracking.DirectoryService, ws *wshub.Server, config *ApiConfig) *Api {
	api := &Api{config: config}
	api.log = log.With().Str("module", "api").Logger()
	api.vld = validator.New()
	api.live = live
	api.hist = hist
	api.dir = dir

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/surveyors/filter", api.filterSurveyors)
		r.Get("/surveyors/status", api.surveyorStatuses)
		r.Get("/surveyors/check-username", api.checkUsername)
		r.Get("/surveyors", api.allSurveyors)
		r.Post("/surveyors", api.saveSurveyor)
		r.Post("/surveyors/login", api.login)
		r.Post("/surveyors/{id}/activity", api.heartbeat)
		r.Get("/surveyors/{id}/status", api.surveyorStatus)
		r.Get("/location/{surveyorId}/latest", api.latestLocation)
		r.Get("/location/{surveyorId}/track", api.trackHistory)
		r.Post("/live/location", api.liveLocation)
	})
	r.Get("/ws/location", ws.ServeWs)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	api.r = r
	s := &http.Server{
		Addr:           api.config.ListenAddr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	api.s = s
	return api
}

func (api *Api) Handler() http.Handler {
	return api.r
}

func (api *Api) Run() {
	api.log.Info().Str("listen_addr", api.s.Addr).Msg("starting api server")
	err := api.s.ListenAndServe()
	if err != nil {
		panic(err)
	}
}
