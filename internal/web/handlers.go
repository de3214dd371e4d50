package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"nuha.dev/surtrack/internal/model"
	"nuha.dev/surtrack/internal/tracking"
	"nuha.dev/surtrack/internal/util"
)

func (api *Api) filterSurveyors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := api.dir.Filter(r.Context(), q.Get("city"), q.Get("project"), q.Get("status"))
	if err != nil {
		api.internalError(w, err)
		return
	}
	util.JsonWrite(w, list)
}

func (api *Api) surveyorStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := api.dir.Statuses(r.Context())
	if err != nil {
		api.internalError(w, err)
		return
	}
	util.JsonWrite(w, statuses)
}

func (api *Api) allSurveyors(w http.ResponseWriter, r *http.Request) {
	list, err := api.dir.All(r.Context())
	if err != nil {
		api.internalError(w, err)
		return
	}
	util.JsonWrite(w, list)
}

func (api *Api) saveSurveyor(w http.ResponseWriter, r *http.Request) {
	s := &model.Surveyor{}
	err := json.NewDecoder(r.Body).Decode(s)
	if err != nil || s.ID == "" {
		http.Error(w, "invalid surveyor payload", http.StatusBadRequest)
		return
	}
	err = api.dir.Save(r.Context(), s)
	if err != nil {
		api.internalError(w, err)
		return
	}
	s.Password = ""
	util.JsonWrite(w, s)
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (api *Api) login(w http.ResponseWriter, r *http.Request) {
	req := loginRequest{}
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = api.vld.Struct(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s, err := api.dir.Login(r.Context(), req.Username, req.Password)
	if errors.Is(err, tracking.ErrUnknownSurveyor) {
		jsonStatus(w, http.StatusNotFound, map[string]interface{}{"status": 404, "message": "Surveyor not found"})
		return
	} else if errors.Is(err, tracking.ErrUnauthorized) {
		jsonStatus(w, http.StatusUnauthorized, map[string]interface{}{"status": 401, "authenticated": false, "message": "Invalid credentials"})
		return
	} else if err != nil {
		api.internalError(w, err)
		return
	}
	util.JsonWrite(w, map[string]interface{}{"status": 200, "authenticated": true, "surveyor": s})
}

func (api *Api) checkUsername(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}
	available, err := api.dir.UsernameAvailable(r.Context(), username)
	if err != nil {
		api.internalError(w, err)
		return
	}
	util.JsonWrite(w, map[string]bool{"available": available})
}

func (api *Api) heartbeat(w http.ResponseWriter, r *http.Request) {
	api.dir.Heartbeat(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusOK)
}

func (api *Api) surveyorStatus(w http.ResponseWriter, r *http.Request) {
	util.JsonWrite(w, map[string]bool{"online": api.dir.IsOnline(chi.URLParam(r, "id"))})
}

func (api *Api) latestLocation(w http.ResponseWriter, r *http.Request) {
	s, err := api.hist.Latest(r.Context(), chi.URLParam(r, "surveyorId"))
	if err != nil {
		api.internalError(w, err)
		return
	}
	util.JsonWrite(w, s)
}

func (api *Api) trackHistory(w http.ResponseWriter, r *http.Request) {
	start, err := parseInstant(r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, "invalid start time", http.StatusBadRequest)
		return
	}
	end, err := parseInstant(r.URL.Query().Get("end"))
	if err != nil {
		http.Error(w, "invalid end time", http.StatusBadRequest)
		return
	}
	tracks, err := api.hist.Track(r.Context(), chi.URLParam(r, "surveyorId"), start, end)
	if errors.Is(err, tracking.ErrInvalidRange) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	} else if err != nil {
		api.internalError(w, err)
		return
	}
	if len(tracks) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	util.JsonWrite(w, tracks)
}

func (api *Api) liveLocation(w http.ResponseWriter, r *http.Request) {
	username, password, ok := r.BasicAuth()
	if !ok {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	msg := &model.LiveLocationMessage{}
	err := json.NewDecoder(r.Body).Decode(msg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = api.vld.Struct(msg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = api.live.Submit(r.Context(), msg, username, password)
	if errors.Is(err, tracking.ErrUnauthorized) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	} else if err != nil {
		api.log.Error().Err(err).Str("surveyor_id", msg.SurveyorID).Msg("live location failed")
		http.Error(w, "Processing error", http.StatusInternalServerError)
		return
	}
	w.Write([]byte("Location updated"))
}

func (api *Api) internalError(w http.ResponseWriter, err error) {
	api.log.Error().Err(err).Msg("request failed")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func jsonStatus(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		panic(err)
	}
}

// parseInstant parses an optional ISO-8601 query value.
func parseInstant(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
