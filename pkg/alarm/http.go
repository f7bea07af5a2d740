package alarm

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

const (
	codeBadRequest        = "bad_request"
	codeExactNotPermitted = "exact_not_permitted"
	codeInternal          = "internal"
)

type apiError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type scheduleRequest struct {
	At        time.Time `json:"at"`
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body,omitempty"`
	Precision Precision `json:"precision"`
}

// Handler serves a Lister over HTTP.
type Handler struct {
	Alarms Lister
	Log    logrus.FieldLogger
}

// Register mounts the alarm routes on r.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	r.HandleFunc("/v1/alarms", h.list).Methods(http.MethodGet)
	r.HandleFunc("/v1/alarms/{id:[0-9]+}", h.schedule).Methods(http.MethodPut)
	r.HandleFunc("/v1/alarms/{id:[0-9]+}", h.cancel).Methods(http.MethodDelete)
}

// Router returns a router serving only the alarm routes.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	alarms, err := h.Alarms.Pending(r.Context())
	if err != nil {
		h.fail(w, http.StatusInternalServerError, codeInternal, err)
		return
	}
	writeJSON(w, http.StatusOK, alarms)
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, http.StatusBadRequest, codeBadRequest, err)
		return
	}
	var req scheduleRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, codeBadRequest, err)
		return
	}
	a := Alarm{ID: id, At: req.At, Title: req.Title, Body: req.Body, Precision: req.Precision}
	if err := validate(a); err != nil {
		h.fail(w, http.StatusBadRequest, codeBadRequest, err)
		return
	}
	if err := h.Alarms.Schedule(r.Context(), a); err != nil {
		if errors.Is(err, ErrExactNotPermitted) {
			h.fail(w, http.StatusConflict, codeExactNotPermitted, err)
			return
		}
		h.fail(w, http.StatusInternalServerError, codeInternal, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.fail(w, http.StatusBadRequest, codeBadRequest, err)
		return
	}
	if err := h.Alarms.Cancel(r.Context(), id); err != nil {
		h.fail(w, http.StatusInternalServerError, codeInternal, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, status int, code string, err error) {
	if h.Log != nil && status >= http.StatusInternalServerError {
		h.Log.WithError(err).Error("alarm api request failed")
	}
	writeJSON(w, status, apiError{Error: err.Error(), Code: code})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
