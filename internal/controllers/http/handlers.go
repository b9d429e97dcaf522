package httpctrl

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Agrid-Dev/thermoprops/internal/bleve"
	"github.com/Agrid-Dev/thermoprops/internal/saturation"
	"github.com/Agrid-Dev/thermoprops/internal/telemetry"
	"github.com/Agrid-Dev/thermoprops/pkg/api"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthV1{Status: "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, api.VersionV1{Title: s.cfg.Title, Version: s.cfg.Version})
}

func (s *Server) handleProperties(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("pressurePa"))
	if raw == "" {
		writeErr(w, http.StatusBadRequest, "query parameter 'pressurePa' is required")
		return
	}
	pa, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "query parameter 'pressurePa' must be a number")
		return
	}

	props, err := s.props.Properties(r.Context(), pa)
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromProperties(props))
}

func (s *Server) handleBleve(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	var req api.BleveRequestV1
	if err := dec.Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}

	res, err := s.calc.Calculate(r.Context(), req.Inputs())
	if err != nil {
		s.writeDomainErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FromBleveResults(res))
}

// writeDomainErr maps error kinds to status codes: invalid arguments are
// 400, physically impossible states 422, anything else 500.
func (s *Server) writeDomainErr(w http.ResponseWriter, r *http.Request, err error) {
	var oor *saturation.OutOfRangeError
	switch {
	case errors.Is(err, saturation.ErrInvalidPressure):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, bleve.ErrInvalidInput):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &oor):
		writeErr(w, http.StatusUnprocessableEntity, oor.Error())
	case errors.Is(err, bleve.ErrInvalidVaporFraction):
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
	default:
		telemetry.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
		writeErr(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, api.ErrorV1{Detail: detail})
}
