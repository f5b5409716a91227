package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matzehuels/routetrace/pkg/buildinfo"
	"github.com/matzehuels/routetrace/pkg/dataset"
	errs "github.com/matzehuels/routetrace/pkg/errors"
	"github.com/matzehuels/routetrace/pkg/geo"
	"github.com/matzehuels/routetrace/pkg/network"
	"github.com/matzehuels/routetrace/pkg/planner"
)

// maxBodyBytes bounds POST bodies.
const maxBodyBytes = 1 << 20

type healthResponse struct {
	Status    string    `json:"status"`
	Stations  int       `json:"stations"`
	Edges     int       `json:"edges"`
	Version   string    `json:"version"`
	Build     string    `json:"build"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	nodes, edges := s.planner.Stats()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Stations:  nodes,
		Edges:     edges,
		Version:   s.planner.Version(),
		Build:     buildinfo.Version,
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) listNodes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.planner.Stations())
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	var st dataset.Station
	if err := decodeBody(r, &st); err != nil {
		s.writeError(w, err)
		return
	}
	n := network.Node{Key: st.Name, Position: st.Point(), Category: st.Type}
	if err := s.planner.AddStation(n); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) addSegment(w http.ResponseWriter, r *http.Request) {
	var seg dataset.Segment
	if err := decodeBody(r, &seg); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.planner.AddSegment(seg); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, seg)
}

func (s *Server) routeByKey(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.planFromKeys(w, r)
	if !ok {
		return
	}
	w.Header().Set("X-Plan-ID", plan.ID.String())
	writeJSON(w, http.StatusOK, plan.Segments)
}

func (s *Server) planByKey(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.planFromKeys(w, r)
	if !ok {
		return
	}
	w.Header().Set("X-Plan-ID", plan.ID.String())
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) routeByPoints(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var vals [4]float64
	for i, name := range []string{"fromLat", "fromLon", "toLat", "toLon"} {
		v, err := parseFloat(name, q.Get(name))
		if err != nil {
			s.writeError(w, err)
			return
		}
		vals[i] = v
	}

	from := geo.Point{Lat: vals[0], Lon: vals[1]}
	to := geo.Point{Lat: vals[2], Lon: vals[3]}
	plan, err := s.planner.RouteBetween(r.Context(), from, to)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.publish(r.Context(), plan)
	w.Header().Set("X-Plan-ID", plan.ID.String())
	writeJSON(w, http.StatusOK, plan.Segments)
}

// planFromKeys runs the query in startNodeId/endNodeId and writes the error
// response itself when it fails.
func (s *Server) planFromKeys(w http.ResponseWriter, r *http.Request) (*planner.Plan, bool) {
	q := r.URL.Query()
	plan, err := s.planner.Route(r.Context(), q.Get("startNodeId"), q.Get("endNodeId"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	s.publish(r.Context(), plan)
	return plan, true
}

type errorResponse struct {
	Error string    `json:"error"`
	Code  errs.Code `json:"code"`
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code errs.Code) int {
	switch {
	case strings.HasPrefix(string(code), "INVALID_"):
		return http.StatusBadRequest
	case strings.HasSuffix(string(code), "NOT_FOUND"):
		return http.StatusNotFound
	case code == errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case code == errs.ErrCodeSourceUnavailable:
		return http.StatusServiceUnavailable
	case code == errs.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	status := statusFor(code)

	msg := errs.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "malformed request body")
	}
	return nil
}

func parseFloat(name, raw string) (float64, error) {
	if raw == "" {
		return 0, errs.New(errs.ErrCodeInvalidInput, "%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidCoordinate, "%s must be a number", name)
	}
	return v, nil
}
