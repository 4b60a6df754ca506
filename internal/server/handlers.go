package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/ppiankov/tablespectre/internal/scanner"
)

// RuleName identifies this rule set on the health endpoint.
const RuleName = "MM-IM"

type healthResponse struct {
	OK   bool   `json:"ok"`
	Rule string `json:"rule"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// unitRequest is a CodeUnit as submitted. pgm_name, inc_name and type must
// be present; name and code may be null or absent.
type unitRequest struct {
	Program *string `json:"pgm_name"`
	Include *string `json:"inc_name"`
	Type    *string `json:"type"`
	Block   *string `json:"name"`
	Code    *string `json:"code"`
}

func (r *unitRequest) unit() (scanner.CodeUnit, error) {
	var missing []string
	if r.Program == nil {
		missing = append(missing, "pgm_name")
	}
	if r.Include == nil {
		missing = append(missing, "inc_name")
	}
	if r.Type == nil {
		missing = append(missing, "type")
	}
	if len(missing) > 0 {
		return scanner.CodeUnit{}, fmt.Errorf("missing required field: %s", strings.Join(missing, ", "))
	}
	return scanner.CodeUnit{
		Program: *r.Program,
		Include: *r.Include,
		Type:    *r.Type,
		Block:   deref(r.Block),
		Code:    deref(r.Code),
	}, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{OK: true, Rule: RuleName})
}

func (s *Server) handleTables(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Engine().KnowledgeBase().Entries())
}

func (s *Server) handleRemediate(w http.ResponseWriter, r *http.Request) {
	var req unitRequest
	if !s.decode(w, r, &req) {
		return
	}
	unit, err := req.unit()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out := []scanner.CodeUnit{s.Engine().ScanUnit(unit)}
	if s.filter != nil {
		out, _ = s.filter.FilterUnits(out)
	}
	s.record("remediate", out)
	writeJSON(w, http.StatusOK, out[0])
}

func (s *Server) handleRemediateArray(w http.ResponseWriter, r *http.Request) {
	var reqs []unitRequest
	if !s.decode(w, r, &reqs) {
		return
	}
	units := make([]scanner.CodeUnit, len(reqs))
	for i := range reqs {
		u, err := reqs[i].unit()
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unit %d: %v", i, err))
			return
		}
		units[i] = u
	}

	eng := s.Engine()
	var out []scanner.CodeUnit
	if s.filter == nil {
		out = eng.ScanBatch(r.Context(), units)
	} else {
		all, _ := s.filter.FilterUnits(eng.ScanAll(r.Context(), units))
		out = make([]scanner.CodeUnit, 0, len(all))
		for _, u := range all {
			if len(u.Findings) > 0 {
				out = append(out, u)
			}
		}
	}
	s.record("remediate-array", out)
	writeJSON(w, http.StatusOK, out)
}

// decode reads a size-capped JSON body into v, writing the error response
// itself when it fails.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
