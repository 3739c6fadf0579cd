package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Nomadcxx/jellyname/internal/library"
	"github.com/Nomadcxx/jellyname/internal/naming"
	"github.com/Nomadcxx/jellyname/internal/service"
)

const maxBodyBytes = 1 << 20

type parseRequest struct {
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
}

type namesRequest struct {
	Kind  string   `json:"kind,omitempty"`
	Names []string `json:"names"`
}

type scanRequest struct {
	Root string `json:"root"`
}

type renameJSON struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type titleJSON struct {
	Dir       string       `json:"dir"`
	Kind      string       `json:"kind"`
	Files     int          `json:"files"`
	Selection string       `json:"selection"`
	Current   string       `json:"current,omitempty"`
	Suggested string       `json:"suggested,omitempty"`
	Outdated  bool         `json:"outdated"`
	Renames   []renameJSON `json:"renames,omitempty"`
}

type scanResponse struct {
	Root     string      `json:"root"`
	Files    int         `json:"files"`
	Titles   []titleJSON `json:"titles"`
	Rejected []string    `json:"rejected"`
	Elapsed  string      `json:"elapsed"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}
	res, err := s.naming.Parse(req.Name, naming.ParseKind(req.Kind))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req namesRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Names) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "names is required")
		return
	}
	out := make([]service.Classification, 0, len(req.Names))
	for _, name := range req.Names {
		c, err := s.naming.Classify(name)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		out = append(out, c)
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": out})
}

func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req namesRequest
	if !decode(w, r, &req) {
		return
	}
	res, _, err := s.naming.Rank(naming.ParseKind(req.Kind), req.Names)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := s.naming.Suggest(req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	if s.scanner == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "scanning is not enabled")
		return
	}
	var req scanRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Root) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "root is required")
		return
	}
	root := filepath.Clean(req.Root)
	if !filepath.IsAbs(root) || !s.scanAllowed(root) {
		writeError(w, http.StatusForbidden, "forbidden_root", "root is not a configured library folder")
		return
	}

	// concurrent requests for one root share a single walk, which outlives
	// any one caller disconnecting
	ctx := context.WithoutCancel(r.Context())
	v, err, _ := s.scans.Do(root, func() (any, error) {
		return s.scanner.Scan(ctx, root)
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "scan_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, scanResponseFrom(v.(*library.Report)))
}

func scanResponseFrom(report *library.Report) scanResponse {
	resp := scanResponse{
		Root:     report.Root,
		Files:    report.Files,
		Titles:   make([]titleJSON, 0, len(report.Titles)),
		Rejected: append([]string{}, report.Rejected...),
		Elapsed:  report.Elapsed.Round(time.Millisecond).String(),
	}
	for _, t := range report.Titles {
		tj := titleJSON{
			Dir:       t.Dir,
			Kind:      t.Kind.String(),
			Files:     len(t.Versions),
			Selection: t.Selection.String(),
			Suggested: t.Suggested,
			Outdated:  t.Outdated(),
		}
		if t.Canonical {
			tj.Current = t.Directory.String()
		}
		for _, rn := range t.Renames {
			tj.Renames = append(tj.Renames, renameJSON{From: rn.From, To: rn.To})
		}
		resp.Titles = append(resp.Titles, tj)
	}
	return resp
}

func (s *Server) handleMismatches(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "no audit database")
		return
	}
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	items, err := s.db.ListMismatches(all)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"mismatches": items, "count": len(items)})
}

func (s *Server) handleRejected(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "no audit database")
		return
	}
	items, err := s.db.ListRejected()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rejected": items, "count": len(items)})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "no audit database")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := s.db.RecentRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, naming.ErrMalformedName), errors.Is(err, naming.ErrInvalidField):
		writeError(w, http.StatusUnprocessableEntity, "malformed_name", err.Error())
	default:
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}
