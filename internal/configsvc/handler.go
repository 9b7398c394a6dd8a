package configsvc

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/beaconhq/zonecore/internal/objtype"
	"github.com/beaconhq/zonecore/internal/valuetree"
)

type createRequest struct {
	Templates  []string       `json:"templates"`
	Attrs      valuetree.Dict `json:"attrs"`
}

type createResponse struct {
	Results []createResult `json:"results"`
}

type createResult struct {
	Code   int      `json:"code"`
	Status string   `json:"status"`
	Errors []string `json:"errors,omitempty"`
}

// RegisterHTTPHandlers wires the PUT /v1/<typePlural>/<fullName> surface:
// CORS headers on every response, an explicit method check, http.Error for
// failures, json.NewEncoder for success.
func (s *Service) RegisterHTTPHandlers() {
	http.HandleFunc("/v1/", s.handleCreate)
}

func (s *Service) handleCreate(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "PUT, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		return
	}
	if r.Method != http.MethodPut {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	typePlural, fullName, ok := splitPath(r.URL.Path)
	if !ok {
		http.Error(w, "expected /v1/<typePlural>/<fullName>", http.StatusBadRequest)
		return
	}

	typ, ok := objtype.TypeFromPluralName(typePlural)
	if !ok {
		http.Error(w, "unknown type", http.StatusNotFound)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	ok, errs := s.CreateObject(typ, fullName, req.Templates, req.Attrs)

	w.Header().Set("Content-Type", "application/json")
	resp := createResponse{Results: []createResult{{Errors: errs}}}
	if ok {
		resp.Results[0].Code = http.StatusOK
		resp.Results[0].Status = "Object created."
		w.WriteHeader(http.StatusOK)
	} else {
		resp.Results[0].Code = http.StatusInternalServerError
		resp.Results[0].Status = "Object could not be created."
		w.WriteHeader(http.StatusInternalServerError)
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// splitPath parses "/v1/<typePlural>/<fullName...>": typePlural is the
// segment before the first "/" after the prefix, and fullName is the whole
// remainder (composite names use "!", as in "host!service").
func splitPath(path string) (typePlural, fullName string, ok bool) {
	trimmed := strings.TrimPrefix(path, "/v1/")
	if trimmed == path {
		return "", "", false
	}
	idx := strings.Index(trimmed, "/")
	if idx < 0 {
		return "", "", false
	}
	return trimmed[:idx], trimmed[idx+1:], true
}
