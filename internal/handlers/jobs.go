// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"jobboard/internal/apperr"
	"jobboard/internal/filter"
	"jobboard/internal/job"
	"jobboard/internal/ranking"
)

// searchFields are the query parameters GET /jobs/search treats as
// per-field terms.
var searchFields = map[string]struct{}{
	ranking.FieldTitle:    {},
	ranking.FieldLocation: {},
	ranking.FieldCompany:  {},
	ranking.FieldSkills:   {},
}

// Jobs groups the job listing and search endpoints.
type Jobs struct {
	filter *filter.Engine
	index  *job.Index
}

// NewJobs creates the job handler group.
func NewJobs(fe *filter.Engine, index *job.Index) *Jobs {
	return &Jobs{filter: fe, index: index}
}

// List applies every filter, the optional search term and ordering.
func (h *Jobs) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pg, params, err := listParams(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	results, err := h.filter.List(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, results, pg)
}

// Search runs a targeted search over title, location, company and skills.
// Results sort by the fields in the order they appear in the query string.
func (h *Jobs) Search(w http.ResponseWriter, r *http.Request) {
	// location doubles as a filter; here it is a fuzzy field term only.
	q := r.URL.Query()
	if q.Has("search") {
		writeError(w, r, apperr.New(apperr.CodeInvalid, "search", "free-text search is served by /jobs?search=; use title, location, company or skills here"))
		return
	}
	for k := range searchFields {
		q.Del(k)
	}
	pg, params, err := listParams(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	fields := fieldQueries(r.URL.RawQuery)
	if len(fields) == 0 {
		writeError(w, r, apperr.New(apperr.CodeInvalid, "field", "give at least one of title, location, company or skills"))
		return
	}
	results, err := h.filter.MultiField(r.Context(), params, fields)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, results, pg)
}

// BySkills scores jobs against a comma-separated ?skills= list.
func (h *Jobs) BySkills(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	pg, params, err := listParams(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var skills []string
	for _, s := range strings.Split(q.Get("skills"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	if len(skills) == 0 {
		writeError(w, r, apperr.New(apperr.CodeInvalid, "skills", "skills is required"))
		return
	}
	results, err := h.filter.BySkills(r.Context(), params, skills)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, results, pg)
}

// Get returns one active job and counts the view.
func (h *Jobs) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	j, err := h.index.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.index.RecordView(r.Context(), id)
	writeJSON(w, http.StatusOK, j)
}

// Similar returns jobs resembling the given one (?limit=, default 5).
func (h *Jobs) Similar(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit := defaultSimilarLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxLimit {
			writeError(w, r, apperr.New(apperr.CodeInvalid, "limit", "limit must be between 1 and %d", maxLimit))
			return
		}
		limit = n
	}
	results, err := h.filter.Similar(r.Context(), id, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// Apply records an application against an active job.
func (h *Jobs) Apply(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.index.RecordApplication(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func listParams(q url.Values) (pagination, *filter.Params, error) {
	pg, err := parsePagination(q)
	if err != nil {
		return pg, nil, err
	}
	params, err := filter.ParseParams(q)
	return pg, params, err
}

// fieldQueries pulls the search field terms out of a raw query string,
// keeping the order they were given in.
func fieldQueries(rawQuery string) []ranking.FieldQuery {
	var out []ranking.FieldQuery
	for _, pair := range strings.Split(rawQuery, "&") {
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			continue
		}
		if _, ok := searchFields[key]; !ok {
			continue
		}
		term, err := url.QueryUnescape(v)
		if err != nil || strings.TrimSpace(term) == "" {
			continue
		}
		out = append(out, ranking.FieldQuery{Field: key, Term: term})
	}
	return out
}
