package dto

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"stagehand/shared/constant"
)

const (
	SortDirAsc  = "ASC"
	SortDirDesc = "DESC"
)

// QueryParams carries list paging and ordering. SortBy is interpolated into ORDER BY, so
// handlers must pass it through RestrictSortBy before it reaches a repository.
type QueryParams struct {
	Page    int    `json:"page"     validate:"omitempty"`
	Limit   int    `json:"limit"    validate:"omitempty"`
	SortBy  string `json:"sort_by"  validate:"omitempty"`
	SortDir string `json:"sort_dir" validate:"omitempty,oneof=ASC DESC"`
}

// FromRequest reads page, limit, sort_by and sort_dir from the query string. Values that do not
// parse are ignored, and limit is capped at constant.MaxValueLimit. With withDefaults, a missing
// page or limit falls back to the defaults so the listing is always paged.
func (q *QueryParams) FromRequest(r *http.Request, withDefaults bool) {
	query := r.URL.Query()

	if page, ok := positive(query.Get(constant.RequestParamPage)); ok {
		q.Page = page
	}

	if limit, ok := positive(query.Get(constant.RequestParamLimit)); ok {
		q.Limit = min(limit, constant.MaxValueLimit)
	}

	if sortBy := query.Get(constant.RequestParamSortBy); sortBy != "" {
		q.SortBy = sortBy
	}

	switch sortDir := strings.ToUpper(query.Get(constant.RequestParamSortDir)); sortDir {
	case SortDirAsc, SortDirDesc:
		q.SortDir = sortDir
	}

	if !withDefaults {
		return
	}

	if q.Page == 0 {
		q.Page = constant.DefaultValuePage
	}

	if q.Limit == 0 {
		q.Limit = constant.DefaultValueLimit
	}
}

// RestrictSortBy clears SortBy unless it names one of the allowed columns.
func (q *QueryParams) RestrictSortBy(allowed ...string) {
	if q.SortBy != "" && !slices.Contains(allowed, q.SortBy) {
		q.SortBy = ""
	}

	if q.SortBy != "" && q.SortDir == "" {
		q.SortDir = SortDirAsc
	}
}

// WithDefaultSort applies column and direction when the request did not choose a sort.
func (q *QueryParams) WithDefaultSort(column, direction string) {
	if q.SortBy == "" {
		q.SortBy = column
		q.SortDir = direction
	}
}

func positive(value string) (int, bool) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}
