package http

import (
	"net/http"
	"qota/pkg/config"
	apperrors "qota/pkg/errors"
	"strconv"
	"time"
)

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractDate parses a date-only query parameter. Dates travel as
// YYYY-MM-DD; RFC3339 timestamps are accepted and truncated to the day.
func ExtractDate(r *http.Request, name string) (*time.Time, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}
	if parsed, err := time.Parse("2006-01-02", s); err == nil {
		return &parsed, nil
	}
	if parsed, err := time.Parse(time.RFC3339, s); err == nil {
		truncated := parsed.UTC().Truncate(24 * time.Hour)
		return &truncated, nil
	}
	return nil, apperrors.InvalidInput("invalid " + name + " format, must be YYYY-MM-DD or RFC3339")
}
