package domain

import (
	"fmt"
	"strings"
)

const (
	DefaultRegion = "us-en"
	DefaultLimit  = 7
	MaxLimit      = 10
)

// TimeFilter restricts search results by recency.
type TimeFilter string

const (
	PastDay   TimeFilter = "day"
	PastWeek  TimeFilter = "week"
	PastMonth TimeFilter = "month"
	PastYear  TimeFilter = "year"
)

// Code returns the single-letter recency code understood by the search surface.
func (t TimeFilter) Code() string {
	switch t {
	case PastDay:
		return "d"
	case PastMonth:
		return "m"
	case PastYear:
		return "y"
	default:
		return "w"
	}
}

// ParseTimeFilter accepts full names, single-letter codes and "past <x>" labels.
func ParseTimeFilter(value string) (TimeFilter, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.TrimPrefix(v, "past ")
	switch v {
	case "d", "day":
		return PastDay, nil
	case "", "w", "week":
		return PastWeek, nil
	case "m", "month":
		return PastMonth, nil
	case "y", "year":
		return PastYear, nil
	}
	return "", fmt.Errorf("unknown time filter %q", value)
}

// SearchQuery holds the user query and its search surface parameters.
type SearchQuery struct {
	Text       string
	Region     string
	TimeFilter TimeFilter
	Limit      int
}

// Normalize fills defaults and clamps the limit to [1, MaxLimit].
func (q SearchQuery) Normalize() SearchQuery {
	q.Text = strings.TrimSpace(q.Text)
	if strings.TrimSpace(q.Region) == "" {
		q.Region = DefaultRegion
	}
	if q.TimeFilter == "" {
		q.TimeFilter = PastWeek
	}
	switch {
	case q.Limit <= 0:
		q.Limit = DefaultLimit
	case q.Limit > MaxLimit:
		q.Limit = MaxLimit
	}
	return q
}
