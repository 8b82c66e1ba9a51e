package journal

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/iudanet/geojournal/internal/apperr"
	"github.com/iudanet/geojournal/internal/models"
	"github.com/iudanet/geojournal/internal/validation"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
	// MaxPage держит (page-1)*limit в пределах int
	MaxPage = math.MaxInt / MaxLimit
)

// ListQuery holds raw query parameters of a listing.
type ListQuery struct {
	Page      string
	Limit     string
	StartDate string
	EndDate   string
}

// ListResult is one listing with its pagination summary.
type ListResult struct {
	Entries    []*models.Entry   `json:"entries"`
	Pagination models.Pagination `json:"pagination"`
}

// ParsePage applies defaults and clamps 1 <= page <= MaxPage, 1 <= limit <= MaxLimit.
// Non-numeric values fall back to the defaults; out-of-range numbers are clamped.
func ParsePage(rawPage, rawLimit string) models.Page {
	page := DefaultPage
	if v, ok := parseInt(rawPage); ok {
		page = min(max(v, 1), MaxPage)
	}

	limit := DefaultLimit
	if v, ok := parseInt(rawLimit); ok {
		limit = min(max(v, 1), MaxLimit)
	}

	return models.Page{Number: page, Limit: limit}
}

// parseInt also accepts numbers too large for int, returning the nearest int
func parseInt(raw string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}

// ParseDateRange returns nil unless both bounds are present.
// Bounds are RFC 3339 timestamps or YYYY-MM-DD dates; a date-only end bound
// covers the whole day. createdAt is stored in whole milliseconds, so the start
// is rounded up and the end down to a millisecond.
func ParseDateRange(rawStart, rawEnd string) (*models.DateRange, error) {
	rawStart = strings.TrimSpace(rawStart)
	rawEnd = strings.TrimSpace(rawEnd)
	if rawStart == "" || rawEnd == "" {
		return nil, nil
	}

	var errs validation.Errors

	start, _, err := parseDate(rawStart)
	if err != nil {
		errs.Add("startDate", "startDate must be an RFC 3339 timestamp or YYYY-MM-DD")
	}

	end, dateOnly, err := parseDate(rawEnd)
	if err != nil {
		errs.Add("endDate", "endDate must be an RFC 3339 timestamp or YYYY-MM-DD")
	} else if dateOnly {
		end = end.Add(24*time.Hour - time.Millisecond)
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}

	return &models.DateRange{
		Start: start.Add(time.Millisecond - 1).Truncate(time.Millisecond),
		End:   end.Truncate(time.Millisecond),
	}, nil
}

func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), false, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

// List returns either one page of the owner's entries or, when both dates are
// given, every entry created inside the range. totalEntries always counts all
// of the owner's entries.
func (s *Service) List(ctx context.Context, ownerID string, q ListQuery) (*ListResult, error) {
	page := ParsePage(q.Page, q.Limit)

	dr, err := ParseDateRange(q.StartDate, q.EndDate)
	if err != nil {
		return nil, err
	}

	var entries []*models.Entry
	if dr != nil {
		// диапазон дат возвращается целиком, без пагинации
		page.Number = 1
		entries, err = s.entries.ListEntriesInRange(ctx, ownerID, *dr)
	} else {
		entries, err = s.entries.ListEntries(ctx, ownerID, page)
	}
	if err != nil {
		return nil, apperr.Fatal("failed to list entries", err)
	}

	total, err := s.entries.CountEntries(ctx, ownerID)
	if err != nil {
		return nil, apperr.Fatal("failed to count entries", err)
	}

	return &ListResult{
		Entries:    entries,
		Pagination: models.NewPagination(page, total),
	}, nil
}
