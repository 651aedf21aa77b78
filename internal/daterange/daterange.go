// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

// Package daterange provides pure date chunking and formatting helpers.
//
// All dates are YYYY-MM-DD strings interpreted as UTC calendar days. The
// helpers never apply timezone conversion: a date formats from its UTC
// year/month/day regardless of the wall clock it was built with.
package daterange

import (
	"fmt"
	"iter"
	"time"

	"github.com/mediatiger/analytics/internal/models"
)

// Layout is the wire format for all dates handled by the core.
const Layout = "2006-01-02"

// InvalidRangeError reports an unparseable or inverted date range.
type InvalidRangeError struct {
	Start  string
	End    string
	Reason string
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid date range %q..%q: %s", e.Start, e.End, e.Reason)
}

// ParseDate strictly parses a YYYY-MM-DD string as a UTC calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders a date as YYYY-MM-DD using its UTC calendar date.
func FormatDate(t time.Time) string {
	return t.UTC().Format(Layout)
}

// parseRange validates both bounds and their ordering.
func parseRange(start, end string) (time.Time, time.Time, error) {
	s, err := ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, &InvalidRangeError{Start: start, End: end, Reason: err.Error()}
	}
	e, err := ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, &InvalidRangeError{Start: start, End: end, Reason: err.Error()}
	}
	if s.After(e) {
		return time.Time{}, time.Time{}, &InvalidRangeError{Start: start, End: end, Reason: "start date is after end date"}
	}
	return s, e, nil
}

// Span returns the inclusive day count of [start, end].
func Span(start, end string) (int, error) {
	s, e, err := parseRange(start, end)
	if err != nil {
		return 0, err
	}
	return int(e.Sub(s).Hours()/24) + 1, nil
}

// Days returns a lazy, finite, restartable sequence of every calendar day
// from start to end inclusive, formatted as YYYY-MM-DD.
func Days(start, end string) (iter.Seq[string], error) {
	s, e, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}
	return func(yield func(string) bool) {
		for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
			if !yield(FormatDate(d)) {
				return
			}
		}
	}, nil
}

// SplitRange splits [start, end] into ordered consecutive chunks, none longer
// than maxDays, the last chunk clipped to the overall end date. The chunks
// are contiguous, non-overlapping, and cover the range exactly.
func SplitRange(start, end string, maxDays int) ([]models.Chunk, error) {
	if maxDays < 1 {
		return nil, fmt.Errorf("maxDays must be positive, got %d", maxDays)
	}
	s, e, err := parseRange(start, end)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for cur := s; !cur.After(e); cur = cur.AddDate(0, 0, maxDays) {
		chunkEnd := cur.AddDate(0, 0, maxDays-1)
		if chunkEnd.After(e) {
			chunkEnd = e
		}
		chunks = append(chunks, models.Chunk{Start: FormatDate(cur), End: FormatDate(chunkEnd)})
	}
	return chunks, nil
}
