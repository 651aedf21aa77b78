// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

// Package scheduler runs the daily analytics upsert job on a cron schedule.
package scheduler

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Schedule is a parsed 5-field cron expression. All firing times are
// computed in UTC; the job's date arithmetic is UTC-calendar based and a
// local-time schedule would shift the target date underneath it.
type Schedule struct {
	minutes     []int // 0-59
	hours       []int // 0-23
	daysOfMonth []int // 1-31
	months      []int // 1-12
	daysOfWeek  []int // 0-6, Sunday = 0
}

// ParseSchedule parses a standard 5-field cron expression:
// minute hour day-of-month month day-of-week.
//
// Supports *, single values, ranges (n-m), lists (n,m), and steps (*/n,
// n-m/s). Day-of-week 7 is normalized to Sunday. The default production
// schedule is "0 2 * * *": daily at 02:00 UTC.
func ParseSchedule(expr string) (*Schedule, error) {
	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return nil, fmt.Errorf("cron expression must have 5 fields, got %d", len(fields))
	}

	minutes, err := parseField(fields[0], 0, 59)
	if err != nil {
		return nil, fmt.Errorf("invalid minute field: %w", err)
	}
	hours, err := parseField(fields[1], 0, 23)
	if err != nil {
		return nil, fmt.Errorf("invalid hour field: %w", err)
	}
	daysOfMonth, err := parseField(fields[2], 1, 31)
	if err != nil {
		return nil, fmt.Errorf("invalid day-of-month field: %w", err)
	}
	months, err := parseField(fields[3], 1, 12)
	if err != nil {
		return nil, fmt.Errorf("invalid month field: %w", err)
	}
	daysOfWeek, err := parseField(fields[4], 0, 7)
	if err != nil {
		return nil, fmt.Errorf("invalid day-of-week field: %w", err)
	}

	for i, d := range daysOfWeek {
		if d == 7 {
			daysOfWeek[i] = 0
		}
	}
	daysOfWeek = uniqueSorted(daysOfWeek)

	return &Schedule{
		minutes:     minutes,
		hours:       hours,
		daysOfMonth: daysOfMonth,
		months:      months,
		daysOfWeek:  daysOfWeek,
	}, nil
}

// Next returns the first firing time strictly after t, in UTC.
func (s *Schedule) Next(after time.Time) time.Time {
	t := after.UTC().Add(time.Minute).Truncate(time.Minute)

	// A valid schedule fires at least once every 4 years (Feb 29 rules).
	limit := 4 * 366 * 24 * 60
	for range limit {
		if s.matches(t) {
			return t
		}
		t = t.Add(time.Minute)
	}
	return time.Time{}
}

func (s *Schedule) matches(t time.Time) bool {
	if !slices.Contains(s.minutes, t.Minute()) ||
		!slices.Contains(s.hours, t.Hour()) ||
		!slices.Contains(s.months, int(t.Month())) {
		return false
	}

	// Standard cron: when both day fields are restricted, either may match.
	domWild := len(s.daysOfMonth) == 31
	dowWild := len(s.daysOfWeek) == 7
	domMatch := slices.Contains(s.daysOfMonth, t.Day())
	dowMatch := slices.Contains(s.daysOfWeek, int(t.Weekday()))

	switch {
	case domWild && dowWild:
		return true
	case domWild:
		return dowMatch
	case dowWild:
		return domMatch
	default:
		return domMatch || dowMatch
	}
}

func parseField(field string, minVal, maxVal int) ([]int, error) {
	if field == "*" {
		return rangeInts(minVal, maxVal), nil
	}
	if strings.Contains(field, ",") {
		var result []int
		for _, part := range strings.Split(field, ",") {
			values, err := parseFieldPart(part, minVal, maxVal)
			if err != nil {
				return nil, err
			}
			result = append(result, values...)
		}
		return uniqueSorted(result), nil
	}
	return parseFieldPart(field, minVal, maxVal)
}

func parseFieldPart(part string, minVal, maxVal int) ([]int, error) {
	if base, stepStr, ok := strings.Cut(part, "/"); ok {
		step, err := strconv.Atoi(stepStr)
		if err != nil || step <= 0 {
			return nil, fmt.Errorf("invalid step value: %s", stepStr)
		}

		start, end := minVal, maxVal
		switch {
		case base == "*":
		case strings.Contains(base, "-"):
			start, end, err = parseRange(base)
			if err != nil {
				return nil, err
			}
		default:
			start, err = strconv.Atoi(base)
			if err != nil {
				return nil, fmt.Errorf("invalid value: %s", base)
			}
		}

		var result []int
		for i := start; i <= end; i += step {
			if i >= minVal && i <= maxVal {
				result = append(result, i)
			}
		}
		return result, nil
	}

	if strings.Contains(part, "-") {
		start, end, err := parseRange(part)
		if err != nil {
			return nil, err
		}
		if start > end || start < minVal || end > maxVal {
			return nil, fmt.Errorf("range %d-%d outside %d-%d", start, end, minVal, maxVal)
		}
		return rangeInts(start, end), nil
	}

	val, err := strconv.Atoi(part)
	if err != nil {
		return nil, fmt.Errorf("invalid value: %s", part)
	}
	if val < minVal || val > maxVal {
		return nil, fmt.Errorf("value %d outside %d-%d", val, minVal, maxVal)
	}
	return []int{val}, nil
}

func parseRange(s string) (int, int, error) {
	startStr, endStr, _ := strings.Cut(s, "-")
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range start: %s", startStr)
	}
	end, err := strconv.Atoi(endStr)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range end: %s", endStr)
	}
	return start, end, nil
}

func rangeInts(start, end int) []int {
	result := make([]int, end-start+1)
	for i := range result {
		result[i] = start + i
	}
	return result
}

func uniqueSorted(vals []int) []int {
	slices.Sort(vals)
	return slices.Compact(vals)
}
