// MediaTiger Analytics - Channel Revenue Analytics Core
// Copyright 2026 MediaTiger
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediatiger/analytics

package database

import (
	"math"
	"sort"

	"github.com/mediatiger/analytics/internal/models"
)

// Summarize folds a record set into one Summary.
//
// DataPoints counts matched rows, not daily entries. AverageRPM is the
// unweighted arithmetic mean of each row's average_rpm; a row covering 30
// days weighs the same as a row covering 1. An empty set yields the zero
// Summary rather than NaN.
func Summarize(records []models.AnalyticsRecord) models.Summary {
	var s models.Summary
	if len(records) == 0 {
		return s
	}
	var rpmSum float64
	channels := make(map[string]struct{}, len(records))
	for _, r := range records {
		s.TotalViews += r.TotalViews
		s.TotalPremiumViews += r.TotalPremiumViews
		s.TotalRevenue += r.TotalRevenue
		rpmSum += r.AverageRPM
		channels[r.ChannelID] = struct{}{}
	}
	s.DataPoints = len(records)
	s.Channels = len(channels)
	s.TotalRevenue = round2(s.TotalRevenue)
	s.AverageRPM = round2(rpmSum / float64(len(records)))
	return s
}

// SummarizeChannels folds records into per-channel summaries, sorted by
// channel ID. Unlike Summarize, each channel's AverageRPM is recomputed
// revenue-weighted from the channel's own totals: revenue * 1000 / views,
// 0 when the channel has no views.
func SummarizeChannels(records []models.AnalyticsRecord) []models.ChannelSummary {
	byChannel := make(map[string]*models.ChannelSummary)
	for _, r := range records {
		cs, ok := byChannel[r.ChannelID]
		if !ok {
			cs = &models.ChannelSummary{
				ChannelID: r.ChannelID,
				FirstSeen: r.StartDate,
				LastSeen:  r.EndDate,
			}
			byChannel[r.ChannelID] = cs
		}
		cs.TotalViews += r.TotalViews
		cs.TotalPremiumViews += r.TotalPremiumViews
		cs.TotalRevenue += r.TotalRevenue
		cs.DataPoints++
		if r.StartDate < cs.FirstSeen {
			cs.FirstSeen = r.StartDate
		}
		if r.EndDate > cs.LastSeen {
			cs.LastSeen = r.EndDate
		}
	}

	out := make([]models.ChannelSummary, 0, len(byChannel))
	for _, cs := range byChannel {
		cs.TotalRevenue = round2(cs.TotalRevenue)
		if cs.TotalViews > 0 {
			cs.AverageRPM = round2(cs.TotalRevenue * 1000 / float64(cs.TotalViews))
		}
		out = append(out, *cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChannelID < out[j].ChannelID })
	return out
}

// GroupDaily flattens the records' daily entries and regroups them.
// groupBy "channel" groups by channel ID with per-date contributions;
// anything else groups by date with per-channel contributions. Groups sort
// ascending by their key; date strings sort chronologically as-is.
func GroupDaily(records []models.AnalyticsRecord, groupBy string) []models.DailyAggregate {
	byChannel := groupBy == "channel"
	groups := make(map[string]*models.DailyAggregate)

	for _, r := range records {
		for _, d := range r.DailyData {
			key := d.Date
			if byChannel {
				key = r.ChannelID
			}
			agg, ok := groups[key]
			if !ok {
				agg = &models.DailyAggregate{}
				if byChannel {
					agg.ChannelID = key
				} else {
					agg.Date = key
				}
				groups[key] = agg
			}
			agg.TotalViews += d.Views
			agg.TotalPremiumViews += d.PremiumViews
			agg.TotalRevenue += d.Revenue
			c := models.DailyContribution{
				Views:        d.Views,
				PremiumViews: d.PremiumViews,
				Revenue:      d.Revenue,
				AverageRPM:   d.RPM,
			}
			if byChannel {
				c.Date = d.Date
			} else {
				c.ChannelID = r.ChannelID
			}
			agg.Entries = append(agg.Entries, c)
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]models.DailyAggregate, 0, len(keys))
	for _, k := range keys {
		agg := groups[k]
		agg.TotalRevenue = round2(agg.TotalRevenue)
		if byChannel {
			sort.Slice(agg.Entries, func(i, j int) bool {
				return agg.Entries[i].Date < agg.Entries[j].Date
			})
		} else {
			sort.Slice(agg.Entries, func(i, j int) bool {
				return agg.Entries[i].ChannelID < agg.Entries[j].ChannelID
			})
		}
		out = append(out, *agg)
	}
	return out
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
