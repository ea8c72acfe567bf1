package dataprocessing

import (
	"sort"

	"adlens/pkg/contracts/domain"
)

// topKeywordCount is the size of the views ranking in Statistics.
const topKeywordCount = 10

// ComputeStatistics derives the full aggregate view from a record set.
// It is a pure function: the input slice is never reordered or mutated,
// and it always produces a result. Empty or degenerate inputs follow
// the zero defaults documented on domain.Statistics.
func ComputeStatistics(records []domain.AdRecord) domain.Statistics {
	stats := domain.Statistics{
		TopKeywords: []domain.AdRecord{},
	}

	for _, r := range records {
		stats.TotalViews += r.Views
		stats.TotalClicks += r.Clicks
		stats.TotalCost += r.Cost
		stats.TotalGMV += r.GMV
		stats.TotalConversions += r.Conversions
	}

	// Rates are zero when the denominator is zero, never NaN or Inf.
	if stats.TotalViews > 0 {
		stats.AverageClickRate = float64(stats.TotalClicks) / float64(stats.TotalViews) * 100
	}
	if stats.TotalClicks > 0 {
		stats.AverageConversionRate = float64(stats.TotalConversions) / float64(stats.TotalClicks) * 100
	}

	stats.TopKeywords = topByViews(records, topKeywordCount)
	stats.MaxValues = maxValues(records)
	stats.MinValues = minPositiveValues(records)

	return stats
}

// topByViews returns up to n records ordered by descending views. The
// ranking sorts a copy so the caller-visible order stays the source
// order; equal-views ties keep their relative source order.
func topByViews(records []domain.AdRecord, n int) []domain.AdRecord {
	ranked := make([]domain.AdRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Views > ranked[j].Views
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// maxValues computes per-metric maxima over the full record set. An
// empty set reports zero for every metric so the aggregate can always
// render.
func maxValues(records []domain.AdRecord) domain.MetricExtremes {
	var m domain.MetricExtremes
	for _, r := range records {
		if r.Views > m.Views {
			m.Views = r.Views
		}
		if r.Clicks > m.Clicks {
			m.Clicks = r.Clicks
		}
		if r.Cost > m.Cost {
			m.Cost = r.Cost
		}
		if r.GMV > m.GMV {
			m.GMV = r.GMV
		}
	}
	return m
}

// minPositiveValues computes per-metric minima over records whose value
// for that metric is strictly positive. A metric with no qualifying
// record reports zero, which is indistinguishable from a true zero
// minimum; that ambiguity is part of the contract.
func minPositiveValues(records []domain.AdRecord) domain.MetricExtremes {
	var m domain.MetricExtremes
	for _, r := range records {
		m.Views = minPositive(m.Views, r.Views)
		m.Clicks = minPositive(m.Clicks, r.Clicks)
		m.Cost = minPositive(m.Cost, r.Cost)
		m.GMV = minPositive(m.GMV, r.GMV)
	}
	return m
}

func minPositive(current, candidate int) int {
	if candidate <= 0 {
		return current
	}
	if current == 0 || candidate < current {
		return candidate
	}
	return current
}
