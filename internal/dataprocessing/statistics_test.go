package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adlens/pkg/contracts/domain"
)

func TestComputeStatistics_Totals(t *testing.T) {
	records := []domain.AdRecord{
		{Views: 100, Clicks: 10, Cost: 500, GMV: 2000, Conversions: 4},
		{Views: 300, Clicks: 30, Cost: 1500, GMV: 6000, Conversions: 6},
	}

	stats := ComputeStatistics(records)

	assert.Equal(t, 400, stats.TotalViews)
	assert.Equal(t, 40, stats.TotalClicks)
	assert.Equal(t, 2000, stats.TotalCost)
	assert.Equal(t, 8000, stats.TotalGMV)
	assert.Equal(t, 10, stats.TotalConversions)
	assert.InDelta(t, 10.0, stats.AverageClickRate, 1e-9)
	assert.InDelta(t, 25.0, stats.AverageConversionRate, 1e-9)
}

func TestComputeStatistics_GuardedRates(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.AdRecord
	}{
		{"empty set", nil},
		{"zero views", []domain.AdRecord{{Views: 0, Clicks: 0}}},
		{"zero clicks", []domain.AdRecord{{Views: 50, Clicks: 0, Conversions: 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := ComputeStatistics(tt.records)
			if stats.TotalViews == 0 {
				assert.Zero(t, stats.AverageClickRate)
			}
			assert.Zero(t, stats.AverageConversionRate)
		})
	}
}

func TestComputeStatistics_TopKeywords(t *testing.T) {
	var records []domain.AdRecord
	for i := 1; i <= 15; i++ {
		records = append(records, domain.AdRecord{Order: i, Views: i * 10})
	}

	stats := ComputeStatistics(records)

	require.Len(t, stats.TopKeywords, 10)
	assert.Equal(t, 150, stats.TopKeywords[0].Views)
	assert.Equal(t, 60, stats.TopKeywords[9].Views)

	// Input order must survive the ranking.
	assert.Equal(t, 1, records[0].Order)
	assert.Equal(t, 10, records[0].Views)
}

func TestComputeStatistics_TopKeywordsSmallSet(t *testing.T) {
	records := []domain.AdRecord{
		{Order: 1, Views: 5},
		{Order: 2, Views: 50},
		{Order: 3, Views: 20},
	}

	stats := ComputeStatistics(records)

	require.Len(t, stats.TopKeywords, 3)
	assert.Equal(t, []int{50, 20, 5}, []int{
		stats.TopKeywords[0].Views,
		stats.TopKeywords[1].Views,
		stats.TopKeywords[2].Views,
	})
}

func TestComputeStatistics_TopKeywordsEmpty(t *testing.T) {
	stats := ComputeStatistics(nil)
	assert.NotNil(t, stats.TopKeywords)
	assert.Empty(t, stats.TopKeywords)
}

func TestComputeStatistics_Extremes(t *testing.T) {
	records := []domain.AdRecord{
		{Views: 100, Clicks: 0, Cost: 30, GMV: 0},
		{Views: 0, Clicks: 5, Cost: 80, GMV: 400},
		{Views: 20, Clicks: 9, Cost: 0, GMV: 100},
	}

	stats := ComputeStatistics(records)

	assert.Equal(t, domain.MetricExtremes{Views: 100, Clicks: 9, Cost: 80, GMV: 400}, stats.MaxValues)
	// Minima skip zeros.
	assert.Equal(t, domain.MetricExtremes{Views: 20, Clicks: 5, Cost: 30, GMV: 100}, stats.MinValues)
}

func TestComputeStatistics_AllZeroMetric(t *testing.T) {
	records := []domain.AdRecord{{Views: 10}, {Views: 20}}

	stats := ComputeStatistics(records)

	assert.Equal(t, 0, stats.MinValues.Clicks)
	assert.Equal(t, 0, stats.MaxValues.Clicks)
	assert.Equal(t, 10, stats.MinValues.Views)
}
