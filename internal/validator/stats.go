package validator

import "sort"

// CodeCount is one row of a frequency ranking.
type CodeCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// Statistics summarises a set of results.
type Statistics struct {
	TotalValidated int         `json:"total_validated"`
	ValidCount     int         `json:"valid_count"`
	InvalidCount   int         `json:"invalid_count"`
	AverageScore   float64     `json:"average_score"`
	CommonErrors   []CodeCount `json:"common_errors"`
	CommonWarnings []CodeCount `json:"common_warnings"`
}

// GetValidationStatistics aggregates results. Nil entries are skipped.
// Rankings are by count descending; equal counts keep first-seen order.
func GetValidationStatistics(results []*Result) *Statistics {
	stats := &Statistics{
		CommonErrors:   []CodeCount{},
		CommonWarnings: []CodeCount{},
	}
	errCounts := newCounter()
	warnCounts := newCounter()
	scoreSum := 0

	for _, r := range results {
		if r == nil {
			continue
		}
		stats.TotalValidated++
		if r.IsValid {
			stats.ValidCount++
		} else {
			stats.InvalidCount++
		}
		scoreSum += r.ValidationScore
		for _, e := range r.Errors {
			errCounts.add(e.Code)
		}
		for _, w := range r.Warnings {
			warnCounts.add(w.Code)
		}
	}

	if stats.TotalValidated > 0 {
		stats.AverageScore = float64(scoreSum) / float64(stats.TotalValidated)
	}
	stats.CommonErrors = errCounts.ranked()
	stats.CommonWarnings = warnCounts.ranked()
	return stats
}

type counter struct {
	index map[string]int
	rows  []CodeCount
}

func newCounter() *counter {
	return &counter{index: make(map[string]int)}
}

func (c *counter) add(code string) {
	if i, ok := c.index[code]; ok {
		c.rows[i].Count++
		return
	}
	c.index[code] = len(c.rows)
	c.rows = append(c.rows, CodeCount{Code: code, Count: 1})
}

func (c *counter) ranked() []CodeCount {
	out := append([]CodeCount{}, c.rows...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}
