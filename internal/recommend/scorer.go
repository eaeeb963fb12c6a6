package recommend

import (
	"sort"
	"time"
)

const DefaultTopN = 3

// DemographicQuery is the scoring input derived from one form submission.
type DemographicQuery struct {
	Gender      Gender
	AgeGroup    AgeGroup
	TimeWindows []string
}

// CategoryScore is a category with its cumulative score across matched keys.
type CategoryScore struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Scorer ranks categories for demographic queries. The zero value scores the
// full day when no window is selected and returns the top 3.
type Scorer struct {
	Policy HourPolicy
	TopN   int
	Now    func() time.Time
}

// TargetHours returns the hours to score for q: the parsed windows, or the
// policy default when none are selected.
func (s Scorer) TargetHours(q DemographicQuery) ([]int, error) {
	if len(q.TimeWindows) > 0 {
		return ParseTimeRanges(q.TimeWindows)
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	return DefaultHours(s.Policy, now()), nil
}

// Score sums the scores of every category found under the query's keys for
// days 1..7 and returns the best TopN, highest first. Equal totals are ordered
// by category name. No matching key yields an empty result.
func (s Scorer) Score(table Table, q DemographicQuery) ([]CategoryScore, error) {
	hours, err := s.TargetHours(q)
	if err != nil {
		return nil, err
	}

	ageCode := q.AgeGroup.Code()
	totals := make(map[string]float64)
	for day := 1; day <= 7; day++ {
		for _, hour := range hours {
			entries, ok := table.Lookup(Key(ageCode, q.Gender, day, hour))
			if !ok {
				continue
			}
			for _, entry := range entries {
				totals[entry.Category] += entry.Score
			}
		}
	}

	ranked := make([]CategoryScore, 0, len(totals))
	for category, score := range totals {
		ranked = append(ranked, CategoryScore{Category: category, Score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Category < ranked[j].Category
	})

	topN := s.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked, nil
}

// TopCategories is Score reduced to category names.
func (s Scorer) TopCategories(table Table, q DemographicQuery) ([]string, error) {
	scored, err := s.Score(table, q)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(scored))
	for i, item := range scored {
		names[i] = item.Category
	}
	return names, nil
}
