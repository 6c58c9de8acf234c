package visualize

import (
	"math/rand"
	"sort"

	"DiscussionScanner/internal/domain"
)

// YearPick is the article with the widest sentiment spread in its year.
type YearPick struct {
	Year   int
	Title  string
	URL    string
	Spread float64
}

// MostControversial returns, per year label, the row whose scores span the widest range.
// Rows without scores are ignored; on ties the earlier row wins.
func MostControversial(rows []domain.ExportRow) []YearPick {
	best := map[int]YearPick{}
	for _, row := range rows {
		if len(row.Sentiments) == 0 {
			continue
		}
		lo, hi := row.Sentiments[0], row.Sentiments[0]
		for _, s := range row.Sentiments[1:] {
			if s < lo {
				lo = s
			}
			if s > hi {
				hi = s
			}
		}
		spread := hi - lo
		if cur, ok := best[row.Year]; !ok || cur.Spread < spread {
			best[row.Year] = YearPick{Year: row.Year, Title: row.Title, URL: row.URL, Spread: spread}
		}
	}

	picks := make([]YearPick, 0, len(best))
	for _, p := range best {
		picks = append(picks, p)
	}
	sort.Slice(picks, func(i, j int) bool { return picks[i].Year < picks[j].Year })
	return picks
}

// CategoryCounts holds how many scores fell into each sentiment category.
type CategoryCounts struct {
	Negative int
	Neutral  int
	Positive int
}

// Add counts each score by its category.
func (c *CategoryCounts) Add(scores []float64) {
	for _, s := range scores {
		switch domain.Categorize(s) {
		case domain.SentimentNegative:
			c.Negative++
		case domain.SentimentPositive:
			c.Positive++
		default:
			c.Neutral++
		}
	}
}

// YearCategories is the category histogram of one year label.
type YearCategories struct {
	Year   int
	Counts CategoryCounts
}

// CategoriesByYear buckets every score by year label, sorted by year.
func CategoriesByYear(rows []domain.ExportRow) []YearCategories {
	byYear := map[int]*CategoryCounts{}
	for _, row := range rows {
		counts, ok := byYear[row.Year]
		if !ok {
			counts = &CategoryCounts{}
			byYear[row.Year] = counts
		}
		counts.Add(row.Sentiments)
	}

	out := make([]YearCategories, 0, len(byYear))
	for year, counts := range byYear {
		out = append(out, YearCategories{Year: year, Counts: *counts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// YearAverage is the mean of per-article average sentiment for one year label.
type YearAverage struct {
	Year     int
	Average  float64
	Articles int
}

// AveragesByYear averages each article's scores, then averages those per year.
// Articles without scores do not contribute; years with none are omitted.
func AveragesByYear(rows []domain.ExportRow) []YearAverage {
	type acc struct {
		sum float64
		n   int
	}
	byYear := map[int]*acc{}
	for _, row := range rows {
		if len(row.Sentiments) == 0 {
			continue
		}
		var sum float64
		for _, s := range row.Sentiments {
			sum += s
		}
		a, ok := byYear[row.Year]
		if !ok {
			a = &acc{}
			byYear[row.Year] = a
		}
		a.sum += sum / float64(len(row.Sentiments))
		a.n++
	}

	out := make([]YearAverage, 0, len(byYear))
	for year, a := range byYear {
		out = append(out, YearAverage{Year: year, Average: a.sum / float64(a.n), Articles: a.n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// Sample picks up to n rows at random without replacement, keeping their input order.
func Sample(rows []domain.ExportRow, n int, rng *rand.Rand) []domain.ExportRow {
	if n <= 0 || len(rows) <= n {
		return rows
	}
	idx := rng.Perm(len(rows))[:n]
	sort.Ints(idx)

	out := make([]domain.ExportRow, 0, n)
	for _, i := range idx {
		out = append(out, rows[i])
	}
	return out
}
