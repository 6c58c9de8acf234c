package domain

const (
	// DefaultBaseYear labels the first export band.
	DefaultBaseYear = 2015
	// DefaultBandSize is the number of export rows sharing a year label.
	DefaultBandSize = 25
	// MaxBand is the last band; every row past it shares its label.
	MaxBand = 4
)

// ExportRow is one CSV line of the aggregated export.
type ExportRow struct {
	ArticleID  int64
	Title      string
	Year       int
	Sentiments []float64
	URL        string
	Summary    string
}

// YearBand maps an export position to its synthetic year label.
// Rows 0..bandSize-1 get baseYear, the next bandSize rows baseYear+1, and so on up to MaxBand.
func YearBand(index, baseYear, bandSize int) int {
	if bandSize <= 0 {
		bandSize = DefaultBandSize
	}
	if index < 0 {
		index = 0
	}
	band := index / bandSize
	if band > MaxBand {
		band = MaxBand
	}
	return baseYear + band
}

// SentimentCategory buckets polarity scores for charts.
type SentimentCategory string

const (
	SentimentNegative SentimentCategory = "Negative"
	SentimentNeutral  SentimentCategory = "Neutral"
	SentimentPositive SentimentCategory = "Positive"
)

// Categorize classifies a polarity score by its sign.
func Categorize(score float64) SentimentCategory {
	switch {
	case score < 0:
		return SentimentNegative
	case score > 0:
		return SentimentPositive
	default:
		return SentimentNeutral
	}
}
