package visualize

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"DiscussionScanner/internal/domain"
)

// Kind names one of the chart pages.
type Kind string

const (
	KindControversy Kind = "controversy"
	KindCategories  Kind = "categories"
	KindAverages    Kind = "averages"
	KindArticles    Kind = "articles"
)

// Kinds lists every supported chart page in display order.
func Kinds() []Kind {
	return []Kind{KindControversy, KindCategories, KindAverages, KindArticles}
}

// ParseKind validates a chart name.
func ParseKind(name string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == name {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown chart %q (known: %v)", name, Kinds())
}

// ErrNoArticles is returned when the export holds no rows.
var ErrNoArticles = errors.New("no articles")

const (
	colorNegative = "#d9534f"
	colorNeutral  = "#999999"
	colorPositive = "#5cb85c"

	clipLength = 90
)

// Renderer draws chart pages from export rows.
type Renderer struct {
	SampleSize int
	Seed       int64
}

// Render writes the self-contained HTML page of kind to w.
func (r Renderer) Render(kind Kind, rows []domain.ExportRow, w io.Writer) error {
	if len(rows) == 0 {
		return ErrNoArticles
	}

	page := components.NewPage()
	switch kind {
	case KindControversy:
		page.SetPageTitle("Most controversial article per year").AddCharts(controversyChart(rows))
	case KindCategories:
		page.SetPageTitle("Sentiment categories per year").AddCharts(categoriesChart(rows))
	case KindAverages:
		page.SetPageTitle("Average sentiment per year").AddCharts(averagesChart(rows))
	case KindArticles:
		page.SetPageTitle("Sentiment per article").SetLayout(components.PageFlexLayout)
		sample := Sample(rows, r.SampleSize, rand.New(rand.NewSource(r.Seed)))
		for _, row := range sample {
			page.AddCharts(articleChart(row))
		}
	default:
		return fmt.Errorf("unknown chart %q", kind)
	}

	return page.Render(w)
}

func controversyChart(rows []domain.ExportRow) *charts.Bar {
	picks := MostControversial(rows)

	years := make([]string, 0, len(picks))
	data := make([]opts.BarData, 0, len(picks))
	for _, p := range picks {
		years = append(years, strconv.Itoa(p.Year))
		data = append(data, opts.BarData{Name: clip(p.Title), Value: p.Spread})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Most Controversial News Article Per Year", Subtitle: "max - min comment sentiment"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Formatter: "{b}: {c}"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Max Sentiment Difference"}),
	)
	bar.SetXAxis(years).AddSeries("spread", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top", Formatter: "{b}"}),
	)
	return bar
}

func categoriesChart(rows []domain.ExportRow) *charts.Bar {
	buckets := CategoriesByYear(rows)

	years := make([]string, 0, len(buckets))
	var neg, neu, pos []opts.BarData
	for _, b := range buckets {
		years = append(years, strconv.Itoa(b.Year))
		neg = append(neg, opts.BarData{Value: b.Counts.Negative})
		neu = append(neu, opts.BarData{Value: b.Counts.Neutral})
		pos = append(pos, opts.BarData{Value: b.Counts.Positive})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Sentiment Categories Per Year"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Number of Comments"}),
	)
	stack := charts.WithBarChartOpts(opts.BarChart{Stack: "comments"})
	bar.SetXAxis(years).
		AddSeries(string(domain.SentimentNegative), neg, stack, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorNegative})).
		AddSeries(string(domain.SentimentNeutral), neu, stack, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorNeutral})).
		AddSeries(string(domain.SentimentPositive), pos, stack, charts.WithItemStyleOpts(opts.ItemStyle{Color: colorPositive}))
	return bar
}

func averagesChart(rows []domain.ExportRow) *charts.Line {
	averages := AveragesByYear(rows)

	years := make([]string, 0, len(averages))
	data := make([]opts.LineData, 0, len(averages))
	for _, a := range averages {
		years = append(years, strconv.Itoa(a.Year))
		data = append(data, opts.LineData{Value: a.Average})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Average Sentiment by Year"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Average Sentiment", Min: -1, Max: 1}),
	)
	line.SetXAxis(years).AddSeries("average", data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
	)
	return line
}

func articleChart(row domain.ExportRow) *charts.Bar {
	var counts CategoryCounts
	counts.Add(row.Sentiments)

	title := fmt.Sprintf("%s (%d)", clip(row.Title), row.Year)
	summary := "Summary: " + clip(row.Summary)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "420px", Height: "300px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Link:     row.URL,
			Target:   "blank",
			Subtitle: summary,
			TitleStyle: &opts.TextStyle{
				FontSize: 12,
				Color:    "#1f5fbf",
			},
		}),
		charts.WithGridOpts(opts.Grid{Top: "80"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Comments"}),
	)
	bar.SetXAxis([]string{
		string(domain.SentimentNegative),
		string(domain.SentimentNeutral),
		string(domain.SentimentPositive),
	}).AddSeries("comments", []opts.BarData{
		{Value: counts.Negative, ItemStyle: &opts.ItemStyle{Color: colorNegative}},
		{Value: counts.Neutral, ItemStyle: &opts.ItemStyle{Color: colorNeutral}},
		{Value: counts.Positive, ItemStyle: &opts.ItemStyle{Color: colorPositive}},
	})
	return bar
}

// clip keeps the first clipLength runes and appends "..." when text was longer.
func clip(text string) string {
	runes := []rune(text)
	if len(runes) <= clipLength {
		return text
	}
	return string(runes[:clipLength]) + "..."
}
