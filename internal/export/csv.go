package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"DiscussionScanner/internal/domain"
)

// Header is the column layout of the export file.
var Header = []string{"Article ID", "Title", "Year", "Sentiment List", "URL", "Summary"}

// EncodeScores renders scores as a JSON array, e.g. [0.5,-0.2].
func EncodeScores(scores []float64) string {
	if len(scores) == 0 {
		return "[]"
	}
	raw, err := json.Marshal(scores)
	if err != nil {
		// NaN and Inf are the only values json rejects.
		parts := make([]string, 0, len(scores))
		for _, s := range scores {
			parts = append(parts, strconv.FormatFloat(s, 'g', -1, 64))
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	return string(raw)
}

// DecodeScores parses a Sentiment List field. Blank fields decode to an empty list.
func DecodeScores(field string) ([]float64, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, nil
	}
	var scores []float64
	if err := json.Unmarshal([]byte(field), &scores); err != nil {
		return nil, fmt.Errorf("sentiment list %q: %w", field, err)
	}
	return scores, nil
}

// WriteCSV writes the header and one line per row.
func WriteCSV(w io.Writer, rows []domain.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.ArticleID, 10),
			row.Title,
			strconv.Itoa(row.Year),
			EncodeScores(row.Sentiments),
			row.URL,
			row.Summary,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write article %d: %w", row.ArticleID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV parses an export file by column name. A missing Year column yields Year 0.
func ReadCSV(r io.Reader) ([]domain.ExportRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{"Article ID", "Title", "Sentiment List"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("export header lacks %q column", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []domain.ExportRow
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		id, err := strconv.ParseInt(strings.TrimSpace(field(record, "Article ID")), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: article id: %w", line, err)
		}
		scores, err := DecodeScores(field(record, "Sentiment List"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		var year int
		if raw := strings.TrimSpace(field(record, "Year")); raw != "" {
			if year, err = strconv.Atoi(raw); err != nil {
				return nil, fmt.Errorf("line %d: year: %w", line, err)
			}
		}

		rows = append(rows, domain.ExportRow{
			ArticleID:  id,
			Title:      field(record, "Title"),
			Year:       year,
			Sentiments: scores,
			URL:        field(record, "URL"),
			Summary:    field(record, "Summary"),
		})
	}
	return rows, nil
}
