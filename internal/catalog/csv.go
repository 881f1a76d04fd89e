package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Row is one record of the Kaggle fra_cleaned.csv export.
type Row struct {
	URL         string
	Perfume     string
	Brand       string
	Country     string
	Gender      string
	RatingValue float64
	RatingCount int
	Year        int
	Top         string
	Middle      string
	Base        string
	Perfumers   []string
	Accords     []string
}

var requiredColumns = []string{"Perfume", "Brand", "Gender", "Rating Value", "Rating Count"}

// Encoding of the input file.
type Encoding string

const (
	Latin1 Encoding = "latin1"
	UTF8   Encoding = "utf8"
)

// ParseCSV reads the semicolon separated export. Malformed rows are counted
// in skipped rather than failing the whole file.
func ParseCSV(r io.Reader, enc Encoding) (rows []Row, skipped int, err error) {
	if enc != UTF8 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	reader := csv.NewReader(r)
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, 0, fmt.Errorf("missing column %q", name)
		}
	}

	get := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		v := strings.TrimSpace(rec[i])
		if strings.EqualFold(v, "nan") {
			return ""
		}
		return v
	}

	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		row := Row{
			URL:         get(rec, "url"),
			Perfume:     get(rec, "Perfume"),
			Brand:       get(rec, "Brand"),
			Country:     get(rec, "Country"),
			Gender:      get(rec, "Gender"),
			RatingValue: parseRating(get(rec, "Rating Value")),
			RatingCount: parseCount(get(rec, "Rating Count")),
			Year:        parseYear(get(rec, "Year")),
			Top:         get(rec, "Top"),
			Middle:      get(rec, "Middle"),
			Base:        get(rec, "Base"),
		}
		for _, col := range []string{"Perfumer1", "Perfumer2"} {
			if p := get(rec, col); p != "" && !strings.EqualFold(p, "unknown") {
				row.Perfumers = append(row.Perfumers, p)
			}
		}
		for i := 1; i <= 5; i++ {
			if a := get(rec, "mainaccord"+strconv.Itoa(i)); a != "" {
				row.Accords = append(row.Accords, strings.ToLower(a))
			}
		}
		if row.Perfume == "" || row.Brand == "" {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

// parseRating accepts a decimal comma ("4,12").
func parseRating(raw string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// parseCount drops thousands separators ("1,204").
func parseCount(raw string) int {
	raw = strings.NewReplacer(",", "", ".", "", " ", "").Replace(raw)
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseYear(raw string) int {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}
