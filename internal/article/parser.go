package article

import (
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Column positions of the review log layout
const (
	ColURL = iota
	ColOriginalURL
	ColReadDate
	ColTitle
	ColTags
	ColCharacterCount
	ColWordCount
	ColLanguage
	ColAuthors
	ColPublicationDate
	ColMinutes
	ColRating
	ColReview
	ColCategory

	ColumnCount
)

var languageCodes = map[string]Language{
	"en": English,
	"EN": English,
	"hu": Hungarian,
	"HU": Hungarian,
}

// dateLayouts are tried in order. Sheets exports dates in the spreadsheet
// locale, so the Hungarian "2006. 01. 02." form shows up next to ISO.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2006.01.02",
	"2006. 1. 2.",
	"1/2/2006",
}

// ParseRow converts one raw row into an Article. It reports false when the
// row has no title, which is how blank rows at the end of a fixed-size range
// are skipped. Malformed optional fields never reject a row.
func ParseRow(row []string) (Article, bool) {
	title := cell(row, ColTitle)
	if title == "" {
		return Article{}, false
	}

	url, dead := strings.CutPrefix(cell(row, ColURL), DeadLinkPrefix)

	a := Article{
		URL:            url,
		OriginalURL:    cell(row, ColOriginalURL),
		IsURLDead:      dead,
		ReadDate:       ParseDate(cell(row, ColReadDate)),
		Title:          title,
		Tags:           splitList(cell(row, ColTags)),
		CharacterCount: ParseCount(cell(row, ColCharacterCount)),
		WordCount:      ParseCount(cell(row, ColWordCount)),
		Language:       ParseLanguage(cell(row, ColLanguage)),
		Authors:        splitList(cell(row, ColAuthors)),
		Minutes:        ParseCount(cell(row, ColMinutes)),
		Rating:         ParseCount(cell(row, ColRating)),
		Review:         cell(row, ColReview),
		Category:       cell(row, ColCategory),
	}

	if raw := cell(row, ColPublicationDate); raw != "" {
		d := ParseDate(raw)
		a.PublicationDate = &d
	}

	if a.Category == "" {
		a.Category = UncategorizedCategory
	}

	return a, true
}

// ParseRows parses every row and drops the rejected ones, keeping order
func ParseRows(rows [][]string) []Article {
	articles := make([]Article, 0, len(rows))
	for _, row := range rows {
		if a, ok := ParseRow(row); ok {
			articles = append(articles, a)
		}
	}
	return articles
}

// ParseLanguage maps a two-letter code to a Language
func ParseLanguage(code string) Language {
	if lang, ok := languageCodes[code]; ok {
		return lang
	}
	return Other
}

// ParseCount parses a base-10 integer the lenient way spreadsheet exports
// need: leading whitespace and an optional sign are accepted and parsing
// stops at the first non-digit ("12 min" is 12). A cell without leading
// digits yields an unparsed Count. Out of range values saturate.
func ParseCount(s string) Count {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return Count{}
	}

	// Atoi clamps to the int range on ErrRange
	v, err := strconv.Atoi(s[:end])
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Count{}
	}
	return NewCount(v)
}

// ParseDate parses a date cell. The time of day, if any, is dropped.
func ParseDate(s string) Date {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t.Year(), t.Month(), t.Day())
		}
	}
	return Date{}
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return row[col]
}

// splitList splits a comma separated cell. Embedded commas cannot be escaped
// and items are not trimmed.
func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
