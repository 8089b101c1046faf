package article

import (
	"strconv"
	"time"
)

// UncategorizedCategory is used when a row carries no category
const UncategorizedCategory = "(uncategorized)"

// DeadLinkPrefix marks a URL cell whose link no longer resolves
const DeadLinkPrefix = "DELETED - "

// Language is the language an article was written in
type Language string

const (
	English   Language = "en"
	Hungarian Language = "hu"
	Other     Language = "other"
)

// Article represents one reviewed article read from the review log
type Article struct {
	URL             string
	OriginalURL     string
	IsURLDead       bool
	ReadDate        Date
	Title           string
	Tags            []string
	CharacterCount  Count
	WordCount       Count
	Language        Language
	Authors         []string
	PublicationDate *Date
	Minutes         Count
	Rating          Count
	Review          string
	Category        string
}

// HasAuthors reports whether the article has a non-empty first author
func (a Article) HasAuthors() bool {
	return len(a.Authors) > 0 && a.Authors[0] != ""
}

// Count is an integer cell value that may have failed to parse.
// The zero value is an unparsed count.
type Count struct {
	Value int
	Valid bool
}

// NewCount returns a parsed count
func NewCount(v int) Count {
	return Count{Value: v, Valid: true}
}

// IsZero reports whether the count is unparsed or zero
func (c Count) IsZero() bool {
	return !c.Valid || c.Value == 0
}

func (c Count) String() string {
	if !c.Valid {
		return "NaN"
	}
	return strconv.Itoa(c.Value)
}

// Date is a calendar date read from a cell. Time of day is always midnight UTC.
type Date struct {
	Time  time.Time
	Valid bool
}

// NewDate returns a valid date for the given calendar day
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}

// String returns the date in YYYY-MM-DD form, or "Invalid Date" for a cell
// that could not be parsed
func (d Date) String() string {
	if !d.Valid {
		return "Invalid Date"
	}
	return d.Time.Format("2006-01-02")
}
