package sheets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pep299/article-digest/internal/article"
)

// Sheet names of the review workbook
const (
	NextSheet          = "Next"
	LogSheet           = "Log"
	SubscribersSheet   = "Subscribers"
	SubscriptionsSheet = "Subscriptions"
)

// SubscribedMarker is the value of the Subscribers opt-in column for active subscribers
const SubscribedMarker = "on"

// ErrNoHeaders is returned when the subscriptions sheet has no header row
var ErrNoHeaders = errors.New("subscriptions sheet has no header row")

// Workbook reads and writes the sheets of the review workbook
type Workbook struct {
	source Source
}

// NewWorkbook creates a Workbook on top of a Source
func NewWorkbook(source Source) *Workbook {
	return &Workbook{source: source}
}

// DailyArticleCount returns how many article rows the Next sheet holds below
// its header, counting up to the first row whose column A is empty
func (w *Workbook) DailyArticleCount(ctx context.Context) (int, error) {
	rows, err := w.source.LoadRows(ctx, NextSheet+"!A:A")
	if err != nil {
		return 0, fmt.Errorf("loading daily article count: %w", err)
	}
	return max(firstEmptyRow(rows)-2, 0), nil
}

// LoadArticleRows returns the first count article rows of the Next sheet
func (w *Workbook) LoadArticleRows(ctx context.Context, count int) ([][]string, error) {
	if count <= 0 {
		return [][]string{}, nil
	}

	rng := fmt.Sprintf("%s!A2:%s%d", NextSheet, ColumnName(article.ColumnCount), count+1)
	rows, err := w.source.LoadRows(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("loading articles: %w", err)
	}
	return rows, nil
}

// LoadArticles loads and parses the first count article rows. Rows without
// a title are skipped; the number of skipped rows is returned alongside.
func (w *Workbook) LoadArticles(ctx context.Context, count int) ([]article.Article, int, error) {
	rows, err := w.LoadArticleRows(ctx, count)
	if err != nil {
		return nil, 0, err
	}

	articles := article.ParseRows(rows)
	return articles, count - len(articles), nil
}

// LoadRecipients returns the email addresses of active subscribers
func (w *Workbook) LoadRecipients(ctx context.Context) ([]string, error) {
	rows, err := w.source.LoadRows(ctx, SubscribersSheet+"!A2:D")
	if err != nil {
		return nil, fmt.Errorf("loading recipients: %w", err)
	}

	var recipients []string
	for _, row := range rows {
		if len(row) < 4 || row[3] != SubscribedMarker || row[0] == "" {
			continue
		}
		recipients = append(recipients, row[0])
	}
	return recipients, nil
}

// LogSending appends one row per article to the Log sheet with the day of
// sending and the article's original URL
func (w *Workbook) LogSending(ctx context.Context, articles []article.Article, day time.Time) error {
	if len(articles) == 0 {
		return nil
	}

	stamp := day.Format("2006-01-02")
	rows := make([][]string, len(articles))
	for i, a := range articles {
		rows[i] = []string{stamp, a.OriginalURL}
	}

	if _, err := w.source.AppendRows(ctx, LogSheet+"!A:B", rows); err != nil {
		return fmt.Errorf("logging sending: %w", err)
	}
	return nil
}

// SubscriptionHeaders returns the header row of the Subscriptions sheet
func (w *Workbook) SubscriptionHeaders(ctx context.Context) ([]string, error) {
	rows, err := w.source.LoadRows(ctx, SubscriptionsSheet+"!1:1")
	if err != nil {
		return nil, fmt.Errorf("loading subscription headers: %w", err)
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrNoHeaders
	}
	return rows[0], nil
}

// AppendSubscription appends a subscription row and returns its row number
func (w *Workbook) AppendSubscription(ctx context.Context, row []string) (int, error) {
	rng := SubscriptionsSheet + "!A:" + ColumnName(max(len(row), 1))
	n, err := w.source.AppendRows(ctx, rng, [][]string{row})
	if err != nil {
		return 0, fmt.Errorf("appending subscription: %w", err)
	}
	return n, nil
}

// firstEmptyRow returns the 1-based index of the first row whose first cell
// is empty, or the row after the last one
func firstEmptyRow(rows [][]string) int {
	i := 0
	for i < len(rows) && len(rows[i]) > 0 && rows[i][0] != "" {
		i++
	}
	return i + 1
}

// FormatTimestamp formats a time the way the workbook expects timestamps
func FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
