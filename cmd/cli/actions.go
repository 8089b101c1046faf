package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/pep299/article-digest/internal/application"
	"github.com/pep299/article-digest/internal/article"
	"github.com/pep299/article-digest/internal/config"
	"github.com/pep299/article-digest/internal/digest"
	"github.com/pep299/article-digest/internal/sheets"
)

func sendAction(c *cli.Context) error {
	app, err := loadApplication(c.Context)
	if err != nil {
		return err
	}
	defer app.Close()

	result, err := app.Server.Send(c.Context, c.String("audience"))
	if err != nil {
		return err
	}

	fmt.Printf("Sent: %t, articles: %d, skipped: %d, recipients: %d, logged: %t\n",
		result.Sent, result.Articles, result.Skipped, result.Recipients, result.Logged)
	return nil
}

func previewAction(c *cli.Context) error {
	app, err := loadApplication(c.Context)
	if err != nil {
		return err
	}
	defer app.Close()

	html, _, err := app.Reminder.Preview(c.Context)
	if err != nil {
		return err
	}
	return writeOutput(c.String("out"), html)
}

func renderAction(c *cli.Context) error {
	f, err := os.Open(c.String("csv"))
	if err != nil {
		return fmt.Errorf("opening CSV: %w", err)
	}
	defer f.Close()

	html, err := renderCSV(c.Context, f)
	if err != nil {
		return err
	}
	return writeOutput(c.String("out"), html)
}

func parseAction(c *cli.Context) error {
	f, err := os.Open(c.String("csv"))
	if err != nil {
		return fmt.Errorf("opening CSV: %w", err)
	}
	defer f.Close()

	return parseCSV(c.Context, f, c.App.Writer)
}

func loadApplication(ctx context.Context) (*application.Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return application.New(ctx, cfg)
}

// loadNextSheet reads a CSV export of the Next sheet and returns the rows
// queued for today, the way the scheduled sending picks them
func loadNextSheet(ctx context.Context, r io.Reader) ([][]string, error) {
	grid := sheets.NewGrid()
	if err := grid.ReadCSV(sheets.NextSheet, r); err != nil {
		return nil, err
	}

	workbook := sheets.NewWorkbook(grid)
	count, err := workbook.DailyArticleCount(ctx)
	if err != nil {
		return nil, err
	}
	return workbook.LoadArticleRows(ctx, count)
}

func renderCSV(ctx context.Context, r io.Reader) (string, error) {
	rows, err := loadNextSheet(ctx, r)
	if err != nil {
		return "", err
	}
	return digest.Render(article.ParseRows(rows)), nil
}

type parsedArticle struct {
	Row             int      `yaml:"row"`
	Title           string   `yaml:"title"`
	URL             string   `yaml:"url"`
	OriginalURL     string   `yaml:"original_url"`
	Dead            bool     `yaml:"dead,omitempty"`
	ReadDate        string   `yaml:"read_date"`
	Tags            []string `yaml:"tags,flow"`
	CharacterCount  string   `yaml:"character_count"`
	WordCount       string   `yaml:"word_count"`
	Language        string   `yaml:"language"`
	Authors         []string `yaml:"authors,flow"`
	PublicationDate string   `yaml:"publication_date,omitempty"`
	Minutes         string   `yaml:"minutes"`
	Rating          string   `yaml:"rating"`
	Review          string   `yaml:"review"`
	Category        string   `yaml:"category"`
}

type parseReport struct {
	Articles []parsedArticle `yaml:"articles"`
	Rejected []int           `yaml:"rejected_rows,flow"`
}

func parseCSV(ctx context.Context, r io.Reader, w io.Writer) error {
	rows, err := loadNextSheet(ctx, r)
	if err != nil {
		return err
	}

	report := parseReport{Articles: []parsedArticle{}, Rejected: []int{}}
	for i, row := range rows {
		// Row 1 is the header
		rowNumber := i + 2

		a, ok := article.ParseRow(row)
		if !ok {
			report.Rejected = append(report.Rejected, rowNumber)
			continue
		}

		parsed := parsedArticle{
			Row:            rowNumber,
			Title:          a.Title,
			URL:            a.URL,
			OriginalURL:    a.OriginalURL,
			Dead:           a.IsURLDead,
			ReadDate:       a.ReadDate.String(),
			Tags:           a.Tags,
			CharacterCount: a.CharacterCount.String(),
			WordCount:      a.WordCount.String(),
			Language:       string(a.Language),
			Authors:        a.Authors,
			Minutes:        a.Minutes.String(),
			Rating:         a.Rating.String(),
			Review:         a.Review,
			Category:       a.Category,
		}
		if a.PublicationDate != nil {
			parsed.PublicationDate = a.PublicationDate.String()
		}
		report.Articles = append(report.Articles, parsed)
	}

	out, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	_, err = w.Write(out)
	return err
}

func writeOutput(path, html string) error {
	if path == "" {
		_, err := io.WriteString(os.Stdout, html)
		return err
	}
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
