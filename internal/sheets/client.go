package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Client reads and appends spreadsheet ranges through the Google Sheets API
type Client struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewClient creates a Sheets client. An empty credentials file falls back to
// application default credentials.
func NewClient(ctx context.Context, spreadsheetID, credentialsFile string, opts ...option.ClientOption) (*Client, error) {
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	opts = append(opts, option.WithScopes(sheets.SpreadsheetsScope))

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &Client{
		service:       service,
		spreadsheetID: spreadsheetID,
	}, nil
}

// LoadRows implements Source
func (c *Client) LoadRows(ctx context.Context, rangeA1 string) ([][]string, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, rangeA1).
		ValueRenderOption("FORMATTED_VALUE").
		DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("loading range %s: %w", rangeA1, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, values := range resp.Values {
		rows[i] = make([]string, len(values))
		for j, v := range values {
			rows[i][j] = fmt.Sprint(v)
		}
	}
	return rows, nil
}

// AppendRows implements Source
func (c *Client) AppendRows(ctx context.Context, rangeA1 string, rows [][]string) (int, error) {
	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, v := range row {
			values[i][j] = v
		}
	}

	resp, err := c.service.Spreadsheets.Values.Append(c.spreadsheetID, rangeA1, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return 0, fmt.Errorf("appending to range %s: %w", rangeA1, err)
	}

	if resp.Updates == nil {
		return 0, fmt.Errorf("appending to range %s: response has no updated range", rangeA1)
	}
	updated, err := ParseRange(resp.Updates.UpdatedRange)
	if err != nil {
		return 0, fmt.Errorf("reading updated range: %w", err)
	}
	return updated.StartRow, nil
}
