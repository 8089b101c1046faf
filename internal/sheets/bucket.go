package sheets

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// BucketSource keeps each sheet of a workbook as a CSV object in a Cloud
// Storage bucket, named <prefix><sheet>.csv
type BucketSource struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewBucketSource creates a bucket-backed Source
func NewBucketSource(client *storage.Client, bucket, prefix string) *BucketSource {
	return &BucketSource{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// ObjectName returns the object that holds a sheet
func (b *BucketSource) ObjectName(sheet string) string {
	return b.prefix + sheet + ".csv"
}

// LoadRows implements Source
func (b *BucketSource) LoadRows(ctx context.Context, rangeA1 string) ([][]string, error) {
	r, err := ParseRange(rangeA1)
	if err != nil {
		return nil, err
	}

	grid, _, err := b.readSheet(ctx, r.Sheet)
	if err != nil {
		return nil, err
	}
	return grid.LoadRows(ctx, rangeA1)
}

// AppendRows implements Source. The object is rewritten only if nobody
// replaced it since it was read.
func (b *BucketSource) AppendRows(ctx context.Context, rangeA1 string, rows [][]string) (int, error) {
	r, err := ParseRange(rangeA1)
	if err != nil {
		return 0, err
	}

	grid, generation, err := b.readSheet(ctx, r.Sheet)
	if err != nil {
		return 0, err
	}

	first, err := grid.AppendRows(ctx, rangeA1, rows)
	if err != nil {
		return 0, err
	}

	obj := b.client.Bucket(b.bucket).Object(b.ObjectName(r.Sheet))
	if generation == 0 {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	} else {
		obj = obj.If(storage.Conditions{GenerationMatch: generation})
	}

	w := obj.NewWriter(ctx)
	w.ContentType = "text/csv; charset=utf-8"
	if err := grid.WriteCSV(r.Sheet, w); err != nil {
		w.Close()
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("writing sheet %s: %w", r.Sheet, err)
	}

	return first, nil
}

// SheetNames lists the sheets stored under the prefix
func (b *BucketSource) SheetNames(ctx context.Context) ([]string, error) {
	it := b.client.Bucket(b.bucket).Objects(ctx, &storage.Query{Prefix: b.prefix})

	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing sheets: %w", err)
		}

		name := strings.TrimPrefix(attrs.Name, b.prefix)
		if path.Ext(name) != ".csv" || strings.Contains(name, "/") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".csv"))
	}
	return names, nil
}

// readSheet loads one sheet into a grid. A missing object is an empty sheet
// with generation 0.
func (b *BucketSource) readSheet(ctx context.Context, sheet string) (*Grid, int64, error) {
	grid := NewGrid()

	reader, err := b.client.Bucket(b.bucket).Object(b.ObjectName(sheet)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		grid.SetSheet(sheet, nil)
		return grid, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("opening sheet %s: %w", sheet, err)
	}
	defer reader.Close()

	if err := grid.ReadCSV(sheet, reader); err != nil {
		return nil, 0, err
	}
	return grid, reader.Attrs.Generation, nil
}
