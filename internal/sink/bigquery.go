package sink

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
)

// Uploader delivers one result set to a warehouse table. When replace is
// true the destination table is truncated first, otherwise rows append.
type Uploader interface {
	Upload(ctx context.Context, rs *ResultSet, table string, replace bool) (time.Duration, error)
}

// Target resolves the destination table for a result set and whether the
// load should replace the table. A configured fixed table wins over the
// batch-derived name and always forces append: concurrent batches sharing
// one table must never truncate each other.
func Target(stem, suffix, fixedTable, uploadType string) (string, bool) {
	if fixedTable != "" {
		return fixedTable + suffix, false
	}
	return stem + suffix, uploadType == "replace"
}

// BigQueryUploader loads result sets into a BigQuery dataset.
type BigQueryUploader struct {
	client  *bigquery.Client
	dataset string
}

// NewBigQueryUploader creates an uploader for the given project and dataset.
// Credentials come from the environment (application default credentials).
func NewBigQueryUploader(ctx context.Context, projectID, dataset string) (*BigQueryUploader, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating BigQuery client: %w", err)
	}
	return &BigQueryUploader{client: client, dataset: dataset}, nil
}

// Upload runs a CSV load job for the result set and returns how long the
// load took. No timeout is applied; a stalled load blocks its batch.
func (u *BigQueryUploader) Upload(ctx context.Context, rs *ResultSet, table string, replace bool) (time.Duration, error) {
	start := time.Now()

	var buf bytes.Buffer
	if err := rs.Encode(&buf); err != nil {
		return 0, fmt.Errorf("encoding %s for upload: %w", rs.Name, err)
	}

	src := bigquery.NewReaderSource(&buf)
	src.SourceFormat = bigquery.CSV
	src.SkipLeadingRows = 1
	src.AutoDetect = true

	loader := u.client.Dataset(u.dataset).Table(table).LoaderFrom(src)
	loader.CreateDisposition = bigquery.CreateIfNeeded
	if replace {
		loader.WriteDisposition = bigquery.WriteTruncate
	} else {
		loader.WriteDisposition = bigquery.WriteAppend
	}

	job, err := loader.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("starting load job for %s: %w", table, err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("waiting for load job for %s: %w", table, err)
	}
	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("load job for %s: %w", table, err)
	}

	return time.Since(start), nil
}

// Close releases the underlying client.
func (u *BigQueryUploader) Close() error {
	return u.client.Close()
}
