// Package history appends batch results to the append-only execution
// ledger kept next to the binary.
package history

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/shivam221098/bigquery/internal/pipeline"
)

// FileName is the ledger's default file name.
const FileName = "execution_history.csv"

var header = []string{
	"xml_file_name", "conversion_type", "task_type",
	"converted_file_name", "time_taken", "upload_time", "run_date",
}

// Append writes one row per result to the ledger at path, creating it with
// a header row first if it does not exist yet.
func Append(path string, results []pipeline.Result) error {
	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening execution history: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("writing history header: %w", err)
		}
	}
	for _, res := range results {
		if err := w.Write(row(res)); err != nil {
			return fmt.Errorf("writing history row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing execution history: %w", err)
	}
	return nil
}

func row(res pipeline.Result) []string {
	return []string{
		res.XMLFileName,
		res.ConversionType,
		res.TaskType,
		res.OutputName,
		strconv.FormatFloat(res.ElapsedSecs, 'f', 2, 64),
		strconv.FormatFloat(res.UploadSecs, 'f', 2, 64),
		res.RunDate.Format("01/02/2006, 15:04:05"),
	}
}
