package history

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shivam221098/bigquery/internal/pipeline"
)

func readLedger(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestAppend_CreatesLedgerWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	res := pipeline.Result{
		XMLFileName:    "pubmed25n0001.xml",
		ConversionType: "csv",
		TaskType:       "memory",
		OutputName:     "pubmed25n0001_mesh pubmed25n0001",
		ElapsedSecs:    12.5,
		UploadSecs:     0,
		RunDate:        time.Date(2026, 8, 30, 14, 3, 7, 0, time.UTC),
	}
	if err := Append(path, []pipeline.Result{res}); err != nil {
		t.Fatal(err)
	}

	rows := readLedger(t, path)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want header plus one", len(rows))
	}
	wantHeader := []string{
		"xml_file_name", "conversion_type", "task_type",
		"converted_file_name", "time_taken", "upload_time", "run_date",
	}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}

	got := rows[1]
	want := []string{
		"pubmed25n0001.xml", "csv", "memory",
		"pubmed25n0001_mesh pubmed25n0001", "12.50", "0.00", "08/30/2026, 14:03:07",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAppend_SecondRunAppendsWithoutSecondHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	first := pipeline.Result{XMLFileName: "a.xml", ConversionType: "csv", TaskType: "memory", RunDate: time.Now()}
	second := pipeline.Result{XMLFileName: "b.xml", ConversionType: "BigQuery", TaskType: "disk", UploadSecs: 3.25, RunDate: time.Now()}

	if err := Append(path, []pipeline.Result{first}); err != nil {
		t.Fatal(err)
	}
	if err := Append(path, []pipeline.Result{second}); err != nil {
		t.Fatal(err)
	}

	rows := readLedger(t, path)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header plus two", len(rows))
	}
	if rows[1][0] != "a.xml" || rows[2][0] != "b.xml" {
		t.Errorf("rows out of order: %q, %q", rows[1][0], rows[2][0])
	}
	if rows[2][5] != "3.25" {
		t.Errorf("upload_time = %q", rows[2][5])
	}
}

func TestAppend_NoResultsStillCreatesHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := Append(path, nil); err != nil {
		t.Fatal(err)
	}
	rows := readLedger(t, path)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want header only", len(rows))
	}
}
