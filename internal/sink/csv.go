package sink

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteCSV writes a result set into the output directory's CSV subfolder,
// creating it if needed, and returns the written file's path.
func WriteCSV(rs *ResultSet, outDir string) (string, error) {
	dir := filepath.Join(outDir, "CSV")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, rs.Name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}

	if err := rs.Encode(f); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}

	return path, nil
}
