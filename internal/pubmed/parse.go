package pubmed

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// Parse decodes a PubMed export document and returns its citations.
func Parse(r io.Reader) ([]Citation, error) {
	var set ArticleSet
	dec := xml.NewDecoder(r)
	// PubMed exports occasionally carry Latin-1 declarations; pass
	// non-UTF-8 byte streams through unchanged.
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	if err := dec.Decode(&set); err != nil {
		return nil, fmt.Errorf("decoding PubMed XML: %w", err)
	}
	return set.Articles, nil
}

// ParseFile reads and decodes a PubMed export file.
func ParseFile(path string) ([]Citation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	citations, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return citations, nil
}
