// Package sink materializes a batch's staged relations as flat result sets
// and delivers them to their destination: delimited files on disk or tables
// in the BigQuery warehouse.
package sink

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shivam221098/bigquery/internal/staging"
)

// meshQuery flattens the MeSH relation.
const meshQuery = `
	SELECT pmid, descriptor_uid, major_descriptor
	FROM pm_ext_mesh_headings`

// fullQuery denormalizes articles against authors and publication types.
const fullQuery = `
	SELECT pmid, article_title, date_created, affiliation,
		affiliation_ordinality, author_ordinality, initials, fore_name,
		last_name, date_revised, issn, issn_type, cited_medium, volume,
		issue, year, month, title, iso_abbreviation, nlm_uid,
		publication_type, publication_type_ui, publication_type_ordinality
	FROM pm_ext_articles_revised_journals
	LEFT JOIN pm_ext_authors_affiliations USING (pmid)
	LEFT JOIN pm_ext_publication_types USING (pmid)`

// ResultSet is one flattened export, row-numbered from 1 and tagged with
// the batch's source file name.
type ResultSet struct {
	Name    string // output name, e.g. "pubmed25n0001_mesh"
	Source  string // source file the rows came from
	Columns []string
	Rows    [][]sql.NullString
}

// BuildMeshSet reads the MeSH result set out of a staging store.
func BuildMeshSet(st *staging.Store, source, stem string) (*ResultSet, error) {
	return build(st, meshQuery, source, stem+"_mesh")
}

// BuildFullSet reads the full citation result set out of a staging store.
func BuildFullSet(st *staging.Store, source, stem string) (*ResultSet, error) {
	return build(st, fullQuery, source, stem)
}

func build(st *staging.Store, query, source, name string) (*ResultSet, error) {
	cols, rows, err := st.Select(query)
	if err != nil {
		return nil, fmt.Errorf("building %s result set: %w", name, err)
	}

	rs := &ResultSet{
		Name:    name,
		Source:  source,
		Columns: append([]string{"row_id", "filename"}, cols...),
	}
	for i, row := range rows {
		tagged := make([]sql.NullString, 0, len(row)+2)
		tagged = append(tagged,
			sql.NullString{String: strconv.Itoa(i + 1), Valid: true},
			sql.NullString{String: source, Valid: true})
		tagged = append(tagged, row...)
		rs.Rows = append(rs.Rows, tagged)
	}
	return rs, nil
}

// Encode writes the result set as CSV, header first, nulls as empty cells.
func (rs *ResultSet) Encode(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(rs.Columns); err != nil {
		return err
	}

	record := make([]string, len(rs.Columns))
	for _, row := range rs.Rows {
		for i, v := range row {
			if v.Valid {
				record[i] = v.String
			} else {
				record[i] = ""
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
