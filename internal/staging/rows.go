package staging

import "database/sql"

// ArticleRow is one row of pm_ext_articles_revised_journals.
type ArticleRow struct {
	PMID            int
	ArticleTitle    sql.NullString
	DateCreated     sql.NullString
	DateRevised     sql.NullString
	ISSN            sql.NullString
	ISSNType        sql.NullString
	CitedMedium     sql.NullString
	Volume          sql.NullString
	Issue           sql.NullString
	Year            sql.NullString
	Month           sql.NullString
	JournalTitle    sql.NullString
	ISOAbbreviation sql.NullString
	NlmUniqueID     sql.NullString
}

// MeshHeadingRow is one row of pm_ext_mesh_headings.
type MeshHeadingRow struct {
	PMID            int
	DescriptorUID   string
	MajorDescriptor bool
}

// PublicationTypeRow is one row of pm_ext_publication_types.
type PublicationTypeRow struct {
	PMID    int
	Name    sql.NullString
	UI      sql.NullString
	Ordinal int
}

// AuthorAffiliationRow is one row of pm_ext_authors_affiliations. An author
// with no affiliation is stored once with AffiliationOrdinal 0 and a null
// Affiliation.
type AuthorAffiliationRow struct {
	PMID               int
	AuthorOrdinal      int
	Initials           sql.NullString
	ForeName           sql.NullString
	LastName           sql.NullString
	AffiliationOrdinal int
	Affiliation        sql.NullString
}

// Every insert uses INSERT OR IGNORE: a row that collides with an existing
// key is an expected no-op (first write wins), never an error.

// InsertArticle stages one article row.
func (s *Store) InsertArticle(r ArticleRow) error {
	return s.exec(`
		INSERT OR IGNORE INTO pm_ext_articles_revised_journals (
			pmid, article_title, date_created, date_revised,
			issn, issn_type, cited_medium, volume, issue,
			year, month, title, iso_abbreviation, nlm_uid
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.PMID, r.ArticleTitle, r.DateCreated, r.DateRevised,
		r.ISSN, r.ISSNType, r.CitedMedium, r.Volume, r.Issue,
		r.Year, r.Month, r.JournalTitle, r.ISOAbbreviation, r.NlmUniqueID)
}

// InsertMeshHeading stages one MeSH heading row.
func (s *Store) InsertMeshHeading(r MeshHeadingRow) error {
	return s.exec(`
		INSERT OR IGNORE INTO pm_ext_mesh_headings (pmid, descriptor_uid, major_descriptor)
		VALUES (?, ?, ?)
	`, r.PMID, r.DescriptorUID, r.MajorDescriptor)
}

// InsertPublicationType stages one publication type row.
func (s *Store) InsertPublicationType(r PublicationTypeRow) error {
	return s.exec(`
		INSERT OR IGNORE INTO pm_ext_publication_types (
			pmid, publication_type, publication_type_ui, publication_type_ordinality
		) VALUES (?, ?, ?, ?)
	`, r.PMID, r.Name, r.UI, r.Ordinal)
}

// InsertAuthorAffiliation stages one author/affiliation row.
func (s *Store) InsertAuthorAffiliation(r AuthorAffiliationRow) error {
	return s.exec(`
		INSERT OR IGNORE INTO pm_ext_authors_affiliations (
			pmid, author_ordinality, initials, fore_name, last_name,
			affiliation_ordinality, affiliation
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.PMID, r.AuthorOrdinal, r.Initials, r.ForeName, r.LastName,
		r.AffiliationOrdinal, r.Affiliation)
}
