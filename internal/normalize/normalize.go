package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shivam221098/bigquery/internal/pubmed"
	"github.com/shivam221098/bigquery/internal/staging"
)

// Normalizer writes parsed citations into one batch's staging store.
type Normalizer struct {
	store *staging.Store
	log   zerolog.Logger
}

// New returns a Normalizer bound to a staging store.
func New(store *staging.Store, log zerolog.Logger) *Normalizer {
	return &Normalizer{store: store, log: log}
}

// Run normalizes every citation into the store. Each record runs inside its
// own savepoint: a malformed record is rolled back, logged, and skipped
// without aborting the batch. Returns the staged and skipped counts.
func (n *Normalizer) Run(citations []pubmed.Citation) (staged, skipped int) {
	for _, c := range citations {
		err := n.store.Record(func() error {
			return n.record(c)
		})
		if err != nil {
			n.log.Error().
				Err(err).
				Str("pmid", strings.TrimSpace(c.MedlineCitation.PMID.Value)).
				Msg("skipping malformed record")
			skipped++
			continue
		}
		staged++
	}
	return staged, skipped
}

// record stages one citation into the four relations.
func (n *Normalizer) record(c pubmed.Citation) error {
	mc := c.MedlineCitation

	pmid, err := strconv.Atoi(strings.TrimSpace(mc.PMID.Value))
	if err != nil {
		return fmt.Errorf("extracting PMID: %w", err)
	}

	// MeSH headings are optional; an absent list stages nothing.
	if mc.MeshHeadingList != nil {
		for _, h := range mc.MeshHeadingList.MeshHeadings {
			err := n.store.InsertMeshHeading(staging.MeshHeadingRow{
				PMID:            pmid,
				DescriptorUID:   h.DescriptorName.UI,
				MajorDescriptor: MajorTopic(h.DescriptorName.MajorTopic),
			})
			if err != nil {
				return fmt.Errorf("staging mesh heading: %w", err)
			}
		}
	}

	dateCreated, err := JoinDate(mc.DateCompleted)
	if err != nil {
		return fmt.Errorf("date completed: %w", err)
	}
	dateRevised, err := JoinDate(mc.DateRevised)
	if err != nil {
		return fmt.Errorf("date revised: %w", err)
	}

	journal := mc.Article.Journal
	issn, issnType := ISSNPair(journal.ISSN)
	year, month := YearMonth(journal.JournalIssue.PubDate)

	if mc.MedlineJournalInfo == nil {
		return errors.New("missing MedlineJournalInfo")
	}

	err = n.store.InsertArticle(staging.ArticleRow{
		PMID:            pmid,
		ArticleTitle:    CleanTitle(mc.Article.ArticleTitle),
		DateCreated:     dateCreated,
		DateRevised:     dateRevised,
		ISSN:            issn,
		ISSNType:        issnType,
		CitedMedium:     nullable(journal.JournalIssue.CitedMedium),
		Volume:          nullable(journal.JournalIssue.Volume),
		Issue:           nullable(journal.JournalIssue.Issue),
		Year:            year,
		Month:           month,
		JournalTitle:    CleanTitle(journal.Title),
		ISOAbbreviation: nullable(journal.ISOAbbreviation),
		NlmUniqueID:     nullable(mc.MedlineJournalInfo.NlmUniqueID),
	})
	if err != nil {
		return fmt.Errorf("staging article: %w", err)
	}

	if mc.Article.PublicationTypeList == nil {
		return errors.New("missing PublicationTypeList")
	}
	for i, pt := range mc.Article.PublicationTypeList.PublicationTypes {
		err := n.store.InsertPublicationType(staging.PublicationTypeRow{
			PMID:    pmid,
			Name:    valid(pt.Value),
			UI:      valid(pt.UI),
			Ordinal: i + 1,
		})
		if err != nil {
			return fmt.Errorf("staging publication type: %w", err)
		}
	}

	for i, author := range Authors(mc.Article.AuthorList) {
		row := staging.AuthorAffiliationRow{
			PMID:          pmid,
			AuthorOrdinal: i + 1,
			Initials:      nullable(author.Initials),
			ForeName:      nullable(author.ForeName),
			LastName:      nullable(author.LastName),
		}

		if len(author.AffiliationInfo) == 0 {
			// No affiliations: exactly one row at ordinal 0, null text.
			if err := n.store.InsertAuthorAffiliation(row); err != nil {
				return fmt.Errorf("staging author: %w", err)
			}
			continue
		}

		for j, aff := range author.AffiliationInfo {
			row.AffiliationOrdinal = j + 1
			row.Affiliation = valid(aff.Affiliation)
			if err := n.store.InsertAuthorAffiliation(row); err != nil {
				return fmt.Errorf("staging author affiliation: %w", err)
			}
		}
	}

	return nil
}
