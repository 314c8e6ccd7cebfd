// Package pubmed parses PubMed efetch XML exports into citation records.
//
// Only the substructures the staging pipeline consumes are modeled. Every
// optional substructure is a pointer so downstream extractors can tell
// "absent" apart from "present but empty".
package pubmed

import "encoding/xml"

// ArticleSet is the root element of a PubMed export file.
type ArticleSet struct {
	XMLName  xml.Name   `xml:"PubmedArticleSet"`
	Articles []Citation `xml:"PubmedArticle"`
}

// Citation is one PubmedArticle element.
type Citation struct {
	MedlineCitation MedlineCitation `xml:"MedlineCitation"`
}

// MedlineCitation contains the core bibliographic information.
type MedlineCitation struct {
	PMID               PMID         `xml:"PMID"`
	DateCompleted      *Date        `xml:"DateCompleted"`
	DateRevised        *Date        `xml:"DateRevised"`
	Article            Article      `xml:"Article"`
	MedlineJournalInfo *JournalInfo `xml:"MedlineJournalInfo"`
	MeshHeadingList    *MeshList    `xml:"MeshHeadingList"`
}

// PMID is the PubMed identifier.
type PMID struct {
	Value string `xml:",chardata"`
}

// Date is a structured day/month/year date.
type Date struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

// Article holds the article-level metadata.
type Article struct {
	Journal             Journal      `xml:"Journal"`
	ArticleTitle        *Text        `xml:"ArticleTitle"`
	AuthorList          *AuthorList  `xml:"AuthorList"`
	PublicationTypeList *PubTypeList `xml:"PublicationTypeList"`
}

// Text is an element whose body may carry inline markup; the decoder
// collapses it to its character data.
type Text struct {
	Value string `xml:",chardata"`
}

// Journal contains journal metadata.
type Journal struct {
	ISSN            *ISSN        `xml:"ISSN"`
	JournalIssue    JournalIssue `xml:"JournalIssue"`
	Title           *Text        `xml:"Title"`
	ISOAbbreviation string       `xml:"ISOAbbreviation"`
}

// ISSN carries the ISSN value and its type attribute.
type ISSN struct {
	Type  string `xml:"IssnType,attr"`
	Value string `xml:",chardata"`
}

// JournalIssue contains volume, issue, and the publication date.
type JournalIssue struct {
	CitedMedium string  `xml:"CitedMedium,attr"`
	Volume      string  `xml:"Volume"`
	Issue       string  `xml:"Issue"`
	PubDate     PubDate `xml:"PubDate"`
}

// PubDate is either a structured Year/Month or a free-text MedlineDate.
type PubDate struct {
	Year        string `xml:"Year"`
	Month       string `xml:"Month"`
	MedlineDate string `xml:"MedlineDate"`
}

// JournalInfo carries the NLM journal registry entry.
type JournalInfo struct {
	NlmUniqueID string `xml:"NlmUniqueID"`
}

// AuthorList contains the authors in source order.
type AuthorList struct {
	Authors []Author `xml:"Author"`
}

// Author is one author with optional affiliations.
type Author struct {
	LastName        string        `xml:"LastName"`
	ForeName        string        `xml:"ForeName"`
	Initials        string        `xml:"Initials"`
	AffiliationInfo []Affiliation `xml:"AffiliationInfo"`
}

// Affiliation is one affiliation entry for an author.
type Affiliation struct {
	Affiliation string `xml:"Affiliation"`
}

// PubTypeList contains the publication types in source order.
type PubTypeList struct {
	PublicationTypes []PubType `xml:"PublicationType"`
}

// PubType is one publication type with its controlled-vocabulary UI.
type PubType struct {
	UI    string `xml:"UI,attr"`
	Value string `xml:",chardata"`
}

// MeshList contains the MeSH headings assigned to a citation.
type MeshList struct {
	MeshHeadings []MeshHeading `xml:"MeshHeading"`
}

// MeshHeading is one MeSH descriptor entry.
type MeshHeading struct {
	DescriptorName DescriptorName `xml:"DescriptorName"`
}

// DescriptorName carries the descriptor UI and the major-topic flag.
type DescriptorName struct {
	UI         string `xml:"UI,attr"`
	MajorTopic string `xml:"MajorTopicYN,attr"`
	Value      string `xml:",chardata"`
}
