package pubmed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleExport = `<?xml version="1.0" encoding="UTF-8"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation Status="MEDLINE" Owner="NLM">
      <PMID Version="1">31452104</PMID>
      <DateCompleted>
        <Year>2020</Year>
        <Month>03</Month>
        <Day>17</Day>
      </DateCompleted>
      <Article PubModel="Print">
        <Journal>
          <ISSN IssnType="Electronic">1522-1229</ISSN>
          <JournalIssue CitedMedium="Internet">
            <Volume>43</Volume>
            <Issue>4</Issue>
            <PubDate>
              <Year>2019</Year>
              <Month>Dec</Month>
            </PubDate>
          </JournalIssue>
          <Title>Advances in physiology education</Title>
          <ISOAbbreviation>Adv Physiol Educ</ISOAbbreviation>
        </Journal>
        <ArticleTitle>[A title in brackets].</ArticleTitle>
        <AuthorList CompleteYN="Y">
          <Author ValidYN="Y">
            <LastName>Groves</LastName>
            <ForeName>Mary</ForeName>
            <Initials>M</Initials>
            <AffiliationInfo>
              <Affiliation>Department of Pharmacology.</Affiliation>
            </AffiliationInfo>
            <AffiliationInfo>
              <Affiliation>School of Medicine.</Affiliation>
            </AffiliationInfo>
          </Author>
          <Author ValidYN="Y">
            <LastName>Smith</LastName>
          </Author>
        </AuthorList>
        <PublicationTypeList>
          <PublicationType UI="D016428">Journal Article</PublicationType>
          <PublicationType UI="D016454">Review</PublicationType>
        </PublicationTypeList>
      </Article>
      <MedlineJournalInfo>
        <Country>United States</Country>
        <NlmUniqueID>100887061</NlmUniqueID>
      </MedlineJournalInfo>
      <MeshHeadingList>
        <MeshHeading>
          <DescriptorName UI="D000293" MajorTopicYN="N">Adolescent</DescriptorName>
        </MeshHeading>
        <MeshHeading>
          <DescriptorName UI="D005260" MajorTopicYN="Y">Female</DescriptorName>
        </MeshHeading>
      </MeshHeadingList>
    </MedlineCitation>
  </PubmedArticle>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>12345</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate>
              <MedlineDate>2000 Jan-Feb</MedlineDate>
            </PubDate>
          </JournalIssue>
        </Journal>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

func TestParse(t *testing.T) {
	citations, err := Parse(strings.NewReader(sampleExport))
	if err != nil {
		t.Fatal(err)
	}
	if len(citations) != 2 {
		t.Fatalf("got %d citations, want 2", len(citations))
	}

	mc := citations[0].MedlineCitation
	if mc.PMID.Value != "31452104" {
		t.Errorf("pmid = %q", mc.PMID.Value)
	}
	if mc.DateCompleted == nil || mc.DateCompleted.Day != "17" {
		t.Errorf("date completed = %+v", mc.DateCompleted)
	}
	if mc.DateRevised != nil {
		t.Error("absent DateRevised must stay nil")
	}

	art := mc.Article
	if art.ArticleTitle == nil || art.ArticleTitle.Value != "[A title in brackets]." {
		t.Errorf("title = %+v", art.ArticleTitle)
	}
	if art.Journal.ISSN == nil || art.Journal.ISSN.Value != "1522-1229" || art.Journal.ISSN.Type != "Electronic" {
		t.Errorf("issn = %+v", art.Journal.ISSN)
	}
	if art.Journal.JournalIssue.CitedMedium != "Internet" {
		t.Errorf("cited medium = %q", art.Journal.JournalIssue.CitedMedium)
	}
	if art.Journal.JournalIssue.PubDate.Year != "2019" || art.Journal.JournalIssue.PubDate.Month != "Dec" {
		t.Errorf("pub date = %+v", art.Journal.JournalIssue.PubDate)
	}

	if art.AuthorList == nil || len(art.AuthorList.Authors) != 2 {
		t.Fatalf("authors = %+v", art.AuthorList)
	}
	first := art.AuthorList.Authors[0]
	if first.LastName != "Groves" || len(first.AffiliationInfo) != 2 {
		t.Errorf("first author = %+v", first)
	}
	if first.AffiliationInfo[1].Affiliation != "School of Medicine." {
		t.Errorf("second affiliation = %q", first.AffiliationInfo[1].Affiliation)
	}
	if second := art.AuthorList.Authors[1]; second.ForeName != "" || len(second.AffiliationInfo) != 0 {
		t.Errorf("second author = %+v", second)
	}

	if art.PublicationTypeList == nil || len(art.PublicationTypeList.PublicationTypes) != 2 {
		t.Fatalf("publication types = %+v", art.PublicationTypeList)
	}
	if pt := art.PublicationTypeList.PublicationTypes[1]; pt.UI != "D016454" || pt.Value != "Review" {
		t.Errorf("second publication type = %+v", pt)
	}

	if mc.MedlineJournalInfo == nil || mc.MedlineJournalInfo.NlmUniqueID != "100887061" {
		t.Errorf("journal info = %+v", mc.MedlineJournalInfo)
	}

	if mc.MeshHeadingList == nil || len(mc.MeshHeadingList.MeshHeadings) != 2 {
		t.Fatalf("mesh headings = %+v", mc.MeshHeadingList)
	}
	if d := mc.MeshHeadingList.MeshHeadings[1].DescriptorName; d.UI != "D005260" || d.MajorTopic != "Y" {
		t.Errorf("second descriptor = %+v", d)
	}

	// The sparse second record keeps its optional substructures nil.
	sparse := citations[1].MedlineCitation
	if sparse.Article.Journal.JournalIssue.PubDate.MedlineDate != "2000 Jan-Feb" {
		t.Errorf("medline date = %q", sparse.Article.Journal.JournalIssue.PubDate.MedlineDate)
	}
	if sparse.Article.AuthorList != nil || sparse.Article.PublicationTypeList != nil {
		t.Error("absent lists must stay nil")
	}
	if sparse.MedlineJournalInfo != nil || sparse.MeshHeadingList != nil {
		t.Error("absent journal info and mesh list must stay nil")
	}
}

func TestParse_Latin1Declaration(t *testing.T) {
	doc := `<?xml version="1.0" encoding="ISO-8859-1"?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation><PMID>1</PMID></MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`
	citations, err := Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	if len(citations) != 1 || citations[0].MedlineCitation.PMID.Value != "1" {
		t.Errorf("citations = %+v", citations)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse(strings.NewReader("<PubmedArticleSet>")); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pubmed25n0001.xml")
	if err := os.WriteFile(path, []byte(sampleExport), 0644); err != nil {
		t.Fatal(err)
	}
	citations, err := ParseFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(citations) != 2 {
		t.Errorf("got %d citations, want 2", len(citations))
	}
}

func TestParseFile_Missing(t *testing.T) {
	if _, err := ParseFile(filepath.Join(t.TempDir(), "absent.xml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
