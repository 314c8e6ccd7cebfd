// Package normalize flattens parsed PubMed citations into the four staged
// relations. All tolerance for the input's irregular shapes lives in the
// extractors here; call sites never branch on shape.
package normalize

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/shivam221098/bigquery/internal/pubmed"
)

// errIncompleteDate marks a date element missing one of its components.
// There is no partial-date representation, so the record is skipped.
var errIncompleteDate = errors.New("incomplete date element")

// JoinDate joins a structured date as "D/M/Y". An absent element is null;
// a present element with any missing component is an error.
func JoinDate(d *pubmed.Date) (sql.NullString, error) {
	if d == nil {
		return sql.NullString{}, nil
	}
	if d.Day == "" || d.Month == "" || d.Year == "" {
		return sql.NullString{}, errIncompleteDate
	}
	return valid(d.Day + "/" + d.Month + "/" + d.Year), nil
}

// YearMonth resolves a publication date to (year, month). A free-text
// MedlineDate takes precedence over the structured fields: two tokens are
// (year, month), one token is (year, null), anything else is (null, null).
func YearMonth(pd pubmed.PubDate) (sql.NullString, sql.NullString) {
	if pd.MedlineDate != "" {
		switch tokens := strings.Fields(pd.MedlineDate); len(tokens) {
		case 1:
			return valid(tokens[0]), sql.NullString{}
		case 2:
			return valid(tokens[0]), valid(tokens[1])
		default:
			return sql.NullString{}, sql.NullString{}
		}
	}
	return nullable(pd.Year), nullable(pd.Month)
}

// ISSNPair returns the ISSN value and its type, or (null, null) when absent.
func ISSNPair(i *pubmed.ISSN) (sql.NullString, sql.NullString) {
	if i == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return valid(i.Value), valid(i.Type)
}

// CleanTitle normalizes a title element: absent is null, otherwise exactly
// one leading "[" and one trailing "]" are stripped. Repeated brackets stay.
func CleanTitle(t *pubmed.Text) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	s := strings.TrimPrefix(t.Value, "[")
	s = strings.TrimSuffix(s, "]")
	return valid(s)
}

// Authors returns the author list in source order. A wholly absent list
// yields a single placeholder author with every field empty, so each staged
// article keeps at least one author row.
func Authors(l *pubmed.AuthorList) []pubmed.Author {
	if l == nil || len(l.Authors) == 0 {
		return []pubmed.Author{{}}
	}
	return l.Authors
}

// MajorTopic reports whether a MajorTopicYN attribute marks a major topic.
func MajorTopic(yn string) bool {
	return strings.EqualFold(yn, "y")
}

// valid wraps a string as a non-null value.
func valid(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

// nullable treats the empty string as null.
func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return valid(s)
}
