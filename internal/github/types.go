package github

import "github.com/stahnma/gh-search/internal/record"

// Page is one batch of search results.
type Page struct {
	Number  int
	Records record.Collection
}

// Empty reports whether the page carried no items, which ends pagination.
func (p Page) Empty() bool {
	return len(p.Records) == 0
}
