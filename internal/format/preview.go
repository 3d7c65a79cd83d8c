package format

import (
	"fmt"
	"io"

	"github.com/stahnma/gh-search/internal/record"
)

// Preview prints the first n records for a quick look at the results.
func Preview(w io.Writer, recs record.Collection, n int, slackMode bool) error {
	return WriteFenced(w, slackMode, func(w io.Writer) error {
		for i, r := range recs.Truncate(n) {
			repo := r.Repo()
			desc := repo.GetDescription()
			if desc == "" {
				desc = "No description"
			}
			lang := repo.GetLanguage()
			if lang == "" {
				lang = "Unknown"
			}
			if _, err := fmt.Fprintf(w, "\n%d. %s (⭐ %d)\n  %s\n  Language: %s\n  URL: %s\n",
				i+1, repo.GetName(), repo.GetStargazersCount(), desc, lang, repo.GetHTMLURL()); err != nil {
				return err
			}
		}
		return nil
	})
}
