package atlassian

import (
	"fmt"
	"strings"

	"github.com/ternarybob/ticketctx/internal/common"
)

// Fragment is caller-supplied text destined for a CQL string literal.
// It must go through Quoted before interpolation.
type Fragment string

var cqlEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// Quoted renders the fragment as a double-quoted CQL literal with backslashes
// and quotes escaped.
func (f Fragment) Quoted() string {
	return `"` + cqlEscaper.Replace(string(f)) + `"`
}

// BuildSearchFilter builds the site search filter used for page searches:
//
//	siteSearch ~ "<term>" AND type = "page" [AND id NOT IN (<id>, ...)]
//
// Exclusion ids must be numeric content ids.
func BuildSearchFilter(term Fragment, excludeIDs []string) (string, error) {
	cql := fmt.Sprintf(`siteSearch ~ %s AND type = "page"`, term.Quoted())

	if len(excludeIDs) == 0 {
		return cql, nil
	}

	for _, id := range excludeIDs {
		if !isNumericID(id) {
			return "", common.Errorf(common.KindValidation, "cql.build", "exclude id %q is not a numeric content id", id)
		}
	}

	return cql + fmt.Sprintf(" AND id NOT IN (%s)", strings.Join(excludeIDs, ", ")), nil
}

// BuildTextFilter builds the full-text filter used for ticket page lookup:
//
//	text ~ "<term>" AND type = "page"
func BuildTextFilter(term Fragment) string {
	return fmt.Sprintf(`text ~ %s AND type = "page"`, term.Quoted())
}

func isNumericID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
