package catalog

import (
	"strings"

	"github.com/jwalitptl/clinic-api/internal/model"
)

// Filter returns the medicines whose name or category contains query,
// ignoring case. An empty query returns catalog as is.
func Filter(catalog []model.Medicine, query string) []model.Medicine {
	if query == "" {
		return catalog
	}

	q := strings.ToLower(query)
	out := make([]model.Medicine, 0, len(catalog))
	for _, m := range catalog {
		if strings.Contains(strings.ToLower(m.Name), q) ||
			strings.Contains(strings.ToLower(m.Category), q) {
			out = append(out, m)
		}
	}
	return out
}
