package manifest

import (
	"strings"

	"github.com/matzehuels/libman/pkg/library"
)

// Resolve finds the entries a user-typed term refers to: entries whose full
// library id equals the term, followed by entries whose name equals it.
// Comparisons ignore case. A non-empty providerID restricts the candidates
// to that provider.
//
// More than one result means the term is ambiguous and the caller should
// ask which entry was meant.
func (m *Manifest) Resolve(term, providerID string) []library.InstallationState {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	var exact, byName []library.InstallationState
	for _, l := range m.libraries {
		if providerID != "" && !strings.EqualFold(l.ProviderID, providerID) {
			continue
		}
		switch {
		case strings.EqualFold(m.LibraryID(l), term):
			exact = append(exact, l.Clone())
		case strings.EqualFold(l.Name, term):
			byName = append(byName, l.Clone())
		}
	}
	return append(exact, byName...)
}
