package providers

import (
	"context"

	"github.com/matzehuels/libman/pkg/library"
	"github.com/matzehuels/libman/pkg/naming"
)

// maxNameCompletions bounds the search hits offered as name completions.
const maxNameCompletions = 50

// VersionedCompletionSet implements Catalog.CompletionSet for catalogs
// using the "name@version" scheme. With the caret at or before the version
// separator it offers search hits for the name; past the separator it
// offers every known version of the name, newest first, followed by
// "latest". Insertion texts always replace exactly the returned span: the
// whole input for names, the text after the separator for versions.
func VersionedCompletionSet(ctx context.Context, cat library.Catalog, libraryIDStart string, caret int) (library.CompletionSet, error) {
	caret = min(max(caret, 0), len(libraryIDStart))
	sep := naming.VersionSeparator(libraryIDStart)

	if sep < 0 || caret <= sep {
		term := libraryIDStart
		if sep >= 0 {
			term = libraryIDStart[:sep]
		}
		groups, err := cat.Search(ctx, term, maxNameCompletions)
		if err != nil {
			return library.CompletionSet{}, err
		}
		set := library.CompletionSet{Start: 0, Length: len(libraryIDStart), Type: library.CompletionName}
		for _, g := range groups {
			insert := g.DisplayName
			if g.LatestVersion != "" {
				insert += "@" + g.LatestVersion
			}
			set.Completions = append(set.Completions, library.CompletionItem{
				DisplayText:   g.DisplayName,
				InsertionText: insert,
				Description:   g.Description,
			})
		}
		return set, nil
	}

	versions, err := cat.Versions(ctx, libraryIDStart[:sep])
	if err != nil {
		return library.CompletionSet{}, err
	}
	set := library.CompletionSet{
		Start:  sep + 1,
		Length: len(libraryIDStart) - sep - 1,
		Type:   library.CompletionVersion,
	}
	for _, v := range versions {
		set.Completions = append(set.Completions, library.CompletionItem{
			DisplayText:   v,
			InsertionText: v,
		})
	}
	set.Completions = append(set.Completions, library.CompletionItem{
		DisplayText:   library.LatestVersionTag,
		InsertionText: library.LatestVersionTag,
	})
	return set, nil
}
