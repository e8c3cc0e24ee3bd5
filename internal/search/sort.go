package search

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/antti/craftbook/internal/catalog"
	"github.com/antti/craftbook/internal/fuzzy"
)

// ItemSort selects how items are ordered.
type ItemSort string

const (
	SortName   ItemSort = "name"   // match rank against the query
	SortAZ     ItemSort = "az"     // alphabetical
	SortZA     ItemSort = "za"     // reverse alphabetical
	SortRecent ItemSort = "recent" // most recently opened first
)

// ParseItemSort validates a sort mode name.
func ParseItemSort(s string) (ItemSort, error) {
	switch mode := ItemSort(strings.ToLower(strings.TrimSpace(s))); mode {
	case SortName, SortAZ, SortZA, SortRecent:
		return mode, nil
	case "":
		return SortName, nil
	}
	return "", fmt.Errorf("invalid sort %q: must be name, az, za or recent", s)
}

// SortItems returns a sorted copy of items. Ties keep their input order.
// The query only affects SortName.
func SortItems(items []catalog.Item, mode ItemSort, query string) []catalog.Item {
	out := append([]catalog.Item(nil), items...)
	query = strings.TrimSpace(query)

	switch mode {
	case SortAZ, SortZA:
		col := collate.New(language.Und, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			c := col.CompareString(out[i].Name, out[j].Name)
			if mode == SortZA {
				return c > 0
			}
			return c < 0
		})
	case SortRecent:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].LastMaximized > out[j].LastMaximized
		})
	default:
		type ranked struct {
			item catalog.Item
			rank float64
		}
		keyed := make([]ranked, len(out))
		for i, it := range out {
			keyed[i] = ranked{it, fuzzy.MatchRank(it.Name, query)}
		}
		sort.SliceStable(keyed, func(i, j int) bool {
			return keyed[i].rank < keyed[j].rank
		})
		for i := range keyed {
			out[i] = keyed[i].item
		}
	}
	return out
}
