package interchange

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/antti/craftbook/internal/duration"
)

// DefaultSelector picks the first table on the page.
const DefaultSelector = "table"

// Cell is one item reference read from a table cell.
type Cell struct {
	Name string
	Qty  int
	Icon string // absolute image URL, if the cell had one
}

// TableRow is one recipe read from an HTML table.
type TableRow struct {
	Inputs      []Cell
	Outputs     []Cell
	Duration    int
	HasDuration bool
}

type columnRole int

const (
	roleIgnore columnRole = iota
	roleInput
	roleOutput
	roleDuration
)

var (
	amountRe = regexp.MustCompile(`(?i)\bx\s*(\d+)\b`)
	spaceRe  = regexp.MustCompile(`\s+`)
)

// ParseHTMLTable reads recipes from the table matched by selector. Column
// roles come from header text ("input", "ingredient", "output", "result",
// "product", "duration", "time"); without a header the last column is the
// output and every other column an input. Relative image URLs are resolved
// against base when it is not nil.
func ParseHTMLTable(r io.Reader, base *url.URL, selector string) ([]TableRow, error) {
	if selector == "" {
		selector = DefaultSelector
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	table := doc.Find(selector).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("table not found with selector %q", selector)
	}

	var roles []columnRole
	table.Find("tr").EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		ths := tr.Find("th")
		if ths.Length() == 0 {
			return true
		}
		ths.Each(func(_ int, th *goquery.Selection) {
			roles = append(roles, roleFor(textCondense(th.Text())))
		})
		return false
	})

	var out []TableRow
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		tds := tr.Find("td")
		if tds.Length() == 0 {
			return
		}
		var row TableRow
		tds.Each(func(i int, td *goquery.Selection) {
			role := positionalRole(i, tds.Length())
			if roles != nil {
				role = roleIgnore
				if i < len(roles) {
					role = roles[i]
				}
			}
			switch role {
			case roleDuration:
				if secs, ok := duration.Parse(textCondense(td.Text())); ok {
					row.Duration, row.HasDuration = secs, true
				}
			case roleInput, roleOutput:
				cell := extractCell(td, base)
				if cell.Name == "" {
					return
				}
				if role == roleInput {
					row.Inputs = append(row.Inputs, cell)
				} else {
					row.Outputs = append(row.Outputs, cell)
				}
			}
		})
		if len(row.Inputs) > 0 || len(row.Outputs) > 0 {
			out = append(out, row)
		}
	})
	return out, nil
}

func roleFor(header string) columnRole {
	h := strings.ToLower(header)
	switch {
	case strings.HasPrefix(h, "input"), strings.HasPrefix(h, "ingredient"):
		return roleInput
	case strings.HasPrefix(h, "output"), strings.HasPrefix(h, "result"), strings.HasPrefix(h, "product"):
		return roleOutput
	case strings.HasPrefix(h, "duration"), strings.HasPrefix(h, "time"):
		return roleDuration
	}
	return roleIgnore
}

func positionalRole(i, n int) columnRole {
	if i == n-1 {
		return roleOutput
	}
	return roleInput
}

func textCondense(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func first(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return textCondense(sel.First().Text())
}

func parseQty(s string) int {
	m := amountRe.FindStringSubmatch(s)
	if len(m) != 2 {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func resolve(base *url.URL, ref string) string {
	if ref == "" || base == nil {
		return ref
	}
	ru, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(ru).String()
}

func extractCell(td *goquery.Selection, base *url.URL) Cell {
	// Preferred name: hidden <span class="sort">
	name := first(td.Find("span.sort"))
	vis := first(td.Find(".cell-text"))
	if name == "" && vis != "" {
		// Visible .cell-text minus any trailing "xN"
		name = strings.TrimSpace(amountRe.ReplaceAllString(vis, ""))
		if name == "" {
			name = vis
		}
	}
	img := td.Find("img").First()
	if name == "" && img.Length() != 0 {
		if alt, ok := img.Attr("alt"); ok {
			name = strings.TrimSpace(alt)
		}
	}
	text := textCondense(td.Text())
	if name == "" {
		name = strings.TrimSpace(amountRe.ReplaceAllString(text, ""))
	}

	// qty from <span class="amount"> or any xN fragment
	qty := parseQty(first(td.Find("span.amount")))
	if qty == 0 {
		qty = parseQty(vis)
	}
	if qty == 0 && name != "" {
		qty = parseQty(text)
	}
	if qty < 1 {
		qty = 1
	}

	var icon string
	if src, ok := img.Attr("src"); ok {
		icon = resolve(base, src)
	}

	return Cell{Name: name, Qty: qty, Icon: icon}
}
