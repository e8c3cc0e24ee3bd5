package search

import (
	"sync"

	"github.com/antti/craftbook/internal/catalog"
	"github.com/antti/craftbook/internal/events"
)

// Source is the read side of the store a Live view ranks.
type Source interface {
	NameResolver
	Items() []catalog.Item
	Recipes() []catalog.Recipe
}

// Live keeps a sorted item list and a ranked recipe list current. It
// recomputes both after every event on the bus, since any item or recipe
// change can move names or scores.
type Live struct {
	mu          sync.Mutex
	src         Source
	bus         *events.Bus
	sub         events.Subscription
	mode        ItemSort
	itemQuery   string
	recipeQuery RecipeQuery
	items       []catalog.Item
	recipes     []ScoredRecipe
	refreshes   int
}

// NewLive builds a view over src and subscribes it to bus.
func NewLive(src Source, bus *events.Bus, mode ItemSort) *Live {
	l := &Live{src: src, bus: bus, mode: mode}
	l.refresh()
	l.sub = bus.OnAll(func(events.Event) { l.refresh() })
	return l
}

// Close unsubscribes the view. It keeps its last results.
func (l *Live) Close() {
	l.bus.Off(l.sub)
}

// SetSort changes the item sort mode and re-sorts.
func (l *Live) SetSort(mode ItemSort) {
	l.mu.Lock()
	l.mode = mode
	l.mu.Unlock()
	l.refresh()
}

// SetItemQuery changes the item search text and re-sorts.
func (l *Live) SetItemQuery(q string) {
	l.mu.Lock()
	l.itemQuery = q
	l.mu.Unlock()
	l.refresh()
}

// SetRecipeQuery changes the recipe search and re-ranks.
func (l *Live) SetRecipeQuery(q RecipeQuery) {
	l.mu.Lock()
	l.recipeQuery = q
	l.mu.Unlock()
	l.refresh()
}

// Items returns the current item order.
func (l *Live) Items() []catalog.Item {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]catalog.Item(nil), l.items...)
}

// Recipes returns the current recipe ranking.
func (l *Live) Recipes() []ScoredRecipe {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]ScoredRecipe(nil), l.recipes...)
}

// Refreshes counts recomputations, including the initial one.
func (l *Live) Refreshes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refreshes
}

func (l *Live) refresh() {
	l.mu.Lock()
	mode, itemQuery, recipeQuery := l.mode, l.itemQuery, l.recipeQuery
	l.mu.Unlock()

	items := SortItems(l.src.Items(), mode, itemQuery)
	recipes := RankRecipes(l.src.Recipes(), l.src, recipeQuery)

	l.mu.Lock()
	l.items = items
	l.recipes = recipes
	l.refreshes++
	l.mu.Unlock()
}
