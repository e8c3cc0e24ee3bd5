// Package commands implements the craftbook CLI actions on top of the
// catalog store. Each action writes its human-readable result to App.Out.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/antti/craftbook/internal/catalog"
	"github.com/antti/craftbook/internal/config"
	"github.com/antti/craftbook/internal/database"
	"github.com/antti/craftbook/internal/events"
	"github.com/antti/craftbook/internal/fuzzy"
	"github.com/antti/craftbook/internal/store"
)

// ErrIncomplete is returned by Check when some recipe still has an
// unresolved slot.
var ErrIncomplete = errors.New("catalog has incomplete recipes")

// InvalidArgError represents a command argument that cannot be used
type InvalidArgError struct {
	Arg    string
	Reason string
}

func (e *InvalidArgError) Error() string {
	return fmt.Sprintf("invalid argument '%s': %s", e.Arg, e.Reason)
}

// App binds a loaded configuration to an open catalog.
type App struct {
	Cfg   *config.Config
	Store *store.Store
	Out   io.Writer

	log    zerolog.Logger
	policy store.DeletePolicy
}

// Open loads the catalog named by cfg, creating its directory if needed.
func Open(cfg *config.Config, log zerolog.Logger) (*App, error) {
	policy, ok := store.ParseDeletePolicy(cfg.User.Store.DeletePolicy)
	if !ok {
		return nil, &InvalidArgError{Arg: cfg.User.Store.DeletePolicy, Reason: "delete_policy must be remove_references or delete_recipes"}
	}
	if err := cfg.EnsureConfigDir(); err != nil {
		return nil, err
	}

	bus := events.NewBus(events.WithLogger(log))
	s, err := store.New(database.New(cfg.DatabasePath), bus, store.WithLogger(log))
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", cfg.DatabasePath).Int("items", len(s.Items())).Msg("catalog opened")
	return &App{
		Cfg:    cfg,
		Store:  s,
		Out:    os.Stdout,
		log:    log,
		policy: policy,
	}, nil
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.Out, format, args...)
}

// resolveItem finds an item by name, ignoring case, or by id. Misses carry
// "did you mean" suggestions drawn from the current item names.
func (a *App) resolveItem(ref string) (catalog.Item, error) {
	if it, ok := a.Store.FindItemByName(ref); ok {
		return it, nil
	}
	if it, ok := a.Store.GetItem(ref); ok {
		return it, nil
	}

	notFound := &catalog.NotFoundError{Kind: "item", ID: ref}
	items := a.Store.Items()
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	suggestions := fuzzy.FindSimilarNames(ref, names, a.Cfg.User.Search.SuggestThreshold)
	if limit := a.Cfg.User.Search.MaxSuggestions; limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	if len(suggestions) > 0 {
		return catalog.Item{}, fmt.Errorf("%w. Did you mean: %s?", notFound, strings.Join(suggestions, ", "))
	}
	return catalog.Item{}, notFound
}

func (a *App) resolveRecipe(id string) (catalog.Recipe, error) {
	r, ok := a.Store.GetRecipe(id)
	if !ok {
		return catalog.Recipe{}, &catalog.NotFoundError{Kind: "recipe", ID: id}
	}
	return r, nil
}

// ShowConfig displays the current configuration
func (a *App) ShowConfig() error {
	a.printf("%s", a.Cfg.FormatConfig())
	return nil
}
