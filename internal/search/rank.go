// Package search orders items against a free-text query and ranks recipes
// against a multi-field query of input names, output names and a duration.
package search

import (
	"math"
	"sort"
	"strings"

	"github.com/antti/craftbook/internal/catalog"
	"github.com/antti/craftbook/internal/duration"
	"github.com/antti/craftbook/internal/fuzzy"
)

// DurationWindow is the distance in seconds at which DurationScore reaches zero.
const DurationWindow = duration.Week

// Weights of the recipe relevance geometric mean. They sum to one.
const (
	InputWeight    = 0.4
	OutputWeight   = 0.4
	DurationWeight = 0.2
)

// NameResolver looks up the current name of an item id.
type NameResolver interface {
	ItemName(id string) (string, bool)
}

// RecipeQuery is a parsed recipe search. Empty name lists and a missing
// duration place no constraint.
type RecipeQuery struct {
	Inputs      []string
	Outputs     []string
	Duration    int
	HasDuration bool
}

// Empty reports whether the query constrains nothing.
func (q RecipeQuery) Empty() bool {
	return len(q.Inputs) == 0 && len(q.Outputs) == 0 && !q.HasDuration
}

// ParseRecipeQuery builds a query from the three search fields. Name fields
// are comma separated; an empty or unparseable duration is no constraint.
func ParseRecipeQuery(inputs, outputs, dur string) RecipeQuery {
	q := RecipeQuery{
		Inputs:  SplitList(inputs),
		Outputs: SplitList(outputs),
	}
	if secs, ok := duration.Parse(dur); ok {
		q.Duration = secs
		q.HasDuration = true
	}
	return q
}

// SplitList splits a comma separated list, trimming entries and dropping
// empty ones.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NameSetScore averages, over the queries, the best similarity of each
// query against any of the names. No queries means no constraint and
// scores 1; no names against some query scores 0.
func NameSetScore(names, queries []string) float64 {
	if len(queries) == 0 {
		return 1
	}
	total := 0.0
	for _, q := range queries {
		best := 0.0
		for _, name := range names {
			best = max(best, fuzzy.RankSimilarity(name, q))
		}
		total += best
	}
	return total / float64(len(queries))
}

// DurationScore decays linearly from 1 at the queried duration to 0 at
// DurationWindow away from it. It is 1 when the query has no duration.
func DurationScore(d int, q RecipeQuery) float64 {
	if !q.HasDuration {
		return 1
	}
	diff := math.Abs(float64(d) - float64(q.Duration))
	return max(0, 1-diff/DurationWindow)
}

// Relevance combines the three sub-scores as a weighted geometric mean.
func Relevance(input, output, dur float64) float64 {
	return math.Pow(input, InputWeight) * math.Pow(output, OutputWeight) * math.Pow(dur, DurationWeight)
}

// ScoredRecipe is a recipe with its sub-scores and combined relevance.
type ScoredRecipe struct {
	Recipe   catalog.Recipe
	Input    float64
	Output   float64
	Duration float64
	Score    float64
}

// SideNames resolves the item names on one side of a recipe, skipping
// empty slots and unknown ids.
func SideNames(r catalog.Recipe, side catalog.Side, names NameResolver) []string {
	var out []string
	for _, s := range r.Slots(side) {
		if s.ItemID == "" {
			continue
		}
		if name, ok := names.ItemName(s.ItemID); ok {
			out = append(out, name)
		}
	}
	return out
}

// ScoreRecipe scores one recipe against q.
func ScoreRecipe(r catalog.Recipe, names NameResolver, q RecipeQuery) ScoredRecipe {
	sr := ScoredRecipe{
		Recipe:   r,
		Input:    NameSetScore(SideNames(r, catalog.Inputs, names), q.Inputs),
		Output:   NameSetScore(SideNames(r, catalog.Outputs, names), q.Outputs),
		Duration: DurationScore(r.Duration, q),
	}
	sr.Score = Relevance(sr.Input, sr.Output, sr.Duration)
	return sr
}

// RankRecipes scores every recipe and orders them by descending relevance,
// keeping the given order among equal scores. Names are resolved on every
// call, so the result always reflects current item names.
func RankRecipes(recipes []catalog.Recipe, names NameResolver, q RecipeQuery) []ScoredRecipe {
	out := make([]ScoredRecipe, len(recipes))
	for i, r := range recipes {
		out[i] = ScoreRecipe(r, names, q)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}
