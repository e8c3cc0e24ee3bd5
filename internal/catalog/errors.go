package catalog

import (
	"errors"
	"fmt"
)

// ErrMissingCollections is wrapped by FormatError when a snapshot lacks its
// items or recipes collection.
var ErrMissingCollections = errors.New("missing items or recipes")

// NotFoundError represents a missing item or recipe
type NotFoundError struct {
	Kind string // "item" or "recipe"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s '%s' not found", e.Kind, e.ID)
}

// SlotIndexError represents a slot index outside a recipe side
type SlotIndexError struct {
	RecipeID string
	Side     Side
	Index    int
	Len      int
}

func (e *SlotIndexError) Error() string {
	return fmt.Sprintf("recipe '%s' has no %s slot %d (valid: 0-%d)", e.RecipeID, e.Side, e.Index, e.Len-1)
}

// ItemExistsError represents a duplicate item name
type ItemExistsError struct {
	Name string
}

func (e *ItemExistsError) Error() string {
	return fmt.Sprintf("item '%s' already exists", e.Name)
}

// InvalidNameError represents an unusable item name
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid item name '%s': %s", e.Name, e.Reason)
}

// InvalidURLError represents an icon URL that is not a usable http(s) address
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid icon URL '%s': must be http(s) with a dotted host", e.URL)
}

// InvalidQuantityError represents a slot quantity below one
type InvalidQuantityError struct {
	Value string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid quantity '%s': must be a whole number of at least 1", e.Value)
}

// InvalidDurationError represents text the duration grammar rejects
type InvalidDurationError struct {
	Value string
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration '%s': use seconds or units like 1h30m", e.Value)
}

// FormatError represents a snapshot document that cannot be imported
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("import failed: %s", e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// UnsupportedVersionError represents a snapshot written by an unknown format version
type UnsupportedVersionError struct {
	Version int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported snapshot version %d (supported: %d)", e.Version, SnapshotVersion)
}
