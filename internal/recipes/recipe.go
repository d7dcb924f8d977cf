// Package recipes implements the recipe catalog domain: recipe types, the
// mapping between recipes and stored documents, list parameters, and the
// HTTP handler.
package recipes

import (
	"fmt"
	"slices"
	"time"
)

// Collection is the document collection recipes are stored in.
const Collection = "recipes"

// Stored field names.
const (
	FieldName        = "name"
	FieldCategory    = "category"
	FieldPublishDate = "publishDate"
	FieldIsPublished = "isPublished"
	FieldImageURL    = "imageUrl"
)

// Category is a recipe category.
type Category string

const (
	BreadsSandwichesAndPizza Category = "breadsSandwichesAndPizza"
	EggsAndBreakfast         Category = "eggsAndBreakfast"
	DessertsAndBakedGoods    Category = "dessertsAndBakedGoods"
	FishAndSeafood           Category = "fishAndSeafood"
	Vegetables               Category = "vegetables"
)

var categories = []Category{
	BreadsSandwichesAndPizza,
	EggsAndBreakfast,
	DessertsAndBakedGoods,
	FishAndSeafood,
	Vegetables,
}

var categoryLabels = map[Category]string{
	BreadsSandwichesAndPizza: "Breads, Sandwiches, and Pizza",
	EggsAndBreakfast:         "Eggs & Breakfast",
	DessertsAndBakedGoods:    "Desserts & Baked Goods",
	FishAndSeafood:           "Fish & Seafood",
	Vegetables:               "Vegetables",
}

// Categories returns every category in display order.
func Categories() []Category {
	return slices.Clone(categories)
}

// ParseCategory returns the category named s.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: unknown category %q", ErrInvalidParams, s)
	}
	return c, nil
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the display label for c.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Recipe is a catalog entry. PublishDate is always present and is the
// default sort key.
type Recipe struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	PublishDate time.Time `json:"publishDate"`
	IsPublished bool      `json:"isPublished"`
	ImageURL    string    `json:"imageUrl,omitempty"`
}

// CreateCommand carries the fields of a new recipe.
type CreateCommand struct {
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	PublishDate time.Time `json:"publishDate"`
	IsPublished bool      `json:"isPublished"`
	ImageURL    string    `json:"imageUrl,omitempty"`
}

// UpdateCommand carries a partial update. Nil fields are left unchanged.
type UpdateCommand struct {
	Name        *string    `json:"name,omitempty"`
	Category    *Category  `json:"category,omitempty"`
	PublishDate *time.Time `json:"publishDate,omitempty"`
	IsPublished *bool      `json:"isPublished,omitempty"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
}

// Page is one page of recipes. Cursor is the id of the last recipe and is
// passed back to continue the listing.
type Page struct {
	Recipes []Recipe `json:"recipes"`
	Cursor  string   `json:"cursor,omitempty"`
}

// Validate checks that the recipe has a name, a known category, and a publish date.
func (c CreateCommand) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidRecipe)
	}
	if !c.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidRecipe, c.Category)
	}
	if c.PublishDate.IsZero() {
		return fmt.Errorf("%w: publishDate required", ErrInvalidRecipe)
	}
	return nil
}

// Validate checks every set field and rejects empty updates.
func (c UpdateCommand) Validate() error {
	if c.Name == nil && c.Category == nil && c.PublishDate == nil && c.IsPublished == nil && c.ImageURL == nil {
		return fmt.Errorf("%w: no fields to update", ErrInvalidRecipe)
	}
	if c.Name != nil && *c.Name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidRecipe)
	}
	if c.Category != nil && !c.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidRecipe, *c.Category)
	}
	if c.PublishDate != nil && c.PublishDate.IsZero() {
		return fmt.Errorf("%w: publishDate must not be zero", ErrInvalidRecipe)
	}
	return nil
}
