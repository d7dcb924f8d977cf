package recipes

import (
	"fmt"
	"time"

	"github.com/JaimeStill/cookbook/pkg/docstore"
)

func createFields(cmd CreateCommand) docstore.Fields {
	fields := docstore.Fields{
		FieldName:        cmd.Name,
		FieldCategory:    string(cmd.Category),
		FieldPublishDate: cmd.PublishDate,
		FieldIsPublished: cmd.IsPublished,
	}
	if cmd.ImageURL != "" {
		fields[FieldImageURL] = cmd.ImageURL
	}
	return fields
}

func updateFields(cmd UpdateCommand) docstore.Fields {
	fields := docstore.Fields{}
	if cmd.Name != nil {
		fields[FieldName] = *cmd.Name
	}
	if cmd.Category != nil {
		fields[FieldCategory] = string(*cmd.Category)
	}
	if cmd.PublishDate != nil {
		fields[FieldPublishDate] = *cmd.PublishDate
	}
	if cmd.IsPublished != nil {
		fields[FieldIsPublished] = *cmd.IsPublished
	}
	if cmd.ImageURL != nil {
		fields[FieldImageURL] = *cmd.ImageURL
	}
	return fields
}

// fromDocument converts a stored document to a Recipe. Fields of the wrong
// type are left at their zero value.
func fromDocument(doc docstore.Document) Recipe {
	r := Recipe{ID: doc.ID}

	r.Name, _ = doc.Fields[FieldName].(string)
	r.ImageURL, _ = doc.Fields[FieldImageURL].(string)
	r.IsPublished, _ = doc.Fields[FieldIsPublished].(bool)

	if c, ok := doc.Fields[FieldCategory].(string); ok {
		r.Category = Category(c)
	}
	r.PublishDate = timeOf(doc.Fields[FieldPublishDate])

	return r
}

// FromFields converts an event payload to a Recipe.
func FromFields(id string, fields map[string]any) (Recipe, error) {
	if id == "" {
		return Recipe{}, fmt.Errorf("%w: missing id", ErrInvalidRecipe)
	}
	return fromDocument(docstore.Document{Collection: Collection, ID: id, Fields: fields}), nil
}

func timeOf(v any) time.Time {
	switch t := v.(type) {
	case docstore.Timestamp:
		return t.Time()
	case time.Time:
		return t.UTC()
	case map[string]any:
		s, sok := number(t["_seconds"])
		n, nok := number(t["_nanoseconds"])
		if sok && nok {
			return docstore.Timestamp{Seconds: s, Nanos: n}.Time()
		}
	}
	return time.Time{}
}

func number(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	}
	return 0, false
}

func toPage(page *docstore.Page) *Page {
	out := &Page{
		Recipes: make([]Recipe, 0, len(page.Documents)),
		Cursor:  page.Cursor,
	}
	for _, doc := range page.Documents {
		out.Recipes = append(out.Recipes, fromDocument(doc))
	}
	return out
}
