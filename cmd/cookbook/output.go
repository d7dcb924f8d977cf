package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/JaimeStill/cookbook/internal/recipes"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printRecipe(w io.Writer, r *recipes.Recipe) {
	fmt.Fprintf(w, "ID:        %s\n", r.ID)
	fmt.Fprintf(w, "Name:      %s\n", r.Name)
	fmt.Fprintf(w, "Category:  %s\n", r.Category.Label())
	fmt.Fprintf(w, "Published: %s\n", publishedLabel(r))
	if r.ImageURL != "" {
		fmt.Fprintf(w, "Image:     %s\n", r.ImageURL)
	}
}

func printRecipeTable(w io.Writer, rs []recipes.Recipe) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tSTATUS\tNAME")
	for _, r := range rs {
		status := "draft"
		if r.IsPublished {
			status = "published"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.PublishDate.Format(dateLayout),
			r.Category.Label(),
			status,
			r.Name,
		)
	}
	tw.Flush()
}

func publishedLabel(r *recipes.Recipe) string {
	date := r.PublishDate.Format(dateLayout)
	if !r.IsPublished {
		return date + " (draft)"
	}
	return date
}
