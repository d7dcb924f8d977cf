package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/cookbook/internal/recipes"
)

const dateLayout = "2006-01-02"

var addCmd = &cobra.Command{
	Use:     "add",
	Short:   "Create a recipe",
	GroupID: "recipes",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		category, _ := cmd.Flags().GetString("category")
		date, _ := cmd.Flags().GetString("date")
		published, _ := cmd.Flags().GetBool("published")
		image, _ := cmd.Flags().GetString("image")

		c, err := recipes.ParseCategory(category)
		if err != nil {
			return err
		}

		publishDate := time.Now().UTC()
		if date != "" {
			if publishDate, err = parseDate(date); err != nil {
				return err
			}
		}

		create := recipes.CreateCommand{
			Name:        name,
			Category:    c,
			PublishDate: publishDate,
			IsPublished: published,
		}

		if image != "" {
			if create.ImageURL, err = uploadImage(cmd, image); err != nil {
				return err
			}
		}

		r, err := api.Create(cmd.Context(), create)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), r)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", r.ID)
		return nil
	},
}

func init() {
	addCmd.Flags().String("name", "", "recipe name (required)")
	addCmd.Flags().StringP("category", "c", "", "recipe category (required)")
	addCmd.Flags().String("date", "", "publish date as YYYY-MM-DD (default now)")
	addCmd.Flags().Bool("published", false, "publish the recipe")
	addCmd.Flags().String("image", "", "image file to upload")
	addCmd.MarkFlagRequired("name")
	addCmd.MarkFlagRequired("category")
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

func uploadImage(cmd *cobra.Command, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return api.UploadImage(cmd.Context(), filepath.Base(path), f)
}
