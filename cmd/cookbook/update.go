package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/cookbook/internal/recipes"
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Update a recipe",
	GroupID: "recipes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var update recipes.UpdateCommand
		flags := cmd.Flags()

		if flags.Changed("name") {
			name, _ := flags.GetString("name")
			update.Name = &name
		}
		if flags.Changed("category") {
			s, _ := flags.GetString("category")
			c, err := recipes.ParseCategory(s)
			if err != nil {
				return err
			}
			update.Category = &c
		}
		if flags.Changed("date") {
			s, _ := flags.GetString("date")
			d, err := parseDate(s)
			if err != nil {
				return err
			}
			update.PublishDate = &d
		}
		if flags.Changed("published") {
			published, _ := flags.GetBool("published")
			update.IsPublished = &published
		}
		if flags.Changed("image") {
			path, _ := flags.GetString("image")
			url, err := uploadImage(cmd, path)
			if err != nil {
				return err
			}
			update.ImageURL = &url
		}

		r, err := api.Update(cmd.Context(), args[0], update)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), r)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", r.ID)
		return nil
	},
}

func init() {
	updateCmd.Flags().String("name", "", "recipe name")
	updateCmd.Flags().StringP("category", "c", "", "recipe category")
	updateCmd.Flags().String("date", "", "publish date as YYYY-MM-DD")
	updateCmd.Flags().Bool("published", false, "published flag")
	updateCmd.Flags().String("image", "", "image file to upload")
}
