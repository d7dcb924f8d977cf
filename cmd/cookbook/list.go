package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/cookbook/internal/recipes"
	"github.com/JaimeStill/cookbook/pkg/query"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List one page of recipes",
	GroupID: "recipes",
	RunE: func(cmd *cobra.Command, args []string) error {
		category, _ := cmd.Flags().GetString("category")
		order, _ := cmd.Flags().GetString("order")
		pageSize, _ := cmd.Flags().GetInt("page-size")
		cursor, _ := cmd.Flags().GetString("cursor")

		params := recipes.DefaultParams(pageSize)

		c, err := parseCategoryArg(category)
		if err != nil {
			return err
		}
		params.Category = c

		o, err := recipes.ParseOrder(order)
		if err != nil {
			return err
		}
		params.Order = o

		if !cmd.Flags().Changed("page-size") {
			params.PageSize = query.Unbounded()
		}

		page, err := api.List(cmd.Context(), params, cursor)
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), page)
		}
		printRecipeTable(cmd.OutOrStdout(), page.Recipes)
		if page.Cursor != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "\nnext: --cursor %s\n", page.Cursor)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringP("category", "c", "all", "category filter or \"all\"")
	listCmd.Flags().StringP("order", "o", "desc", "publish date order: desc, asc, or none")
	listCmd.Flags().IntP("page-size", "n", 0, "recipes per page; 0 lists every match (server default when omitted)")
	listCmd.Flags().String("cursor", "", "id of the last recipe of the previous page")
}

// parseCategoryArg returns nil for "all" or an empty value.
func parseCategoryArg(s string) (*recipes.Category, error) {
	if s == "" || s == "all" {
		return nil, nil
	}
	c, err := recipes.ParseCategory(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
