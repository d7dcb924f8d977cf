package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/cookbook/internal/client"
)

var (
	serverURL  string
	token      string
	jsonOutput bool

	api *client.Client
)

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

var rootCmd = &cobra.Command{
	Use:           "cookbook <command>",
	Short:         "CLI client for the cookbook service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		api = client.New(serverURL, token)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("COOKBOOK_SERVER", "http://localhost:8080/api"), "API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("COOKBOOK_TOKEN"), "bearer token; signed out when empty")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "recipes", Title: "Recipes:"},
		&cobra.Group{ID: "views", Title: "Views:"},
	)

	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(countsCmd)
	rootCmd.AddCommand(browseCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
