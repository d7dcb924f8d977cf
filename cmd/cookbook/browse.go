package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/JaimeStill/cookbook/internal/browse"
	"github.com/JaimeStill/cookbook/internal/recipes"
)

var browseCmd = &cobra.Command{
	Use:     "browse",
	Short:   "Browse recipes interactively",
	GroupID: "views",
	RunE: func(cmd *cobra.Command, args []string) error {
		pageSize, _ := cmd.Flags().GetInt("page-size")

		s := browse.New(api, api.SignedIn(), pageSize)
		prompt := term.IsTerminal(int(os.Stdin.Fd()))
		return runBrowse(cmd.Context(), s, cmd.InOrStdin(), cmd.OutOrStdout(), prompt)
	},
}

func init() {
	browseCmd.Flags().IntP("page-size", "n", 3, "recipes per page")
}

const browseHelp = `commands:
  category <c|all>     filter by category
  order <asc|desc>     order by publish date
  per-page <n>         change page size (0 lists everything)
  more                 load the next page
  edit <id>            select a visible recipe for editing
  set key=value ...    update the selected recipe (name, category, date, published, image)
  add key=value ...    create a recipe
  cancel               clear the selection
  delete <id>          delete a recipe
  refresh              reload the first page
  quit                 leave the browser`

// runBrowse drives s from line commands read from in. The prompt is only
// written when prompt is set.
func runBrowse(ctx context.Context, s *browse.Session, in io.Reader, out io.Writer, prompt bool) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	render(out, s)

	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return nil
		}

		listed, err := dispatch(ctx, s, out, cmd, args)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if listed {
			render(out, s)
		}
	}
}

// dispatch runs one browse command and reports whether the list should be redrawn.
func dispatch(ctx context.Context, s *browse.Session, out io.Writer, cmd string, args []string) (bool, error) {
	switch cmd {
	case "help":
		fmt.Fprintln(out, browseHelp)
		return false, nil

	case "refresh":
		return true, s.Refresh(ctx)

	case "more":
		return true, s.LoadMore(ctx)

	case "category":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: category <c|all>")
		}
		c, err := parseCategoryArg(args[0])
		if err != nil {
			return false, err
		}
		return true, s.SetCategory(ctx, c)

	case "order":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: order <asc|desc>")
		}
		o, err := recipes.ParseOrder(args[0])
		if err != nil {
			return false, err
		}
		return true, s.SetOrder(ctx, o)

	case "per-page":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: per-page <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("invalid page size %q", args[0])
		}
		return true, s.SetPageSize(ctx, n)

	case "edit":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: edit <id>")
		}
		r, err := s.Select(args[0])
		if err != nil {
			return false, err
		}
		printRecipe(out, &r)
		return false, nil

	case "cancel":
		s.ClearSelection()
		return false, nil

	case "set":
		selected, ok := s.Selected()
		if !ok {
			return false, fmt.Errorf("no recipe selected; use edit <id>")
		}
		update, err := parseUpdate(args)
		if err != nil {
			return false, err
		}
		_, err = s.Update(ctx, selected.ID, update)
		return err == nil, err

	case "add":
		create, err := parseCreate(args)
		if err != nil {
			return false, err
		}
		_, err = s.Add(ctx, create)
		return err == nil, err

	case "delete":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: delete <id>")
		}
		err := s.Delete(ctx, args[0])
		return err == nil, err
	}

	return false, fmt.Errorf("unknown command %q (try help)", cmd)
}

func render(out io.Writer, s *browse.Session) {
	p := s.Params()

	category := "all"
	if p.Category != nil {
		category = p.Category.Label()
	}
	fmt.Fprintf(out, "\n[%s | %s | %s per page]\n", category, orderLabel(p.Order), p.PageSize)

	rs := s.Recipes()
	if len(rs) == 0 {
		fmt.Fprintln(out, "no recipes")
		return
	}
	printRecipeTable(out, rs)
}

func orderLabel(o recipes.Order) string {
	switch o {
	case recipes.OrderPublishDateDesc:
		return "newest first"
	case recipes.OrderPublishDateAsc:
		return "oldest first"
	}
	return "unordered"
}

// parseAssignments reads key=value pairs. A token without "=" continues the
// previous value, so "name=Tomato Soup" is one pair.
func parseAssignments(args []string) (map[string]string, error) {
	out := make(map[string]string)
	var last string
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			if last == "" {
				return nil, fmt.Errorf("expected key=value, got %q", arg)
			}
			out[last] += " " + arg
			continue
		}
		out[key] = value
		last = key
	}
	return out, nil
}

func parseUpdate(args []string) (recipes.UpdateCommand, error) {
	var update recipes.UpdateCommand

	kv, err := parseAssignments(args)
	if err != nil {
		return update, err
	}

	for key, value := range kv {
		switch key {
		case "name":
			update.Name = &value
		case "category":
			c, err := recipes.ParseCategory(value)
			if err != nil {
				return update, err
			}
			update.Category = &c
		case "date":
			d, err := parseDate(value)
			if err != nil {
				return update, err
			}
			update.PublishDate = &d
		case "published":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return update, fmt.Errorf("invalid published value %q", value)
			}
			update.IsPublished = &b
		case "image":
			update.ImageURL = &value
		default:
			return update, fmt.Errorf("unknown field %q", key)
		}
	}
	return update, nil
}

func parseCreate(args []string) (recipes.CreateCommand, error) {
	update, err := parseUpdate(args)
	if err != nil {
		return recipes.CreateCommand{}, err
	}

	var create recipes.CreateCommand
	if update.Name != nil {
		create.Name = *update.Name
	}
	if update.Category != nil {
		create.Category = *update.Category
	}
	if update.PublishDate != nil {
		create.PublishDate = *update.PublishDate
	}
	if update.IsPublished != nil {
		create.IsPublished = *update.IsPublished
	}
	if update.ImageURL != nil {
		create.ImageURL = *update.ImageURL
	}
	return create, nil
}
