package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/gosimple/slug"
	"github.com/spf13/cobra"

	"github.com/devilmonastery/coderstoolbox/internal/catalog"
)

func newCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "catalog",
		Aliases: []string{"tools"},
		Short:   "Browse the tool catalog",
	}

	cmd.AddCommand(newCatalogListCommand())
	cmd.AddCommand(newCatalogShowCommand())

	return cmd
}

func newCatalogListCommand() *cobra.Command {
	var category string
	var query string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := getCliContext(cmd).Catalog

			tools := cat.Search(query)
			if category != "" {
				tools = filterCategory(tools, category)
			}
			if len(tools) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tools found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SLUG\tNAME\tCATEGORY\tSTATUS")
			for _, t := range tools {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Slug, t.Name, t.Category, t.Status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only list tools in this category (name or slug)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "search terms")

	return cmd
}

// filterCategory keeps tools whose category matches name, ignoring case,
// or whose category slug equals name
func filterCategory(tools []*catalog.Tool, name string) []*catalog.Tool {
	var out []*catalog.Tool
	for _, t := range tools {
		if strings.EqualFold(t.Category, name) || slug.Make(t.Category) == strings.ToLower(name) {
			out = append(out, t)
		}
	}
	return out
}

func newCatalogShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show SLUG",
		Short: "Show a tool's description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx := getCliContext(cmd)

			tool, ok := cliCtx.Catalog.Tool(args[0])
			if !ok {
				return fmt.Errorf("no tool with slug %q (try 'toolbox catalog list')", args[0])
			}

			return printMarkdown(cmd.OutOrStdout(), cliCtx.Config, toolMarkdown(tool, cliCtx.Catalog.Site.AbsoluteURL(tool.Path())))
		},
	}
}

// toolMarkdown formats a catalog entry as a markdown document
func toolMarkdown(t *catalog.Tool, url string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Name)
	fmt.Fprintf(&b, "*%s*", t.Category)
	if t.Status != catalog.StatusAvailable {
		fmt.Fprintf(&b, " · %s", t.Status)
	}
	b.WriteString("\n\n")
	if t.Summary != "" {
		fmt.Fprintf(&b, "%s\n\n", t.Summary)
	}
	if t.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", strings.TrimSpace(t.Description))
	}
	if len(t.Keywords) > 0 {
		fmt.Fprintf(&b, "**Keywords:** %s\n\n", strings.Join(t.Keywords, ", "))
	}
	fmt.Fprintf(&b, "%s\n", url)
	return b.String()
}
