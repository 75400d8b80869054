package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	gateway "github.com/craftstudio/craftstudio-mcp"
	"github.com/craftstudio/craftstudio-mcp/backend"
	"github.com/craftstudio/craftstudio-mcp/catalog"
	"github.com/craftstudio/craftstudio-mcp/dispatch"
	"github.com/craftstudio/craftstudio-mcp/identity"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools the backend catalog currently exposes",
	Long:  `The 'tools' subcommand fetches the action catalog from the backend, translates it, and prints the resulting tool list grouped by category. Useful for checking credentials and seeing what an MCP client would be offered.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		client := backend.NewClient(cfg.BackendURL(), cfg.APIKey, cfg.RequestTimeout())
		ids := identity.NewCache(client, cfg.APIKey)
		gw := gateway.New(client, client, ids, cfg.Payments())

		tools := gw.ListTools(cmd.Context())
		if len(tools) == 0 {
			color.Yellow("No tools available. Check CRAFTSTUDIO_API_KEY and backend connectivity (%s).\n", cfg.BackendURL())
			return nil
		}

		cyan := color.New(color.FgCyan, color.Bold)
		green := color.New(color.FgGreen)

		var lastCategory catalog.Category
		for _, tool := range tools {
			category, _, ok := dispatch.SplitToolName(tool.Name)
			if !ok {
				category = "?"
			}
			if category != lastCategory {
				if lastCategory != "" {
					cmd.Println()
				}
				cyan.Fprintf(cmd.OutOrStdout(), "%s\n", category)
				lastCategory = category
			}
			green.Fprintf(cmd.OutOrStdout(), "  %-40s", tool.Name)
			cmd.Printf(" %s\n", tool.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
