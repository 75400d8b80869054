package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	gateway "github.com/craftstudio/craftstudio-mcp"
	"github.com/craftstudio/craftstudio-mcp/audit"
	"github.com/craftstudio/craftstudio-mcp/audit/sqlitestore"
	"github.com/craftstudio/craftstudio-mcp/backend"
	"github.com/craftstudio/craftstudio-mcp/identity"
	"github.com/craftstudio/craftstudio-mcp/internal/logging"
	"github.com/craftstudio/craftstudio-mcp/mcp"
)

const serverVersion = "0.3.0"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdin/stdout",
	Long:  `The 'serve' subcommand runs the MCP server over stdio. This is what an MCP client configuration should invoke; all logging goes to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command) error {
	cfg := getConfig()

	client := backend.NewClient(cfg.BackendURL(), cfg.APIKey, cfg.RequestTimeout())
	ids := identity.NewCache(client, cfg.APIKey)

	var opts []gateway.Option
	var store audit.Store
	if path := cfg.AuditDBPath(); path != "" {
		sqlStore, err := sqlitestore.New(path)
		if err != nil {
			return fmt.Errorf("open audit log: %w", err)
		}
		store = sqlStore
	} else {
		store = audit.NewMemoryStore()
	}
	defer store.Close()
	opts = append(opts, gateway.WithAuditStore(store))

	gw := gateway.New(client, client, ids, cfg.Payments(), opts...)

	server, err := mcp.NewServer(gw, mcp.Implementation{
		Name:        "craftstudio-mcp",
		Version:     serverVersion,
		Description: "CraftStudio action catalog over MCP",
	})
	if err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Logger().Info("serving MCP on stdio", "backend", cfg.BackendURL())
	return server.Serve(ctx, os.Stdin, os.Stdout)
}
