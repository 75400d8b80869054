package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/craftstudio/craftstudio-mcp/audit/sqlitestore"
	"github.com/craftstudio/craftstudio-mcp/dispatch"
)

var (
	auditLimit  int
	auditFormat string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent tool invocations from the SQLite audit log",
	Long:  `The 'audit' subcommand reads the invocation log written by a server running with --audit-db and prints the most recent entries, newest first. Formats: table (default), json, jsonl.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		path := cfg.AuditDBPath()
		if path == "" {
			return fmt.Errorf("--audit-db is required")
		}
		if auditFormat != "table" && auditFormat != "json" && auditFormat != "jsonl" {
			return fmt.Errorf("--format must be 'table', 'json' or 'jsonl'")
		}

		store, err := sqlitestore.New(path)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer store.Close()

		records, err := store.Recent(auditLimit)
		if err != nil {
			return fmt.Errorf("read invocations: %w", err)
		}
		if len(records) == 0 {
			cmd.PrintErrln("no invocations recorded")
			return nil
		}

		switch auditFormat {
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(records); err != nil {
				return fmt.Errorf("encode json: %w", err)
			}
		case "jsonl":
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, r := range records {
				if err := enc.Encode(r); err != nil {
					return fmt.Errorf("encode jsonl: %w", err)
				}
			}
		default:
			green := color.New(color.FgGreen)
			red := color.New(color.FgRed)
			yellow := color.New(color.FgYellow)
			for _, r := range records {
				c := green
				switch r.Outcome {
				case dispatch.OutcomeError, dispatch.OutcomeMalformed:
					c = red
				case dispatch.OutcomePaymentRequired:
					c = yellow
				}
				cmd.Printf("%s  %-40s ", r.Timestamp.Format("2006-01-02 15:04:05"), r.ToolName)
				c.Fprintf(cmd.OutOrStdout(), "%-17s", r.Outcome)
				cmd.Printf(" %5dms  %s\n", r.DurationMS, r.InvocationID)
			}
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "maximum number of entries to show")
	auditCmd.Flags().StringVar(&auditFormat, "format", "table", "output format: table, json or jsonl")
	rootCmd.AddCommand(auditCmd)
}
