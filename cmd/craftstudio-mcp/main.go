package main

import (
	"github.com/craftstudio/craftstudio-mcp/internal/cli"
)

// main starts the craftstudio-mcp CLI by delegating to the cobra root
// command. Running without a subcommand serves MCP on stdio.
func main() {
	cli.Execute()
}
