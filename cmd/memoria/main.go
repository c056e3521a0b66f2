// Command memoria is the memoria CLI and MCP server.
package main

import "github.com/memoria-dev/memoria/internal/cli"

func main() {
	cli.Execute()
}
