package server

import (
	"github.com/lexandro/stylecache-mcp/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Setup creates and configures the MCP server with all tool registrations.
func Setup(
	getHandler *tools.GetHandler,
	keysHandler *tools.KeysHandler,
	searchHandler *tools.SearchHandler,
	statusHandler *tools.StatusHandler,
	recompileHandler *tools.RecompileHandler,
) *mcp.Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "stylecache-mcp",
			Version: "0.1.0",
		},
		&mcp.ServerOptions{
			Instructions: `This server holds precompiled CSS for the stylesheet sources under its root, built from .css, .scss and .sass files at startup.

- Use stylecache_get to fetch compiled CSS by key (e.g. "components:button" for components/button.scss)
- Use stylecache_keys to list keys by glob
- Use stylecache_search to find which stylesheets contain a selector or property
- Use stylecache_recompile after editing sources; the cache is not updated automatically`,
		},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "stylecache_get",
		Description: `Return the compiled, minified CSS for a cache key.

Keys are source paths relative to the root with "/" replaced by ":" and the .scss extension removed.
A key that is not in the cache was not compiled (missing, partial, or failed to compile).`,
	}, getHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "stylecache_keys",
		Description: `List cache keys matching a glob. ":" acts as the path separator.

Pattern examples:
  - "**" - every key
  - "components:*" - keys directly under components
  - "components:**" - keys anywhere under components`,
	}, keysHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name: "stylecache_search",
		Description: `Search compiled CSS. Returns matching rules grouped by key.

Query formats:
  - Plain text: word-level matching (e.g. "primary")
  - "quoted text": exact phrase matching
  - /regex/: regular expression matching`,
	}, searchHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "stylecache_status",
		Description: "Show cache status: entry count, size, syntaxes, last compile pass, memory usage, and uptime.",
	}, statusHandler.Handle)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        "stylecache_recompile",
		Description: "Run a full compile pass and replace the cache with its result.",
	}, recompileHandler.Handle)

	return mcpServer
}
