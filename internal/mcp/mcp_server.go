// Package mcp exposes the labeled table, the fitted scaler and cluster
// assignment to other tools over the Model Context Protocol.
package mcp

import (
	"context"

	"github.com/huangsam/pokestats/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the pokestats MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Pokestats Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	s.AddTool(mcp.NewTool("get_labeled_table",
		mcp.WithDescription("Return the labeled table (every input column plus Cluster and Profile), optionally filtered and sorted. Falls back to unlabeled rows when no bundle exists."),
		mcp.WithString("type", mcp.Description("Keep rows whose Type 1 or Type 2 matches, case-insensitive.")),
		mcp.WithNumber("generation", mcp.Description("Keep rows of this generation.")),
		mcp.WithString("legendary", mcp.Description("Keep legendary (yes) or non-legendary (no) rows."), mcp.Enum("yes", "no")),
		mcp.WithString("profile", mcp.Description("Keep rows with this profile label.")),
		mcp.WithString("sort", mcp.Description("Sort by Name, Total or a stat column such as 'Sp. Atk'.")),
		mcp.WithBoolean("ascending", mcp.Description("Sort ascending instead of descending.")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of rows returned.")),
	), h.handleGetLabeledTable)

	s.AddTool(mcp.NewTool("get_scaler",
		mcp.WithDescription("Return the persisted standardization parameters (column order, means, scales) and the bundle they belong to."),
	), h.handleGetScaler)

	s.AddTool(mcp.NewTool("assign_cluster",
		mcp.WithDescription("Standardize six raw base stats with the persisted scaler and return the nearest cluster and its profile."),
		mcp.WithNumber("hp", mcp.Description("HP"), mcp.Required()),
		mcp.WithNumber("attack", mcp.Description("Attack"), mcp.Required()),
		mcp.WithNumber("defense", mcp.Description("Defense"), mcp.Required()),
		mcp.WithNumber("sp_atk", mcp.Description("Sp. Atk"), mcp.Required()),
		mcp.WithNumber("sp_def", mcp.Description("Sp. Def"), mcp.Required()),
		mcp.WithNumber("speed", mcp.Description("Speed"), mcp.Required()),
	), h.handleAssignCluster)

	s.AddTool(mcp.NewTool("compare_pokemon",
		mcp.WithDescription("Compare two Pokémon stat by stat, with totals, winners and profiles."),
		mcp.WithString("left", mcp.Description("First name."), mcp.Required()),
		mcp.WithString("right", mcp.Description("Second name."), mcp.Required()),
	), h.handleComparePokemon)

	s.AddTool(mcp.NewTool("run_clustering",
		mcp.WithDescription("Run the cluster labeler on the input table. The bundle is rewritten only when cluster ids change."),
		mcp.WithNumber("clusters", mcp.Description("Number of clusters. Defaults to the configured value.")),
	), h.handleRunClustering)

	return s
}

// StartMCPServer starts the pokestats MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
