package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/pokestats/core"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// statArgs are the assign_cluster argument names in StatColumns order.
var statArgs = [schema.NumStats]string{"hp", "attack", "defense", "sp_atk", "sp_def", "speed"}

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// labeledTable is the get_labeled_table payload.
type labeledTable struct {
	Labeled bool                `json:"labeled"`
	Count   int                 `json:"count"`
	Rows    []schema.LabeledRow `json:"rows"`
}

// scalerInfo is the get_scaler payload.
type scalerInfo struct {
	BundleID string    `json:"bundle_id"`
	Columns  []string  `json:"columns"`
	Means    []float64 `json:"means"`
	Scales   []float64 `json:"scales"`
}

func (h *toolHandler) session() *core.Session {
	return core.NewSession(h.baseCfg.Clone(), h.mgr)
}

func (h *toolHandler) handleGetLabeledTable(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters, err := contract.ParseFilters(
		request.GetString("type", ""),
		request.GetInt("generation", 0),
		request.GetString("legendary", ""),
		request.GetString("profile", ""),
		request.GetString("sort", ""),
		request.GetBool("ascending", false),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid filters: %v", err)), nil
	}
	limit := h.baseCfg.ResultLimit
	if l := request.GetInt("limit", 0); l > 0 {
		limit = min(l, contract.MaxResultLimit)
	}

	rows, labeled, err := core.FilteredRows(h.session().WithFilters(filters), limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("table lookup failed: %v", err)), nil
	}
	return jsonResult(labeledTable{Labeled: labeled, Count: len(rows), Rows: rows})
}

func (h *toolHandler) handleGetScaler(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	b, err := h.session().Bundle()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no usable artifact bundle: %v", err)), nil
	}
	sc := b.Scaler()
	return jsonResult(scalerInfo{
		BundleID: b.Manifest().BundleID,
		Columns:  sc.Columns,
		Means:    sc.Means,
		Scales:   sc.Scales,
	})
}

func (h *toolHandler) handleAssignCluster(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var stats schema.Stats
	for i, name := range statArgs {
		v, err := request.RequireInt(name)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid stats: %v", err)), nil
		}
		stats[i] = v
	}

	a, err := core.AssignPoint(h.session(), stats)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("assignment failed: %v", err)), nil
	}
	return jsonResult(a)
}

func (h *toolHandler) handleComparePokemon(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	left := request.GetString("left", "")
	right := request.GetString("right", "")
	if left == "" || right == "" {
		return mcp.NewToolResultError("both left and right names are required"), nil
	}

	result, err := core.ComparePair(h.session(), left, right)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleRunClustering(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := h.session()
	if k := request.GetInt("clusters", 0); k != 0 {
		if err := contract.ValidateClusterCount(k); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		s = s.WithClusters(k)
	}

	run, err := core.RunClustering(core.WithSuppressHeader(ctx), s)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("clustering failed: %v", err)), nil
	}
	return jsonResult(run.Result)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
