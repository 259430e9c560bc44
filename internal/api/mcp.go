package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/luminalights/lumina/internal/prompt"
	"github.com/luminalights/lumina/internal/storage"
	"github.com/luminalights/lumina/internal/variety"
)

// mcpUser is the user ID favorites are stored under when a tool call does
// not name one. The MCP transport is stdio, so there is one local caller.
const mcpUser = "local"

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store *storage.Store
}

// NewMCPServer creates an MCP server with the lighting tools and resources
// registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"lumina",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("lumina LED lighting planner: variety plans, saved favorites, and the effect catalog."),
		server.WithRecovery(),
	)

	// Tools
	s.AddTool(
		mcp.NewTool("generate_variety_plan",
			mcp.WithDescription("Generate a deterministic multi-day lighting plan with no two consecutive days alike."),
			mcp.WithArray("days", mcp.Description("Day labels, e.g. [\"monday\",\"tuesday\"]"), mcp.Required()),
			mcp.WithArray("theme_colors", mcp.Description("Optional theme palette as [[r,g,b], ...]")),
			mcp.WithBoolean("festive", mcp.Description("Bias toward celebratory effects")),
			mcp.WithNumber("brightness", mcp.Description("Fixed brightness 0-255 instead of per-day values")),
		),
		mcpGeneratePlan(),
	)

	s.AddTool(
		mcp.NewTool("save_favorite",
			mcp.WithDescription("Save a named lighting preset for later recall."),
			mcp.WithString("name", mcp.Description("Preset name"), mcp.Required()),
			mcp.WithString("payload", mcp.Description("Preset body as a JSON object"), mcp.Required()),
			mcp.WithString("user_id", mcp.Description("Owner of the preset (default \"local\")")),
		),
		mcpSaveFavorite(deps),
	)

	s.AddTool(
		mcp.NewTool("list_favorites",
			mcp.WithDescription("List saved lighting presets."),
			mcp.WithString("user_id", mcp.Description("Owner of the presets (default \"local\")")),
		),
		mcpListFavorites(deps),
	)

	// Resources
	s.AddResource(
		mcp.NewResource(
			"lighting://effects",
			"Effect Catalog",
			mcp.WithResourceDescription("Known WLED effects with IDs and mood descriptions"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceEffects(),
	)

	return s
}

func mcpGeneratePlan() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		days := req.GetStringSlice("days", nil)
		if len(days) == 0 {
			return mcpError("days is required"), nil
		}

		cfg := variety.Config{
			Festive: req.GetBool("festive", false),
		}
		if b := req.GetInt("brightness", -1); b >= 0 {
			if b > 255 {
				b = 255
			}
			cfg.BrightnessOverride = &b
		}
		if raw := req.GetArguments()["theme_colors"]; raw != nil {
			colors, err := parseColorArg(raw)
			if err != nil {
				return mcpError(fmt.Sprintf("invalid theme_colors: %v", err)), nil
			}
			cfg.ThemeColors = colors
		}

		entries := variety.Generate(days, cfg)
		b, err := json.Marshal(entries)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal plan: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

// parseColorArg converts a JSON tool argument into an RGB triple list.
func parseColorArg(raw any) ([][]int, error) {
	rows, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("expected an array of [r,g,b] triples")
	}
	out := make([][]int, 0, len(rows))
	for i, row := range rows {
		channels, ok := row.([]any)
		if !ok || len(channels) < 3 {
			return nil, fmt.Errorf("entry %d is not an [r,g,b] triple", i)
		}
		c := make([]int, 3)
		for j := 0; j < 3; j++ {
			f, ok := channels[j].(float64)
			if !ok || f < 0 || f > 255 {
				return nil, fmt.Errorf("entry %d channel %d is not a 0-255 value", i, j)
			}
			c[j] = int(f)
		}
		out = append(out, c)
	}
	return out, nil
}

func mcpSaveFavorite(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcpError("name is required"), nil
		}
		payload, err := req.RequireString("payload")
		if err != nil {
			return mcpError("payload is required"), nil
		}
		if !json.Valid([]byte(payload)) {
			return mcpError("payload must be valid JSON"), nil
		}

		userID := req.GetString("user_id", mcpUser)
		if err := deps.Store.SaveFavorite(ctx, storage.Favorite{
			UserID:      userID,
			Name:        name,
			PayloadJSON: payload,
		}); err != nil {
			return mcpError(fmt.Sprintf("failed to save: %v", err)), nil
		}

		return mcpText(fmt.Sprintf("Saved favorite %q", name)), nil
	}
}

func mcpListFavorites(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userID := req.GetString("user_id", mcpUser)
		favs, err := deps.Store.ListFavorites(ctx, userID)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to list favorites: %v", err)), nil
		}
		if len(favs) == 0 {
			return mcpText("[]"), nil
		}

		b, err := json.Marshal(renderFavorites(favs))
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal favorites: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceEffects() server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(prompt.Effects)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal effect catalog: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
