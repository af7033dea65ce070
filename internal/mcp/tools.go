package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/declscan/declscan/internal/discovery"
	"github.com/declscan/declscan/internal/extract"
	"github.com/declscan/declscan/internal/lang"
	"github.com/declscan/declscan/internal/model"
	"github.com/declscan/declscan/internal/source"
)

// declNode is the wire form of one declaration in tool responses.
type declNode struct {
	Kind      string     `json:"kind"`
	Name      string     `json:"name"`
	Signature string     `json:"signature,omitempty"`
	Line      int        `json:"line"`
	Children  []declNode `json:"children,omitempty"`
}

func toDeclNode(m *model.Model, id model.DeclID) declNode {
	d := m.Decl(id)
	node := declNode{
		Kind:      string(d.Kind),
		Name:      d.Name,
		Signature: d.Signature,
		Line:      d.Line,
	}
	for _, child := range d.Children {
		node.Children = append(node.Children, toDeclNode(m, child))
	}
	return node
}

func declTree(m *model.Model) []declNode {
	nodes := make([]declNode, 0, len(m.Roots()))
	for _, id := range m.Roots() {
		nodes = append(nodes, toDeclNode(m, id))
	}
	return nodes
}

// AddExtractTool registers declscan_extract: inline source content in,
// declaration tree out.
func AddExtractTool(s *server.MCPServer) {
	tool := mcp.NewTool(
		"declscan_extract",
		mcp.WithDescription("Extract the declaration tree (structs, classes, functions, typedefs, macros, ...) from a piece of source code. Returns nested declarations with names, signatures, and line numbers."),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Source code to extract declarations from")),
		mcp.WithString("language",
			mcp.Required(),
			mcp.Description("Language tag, e.g. 'c' or 'cpp'")),
	)

	s.AddTool(tool, handleExtract)
}

func handleExtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	argsMap, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	content, ok := argsMap["content"].(string)
	if !ok {
		return mcp.NewToolResultError("content parameter is required"), nil
	}
	language, ok := argsMap["language"].(string)
	if !ok || language == "" {
		return mcp.NewToolResultError("language parameter is required"), nil
	}

	m, err := extract.Extract(source.New("<inline>", []byte(content), language))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := struct {
		Language     string     `json:"language"`
		Declarations []declNode `json:"declarations"`
	}{Language: m.Language, Declarations: declTree(m)}

	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// AddScanTool registers declscan_scan: walk a directory tree and return
// per-file declaration summaries.
func AddScanTool(s *server.MCPServer, workers int) {
	tool := mcp.NewTool(
		"declscan_scan",
		mcp.WithDescription("Scan a directory tree for source files and summarize the declarations in each. Returns per-file declaration counts by kind plus top-level declaration names."),
		mcp.WithString("root",
			mcp.Required(),
			mcp.Description("Directory to scan")),
		mcp.WithArray("include",
			mcp.Description("Glob patterns selecting files to scan (e.g. ['**/*.c']). Empty means every supported file.")),
		mcp.WithArray("ignore",
			mcp.Description("Glob patterns for paths to skip (defaults cover .git, node_modules, build, target, vendor)")),
	)

	s.AddTool(tool, createScanHandler(workers))
}

type scanFileSummary struct {
	Path     string         `json:"path"`
	Language string         `json:"language,omitempty"`
	Counts   map[string]int `json:"counts,omitempty"`
	TopLevel []string       `json:"top_level,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func createScanHandler(workers int) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		root, ok := argsMap["root"].(string)
		if !ok || root == "" {
			return mcp.NewToolResultError("root parameter is required"), nil
		}
		include := stringSlice(argsMap["include"])
		ignore := stringSlice(argsMap["ignore"])

		disc, err := discovery.New(root, include, ignore)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		files, _, err := disc.Discover()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
		}

		results, err := extract.NewRunner(workers, nil).Run(ctx, files)
		if err != nil {
			return nil, fmt.Errorf("extraction failed: %w", err)
		}

		summaries := make([]scanFileSummary, 0, len(results))
		for _, res := range results {
			summary := scanFileSummary{Path: res.Path}
			if res.Err != nil {
				summary.Error = res.Err.Error()
			}
			if res.Model != nil {
				summary.Language = res.Model.Language
				counts := make(map[string]int)
				for kind, n := range res.Model.CountByKind() {
					counts[string(kind)] = n
				}
				if len(counts) > 0 {
					summary.Counts = counts
				}
				for _, id := range res.Model.Roots() {
					d := res.Model.Decl(id)
					if d.Name != "" {
						summary.TopLevel = append(summary.TopLevel, d.Name)
					}
				}
			}
			summaries = append(summaries, summary)
		}

		response := struct {
			Root  string            `json:"root"`
			Files []scanFileSummary `json:"files"`
			Total int               `json:"total"`
		}{Root: root, Files: summaries, Total: len(summaries)}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// AddLanguagesTool registers declscan_languages: the supported language
// profile table.
func AddLanguagesTool(s *server.MCPServer) {
	tool := mcp.NewTool(
		"declscan_languages",
		mcp.WithDescription("List the supported languages with their tags and file extensions."),
	)

	s.AddTool(tool, handleLanguages)
}

func handleLanguages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	type languageInfo struct {
		Name       string   `json:"name"`
		Tag        string   `json:"tag"`
		Extensions []string `json:"extensions"`
	}

	var languages []languageInfo
	for _, p := range lang.All() {
		languages = append(languages, languageInfo{
			Name:       p.Name,
			Tag:        p.Tag,
			Extensions: p.Extensions,
		})
	}

	jsonData, err := json.Marshal(struct {
		Languages []languageInfo `json:"languages"`
	}{Languages: languages})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// stringSlice coerces an MCP array argument into []string, dropping
// non-string elements.
func stringSlice(v interface{}) []string {
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
