// Package mcpserver exposes grammar correction as a Model Context Protocol
// tool.
package mcpserver

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolName is the name of the correction tool.
const ToolName = "correct_grammar"

// Corrector corrects a sentence.
type Corrector interface {
	Correct(ctx context.Context, text string) (string, error)
}

// CorrectInput is the tool input.
type CorrectInput struct {
	Text string `json:"text" jsonschema:"the English sentence to correct"`
}

// CorrectOutput is the tool output.
type CorrectOutput struct {
	Original  string `json:"original" jsonschema:"the sentence as submitted"`
	Corrected string `json:"corrected" jsonschema:"the corrected sentence"`
}

// New creates an MCP server offering the correction tool.
func New(c Corrector, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "grammar-corrector",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolName,
		Description: "Correct the grammar and spelling of an English sentence.",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in CorrectInput) (*mcp.CallToolResult, CorrectOutput, error) {
		corrected, err := c.Correct(ctx, in.Text)
		if err != nil {
			// reported to the client as a tool error
			return nil, CorrectOutput{}, err
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: corrected},
			},
		}, CorrectOutput{Original: in.Text, Corrected: corrected}, nil
	})

	return server
}

// Handler serves server over the streamable HTTP transport.
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}
