// Package mcp exposes a flowstudio.Studio to AI agents over the Model Context
// Protocol.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/flowstudio"
	"github.com/aretw0/flowstudio/internal/presentation/graph"
	"github.com/aretw0/flowstudio/pkg/clone"
	"github.com/aretw0/flowstudio/pkg/domain"
	"github.com/aretw0/flowstudio/pkg/validation"
)

// ConfigsURI lists the stored bot configs.
const ConfigsURI = "flowstudio://configs"

// ValidateResponse is the result of the validate_flow tool.
type ValidateResponse struct {
	OK     bool              `json:"ok" jsonschema_description:"True when no node has errors"`
	Report validation.Report `json:"report" jsonschema_description:"Per-node validation results"`
}

// GraphResponse is the result of the flow_graph tool.
type GraphResponse struct {
	Mermaid string `json:"mermaid" jsonschema_description:"Mermaid flowchart of the flow"`
}

// FlowResponse carries an edited flow.
type FlowResponse struct {
	Flow domain.UserFlowConfig `json:"flow" jsonschema_description:"The resulting flow"`
}

// Server wraps a Studio and exposes it as an MCP Server.
type Server struct {
	studio    *flowstudio.Studio
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(studio *flowstudio.Studio) *Server {
	s := &Server{
		studio:    studio,
		logger:    studio.Logger(),
		mcpServer: server.NewMCPServer("flowstudio-mcp", strings.TrimSpace(flowstudio.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops it when
// ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func flowArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("flow", mcp.Description("User flow config as a JSON object (optional if config is provided)")),
		mcp.WithString("config", mcp.Description("Name of a stored bot config whose flow is used")),
	}
}

func (s *Server) registerTools() {
	// TOOL: validate_flow
	opts := append(flowArgs(),
		mcp.WithDescription("Validate every node of a bot flow. Errors are reported per node in the UI language."),
		mcp.WithString("ui_language", mcp.Description("Language of the error messages (default en)")),
		mcp.WithOutputSchema[ValidateResponse](),
	)
	s.mcpServer.AddTool(mcp.NewTool("validate_flow", opts...), mcp.NewStructuredToolHandler(s.handleValidateFlow))

	// TOOL: clone_node
	opts = append(flowArgs(),
		mcp.WithDescription("Clone a selection of nodes with fresh IDs. Links inside the selection follow the clones."),
		mcp.WithString("node_ids", mcp.Required(), mcp.Description("JSON array of the node IDs to clone")),
		mcp.WithOutputSchema[clone.SubgraphClone](),
	)
	s.mcpServer.AddTool(mcp.NewTool("clone_node", opts...), mcp.NewStructuredToolHandler(s.handleCloneNode))

	// TOOL: apply_template
	opts = append(flowArgs(),
		mcp.WithDescription("Merge a named template into the flow."),
		mcp.WithString("template", mcp.Required(), mcp.Description("Template name, see list_templates")),
		mcp.WithOutputSchema[FlowResponse](),
	)
	s.mcpServer.AddTool(mcp.NewTool("apply_template", opts...), mcp.NewStructuredToolHandler(s.handleApplyTemplate))

	// TOOL: flow_graph
	opts = append(flowArgs(),
		mcp.WithDescription("Render the flow as a Mermaid flowchart. Invalid nodes are highlighted."),
		mcp.WithString("selected", mcp.Description("Node ID to highlight")),
		mcp.WithOutputSchema[GraphResponse](),
	)
	s.mcpServer.AddTool(mcp.NewTool("flow_graph", opts...), mcp.NewStructuredToolHandler(s.handleFlowGraph))

	// TOOL: list_templates
	s.mcpServer.AddTool(mcp.NewTool("list_templates",
		mcp.WithDescription("List the template names accepted by apply_template."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, _ := json.Marshal(s.studio.Templates().Names())
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleValidateFlow(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ValidateResponse, error) {
	flow, err := s.flow(ctx, args)
	if err != nil {
		return ValidateResponse{}, err
	}
	uiLang, _ := args["ui_language"].(string)
	report := s.studio.ValidateFlow(&flow, uiLang)
	return ValidateResponse{OK: report.OK(), Report: report}, nil
}

func (s *Server) handleCloneNode(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (clone.SubgraphClone, error) {
	flow, err := s.flow(ctx, args)
	if err != nil {
		return clone.SubgraphClone{}, err
	}
	var ids []string
	idsStr, _ := args["node_ids"].(string)
	if err := json.Unmarshal([]byte(idsStr), &ids); err != nil {
		return clone.SubgraphClone{}, fmt.Errorf("node_ids must be a JSON array of strings: %w", err)
	}
	if len(ids) == 0 {
		return clone.SubgraphClone{}, errors.New("node_ids is empty")
	}
	return s.studio.Clone(&flow, ids)
}

func (s *Server) handleApplyTemplate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (FlowResponse, error) {
	flow, err := s.flow(ctx, args)
	if err != nil {
		return FlowResponse{}, err
	}
	name, _ := args["template"].(string)
	out, err := s.studio.ApplyTemplate(flow, name)
	if err != nil {
		return FlowResponse{}, err
	}
	return FlowResponse{Flow: out}, nil
}

func (s *Server) handleFlowGraph(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GraphResponse, error) {
	flow, err := s.flow(ctx, args)
	if err != nil {
		return GraphResponse{}, err
	}
	overlay := &graph.GraphOverlay{}
	overlay.SelectedNode, _ = args["selected"].(string)
	for _, n := range s.studio.ValidateFlow(&flow, "").Failed() {
		overlay.InvalidNodes = append(overlay.InvalidNodes, n.ID)
	}
	return GraphResponse{Mermaid: graph.GenerateMermaid(&flow, overlay)}, nil
}

// flow reads the flow argument, or loads the flow of the named config.
func (s *Server) flow(ctx context.Context, args map[string]interface{}) (domain.UserFlowConfig, error) {
	if flowStr, ok := args["flow"].(string); ok && flowStr != "" {
		var flow domain.UserFlowConfig
		if err := json.Unmarshal([]byte(flowStr), &flow); err != nil {
			s.logger.Warn("MCP: flow rejected", "error", err, "size", len(flowStr))
			return domain.UserFlowConfig{}, fmt.Errorf("flow is not a valid user flow config: %w", err)
		}
		return flow, nil
	}
	name, _ := args["config"].(string)
	if name == "" {
		return domain.UserFlowConfig{}, errors.New("either flow or config is required")
	}
	cfg, err := s.studio.Load(ctx, name)
	if err != nil {
		return domain.UserFlowConfig{}, fmt.Errorf("load config %q: %w", name, err)
	}
	return cfg.UserFlowConfig, nil
}

func (s *Server) registerResources() {
	// EXPOSE: flowstudio://configs
	s.mcpServer.AddResource(mcp.NewResource(ConfigsURI, "Stored bot configs",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		names, err := s.studio.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list configs: %w", err)
		}
		jsonBytes, _ := json.Marshal(names)

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ConfigsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})

	// EXPOSE: flowstudio://configs/{name}
	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(ConfigsURI+"/{name}", "Bot config",
		mcp.WithTemplateMIMEType("application/json"),
	), s.readConfig)
}

func (s *Server) readConfig(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	name := strings.TrimPrefix(request.Params.URI, ConfigsURI+"/")
	cfg, err := s.studio.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %q: %w", name, err)
	}
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}
