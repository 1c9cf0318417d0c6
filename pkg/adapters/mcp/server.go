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

	"github.com/aretw0/handheld"
	"github.com/aretw0/handheld/internal/logging"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// StateURI is the resource exposing the current snapshot.
const StateURI = "handheld://state"

// StateResponse is the structured result of every tool.
type StateResponse struct {
	State    domain.WorkflowState `json:"state" jsonschema_description:"The current workflow snapshot"`
	Pages    []int                `json:"pages" jsonschema_description:"Report page numbers, newest first"`
	EditMode bool                 `json:"edit_mode" jsonschema_description:"Whether report delete controls are active"`
}

// Kiosk defines the runtime surface exposed to MCP clients.
type Kiosk interface {
	State() domain.WorkflowState
	Dispatch(ctx context.Context, controlID string, input map[string]string) error
	DeletePage(ctx context.Context, n int) error
	ToggleEditMode() bool
	EditMode() bool
	Pages() []int
}

// Server wraps a kiosk runtime and exposes it as an MCP Server.
type Server struct {
	kiosk     Kiosk
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(kiosk Kiosk, opts ...Option) *Server {
	s := &Server{
		kiosk:     kiosk,
		mcpServer: server.NewMCPServer("handheld-mcp", strings.TrimSpace(handheld.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP protocol over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Get the current workflow snapshot, report pages and edit mode."),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("dispatch",
		mcp.WithDescription("Trigger an operator control, as if the operator pressed it."),
		mcp.WithString("control", mcp.Required(), mcp.Description("Control id, e.g. btn-yes or standby-form")),
		mcp.WithString("input", mcp.Description("JSON object of form field values (optional)")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleDispatch))

	s.mcpServer.AddTool(mcp.NewTool("delete_page",
		mcp.WithDescription("Press the delete control of a report page."),
		mcp.WithNumber("page", mcp.Required(), mcp.Description("Logical page number")),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleDeletePage))

	s.mcpServer.AddTool(mcp.NewTool("toggle_edit_mode",
		mcp.WithDescription("Toggle report edit mode, showing or hiding every page delete control."),
		mcp.WithOutputSchema[StateResponse](),
	), mcp.NewStructuredToolHandler(s.handleToggleEditMode))
}

func (s *Server) snapshot() StateResponse {
	return StateResponse{
		State:    s.kiosk.State(),
		Pages:    s.kiosk.Pages(),
		EditMode: s.kiosk.EditMode(),
	}
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	return s.snapshot(), nil
}

func (s *Server) handleDispatch(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	control, _ := args["control"].(string)
	if control == "" {
		return StateResponse{}, errors.New("control is required")
	}

	input, err := parseInput(args["input"])
	if err != nil {
		return StateResponse{}, err
	}

	if err := s.kiosk.Dispatch(ctx, control, input); err != nil {
		s.logger.Warn("MCP Dispatch failed", "control", control, "err", err)
		return StateResponse{}, fmt.Errorf("dispatch failed: %w", err)
	}
	return s.snapshot(), nil
}

func (s *Server) handleDeletePage(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	page, ok := args["page"].(float64)
	if !ok || page < 1 {
		return StateResponse{}, fmt.Errorf("invalid page %v", args["page"])
	}

	if err := s.kiosk.DeletePage(ctx, int(page)); err != nil {
		s.logger.Warn("MCP DeletePage failed", "page_number", int(page), "err", err)
		return StateResponse{}, fmt.Errorf("delete page failed: %w", err)
	}
	return s.snapshot(), nil
}

func (s *Server) handleToggleEditMode(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	s.kiosk.ToggleEditMode()
	return s.snapshot(), nil
}

// parseInput accepts a JSON object string or an object argument.
func parseInput(raw any) (map[string]string, error) {
	input := make(map[string]string)
	var fields map[string]any
	switch v := raw.(type) {
	case nil:
		return input, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return input, nil
		}
		if err := json.Unmarshal([]byte(v), &fields); err != nil {
			return nil, fmt.Errorf("input must be a JSON object: %w", err)
		}
	case map[string]any:
		fields = v
	default:
		return nil, fmt.Errorf("input must be a JSON object, got %T", raw)
	}

	for k, v := range fields {
		if v != nil {
			input[k] = fmt.Sprint(v)
		}
	}
	return input, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(StateURI, "Current Workflow Snapshot",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to encode snapshot: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      StateURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
