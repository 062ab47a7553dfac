package mcp

import (
	"context"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xfocus/internal/config"
	"github.com/1broseidon/xfocus/internal/x11"
)

const (
	ServerName    = "xfocus"
	ServerVersion = "0.1.0"
)

// Focuser finds and focuses client windows.
type Focuser interface {
	FocusTarget(t config.Target) *x11.Window
	Windows() []*x11.Window
}

// DesktopState reports window manager state shown in listings.
type DesktopState interface {
	CurrentDesktop() (uint32, bool)
	ActiveWindow() xproto.Window
}

// Server is the MCP server exposing window focus over stdio.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	logger    *slog.Logger

	// The X connection is not safe for concurrent use; tool calls are
	// serialised on mu.
	mu      sync.Mutex
	focuser Focuser
	desktop DesktopState
}

// NewServer creates an MCP server backed by focuser.
func NewServer(cfg *config.Config, focuser Focuser, desktop DesktopState, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:  cfg,
		logger:  logger,
		focuser: focuser,
		desktop: desktop,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_window",
		Description: "Focus the first X11 client window matching an exact title, or a WM_CLASS class and instance pair. Switches to the window's desktop, maps and raises it. Returns focused=false when nothing matches.",
	}, s.handleFocusWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "focus_target",
		Description: "Focus a window by a target name defined in the xfocus config (targets section). Returns focused=false when no window matches the target.",
	}, s.handleFocusTarget)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_windows",
		Description: "List the window manager's client windows with title, class, instance and desktop. Marks the active window.",
	}, s.handleListWindows)
}
