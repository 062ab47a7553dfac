package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/xfocus/internal/config"
	"github.com/1broseidon/xfocus/internal/x11"
)

func (s *Server) handleFocusWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusWindowInput) (*mcpsdk.CallToolResult, FocusWindowOutput, error) {
	target, err := targetFromInput(args)
	if err != nil {
		return nil, FocusWindowOutput{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.focuser.FocusTarget(target)
	out := s.focusResult(w)
	out.Target = target.String()
	s.logger.Info("focus_window", "target", out.Target, "focused", out.Focused)
	return nil, out, nil
}

func (s *Server) handleFocusTarget(_ context.Context, _ *mcpsdk.CallToolRequest, args FocusTargetInput) (*mcpsdk.CallToolResult, FocusWindowOutput, error) {
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return nil, FocusWindowOutput{}, fmt.Errorf("name is required")
	}
	target, err := s.config.Target(name)
	if err != nil {
		if names := s.config.TargetNames(); len(names) > 0 {
			return nil, FocusWindowOutput{}, fmt.Errorf("%w (configured: %s)", err, strings.Join(names, ", "))
		}
		return nil, FocusWindowOutput{}, fmt.Errorf("%w (no targets configured)", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.focuser.FocusTarget(target)
	out := s.focusResult(w)
	out.Target = name
	s.logger.Info("focus_target", "target", name, "focused", out.Focused)
	return nil, out, nil
}

func (s *Server) handleListWindows(_ context.Context, _ *mcpsdk.CallToolRequest, args ListWindowsInput) (*mcpsdk.CallToolResult, ListWindowsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := ListWindowsOutput{Windows: []x11.Summary{}}
	active := xproto.Window(xproto.WindowNone)
	if s.desktop != nil {
		if current, ok := s.desktop.CurrentDesktop(); ok {
			out.CurrentDesktop = &current
		}
		active = s.desktop.ActiveWindow()
	}

	for _, w := range s.focuser.Windows() {
		if args.Desktop != nil && w.Desktop != *args.Desktop {
			continue
		}
		out.Windows = append(out.Windows, w.Summary(active))
	}
	return nil, out, nil
}

func (s *Server) focusResult(w *x11.Window) FocusWindowOutput {
	if w == nil {
		return FocusWindowOutput{}
	}
	summary := w.Summary(xproto.WindowNone)
	return FocusWindowOutput{Focused: true, Window: &summary}
}

// targetFromInput validates focus_window arguments the same way a configured
// target is validated.
func targetFromInput(args FocusWindowInput) (config.Target, error) {
	t := config.Target{
		Title:    args.Title,
		Class:    args.Class,
		Instance: args.Instance,
	}
	if err := t.Validate(); err != nil {
		return config.Target{}, err
	}
	return t, nil
}
