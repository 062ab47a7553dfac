package mcp

import "github.com/1broseidon/xfocus/internal/x11"

// FocusWindowInput is the input for the focus_window tool.
type FocusWindowInput struct {
	Title    string `json:"title,omitempty" jsonschema:"Exact window title (_NET_WM_NAME). Mutually exclusive with class/instance."`
	Class    string `json:"class,omitempty" jsonschema:"WM_CLASS class name (e.g. Firefox). Requires instance."`
	Instance string `json:"instance,omitempty" jsonschema:"WM_CLASS instance name (e.g. navigator). Requires class."`
}

// FocusWindowOutput is the output for the focus_window and focus_target tools.
type FocusWindowOutput struct {
	Focused bool         `json:"focused"`
	Window  *x11.Summary `json:"window,omitempty"`
	Target  string       `json:"target,omitempty"`
}

// FocusTargetInput is the input for the focus_target tool.
type FocusTargetInput struct {
	Name string `json:"name" jsonschema:"required,Target name from the targets section of the xfocus config"`
}

// ListWindowsInput is the input for the list_windows tool.
type ListWindowsInput struct {
	Desktop *uint32 `json:"desktop,omitempty" jsonschema:"Only list windows on this desktop index"`
}

// ListWindowsOutput is the output for the list_windows tool.
type ListWindowsOutput struct {
	CurrentDesktop *uint32       `json:"current_desktop,omitempty"`
	Windows        []x11.Summary `json:"windows"`
}
