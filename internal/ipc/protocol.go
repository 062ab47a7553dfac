package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/xfocus/internal/x11"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandReload      CommandType = "RELOAD"
	CommandGetStatus   CommandType = "GET_STATUS"
	CommandFocus       CommandType = "FOCUS"
	CommandListWindows CommandType = "LIST_WINDOWS"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	Display       string   `json:"display"`
	Targets       int      `json:"targets"`
	Hotkeys       []string `json:"hotkeys,omitempty"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	DaemonRunning bool     `json:"daemon_running"`
}

// Values of FocusPayload.By.
const (
	MatchTitle = "title"
	MatchClass = "class"
)

// FocusPayload selects a window by exactly one of: a configured target
// name, a title, or a class/instance pair. When By is set the title or
// class/instance is matched literally, empty strings included.
type FocusPayload struct {
	Target   string `json:"target,omitempty"`
	By       string `json:"by,omitempty"`
	Title    string `json:"title,omitempty"`
	Class    string `json:"class,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// FocusData is the result of FOCUS.
type FocusData struct {
	Focused bool         `json:"focused"`
	Window  *x11.Summary `json:"window,omitempty"`
}

// WindowsData is the result of LIST_WINDOWS.
type WindowsData struct {
	CurrentDesktop *uint32       `json:"current_desktop,omitempty"`
	Windows        []x11.Summary `json:"windows"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
