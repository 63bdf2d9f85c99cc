package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownMessage is returned by ParseMessage for unrecognized types.
var ErrUnknownMessage = errors.New("bridge: unknown message type")

// Message is a content-script message, tagged by its "type" field.
type Message interface {
	Type() string
}

type BackgroundColorMessage struct {
	Color string `json:"color"`
}

type NavigationStateMessage struct {
	CanGoBack    bool   `json:"canGoBack"`
	CanGoForward bool   `json:"canGoForward"`
	URL          string `json:"url"`
	Title        string `json:"title"`
}

type TitleUpdateMessage struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type PopupBlockedMessage struct {
	URL    string `json:"url"`
	Name   string `json:"name,omitempty"`
	Specs  string `json:"specs,omitempty"`
	Method string `json:"method,omitempty"`
}

type ZoomAppliedMessage struct {
	ZoomLevel  float64 `json:"zoomLevel"`
	ZoomFactor float64 `json:"zoomFactor"`
	Method     string  `json:"method"`
}

type ZoomErrorMessage struct {
	Error string `json:"error"`
}

type ZoomResetMessage struct{}

func (BackgroundColorMessage) Type() string { return "backgroundColor" }
func (NavigationStateMessage) Type() string { return "navigationState" }
func (TitleUpdateMessage) Type() string     { return "titleUpdate" }
func (PopupBlockedMessage) Type() string    { return "popupBlocked" }
func (ZoomAppliedMessage) Type() string     { return "zoomApplied" }
func (ZoomErrorMessage) Type() string       { return "zoomError" }
func (ZoomResetMessage) Type() string       { return "zoomReset" }

// ParseMessage decodes a content-script message.
func ParseMessage(data []byte) (Message, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}

	var msg Message
	switch env.Type {
	case "backgroundColor":
		msg = &BackgroundColorMessage{}
	case "navigationState":
		msg = &NavigationStateMessage{}
	case "titleUpdate":
		msg = &TitleUpdateMessage{}
	case "popupBlocked":
		msg = &PopupBlockedMessage{}
	case "zoomApplied":
		msg = &ZoomAppliedMessage{}
	case "zoomError":
		msg = &ZoomErrorMessage{}
	case "zoomReset":
		return ZoomResetMessage{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("failed to parse %s message: %w", env.Type, err)
	}
	return deref(msg), nil
}

func deref(m Message) Message {
	switch m := m.(type) {
	case *BackgroundColorMessage:
		return *m
	case *NavigationStateMessage:
		return *m
	case *TitleUpdateMessage:
		return *m
	case *PopupBlockedMessage:
		return *m
	case *ZoomAppliedMessage:
		return *m
	case *ZoomErrorMessage:
		return *m
	}
	return m
}
