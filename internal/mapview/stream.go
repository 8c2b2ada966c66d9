package mapview

import (
	"encoding/json"
	"log/slog"

	"backend-mapty/internal/shared/geo"
)

type CommandKind string

const (
	CommandRenderMap       CommandKind = "render_map"
	CommandAddMarker       CommandKind = "add_marker"
	CommandRecenter        CommandKind = "recenter"
	CommandShowForm        CommandKind = "show_form"
	CommandHideForm        CommandKind = "hide_form"
	CommandListItem        CommandKind = "list_item"
	CommandClearList       CommandKind = "clear_list"
	CommandWarn            CommandKind = "warn"
	CommandRequestPosition CommandKind = "request_position"
)

// Command is one rendering instruction for the browser client.
type Command struct {
	Kind    CommandKind `json:"kind"`
	Coords  *geo.Coords `json:"coords,omitempty"`
	Zoom    int         `json:"zoom,omitempty"`
	Label   string      `json:"label,omitempty"`
	Item    *ListItem   `json:"item,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Broadcaster is satisfied by *stream.Hub.
type Broadcaster interface {
	Broadcast(topic string, payload []byte)
}

// StreamView publishes every call as a Command on one topic.
type StreamView struct {
	out   Broadcaster
	topic string
}

func NewStreamView(out Broadcaster, topic string) *StreamView {
	return &StreamView{out: out, topic: topic}
}

func (v *StreamView) Render(center geo.Coords, zoom int) {
	v.send(Command{Kind: CommandRenderMap, Coords: &center, Zoom: zoom})
}

func (v *StreamView) AddMarker(coords geo.Coords, label string) {
	v.send(Command{Kind: CommandAddMarker, Coords: &coords, Label: label})
}

func (v *StreamView) Recenter(coords geo.Coords, zoom int) {
	v.send(Command{Kind: CommandRecenter, Coords: &coords, Zoom: zoom})
}

func (v *StreamView) ShowForm(coords geo.Coords) {
	v.send(Command{Kind: CommandShowForm, Coords: &coords})
}

func (v *StreamView) HideForm() {
	v.send(Command{Kind: CommandHideForm})
}

func (v *StreamView) RenderListItem(item ListItem) {
	v.send(Command{Kind: CommandListItem, Item: &item})
}

func (v *StreamView) ClearList() {
	v.send(Command{Kind: CommandClearList})
}

func (v *StreamView) Warn(message string) {
	v.send(Command{Kind: CommandWarn, Message: message})
}

// RequestPosition asks the browser to report its location through the
// geolocation endpoints.
func (v *StreamView) RequestPosition() {
	v.send(Command{Kind: CommandRequestPosition})
}

func (v *StreamView) send(cmd Command) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		slog.Warn("encode view command", "kind", cmd.Kind, "topic", v.topic, "error", err)
		return
	}
	v.out.Broadcast(v.topic, payload)
}
