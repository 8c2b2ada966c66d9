package mapview

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/stream"
	"backend-mapty/internal/workout"
)

func TestNewListItemRunning(t *testing.T) {
	f := &workout.Factory{
		Clock: func() time.Time { return time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC) },
		NewID: func() string { return "r1" },
	}
	item := NewListItem(f.Running(geo.NewCoords(1, 2), 5, 26, 180))

	if item.ID != "r1" || item.Type != workout.TypeRunning {
		t.Fatalf("unexpected identity: %+v", item)
	}
	if item.Title != "Running - 5 March  2024" {
		t.Fatalf("unexpected title %q", item.Title)
	}
	if item.Distance != "5" || item.Duration != "26" {
		t.Fatalf("unexpected distance/duration: %+v", item)
	}
	if item.Metric != "5.2" || item.MetricUnit != "min/km" {
		t.Fatalf("unexpected metric: %s %s", item.Metric, item.MetricUnit)
	}
	if item.Extra != "180" || item.ExtraUnit != "step" {
		t.Fatalf("unexpected extra: %s %s", item.Extra, item.ExtraUnit)
	}
}

func TestNewListItemCycling(t *testing.T) {
	item := NewListItem(workout.NewCycling(geo.NewCoords(1, 2), 27, 95, 523))
	if item.Metric != "17.1" || item.MetricUnit != "km/h" {
		t.Fatalf("unexpected metric: %s %s", item.Metric, item.MetricUnit)
	}
	if item.Extra != "523" || item.ExtraUnit != "m" {
		t.Fatalf("unexpected extra: %s %s", item.Extra, item.ExtraUnit)
	}
	if item.Coordinates != geo.NewCoords(1, 2) {
		t.Fatalf("unexpected coords")
	}
}

func TestStreamViewPublishesCommands(t *testing.T) {
	hub := stream.NewHub(nil)
	client := hub.Register("main")
	defer hub.Unregister(client)

	var view View = NewStreamView(hub, "main")
	view.Render(geo.NewCoords(51.505, -0.09), 13)
	view.AddMarker(geo.NewCoords(1, 2), "🏃‍♂️ running - 5 km")
	view.Recenter(geo.NewCoords(1, 2), 13)
	view.ShowForm(geo.NewCoords(3, 4))
	view.HideForm()
	view.RenderListItem(ListItem{ID: "x"})
	view.ClearList()
	view.Warn("Please enter a positive number!")
	NewStreamView(hub, "main").RequestPosition()

	want := []CommandKind{
		CommandRenderMap, CommandAddMarker, CommandRecenter, CommandShowForm,
		CommandHideForm, CommandListItem, CommandClearList, CommandWarn,
		CommandRequestPosition,
	}
	var got []Command
	for range want {
		var cmd Command
		if err := json.Unmarshal(<-client.Send, &cmd); err != nil {
			t.Fatalf("decode command: %v", err)
		}
		got = append(got, cmd)
	}
	for i, kind := range want {
		if got[i].Kind != kind {
			t.Fatalf("command %d: got %s want %s", i, got[i].Kind, kind)
		}
	}
	if got[0].Zoom != 13 || *got[0].Coords != geo.NewCoords(51.505, -0.09) {
		t.Fatalf("unexpected render command: %+v", got[0])
	}
	if got[1].Label != "🏃‍♂️ running - 5 km" {
		t.Fatalf("unexpected marker label %q", got[1].Label)
	}
	if got[5].Item == nil || got[5].Item.ID != "x" {
		t.Fatalf("expected list item payload")
	}
	if got[7].Message == "" {
		t.Fatalf("expected warning message")
	}
}

type countingBroadcaster struct {
	sent int
}

func (b *countingBroadcaster) Broadcast(string, []byte) {
	b.sent++
}

func TestStreamViewLogsUnencodableCommand(t *testing.T) {
	var buf bytes.Buffer
	old := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(old)

	out := &countingBroadcaster{}
	NewStreamView(out, "main").Render(geo.NewCoords(math.NaN(), 0), 13)

	if out.sent != 0 {
		t.Fatalf("expected nothing broadcast, got %d", out.sent)
	}
	logged := buf.String()
	if !strings.Contains(logged, "encode view command") || !strings.Contains(logged, "kind=render_map") {
		t.Fatalf("expected encode failure to be logged, got %q", logged)
	}
}
