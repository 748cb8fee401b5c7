package archive

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/emberveil/storyweave/internal/play"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleEvents() []play.Event {
	base := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
	return []play.Event{
		{ID: "e1", Kind: play.KindAction, Text: "I open the door", Origin: play.OriginPlayer, CreatedAt: base},
		{ID: "e2", Kind: play.KindNarration, Text: "The door creaks open.", Origin: play.OriginAI, CreatedAt: base.Add(time.Second)},
	}
}

func TestSaveAndGet(t *testing.T) {
	store := openTestStore(t)

	if err := store.SaveTranscript("sess-1", "The Hollow Crown", sampleEvents()); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := store.Get("sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "The Hollow Crown" {
		t.Fatalf("expected title round trip, got %q", got.Title)
	}
	if len(got.Events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got.Events))
	}
	if got.Events[0].Text != "I open the door" || got.Events[1].Kind != play.KindNarration {
		t.Fatalf("expected events in transcript order, got %+v", got.Events)
	}
	if got.Events[1].Origin != play.OriginAI {
		t.Fatalf("expected ai origin round trip, got %s", got.Events[1].Origin)
	}
}

func TestSaveReplacesEarlierArchive(t *testing.T) {
	store := openTestStore(t)

	if err := store.SaveTranscript("sess-1", "first", sampleEvents()[:1]); err != nil {
		t.Fatalf("save first: %v", err)
	}
	if err := store.SaveTranscript("sess-1", "second", sampleEvents()); err != nil {
		t.Fatalf("save second: %v", err)
	}

	got, err := store.Get("sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "second" || len(got.Events) != 2 {
		t.Fatalf("expected replacement archive, got title=%q events=%d", got.Title, len(got.Events))
	}
}

func TestGetMissing(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Get("no-such-session")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	store := openTestStore(t)
	store.clock = func() time.Time { return time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC) }
	if err := store.SaveTranscript("sess-1", "older", sampleEvents()); err != nil {
		t.Fatalf("save: %v", err)
	}
	store.clock = func() time.Time { return time.Date(2026, 3, 15, 21, 0, 0, 0, time.UTC) }
	if err := store.SaveTranscript("sess-2", "newer", sampleEvents()[:1]); err != nil {
		t.Fatalf("save: %v", err)
	}

	list, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 transcripts, got %d", len(list))
	}
	if list[0].SessionID != "sess-2" {
		t.Fatalf("expected most recent first, got %s", list[0].SessionID)
	}
	if list[0].EventCount != 1 || list[1].EventCount != 2 {
		t.Fatalf("unexpected event counts: %+v", list)
	}
}

func TestSaveEmptyTranscript(t *testing.T) {
	store := openTestStore(t)

	if err := store.SaveTranscript("sess-1", "", nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Get("sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Events) != 0 {
		t.Fatalf("expected empty transcript, got %d events", len(got.Events))
	}
}

func TestWriteYAML(t *testing.T) {
	transcript := Transcript{
		SessionID:  "sess-1",
		Title:      "The Hollow Crown",
		ArchivedAt: time.Date(2026, 3, 14, 21, 0, 0, 0, time.UTC),
		Events:     sampleEvents(),
	}

	var buf bytes.Buffer
	if err := WriteYAML(&buf, transcript); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"session_id: sess-1", "title: The Hollow Crown", "kind: action", "kind: narration", "I open the door"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected yaml to contain %q, got:\n%s", want, out)
		}
	}
}
