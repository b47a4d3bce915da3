package daemon

import (
	"fmt"
	"testing"

	"convertsave/internal/provision"
)

func TestEventBufferOrdering(t *testing.T) {
	buf := NewEventBuffer()
	buf.Progress(provision.Event{Status: provision.StatusChecking, Message: "checking"})
	buf.Progress(provision.Event{Status: provision.StatusDownloading, Message: "downloading"})
	buf.Progress(provision.Event{Status: provision.StatusComplete, Message: "done"})

	events, cursor := buf.Since(0)
	if len(events) != 3 || cursor != 3 {
		t.Fatalf("got %d events, cursor %d", len(events), cursor)
	}
	for i, ev := range events {
		if ev.Seq != int64(i+1) {
			t.Fatalf("event %d has seq %d", i, ev.Seq)
		}
	}
	if events[2].Status != string(provision.StatusComplete) {
		t.Fatalf("terminal event %+v", events[2])
	}

	// Polling from the cursor yields nothing new.
	events, cursor = buf.Since(cursor)
	if len(events) != 0 || cursor != 3 {
		t.Fatalf("repoll returned %d events, cursor %d", len(events), cursor)
	}
}

func TestEventBufferPartialPoll(t *testing.T) {
	buf := NewEventBuffer()
	buf.Progress(provision.Event{Status: provision.StatusChecking, Message: "a"})
	buf.Progress(provision.Event{Status: provision.StatusDownloading, Message: "b"})

	events, _ := buf.Since(1)
	if len(events) != 1 || events[0].Message != "b" {
		t.Fatalf("events %+v", events)
	}
}

func TestEventBufferDropsOldest(t *testing.T) {
	buf := NewEventBuffer()
	total := eventBufferCap + 10
	for i := 0; i < total; i++ {
		buf.Progress(provision.Event{Status: provision.StatusDownloading, Message: fmt.Sprintf("m%d", i)})
	}

	events, cursor := buf.Since(0)
	if len(events) != eventBufferCap {
		t.Fatalf("buffer holds %d events", len(events))
	}
	if cursor != int64(total) {
		t.Fatalf("cursor %d, want %d", cursor, total)
	}
	// Sequence numbers stay monotonic across the drop.
	if events[0].Seq != int64(total-eventBufferCap+1) {
		t.Fatalf("oldest retained seq %d", events[0].Seq)
	}
}
