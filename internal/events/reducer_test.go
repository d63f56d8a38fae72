package events

import (
	"encoding/json"
	"testing"
)

func TestSnapshot_LastWriteWins(t *testing.T) {
	s := NewSnapshot()

	s.Apply(New(CollectionTasks, Inserted, "t1", map[string]string{"title": "v1"}))
	s.Apply(New(CollectionTasks, Updated, "t1", map[string]string{"title": "v2"}))

	row, ok := s.Get(CollectionTasks, "t1")
	if !ok {
		t.Fatalf("expected row present")
	}
	var got map[string]string
	if err := json.Unmarshal(row, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["title"] != "v2" {
		t.Fatalf("expected newest write, got %q", got["title"])
	}
}

func TestSnapshot_DeleteEvicts(t *testing.T) {
	s := NewSnapshot()

	s.Apply(New(CollectionGrinds, Inserted, "g1", map[string]int{"streak": 3}))
	s.Apply(New(CollectionGrinds, Inserted, "g2", map[string]int{"streak": 1}))
	if s.Len(CollectionGrinds) != 2 {
		t.Fatalf("expected 2 rows, got %d", s.Len(CollectionGrinds))
	}

	s.Apply(New(CollectionGrinds, Deleted, "g1", nil))
	if s.Len(CollectionGrinds) != 1 {
		t.Fatalf("expected 1 row after delete, got %d", s.Len(CollectionGrinds))
	}
	if _, ok := s.Get(CollectionGrinds, "g1"); ok {
		t.Fatalf("expected deleted row evicted")
	}
}

func TestSnapshot_CollectionsAreIndependent(t *testing.T) {
	s := NewSnapshot()

	s.Apply(New(CollectionTasks, Inserted, "x", map[string]bool{"ok": true}))
	s.Apply(New(CollectionGrinds, Deleted, "x", nil))

	if _, ok := s.Get(CollectionTasks, "x"); !ok {
		t.Fatalf("delete in one collection must not touch another")
	}
}

func TestSnapshot_DumpGroupsLiveRows(t *testing.T) {
	s := NewSnapshot()

	s.Apply(New(CollectionTasks, Inserted, "t1", map[string]string{"title": "one"}))
	s.Apply(New(CollectionTasks, Inserted, "t2", map[string]string{"title": "two"}))
	s.Apply(New(CollectionGrinds, Inserted, "g1", map[string]int{"streak": 2}))
	s.Apply(New(CollectionTasks, Deleted, "t2", nil))

	dump := s.Dump()
	if len(dump[CollectionTasks]) != 1 {
		t.Fatalf("expected 1 task row, got %d", len(dump[CollectionTasks]))
	}
	if len(dump[CollectionGrinds]) != 1 {
		t.Fatalf("expected 1 grind row, got %d", len(dump[CollectionGrinds]))
	}

	var row map[string]string
	if err := json.Unmarshal(dump[CollectionTasks][0], &row); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if row["title"] != "one" {
		t.Fatalf("expected the surviving row, got %q", row["title"])
	}
}

func TestSnapshot_FollowDrainsChannel(t *testing.T) {
	s := NewSnapshot()
	bus := NewBus()
	ch, cancel := bus.Subscribe(8)

	bus.Publish(New(CollectionTasks, Inserted, "a", map[string]string{"title": "one"}))
	bus.Publish(New(CollectionTasks, Inserted, "b", map[string]string{"title": "two"}))
	cancel()

	s.Follow(ch) // channel closed, Follow returns after draining

	if s.Len(CollectionTasks) != 2 {
		t.Fatalf("expected 2 rows applied, got %d", s.Len(CollectionTasks))
	}
}
