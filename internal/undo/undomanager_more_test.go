package undo

import (
	"testing"
	"time"
)

func TestByteCapPrunesOldestKeepsNewest(t *testing.T) {
	m := NewManager(Config{MaxBytes: 8})
	t0 := time.Now()
	m.Push(snap("place", "xxxx", t0))
	m.Push(snap("move", "yyyy", t0.Add(time.Second)))
	m.Push(snap("resize", "zzzz", t0.Add(2*time.Second)))

	b, u, _ := m.Stats()
	if u != 2 || b != 8 {
		t.Fatalf("expected 2 steps / 8 bytes, got %d / %d", u, b)
	}
	s, _ := m.Undo(snap("", "", t0))
	if string(s.Blob) != "zzzz" {
		t.Fatalf("newest step lost, got %q", s.Blob)
	}
	s, _ = m.Undo(snap("", "", t0))
	if string(s.Blob) != "yyyy" {
		t.Fatalf("expected 'yyyy', got %q", s.Blob)
	}
	if _, ok := m.Undo(snap("", "", t0)); ok {
		t.Fatalf("oldest step should have been pruned")
	}
}

func TestSingleOversizedStepIsKept(t *testing.T) {
	m := NewManager(Config{MaxBytes: 2})
	m.Push(snap("place", "toolarge", time.Now()))
	if _, u, _ := m.Stats(); u != 1 {
		t.Fatalf("expected the only step to survive, got %d", u)
	}
}

func TestRedoAccountsBytes(t *testing.T) {
	m := NewManager(Config{MaxBytes: 1024})
	t0 := time.Now()
	m.Push(snap("move", "ab", t0))
	_, _ = m.Undo(snap("", "abcd", t0))
	if b, _, _ := m.Stats(); b != 0 {
		t.Fatalf("expected 0 bytes after undo, got %d", b)
	}
	_, _ = m.Redo(snap("", "ab", t0))
	if b, u, r := m.Stats(); b != 2 || u != 1 || r != 0 {
		t.Fatalf("after redo: %d bytes %d/%d", b, u, r)
	}
	if _, ok := m.Redo(snap("", "", t0)); ok {
		t.Fatalf("redo stack should be empty")
	}
}
