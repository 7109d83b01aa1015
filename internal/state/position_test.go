package state

import (
	"testing"

	"main/internal/schema"
)

func TestPositionBook(t *testing.T) {
	b := NewPositionBook()

	b.Apply(schema.Position{Provider: "Sim", Symbol: "AAPL", Size: 100})
	b.Apply(schema.Position{Provider: "Sim", Symbol: "GME", Size: -50})
	b.Apply(schema.Position{Provider: "Alt", Symbol: "AAPL", Size: 25})
	// a later snapshot for the same pair replaces, never accumulates
	b.Apply(schema.Position{Provider: "Sim", Symbol: "AAPL", Size: 400})

	if got := b.Count(); got != 3 {
		t.Fatalf("count mismatch! should be 3 but got %d", got)
	}

	pos, ok := b.Position("Sim", "AAPL")
	if !ok || pos.Size != 400 {
		t.Fatalf("position mismatch! should be 400 but got %+v (ok=%v)", pos, ok)
	}

	if _, ok := b.Position("Sim", "TSLA"); ok {
		t.Fatalf("unexpected position for untracked symbol")
	}

	snap := b.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot length mismatch! should be 3 but got %d", len(snap))
	}
	// ordered by provider then symbol
	if snap[0].Provider != "Alt" || snap[1].Symbol != "AAPL" || snap[2].Symbol != "GME" {
		t.Fatalf("snapshot order mismatch! got %+v", snap)
	}
}
