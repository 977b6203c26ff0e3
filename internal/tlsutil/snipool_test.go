package tlsutil

import "testing"

func TestSNIPoolRoundRobin(t *testing.T) {
	p := NewSNIPool([]string{"a.example", "b.example", "c.example"}, StrategyRoundRobin)
	want := []string{"a.example", "b.example", "c.example", "a.example"}
	for i, w := range want {
		if got := p.Next(); got != w {
			t.Fatalf("Next #%d = %q, want %q", i, got, w)
		}
	}
}

func TestSNIPoolRandomStaysInPool(t *testing.T) {
	p := NewSNIPool([]string{"a.example", "b.example"}, "")
	if p.Strategy() != StrategyRandom {
		t.Fatalf("strategy = %q, want random", p.Strategy())
	}
	for i := 0; i < 50; i++ {
		if got := p.Next(); got != "a.example" && got != "b.example" {
			t.Fatalf("Next = %q", got)
		}
	}
}

func TestSNIPoolCopiesInput(t *testing.T) {
	names := []string{"a.example"}
	p := NewSNIPool(names, StrategyRandom)
	names[0] = "changed.example"
	if got := p.Next(); got != "a.example" {
		t.Fatalf("pool aliased caller slice: %q", got)
	}
	out := p.Names()
	out[0] = "x"
	if p.Names()[0] != "a.example" {
		t.Fatalf("Names returned internal slice")
	}
}

func TestSNIPoolEmpty(t *testing.T) {
	if got := NewSNIPool(nil, StrategyRoundRobin).Next(); got != "" {
		t.Fatalf("empty pool Next = %q", got)
	}
}
