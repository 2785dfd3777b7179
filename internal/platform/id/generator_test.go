package id

import (
	"strings"
	"testing"
)

func TestTimeOrderedGenerator(t *testing.T) {
	t.Parallel()

	gen := NewTimeOrderedGenerator("run_")
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}

	if !strings.HasPrefix(first, "run_") || len(first) != len("run_")+36 {
		t.Fatalf("unexpected id shape: %q", first)
	}
	if first == second {
		t.Fatalf("expected distinct ids")
	}
	if second < first {
		t.Fatalf("expected time-ordered ids: %s then %s", first, second)
	}
}
