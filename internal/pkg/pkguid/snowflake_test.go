package pkguid

import (
	"testing"

	"github.com/bwmarrin/snowflake"
)

var _ StringID = (*Snowflake)(nil)

func TestGenerateRandomNodeIDRange(t *testing.T) {
	id, err := generateRandomNodeID()
	if err != nil {
		t.Fatalf("generateRandomNodeID: %v", err)
	}
	if id < 0 || id > 1023 {
		t.Fatalf("expected id within 0..1023, got %d", id)
	}
}

func TestSnowflakeGenerate(t *testing.T) {
	gen, err := NewSnowflake()
	if err != nil {
		t.Fatalf("NewSnowflake: %v", err)
	}
	id1 := gen.Generate()
	id2 := gen.Generate()
	if id1 == "" || id1 == id2 {
		t.Fatalf("expected unique non-empty ids, got %q and %q", id1, id2)
	}

	n1, err := snowflake.ParseBase36(id1)
	if err != nil {
		t.Fatalf("expected base36 id, got %q: %v", id1, err)
	}
	n2, err := snowflake.ParseBase36(id2)
	if err != nil {
		t.Fatalf("expected base36 id, got %q: %v", id2, err)
	}
	if n2 <= n1 {
		t.Fatalf("expected increasing ids, got %d then %d", n1, n2)
	}
}
