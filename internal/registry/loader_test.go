package registry

import (
	"testing"

	"inferd/internal/config"
	"inferd/internal/models"
	"inferd/pkg/types"
)

func TestBuild(t *testing.T) {
	entries, err := Build([]config.ModelDef{
		{ID: "a", Kind: models.KindEcho},
		{ID: "b", Kind: models.KindReverse, LatencyMs: 10, Config: types.ModelConfig{Priority: 2}},
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].ID != "a" || entries[0].Runner.Kind() != models.KindEcho {
		t.Fatalf("entry 0 = %+v", entries[0])
	}
	if entries[1].Config.Priority != 2 {
		t.Fatalf("entry 1 config = %+v", entries[1].Config)
	}
}

func TestBuildEmpty(t *testing.T) {
	entries, err := Build(nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("entries = %d", len(entries))
	}
}

func TestBuildMissingID(t *testing.T) {
	if _, err := Build([]config.ModelDef{{Kind: models.KindEcho}}); err == nil {
		t.Fatalf("expected error for missing id")
	}
}

func TestBuildUnknownKind(t *testing.T) {
	if _, err := Build([]config.ModelDef{{ID: "x", Kind: "transformer"}}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
