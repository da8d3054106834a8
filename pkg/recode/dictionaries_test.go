package recode

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMapUnmappedCodeBecomesUnknown(t *testing.T) {
	dicts := Defaults()
	got := Map(dicts.TStage, "T9")
	if got == nil || *got != Unknown {
		t.Fatalf("expected unmapped code to become %q, got %v", Unknown, got)
	}
}

func TestMapBlankStaysMissing(t *testing.T) {
	dicts := Defaults()
	if got := Map(dicts.GroupStage, "  "); got != nil {
		t.Fatalf("expected blank input to stay missing, got %q", *got)
	}
}

func TestDefaultConsolidations(t *testing.T) {
	dicts := Defaults()

	if got := Map(dicts.TStage, "T0"); got == nil || *got != "T1" {
		t.Fatalf("expected T0 folded into T1, got %v", got)
	}
	if got := Map(dicts.TStage, "TX"); got == nil || *got != Unknown {
		t.Fatalf("expected TX mapped to unknown, got %v", got)
	}
	if got := Map(dicts.Gleason, "7 (when breakdown not available)"); got == nil || *got != "3" {
		t.Fatalf("expected undifferentiated 7 in grade group 3, got %v", got)
	}
	if got := Map(dicts.StateRegions, "PR"); got == nil || *got != Unknown {
		t.Fatalf("expected PR mapped to unknown region, got %v", got)
	}
	if got := Map(dicts.GroupStage, "IVB"); got == nil || *got != "IV" {
		t.Fatalf("expected IVB consolidated to IV, got %v", got)
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dicts.yaml")
	content := []byte("group_stage:\n  \"IA\": \"I\"\nt_stage:\n  \"T5\": \"T4\"\ngleason:\n  \"11\": \"5\"\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	dicts, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load dictionaries: %v", err)
	}
	if got := Map(dicts.GroupStage, "IA"); got == nil || *got != "I" {
		t.Fatalf("expected IA mapped to I, got %v", got)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	dicts, err := Load("")
	if err != nil {
		t.Fatalf("expected defaults, got error %v", err)
	}
	if len(dicts.StateRegions) == 0 {
		t.Fatal("expected default state regions")
	}
}

func TestRank(t *testing.T) {
	if Rank(GleasonOrder, "3") != 2 {
		t.Fatalf("expected grade group 3 at rank 2, got %d", Rank(GleasonOrder, "3"))
	}
	if Rank(GleasonOrder, Unknown) != -1 {
		t.Fatal("unknown must be excluded from ranking")
	}
}
