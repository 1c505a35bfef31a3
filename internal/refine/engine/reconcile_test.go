package engine

import (
	"strings"
	"testing"

	"github.com/stateofclarity/refinery/internal/core/domain"
)

func TestReconcileFirstWriterWins(t *testing.T) {
	edits := []domain.Edit{
		{Fixer: "fixer-clarity", Section: "intro", Content: "a"},
		{Fixer: "fixer-accuracy", Section: "intro", Content: "b"},
		{Fixer: "fixer-accuracy", Section: "body", Content: "c"},
		{Fixer: "fixer-sourcing", Section: "citations", Content: "d"},
	}

	made, skipped := reconcile(edits)
	if len(made) != 3 {
		t.Fatalf("made = %d edits, want 3", len(made))
	}
	if len(skipped) != 1 {
		t.Fatalf("skipped = %d edits, want 1", len(skipped))
	}
	if skipped[0].Fixer != "fixer-accuracy" || skipped[0].Section != "intro" {
		t.Errorf("skipped = %+v, want fixer-accuracy edit to intro", skipped[0])
	}
	if made[0].Content != "a" {
		t.Errorf("made[0] = %+v, want the first writer's edit", made[0])
	}
}

func TestReconcileSkipsRepeatEditBySameFixer(t *testing.T) {
	edits := []domain.Edit{
		{Fixer: "fixer-clarity", Section: "intro", Content: "first pass"},
		{Fixer: "fixer-clarity", Section: "intro", Content: "second pass"},
	}
	made, skipped := reconcile(edits)
	if len(made) != 1 || len(skipped) != 1 {
		t.Fatalf("made = %d, skipped = %d, want 1 and 1", len(made), len(skipped))
	}
	if made[0].Content != "first pass" {
		t.Errorf("kept edit = %q, want the first one", made[0].Content)
	}
}

func TestReconcileEmpty(t *testing.T) {
	made, skipped := reconcile(nil)
	if len(made) != 0 || len(skipped) != 0 {
		t.Errorf("made = %v, skipped = %v, want both empty", made, skipped)
	}
}

func TestApplyEditsReplacesSection(t *testing.T) {
	content := "## intro\n\nold intro text\n\n## body\n\nbody text\n"
	result := applyEdits(content, []domain.Edit{
		{Section: "intro", Content: "new intro text"},
	})

	if !strings.Contains(result, "new intro text") {
		t.Errorf("result missing new text:\n%s", result)
	}
	if strings.Contains(result, "old intro text") {
		t.Errorf("result still has old text:\n%s", result)
	}
	if !strings.Contains(result, "body text") {
		t.Errorf("result lost untouched section:\n%s", result)
	}
}

func TestApplyEditsAppendsNewSection(t *testing.T) {
	content := "## intro\n\nintro text\n"
	result := applyEdits(content, []domain.Edit{
		{Section: "citations", Content: "[1] ONS 2025"},
	})

	if !strings.Contains(result, "## citations") || !strings.Contains(result, "[1] ONS 2025") {
		t.Errorf("result missing appended section:\n%s", result)
	}
	if !strings.Contains(result, "intro text") {
		t.Errorf("result lost existing content:\n%s", result)
	}
}

func TestApplyEditsIgnoresEmptyContent(t *testing.T) {
	content := "## intro\n\nintro text\n"
	if got := applyEdits(content, []domain.Edit{{Section: "intro"}}); got != content {
		t.Errorf("applyEdits with empty content changed the brief:\n%s", got)
	}
}
