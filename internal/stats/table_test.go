package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/saurabhk79/TypeRush/internal/model"
)

func TestTextTableAlignsColumns(t *testing.T) {
	tbl := newTextTable(column{title: "Char"}, column{title: "Misses", right: true}, column{title: "Share", right: true})
	tbl.add("e", "3", "75.0%")
	tbl.add("Space", "1", "25.0%")

	lines := tbl.lines()
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Char  Misses Share" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "e          3 75.0%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Space      1 25.0%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestTextTableTrimsTrailingPadding(t *testing.T) {
	tbl := newTextTable(column{title: "A"}, column{title: "Note"})
	tbl.add("xx")
	lines := tbl.lines()
	if lines[1] != "xx" {
		t.Fatalf("expected trailing padding to be trimmed, got %q", lines[1])
	}
}

func TestRenderErrorTableAlignmentAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	aggs := []model.ErrorAggregate{{Char: "e", Count: 3}, {Char: model.SpaceKey, Count: 1}}
	if err := RenderErrorTable(&buf, aggs); err != nil {
		t.Fatalf("render error table: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Most Missed Characters") || !strings.Contains(out, "Space      1 25.0%") {
		t.Fatalf("unexpected output: %q", out)
	}

	buf.Reset()
	if err := RenderErrorTable(&buf, nil); err != nil {
		t.Fatalf("render error table: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No errors recorded." {
		t.Fatalf("unexpected empty output: %q", buf.String())
	}
}
