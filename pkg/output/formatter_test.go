package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/meetraj-vaghoshi/Sem-5-project/pkg/routing"
)

func TestPrintResult(t *testing.T) {
	res := routing.Compute([]routing.Edge{
		{From: "A", To: "B", Weight: 1},
		{From: "B", To: "C", Weight: 1},
		{From: "A", To: "C", Weight: 5},
		{From: "X", To: "Y", Weight: 1},
	}, "A")

	var buf bytes.Buffer
	PrintResult(&buf, res, Options{Color: false})
	out := buf.String()

	if strings.Contains(out, "\x1b[") {
		t.Error("color escapes emitted with Color disabled")
	}

	for _, want := range []string{
		"Distance-vector routing from A",
		"Routers: 5  Passes: 3",
		"Iter │ A │ B │ C │ X │ Y",
		"   0 │ 0 │ ∞ │ ∞ │ ∞ │ ∞",
		"   1 │ 0 │ 1 │ 5 │ ∞ │ ∞",
		"   2 │ 0 │ 1 │ 2 │ ∞ │ ∞",
		"next hop B  route A → B → C",
		"(source)",
		"unreachable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Negative cycle") {
		t.Error("unexpected negative cycle warning")
	}
}

func TestPrintResultNegativeCycle(t *testing.T) {
	res := routing.Compute([]routing.Edge{{From: "A", To: "A", Weight: -3}}, "A")

	var buf bytes.Buffer
	PrintResult(&buf, res, Options{})

	if !strings.Contains(buf.String(), "Negative cycle detected") {
		t.Errorf("negative cycle warning missing:\n%s", buf.String())
	}
}

func TestPrintResultLinks(t *testing.T) {
	res := routing.Compute([]routing.Edge{{From: "A", To: "B", Weight: 5}}, "A")

	var buf bytes.Buffer
	PrintResult(&buf, res, Options{Links: []Link{
		{Router: "A", Neighbours: []string{"B", "CORE"}},
		{Router: "CORE", Neighbours: []string{"A"}},
		{Router: "Z"},
	}})

	for _, want := range []string{"Links:", "  A    B, CORE\n", "  CORE A\n", "  Z    (none)\n"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	PrintResult(&buf, res, Options{})
	if strings.Contains(buf.String(), "Links:") {
		t.Error("links section printed without links")
	}
}

func TestPrintResultColor(t *testing.T) {
	res := routing.Compute([]routing.Edge{{From: "A", To: "B", Weight: 5}}, "A")

	var buf bytes.Buffer
	PrintResult(&buf, res, Options{Color: true})

	if !strings.Contains(buf.String(), "\x1b[") {
		t.Error("expected ANSI escapes with Color enabled")
	}
}

func TestWriteJSON(t *testing.T) {
	res := routing.Compute([]routing.Edge{{From: "A", To: "B", Weight: 5}}, "A")

	var buf bytes.Buffer
	if err := WriteJSON(&buf, res); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	for _, key := range []string{"distances", "hasNegativeCycle", "iterationSnapshots", "nodes"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("JSON missing %q", key)
		}
	}
}
