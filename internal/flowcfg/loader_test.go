package flowcfg

import (
	"context"
	"strings"
	"testing"

	"github.com/user/scrapeflow/internal/flow"
)

const sampleDefinition = `
name: product-scrape
steps:
  - name: navigate
    action: driver.navigate
    required: true
    retryable: true
  - name: archive
    action: store.archive
    condition: 'navigate != nil'
`

func testRegistry(calls *[]string) Registry {
	record := func(name string, value any) flow.Action {
		return func(ctx context.Context, wctx *flow.Context) (any, error) {
			*calls = append(*calls, name)
			return value, nil
		}
	}
	return Registry{
		"driver.navigate": record("driver.navigate", "page"),
		"store.archive":   record("store.archive", "stored"),
	}
}

func TestParseAndBuild(t *testing.T) {
	def, err := Parse([]byte(sampleDefinition))
	if err != nil {
		t.Fatal(err)
	}
	if def.Name != "product-scrape" {
		t.Errorf("Name = %q", def.Name)
	}
	if len(def.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2", len(def.Steps))
	}
	if !def.Steps[0].Required || !def.Steps[0].Retryable {
		t.Error("step flags not decoded")
	}

	var calls []string
	w, err := Build(def, testRegistry(&calls))
	if err != nil {
		t.Fatal(err)
	}

	result, err := w.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Error("run failed")
	}
	// The archive step's condition sees the navigate result in context.
	if len(calls) != 2 {
		t.Fatalf("calls = %v, want both steps to run", calls)
	}
	if result.FinalData["archive"] != "stored" {
		t.Errorf("FinalData[archive] = %v", result.FinalData["archive"])
	}
}

func TestBuildUnknownAction(t *testing.T) {
	def, err := Parse([]byte(sampleDefinition))
	if err != nil {
		t.Fatal(err)
	}

	var calls []string
	reg := testRegistry(&calls)
	delete(reg, "store.archive")

	_, err = Build(def, reg)
	if err == nil || !strings.Contains(err.Error(), "unknown action") {
		t.Errorf("err = %v, want unknown action error", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid yaml", "name: [unbalanced"},
		{"missing name", "steps:\n  - name: a\n    action: x"},
		{"no steps", "name: empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.body)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestBuildRejectsBadStepNames(t *testing.T) {
	tests := []struct {
		name  string
		steps []StepDef
	}{
		{"empty name", []StepDef{{Name: "", Action: "driver.navigate"}}},
		{"duplicate name", []StepDef{
			{Name: "a", Action: "driver.navigate"},
			{Name: "a", Action: "store.archive"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			def := &Definition{Name: "bad", Steps: tt.steps}
			if _, err := Build(def, testRegistry(&calls)); err == nil {
				t.Error("expected build error")
			}
		})
	}
}

func TestBuildBadCondition(t *testing.T) {
	def := &Definition{
		Name: "bad",
		Steps: []StepDef{
			{Name: "a", Action: "driver.navigate", Condition: "status =="},
		},
	}
	var calls []string
	if _, err := Build(def, testRegistry(&calls)); err == nil {
		t.Error("expected condition compile error")
	}
}
