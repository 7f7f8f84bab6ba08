package flowcfg

import (
	"fmt"
	"os"

	"github.com/user/scrapeflow/internal/flow"
	"gopkg.in/yaml.v3"
)

// StepDef is the YAML form of one workflow step. Action names are resolved
// against a Registry at build time; conditions are expr-lang expressions over
// the workflow context.
type StepDef struct {
	Name      string `yaml:"name"`
	Action    string `yaml:"action"`
	Required  bool   `yaml:"required"`
	Retryable bool   `yaml:"retryable"`
	Condition string `yaml:"condition"`
}

// Definition is a declarative workflow.
type Definition struct {
	Name  string    `yaml:"name"`
	Steps []StepDef `yaml:"steps"`
}

// Registry maps action names used in definitions to executable actions.
type Registry map[string]flow.Action

// Load reads a workflow definition from a YAML file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow definition: %w", err)
	}
	return Parse(data)
}

// Parse decodes a workflow definition from YAML bytes.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("unmarshalling workflow definition: %w", err)
	}
	if def.Name == "" {
		return nil, fmt.Errorf("workflow definition has no name")
	}
	if len(def.Steps) == 0 {
		return nil, fmt.Errorf("workflow %s: definition has no steps", def.Name)
	}
	return &def, nil
}

// Build resolves a definition into a runnable workflow. Every action must be
// registered; conditions are compiled up front so a bad expression fails at
// build time, not mid-run.
func Build(def *Definition, registry Registry, opts ...flow.Option) (*flow.Workflow, error) {
	w := flow.NewWorkflow(def.Name, opts...)

	seen := make(map[string]bool, len(def.Steps))
	for _, sd := range def.Steps {
		if sd.Name == "" {
			return nil, fmt.Errorf("workflow %s: step with action %q has no name", def.Name, sd.Action)
		}
		if seen[sd.Name] {
			return nil, fmt.Errorf("workflow %s: duplicate step name %q", def.Name, sd.Name)
		}
		seen[sd.Name] = true

		action, ok := registry[sd.Action]
		if !ok {
			return nil, fmt.Errorf("workflow %s: step %s references unknown action %q", def.Name, sd.Name, sd.Action)
		}

		step := flow.Step{
			Name:      sd.Name,
			Action:    action,
			Required:  sd.Required,
			Retryable: sd.Retryable,
		}
		if sd.Condition != "" {
			cond, err := flow.ExprCondition(sd.Condition)
			if err != nil {
				return nil, fmt.Errorf("workflow %s: step %s: %w", def.Name, sd.Name, err)
			}
			step.Condition = cond
		}
		w.AddStep(step)
	}

	return w, nil
}
