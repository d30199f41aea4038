// Package report renders verification results for people and tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/specialistvlad/argcegar/internal/cegar"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Report is the serialised form of a run.
type Report struct {
	RunID      string `yaml:"run_id" json:"run_id"`
	Program    string `yaml:"program" json:"program"`
	Verdict    string `yaml:"verdict" json:"verdict"`
	Reason     string `yaml:"reason,omitempty" json:"reason,omitempty"`
	Rounds     int    `yaml:"refinements" json:"refinements"`
	Nodes      int    `yaml:"arg_nodes" json:"arg_nodes"`
	Duration   string `yaml:"duration" json:"duration"`
	Precision  string `yaml:"precision,omitempty" json:"precision,omitempty"`
	Unreliable bool   `yaml:"unreliable,omitempty" json:"unreliable,omitempty"`
	Model      string `yaml:"model,omitempty" json:"model,omitempty"`
	// Counterexample lists the steps of the error path for UNSAFE.
	Counterexample []Step `yaml:"counterexample,omitempty" json:"counterexample,omitempty"`
}

// Step is one node of a counterexample and the edge taken from it.
type Step struct {
	Node     int    `yaml:"node" json:"node"`
	Location string `yaml:"location" json:"location"`
	Edge     string `yaml:"edge,omitempty" json:"edge,omitempty"`
}

// New builds the report of res.
func New(runID, program string, res *cegar.Result) *Report {
	r := &Report{
		RunID:      runID,
		Program:    program,
		Verdict:    string(res.Verdict),
		Reason:     res.Reason,
		Rounds:     res.Rounds,
		Nodes:      res.Nodes,
		Duration:   res.Duration.String(),
		Unreliable: res.Unreliable,
		Model:      res.Model,
	}
	if res.Precision != nil {
		r.Precision = res.Precision.String()
	}
	for _, el := range res.Counterexample {
		step := Step{Node: el.ID}
		if el.State != nil {
			step.Location = el.State.Location().String()
		}
		if el.Edge != nil {
			step.Edge = el.Edge.Text
		}
		r.Counterexample = append(r.Counterexample, step)
	}
	return r
}

// Encode writes r to w in format.
func (r *Report) Encode(w io.Writer, format string) error {
	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}
