package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/argcegar/internal/config"
	"github.com/specialistvlad/argcegar/internal/ctxlog"
	"github.com/specialistvlad/argcegar/internal/fsutil"
	"github.com/specialistvlad/argcegar/internal/hclutil"
	"github.com/specialistvlad/argcegar/internal/schema"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

var _ config.Loader = (*Loader)(nil)

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load discovers the files named by paths, parses every block from every
// file, and assembles one program plus its analysis options.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.Resolve(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var (
		programs  []*schema.Program
		functions []*schema.Function
		analysis  hcl.Blocks
	)
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root schema.File
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		content, diags := root.Remain.Content(schema.AnalysisBlock)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		programs = append(programs, root.Programs...)
		functions = append(functions, root.Functions...)
		analysis = append(analysis, content.Blocks...)
	}

	t := &translator{files: parser.Files()}
	program, err := t.program(programs, functions)
	if err != nil {
		return nil, err
	}
	opts, err := t.analysis(analysis)
	if err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.",
		"program", program.Name,
		"functions", len(program.Functions),
		"analysis_blocks", len(analysis),
	)
	return &config.Model{Program: program, Analysis: opts, Files: files}, nil
}

// analysis decodes the single optional `analysis` block over the defaults.
func (t *translator) analysis(blocks hcl.Blocks) (*config.Analysis, error) {
	opts := config.DefaultAnalysis()
	block, diags := hclutil.FindUniqueBlock(blocks, "analysis")
	if diags.HasErrors() {
		return nil, diags
	}
	if block == nil {
		return opts, nil
	}

	var a schema.Analysis
	if diags := gohcl.DecodeBody(block.Body, nil, &a); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode analysis block: %w", diags)
	}
	setString(&opts.InterpolationOrder, a.InterpolationOrder)
	setString(&opts.InterpolationStrategy, a.InterpolationStrategy)
	setString(&opts.PrecisionScope, a.PrecisionScope)
	setString(&opts.WaitlistOrder, a.WaitlistOrder)
	setString(&opts.RestartStrategy, a.RestartStrategy)
	if a.MaxRefinements != nil {
		opts.MaxRefinements = *a.MaxRefinements
	}
	if a.MaxPathLength != nil {
		opts.MaxPathLength = *a.MaxPathLength
	}
	if a.VerifyInterpolants != nil {
		opts.VerifyInterpolants = *a.VerifyInterpolants
	}
	if a.UseDefPruning != nil {
		opts.UseDefPruning = *a.UseDefPruning
	}
	if a.IgnoreLoopExitAssumes != nil {
		opts.IgnoreLoopExitAssumes = *a.IgnoreLoopExitAssumes
	}
	if a.RoundTimeout != nil && *a.RoundTimeout != "" {
		d, err := time.ParseDuration(*a.RoundTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid round_timeout %q: %w", *a.RoundTimeout, err)
		}
		opts.RoundTimeout = d
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
