package hcl

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/shotgrid/internal/config"
	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/fsutil"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	// Environ supplies the variables exposed as `env`. Defaults to os.Environ.
	Environ func() []string
}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{Environ: os.Environ}
}

// Load orchestrates the HCL loading process: discover files, parse and decode
// each one, merge the blocks into a single model and validate it.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFiles(paths, ".hcl")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .hcl files found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	evalCtx := newEvalContext(l.environ())
	parser := hclparse.NewParser()
	m := config.New()
	var seen singletons

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		if err := l.merge(ctx, m, &root, evalCtx, &seen, file); err != nil {
			return nil, err
		}
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Debug("HCL loading complete.",
		"viewports", len(m.Viewports),
		"browsers", len(m.Browsers),
		"enabled_browsers", len(m.EnabledBrowsers()),
		"overrides", len(m.Options.SelectorOverrides),
	)
	return m, nil
}

func (l *Loader) environ() []string {
	if l.Environ == nil {
		return os.Environ()
	}
	return l.Environ()
}

// singletons remembers which file defined each block that may appear only once.
type singletons struct {
	target, options, baseline string
}

func (s *singletons) claim(slot *string, block, file string) error {
	if *slot != "" {
		return fmt.Errorf("%s block in %s: already defined in %s", block, file, *slot)
	}
	*slot = file
	return nil
}

// merge translates one decoded file into the model.
func (l *Loader) merge(ctx context.Context, m *config.Model, root *fileRoot, evalCtx *hcl.EvalContext, seen *singletons, file string) error {
	logger := ctxlog.FromContext(ctx).With("file", file)

	for _, t := range root.Targets {
		if err := seen.claim(&seen.target, "target", file); err != nil {
			return err
		}
		translateTarget(m, t)
	}
	for _, v := range root.Viewports {
		m.Viewports = append(m.Viewports, translateViewport(v))
	}
	for _, b := range root.Browsers {
		m.Browsers = append(m.Browsers, translateBrowser(b))
	}
	for _, o := range root.Options {
		if err := seen.claim(&seen.options, "options", file); err != nil {
			return err
		}
		if err := translateOptions(ctx, m, o, evalCtx); err != nil {
			return fmt.Errorf("options block in %s: %w", file, err)
		}
	}
	for _, b := range root.Baselines {
		if err := seen.claim(&seen.baseline, "baseline", file); err != nil {
			return err
		}
		translateBaseline(m, b)
	}

	logger.Debug("Merged HCL file.", "viewports", len(root.Viewports), "browsers", len(root.Browsers))
	return nil
}
