package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/shotgrid/internal/config"
	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/model"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

func translateTarget(m *config.Model, t *targetBlock) {
	if t.BaseURL != nil {
		m.Target.BaseURL = *t.BaseURL
	}
	if t.ManifestPath != nil {
		m.Target.ManifestPath = *t.ManifestPath
	}
}

func translateViewport(v *viewportBlock) model.Viewport {
	return model.Viewport{Name: v.Name, Width: v.Width, Height: v.Height}
}

// translateBrowser treats a browser block without `enabled` as enabled.
func translateBrowser(b *browserBlock) model.Browser {
	enabled := true
	if b.Enabled != nil {
		enabled = *b.Enabled
	}
	return model.Browser{Name: b.Name, Enabled: enabled}
}

func translateOptions(ctx context.Context, m *config.Model, o *optionsBlock, evalCtx *hcl.EvalContext) error {
	opts := &m.Options
	if o.StabilizationTimeMs != nil {
		opts.StabilizationTimeMs = *o.StabilizationTimeMs
	}
	if o.Parallelize != nil {
		opts.Parallelize = *o.Parallelize
	}
	if o.SelectorTimeoutMs != nil {
		opts.SelectorTimeoutMs = *o.SelectorTimeoutMs
	}
	if o.InvalidComponents != nil {
		opts.InvalidComponents = config.InvalidComponentPolicy(*o.InvalidComponents)
	}
	if o.FailOnEmpty != nil {
		opts.FailOnEmpty = *o.FailOnEmpty
	}
	if o.Workers != nil {
		opts.Workers = *o.Workers
	}
	if o.SelectorOverrides != nil {
		overrides, err := decodeStringMap(ctx, o.SelectorOverrides, evalCtx)
		if err != nil {
			return fmt.Errorf("selector_overrides: %w", err)
		}
		for name, sel := range overrides {
			opts.SelectorOverrides[name] = sel
		}
	}
	return nil
}

func translateBaseline(m *config.Model, b *baselineBlock) {
	if b.Dir != nil {
		m.Baseline.Dir = *b.Dir
	}
	if b.UpdateMissing != nil {
		m.Baseline.UpdateMissing = *b.UpdateMissing
	}
	if b.S3 == nil {
		return
	}
	s3 := &config.S3Baseline{Endpoint: b.S3.Endpoint, Bucket: b.S3.Bucket, Region: "us-east-1"}
	if b.S3.Prefix != nil {
		s3.Prefix = *b.S3.Prefix
	}
	if b.S3.AccessKey != nil {
		s3.AccessKey = *b.S3.AccessKey
	}
	if b.S3.SecretKey != nil {
		s3.SecretKey = *b.S3.SecretKey
	}
	if b.S3.Region != nil {
		s3.Region = *b.S3.Region
	}
	if b.S3.UseSSL != nil {
		s3.UseSSL = *b.S3.UseSSL
	}
	m.Baseline.S3 = s3
}

// decodeStringMap evaluates an object or map expression and converts it to
// map(string). A null value (the attribute was omitted) yields nil.
func decodeStringMap(ctx context.Context, expr hcl.Expression, evalCtx *hcl.EvalContext) (map[string]string, error) {
	logger := ctxlog.FromContext(ctx)

	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsWhollyKnown() {
		return nil, fmt.Errorf("value must be known at load time")
	}

	converted, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		return nil, fmt.Errorf("cannot convert %s to map of string: %w", val.Type().FriendlyName(), err)
	}
	if !val.Type().Equals(converted.Type()) {
		logger.Debug("Implicitly converted value type.",
			"from", val.Type().FriendlyName(),
			"to", converted.Type().FriendlyName(),
		)
	}

	var out map[string]string
	if err := gocty.FromCtyValue(converted, &out); err != nil {
		return nil, err
	}
	return out, nil
}
