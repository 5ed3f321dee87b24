package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Targets   []*targetBlock   `hcl:"target,block"`
	Viewports []*viewportBlock `hcl:"viewport,block"`
	Browsers  []*browserBlock  `hcl:"browser,block"`
	Options   []*optionsBlock  `hcl:"options,block"`
	Baselines []*baselineBlock `hcl:"baseline,block"`
	Remain    hcl.Body         `hcl:",remain"`
}

type targetBlock struct {
	BaseURL      *string `hcl:"base_url,optional"`
	ManifestPath *string `hcl:"manifest_path,optional"`
}

type viewportBlock struct {
	Name      string    `hcl:"name,label"`
	Width     int       `hcl:"width"`
	Height    int       `hcl:"height"`
	DeclRange hcl.Range `hcl:",def_range"`
}

type browserBlock struct {
	Name    string `hcl:"name,label"`
	Enabled *bool  `hcl:"enabled,optional"`
}

type optionsBlock struct {
	StabilizationTimeMs *int    `hcl:"stabilization_time_ms,optional"`
	Parallelize         *bool   `hcl:"parallelize,optional"`
	SelectorTimeoutMs   *int    `hcl:"selector_timeout_ms,optional"`
	InvalidComponents   *string `hcl:"invalid_components,optional"`
	FailOnEmpty         *bool   `hcl:"fail_on_empty,optional"`
	Workers             *int    `hcl:"workers,optional"`
	// SelectorOverrides is kept as an expression so that it can be converted
	// to map(string) with a precise error instead of gohcl's generic one.
	SelectorOverrides hcl.Expression `hcl:"selector_overrides,optional"`
}

type baselineBlock struct {
	Dir           *string  `hcl:"dir,optional"`
	UpdateMissing *bool    `hcl:"update_missing,optional"`
	S3            *s3Block `hcl:"s3,block"`
}

type s3Block struct {
	Endpoint  string  `hcl:"endpoint"`
	Bucket    string  `hcl:"bucket"`
	Prefix    *string `hcl:"prefix,optional"`
	AccessKey *string `hcl:"access_key,optional"`
	SecretKey *string `hcl:"secret_key,optional"`
	Region    *string `hcl:"region,optional"`
	UseSSL    *bool   `hcl:"use_ssl,optional"`
}
