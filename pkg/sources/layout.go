package sources

// Layout names the documents of a data tree, relative to its root.
type Layout struct {
	Features   string `mapstructure:"features_file" yaml:"features_file"`
	Viewers    string `mapstructure:"viewers_file" yaml:"viewers_file"`
	FeatureRef string `mapstructure:"feature_ref_file" yaml:"feature_ref_file"`
	ToolRef    string `mapstructure:"tool_ref_file" yaml:"tool_ref_file"`
	ToolsIndex string `mapstructure:"tools_index" yaml:"tools_index"`
	TestsIndex string `mapstructure:"tests_index" yaml:"tests_index"`

	// DefaultToolFiles are read when the tools index is missing or empty.
	DefaultToolFiles []string `mapstructure:"default_tool_files" yaml:"default_tool_files"`
	// DefaultTestFiles are read when the tests index is missing or empty.
	DefaultTestFiles []string `mapstructure:"default_test_files" yaml:"default_test_files"`
}

// DefaultLayout is the layout of the published data tree.
func DefaultLayout() Layout {
	return Layout{
		Features:   "data/features_new.yml",
		Viewers:    "data/viewers.yml",
		FeatureRef: "data/feature_ref.yml",
		ToolRef:    "data/tool_ref.yml",
		ToolsIndex: "data/tools/index.json",
		TestsIndex: "data/_tests/index.json",
		DefaultToolFiles: []string{
			"data/tools/napari.yml",
			"data/tools/avivator.yml",
			"data/tools/a-template.yml",
		},
		DefaultTestFiles: []string{
			"data/_tests/2026-01-26-14-00-00.yml",
			"data/_tests/2026-01-26-16-00-00.yml",
			"data/_tests/2026-01-26-17-00-00.yml",
		},
	}
}

// WithDefaults fills the empty fields of l from DefaultLayout.
func (l Layout) WithDefaults() Layout {
	d := DefaultLayout()
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&l.Features, d.Features)
	fill(&l.Viewers, d.Viewers)
	fill(&l.FeatureRef, d.FeatureRef)
	fill(&l.ToolRef, d.ToolRef)
	fill(&l.ToolsIndex, d.ToolsIndex)
	fill(&l.TestsIndex, d.TestsIndex)
	if len(l.DefaultToolFiles) == 0 {
		l.DefaultToolFiles = d.DefaultToolFiles
	}
	if len(l.DefaultTestFiles) == 0 {
		l.DefaultTestFiles = d.DefaultTestFiles
	}
	return l
}
