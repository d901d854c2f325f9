package configs

// DefaultThreads is the number of parallel paths through the dbt graph
// a target allows when the profile does not say otherwise.
const DefaultThreads = 4

// adapterDiscriminator is the key credentials objects carry to name their
// adapter. It is internal metadata and must never reach profiles.yml, so
// every variant excludes it.
const adapterDiscriminator = "adapter"

// TargetConfigs holds the credentials and settings specific to the warehouse
// a profile output connects to. Valid extras keys are whatever the chosen
// adapter's profile setup accepts; duplicate keys between Extras, Credentials
// and the declared fields are rejected at flatten time.
type TargetConfigs struct {
	// Type names the warehouse adapter (postgres, snowflake, bigquery, mysql).
	Type string `yaml:"type" json:"type"`
	// Schema is the schema dbt builds objects into; in BigQuery terms, the dataset.
	Schema string `yaml:"schema" json:"schema"`
	// Threads is the max number of paths through the graph dbt may work on at once.
	Threads int `yaml:"threads" json:"threads"`
	// Extras carries adapter keywords not promoted to declared fields.
	Extras map[string]interface{} `yaml:"extras,omitempty" json:"extras,omitempty"`
	// Credentials, when non-nil, is a nested config object flattened
	// alongside the target's own fields.
	Credentials Node `yaml:"-" json:"-"`
}

// NewTargetConfigs returns a TargetConfigs for the given adapter type and
// schema with the default thread count.
func NewTargetConfigs(adapterType, schema string) *TargetConfigs {
	return &TargetConfigs{
		Type:    adapterType,
		Schema:  schema,
		Threads: DefaultThreads,
	}
}

// FieldSchema declares the target variant's field metadata. The generic and
// credentials-backed variants differ only in whether `credentials` joins the
// nested list.
func (t *TargetConfigs) FieldSchema() FieldSchema {
	nested := []string{"extras"}
	if t.Credentials != nil {
		nested = []string{"credentials", "extras"}
	}
	return FieldSchema{
		Include: []string{"type", "schema", "threads"},
		Exclude: []string{adapterDiscriminator},
		Nested:  nested,
	}
}

// ConfigFields returns the target's fields in declaration order.
func (t *TargetConfigs) ConfigFields() []Field {
	return []Field{
		{Name: "type", Value: t.Type},
		{Name: "schema", Value: t.Schema},
		{Name: "threads", Value: t.Threads},
		{Name: "credentials", Value: t.Credentials},
		{Name: "extras", Value: t.Extras},
	}
}

// GlobalConfigs controls dbt's logging, parsing, and failure behavior.
// Every field defaults to unset and is omitted from the flattened output
// until explicitly provided.
type GlobalConfigs struct {
	// SendAnonymousUsageStats reports whether usage stats are sent to dbt.
	SendAnonymousUsageStats *bool `yaml:"send_anonymous_usage_stats,omitempty" json:"send_anonymous_usage_stats,omitempty"`
	// UseColors colorizes terminal output.
	UseColors *bool `yaml:"use_colors,omitempty" json:"use_colors,omitempty"`
	// PartialParse lets dbt reuse its stored manifest to reparse only changed files.
	PartialParse *bool `yaml:"partial_parse,omitempty" json:"partial_parse,omitempty"`
	// PrinterWidth is the line length before wrapping.
	PrinterWidth *int `yaml:"printer_width,omitempty" json:"printer_width,omitempty"`
	// WriteJSON determines whether dbt writes JSON artifacts to target/.
	WriteJSON *bool `yaml:"write_json,omitempty" json:"write_json,omitempty"`
	// WarnError converts dbt warnings into errors.
	WarnError *bool `yaml:"warn_error,omitempty" json:"warn_error,omitempty"`
	// LogFormat selects dbt's log encoding (text, json, debug).
	LogFormat *string `yaml:"log_format,omitempty" json:"log_format,omitempty"`
	// Debug redirects dbt's debug logs to standard out.
	Debug *bool `yaml:"debug,omitempty" json:"debug,omitempty"`
	// VersionCheck errors when the project version needs an incompatible dbt.
	VersionCheck *bool `yaml:"version_check,omitempty" json:"version_check,omitempty"`
	// FailFast exits on the first resource that fails to build.
	FailFast *bool `yaml:"fail_fast,omitempty" json:"fail_fast,omitempty"`
	// UseExperimentalParser opts into the experimental static parser.
	UseExperimentalParser *bool `yaml:"use_experimental_parser,omitempty" json:"use_experimental_parser,omitempty"`
	// StaticParser enables the static parser.
	StaticParser *bool `yaml:"static_parser,omitempty" json:"static_parser,omitempty"`
	// Extras carries global flags not promoted to declared fields.
	Extras map[string]interface{} `yaml:"extras,omitempty" json:"extras,omitempty"`
}

// FieldSchema declares the global variant's field metadata.
func (g *GlobalConfigs) FieldSchema() FieldSchema {
	return FieldSchema{
		Include: []string{
			"send_anonymous_usage_stats",
			"use_colors",
			"partial_parse",
			"printer_width",
			"write_json",
			"warn_error",
			"log_format",
			"debug",
			"version_check",
			"fail_fast",
			"use_experimental_parser",
			"static_parser",
		},
		Exclude: []string{adapterDiscriminator},
		Nested:  []string{"extras"},
	}
}

// ConfigFields returns the global flags in declaration order.
func (g *GlobalConfigs) ConfigFields() []Field {
	return []Field{
		{Name: "send_anonymous_usage_stats", Value: g.SendAnonymousUsageStats},
		{Name: "use_colors", Value: g.UseColors},
		{Name: "partial_parse", Value: g.PartialParse},
		{Name: "printer_width", Value: g.PrinterWidth},
		{Name: "write_json", Value: g.WriteJSON},
		{Name: "warn_error", Value: g.WarnError},
		{Name: "log_format", Value: g.LogFormat},
		{Name: "debug", Value: g.Debug},
		{Name: "version_check", Value: g.VersionCheck},
		{Name: "fail_fast", Value: g.FailFast},
		{Name: "use_experimental_parser", Value: g.UseExperimentalParser},
		{Name: "static_parser", Value: g.StaticParser},
		{Name: "extras", Value: g.Extras},
	}
}

// Bool returns a pointer to v, for setting optional boolean flags.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v, for setting optional integer flags.
func Int(v int) *int { return &v }

// String returns a pointer to v, for setting optional string flags.
func String(v string) *string { return &v }
