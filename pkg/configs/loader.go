package configs

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robfreedy/dbtprofiles/pkg/dbterrors"
)

// Load reads a YAML file into out, substituting ${VAR_NAME} references with
// environment variable values first so credentials never have to live in the
// file itself.
func Load(filePath string, out interface{}) error {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: path is provided by the caller
	if err != nil {
		return dbterrors.Wrap(err, dbterrors.ErrorTypeFile, "failed to read config file").
			WithDetail("path", filePath)
	}

	content := substituteEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(content), out); err != nil {
		return dbterrors.Wrap(err, dbterrors.ErrorTypeConfig, "failed to parse YAML").
			WithDetail("path", filePath)
	}

	return nil
}

// Save writes cfg to a YAML file.
func Save(filePath string, cfg interface{}) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return dbterrors.Wrap(err, dbterrors.ErrorTypeInternal, "failed to marshal YAML")
	}

	if err := os.WriteFile(filePath, data, 0o600); err != nil {
		return dbterrors.Wrap(err, dbterrors.ErrorTypeFile, "failed to write config file").
			WithDetail("path", filePath)
	}

	return nil
}

// LoadGlobalConfigs reads a GlobalConfigs YAML file.
func LoadGlobalConfigs(filePath string) (*GlobalConfigs, error) {
	var g GlobalConfigs
	if err := Load(filePath, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
// Substituted values are emitted as-is, never rescanned, so a value that
// itself contains ${...} cannot trigger another round of expansion.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}

		b.WriteString(content[:start])
		b.WriteString(os.Getenv(content[start+2 : start+end]))
		content = content[start+end+1:]
	}
	b.WriteString(content)
	return b.String()
}
