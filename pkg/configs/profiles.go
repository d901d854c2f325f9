package configs

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/robfreedy/dbtprofiles/pkg/dbterrors"
)

// ProfilesFileName is the file dbt reads connection profiles from.
const ProfilesFileName = "profiles.yml"

// Profile is one named dbt profile: a default target, its outputs, and
// optional global flags rendered into the document's config section.
type Profile struct {
	Name    string
	Target  string
	Outputs map[string]*TargetConfigs
	Globals *GlobalConfigs
}

// NewProfile returns a profile with a single output named target.
func NewProfile(name, target string, configs *TargetConfigs) *Profile {
	return &Profile{
		Name:    name,
		Target:  target,
		Outputs: map[string]*TargetConfigs{target: configs},
	}
}

// Render flattens every output and assembles the profiles.yml document shape:
//
//	<name>:
//	  target: <target>
//	  outputs:
//	    <output>: {flattened target configs}
//	config: {flattened global configs}
//
// Any flatten failure aborts the render.
func (p *Profile) Render() (map[string]interface{}, error) {
	if p.Name == "" {
		return nil, dbterrors.New(dbterrors.ErrorTypeValidation, "profile name must not be empty")
	}
	if _, ok := p.Outputs[p.Target]; !ok {
		return nil, dbterrors.Newf(dbterrors.ErrorTypeValidation, "default target %q has no matching output", p.Target)
	}

	outputs := make(map[string]interface{}, len(p.Outputs))
	for name, target := range p.Outputs {
		flat, err := Flatten(target)
		if err != nil {
			return nil, dbterrors.Wrap(err, dbterrors.ErrorTypeConfig, "failed to flatten target configs").
				WithDetail("output", name)
		}
		outputs[name] = flat
	}

	doc := map[string]interface{}{
		p.Name: map[string]interface{}{
			"target":  p.Target,
			"outputs": outputs,
		},
	}

	if p.Globals != nil {
		flat, err := Flatten(p.Globals)
		if err != nil {
			return nil, dbterrors.Wrap(err, dbterrors.ErrorTypeConfig, "failed to flatten global configs")
		}
		if len(flat) > 0 {
			doc["config"] = flat
		}
	}

	return doc, nil
}

// RenderYAML renders the profile to its YAML document.
func (p *Profile) RenderYAML() ([]byte, error) {
	doc, err := p.Render()
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(doc)
}

// WriteProfiles renders the profile and writes profiles.yml under dir,
// creating the directory if needed. The file is written 0600 since it holds
// revealed credentials. Returns the written path.
func WriteProfiles(dir string, p *Profile) (string, error) {
	data, err := p.RenderYAML()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", dbterrors.Wrap(err, dbterrors.ErrorTypeFile, "failed to create profiles directory").
			WithDetail("dir", dir)
	}

	path := filepath.Join(dir, ProfilesFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", dbterrors.Wrap(err, dbterrors.ErrorTypeFile, "failed to write profiles file").
			WithDetail("path", path)
	}

	return path, nil
}
