package adapter

import (
	"gopkg.in/yaml.v3"

	"github.com/robfreedy/dbtprofiles/pkg/configs"
	"github.com/robfreedy/dbtprofiles/pkg/dbterrors"
)

// targetFile is the on-disk shape of a target configs file. The credentials
// block stays raw until the adapter named by type decodes it.
type targetFile struct {
	Type        string                 `yaml:"type"`
	Schema      string                 `yaml:"schema"`
	Threads     int                    `yaml:"threads"`
	Extras      map[string]interface{} `yaml:"extras"`
	Credentials map[string]interface{} `yaml:"credentials"`
}

// LoadTargetConfigs reads a target configs YAML file. When the file carries a
// credentials block, the adapter named by its type must be registered; an
// unregistered adapter fails here with a MissingCapabilityError.
func LoadTargetConfigs(filePath string) (*configs.TargetConfigs, error) {
	var tf targetFile
	if err := configs.Load(filePath, &tf); err != nil {
		return nil, err
	}

	if tf.Type == "" {
		return nil, dbterrors.New(dbterrors.ErrorTypeValidation, "target configs file must declare a type").
			WithDetail("path", filePath)
	}

	t := configs.NewTargetConfigs(tf.Type, tf.Schema)
	if tf.Threads > 0 {
		t.Threads = tf.Threads
	}
	t.Extras = tf.Extras

	if tf.Credentials != nil {
		creds, err := NewCredentials(tf.Type, tf.Credentials)
		if err != nil {
			return nil, err
		}
		t.Credentials = creds
	}

	return t, nil
}

// DecodeRaw decodes a raw credentials mapping into an adapter's typed
// credentials struct through its yaml tags, so secret fields unwrap through
// their own unmarshalling.
func DecodeRaw(raw map[string]interface{}, out interface{}) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return dbterrors.Wrap(err, dbterrors.ErrorTypeInternal, "failed to re-encode credentials mapping")
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return dbterrors.Wrap(err, dbterrors.ErrorTypeValidation, "failed to decode credentials mapping")
	}
	return nil
}
