package config

import (
	"os"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load reads the configuration at path. An empty path or a missing file is
// not an error: the built-in defaults apply. Keys absent from the file keep
// their default values; unknown keys are rejected.
func Load(fs afero.Fs, path string) (*Configuration, error) {
	out := defaultConfig()
	if path == "" {
		return out, nil
	}

	contents, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.UnmarshalStrict(contents, out); err != nil {
		return nil, err
	}
	return out, nil
}
