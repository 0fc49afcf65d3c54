// Package loader reads textcore configuration sources into maps.
//
// Files are parsed as TOML or YAML depending on their extension, and
// TEXTCORE_ environment variables are mapped onto dotted setting paths.
// The resulting maps are combined with DeepMerge; later sources win.
package loader

import "os"

// Source is anything that yields a settings map. A source that does not
// exist yields nil and no error.
type Source interface {
	Load() (map[string]any, error)
}

var (
	_ Source = (*FileLoader)(nil)
	_ Source = (*EnvLoader)(nil)
)

// FileSystem reads configuration files. Tests substitute an in-memory
// implementation.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// LoadAll loads each source in order and merges the results.
func LoadAll(sources ...Source) (map[string]any, error) {
	merged := make(map[string]any)
	for _, src := range sources {
		m, err := src.Load()
		if err != nil {
			return nil, err
		}
		merged = DeepMerge(merged, m)
	}
	return merged, nil
}
