package loader

import (
	"os"
	"strconv"
	"strings"
)

// DefaultEnvPrefix is the prefix of environment variables read by
// NewEnvLoader when none is given.
const DefaultEnvPrefix = "TEXTCORE_"

// EnvLoader turns PREFIX_SECTION_SETTING variables into section.setting
// entries. Shortcut names registered with AddMapping take precedence.
type EnvLoader struct {
	prefix    string
	shortcuts map[string]string
	environ   func() []string
}

// NewEnvLoader reads variables starting with prefix, which includes the
// trailing underscore. An empty prefix selects DefaultEnvPrefix.
func NewEnvLoader(prefix string) *EnvLoader {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	l := &EnvLoader{prefix: prefix, environ: os.Environ}
	l.AddMapping(prefix+"LOG_LEVEL", "logging.level")
	l.AddMapping(prefix+"LOG_FORMAT", "logging.format")
	l.AddMapping(prefix+"LARGE_FILE_THRESHOLD", "buffer.large_file_threshold")
	l.AddMapping(prefix+"WATCH", "buffer.watch")
	return l
}

// Load implements Source. A variable set to the empty string yields an
// empty string setting.
func (l *EnvLoader) Load() (map[string]any, error) {
	settings := make(map[string]any)
	for _, kv := range l.environ() {
		name, raw, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if key := l.keyFor(name); key != "" {
			put(settings, strings.Split(key, "."), parseValue(raw))
		}
	}
	return settings, nil
}

// AddMapping maps the variable name to a dotted setting key.
func (l *EnvLoader) AddMapping(name, key string) {
	if l.shortcuts == nil {
		l.shortcuts = make(map[string]string)
	}
	l.shortcuts[name] = key
}

// keyFor returns the setting key for a variable, or "" if the variable is
// not ours or names no setting.
func (l *EnvLoader) keyFor(name string) string {
	if key, ok := l.shortcuts[name]; ok {
		return key
	}
	rest, ok := strings.CutPrefix(name, l.prefix)
	if !ok {
		return ""
	}
	section, setting, ok := strings.Cut(strings.ToLower(rest), "_")
	if !ok || section == "" || setting == "" {
		return ""
	}
	return section + "." + setting
}

// parseValue converts a variable's text to a bool, int64 or float64 when
// it reads as one, and leaves it a string otherwise. Only text containing
// a dot is tried as a float.
func parseValue(s string) any {
	switch strings.ToLower(s) {
	case "":
		return s
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if strings.ContainsRune(s, '.') {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// put stores value under the nested key path, creating or replacing
// intermediate tables.
func put(m map[string]any, path []string, value any) {
	last := len(path) - 1
	for _, k := range path[:last] {
		child, ok := m[k].(map[string]any)
		if !ok {
			child = make(map[string]any)
			m[k] = child
		}
		m = child
	}
	m[path[last]] = value
}
