// Package config loads the YAML settings tree and exposes dotted-key lookups.
package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor TRENDING_CONFIG is given.
const DefaultPath = "config/config.yaml"

// ErrConfigNotFound is returned by Load when the config file does not exist.
var ErrConfigNotFound = eris.New("config file not found")

// Tree is a parsed configuration file. It is read-only once loaded.
type Tree struct {
	root map[string]any
}

// Load reads the YAML file at path, expands environment variables in its raw text
// and parses it. A .env file in the working directory is applied first when present.
func Load(path string) (*Tree, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrConfigNotFound, "failed to load %s", path)
		}
		return nil, eris.Wrapf(err, "failed to stat config file %s", path)
	}

	// Variables already set in the environment take precedence over .env.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to read config file %s", path)
	}
	return Parse(data)
}

// Parse expands environment variables in data and decodes it as YAML.
func Parse(data []byte) (*Tree, error) {
	root := map[string]any{}
	if err := yaml.Unmarshal([]byte(expandEnv(string(data))), &root); err != nil {
		return nil, eris.Wrap(err, "failed to parse config file")
	}
	return &Tree{root: root}, nil
}

// NewTree wraps an already decoded mapping.
func NewTree(root map[string]any) *Tree {
	if root == nil {
		root = map[string]any{}
	}
	return &Tree{root: root}
}

var envPattern = regexp.MustCompile(`\$(\w+|\{[^}]*\})`)

// expandEnv substitutes $VAR and ${VAR}. References to unset variables, and any
// other dollar sign, are left exactly as written.
func expandEnv(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(ref string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(ref[1:], "{"), "}")
		if v, ok := os.LookupEnv(name); ok && name != "" {
			return v
		}
		return ref
	})
}

// Get walks the tree along the dot separated key. It returns def as soon as a segment
// is missing or the current node is not a mapping. Values are returned untyped.
func (t *Tree) Get(key string, def any) any {
	var node any = t.root
	for _, segment := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return def
		}
		v, ok := m[segment]
		if !ok {
			return def
		}
		node = v
	}
	return node
}

// String returns the value at key as a string, or def.
func (t *Tree) String(key, def string) string {
	switch v := t.Get(key, nil).(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return def
	}
}

// Int returns the value at key as an int, or def. Numeric strings are accepted.
func (t *Tree) Int(key string, def int) int {
	switch v := t.Get(key, nil).(type) {
	case int:
		return v
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return def
		}
		return n
	default:
		return def
	}
}

// Strings returns the sequence at key as strings, or def. A scalar becomes a one element slice.
func (t *Tree) Strings(key string, def []string) []string {
	switch v := t.Get(key, nil).(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return def
		}
		return out
	case string:
		if v == "" {
			return def
		}
		return []string{v}
	default:
		return def
	}
}
