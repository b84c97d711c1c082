package config

import (
	"strconv"

	"sakila-bench/bench"

	"github.com/magiconair/properties"
)

const (
	KeyUser     = "user"
	KeyPassword = "password"
	KeyURL      = "url"
	KeyDatabase = "database"
)

var requiredKeys = []string{KeyUser, KeyPassword, KeyURL, KeyDatabase}

// Behavior flags and their values when the source does not set them.
var defaultFlags = map[string]string{
	bench.ParamServerPrepare: "false",
	bench.ParamCachePrepare:  "false",
}

// Loader reads the named source into key/value pairs.
type Loader func(name string) (map[string]string, error)

// LoadProperties reads a Java-style .properties file.
func LoadProperties(name string) (map[string]string, error) {
	p, err := properties.LoadFile(name, properties.UTF8)
	if err != nil {
		return nil, err
	}
	return p.Map(), nil
}

// MapLoader serves every name from m.
func MapLoader(m map[string]string) Loader {
	return func(string) (map[string]string, error) {
		out := make(map[string]string, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	}
}

// Resolve builds a ConnConfig from the named source. A missing required
// key or an unreadable source yields *bench.ConfigurationError.
func Resolve(load Loader, name string) (bench.ConnConfig, error) {
	kv, err := load(name)
	if err != nil {
		return bench.ConnConfig{}, &bench.ConfigurationError{Source: name, Err: err}
	}

	var missing []string
	for _, k := range requiredKeys {
		if _, ok := kv[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return bench.ConnConfig{}, &bench.ConfigurationError{Source: name, Missing: missing}
	}

	cfg := bench.ConnConfig{
		URL:      kv[KeyURL],
		Database: kv[KeyDatabase],
		User:     kv[KeyUser],
		Password: kv[KeyPassword],
	}
	for k, def := range defaultFlags {
		v, ok := kv[k]
		if !ok {
			cfg = cfg.WithParam(k, def)
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return bench.ConnConfig{}, &bench.ConfigurationError{Source: name, Err: err}
		}
		cfg = cfg.WithParam(k, strconv.FormatBool(b))
	}
	return cfg, nil
}
