package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"

	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable consulted by Load for a config file.
const PathEnv = "BUCKETFS_CONFIG"

// Load reads the file named by BUCKETFS_CONFIG, if set, and applies environment
// overrides on top of the defaults. The result is not validated.
func Load() (*Config, error) {
	if path := os.Getenv(PathEnv); path != "" {
		return LoadFromPath(path)
	}
	cfg := Default()
	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath reads a YAML config file and applies environment overrides on top
// of it. Unknown keys are rejected. The result is not validated.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overwrites every field carrying an env tag whose variable is set.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	return applyEnvValue(reflect.ValueOf(cfg).Elem(), lookup)
}

func applyEnvValue(v reflect.Value, lookup func(string) (string, bool)) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		sf := t.Field(i)

		if field.Kind() == reflect.Struct {
			if err := applyEnvValue(field, lookup); err != nil {
				return err
			}
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}
		raw, ok := lookup(name)
		if !ok {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(raw)
		case reflect.Bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("config: %s: %w", name, err)
			}
			field.SetBool(b)
		case reflect.Int, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, field.Type().Bits())
			if err != nil {
				return fmt.Errorf("config: %s: %w", name, err)
			}
			field.SetInt(n)
		default:
			return fmt.Errorf("config: %s: unsupported field kind %s", name, field.Kind())
		}
	}
	return nil
}
