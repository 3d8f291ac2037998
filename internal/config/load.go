package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a config file, expands environment variables in its raw
// text, and decodes it on top of Default(). The format is chosen by
// extension: ".yaml"/".yml" decodes as YAML (strict, unknown fields
// rejected); anything else decodes as JSON (mco.json is the documented
// default), also rejecting unknown fields to catch typos early.
//
// A missing path is not an error only when path equals the conventional
// default ("mco.json"); callers that pass an explicit --config path
// get a real error if it's missing.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == "mco.json" {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config file %q: %w", path, err)
	}

	expanded := ExpandEnv(string(data))

	var fileCfg Config
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
		dec.KnownFields(true)
		if err := dec.Decode(&fileCfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("invalid YAML in %s: %w", path, err)
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader([]byte(expanded)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&fileCfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("invalid JSON in %s: %w", path, err)
		}
	}

	return Default().Merge(fileCfg), nil
}
