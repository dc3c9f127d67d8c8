package yamlutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnmarshalStrict unmarshals YAML data with strict field checking enabled.
// Unknown fields cause an error so typos in configuration are caught at load time.
// An empty document leaves v untouched.
func UnmarshalStrict(data []byte, v interface{}) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	err := decoder.Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	errStr := err.Error()
	if strings.Contains(errStr, "field") && strings.Contains(errStr, "not found") {
		return fmt.Errorf("unknown configuration field (check for typos): %w", err)
	}
	return err
}

// LoadFileStrict reads path and decodes it with UnmarshalStrict.
func LoadFileStrict(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := UnmarshalStrict(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
