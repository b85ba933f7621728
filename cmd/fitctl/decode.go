package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// readDocument reads a YAML or JSON file into v. JSON is valid YAML, so one
// decoder covers both. A path of "-" reads stdin.
func readDocument(stdin io.Reader, path string, v any) error {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
