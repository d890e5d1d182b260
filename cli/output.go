package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

func validateOutputFormat(outputFormat string) error {
	switch strings.ToLower(outputFormat) {
	case "table":
	case "yaml":
	case "json":
	default:
		return errors.Errorf("unknown output format %q", outputFormat)
	}
	return nil
}

// printStructured writes obj as yaml or json. It returns false if the format
// is tabular, in which case the caller renders the table itself.
func printStructured(
	out io.Writer,
	outputFormat string,
	obj interface{},
) (bool, error) {
	switch strings.ToLower(outputFormat) {
	case "yaml":
		yamlBytes, err := yaml.Marshal(obj)
		if err != nil {
			return true, errors.Wrap(err, "error formatting output")
		}
		fmt.Fprintln(out, string(yamlBytes))
		return true, nil
	case "json":
		prettyJSON, err := json.MarshalIndent(obj, "", "  ")
		if err != nil {
			return true, errors.Wrap(err, "error formatting output")
		}
		fmt.Fprintln(out, string(prettyJSON))
		return true, nil
	}
	return false, nil
}
