package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func confirmed(c *cli.Context) (bool, error) {
	confirmed := c.Bool(flagYes)
	if confirmed {
		return true, nil
	}
	if err := survey.AskOne(
		&survey.Confirm{
			Message: "This action cannot be undone. Are you sure?",
		},
		&confirmed,
	); err != nil {
		return false, errors.Wrap(err, "error confirming action")
	}
	fmt.Println()
	return confirmed, nil
}

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

// formatStructured renders obj as yaml or json. It is not used for table
// output, which every command lays out itself.
func formatStructured(outputFormat string, obj interface{}) (string, error) {
	var bytes []byte
	var err error
	switch strings.ToLower(outputFormat) {
	case "yaml":
		bytes, err = yaml.Marshal(obj)
	case "json":
		bytes, err = json.MarshalIndent(obj, "", "  ")
	default:
		return "", errors.Errorf("unknown output format %q", outputFormat)
	}
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func valueOrNone(str *string) string {
	if str == nil || *str == "" {
		return "<none>"
	}
	return *str
}
