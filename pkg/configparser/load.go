package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrNoFilePath = errors.New("no file path provided")

// LoadYamlFile exports every scalar of a (simple, two-space indented) YAML file
// as an environment variable named after its upper-cased key path, e.g.
//
//	matcher:
//	  budget: 3s        -> MATCHER_BUDGET=3s
//
// Values of the form ${VAR:-default} are expanded. Variables already present in
// the environment win over the file.
func LoadYamlFile(filepath string) error {
	if filepath == "" {
		return ErrNoFilePath
	}

	file, err := os.Open(filepath)
	if err != nil {
		return fmt.Errorf("could not open YAML file: %w", err)
	}
	defer file.Close()

	var (
		scanner        = bufio.NewScanner(file)
		prefix         []string
		previousIndent int
	)

	for scanner.Scan() {
		line := scanner.Text()

		content := strings.TrimSpace(line)
		if content == "" || strings.HasPrefix(content, "#") {
			continue
		}

		indent := len(line) - len(strings.TrimLeft(line, " "))
		if indent < previousIndent {
			for range (previousIndent - indent) / 2 {
				if len(prefix) == 0 {
					break
				}
				prefix = prefix[:len(prefix)-1]
			}
		}
		previousIndent = indent

		// section header
		if strings.HasSuffix(content, ":") && !strings.Contains(content, ": ") {
			prefix = append(prefix, strings.TrimSuffix(content, ":"))
			continue
		}

		key, value, ok := strings.Cut(content, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = expand(strings.Trim(strings.TrimSpace(stripComment(value)), `"'`))
		if value == "" {
			continue
		}

		envKey := strings.ToUpper(strings.Join(append(append([]string{}, prefix...), key), "_"))
		if os.Getenv(envKey) != "" {
			continue
		}
		if err := os.Setenv(envKey, value); err != nil {
			return fmt.Errorf("could not set env var %s: %w", envKey, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading YAML file: %w", err)
	}

	return nil
}

// expand resolves ${VAR:-default}.
func expand(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}

	name, def, _ := strings.Cut(value[2:len(value)-1], ":-")
	if env := os.Getenv(strings.TrimSpace(name)); env != "" {
		return env
	}
	return strings.TrimSpace(def)
}

func stripComment(value string) string {
	if i := strings.Index(value, " #"); i >= 0 {
		return value[:i]
	}
	return value
}
