package migration

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// ErrSchema is returned when a rule file does not match the rule schema.
var ErrSchema = errors.New("rule file does not match schema")

//go:embed rules.schema.json
var rulesSchema []byte

type ruleFile struct {
	Rules []ruleEntry `yaml:"rules"`
}

type ruleEntry struct {
	Kind        string   `yaml:"kind"`
	Target      string   `yaml:"target"`
	Replacement string   `yaml:"replacement"`
	Tags        []string `yaml:"tags"`
	WithAttrs   []string `yaml:"withAttrs"`
	Import      *Import  `yaml:"import"`
}

// LoadRules reads additional rules from a YAML file.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}

	return ParseRules(data)
}

// ParseRules decodes and validates a YAML rule document.
func ParseRules(data []byte) ([]Rule, error) {
	var raw any

	err := yaml.Unmarshal(data, &raw)
	if err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(rulesSchema),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("validate rules: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, verr := range result.Errors() {
			msgs = append(msgs, verr.Field()+": "+verr.Description())
		}

		return nil, fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
	}

	var file ruleFile

	err = yaml.Unmarshal(data, &file)
	if err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}

	rules := make([]Rule, 0, len(file.Rules))

	for idx, entry := range file.Rules {
		kind, kindErr := ParseKind(entry.Kind)
		if kindErr != nil {
			return nil, fmt.Errorf("rule %d: %w", idx, kindErr)
		}

		rule := Rule{
			Kind:        kind,
			Target:      entry.Target,
			Replacement: entry.Replacement,
			Tags:        entry.Tags,
			WithAttrs:   entry.WithAttrs,
			Import:      entry.Import,
		}

		validErr := rule.Validate()
		if validErr != nil {
			return nil, fmt.Errorf("rule %d: %w", idx, validErr)
		}

		rules = append(rules, rule)
	}

	return rules, nil
}
