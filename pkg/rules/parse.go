package rules

import (
	"bytes"
	stderrors "errors"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/clipfmt/pkg/errors"
	"github.com/arthur-debert/clipfmt/pkg/formatter"
	"github.com/arthur-debert/clipfmt/pkg/logging"
)

// Format is the serialization of a rule file, derived from its extension.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// FormatFor picks the document format from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, errors.Newf(errors.ErrRulesFormat, "unsupported rule file extension %q", filepath.Ext(path)).
			WithDetail("path", path)
	}
}

// ParseReplacements decodes an ordered replacement list.
//
// The preferred form is an array of {original, replacement} entries. A plain
// mapping of original to replacement is also accepted: YAML keeps document
// order, TOML tables have no order so their keys are applied sorted.
func ParseReplacements(path string, data []byte) (formatter.Rules, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	var rules formatter.Rules
	switch format {
	case FormatTOML:
		rules, err = parseReplacementsTOML(data)
	case FormatYAML:
		rules, err = parseReplacementsYAML(data)
	}
	if err != nil {
		return nil, wrapParse(err, path)
	}

	if err := rules.Validate(); err != nil {
		return nil, wrapParse(err, path)
	}
	return rules, nil
}

// ParseExclusions decodes the list of characters exempt from folding.
func ParseExclusions(path string, data []byte) (formatter.Exclusions, error) {
	format, err := FormatFor(path)
	if err != nil {
		return formatter.Exclusions{}, err
	}

	var doc struct {
		Exclusions []string `toml:"exclusions" yaml:"exclusions"`
	}
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&doc); err == io.EOF {
			err = nil
		}
	}
	if err != nil {
		return formatter.Exclusions{}, wrapParse(err, path)
	}

	runes := make([]rune, 0, len(doc.Exclusions))
	for i, entry := range doc.Exclusions {
		if utf8.RuneCountInString(entry) != 1 {
			return formatter.Exclusions{}, errors.Newf(errors.ErrRulesInvalid,
				"exclusion %d must be a single character, got %q", i+1, entry).
				WithDetail("path", path).
				WithDetail("index", i)
		}
		r, _ := utf8.DecodeRuneInString(entry)
		runes = append(runes, r)
	}
	return formatter.NewExclusions(runes...), nil
}

func parseReplacementsTOML(data []byte) (formatter.Rules, error) {
	var doc struct {
		Replacements interface{} `toml:"replacements"`
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	switch v := doc.Replacements.(type) {
	case nil:
		return formatter.Rules{}, nil
	case []interface{}:
		rules := make(formatter.Rules, 0, len(v))
		for i, item := range v {
			entry, ok := item.(map[string]interface{})
			if !ok {
				return nil, errors.Newf(errors.ErrRulesInvalid, "replacement %d must be a table", i+1)
			}
			rule, err := ruleFromMap(i, entry)
			if err != nil {
				return nil, err
			}
			rules = append(rules, rule)
		}
		return rules, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		logger := logging.GetLogger("rules")
		logger.Debug().Int("rules", len(keys)).
			Msg("Replacements given as a table, applying them in sorted key order")
		rules := make(formatter.Rules, 0, len(keys))
		for _, k := range keys {
			s, ok := v[k].(string)
			if !ok {
				return nil, errors.Newf(errors.ErrRulesInvalid, "replacement for %q must be a string", k)
			}
			rules = append(rules, formatter.Rule{Original: k, Replacement: s})
		}
		return rules, nil
	default:
		return nil, errors.New(errors.ErrRulesInvalid, "replacements must be an array of tables or a table")
	}
}

func ruleFromMap(i int, entry map[string]interface{}) (formatter.Rule, error) {
	var rule formatter.Rule
	var haveOriginal, haveReplacement bool
	for k, val := range entry {
		s, ok := val.(string)
		if !ok {
			return rule, errors.Newf(errors.ErrRulesInvalid, "replacement %d: %s must be a string", i+1, k)
		}
		switch k {
		case "original":
			rule.Original, haveOriginal = s, true
		case "replacement":
			rule.Replacement, haveReplacement = s, true
		default:
			return rule, errors.Newf(errors.ErrRulesInvalid, "replacement %d: unknown key %q", i+1, k)
		}
	}
	if !haveOriginal || !haveReplacement {
		return rule, errors.Newf(errors.ErrRulesInvalid, "replacement %d needs both original and replacement", i+1)
	}
	return rule, nil
}

func parseReplacementsYAML(data []byte) (formatter.Rules, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return formatter.Rules{}, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrRulesInvalid, "rule document must be a mapping")
	}

	var list *yaml.Node
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key := doc.Content[i].Value
		if key != "replacements" {
			return nil, errors.Newf(errors.ErrRulesInvalid, "unknown key %q", key)
		}
		list = doc.Content[i+1]
	}
	if list == nil {
		return formatter.Rules{}, nil
	}

	switch list.Kind {
	case yaml.SequenceNode:
		rules := make(formatter.Rules, 0, len(list.Content))
		for i, item := range list.Content {
			var entry map[string]interface{}
			if err := item.Decode(&entry); err != nil {
				return nil, err
			}
			rule, err := ruleFromMap(i, entry)
			if err != nil {
				return nil, err
			}
			rules = append(rules, rule)
		}
		return rules, nil
	case yaml.MappingNode:
		rules := make(formatter.Rules, 0, len(list.Content)/2)
		for i := 0; i+1 < len(list.Content); i += 2 {
			k, v := list.Content[i], list.Content[i+1]
			if k.ShortTag() != "!!str" {
				return nil, errors.Newf(errors.ErrRulesInvalid, "original %q must be a string", k.Value)
			}
			if v.Kind != yaml.ScalarNode || v.ShortTag() != "!!str" {
				return nil, errors.Newf(errors.ErrRulesInvalid, "replacement for %q must be a string", k.Value)
			}
			rules = append(rules, formatter.Rule{Original: k.Value, Replacement: v.Value})
		}
		return rules, nil
	case yaml.ScalarNode:
		if list.Tag == "!!null" {
			return formatter.Rules{}, nil
		}
	}
	return nil, errors.New(errors.ErrRulesInvalid, "replacements must be a list or a mapping")
}

func wrapParse(err error, path string) error {
	var clipErr *errors.ClipfmtError
	if stderrors.As(err, &clipErr) {
		return clipErr.WithDetail("path", path)
	}
	return errors.Wrapf(err, errors.ErrRulesParse, "failed to parse %s", filepath.Base(path)).
		WithDetail("path", path)
}
