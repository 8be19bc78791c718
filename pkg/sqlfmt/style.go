package sqlfmt

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// KeywordCase controls how reserved words are cased.
type KeywordCase string

const (
	KeywordCaseUpper    KeywordCase = "upper"
	KeywordCaseLower    KeywordCase = "lower"
	KeywordCasePreserve KeywordCase = "preserve"
)

// Default style values.
const (
	DefaultIndent              = "    "
	DefaultLinesBetweenQueries = 1
)

var (
	// ErrUnsupportedConfigType is returned when a style value has an
	// unrecognized shape.
	ErrUnsupportedConfigType = errors.New("unsupported config type")

	// ErrInvalidStyle is returned when a style holds an invalid setting.
	ErrInvalidStyle = errors.New("invalid sql style")
)

// Style holds the layout settings for formatted queries.
type Style struct {
	// Indent is the unit of indentation for clause bodies.
	Indent string `yaml:"indent" json:"indent"`

	// KeywordCase controls reserved word casing.
	KeywordCase KeywordCase `yaml:"keywordCase" json:"keywordCase"`

	// LinesBetweenQueries is the number of blank lines after each semicolon.
	LinesBetweenQueries int `yaml:"linesBetweenQueries" json:"linesBetweenQueries"`
}

// DefaultStyle returns the default query style.
func DefaultStyle() Style {
	return Style{
		Indent:              DefaultIndent,
		KeywordCase:         KeywordCaseUpper,
		LinesBetweenQueries: DefaultLinesBetweenQueries,
	}
}

// Validate checks the style settings.
func (s Style) Validate() error {
	if strings.Trim(s.Indent, " \t") != "" {
		return fmt.Errorf("%w: indent must contain only spaces and tabs, got %q", ErrInvalidStyle, s.Indent)
	}
	switch s.KeywordCase {
	case KeywordCaseUpper, KeywordCaseLower, KeywordCasePreserve:
	default:
		return fmt.Errorf("%w: keywordCase must be upper, lower or preserve, got %q", ErrInvalidStyle, s.KeywordCase)
	}
	if s.LinesBetweenQueries < 0 {
		return fmt.Errorf("%w: linesBetweenQueries must not be negative", ErrInvalidStyle)
	}
	return nil
}

// styleDocument is the on-disk and inline form of a style. Every field is
// optional; unset fields keep their defaults.
type styleDocument struct {
	Indent              *string `yaml:"indent"`
	KeywordCase         *string `yaml:"keywordCase"`
	LinesBetweenQueries *int    `yaml:"linesBetweenQueries"`

	// ReservedKeywordUppercase is accepted for compatibility with
	// sparksql-formatter style files.
	ReservedKeywordUppercase *bool `yaml:"reservedKeywordUppercase"`
}

func (d styleDocument) apply(base Style) Style {
	if d.Indent != nil {
		base.Indent = *d.Indent
	}
	if d.ReservedKeywordUppercase != nil {
		base.KeywordCase = KeywordCaseLower
		if *d.ReservedKeywordUppercase {
			base.KeywordCase = KeywordCaseUpper
		}
	}
	if d.KeywordCase != nil {
		base.KeywordCase = KeywordCase(strings.ToLower(*d.KeywordCase))
	}
	if d.LinesBetweenQueries != nil {
		base.LinesBetweenQueries = *d.LinesBetweenQueries
	}
	return base
}

// ResolveStyle turns a style setting into a Style. It accepts:
//   - Style or *Style
//   - a string starting with "{", parsed as an inline YAML or JSON mapping
//   - any other non-empty string, read as the path of a YAML or JSON file
//   - map[string]any
//
// nil and "" resolve to DefaultStyle. Any other value returns
// ErrUnsupportedConfigType.
func ResolveStyle(value any) (Style, error) {
	var (
		style Style
		err   error
	)

	switch v := value.(type) {
	case nil:
		style = DefaultStyle()
	case Style:
		style = v
	case *Style:
		if v == nil {
			style = DefaultStyle()
		} else {
			style = *v
		}
	case string:
		style, err = styleFromString(v)
	case map[string]any:
		style, err = styleFromMap(v)
	default:
		return Style{}, fmt.Errorf("%w: %T", ErrUnsupportedConfigType, value)
	}
	if err != nil {
		return Style{}, err
	}

	if err := style.Validate(); err != nil {
		return Style{}, err
	}
	return style, nil
}

func styleFromString(s string) (Style, error) {
	trimmed := strings.TrimSpace(s)
	switch {
	case trimmed == "":
		return DefaultStyle(), nil
	case strings.HasPrefix(trimmed, "{"):
		style, err := decodeStyle([]byte(trimmed))
		if err != nil {
			return Style{}, fmt.Errorf("parse inline sql style: %w", err)
		}
		return style, nil
	default:
		return LoadStyleFile(trimmed)
	}
}

func styleFromMap(m map[string]any) (Style, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return Style{}, fmt.Errorf("encode sql style: %w", err)
	}
	style, err := decodeStyle(data)
	if err != nil {
		return Style{}, fmt.Errorf("parse sql style: %w", err)
	}
	return style, nil
}

// LoadStyleFile reads a style from a YAML or JSON file.
func LoadStyleFile(path string) (Style, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Style{}, fmt.Errorf("read sql style file: %w", err)
	}
	style, err := decodeStyle(data)
	if err != nil {
		return Style{}, fmt.Errorf("parse sql style file %s: %w", path, err)
	}
	return style, nil
}

func decodeStyle(data []byte) (Style, error) {
	var doc styleDocument
	if len(bytes.TrimSpace(data)) == 0 {
		return DefaultStyle(), nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return Style{}, err
	}
	return doc.apply(DefaultStyle()), nil
}
