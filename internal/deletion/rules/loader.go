package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"deletionguard/internal/deletion/models"
	dErrors "deletionguard/pkg/domain-errors"
)

// RuleSpec is the file and wire form of a Rule. Window uses Go duration
// syntax ("90s", "1h").
type RuleSpec struct {
	Name              string   `yaml:"name" json:"name"`
	Window            string   `yaml:"window" json:"window"`
	MaxRequests       int      `yaml:"max_requests" json:"max_requests"`
	CountOnlyFailures bool     `yaml:"count_only_failures,omitempty" json:"count_only_failures,omitempty"`
	Scope             string   `yaml:"scope,omitempty" json:"scope,omitempty"`
	AppliesTo         []string `yaml:"applies_to,omitempty" json:"applies_to,omitempty"`
	SkipValidation    bool     `yaml:"skip_validation,omitempty" json:"skip_validation,omitempty"`
}

// Document is the top-level rules file.
type Document struct {
	Rules []RuleSpec `yaml:"rules" json:"rules"`
}

// Build converts the document into a validated RuleSet. Scope defaults to
// user.
func (d Document) Build() (*RuleSet, error) {
	out := make([]Rule, 0, len(d.Rules))
	for i, spec := range d.Rules {
		window, err := time.ParseDuration(spec.Window)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeConfiguration,
				fmt.Sprintf("rule %d (%s): invalid window %q", i, spec.Name, spec.Window))
		}
		scope := Scope(spec.Scope)
		if scope == "" {
			scope = ScopeUser
		}
		var kinds []models.RequestKind
		for _, k := range spec.AppliesTo {
			kinds = append(kinds, models.RequestKind(k))
		}
		out = append(out, Rule{
			Name:              spec.Name,
			Window:            window,
			MaxRequests:       spec.MaxRequests,
			CountOnlyFailures: spec.CountOnlyFailures,
			Scope:             scope,
			AppliesTo:         kinds,
			SkipValidation:    spec.SkipValidation,
		})
	}
	return NewRuleSet(out)
}

// ToDocument renders a RuleSet back into its file form.
func ToDocument(rs *RuleSet) Document {
	doc := Document{Rules: make([]RuleSpec, 0, rs.Len())}
	for _, r := range rs.Rules() {
		spec := RuleSpec{
			Name:              r.Name,
			Window:            r.Window.String(),
			MaxRequests:       r.MaxRequests,
			CountOnlyFailures: r.CountOnlyFailures,
			Scope:             string(r.Scope),
			SkipValidation:    r.SkipValidation,
		}
		for _, k := range r.AppliesTo {
			spec.AppliesTo = append(spec.AppliesTo, string(k))
		}
		doc.Rules = append(doc.Rules, spec)
	}
	return doc
}

// Parse decodes YAML (or JSON, which YAML accepts) into a RuleSet. Unknown
// keys are rejected so typos do not silently disable a limit.
func Parse(data []byte) (*RuleSet, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, dErrors.New(dErrors.CodeConfiguration, "rules file is empty")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "failed to parse rules: "+err.Error())
	}
	return doc.Build()
}

// LoadFile reads and parses a rules file.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfiguration, "failed to read rules file")
	}
	return Parse(data)
}

// Marshal renders a RuleSet as YAML.
func Marshal(rs *RuleSet) ([]byte, error) {
	return yaml.Marshal(ToDocument(rs))
}
