// Package protocol decides which extension-property bundles describe communication adapters
// and resolves display names for graph nodes.
package protocol

import (
	"fmt"
	"strings"

	"iflowgraph/internal/config"
)

// DefaultRuleName is reported when no rule matched and the table default applied.
const DefaultRuleName = "default"

type Decision struct {
	Accepted bool
	Rule     string
}

type compiledRule struct {
	name    string
	fields  []string
	match   string
	values  []string
	valueOf map[string]struct{}
	accept  bool
}

// Classifier evaluates an ordered rule table against protocol metadata.
type Classifier struct {
	rules         []compiledRule
	defaultAccept bool
}

func NewClassifier(rules config.ClassifierRules) (*Classifier, error) {
	if err := config.ValidateClassifierRules(&rules); err != nil {
		return nil, fmt.Errorf("building classifier: %w", err)
	}

	c := &Classifier{defaultAccept: rules.Default == config.VerdictAccept}
	for _, rule := range rules.Rules {
		compiled := compiledRule{
			name:    rule.Name,
			fields:  rule.Fields,
			match:   rule.Match,
			valueOf: make(map[string]struct{}, len(rule.Values)),
			accept:  rule.Verdict == config.VerdictAccept,
		}
		for _, value := range rule.Values {
			lowered := strings.ToLower(value)
			compiled.values = append(compiled.values, lowered)
			compiled.valueOf[lowered] = struct{}{}
		}
		c.rules = append(c.rules, compiled)
	}
	return c, nil
}

// Default returns a classifier over the built-in rule table.
func Default() *Classifier {
	c, err := NewClassifier(config.DefaultClassifierRules())
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Classifier) Classify(m Metadata) Decision {
	for _, rule := range c.rules {
		if rule.matches(m) {
			return Decision{Accepted: rule.accept, Rule: rule.name}
		}
	}
	return Decision{Accepted: c.defaultAccept, Rule: DefaultRuleName}
}

func (r compiledRule) matches(m Metadata) bool {
	switch r.match {
	case config.MatchEquals:
		for _, name := range r.fields {
			value := strings.ToLower(strings.TrimSpace(m.Field(name)))
			if value == "" {
				continue
			}
			if _, ok := r.valueOf[value]; ok {
				return true
			}
		}
		return false
	case config.MatchContains:
		parts := make([]string, len(r.fields))
		for i, name := range r.fields {
			parts[i] = m.Field(name)
		}
		text := strings.ToLower(strings.Join(parts, " "))
		for _, value := range r.values {
			if strings.Contains(text, value) {
				return true
			}
		}
		return false
	case config.MatchPresent:
		for _, name := range r.fields {
			if m.Field(name) != "" {
				return true
			}
		}
		return false
	default:
		return false
	}
}
