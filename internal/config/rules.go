package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Match modes understood by the protocol classifier.
const (
	MatchEquals   = "equals"
	MatchContains = "contains"
	MatchPresent  = "present"
)

const (
	VerdictAccept = "accept"
	VerdictReject = "reject"
)

// Protocol metadata field names a rule may reference.
var ruleFields = map[string]struct{}{
	"component_type":      {},
	"activity_type":       {},
	"transport_protocol":  {},
	"message_protocol":    {},
	"adapter_name":        {},
	"component_namespace": {},
	"direction":           {},
	"address":             {},
	"system":              {},
	"ifl_type":            {},
	"credential_name":     {},
	"authentication":      {},
	"proxy_type":          {},
	"timeout":             {},
	"server":              {},
	"port":                {},
}

// ClassifierRules is the ordered rule table that decides whether an extension-property
// bundle describes a communication adapter. Rules are evaluated top to bottom and the first
// match decides; Default applies when nothing matches.
type ClassifierRules struct {
	Version int              `yaml:"version"`
	Rules   []ClassifierRule `yaml:"rules"`
	Default string           `yaml:"default"`
}

type ClassifierRule struct {
	Name    string   `yaml:"name"`
	Fields  []string `yaml:"fields"`
	Match   string   `yaml:"match"`
	Values  []string `yaml:"values,omitempty"`
	Verdict string   `yaml:"verdict"`
}

func DefaultClassifierRules() ClassifierRules {
	return ClassifierRules{
		Version: 1,
		Rules: []ClassifierRule{
			{
				Name:   "excluded-activity",
				Fields: []string{"activity_type"},
				Match:  MatchEquals,
				Values: []string{
					"requestreply", "endevent", "startevent", "receive", "send", "transform",
					"router", "splitter", "aggregator", "filter", "enricher", "validator",
				},
				Verdict: VerdictReject,
			},
			{
				Name:    "excluded-component",
				Fields:  []string{"component_type"},
				Match:   MatchEquals,
				Values:  []string{"script", "groovy", "javascript", "java", "xslt", "mapping", "transformation"},
				Verdict: VerdictReject,
			},
			{
				Name:   "protocol-keyword",
				Fields: []string{"component_type", "activity_type", "transport_protocol", "message_protocol", "adapter_name"},
				Match:  MatchContains,
				Values: []string{
					"http", "https", "sftp", "ftp", "soap", "rest", "odata", "idoc", "amqp",
					"jms", "mail", "smtp", "pop3", "imap", "ldap", "sap", "rfc", "processdirect",
					"successfactors", "salesforce", "workday", "azure", "aws", "gcp",
				},
				Verdict: VerdictAccept,
			},
			{
				Name:    "declared-protocol",
				Fields:  []string{"transport_protocol", "message_protocol"},
				Match:   MatchPresent,
				Verdict: VerdictAccept,
			},
			{
				Name:    "adapter-keyword",
				Fields:  []string{"adapter_name"},
				Match:   MatchContains,
				Values:  []string{"http", "sftp", "soap", "rest", "odata", "idoc"},
				Verdict: VerdictAccept,
			},
		},
		Default: VerdictReject,
	}
}

func LoadClassifierRules(path string) (*ClassifierRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading classifier rules: %w", err)
	}

	var rules ClassifierRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("loading classifier rules: %w", err)
	}
	if rules.Default == "" {
		rules.Default = VerdictReject
	}

	if err := ValidateClassifierRules(&rules); err != nil {
		return nil, fmt.Errorf("loading classifier rules: %w", err)
	}

	return &rules, nil
}

// MarshalClassifierRules renders a rule table in the format LoadClassifierRules reads.
func MarshalClassifierRules(r ClassifierRules) ([]byte, error) {
	if err := ValidateClassifierRules(&r); err != nil {
		return nil, fmt.Errorf("encoding classifier rules: %w", err)
	}
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding classifier rules: %w", err)
	}
	return data, nil
}

func ValidateClassifierRules(r *ClassifierRules) error {
	if r.Version != 1 {
		return fmt.Errorf("unsupported version: %d", r.Version)
	}
	if len(r.Rules) == 0 {
		return fmt.Errorf("at least one rule is required")
	}
	if !validVerdict(r.Default) {
		return fmt.Errorf("invalid default verdict: %s", r.Default)
	}

	names := make(map[string]struct{})
	for i, rule := range r.Rules {
		name := strings.ToLower(strings.TrimSpace(rule.Name))
		if name == "" {
			return fmt.Errorf("rule %d name is required", i)
		}
		if _, exists := names[name]; exists {
			return fmt.Errorf("duplicate rule name: %s", rule.Name)
		}
		names[name] = struct{}{}

		if len(rule.Fields) == 0 {
			return fmt.Errorf("rule %s has no fields", rule.Name)
		}
		for _, field := range rule.Fields {
			if _, ok := ruleFields[field]; !ok {
				return fmt.Errorf("rule %s references unknown field: %s", rule.Name, field)
			}
		}

		switch rule.Match {
		case MatchEquals, MatchContains:
			if len(rule.Values) == 0 {
				return fmt.Errorf("rule %s %s match has no values", rule.Name, rule.Match)
			}
		case MatchPresent:
		default:
			return fmt.Errorf("rule %s has unknown match mode: %s", rule.Name, rule.Match)
		}

		if !validVerdict(rule.Verdict) {
			return fmt.Errorf("rule %s has invalid verdict: %s", rule.Name, rule.Verdict)
		}
	}

	return nil
}

func validVerdict(v string) bool {
	return v == VerdictAccept || v == VerdictReject
}
