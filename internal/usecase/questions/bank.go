package questions

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed bank.yaml
var defaultBank []byte

// Bank holds the fallback question lists
type Bank struct {
	Roles   []RoleQuestions `yaml:"roles"`
	Generic []string        `yaml:"generic"`
}

// RoleQuestions is the fixed list for one well-known role
type RoleQuestions struct {
	Role      string   `yaml:"role"`
	Questions []string `yaml:"questions"`
}

// DefaultBank parses the embedded question bank
func DefaultBank() (*Bank, error) {
	return ParseBank(defaultBank)
}

// ParseBank decodes a YAML question bank
func ParseBank(data []byte) (*Bank, error) {
	var bank Bank
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}
	if len(bank.Generic) == 0 {
		return nil, fmt.Errorf("question bank has no generic questions")
	}
	return &bank, nil
}

// Lookup returns the list for role, matched case-insensitively, or the
// generic questions with {role} filled in.
func (b *Bank) Lookup(role string) []string {
	for _, r := range b.Roles {
		if strings.EqualFold(r.Role, role) {
			return append([]string(nil), r.Questions...)
		}
	}

	out := make([]string, len(b.Generic))
	for i, tmpl := range b.Generic {
		out[i] = strings.ReplaceAll(tmpl, "{role}", role)
	}
	return out
}
