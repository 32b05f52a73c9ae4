package access

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type Action string

const (
	ActionRead          Action = "read"
	ActionWrite         Action = "write"
	ActionApprove       Action = "approve"
	ActionManageBilling Action = "manage_billing"
	ActionManageProject Action = "manage_project"
)

const (
	RoleAdmin          = "admin"
	RoleQAManager      = "qa_manager"
	RoleSuperintendent = "superintendent"
	RoleSiteEngineer   = "site_engineer"
	RoleSubcontractor  = "subcontractor"
	RoleClient         = "client"
)

//go:embed policy.yaml
var defaultPolicy []byte

// Policy maps project roles onto the actions they may perform.
type Policy struct {
	DefaultRole string              `yaml:"default_role"`
	Roles       map[string][]Action `yaml:"roles"`

	index map[string]map[Action]struct{}
}

func DefaultPolicy() (*Policy, error) {
	return ParsePolicy(defaultPolicy)
}

// LoadPolicy reads path, or the embedded default when path is blank.
func LoadPolicy(path string) (*Policy, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultPolicy()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read access policy: %w", err)
	}
	return ParsePolicy(raw)
}

func ParsePolicy(raw []byte) (*Policy, error) {
	var p Policy
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse access policy: %w", err)
	}
	if len(p.Roles) == 0 {
		return nil, fmt.Errorf("access policy defines no roles")
	}
	p.DefaultRole = strings.TrimSpace(p.DefaultRole)
	if _, ok := p.Roles[p.DefaultRole]; !ok {
		return nil, fmt.Errorf("access policy default_role %q is not a defined role", p.DefaultRole)
	}
	p.index = make(map[string]map[Action]struct{}, len(p.Roles))
	for role, actions := range p.Roles {
		set := make(map[Action]struct{}, len(actions))
		for _, a := range actions {
			set[Action(strings.TrimSpace(string(a)))] = struct{}{}
		}
		p.index[role] = set
	}
	return &p, nil
}

// Allows reports whether role may perform action. Unknown roles may do nothing.
func (p *Policy) Allows(role string, action Action) bool {
	if p == nil {
		return false
	}
	set, ok := p.index[role]
	if !ok {
		return false
	}
	_, ok = set[action]
	return ok
}

// RoleOrDefault substitutes the default role for a blank one.
func (p *Policy) RoleOrDefault(role string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return p.DefaultRole
	}
	return role
}

func (p *Policy) RoleNames() []string {
	out := make([]string, 0, len(p.Roles))
	for r := range p.Roles {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
