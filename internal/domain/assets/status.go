package assets

import (
	"fmt"
	"sort"
	"strings"
)

// StatusMachine lists the legal status moves for one asset type.
type StatusMachine struct {
	Initial     string
	transitions map[string][]string
}

func (m StatusMachine) Known(status string) bool {
	if status == m.Initial {
		return true
	}
	if _, ok := m.transitions[status]; ok {
		return true
	}
	for _, targets := range m.transitions {
		for _, t := range targets {
			if t == status {
				return true
			}
		}
	}
	return false
}

// States returns every status the machine recognises, sorted.
func (m StatusMachine) States() []string {
	seen := map[string]struct{}{m.Initial: {}}
	for from, targets := range m.transitions {
		seen[from] = struct{}{}
		for _, t := range targets {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// CanTransition reports whether from -> to is legal. Staying put is always
// legal, and rows holding a status the machine does not know may move to any
// known status.
func (m StatusMachine) CanTransition(from, to string) bool {
	if from == "" {
		from = m.Initial
	}
	if from == to {
		return true
	}
	if !m.Known(from) {
		return m.Known(to)
	}
	for _, t := range m.transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

var genericMachine = StatusMachine{
	Initial: "draft",
	transitions: map[string][]string{
		"draft":  {"active"},
		"active": {"archived"},
	},
}

var reviewMachine = StatusMachine{
	Initial: "draft",
	transitions: map[string][]string{
		"draft":          {"pending_review"},
		"pending_review": {"approved", "rejected"},
		"rejected":       {"draft"},
		"approved":       {"superseded"},
	},
}

var statusMachines = map[Type]StatusMachine{
	TypeLot: {
		Initial: "open",
		transitions: map[string][]string{
			"open":        {"in_progress", "on_hold", "closed"},
			"in_progress": {"on_hold", "conformed", "closed"},
			"on_hold":     {"open", "in_progress", "closed"},
			"conformed":   {"closed", "in_progress"},
			"closed":      nil,
		},
	},
	TypeNCR: {
		Initial: "open",
		transitions: map[string][]string{
			"open":         {"under_review", "closed"},
			"under_review": {"open", "resolved"},
			"resolved":     {"closed", "under_review"},
			"closed":       nil,
		},
	},
	TypeApprovalWorkflow: {
		Initial: "pending",
		transitions: map[string][]string{
			"pending":   {"approved", "rejected", "cancelled"},
			"rejected":  {"pending"},
			"approved":  nil,
			"cancelled": nil,
		},
	},
	TypeITPDocument: reviewMachine,
	TypeDocument:    reviewMachine,
	TypeInspectionPoint: {
		Initial: "pending",
		transitions: map[string][]string{
			"pending": {"passed", "failed", "not_applicable"},
			"failed":  {"pending"},
		},
	},
}

// IsReviewDecision reports whether moving an asset of type t to status is a
// review decision, which needs the approve permission.
func IsReviewDecision(t Type, status string) bool {
	switch t {
	case TypeDocument, TypeITPDocument:
		return status == "approved" || status == "rejected"
	}
	return false
}

func MachineFor(t Type) StatusMachine {
	if m, ok := statusMachines[t]; ok {
		return m
	}
	return genericMachine
}

// NormalizeStatus lowercases and maps "in-progress" style input onto the
// stored underscore form.
func NormalizeStatus(raw string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
}

// InvalidStatusError reports a value outside a type's enumeration.
type InvalidStatusError struct {
	Type    Type
	Status  string
	Allowed []string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("status %q is not valid for %s (allowed: %s)", e.Status, e.Type, strings.Join(e.Allowed, ", "))
}

// TransitionError reports a known status that cannot be reached from the current one.
type TransitionError struct {
	Type Type
	From string
	To   string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %q to %q", e.Type, e.From, e.To)
}

// CheckTransition validates moving an asset of type t from -> to.
func CheckTransition(t Type, from, to string) error {
	m := MachineFor(t)
	if !m.Known(to) {
		return &InvalidStatusError{Type: t, Status: to, Allowed: m.States()}
	}
	if !m.CanTransition(from, to) {
		return &TransitionError{Type: t, From: from, To: to}
	}
	return nil
}
