package assets

import (
	"errors"
	"testing"
)

func TestCheckTransitionLot(t *testing.T) {
	cases := []struct {
		name     string
		from, to string
		wantErr  any
	}{
		{"open to in progress", "open", "in_progress", nil},
		{"open to closed", "open", "closed", nil},
		{"in progress to closed", "in_progress", "closed", nil},
		{"same state is a no-op", "closed", "closed", nil},
		{"empty current uses initial", "", "in_progress", nil},
		{"closed is terminal", "closed", "open", &TransitionError{}},
		{"unknown value", "open", "demolished", &InvalidStatusError{}},
		{"legacy current status", "completed", "closed", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckTransition(TypeLot, tc.from, tc.to)
			switch want := tc.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("want nil got=%v", err)
				}
			case *TransitionError:
				var te *TransitionError
				if !errors.As(err, &te) {
					t.Fatalf("want TransitionError got=%v", err)
				}
				_ = want
			case *InvalidStatusError:
				var ie *InvalidStatusError
				if !errors.As(err, &ie) {
					t.Fatalf("want InvalidStatusError got=%v", err)
				}
				if len(ie.Allowed) == 0 {
					t.Fatalf("allowed list should not be empty")
				}
			}
		})
	}
}

func TestMachineForFallsBackToGeneric(t *testing.T) {
	m := MachineFor(TypeTimesheet)
	if m.Initial != "draft" || !m.CanTransition("draft", "active") || m.CanTransition("archived", "draft") {
		t.Fatalf("generic machine wiring unexpected: %+v", m.States())
	}
}

func TestNormalizeStatus(t *testing.T) {
	if got := NormalizeStatus(" In-Progress "); got != "in_progress" {
		t.Fatalf("want=in_progress got=%q", got)
	}
}

func TestIsReviewDecision(t *testing.T) {
	cases := []struct {
		typ    Type
		status string
		want   bool
	}{
		{TypeDocument, "approved", true},
		{TypeITPDocument, "rejected", true},
		{TypeITPDocument, "pending_review", false},
		{TypeLot, "closed", false},
		{TypeInspectionPoint, "passed", false},
	}
	for _, tc := range cases {
		if got := IsReviewDecision(tc.typ, tc.status); got != tc.want {
			t.Fatalf("IsReviewDecision(%s, %s): want=%v got=%v", tc.typ, tc.status, tc.want, got)
		}
	}
}
