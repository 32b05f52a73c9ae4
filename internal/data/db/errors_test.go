package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pg unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"pg fk", &pgconn.PgError{Code: "23503"}, false},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"sqlite text", errors.New("UNIQUE constraint failed: projects.organization_id, projects.name"), true},
		{"other", errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err); got != tc.want {
			t.Fatalf("%s: want=%v got=%v", tc.name, tc.want, got)
		}
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient(&pgconn.PgError{Code: "40001"}) {
		t.Fatalf("serialization failure should be transient")
	}
	if IsTransient(errors.New("x")) {
		t.Fatalf("plain error should not be transient")
	}
}
