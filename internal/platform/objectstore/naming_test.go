package objectstore

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		"report.pdf":           "report.pdf",
		"../../etc/passwd":     "passwd",
		`C:\photos\site 1.jpg`: "site_1.jpg",
		"pour  #3 (north).png": "pour_3_north_.png",
		"...":                  "file",
		"":                     "file",
		".hidden":              "hidden",
	}
	for in, want := range cases {
		if got := SanitizeFileName(in); got != want {
			t.Fatalf("SanitizeFileName(%q): want=%q got=%q", in, want, got)
		}
	}
	long := strings.Repeat("a", 300) + ".pdf"
	if got := SanitizeFileName(long); len(got) != maxFileNameLen || !strings.HasSuffix(got, ".pdf") {
		t.Fatalf("long name not truncated from the front: %q", got)
	}
}

func TestBlobNameIsUniqueAndNamespaced(t *testing.T) {
	ns := AssetNamespace("p1", "a1")
	pattern := regexp.MustCompile(`^projects/p1/assets/a1/[0-9a-f-]{36}-photo\.jpg$`)
	a, b := BlobName(ns, "photo.jpg"), BlobName(ns, "photo.jpg")
	if !pattern.MatchString(a) {
		t.Fatalf("unexpected blob name %q", a)
	}
	if a == b {
		t.Fatalf("blob names must be unique")
	}
	if !InNamespace(a, ProjectNamespace("p1")) || InNamespace(a, ProjectNamespace("p2")) {
		t.Fatalf("namespace check failed for %q", a)
	}
	if got := RowNamespace("p1", "a1", "r9"); got != "projects/p1/assets/a1/rows/r9" {
		t.Fatalf("row namespace: %q", got)
	}
}

func TestValidSegment(t *testing.T) {
	for _, ok := range []string{"p1", "7f1c0d8e-4b59-4d0e-a8d3-3f0f6f5b2a10"} {
		if !ValidSegment(ok) {
			t.Fatalf("%q should be valid", ok)
		}
	}
	for _, bad := range []string{"", "..", "a/b", `a\b`, "a?b"} {
		if ValidSegment(bad) {
			t.Fatalf("%q should be invalid", bad)
		}
	}
}

func TestValidateFiles(t *testing.T) {
	if err := ValidateFiles(nil, 20); !errors.Is(err, ErrInvalidFiles) {
		t.Fatalf("empty list: %v", err)
	}
	if err := ValidateFiles(make([]FileDescriptor, 3), 2); !errors.Is(err, ErrInvalidFiles) {
		t.Fatalf("too many: %v", err)
	}
	if err := ValidateFiles([]FileDescriptor{{FileName: " "}}, 2); !errors.Is(err, ErrInvalidFiles) {
		t.Fatalf("blank name: %v", err)
	}
	if err := ValidateFiles([]FileDescriptor{{FileName: "a.pdf"}}, 2); err != nil {
		t.Fatalf("valid: %v", err)
	}
}

func TestContentTypeFor(t *testing.T) {
	if got := ContentTypeFor(FileDescriptor{FileName: "x.pdf"}); got != "application/pdf" {
		t.Fatalf("pdf: %q", got)
	}
	if got := ContentTypeFor(FileDescriptor{FileName: "x.unknownext"}); got != DefaultContentType {
		t.Fatalf("unknown: %q", got)
	}
	if got := ContentTypeFor(FileDescriptor{FileName: "x.pdf", ContentType: "image/png"}); got != "image/png" {
		t.Fatalf("declared: %q", got)
	}
}
