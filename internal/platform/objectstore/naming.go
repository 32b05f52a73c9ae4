package objectstore

import (
	"strings"

	"github.com/google/uuid"
)

const maxFileNameLen = 128

func ProjectNamespace(projectID string) string {
	return "projects/" + projectID
}

func AssetNamespace(projectID, assetID string) string {
	return ProjectNamespace(projectID) + "/assets/" + assetID
}

func RowNamespace(projectID, assetID, rowID string) string {
	return AssetNamespace(projectID, assetID) + "/rows/" + rowID
}

// ValidSegment reports whether id can be used as one namespace path segment.
func ValidSegment(id string) bool {
	if id == "" || id == "." || id == ".." || len(id) > 128 {
		return false
	}
	return !strings.ContainsAny(id, "/\\?#%")
}

// InNamespace reports whether blob lives under namespace.
func InNamespace(blob, namespace string) bool {
	ns := strings.Trim(namespace, "/") + "/"
	return strings.HasPrefix(blob, ns) && !strings.Contains(blob, "..")
}

// BlobName returns a fresh name under namespace: <namespace>/<uuid>-<file>.
func BlobName(namespace, fileName string) string {
	return strings.Trim(namespace, "/") + "/" + uuid.NewString() + "-" + SanitizeFileName(fileName)
}

// SanitizeFileName keeps the base name and replaces anything outside
// [A-Za-z0-9._-] with an underscore.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_'
		if !ok {
			r = '_'
		}
		if r == '_' && lastUnderscore {
			continue
		}
		lastUnderscore = r == '_'
		b.WriteRune(r)
	}
	out := strings.TrimLeft(b.String(), "._")
	if len(out) > maxFileNameLen {
		out = out[len(out)-maxFileNameLen:]
	}
	if out == "" {
		return "file"
	}
	return out
}
