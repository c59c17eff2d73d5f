// Package identity derives the folder-scoped identifiers every graph node is keyed by.
package identity

import (
	"strings"
	"unicode"
)

// DefaultDisplayName is used when a folder name normalizes to nothing.
const DefaultDisplayName = "Uploaded iFlow"

const folderPrefix = "Folder_"

var idReplacer = strings.NewReplacer(" ", "_", ".", "_", "-", "_")

// NormalizeDisplayName turns arbitrary human text into a folder display name: underscores
// become spaces, whitespace runs collapse, and only letters, digits, spaces and -()&/ survive.
func NormalizeDisplayName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.Join(strings.Fields(name), " ")

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(" -()&/", r) {
			b.WriteRune(r)
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return DefaultDisplayName
	}
	return out
}

// FolderID is the composite id of the Folder node for a display name.
func FolderID(displayName string) string {
	return folderPrefix + idReplacer.Replace(displayName)
}

// NodeID scopes a raw document element id to its folder.
func NodeID(folderID, rawID string) string {
	return folderID + "_" + rawID
}

// RawID strips the folder scope from a composite id. ok is false when nodeID does not
// belong to folderID.
func RawID(folderID, nodeID string) (string, bool) {
	prefix := folderID + "_"
	if !strings.HasPrefix(nodeID, prefix) {
		return "", false
	}
	return strings.TrimPrefix(nodeID, prefix), true
}

// ResolveFolderID accepts either a Folder_ id or a display name. A display name that
// itself starts with "Folder_" is taken as an id.
func ResolveFolderID(folder string) string {
	if strings.HasPrefix(folder, folderPrefix) {
		return folder
	}
	return FolderID(NormalizeDisplayName(folder))
}
