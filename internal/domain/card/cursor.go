package card

import "strings"

// Cursor marks a position in the name-ordered catalog scan. The scan sorts
// by (name, uuid); names are not unique across printings, so the uuid
// tie-breaks page boundaries that fall inside a run of identical names.
type Cursor struct {
	Name string
	UUID string
}

// IsZero reports whether the cursor marks the start of the scan.
func (c Cursor) IsZero() bool { return c.Name == "" && c.UUID == "" }

// String encodes the cursor as "uuid:name". The uuid leads because card
// names may contain any character while uuids never contain a colon.
func (c Cursor) String() string {
	if c.IsZero() {
		return ""
	}
	return c.UUID + ":" + c.Name
}

// ParseCursor decodes a cursor produced by String. Empty or malformed
// input yields the zero cursor.
func ParseCursor(s string) Cursor {
	uuid, name, ok := strings.Cut(s, ":")
	if !ok {
		return Cursor{}
	}
	return Cursor{Name: name, UUID: uuid}
}

// Before reports whether the cursor sorts strictly before the record at
// (name, uuid), i.e. the record belongs to a page after this position.
func (c Cursor) Before(name, uuid string) bool {
	if name != c.Name {
		return c.Name < name
	}
	return c.UUID < uuid
}
