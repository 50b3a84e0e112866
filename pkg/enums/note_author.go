package enums

import "fmt"

// NoteAuthor flags who wrote an order note and therefore who may see it.
type NoteAuthor string

const (
	NoteAuthorInternal NoteAuthor = "internal"
	NoteAuthorCustomer NoteAuthor = "customer"
	NoteAuthorSystem   NoteAuthor = "system"
)

var validNoteAuthors = []NoteAuthor{
	NoteAuthorInternal,
	NoteAuthorCustomer,
	NoteAuthorSystem,
}

// String implements fmt.Stringer.
func (n NoteAuthor) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NoteAuthor.
func (n NoteAuthor) IsValid() bool {
	for _, candidate := range validNoteAuthors {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNoteAuthor converts raw input into a NoteAuthor.
func ParseNoteAuthor(value string) (NoteAuthor, error) {
	for _, candidate := range validNoteAuthors {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid note author %q", value)
}
