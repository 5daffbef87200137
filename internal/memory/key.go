// Package memory implements the conversational memory of a companion chat:
// an ordered per-conversation turn history, one-time seeding with persona
// content, a bounded recall window and similarity recall over a vector index.
package memory

import (
	"fmt"
	"strconv"
	"strings"
)

// PersonaFileSuffix is appended to a companion ID to form the namespace of
// its backstory documents in the vector index.
const PersonaFileSuffix = ".txt"

// CompanionKey identifies one memory stream: a persona talking to a user
// through a given model.
type CompanionKey struct {
	CompanionID string `json:"companion_id"`
	ModelName   string `json:"model_name"`
	UserID      string `json:"user_id"`
}

// Validate reports ErrMalformedKey if the key cannot address a stream.
func (k CompanionKey) Validate() error {
	if k.UserID == "" {
		return fmt.Errorf("%w: missing user id", ErrMalformedKey)
	}
	if k.CompanionID == "" {
		return fmt.Errorf("%w: missing companion id", ErrMalformedKey)
	}
	return nil
}

// StorageKey derives the key-value store identifier for the stream.
// Each field is length-prefixed, so distinct triples never share an
// identifier even when a field contains the separator.
func (k CompanionKey) StorageKey() string {
	var b strings.Builder
	b.WriteString("history")
	for _, part := range []string{k.CompanionID, k.ModelName, k.UserID} {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(len(part)))
		b.WriteByte(':')
		b.WriteString(part)
	}
	return b.String()
}

// String returns the storage key.
func (k CompanionKey) String() string {
	return k.StorageKey()
}

// PersonaNamespace returns the vector index namespace for a companion.
func PersonaNamespace(companionID string) string {
	return companionID + PersonaFileSuffix
}
