package shape

import (
	guuid "github.com/google/uuid"
)

// Uuid is the identity token carried by Opaque and Annotated nodes. Tokens are
// compared by value only; conventional basetypes use their plain type name as
// the token, while provisional identities are usually generated once and
// pinned.
type Uuid string

// GenerateUuid returns a fresh random identity token.
func GenerateUuid() Uuid {
	return Uuid(guuid.NewString())
}
