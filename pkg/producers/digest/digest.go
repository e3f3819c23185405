// Package digest computes fixed-size compatibility digests of canonicalized
// shapes. Two shapes digest equally iff they are structurally identical up to
// alpha-renaming of bound type variables and up to the Opaque/Annotated
// identity-token rules.
package digest

import (
	"encoding/hex"
	"fmt"

	motmedelErrors "github.com/Motmedel/utils_go/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/vphpersson/shape_digest/internal/canonical"
	"github.com/vphpersson/shape_digest/pkg/types/shape"
)

// Size is the digest length in bytes (blake2b-256).
const Size = 32

// Digest is an opaque compatibility token for a type's shape.
type Digest [Size]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) Bytes() []byte {
	data := make([]byte, Size)
	copy(data, d[:])
	return data
}

// Canonical returns the deterministic byte serialization of a shape that
// Compute hashes.
func Canonical(s shape.Shape) ([]byte, error) {
	data, err := canonical.Encode(s)
	if err != nil {
		return nil, motmedelErrors.New(fmt.Errorf("canonical encode: %w", err), s)
	}

	return data, nil
}

// Compute canonicalizes a fully applied shape and hashes it.
func Compute(s shape.Shape) (Digest, error) {
	data, err := Canonical(s)
	if err != nil {
		return Digest{}, err
	}

	return Digest(blake2b.Sum256(data)), nil
}

// MustCompute is Compute for initialization paths where the shape is known to
// be well-formed.
func MustCompute(s shape.Shape) Digest {
	d, err := Compute(s)
	if err != nil {
		panic(fmt.Sprintf("compute shape digest: %s", err))
	}

	return d
}
