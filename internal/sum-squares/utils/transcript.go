package utils

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/field"
	"github.com/vybium/vybium-crypto/pkg/vybium-crypto/hash"
)

// poseidonRate is the sponge rate the varlen hash absorbs per permutation
const poseidonRate = 10

// limbBytes keeps every absorbed limb below the Goldilocks modulus
const limbBytes = 7

// Transcript is a running hash over a sequence of labelled integer tuples.
// Feeding the same tuples in the same order always yields the same digest,
// which makes it a compact fingerprint of a decomposition set.
type Transcript struct {
	state    []byte
	entries  []string
	hashFunc string
}

// NewTranscript creates a new transcript
func NewTranscript(hashFunc string) *Transcript {
	if hashFunc == "" {
		hashFunc = "sha3"
	}
	return &Transcript{
		state:    []byte{0},
		entries:  make([]string, 0, 16),
		hashFunc: hashFunc,
	}
}

// Absorb appends a labelled tuple of non-negative integers to the state
func (t *Transcript) Absorb(label string, values ...*big.Int) {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = v.String()
	}
	t.entries = append(t.entries, fmt.Sprintf("%s:(%s)", label, strings.Join(parts, ",")))
	t.state = t.hash(append(append([]byte(nil), t.state...), encode(label, values)...))
}

// Digest returns the hex-encoded current state
func (t *Transcript) Digest() string {
	return hex.EncodeToString(t.state)
}

// State returns the current transcript state
func (t *Transcript) State() []byte {
	return append([]byte(nil), t.state...)
}

// Entries returns the absorbed entries in order
func (t *Transcript) Entries() []string {
	return append([]string(nil), t.entries...)
}

// HashFunction returns the configured hash function name
func (t *Transcript) HashFunction() string {
	return t.hashFunc
}

// String returns a string representation of the transcript
func (t *Transcript) String() string {
	return strings.Join(t.entries, " ")
}

// hash computes the hash of the input using the configured hash function
func (t *Transcript) hash(data []byte) []byte {
	switch t.hashFunc {
	case "sha256":
		h := sha256.Sum256(data)
		return h[:]
	case "poseidon":
		return poseidonBytes(data)
	default:
		h := sha3.Sum256(data)
		return h[:]
	}
}

// encode length-prefixes the label, the tuple size and every value so that
// distinct tuples never share an encoding
func encode(label string, values []*big.Int) []byte {
	buf := binary.BigEndian.AppendUint32(nil, uint32(len(label)))
	buf = append(buf, label...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(values)))
	for _, v := range values {
		b := v.Bytes()
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(b)))
		buf = append(buf, b...)
	}
	return buf
}

// poseidonBytes hashes data with the field-friendly varlen hash. Bytes are
// packed into 7-byte limbs, prefixed with the byte length, and padded to a
// multiple of the sponge rate.
func poseidonBytes(data []byte) []byte {
	elements := []field.Element{field.New(uint64(len(data)))}
	for i := 0; i < len(data); i += limbBytes {
		var limb uint64
		for j := i; j < i+limbBytes && j < len(data); j++ {
			limb = limb<<8 | uint64(data[j])
		}
		elements = append(elements, field.New(limb))
	}
	for len(elements)%poseidonRate != 0 {
		elements = append(elements, field.Zero)
	}

	digest := hash.HashVarlen(elements)
	out := make([]byte, len(digest)*8)
	for i, elem := range digest {
		binary.LittleEndian.PutUint64(out[i*8:], elem.Value())
	}
	return out
}
