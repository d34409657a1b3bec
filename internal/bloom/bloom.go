// Package bloom implements a fixed-size Bloom filter used to skip segment
// files that cannot possibly contain a key. Guarantees no false negatives;
// may have false positives.
package bloom

import (
	"encoding/binary"

	"github.com/darrenpicard25/simple-lsm-db/internal/dberr"
)

const (
	// DefaultBitsPerKey and DefaultHashCount size a filter built for a
	// known number of expected keys (see ForKeys).
	DefaultBitsPerKey = 10
	DefaultHashCount  = 3

	fnvOffset64 uint64 = 0xCBF29CE484222325
	fnvPrime64  uint64 = 0x100000001B3

	headerLen = 16 // numBits u64 LE + numHashes u64 LE
)

// Filter is a packed bit array plus the hash fan-out used to set/test bits.
type Filter struct {
	numBits   uint64
	numHashes uint64
	bits      []byte
}

// New allocates an empty filter with the given bit count and hash fan-out.
func New(numBits, numHashes uint64) *Filter {
	if numHashes == 0 {
		numHashes = DefaultHashCount
	}
	if numBits == 0 {
		numBits = 8
	}
	return &Filter{
		numBits:   numBits,
		numHashes: numHashes,
		bits:      make([]byte, (numBits+7)/8),
	}
}

// ForKeys sizes a filter for an expected key count using the default bits
// per key and hash count.
func ForKeys(numKeys int) *Filter {
	if numKeys < 1 {
		numKeys = 1
	}
	return New(uint64(numKeys)*DefaultBitsPerKey, DefaultHashCount)
}

// Insert records key as a member of the set.
func (f *Filter) Insert(key []byte) {
	for i := uint64(0); i < f.numHashes; i++ {
		f.setBit(seededHash(key, i) % f.numBits)
	}
}

// MightContain reports whether key was possibly inserted. False means the
// key is definitely absent.
func (f *Filter) MightContain(key []byte) bool {
	for i := uint64(0); i < f.numHashes; i++ {
		if !f.getBit(seededHash(key, i) % f.numBits) {
			return false
		}
	}
	return true
}

func (f *Filter) setBit(bit uint64) {
	f.bits[bit/8] |= 1 << (bit % 8)
}

func (f *Filter) getBit(bit uint64) bool {
	return f.bits[bit/8]&(1<<(bit%8)) != 0
}

// Serialize renders the filter as [numBits LE u64][numHashes LE u64][bits].
func Serialize(f *Filter) []byte {
	out := make([]byte, headerLen+len(f.bits))
	binary.LittleEndian.PutUint64(out[0:8], f.numBits)
	binary.LittleEndian.PutUint64(out[8:16], f.numHashes)
	copy(out[headerLen:], f.bits)
	return out
}

// Deserialize parses the layout written by Serialize. Fewer than 16 header
// bytes is a malformed-record error.
func Deserialize(b []byte) (*Filter, error) {
	if len(b) < headerLen {
		return nil, dberr.New(dberr.MalformedRecord, "bloom filter header truncated")
	}
	numBits := binary.LittleEndian.Uint64(b[0:8])
	numHashes := binary.LittleEndian.Uint64(b[8:16])
	bits := make([]byte, len(b)-headerLen)
	copy(bits, b[headerLen:])
	return &Filter{numBits: numBits, numHashes: numHashes, bits: bits}, nil
}

// seededHash is FNV-1a over key, with the hash index folded into the seed
// before any key byte is mixed in, giving num_hashes independent digests
// from one pass per hash index rather than one per key byte.
func seededHash(key []byte, seed uint64) uint64 {
	h := fnvOffset64 ^ seed
	for _, b := range key {
		h ^= uint64(b)
		h *= fnvPrime64
	}
	return h
}
