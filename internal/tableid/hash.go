// Package tableid derives stable 64-bit table and column-alias identifiers
// from names. original_source left the hash algorithm and seed unpinned
// (Hasher::hash_str was opaque); weft pins it to xxhash64 with a fixed,
// documented domain-separation seed so the same name always hashes
// identically across processes and versions.
package tableid

import "github.com/cespare/xxhash/v2"

// seed is derived once from a fixed domain string so TableId hashing never
// collides with a future, differently-seeded hash family.
var seed = xxhash.Sum64String("weft:name:v1")

// ID is an opaque 64-bit identifier for a table or a column alias.
type ID uint64

// Hash derives an ID from a name, domain-separated by seed so that
// identical names always produce the same ID within this build.
func Hash(name string) ID {
	h := xxhash.New()
	var seedBytes [8]byte
	for i := 0; i < 8; i++ {
		seedBytes[i] = byte(seed >> (8 * i))
	}
	h.Write(seedBytes[:])
	h.Write([]byte(name))
	return ID(h.Sum64())
}
