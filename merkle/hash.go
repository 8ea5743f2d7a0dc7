// Package merkle computes the domain-separated sample, internal, batch and
// epoch hashes, and reduces leaf hashes to a Merkle root with the
// promote-odd-node rule required for bit identity across implementations.
//
// SHA-256 is provided by github.com/minio/sha256-simd: a drop-in, bit-
// identical accelerated implementation of the same NIST FIPS 180-4
// algorithm spec mandates — not a different hash function.
package merkle

import (
	"encoding/binary"

	sha256 "github.com/minio/sha256-simd"

	"github.com/williamofai/certifiable-data/coretypes"
)

const headerBytes = 4 * (3 + coretypes.MaxDims) // version, dtype, ndims, dims[0..3]

// SampleHash computes H_sample = SHA256(LEAF || header || data).
func SampleHash(s coretypes.Sample) coretypes.Hash {
	h := sha256.New()
	h.Write([]byte{coretypes.DomainLeaf})

	var header [headerBytes]byte
	binary.LittleEndian.PutUint32(header[0:4], s.Version)
	binary.LittleEndian.PutUint32(header[4:8], s.Dtype)
	binary.LittleEndian.PutUint32(header[8:12], s.Ndims)
	for i := 0; i < coretypes.MaxDims; i++ {
		var dim uint32
		if uint32(i) < s.Ndims {
			dim = s.Dims[i]
		}
		binary.LittleEndian.PutUint32(header[12+4*i:16+4*i], dim)
	}
	h.Write(header[:])

	var elem [4]byte
	for _, v := range s.Data {
		binary.LittleEndian.PutUint32(elem[:], uint32(v))
		h.Write(elem[:])
	}

	var out coretypes.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// InternalHash computes H_int(L, R) = SHA256(INTERNAL || L || R).
func InternalHash(left, right coretypes.Hash) coretypes.Hash {
	h := sha256.New()
	h.Write([]byte{coretypes.DomainInternal})
	h.Write(left[:])
	h.Write(right[:])
	var out coretypes.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Root reduces leaves to a Merkle root bottom-up. count==0 returns the
// all-zero hash; count==1 returns the single leaf unchanged. Odd counts at
// any level promote the last unpaired node unchanged to the next level —
// duplicating it instead would silently disagree with every other
// conforming implementation.
func Root(leaves []coretypes.Hash) coretypes.Hash {
	if len(leaves) == 0 {
		return coretypes.Hash{}
	}
	if len(leaves) == 1 {
		return leaves[0]
	}

	level := make([]coretypes.Hash, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		next := make([]coretypes.Hash, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 < len(level) {
				next = append(next, InternalHash(level[i], level[i+1]))
			} else {
				next = append(next, level[i])
			}
		}
		level = next
	}
	return level[0]
}

// BatchHash is the Merkle root over a batch's sample hashes, including
// zero-padded entries for a partial last batch.
func BatchHash(sampleHashes []coretypes.Hash) coretypes.Hash {
	return Root(sampleHashes)
}

// EpochHash is the Merkle root over all batch hashes in an epoch.
func EpochHash(batchHashes []coretypes.Hash) coretypes.Hash {
	return Root(batchHashes)
}
