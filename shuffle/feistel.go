// Package shuffle implements the bijective index permutation: a balanced
// 4-round Feistel network over a power-of-two domain, restricted to an
// arbitrary [0, N) by cycle-walking.
package shuffle

import (
	"encoding/binary"

	sha256 "github.com/minio/sha256-simd"
)

func ceilLog2(n uint32) uint32 {
	if n <= 1 {
		return 0
	}
	var result uint32
	m := n - 1
	for m > 0 {
		result++
		m >>= 1
	}
	return result
}

// feistelRound is the keyed round function F(R, round) = first four bytes,
// little-endian, of SHA256(seed_le8 || epoch_le4 || R_le4 || round_num_u8).
func feistelRound(r uint32, seed uint64, epoch uint32, round uint8) uint32 {
	var buf [17]byte
	binary.LittleEndian.PutUint64(buf[0:8], seed)
	binary.LittleEndian.PutUint32(buf[8:12], epoch)
	binary.LittleEndian.PutUint32(buf[12:16], r)
	buf[16] = round

	sum := sha256.Sum256(buf[:])
	return binary.LittleEndian.Uint32(sum[0:4])
}

// Permute returns the image of index under the keyed bijection on [0, N),
// computed via cycle-walking a balanced Feistel network over the smallest
// power-of-two domain containing N. Out-of-range input defensively wraps
// via modulo, matching the original implementation's contract.
func Permute(index, n uint32, seed uint64, epoch uint32) uint32 {
	if n <= 1 {
		return 0
	}
	if index >= n {
		return index % n
	}

	k := ceilLog2(n)
	domainRange := uint32(1) << k
	halfBits := (k + 1) / 2
	halfMask := uint32(1)<<halfBits - 1

	i := index
	for iterations := uint32(0); iterations < domainRange; iterations++ {
		l := i & halfMask
		r := (i >> halfBits) & halfMask

		for round := uint8(0); round < 4; round++ {
			f := feistelRound(r, seed, epoch, round) & halfMask
			l, r = r, l^f
		}

		i = (r << halfBits) | l
		if i < n {
			return i
		}
	}
	// Unreachable for any valid (index, N, seed, epoch): cycle-walking over
	// a bijection on [0, range) always returns within range iterations.
	return index % n
}

// VerifyBijectionSample is the original lightweight, non-exhaustive sanity
// check: the first min(numSamples, 10) indices must each land in [0, N).
func VerifyBijectionSample(seed uint64, epoch uint32, n, numSamples uint32) bool {
	if numSamples > n {
		return false
	}
	limit := numSamples
	if limit > 10 {
		limit = 10
	}
	for i := uint32(0); i < limit; i++ {
		if Permute(i, n, seed, epoch) >= n {
			return false
		}
	}
	return true
}

// VerifyBijectionExhaustive checks that {Permute(i, N, seed, epoch) : i in
// [0, N)} is exactly [0, N) — i.e. every output index is hit exactly once.
// This is O(N) and intended for tests and conformance tooling, never the
// hot batch-fill path.
func VerifyBijectionExhaustive(seed uint64, epoch uint32, n uint32) bool {
	if n == 0 {
		return true
	}
	seen := make([]bool, n)
	for i := uint32(0); i < n; i++ {
		out := Permute(i, n, seed, epoch)
		if out >= n || seen[out] {
			return false
		}
		seen[out] = true
	}
	return true
}
