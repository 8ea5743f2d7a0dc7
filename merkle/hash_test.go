package merkle

import (
	"encoding/hex"
	"testing"

	sha256 "github.com/minio/sha256-simd"

	"github.com/williamofai/certifiable-data/coretypes"
)

func TestSHA256_NISTVectors(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
	}
	for _, c := range cases {
		got := sha256.Sum256([]byte(c.in))
		if hex.EncodeToString(got[:]) != c.want {
			t.Fatalf("sha256(%q) = %x, want %s", c.in, got, c.want)
		}
	}
}

func TestRoot_EmptyAndSingle(t *testing.T) {
	if got := Root(nil); got != (coretypes.Hash{}) {
		t.Fatalf("Root(nil) = %x, want zero hash", got)
	}
	leaf := coretypes.Hash{1, 2, 3}
	if got := Root([]coretypes.Hash{leaf}); got != leaf {
		t.Fatalf("Root(single) = %x, want %x", got, leaf)
	}
}

func TestRoot_OddPromotionNotDuplication(t *testing.T) {
	a := coretypes.Hash{1}
	b := coretypes.Hash{2}
	c := coretypes.Hash{3}

	// 3 leaves: level1 = [H(a,b), c] (c promoted unchanged); root = H(H(a,b), c).
	got := Root([]coretypes.Hash{a, b, c})
	want := InternalHash(InternalHash(a, b), c)
	if got != want {
		t.Fatalf("Root([a,b,c]) = %x, want %x (promote, not duplicate)", got, want)
	}

	duplicateWould := InternalHash(InternalHash(a, b), InternalHash(c, c))
	if got == duplicateWould {
		t.Fatalf("Root matched the duplicate-last-node rule, which the spec forbids")
	}
}

func TestDomainSeparation_LeafVsInternal(t *testing.T) {
	s := coretypes.Sample{Version: 1, Dtype: 0, Ndims: 1, Data: []int32{7}}
	s.Dims[0] = 1
	s.TotalElements = 1

	hLeaf := SampleHash(s)
	hIntSelf := InternalHash(hLeaf, hLeaf)
	if hLeaf == hIntSelf {
		t.Fatalf("SampleHash and InternalHash(x,x) collided: %x", hLeaf)
	}
}

func TestOrderSensitivity(t *testing.T) {
	l := coretypes.Hash{0xAA}
	r := coretypes.Hash{0xBB}
	if InternalHash(l, r) == InternalHash(r, l) {
		t.Fatalf("InternalHash(L,R) == InternalHash(R,L) for L != R")
	}
}

func TestSampleHash_Deterministic(t *testing.T) {
	s := coretypes.Sample{Version: 1, Ndims: 2, Data: []int32{1, 2, 3, 4}}
	s.Dims[0], s.Dims[1] = 2, 2
	s.TotalElements = 4

	a := SampleHash(s)
	b := SampleHash(s.Clone())
	if a != b {
		t.Fatalf("SampleHash not deterministic across clones: %x != %x", a, b)
	}
}

func TestBatchHash_PadsToFullMerkle(t *testing.T) {
	hashes := []coretypes.Hash{{1}, {2}, {3}, {}} // last entry zero-padded
	if got := BatchHash(hashes); got != Root(hashes) {
		t.Fatalf("BatchHash diverged from Root: %x != %x", got, Root(hashes))
	}
}
