package batch

import (
	"context"
	"testing"

	"github.com/williamofai/certifiable-data/coretypes"
	"github.com/williamofai/certifiable-data/merkle"
)

func makeDataset(n int) coretypes.Dataset {
	samples := make([]coretypes.Sample, n)
	for i := range samples {
		s := coretypes.Sample{Version: 1, Ndims: 1, Data: []int32{int32(i)}}
		s.Dims[0] = 1
		s.TotalElements = 1
		samples[i] = s
	}
	return coretypes.Dataset{Samples: samples, NumSamples: uint32(n)}
}

func TestFill_FullBatch(t *testing.T) {
	ds := makeDataset(10)
	b := New(4)

	if err := Fill(&b, ds, 0, 0, 99); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if b.BatchIndex != 0 {
		t.Fatalf("BatchIndex = %d, want 0", b.BatchIndex)
	}
	for i, s := range b.Samples {
		if s.TotalElements != 1 {
			t.Fatalf("sample %d not filled: %+v", i, s)
		}
	}
	if b.BatchHash != merkle.BatchHash(b.SampleHashes) {
		t.Fatalf("BatchHash inconsistent with SampleHashes")
	}
}

func TestFill_PartialLastBatch(t *testing.T) {
	ds := makeDataset(10)
	b := New(4)

	if err := Fill(&b, ds, 2, 0, 7); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	// start = 2*4 = 8, count = min(4, 10-8) = 2
	if b.Samples[0].TotalElements != 1 || b.Samples[1].TotalElements != 1 {
		t.Fatalf("expected first 2 slots filled")
	}
	if b.Samples[2].TotalElements != 0 || b.Samples[3].TotalElements != 0 {
		t.Fatalf("expected remaining slots zeroed, got %+v", b.Samples[2:])
	}
	if b.SampleHashes[2] != (coretypes.Hash{}) || b.SampleHashes[3] != (coretypes.Hash{}) {
		t.Fatalf("expected zero hashes for unfilled slots")
	}
}

func TestFill_OutOfRangeBatchIndex(t *testing.T) {
	ds := makeDataset(10)
	b := New(4)

	err := Fill(&b, ds, 100, 0, 1)
	if err == nil {
		t.Fatalf("expected error for out-of-range batch index")
	}
}

func TestVerify_RoundTrips(t *testing.T) {
	ds := makeDataset(10)
	b := New(4)
	if err := Fill(&b, ds, 0, 0, 1); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if !Verify(b) {
		t.Fatalf("Verify() = false, want true for freshly filled batch")
	}
}

func TestVerify_DetectsTampering(t *testing.T) {
	ds := makeDataset(10)
	b := New(4)
	if err := Fill(&b, ds, 0, 0, 1); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	b.SampleHashes[0][0] ^= 0xFF
	if Verify(b) {
		t.Fatalf("Verify() = true after tampering, want false")
	}
}

func TestGetSample_OutOfRange(t *testing.T) {
	b := New(4)
	if _, ok := GetSample(b, 10); ok {
		t.Fatalf("GetSample(10) on a 4-slot batch should report false")
	}
}

func TestFillAndAugmentParallel_MatchesSequential(t *testing.T) {
	ds := makeDataset(8)
	identity := func(s coretypes.Sample, idx int, faults *coretypes.Faults) coretypes.Sample {
		return s
	}

	b := New(4)
	var faults coretypes.Faults
	if err := FillAndAugmentParallel(context.Background(), &b, ds, 0, 0, 3, 4, identity, &faults); err != nil {
		t.Fatalf("FillAndAugmentParallel() error = %v", err)
	}
	if !Verify(b) {
		t.Fatalf("batch hash inconsistent after parallel fill+augment")
	}
	if faults.Any() {
		t.Fatalf("unexpected faults: %+v", faults)
	}

	sequential := New(4)
	if err := Fill(&sequential, ds, 0, 0, 3); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if b.BatchHash != sequential.BatchHash {
		t.Fatalf("parallel BatchHash %x != sequential BatchHash %x", b.BatchHash, sequential.BatchHash)
	}
}

func TestFillAndAugmentParallel_PartialBatchMatchesSequential(t *testing.T) {
	ds := makeDataset(10)
	identity := func(s coretypes.Sample, idx int, faults *coretypes.Faults) coretypes.Sample {
		return s
	}

	// batchIndex=2, batchSize=4 over 10 samples: start=8, count=2, a
	// partial final batch with two padded slots.
	parallel := New(4)
	var faults coretypes.Faults
	if err := FillAndAugmentParallel(context.Background(), &parallel, ds, 2, 0, 7, 4, identity, &faults); err != nil {
		t.Fatalf("FillAndAugmentParallel() error = %v", err)
	}

	sequential := New(4)
	if err := Fill(&sequential, ds, 2, 0, 7); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}

	if parallel.SampleHashes[2] != (coretypes.Hash{}) || parallel.SampleHashes[3] != (coretypes.Hash{}) {
		t.Fatalf("expected zero hashes for padded slots, got %+v", parallel.SampleHashes[2:])
	}
	if parallel.BatchHash != sequential.BatchHash {
		t.Fatalf("parallel BatchHash %x != sequential BatchHash %x for partial batch", parallel.BatchHash, sequential.BatchHash)
	}
}
