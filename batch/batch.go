// Package batch assembles shuffled, Merkle-committed batches from a
// dataset and verifies them against a stored commitment.
package batch

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/williamofai/certifiable-data/coretypes"
	"github.com/williamofai/certifiable-data/merkle"
	"github.com/williamofai/certifiable-data/shuffle"
)

// New allocates an empty batch with capacity for batchSize samples.
func New(batchSize uint32) coretypes.Batch {
	return coretypes.Batch{
		Samples:      make([]coretypes.Sample, batchSize),
		SampleHashes: make([]coretypes.Hash, batchSize),
		BatchSize:    batchSize,
	}
}

// Fill populates b from dataset starting at batchIndex*b.BatchSize,
// drawing each slot's source sample via the keyed shuffle permutation,
// then computes each sample's hash and the batch's Merkle root.
//
// The final batch in a dataset may be partial: remaining slots are left
// as zero-valued samples with zero hashes, matching the original
// fixed-capacity batch layout.
func Fill(b *coretypes.Batch, dataset coretypes.Dataset, batchIndex, epoch uint32, seed uint64) error {
	start := batchIndex * b.BatchSize
	if start > dataset.NumSamples {
		return coretypes.NewError(coretypes.ErrBatchIndexRange, "start index exceeds dataset size")
	}

	count := b.BatchSize
	if start+count > dataset.NumSamples {
		count = dataset.NumSamples - start
	}

	for i := uint32(0); i < count; i++ {
		globalIdx := start + i
		shuffled := shuffle.Permute(globalIdx, dataset.NumSamples, seed, epoch)

		b.Samples[i] = dataset.Samples[shuffled]
		b.SampleHashes[i] = merkle.SampleHash(b.Samples[i])
	}

	for i := count; i < b.BatchSize; i++ {
		b.Samples[i] = coretypes.Sample{}
		b.SampleHashes[i] = coretypes.Hash{}
	}

	b.BatchIndex = batchIndex
	b.BatchHash = merkle.BatchHash(b.SampleHashes)
	return nil
}

// FillAndAugmentParallel fills b exactly as Fill does, then applies
// augmentFn to each non-empty slot concurrently, bounded by maxWorkers.
// augmentFn receives a private fault accumulator per call; all
// accumulators are OR-merged into faults at the join, matching the
// per-worker-accumulator model the augmentation stage is built around.
func FillAndAugmentParallel(ctx context.Context, b *coretypes.Batch, dataset coretypes.Dataset, batchIndex, epoch uint32, seed uint64, maxWorkers int, augmentFn func(s coretypes.Sample, idx int, faults *coretypes.Faults) coretypes.Sample, faults *coretypes.Faults) error {
	if err := Fill(b, dataset, batchIndex, epoch, seed); err != nil {
		return err
	}

	g, _ := errgroup.WithContext(ctx)
	if maxWorkers > 0 {
		g.SetLimit(maxWorkers)
	}

	results := make([]coretypes.Sample, len(b.Samples))
	workerFaults := make([]coretypes.Faults, len(b.Samples))

	for i, s := range b.Samples {
		i, s := i, s
		g.Go(func() error {
			if s.TotalElements == 0 {
				results[i] = s
				return nil
			}
			results[i] = augmentFn(s, i, &workerFaults[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	start := batchIndex * b.BatchSize
	count := b.BatchSize
	if start+count > dataset.NumSamples {
		count = dataset.NumSamples - start
	}

	for i := range results {
		b.Samples[i] = results[i]
		faults.Merge(workerFaults[i])
	}
	for i := uint32(0); i < count; i++ {
		b.SampleHashes[i] = merkle.SampleHash(b.Samples[i])
	}
	for i := count; i < b.BatchSize; i++ {
		b.SampleHashes[i] = coretypes.Hash{}
	}
	b.BatchHash = merkle.BatchHash(b.SampleHashes)
	return nil
}

// GetSample returns the sample at index within b, or false if out of range.
func GetSample(b coretypes.Batch, index uint32) (coretypes.Sample, bool) {
	if index >= b.BatchSize {
		return coretypes.Sample{}, false
	}
	return b.Samples[index], true
}

// Verify recomputes the Merkle root over b's sample hashes and compares
// it against the stored commitment.
func Verify(b coretypes.Batch) bool {
	return merkle.BatchHash(b.SampleHashes) == b.BatchHash
}
