// Package normalize rescales samples to zero mean, unit variance using
// precomputed per-feature statistics, entirely in Q16.16 fixed point.
package normalize

import (
	"github.com/williamofai/certifiable-data/coretypes"
	"github.com/williamofai/certifiable-data/dvm"
)

// NewContext builds a normalization context from parallel means/inv_stds
// slices. NumFeatures is the shorter of the two lengths; features beyond
// it pass through Sample unchanged.
func NewContext(means, invStds []int32) coretypes.NormalizeContext {
	n := uint32(len(means))
	if uint32(len(invStds)) < n {
		n = uint32(len(invStds))
	}
	return coretypes.NormalizeContext{
		Means:       means,
		InvStds:     invStds,
		NumFeatures: n,
	}
}

// Sample normalizes a single sample: y[i] = (x[i] - mean[i]) * inv_std[i]
// for i < ctx.NumFeatures, element i unchanged otherwise.
func Sample(ctx coretypes.NormalizeContext, in coretypes.Sample, faults *coretypes.Faults) coretypes.Sample {
	out := in.Clone()

	limit := in.TotalElements
	if ctx.NumFeatures < limit {
		limit = ctx.NumFeatures
	}

	for i := uint32(0); i < limit; i++ {
		x := in.Data[i]
		mean := ctx.Means[i]
		invStd := ctx.InvStds[i]

		centered := dvm.Sub32(x, mean, faults)
		out.Data[i] = dvm.MulQ16(centered, invStd, faults)
	}
	return out
}

// Batch normalizes every sample in a batch, preserving batch metadata and
// hashes untouched — normalization runs on data, not on the commitment.
func Batch(ctx coretypes.NormalizeContext, in coretypes.Batch, faults *coretypes.Faults) coretypes.Batch {
	out := coretypes.Batch{
		Samples:      make([]coretypes.Sample, len(in.Samples)),
		SampleHashes: in.SampleHashes,
		BatchSize:    in.BatchSize,
		BatchIndex:   in.BatchIndex,
		BatchHash:    in.BatchHash,
	}
	for i, s := range in.Samples {
		out.Samples[i] = Sample(ctx, s, faults)
	}
	return out
}
