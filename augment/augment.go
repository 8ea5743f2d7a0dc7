// Package augment applies deterministic, PRNG-keyed transforms to samples:
// a coin-flip horizontal mirror, a rejection-sampled random crop, and
// additive pseudo-Gaussian noise. Every random decision is derived from
// (seed, epoch, op_id) so two runs with the same inputs produce identical
// augmented samples.
package augment

import (
	"github.com/williamofai/certifiable-data/coretypes"
	"github.com/williamofai/certifiable-data/dvm"
	"github.com/williamofai/certifiable-data/prng"
)

// op_id slot layout: the low 16 bits select the sub-operation within a
// sample, the high 16 bits carry the sample's global index — this keeps
// every augmentation decision for every sample independently addressable.
const (
	opSlotFlip  = 0x0100
	opSlotCropX = 0x0001
	opSlotCropY = 0x0002
	opSlotNoise = 0x1000
)

func opID(sampleIdx uint32, slot uint32) uint32 {
	return (sampleIdx << 16) | slot
}

// NewContext builds a per-epoch augmentation context.
func NewContext(seed uint64, epoch uint32, flags coretypes.AugmentFlags, cropWidth, cropHeight uint32, noiseStd int32) coretypes.AugmentContext {
	return coretypes.AugmentContext{
		Seed:       seed,
		Epoch:      epoch,
		Flags:      flags,
		CropWidth:  cropWidth,
		CropHeight: cropHeight,
		NoiseStd:   noiseStd,
	}
}

// horizontalFlip mirrors a row-major [height, width] sample's columns.
func horizontalFlip(data []int32, width, height uint32) {
	for row := uint32(0); row < height; row++ {
		for col := uint32(0); col < width/2; col++ {
			left := row*width + col
			right := row*width + (width - 1 - col)
			data[left], data[right] = data[right], data[left]
		}
	}
}

// randomCrop draws a crop origin via rejection-sampled PRNG uniforms and
// copies the cropWidth x cropHeight window into a fresh buffer.
func randomCrop(src []int32, srcWidth, srcHeight, cropWidth, cropHeight uint32, seed uint64, epoch, sampleIdx uint32) []int32 {
	maxX := srcWidth - cropWidth
	maxY := srcHeight - cropHeight

	cropX := prng.Uniform(seed, epoch, opID(sampleIdx, opSlotCropX), maxX+1)
	cropY := prng.Uniform(seed, epoch, opID(sampleIdx, opSlotCropY), maxY+1)

	out := make([]int32, cropWidth*cropHeight)
	for y := uint32(0); y < cropHeight; y++ {
		for x := uint32(0); x < cropWidth; x++ {
			srcIdx := (cropY+y)*srcWidth + (cropX + x)
			dstIdx := y*cropWidth + x
			out[dstIdx] = src[srcIdx]
		}
	}
	return out
}

// gaussianNoiseComponent extracts the noise-eligible fraction of a PRNG
// draw: the high 32 bits of the 64-bit output, masked to the top 16 bits
// of that word and left-aligned as a Q16.16 value with a zero fractional
// half — narrower entropy than a full Q16.16 uniform, but this exact
// masking is required for bit-identical output.
func gaussianNoiseComponent(u uint64) int32 {
	return int32((u >> 32) & 0xFFFF0000)
}

// gaussianNoise adds approximately-uniform noise in [-std, +std] to each
// element, processing elements in pairs (two independent PRNG draws).
func gaussianNoise(data []int32, noiseStd int32, seed uint64, epoch, sampleIdx uint32, faults *coretypes.Faults) {
	n := uint32(len(data))
	for i := uint32(0); i < n; i += 2 {
		u1 := prng.Generate(seed, epoch, opID(sampleIdx, opSlotNoise+i))
		u2 := prng.Generate(seed, epoch, opID(sampleIdx, opSlotNoise+i+1))

		u1Fixed := gaussianNoiseComponent(u1)
		u2Fixed := gaussianNoiseComponent(u2)

		noise1 := dvm.MulQ16(noiseStd, dvm.Sub32(u1Fixed, coretypes.FixedHalf, faults), faults)
		noise1 = dvm.Add32(noise1, noise1, faults)

		noise2 := dvm.MulQ16(noiseStd, dvm.Sub32(u2Fixed, coretypes.FixedHalf, faults), faults)
		noise2 = dvm.Add32(noise2, noise2, faults)

		data[i] = dvm.Add32(data[i], noise1, faults)
		if i+1 < n {
			data[i+1] = dvm.Add32(data[i+1], noise2, faults)
		}
	}
}

// Sample applies the context's enabled transforms, in order: flip, crop,
// noise. sampleIdx is the sample's global position, used to key every
// PRNG draw so augmentation is reproducible per-sample, not just per-run.
func Sample(ctx coretypes.AugmentContext, in coretypes.Sample, sampleIdx uint32, faults *coretypes.Faults) coretypes.Sample {
	out := in.Clone()

	height := out.Dims[0]
	width := uint32(1)
	if out.Ndims > 1 {
		width = out.Dims[1]
	}

	if ctx.Flags.HFlip {
		decision := prng.Generate(ctx.Seed, ctx.Epoch, opID(sampleIdx, opSlotFlip))
		if decision&0x1 == 1 {
			horizontalFlip(out.Data, width, height)
		}
	}

	if ctx.Flags.RandomCrop && ctx.CropWidth > 0 && ctx.CropHeight > 0 {
		cropped := randomCrop(out.Data, width, height, ctx.CropWidth, ctx.CropHeight, ctx.Seed, ctx.Epoch, sampleIdx)
		out.Data = cropped
		out.Dims[0] = ctx.CropHeight
		out.Dims[1] = ctx.CropWidth
		out.TotalElements = ctx.CropWidth * ctx.CropHeight
	}

	if ctx.Flags.GaussianNoise && ctx.NoiseStd > 0 {
		gaussianNoise(out.Data, ctx.NoiseStd, ctx.Seed, ctx.Epoch, sampleIdx, faults)
	}

	return out
}

// Batch augments every sample in a batch. Global sample indices are
// derived from batchIndex*batchSize + local offset, matching how the
// dataset assigns stable per-sample PRNG identities across batches.
func Batch(ctx coretypes.AugmentContext, in coretypes.Batch, faults *coretypes.Faults) coretypes.Batch {
	out := coretypes.Batch{
		Samples:      make([]coretypes.Sample, len(in.Samples)),
		SampleHashes: in.SampleHashes,
		BatchSize:    in.BatchSize,
		BatchIndex:   in.BatchIndex,
		BatchHash:    in.BatchHash,
	}
	for i, s := range in.Samples {
		globalIdx := in.BatchIndex*in.BatchSize + uint32(i)
		out.Samples[i] = Sample(ctx, s, globalIdx, faults)
	}
	return out
}
