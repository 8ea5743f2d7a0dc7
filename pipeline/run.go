package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/williamofai/certifiable-data/augment"
	"github.com/williamofai/certifiable-data/batch"
	"github.com/williamofai/certifiable-data/confighash"
	"github.com/williamofai/certifiable-data/coretypes"
	"github.com/williamofai/certifiable-data/dataset"
	"github.com/williamofai/certifiable-data/normalize"
	"github.com/williamofai/certifiable-data/provenance"
	"github.com/williamofai/certifiable-data/store"
)

// EpochResult summarizes one completed epoch for the caller/CLI.
type EpochResult struct {
	Epoch       uint32
	NumBatches  uint32
	EpochHash   coretypes.Hash
	Provenance  coretypes.Provenance
	FaultsAny   bool
	FaultsCount coretypes.Faults
}

// Run loads a dataset, runs NumEpochs epochs of fill/normalize/augment
// over it, persists every batch and the provenance chain to db, and
// returns one EpochResult per epoch in order.
func Run(ctx context.Context, cfg PipelineConfig, dataReader io.Reader, norm coretypes.NormalizeContext, cfgHash coretypes.Hash, db *store.DB) ([]EpochResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	ds, err := dataset.LoadBinary(dataReader)
	if err != nil {
		return nil, err
	}
	if ds.NumSamples == 0 {
		return nil, coretypes.NewError(coretypes.ErrNilDataset, "dataset has zero samples")
	}

	prov := provenance.Init(ds.DatasetHash, cfgHash, cfg.Seed)
	if err := db.PutProvenance(prov); err != nil {
		return nil, fmt.Errorf("pipeline: persist initial provenance: %w", err)
	}

	numBatches := (ds.NumSamples + cfg.BatchSize - 1) / cfg.BatchSize
	results := make([]EpochResult, 0, cfg.NumEpochs)

	for epoch := uint32(0); epoch < cfg.NumEpochs; epoch++ {
		var epochFaults coretypes.Faults

		augCtx := augment.NewContext(cfg.Seed, epoch, cfg.Augment, cfg.CropWidth, cfg.CropHeight, cfg.NoiseStd)

		for bi := uint32(0); bi < numBatches; bi++ {
			b := batch.New(cfg.BatchSize)

			augmentFn := func(s coretypes.Sample, idx int, faults *coretypes.Faults) coretypes.Sample {
				normalized := normalize.Sample(norm, s, faults)
				return augment.Sample(augCtx, normalized, uint32(bi*cfg.BatchSize+uint32(idx)), faults)
			}

			if err := batch.FillAndAugmentParallel(ctx, &b, ds, bi, epoch, cfg.Seed, cfg.MaxParallelWorkers, augmentFn, &epochFaults); err != nil {
				return results, fmt.Errorf("pipeline: epoch %d batch %d: %w", epoch, bi, err)
			}
			if !batch.Verify(b) {
				epochFaults.ChainInvalid = true
			}
			if err := db.PutBatchHash(bi, b.BatchHash); err != nil {
				return results, fmt.Errorf("pipeline: epoch %d batch %d: persist hash: %w", epoch, bi, err)
			}
		}

		epochHash, err := db.ComputeAndStoreEpochHash(numBatches)
		if err != nil {
			return results, fmt.Errorf("pipeline: epoch %d: compute epoch hash: %w", epoch, err)
		}
		provenance.Advance(&prov, epochHash)
		if err := db.PutProvenance(prov); err != nil {
			return results, fmt.Errorf("pipeline: epoch %d: persist provenance: %w", epoch, err)
		}

		results = append(results, EpochResult{
			Epoch:       epoch,
			NumBatches:  numBatches,
			EpochHash:   epochHash,
			Provenance:  prov,
			FaultsAny:   epochFaults.Any(),
			FaultsCount: epochFaults,
		})
	}

	m := &store.Manifest{
		SchemaVersion:      store.SchemaVersionV1,
		DatasetHashHex:     hashHex(ds.DatasetHash),
		ProvenanceTipHex:   hashHex(prov.CurrentHash),
		ProvenanceEpoch:    prov.CurrentEpoch,
		ProvenanceTotalEps: prov.TotalEpochs,
	}
	if err := db.SetManifest(m); err != nil {
		return results, fmt.Errorf("pipeline: persist manifest: %w", err)
	}

	return results, nil
}

func hashHex(h coretypes.Hash) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, len(h)*2)
	for i, b := range h {
		buf[2*i] = hexDigits[b>>4]
		buf[2*i+1] = hexDigits[b&0xF]
	}
	return string(buf)
}

// ConfigHashFromTraining computes the canonical config hash for a
// TrainingConfig, the form pipeline.Run expects as its cfgHash argument.
func ConfigHashFromTraining(cfg confighash.TrainingConfig) (coretypes.Hash, error) {
	return confighash.Hash(cfg)
}
