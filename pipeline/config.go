// Package pipeline wires the core stages — dataset load, batch fill,
// normalize, augment, provenance advance, persistence — into the
// end-to-end run a cmd entry point drives.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/williamofai/certifiable-data/coretypes"
)

// PipelineConfig is the full set of knobs a training run needs: where
// its data and state directory live, and the per-epoch augmentation and
// normalization behavior.
type PipelineConfig struct {
	DataDir   string `json:"data_dir"`
	BatchSize uint32 `json:"batch_size"`
	NumEpochs uint32 `json:"num_epochs"`
	Seed      uint64 `json:"seed"`

	Augment    coretypes.AugmentFlags `json:"augment"`
	CropWidth  uint32                 `json:"crop_width"`
	CropHeight uint32                 `json:"crop_height"`
	NoiseStd   int32                  `json:"noise_std"`

	MaxParallelWorkers int `json:"max_parallel_workers"`
}

// DefaultDataDir returns the pipeline's default state directory.
func DefaultDataDir() string {
	return "./ct-pipeline-data"
}

// DefaultConfig returns conservative, always-valid defaults.
func DefaultConfig() PipelineConfig {
	return PipelineConfig{
		DataDir:            DefaultDataDir(),
		BatchSize:          32,
		NumEpochs:          1,
		Seed:               1,
		MaxParallelWorkers: 4,
	}
}

// ValidateConfig rejects configurations the pipeline cannot run with.
func ValidateConfig(cfg PipelineConfig) error {
	if cfg.DataDir == "" {
		return errors.New("data_dir is required")
	}
	if cfg.BatchSize == 0 {
		return errors.New("batch_size must be > 0")
	}
	if cfg.NumEpochs == 0 {
		return errors.New("num_epochs must be > 0")
	}
	if cfg.Augment.RandomCrop && (cfg.CropWidth == 0 || cfg.CropHeight == 0) {
		return fmt.Errorf("random_crop enabled but crop_width/crop_height not set")
	}
	if cfg.Augment.GaussianNoise && cfg.NoiseStd < 0 {
		return errors.New("noise_std must be >= 0")
	}
	if cfg.MaxParallelWorkers < 0 {
		return errors.New("max_parallel_workers must be >= 0")
	}
	return nil
}
