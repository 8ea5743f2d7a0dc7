// Package confighash computes the canonical configuration commitment fed
// into provenance.Init as H_config. This sits outside the bit-identical
// core (the core treats H_config as an opaque 32-byte input); it uses
// SHA3-256 rather than the core's pinned SHA-256, since nothing in this
// role constrains it to FIPS 180-4 bit identity against the original.
package confighash

import (
	"encoding/json"
	"sort"

	"golang.org/x/crypto/sha3"

	"github.com/williamofai/certifiable-data/coretypes"
)

// TrainingConfig is the set of hyperparameters and dataset-facing knobs
// that, together with the dataset itself, determine a training run's
// provenance chain origin.
type TrainingConfig struct {
	Seed          uint64                 `json:"seed"`
	BatchSize     uint32                 `json:"batch_size"`
	NumEpochs     uint32                 `json:"num_epochs"`
	Normalization map[string][]int32     `json:"normalization,omitempty"`
	Augmentation  coretypes.AugmentFlags `json:"augmentation"`
	CropWidth     uint32                 `json:"crop_width,omitempty"`
	CropHeight    uint32                 `json:"crop_height,omitempty"`
	NoiseStd      int32                  `json:"noise_std,omitempty"`
	Extra         map[string]string      `json:"extra,omitempty"`
}

// Hash canonically serializes cfg and returns its SHA3-256 digest.
// Canonical means: Go's encoding/json already emits object keys in a
// stable, sorted order for map[string]V — the Extra map is therefore
// re-sorted explicitly via a wrapper to make that guarantee visible
// rather than implicit in stdlib behavior future readers must trust.
func Hash(cfg TrainingConfig) (coretypes.Hash, error) {
	canonical := struct {
		Seed          uint64                 `json:"seed"`
		BatchSize     uint32                 `json:"batch_size"`
		NumEpochs     uint32                 `json:"num_epochs"`
		Normalization map[string][]int32     `json:"normalization,omitempty"`
		Augmentation  coretypes.AugmentFlags `json:"augmentation"`
		CropWidth     uint32                 `json:"crop_width,omitempty"`
		CropHeight    uint32                 `json:"crop_height,omitempty"`
		NoiseStd      int32                  `json:"noise_std,omitempty"`
		ExtraKeys     []string               `json:"extra_keys,omitempty"`
		ExtraValues   []string               `json:"extra_values,omitempty"`
	}{
		Seed:          cfg.Seed,
		BatchSize:     cfg.BatchSize,
		NumEpochs:     cfg.NumEpochs,
		Normalization: cfg.Normalization,
		Augmentation:  cfg.Augmentation,
		CropWidth:     cfg.CropWidth,
		CropHeight:    cfg.CropHeight,
		NoiseStd:      cfg.NoiseStd,
	}

	if len(cfg.Extra) > 0 {
		keys := make([]string, 0, len(cfg.Extra))
		for k := range cfg.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make([]string, len(keys))
		for i, k := range keys {
			values[i] = cfg.Extra[k]
		}
		canonical.ExtraKeys = keys
		canonical.ExtraValues = values
	}

	buf, err := json.Marshal(canonical)
	if err != nil {
		return coretypes.Hash{}, err
	}

	digest := sha3.Sum256(buf)
	return coretypes.Hash(digest), nil
}
