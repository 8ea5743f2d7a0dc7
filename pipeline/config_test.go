package pipeline

import "testing"

func TestDefaultConfig_IsValid(t *testing.T) {
	if err := ValidateConfig(DefaultConfig()); err != nil {
		t.Fatalf("DefaultConfig() is invalid: %v", err)
	}
}

func TestValidateConfig_RejectsZeroBatchSize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BatchSize = 0
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected error for zero batch_size")
	}
}

func TestValidateConfig_RejectsMissingCropDims(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Augment.RandomCrop = true
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected error for random_crop without crop dims")
	}
}

func TestValidateConfig_RejectsNegativeNoiseStd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Augment.GaussianNoise = true
	cfg.NoiseStd = -1
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected error for negative noise_std")
	}
}

func TestValidateConfig_RejectsEmptyDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = ""
	if err := ValidateConfig(cfg); err == nil {
		t.Fatalf("expected error for empty data_dir")
	}
}
