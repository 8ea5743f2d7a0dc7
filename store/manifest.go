package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const SchemaVersionV1 uint32 = 1

// Manifest is the crash-safe sidecar describing what a DB's bbolt file
// currently holds: schema version, the dataset commitment, and the
// provenance chain tip as of the last successful epoch.
type Manifest struct {
	SchemaVersion uint32 `json:"schema_version"`

	DatasetHashHex string `json:"dataset_hash"`

	ProvenanceTipHex   string `json:"provenance_tip"`
	ProvenanceEpoch    uint32 `json:"provenance_epoch"`
	ProvenanceTotalEps uint32 `json:"provenance_total_epochs"`
}

func (d *DB) manifestPath() string {
	return filepath.Join(d.dir, "MANIFEST.json")
}

// readManifest reads MANIFEST.json from d.dir, if present. It is called
// once from Open, which caches the result as read; the manifest's
// contents are not checked against the batch or provenance buckets.
func (d *DB) readManifest() (*Manifest, error) {
	b, err := os.ReadFile(d.manifestPath())
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("manifest json: %w", err)
	}
	return &m, nil
}

// writeManifestAtomic commits m as MANIFEST.json alongside d's bbolt
// file: write temp -> fsync temp -> rename -> fsync dir. SetManifest only
// calls this after the epoch's batch hashes and provenance record have
// already been committed via d.db.Update, so a manifest that lands on
// disk always describes bbolt state that is itself already durable —
// the ordering, not just the write sequence, is what makes this
// sidecar crash-safe for this package's layout.
func (d *DB) writeManifestAtomic(m *Manifest) error {
	if m == nil {
		return fmt.Errorf("manifest: nil")
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("manifest json: %w", err)
	}
	b = append(b, '\n')

	final := d.manifestPath()
	tmp := final + ".tmp"

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("manifest open tmp: %w", err)
	}
	_, werr := f.Write(b)
	serr := f.Sync()
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("manifest write tmp: %w", werr)
	}
	if serr != nil {
		return fmt.Errorf("manifest fsync tmp: %w", serr)
	}
	if cerr != nil {
		return fmt.Errorf("manifest close tmp: %w", cerr)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("manifest rename: %w", err)
	}

	dirHandle, err := os.Open(d.dir)
	if err != nil {
		return fmt.Errorf("manifest fsync dir open: %w", err)
	}
	if err := dirHandle.Sync(); err != nil {
		_ = dirHandle.Close()
		return fmt.Errorf("manifest fsync dir: %w", err)
	}
	if err := dirHandle.Close(); err != nil {
		return fmt.Errorf("manifest fsync dir close: %w", err)
	}
	return nil
}
