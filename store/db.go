// Package store persists pipeline artifacts in a bbolt-backed key-value
// database, one bucket per artifact class, plus a MANIFEST.json sidecar
// written with a crash-safe write-temp/fsync/rename/fsync-dir sequence.
package store

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/blake2b"

	"github.com/williamofai/certifiable-data/coretypes"
	"github.com/williamofai/certifiable-data/merkle"
)

var (
	bucketSamplesByHash = []byte("samples_by_hash")
	bucketBlobsByCAS    = []byte("blobs_by_cas")
	bucketBatchHashes   = []byte("batch_hashes_by_index")
	bucketProvenance    = []byte("provenance")
)

const provenanceKey = "tip"

// DB wraps a bbolt-backed database rooted at dir, with an in-memory
// mirror of the most recently written manifest.
type DB struct {
	dir      string
	db       *bolt.DB
	manifest *Manifest
}

// Open opens (creating if needed) the bbolt database and bucket set
// rooted at dir. If dir has no prior MANIFEST.json, Manifest() returns
// nil until the caller calls SetManifest.
func Open(dir string) (*DB, error) {
	if dir == "" {
		return nil, fmt.Errorf("store: dir required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("store: mkdir: %w", err)
	}

	path := filepath.Join(dir, "pipeline.db")
	bdb, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open bbolt: %w", err)
	}

	d := &DB{dir: dir, db: bdb}

	if err := d.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketSamplesByHash, bucketBlobsByCAS, bucketBatchHashes, bucketProvenance} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("store: create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = bdb.Close()
		return nil, err
	}

	m, err := d.readManifest()
	if err != nil {
		if os.IsNotExist(err) {
			return d, nil
		}
		_ = bdb.Close()
		return nil, fmt.Errorf("store: read manifest: %w", err)
	}
	d.manifest = m
	return d, nil
}

// Close releases the underlying bbolt file handle.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// Manifest returns the last manifest written via SetManifest, or nil if
// none has been written yet.
func (d *DB) Manifest() *Manifest {
	if d == nil {
		return nil
	}
	return d.manifest
}

// SetManifest atomically persists m to MANIFEST.json and caches it.
func (d *DB) SetManifest(m *Manifest) error {
	if d == nil {
		return fmt.Errorf("store: nil db")
	}
	if err := d.writeManifestAtomic(m); err != nil {
		return err
	}
	d.manifest = m
	return nil
}

// PutSample stores a sample serialized form keyed by its domain-separated
// Merkle leaf hash, so lookups can verify-then-fetch by commitment.
func (d *DB) PutSample(hash coretypes.Hash, encoded []byte) error {
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSamplesByHash).Put(hash[:], encoded)
	})
}

// GetSample retrieves a previously stored sample by its Merkle leaf hash.
func (d *DB) GetSample(hash coretypes.Hash) ([]byte, bool, error) {
	var out []byte
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSamplesByHash).Get(hash[:])
		if v == nil {
			return nil
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

// PutBlob content-addresses a raw payload by its BLAKE2b-256 digest,
// deduplicating storage independent of the SHA-256 commitment hash used
// for the core's bit-identical Merkle chain. Returns the content key.
func (d *DB) PutBlob(data []byte) ([32]byte, error) {
	key := blake2b.Sum256(data)
	err := d.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBlobsByCAS)
		if b.Get(key[:]) != nil {
			return nil // already present; CAS dedup
		}
		return b.Put(key[:], data)
	})
	return key, err
}

// GetBlob retrieves a payload by its content-addressed BLAKE2b-256 key.
func (d *DB) GetBlob(key [32]byte) ([]byte, bool, error) {
	var out []byte
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketBlobsByCAS).Get(key[:])
		if v == nil {
			return nil
		}
		out = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

// PutBatchHash records batch batchIndex's committed Merkle root.
func (d *DB) PutBatchHash(batchIndex uint32, hash coretypes.Hash) error {
	var key [4]byte
	binary.LittleEndian.PutUint32(key[:], batchIndex)
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketBatchHashes).Put(key[:], hash[:])
	})
}

// EpochBatchHashes returns every stored batch hash with index in
// [0, numBatches), in index order, for feeding into merkle.EpochHash.
func (d *DB) EpochBatchHashes(numBatches uint32) ([]coretypes.Hash, error) {
	out := make([]coretypes.Hash, numBatches)
	err := d.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketBatchHashes)
		for i := uint32(0); i < numBatches; i++ {
			var key [4]byte
			binary.LittleEndian.PutUint32(key[:], i)
			v := b.Get(key[:])
			if v != nil {
				copy(out[i][:], v)
			}
		}
		return nil
	})
	return out, err
}

// ComputeAndStoreEpochHash reduces the first numBatches stored batch
// hashes to an epoch Merkle root and returns it, without persisting it
// itself — callers fold it into provenance.Advance before calling
// PutProvenance.
func (d *DB) ComputeAndStoreEpochHash(numBatches uint32) (coretypes.Hash, error) {
	hashes, err := d.EpochBatchHashes(numBatches)
	if err != nil {
		return coretypes.Hash{}, err
	}
	return merkle.EpochHash(hashes), nil
}

// PutProvenance persists the current provenance chain state.
func (d *DB) PutProvenance(p coretypes.Provenance) error {
	buf := encodeProvenance(p)
	return d.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketProvenance).Put([]byte(provenanceKey), buf)
	})
}

// GetProvenance retrieves the last persisted provenance chain state.
func (d *DB) GetProvenance() (coretypes.Provenance, bool, error) {
	var out coretypes.Provenance
	var ok bool
	err := d.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketProvenance).Get([]byte(provenanceKey))
		if v == nil {
			return nil
		}
		p, err := decodeProvenance(v)
		if err != nil {
			return err
		}
		out = p
		ok = true
		return nil
	})
	return out, ok, err
}

func encodeProvenance(p coretypes.Provenance) []byte {
	// Layout: current_epoch u32le | total_epochs u32le | current_hash 32 | prev_hash 32
	buf := make([]byte, 4+4+32+32)
	binary.LittleEndian.PutUint32(buf[0:4], p.CurrentEpoch)
	binary.LittleEndian.PutUint32(buf[4:8], p.TotalEpochs)
	copy(buf[8:40], p.CurrentHash[:])
	copy(buf[40:72], p.PrevHash[:])
	return buf
}

func decodeProvenance(b []byte) (coretypes.Provenance, error) {
	if len(b) != 4+4+32+32 {
		return coretypes.Provenance{}, fmt.Errorf("store: provenance record truncated")
	}
	var p coretypes.Provenance
	p.CurrentEpoch = binary.LittleEndian.Uint32(b[0:4])
	p.TotalEpochs = binary.LittleEndian.Uint32(b[4:8])
	copy(p.CurrentHash[:], b[8:40])
	copy(p.PrevHash[:], b[40:72])
	return p, nil
}
