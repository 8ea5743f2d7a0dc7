// Package provenance maintains the epoch-chained hash commitment over a
// training run: a SHA-256 chain tip that advances once per completed
// epoch, so that tampering with any past epoch invalidates every hash
// computed after it.
package provenance

import (
	"encoding/binary"

	sha256 "github.com/minio/sha256-simd"

	"github.com/williamofai/certifiable-data/coretypes"
)

// Init seeds the provenance chain: h0 = SHA256(PROVENANCE || H_dataset ||
// H_config || seed_le8). current_hash and prev_hash both start at h0;
// current_epoch and total_epochs start at 0.
func Init(datasetHash, configHash coretypes.Hash, seed uint64) coretypes.Provenance {
	h := sha256.New()
	h.Write([]byte{coretypes.DomainProvenance})
	h.Write(datasetHash[:])
	h.Write(configHash[:])

	var seedBuf [8]byte
	binary.LittleEndian.PutUint64(seedBuf[:], seed)
	h.Write(seedBuf[:])

	var h0 coretypes.Hash
	copy(h0[:], h.Sum(nil))

	return coretypes.Provenance{
		CurrentEpoch: 0,
		TotalEpochs:  0,
		CurrentHash:  h0,
		PrevHash:     h0,
	}
}

// Advance folds epochHash into the chain: h_e = SHA256(EPOCH_CHAIN ||
// h_{e-1} || H_epoch || e_le4), where e is the epoch number being closed
// (prov.CurrentEpoch before the call). prov.PrevHash is set to the prior
// current_hash, prov.CurrentHash becomes h_e, and both epoch counters
// increment.
func Advance(prov *coretypes.Provenance, epochHash coretypes.Hash) {
	prevHash := prov.CurrentHash
	prov.PrevHash = prevHash

	h := sha256.New()
	h.Write([]byte{coretypes.DomainEpochChain})
	h.Write(prevHash[:])
	h.Write(epochHash[:])

	var epochBuf [4]byte
	binary.LittleEndian.PutUint32(epochBuf[:], prov.CurrentEpoch)
	h.Write(epochBuf[:])

	var next coretypes.Hash
	copy(next[:], h.Sum(nil))

	prov.CurrentHash = next
	prov.CurrentEpoch++
	prov.TotalEpochs++
}
