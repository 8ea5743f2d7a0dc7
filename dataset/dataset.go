// Package dataset provides a minimal, mechanical binary loader for
// datasets using the sample byte layout fixed by the wire format:
// a little-endian (version, dtype, ndims, dims[4]) header followed by
// total_elements little-endian int32 values. This sits outside the
// bit-identical core — it exists only so a runnable pipeline has
// something upstream of dvm/merkle/shuffle/batch/provenance to read
// real data from.
package dataset

import (
	"encoding/binary"
	"io"

	"github.com/williamofai/certifiable-data/coretypes"
	"github.com/williamofai/certifiable-data/merkle"
)

const sampleHeaderBytes = 4 * (3 + coretypes.MaxDims)

// ComputeHash commits to a dataset's contents as the Merkle root of its
// per-sample hashes, giving the provenance chain a single H_dataset input
// that changes if any sample changes.
func ComputeHash(samples []coretypes.Sample) coretypes.Hash {
	hashes := make([]coretypes.Hash, len(samples))
	for i, s := range samples {
		hashes[i] = merkle.SampleHash(s)
	}
	return merkle.Root(hashes)
}

// LoadBinary reads a sequence of samples from r until EOF, in the wire
// format's header-then-data layout, and returns the assembled Dataset
// with DatasetHash populated via ComputeHash.
func LoadBinary(r io.Reader) (coretypes.Dataset, error) {
	var samples []coretypes.Sample

	for {
		var header [sampleHeaderBytes]byte
		_, err := io.ReadFull(r, header[:])
		if err == io.EOF {
			break
		}
		if err != nil {
			return coretypes.Dataset{}, coretypes.NewError(coretypes.ErrTruncatedHeader, err.Error())
		}

		s := coretypes.Sample{
			Version: binary.LittleEndian.Uint32(header[0:4]),
			Dtype:   binary.LittleEndian.Uint32(header[4:8]),
			Ndims:   binary.LittleEndian.Uint32(header[8:12]),
		}
		if s.Ndims > coretypes.MaxDims {
			return coretypes.Dataset{}, coretypes.NewError(coretypes.ErrTooManyDims, "")
		}

		total := uint32(1)
		for i := 0; i < coretypes.MaxDims; i++ {
			dim := binary.LittleEndian.Uint32(header[12+4*i : 16+4*i])
			s.Dims[i] = dim
			if uint32(i) < s.Ndims && dim > 0 {
				total *= dim
			}
		}
		if s.Ndims == 0 {
			total = 0
		}
		s.TotalElements = total
		if s.TotalElements > coretypes.MaxSampleElements {
			return coretypes.Dataset{}, coretypes.NewError(coretypes.ErrSampleTooLarge, "")
		}

		data := make([]int32, s.TotalElements)
		buf := make([]byte, 4*s.TotalElements)
		if _, err := io.ReadFull(r, buf); err != nil {
			return coretypes.Dataset{}, coretypes.NewError(coretypes.ErrTruncatedData, err.Error())
		}
		for i := range data {
			data[i] = int32(binary.LittleEndian.Uint32(buf[4*i : 4*i+4]))
		}
		s.Data = data

		samples = append(samples, s)
	}

	return coretypes.Dataset{
		Samples:     samples,
		NumSamples:  uint32(len(samples)),
		DatasetHash: ComputeHash(samples),
	}, nil
}

// SaveBinary writes ds back out in the same layout LoadBinary reads,
// enabling round-trip tests without a real dataset file on disk.
func SaveBinary(w io.Writer, ds coretypes.Dataset) error {
	for _, s := range ds.Samples {
		var header [sampleHeaderBytes]byte
		binary.LittleEndian.PutUint32(header[0:4], s.Version)
		binary.LittleEndian.PutUint32(header[4:8], s.Dtype)
		binary.LittleEndian.PutUint32(header[8:12], s.Ndims)
		for i := 0; i < coretypes.MaxDims; i++ {
			binary.LittleEndian.PutUint32(header[12+4*i:16+4*i], s.Dims[i])
		}
		if _, err := w.Write(header[:]); err != nil {
			return err
		}

		buf := make([]byte, 4*len(s.Data))
		for i, v := range s.Data {
			binary.LittleEndian.PutUint32(buf[4*i:4*i+4], uint32(v))
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}
