package ioformats

import (
	"errors"
	"fmt"
	"sort"

	"github.com/annota/core/geometry"
	"github.com/annota/core/store"
)

// ErrUnsupportedFormat is returned by the concrete HDF5 decoders: a
// cgo-heavy HDF5 binding is not worth carrying for two datasets. The two
// pure array->annotation algorithms (centroid-per-label, point-per-row)
// are implemented below against in-memory slices; only the byte-level
// HDF5 container format itself is stubbed behind the decoder interfaces.
var ErrUnsupportedFormat = errors.New("ioformats: HDF5 decoding is not supported in this build")

// MaskDatasetDecoder opens an HDF5 file and returns its "masks",
// "instances", or "labels" dataset as a row-major 2-D integer array,
// 0 meaning background.
type MaskDatasetDecoder interface {
	DecodeMaskDataset(data []byte) (labels [][]int, err error)
}

// CoordinateDatasetDecoder opens an HDF5 file and returns a 2-D float
// table of shape [N, >=2] (x, y, ...).
type CoordinateDatasetDecoder interface {
	DecodeCoordinateDataset(data []byte) (rows [][]float64, err error)
}

// UnsupportedHDF5Decoder implements both MaskDatasetDecoder and
// CoordinateDatasetDecoder by always failing with ErrUnsupportedFormat.
// It exists so callers have a concrete type to wire up today, and a
// drop-in replacement slot for a real HDF5 binding later without
// touching call sites.
type UnsupportedHDF5Decoder struct{}

func (UnsupportedHDF5Decoder) DecodeMaskDataset(data []byte) ([][]int, error) {
	return nil, ErrUnsupportedFormat
}

func (UnsupportedHDF5Decoder) DecodeCoordinateDataset(data []byte) ([][]float64, error) {
	return nil, ErrUnsupportedFormat
}

// AnnotationsFromMaskDataset converts a row-major 2-D integer label
// array into one point annotation per distinct nonzero id, placed at
// that id's pixel centroid.
func AnnotationsFromMaskDataset(labels [][]int) []store.Annotation {
	sumX := map[int]float64{}
	sumY := map[int]float64{}
	count := map[int]int{}

	for y, row := range labels {
		for x, id := range row {
			if id == 0 {
				continue
			}
			sumX[id] += float64(x)
			sumY[id] += float64(y)
			count[id]++
		}
	}

	ids := make([]int, 0, len(count))
	for id := range count {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]store.Annotation, 0, len(ids))
	for _, id := range ids {
		n := float64(count[id])
		shape := geometry.NewPoint(sumX[id]/n, sumY[id]/n)
		out = append(out, store.Annotation{
			Shape:      shape,
			Properties: map[string]any{store.PropertySource: fmt.Sprintf("mask-label-%d", id)},
		})
	}
	return out
}

// AnnotationsFromCoordinateDataset converts a [N, >=2] float table into
// one point annotation per row, taking the first two columns as (x, y).
func AnnotationsFromCoordinateDataset(rows [][]float64) ([]store.Annotation, error) {
	out := make([]store.Annotation, 0, len(rows))
	for i, row := range rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("ioformats: coordinate row %d has %d columns, need at least 2", i, len(row))
		}
		out = append(out, store.Annotation{Shape: geometry.NewPoint(row[0], row[1])})
	}
	return out, nil
}
