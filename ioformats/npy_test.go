package ioformats

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeEmbeddingRoundTrips(t *testing.T) {
	n := EmbeddingShape[0] * EmbeddingShape[1] * EmbeddingShape[2] * EmbeddingShape[3]
	tensor := make([]float32, n)
	for i := range tensor {
		tensor[i] = float32(i%997) * 0.125
	}

	data, err := EncodeEmbedding(tensor)
	require.NoError(t, err)

	decoded, err := DecodeEmbedding(data)
	require.NoError(t, err)
	require.Equal(t, tensor, decoded)
}

func TestEncodeEmbeddingRejectsWrongElementCount(t *testing.T) {
	_, err := EncodeEmbedding(make([]float32, 10))
	require.ErrorIs(t, err, ErrUnsupportedEmbeddingShape)
}

func TestDecodeEmbeddingRejectsBadMagic(t *testing.T) {
	_, err := DecodeEmbedding([]byte("not an npy file at all"))
	require.Error(t, err)
}

func TestDecodeEmbeddingRejectsWrongShape(t *testing.T) {
	// A valid v1.0 header declaring a float32 array of the wrong shape.
	header := "{'descr': '<f4', 'fortran_order': False, 'shape': (1, 2, 2, 2), }"
	pad := (64 - (10+len(header)+1)%64) % 64
	header += string(make([]byte, pad)) + "\n"

	buf := append([]byte{}, npyMagic...)
	buf = append(buf, 1, 0)
	buf = append(buf, byte(len(header)), byte(len(header)>>8))
	buf = append(buf, header...)
	buf = append(buf, make([]byte, 8*4)...) // 8 float32 elements

	_, err := DecodeEmbedding(buf)
	require.True(t, errors.Is(err, ErrUnsupportedEmbeddingShape))
}
