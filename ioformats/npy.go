package ioformats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnsupportedEmbeddingShape is returned when a decoded .npy array's
// shape does not match the fixed [1, 256, 64, 64] the SAM decoder
// expects
var ErrUnsupportedEmbeddingShape = errors.New("ioformats: embedding shape must be [1, 256, 64, 64]")

// EmbeddingShape is the only tensor shape accepted for SAM embeddings.
var EmbeddingShape = [4]int{1, 256, 64, 64}

// npyMagic is the fixed 6-byte magic string every .npy file starts with.
var npyMagic = []byte{0x93, 'N', 'U', 'M', 'P', 'Y'}

// headerDictRe extracts the `shape` and `descr` entries from a .npy
// header's Python-dict-literal text (e.g. "{'descr': '<f4', 'fortran_order':
// False, 'shape': (1, 256, 64, 64), }"). A full Python literal parser is
// unnecessary: the header format is fixed enough that targeted regexes
// are the pragmatic choice.
var (
	descrRe = regexp.MustCompile(`'descr':\s*'([^']+)'`)
	shapeRe = regexp.MustCompile(`'shape':\s*\(([^)]*)\)`)
)

// DecodeEmbedding parses a NumPy .npy file's bytes into a flat float32
// slice, validating that its dtype is little-endian float32 and its
// shape is exactly [1, 256, 64, 64] (the embedding format).
func DecodeEmbedding(data []byte) ([]float32, error) {
	body, count, err := parseNpyHeader(data)
	if err != nil {
		return nil, err
	}
	if count*4 > len(body) {
		return nil, fmt.Errorf("ioformats: .npy body too short: need %d bytes, have %d", count*4, len(body))
	}
	out := make([]float32, count)
	for i := range out {
		bits := binary.LittleEndian.Uint32(body[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}

// parseNpyHeader validates the magic, version, dtype, and shape, and
// returns the remaining bytes (the array body) plus the total element
// count implied by the declared shape.
func parseNpyHeader(data []byte) (body []byte, count int, err error) {
	if len(data) < 10 || string(data[:6]) != string(npyMagic) {
		return nil, 0, errors.New("ioformats: not a .npy file (bad magic)")
	}
	major := data[6]
	var headerLen int
	var headerStart int
	if major == 1 {
		if len(data) < 10 {
			return nil, 0, errors.New("ioformats: truncated .npy header")
		}
		headerLen = int(binary.LittleEndian.Uint16(data[8:10]))
		headerStart = 10
	} else {
		if len(data) < 12 {
			return nil, 0, errors.New("ioformats: truncated .npy header")
		}
		headerLen = int(binary.LittleEndian.Uint32(data[8:12]))
		headerStart = 12
	}
	headerEnd := headerStart + headerLen
	if headerEnd > len(data) {
		return nil, 0, errors.New("ioformats: .npy header length exceeds file size")
	}
	header := string(data[headerStart:headerEnd])

	descrMatch := descrRe.FindStringSubmatch(header)
	if descrMatch == nil {
		return nil, 0, errors.New("ioformats: .npy header missing descr")
	}
	if descrMatch[1] != "<f4" {
		return nil, 0, fmt.Errorf("ioformats: unsupported .npy dtype %q, expected \"<f4\"", descrMatch[1])
	}

	shapeMatch := shapeRe.FindStringSubmatch(header)
	if shapeMatch == nil {
		return nil, 0, errors.New("ioformats: .npy header missing shape")
	}
	shape, err := parseShape(shapeMatch[1])
	if err != nil {
		return nil, 0, err
	}
	if shape != EmbeddingShape {
		return nil, 0, fmt.Errorf("%w: got %v", ErrUnsupportedEmbeddingShape, shape)
	}

	count = 1
	for _, d := range shape {
		count *= d
	}
	return data[headerEnd:], count, nil
}

func parseShape(raw string) ([4]int, error) {
	var shape [4]int
	parts := strings.Split(raw, ",")
	idx := 0
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return shape, fmt.Errorf("ioformats: invalid shape dimension %q: %w", p, err)
		}
		if idx >= 4 {
			return shape, fmt.Errorf("%w: more than 4 dimensions", ErrUnsupportedEmbeddingShape)
		}
		shape[idx] = n
		idx++
	}
	if idx != 4 {
		return shape, fmt.Errorf("%w: expected 4 dimensions, got %d", ErrUnsupportedEmbeddingShape, idx)
	}
	return shape, nil
}

// EncodeEmbedding writes tensor (which must have exactly
// 1*256*64*64 elements) as a version-1.0 .npy file, the inverse of
// DecodeEmbedding. Used by cmd/annotatorctl's validate-embedding command
// to round-trip fixtures in tests.
func EncodeEmbedding(tensor []float32) ([]byte, error) {
	want := EmbeddingShape[0] * EmbeddingShape[1] * EmbeddingShape[2] * EmbeddingShape[3]
	if len(tensor) != want {
		return nil, fmt.Errorf("%w: got %d elements, want %d", ErrUnsupportedEmbeddingShape, len(tensor), want)
	}

	header := fmt.Sprintf("{'descr': '<f4', 'fortran_order': False, 'shape': (%d, %d, %d, %d), }",
		EmbeddingShape[0], EmbeddingShape[1], EmbeddingShape[2], EmbeddingShape[3])
	// Pad so magic(6) + version(2) + headerLen(2) + header is a multiple
	// of 64 bytes, per the .npy spec's alignment convention.
	total := 10 + len(header) + 1
	pad := (64 - total%64) % 64
	header += strings.Repeat(" ", pad) + "\n"

	out := make([]byte, 0, 10+len(header)+len(tensor)*4)
	out = append(out, npyMagic...)
	out = append(out, 1, 0)
	headerLen := make([]byte, 2)
	binary.LittleEndian.PutUint16(headerLen, uint16(len(header)))
	out = append(out, headerLen...)
	out = append(out, header...)
	for _, v := range tensor {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
		out = append(out, buf[:]...)
	}
	return out, nil
}
