// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package compression provides the byte-budget-bounded compression codec
// used for storage service payloads. Both directions are capped: compressed
// output larger than the budget is rejected, and decompression refuses to
// inflate past the budget
package compression

import (
	"errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// CompressedData is an opaque compressed payload
type CompressedData []byte

// Client identifies the component performing (de)compression, for error
// context and metrics labels
type Client string

const (
	ClientStateSync Client = "state_sync"
	ClientConsensus Client = "consensus"
	ClientMempool   Client = "mempool"
)

var (
	ErrCompressedSizeLimit   = errors.New("compressed data exceeds maximum size")
	ErrDecompressedSizeLimit = errors.New("decompressed data exceeds maximum size")
)

// CompressionError wraps a codec failure with the client that hit it
type CompressionError struct {
	Client Client
	Op     string
	Err    error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Client, e.Err)
}

func (e *CompressionError) Unwrap() error {
	return e.Err
}

var encoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(
			nil,
			zstd.WithEncoderLevel(zstd.SpeedFastest),
		)
		if err != nil {
			panic(err)
		}
		return encoder
	},
}

// Compress compresses the provided data, failing if the compressed output
// would exceed maxBytes
func Compress(
	rawData []byte,
	client Client,
	maxBytes uint64,
) (CompressedData, error) {
	encoder := encoderPool.Get().(*zstd.Encoder)
	defer encoderPool.Put(encoder)
	compressedData := encoder.EncodeAll(rawData, nil)
	if uint64(len(compressedData)) > maxBytes {
		return nil, &CompressionError{
			Client: client,
			Op:     "compress",
			Err:    ErrCompressedSizeLimit,
		}
	}
	return compressedData, nil
}

// Decompress decompresses the provided data, failing if the decompressed
// output would exceed maxBytes
func Decompress(
	compressedData CompressedData,
	client Client,
	maxBytes uint64,
) ([]byte, error) {
	// The decoder memory limit must be created per call since the budget is
	// caller-supplied
	decoder, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderMaxMemory(maxBytes),
	)
	if err != nil {
		return nil, &CompressionError{
			Client: client,
			Op:     "decompress",
			Err:    err,
		}
	}
	defer decoder.Close()
	rawData, err := decoder.DecodeAll(compressedData, nil)
	if err != nil {
		return nil, &CompressionError{
			Client: client,
			Op:     "decompress",
			Err:    err,
		}
	}
	if uint64(len(rawData)) > maxBytes {
		return nil, &CompressionError{
			Client: client,
			Op:     "decompress",
			Err:    ErrDecompressedSizeLimit,
		}
	}
	return rawData, nil
}
