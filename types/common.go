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

// Package types provides the ledger payload types carried by storage
// service responses. The proof structures are treated as opaque
// serializable data; cryptographic verification happens elsewhere
package types

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Version is a monotonic counter over all committed transactions on the ledger
type Version = uint64

// Epoch identifies a validator-set epoch
type Epoch = uint64

// HashValue is a 256-bit content hash
type HashValue [32]byte

func (h HashValue) Bytes() []byte {
	return h[:]
}

func (h HashValue) String() string {
	return hex.EncodeToString(h[:])
}

// NewHashValue computes the blake2b-256 hash of the provided data
func NewHashValue(data []byte) HashValue {
	return HashValue(blake2b.Sum256(data))
}
