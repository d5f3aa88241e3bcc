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

package types

import (
	"github.com/alilloig/aptos-core/cbor"
)

// StateKeyAndValue is a single raw state entry
type StateKeyAndValue struct {
	cbor.StructAsArray
	Key   []byte
	Value []byte
}

// SparseMerkleRangeProof proves a contiguous run of leaves in the sparse
// merkle state tree
type SparseMerkleRangeProof struct {
	cbor.StructAsArray
	RightSiblings []HashValue
}

// StateValueChunkWithProof is a contiguous chunk of state values at a
// specific version, along with the proof anchoring it to the state root
type StateValueChunkWithProof struct {
	cbor.StructAsArray
	FirstIndex uint64
	LastIndex  uint64
	FirstKey   HashValue
	LastKey    HashValue
	RawValues  []StateKeyAndValue
	Proof      SparseMerkleRangeProof
	RootHash   HashValue
}
