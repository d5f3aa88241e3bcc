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

// LedgerInfo describes a committed ledger state at a specific version
type LedgerInfo struct {
	cbor.StructAsArray
	Epoch                      Epoch
	Version                    Version
	TimestampUsecs             uint64
	TransactionAccumulatorHash HashValue
}

// Hash returns the content hash of the ledger info
func (l *LedgerInfo) Hash() (HashValue, error) {
	cborData, err := cbor.Encode(l)
	if err != nil {
		return HashValue{}, err
	}
	return NewHashValue(cborData), nil
}

// LedgerInfoWithSignatures is a ledger info along with the validator
// signatures attesting to it. Signatures are keyed by validator identity
type LedgerInfoWithSignatures struct {
	cbor.StructAsArray
	LedgerInfo LedgerInfo
	Signatures map[string][]byte
}

// EpochChangeProof is a chain of epoch-ending ledger infos proving a
// sequence of epoch changes. More indicates the proof was truncated and
// the requester should ask again from the last epoch included
type EpochChangeProof struct {
	cbor.StructAsArray
	LedgerInfoWithSigs []LedgerInfoWithSignatures
	More               bool
}
