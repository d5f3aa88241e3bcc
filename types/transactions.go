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

// Transaction is an opaque signed transaction payload. The original wire
// encoding is retained so the bytes can be re-served without re-encoding
type Transaction struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	Payload []byte
}

func (t *Transaction) UnmarshalCBOR(cborData []byte) error {
	return t.UnmarshalCborGeneric(cborData, t)
}

func (t *Transaction) MarshalCBOR() ([]byte, error) {
	// Use original CBOR if available
	if t.Cbor() != nil {
		return t.Cbor(), nil
	}
	return cbor.EncodeGeneric(t)
}

// Hash returns the content hash of the transaction
func (t *Transaction) Hash() (HashValue, error) {
	cborData, err := t.MarshalCBOR()
	if err != nil {
		return HashValue{}, err
	}
	return NewHashValue(cborData), nil
}

// TransactionOutput is the opaque result of executing a single transaction
type TransactionOutput struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	WriteSet []byte
	Events   []byte
	GasUsed  uint64
	Status   uint8
}

func (o *TransactionOutput) UnmarshalCBOR(cborData []byte) error {
	return o.UnmarshalCborGeneric(cborData, o)
}

func (o *TransactionOutput) MarshalCBOR() ([]byte, error) {
	// Use original CBOR if available
	if o.Cbor() != nil {
		return o.Cbor(), nil
	}
	return cbor.EncodeGeneric(o)
}

// AccumulatorRangeProof proves a contiguous run of leaves in the
// transaction accumulator
type AccumulatorRangeProof struct {
	cbor.StructAsArray
	LeftSiblings  []HashValue
	RightSiblings []HashValue
}

// TransactionListWithProof is a contiguous list of transactions along with
// the accumulator proof anchoring them to a ledger version
type TransactionListWithProof struct {
	cbor.StructAsArray
	Transactions            []Transaction
	FirstTransactionVersion *Version
	Proof                   AccumulatorRangeProof
}

// TransactionOutputListWithProof pairs each transaction with its output,
// along with the accumulator proof anchoring them to a ledger version
type TransactionOutputListWithProof struct {
	cbor.StructAsArray
	Transactions                  []Transaction
	Outputs                       []TransactionOutput
	FirstTransactionOutputVersion *Version
	Proof                         AccumulatorRangeProof
}

// TransactionOrOutputListWithProof holds either a transaction list or an
// output list, depending on what the serving side chose to return
type TransactionOrOutputListWithProof struct {
	cbor.StructAsArray
	TransactionList *TransactionListWithProof
	OutputList      *TransactionOutputListWithProof
}
