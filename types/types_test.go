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
	"testing"

	"github.com/alilloig/aptos-core/cbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashValue(t *testing.T) {
	hash := NewHashValue([]byte("some ledger data"))
	// blake2b-256 output is stable
	assert.Len(t, hash.Bytes(), 32)
	assert.Equal(t, hash, NewHashValue([]byte("some ledger data")))
	assert.NotEqual(t, hash, NewHashValue([]byte("other ledger data")))
	assert.Len(t, hash.String(), 64)
}

func TestLedgerInfoHash(t *testing.T) {
	ledgerInfo := LedgerInfo{
		Epoch:          3,
		Version:        12345,
		TimestampUsecs: 1700000000000000,
	}
	hash, err := ledgerInfo.Hash()
	require.NoError(t, err)
	otherHash, err := ledgerInfo.Hash()
	require.NoError(t, err)
	assert.Equal(t, hash, otherHash)
	ledgerInfo.Version++
	changedHash, err := ledgerInfo.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, hash, changedHash)
}

func TestTransactionCborRoundTrip(t *testing.T) {
	transaction := Transaction{
		Payload: []byte{0x01, 0x02, 0x03},
	}
	cborData, err := cbor.Encode(&transaction)
	require.NoError(t, err)
	var decoded Transaction
	_, err = cbor.Decode(cborData, &decoded)
	require.NoError(t, err)
	assert.Equal(t, transaction.Payload, decoded.Payload)
	// The original wire bytes are retained and re-served on encode
	assert.Equal(t, cborData, decoded.Cbor())
	reencoded, err := cbor.Encode(&decoded)
	require.NoError(t, err)
	assert.Equal(t, cborData, reencoded)
}

func TestTransactionHash(t *testing.T) {
	transaction := Transaction{
		Payload: []byte{0x01, 0x02, 0x03},
	}
	hash, err := transaction.Hash()
	require.NoError(t, err)
	// Hashing is stable across an encode/decode cycle since the original
	// bytes are retained
	cborData, err := cbor.Encode(&transaction)
	require.NoError(t, err)
	var decoded Transaction
	_, err = cbor.Decode(cborData, &decoded)
	require.NoError(t, err)
	decodedHash, err := decoded.Hash()
	require.NoError(t, err)
	assert.Equal(t, hash, decodedHash)
}

func TestTransactionOutputCborRoundTrip(t *testing.T) {
	output := TransactionOutput{
		WriteSet: []byte{0x0a, 0x0b},
		Events:   []byte{0x0c},
		GasUsed:  999,
		Status:   1,
	}
	cborData, err := cbor.Encode(&output)
	require.NoError(t, err)
	var decoded TransactionOutput
	_, err = cbor.Decode(cborData, &decoded)
	require.NoError(t, err)
	assert.Equal(t, output.WriteSet, decoded.WriteSet)
	assert.Equal(t, output.Events, decoded.Events)
	assert.Equal(t, output.GasUsed, decoded.GasUsed)
	assert.Equal(t, output.Status, decoded.Status)
}

func TestEpochChangeProofCborRoundTrip(t *testing.T) {
	proof := EpochChangeProof{
		LedgerInfoWithSigs: []LedgerInfoWithSignatures{
			{
				LedgerInfo: LedgerInfo{Epoch: 1, Version: 100},
				Signatures: map[string][]byte{
					"validator-0": {0xaa},
					"validator-1": {0xbb},
				},
			},
			{
				LedgerInfo: LedgerInfo{Epoch: 2, Version: 200},
			},
		},
		More: true,
	}
	cborData, err := cbor.Encode(&proof)
	require.NoError(t, err)
	var decoded EpochChangeProof
	_, err = cbor.Decode(cborData, &decoded)
	require.NoError(t, err)
	assert.Equal(t, proof, decoded)
}
