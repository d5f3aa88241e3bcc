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

package storageservice

import (
	"sync"
	"testing"

	"github.com/alilloig/aptos-core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func mustRange(t *testing.T, lowest, highest uint64) *CompleteDataRange[uint64] {
	t.Helper()
	dataRange, err := NewCompleteDataRange(lowest, highest)
	require.NoError(t, err)
	return &dataRange
}

func syncedLedgerInfoAt(
	epoch types.Epoch,
	version types.Version,
) *types.LedgerInfoWithSignatures {
	return &types.LedgerInfoWithSignatures{
		LedgerInfo: types.LedgerInfo{
			Epoch:   epoch,
			Version: version,
		},
	}
}

func TestDataSummaryCanServiceMetadataRequests(t *testing.T) {
	// Metadata requests are always serviceable, even from an empty summary
	var summary DataSummary
	assert.True(t, summary.CanService(NewStorageServiceRequest(
		NewGetServerProtocolVersionRequest(), false)))
	assert.True(t, summary.CanService(NewStorageServiceRequest(
		NewGetStorageServerSummaryRequest(), true)))
}

func TestDataSummaryCanServiceEpochEndingLedgerInfos(t *testing.T) {
	summary := DataSummary{
		EpochEndingLedgerInfos: mustRange(t, 10, 50),
	}
	testDefs := []struct {
		startEpoch       types.Epoch
		expectedEndEpoch types.Epoch
		expected         bool
	}{
		{startEpoch: 10, expectedEndEpoch: 50, expected: true},
		{startEpoch: 20, expectedEndEpoch: 30, expected: true},
		{startEpoch: 9, expectedEndEpoch: 50, expected: false},
		{startEpoch: 10, expectedEndEpoch: 51, expected: false},
		// Malformed range folds into false, not an error
		{startEpoch: 30, expectedEndEpoch: 20, expected: false},
	}
	for _, testDef := range testDefs {
		request := NewStorageServiceRequest(
			NewGetEpochEndingLedgerInfosRequest(
				testDef.startEpoch,
				testDef.expectedEndEpoch,
			),
			false,
		)
		assert.Equal(
			t,
			testDef.expected,
			summary.CanService(request),
			"epochs [%d, %d]",
			testDef.startEpoch,
			testDef.expectedEndEpoch,
		)
	}
	// No held epoch range at all
	var emptySummary DataSummary
	assert.False(t, emptySummary.CanService(NewStorageServiceRequest(
		NewGetEpochEndingLedgerInfosRequest(10, 20), false)))
}

func TestDataSummaryCanServiceStates(t *testing.T) {
	summary := DataSummary{
		SyncedLedgerInfo: syncedLedgerInfoAt(1, 4000),
		States:           mustRange(t, 0, 5000),
	}
	// Number of states only needs range containment
	assert.True(t, summary.CanService(NewStorageServiceRequest(
		NewGetNumberOfStatesAtVersionRequest(5000), false)))
	assert.False(t, summary.CanService(NewStorageServiceRequest(
		NewGetNumberOfStatesAtVersionRequest(5001), false)))
	// State values with proof additionally need the frontier at or past the version
	assert.True(t, summary.CanService(NewStorageServiceRequest(
		NewGetStateValuesWithProofRequest(4000, 0, 100), false)))
	assert.False(t, summary.CanService(NewStorageServiceRequest(
		NewGetStateValuesWithProofRequest(4001, 0, 100), false)))
}

func TestDataSummaryCanServiceTransactionsProofGated(t *testing.T) {
	// The data range covers the request, but the frontier is behind the
	// proof version
	summary := DataSummary{
		SyncedLedgerInfo: syncedLedgerInfoAt(1, 4000),
		Transactions:     mustRange(t, 0, 5000),
	}
	serviceable := NewStorageServiceRequest(
		NewGetTransactionsWithProofRequest(4000, 0, 3000, false),
		false,
	)
	assert.True(t, summary.CanService(serviceable))
	proofTooNew := NewStorageServiceRequest(
		NewGetTransactionsWithProofRequest(4500, 0, 5000, false),
		false,
	)
	assert.False(t, summary.CanService(proofTooNew))
}

func TestDataSummaryCanServiceTransactionsOrOutputs(t *testing.T) {
	summary := DataSummary{
		SyncedLedgerInfo:   syncedLedgerInfoAt(1, 5000),
		Transactions:       mustRange(t, 0, 5000),
		TransactionOutputs: mustRange(t, 1000, 5000),
	}
	// Both ranges must cover the request
	assert.True(t, summary.CanService(NewStorageServiceRequest(
		NewGetTransactionsOrOutputsWithProofRequest(5000, 1000, 2000, false, 0),
		false)))
	assert.False(t, summary.CanService(NewStorageServiceRequest(
		NewGetTransactionsOrOutputsWithProofRequest(5000, 500, 2000, false, 0),
		false)))
}

func TestDataSummaryCanServiceOptimisticFetch(t *testing.T) {
	summary := DataSummary{
		SyncedLedgerInfo: syncedLedgerInfoAt(1, 1000),
	}
	testDefs := []struct {
		knownVersion types.Version
		expected     bool
	}{
		{knownVersion: 0, expected: true},
		{knownVersion: 1000, expected: true},
		// Boundary is strictly greater-than: 1000 + 25000 > 25999 holds,
		// 1000 + 25000 > 26000 does not
		{knownVersion: 25999, expected: true},
		{knownVersion: 26000, expected: false},
		{knownVersion: 30000, expected: false},
	}
	for _, testDef := range testDefs {
		requests := []DataRequest{
			NewGetNewTransactionsWithProofRequest(testDef.knownVersion, 1, false),
			NewGetNewTransactionOutputsWithProofRequest(testDef.knownVersion, 1),
			NewGetNewTransactionsOrOutputsWithProofRequest(
				testDef.knownVersion, 1, false, 0),
		}
		for _, dataRequest := range requests {
			request := NewStorageServiceRequest(dataRequest, false)
			assert.Equal(
				t,
				testDef.expected,
				summary.CanService(request),
				"known version %d (%s)",
				testDef.knownVersion,
				dataRequest.Label(),
			)
		}
	}
	// No synced ledger info means no optimistic fetches at all
	var emptySummary DataSummary
	assert.False(t, emptySummary.CanService(NewStorageServiceRequest(
		NewGetNewTransactionsWithProofRequest(0, 0, false), false)))
}

func TestStorageServerSummaryCanService(t *testing.T) {
	summary := StorageServerSummary{
		ProtocolMetadata: NewProtocolMetadata(NewStorageServiceConfig()),
		DataSummary: DataSummary{
			SyncedLedgerInfo: syncedLedgerInfoAt(2, 3000),
			Transactions:     mustRange(t, 0, 3000),
		},
	}
	assert.True(t, summary.CanService(NewStorageServiceRequest(
		NewGetTransactionsWithProofRequest(3000, 0, 1000, true), false)))
	assert.False(t, summary.CanService(NewStorageServiceRequest(
		NewGetTransactionsWithProofRequest(3000, 0, 3001, true), false)))
}

func TestProtocolMetadataCanServiceIsPermissive(t *testing.T) {
	// Requests larger than the configured chunk sizes are still deemed
	// serviceable; responses are truncated at construction time instead
	metadata := NewProtocolMetadata(NewStorageServiceConfig(
		WithMaxTransactionChunkSize(10),
	))
	oversized := NewStorageServiceRequest(
		NewGetTransactionsWithProofRequest(5000, 0, 5000, false),
		false,
	)
	assert.True(t, metadata.CanService(oversized))
}

func TestDataSummaryConcurrentReads(t *testing.T) {
	defer goleak.VerifyNone(t)
	summary := DataSummary{
		SyncedLedgerInfo:   syncedLedgerInfoAt(1, 1000),
		Transactions:       mustRange(t, 0, 1000),
		TransactionOutputs: mustRange(t, 0, 1000),
	}
	request := NewStorageServiceRequest(
		NewGetTransactionsWithProofRequest(1000, 0, 500, false),
		false,
	)
	// A frozen summary snapshot is safe for concurrent serviceability checks
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				assert.True(t, summary.CanService(request))
			}
		}()
	}
	wg.Wait()
}
