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
	"github.com/alilloig/aptos-core/cbor"
	"github.com/alilloig/aptos-core/types"
)

// OptimisticFetchVersionDelta is the version delta tolerated when deciding
// if a peer is eligible to handle an optimistic fetch for new data. This
// value is set assuming 5k TPS for a 5 second delay, which should be more
// than enough
const OptimisticFetchVersionDelta uint64 = 25000

// ProtocolMetadata summarizes the protocol capabilities of a storage
// service instance, such as the maximum chunk sizes supported per request
type ProtocolMetadata struct {
	cbor.StructAsArray
	MaxEpochChunkSize             uint64
	MaxStateChunkSize             uint64
	MaxTransactionChunkSize       uint64
	MaxTransactionOutputChunkSize uint64
}

// NewProtocolMetadata returns protocol metadata populated from the given
// storage service config
func NewProtocolMetadata(config StorageServiceConfig) ProtocolMetadata {
	return ProtocolMetadata{
		MaxEpochChunkSize:             config.MaxEpochChunkSize,
		MaxStateChunkSize:             config.MaxStateChunkSize,
		MaxTransactionChunkSize:       config.MaxTransactionChunkSize,
		MaxTransactionOutputChunkSize: config.MaxTransactionOutputChunkSize,
	}
}

// CanService deems all requests serviceable, even if the requested chunk
// sizes are larger than the maximum sizes that can be served (the response
// will simply be truncated on the server side)
func (m ProtocolMetadata) CanService(_ StorageServiceRequest) bool {
	return true
}

// DataSummary summarizes the data actually held by a storage service
// instance. A nil range means nothing of that category is held; a present
// range means the category is completely populated across the interval
type DataSummary struct {
	cbor.StructAsArray
	// The ledger info corresponding to the highest synced version in
	// storage. This indicates the highest version and epoch that storage
	// can prove
	SyncedLedgerInfo *types.LedgerInfoWithSignatures
	// The range of epoch ending ledger infos held, e.g. (X,Y) means all
	// epoch ending ledger infos for epochs X->Y (inclusive) are held
	EpochEndingLedgerInfos *CompleteDataRange[types.Epoch]
	// The range of states held, e.g. (X,Y) means all states are held for
	// every version X->Y (inclusive)
	States *CompleteDataRange[types.Version]
	// The range of transactions held, e.g. (X,Y) means all transactions
	// for versions X->Y (inclusive) are held
	Transactions *CompleteDataRange[types.Version]
	// The range of transaction outputs held, e.g. (X,Y) means all
	// transaction outputs for versions X->Y (inclusive) are held
	TransactionOutputs *CompleteDataRange[types.Version]
}

// CanService returns true iff the request can be serviced from the held
// data. Malformed request ranges fold into false; serviceability is a total
// predicate, never an error
func (s DataSummary) CanService(request StorageServiceRequest) bool {
	switch dataRequest := request.DataRequest.(type) {
	case *GetServerProtocolVersionRequest, *GetStorageServerSummaryRequest:
		return true
	case *GetEpochEndingLedgerInfosRequest:
		desiredRange, err := NewCompleteDataRange(
			dataRequest.StartEpoch,
			dataRequest.ExpectedEndEpoch,
		)
		if err != nil {
			return false
		}
		if s.EpochEndingLedgerInfos == nil {
			return false
		}
		return s.EpochEndingLedgerInfos.SupersetOf(desiredRange)
	case *GetNewTransactionOutputsWithProofRequest:
		return s.canServiceOptimisticRequest(dataRequest.KnownVersion)
	case *GetNewTransactionsWithProofRequest:
		return s.canServiceOptimisticRequest(dataRequest.KnownVersion)
	case *GetNumberOfStatesAtVersionRequest:
		return s.States != nil && s.States.Contains(dataRequest.Version)
	case *GetStateValuesWithProofRequest:
		canServeStates := s.States != nil &&
			s.States.Contains(dataRequest.Version)
		return canServeStates && s.canCreateProof(dataRequest.Version)
	case *GetTransactionOutputsWithProofRequest:
		desiredRange, err := NewCompleteDataRange(
			dataRequest.StartVersion,
			dataRequest.EndVersion,
		)
		if err != nil {
			return false
		}
		canServeOutputs := s.TransactionOutputs != nil &&
			s.TransactionOutputs.SupersetOf(desiredRange)
		return canServeOutputs && s.canCreateProof(dataRequest.ProofVersion)
	case *GetTransactionsWithProofRequest:
		desiredRange, err := NewCompleteDataRange(
			dataRequest.StartVersion,
			dataRequest.EndVersion,
		)
		if err != nil {
			return false
		}
		canServeTxns := s.Transactions != nil &&
			s.Transactions.SupersetOf(desiredRange)
		return canServeTxns && s.canCreateProof(dataRequest.ProofVersion)
	case *GetNewTransactionsOrOutputsWithProofRequest:
		return s.canServiceOptimisticRequest(dataRequest.KnownVersion)
	case *GetTransactionsOrOutputsWithProofRequest:
		desiredRange, err := NewCompleteDataRange(
			dataRequest.StartVersion,
			dataRequest.EndVersion,
		)
		if err != nil {
			return false
		}
		canServeTxns := s.Transactions != nil &&
			s.Transactions.SupersetOf(desiredRange)
		canServeOutputs := s.TransactionOutputs != nil &&
			s.TransactionOutputs.SupersetOf(desiredRange)
		return canServeTxns && canServeOutputs &&
			s.canCreateProof(dataRequest.ProofVersion)
	default:
		return false
	}
}

// canCreateProof returns true iff storage can construct a proof at the
// given version, i.e. the synced ledger info is at or past it
func (s DataSummary) canCreateProof(proofVersion types.Version) bool {
	if s.SyncedLedgerInfo == nil {
		return false
	}
	return s.SyncedLedgerInfo.LedgerInfo.Version >= proofVersion
}

// canServiceOptimisticRequest returns true iff an optimistic data request
// can be serviced, i.e. the requester's known version is within the
// tolerated delta of the synced frontier. The boundary is strictly
// greater-than
func (s DataSummary) canServiceOptimisticRequest(
	knownVersion types.Version,
) bool {
	if s.SyncedLedgerInfo == nil {
		return false
	}
	return s.SyncedLedgerInfo.LedgerInfo.Version+OptimisticFetchVersionDelta >
		knownVersion
}

// StorageServerSummary combines the protocol capabilities and the data
// summary of a server instance into the single gate a peer consults before
// sending a request
type StorageServerSummary struct {
	cbor.StructAsArray
	ProtocolMetadata ProtocolMetadata
	DataSummary      DataSummary
}

// CanService returns true iff both the protocol metadata and the data
// summary deem the request serviceable
func (s StorageServerSummary) CanService(request StorageServiceRequest) bool {
	return s.ProtocolMetadata.CanService(request) &&
		s.DataSummary.CanService(request)
}
