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
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/alilloig/aptos-core/types"
)

// StorageServerProtocolVersion is the storage protocol version run by this
// server implementation
const StorageServerProtocolVersion uint64 = 1

// StorageReader provides read access to the local ledger storage that
// responses are built from
type StorageReader interface {
	GetEpochEndingLedgerInfos(
		startEpoch types.Epoch,
		endEpoch types.Epoch,
	) (types.EpochChangeProof, error)
	GetNumberOfStatesAtVersion(version types.Version) (uint64, error)
	GetStateValuesWithProof(
		version types.Version,
		startIndex uint64,
		endIndex uint64,
	) (types.StateValueChunkWithProof, error)
	GetTransactionsWithProof(
		proofVersion types.Version,
		startVersion types.Version,
		endVersion types.Version,
		includeEvents bool,
	) (types.TransactionListWithProof, error)
	GetTransactionOutputsWithProof(
		proofVersion types.Version,
		startVersion types.Version,
		endVersion types.Version,
	) (types.TransactionOutputListWithProof, error)
}

// Handler builds storage service responses for incoming requests. It gates
// every request on the current storage summary, truncates oversized chunks
// to the configured limits, and wraps the result in a response envelope
// honoring the request's compression preference.
//
// The storage summary is a frozen snapshot replaced wholesale by
// UpdateStorageSummary; in-flight serviceability checks always run against
// a single snapshot
type Handler struct {
	config  StorageServiceConfig
	storage StorageReader
	logger  *slog.Logger
	summary atomic.Pointer[StorageServerSummary]
}

// NewHandler creates a new storage service handler with the given config
// and storage reader
func NewHandler(
	config StorageServiceConfig,
	storage StorageReader,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		config:  config,
		storage: storage,
		logger:  logger,
	}
	// Start with an empty summary; nothing is serviceable until the first
	// summary refresh
	h.summary.Store(&StorageServerSummary{
		ProtocolMetadata: NewProtocolMetadata(config),
	})
	return h
}

// UpdateStorageSummary replaces the storage summary snapshot. The caller
// rebuilds the data summary from storage state periodically
func (h *Handler) UpdateStorageSummary(dataSummary DataSummary) {
	h.summary.Store(&StorageServerSummary{
		ProtocolMetadata: NewProtocolMetadata(h.config),
		DataSummary:      dataSummary,
	})
}

// StorageSummary returns the current storage summary snapshot
func (h *Handler) StorageSummary() StorageServerSummary {
	return *h.summary.Load()
}

// HandleRequest services a single storage request, returning the response
// envelope to send back. Requests the current summary cannot answer fail
// with ErrUnserviceableRequest
func (h *Handler) HandleRequest(
	request StorageServiceRequest,
) (StorageServiceResponse, error) {
	summary := *h.summary.Load()
	if !summary.CanService(request) {
		h.logger.Debug(
			"refusing unserviceable storage request",
			"label", request.Label(),
		)
		return StorageServiceResponse{}, ErrUnserviceableRequest
	}
	dataResponse, err := h.buildDataResponse(summary, request.DataRequest)
	if err != nil {
		h.logger.Warn(
			"failed to build storage response",
			"label", request.Label(),
			"error", err,
		)
		return StorageServiceResponse{}, err
	}
	h.logger.Debug(
		"serving storage request",
		"label", request.Label(),
	)
	return NewStorageServiceResponse(dataResponse, request.UseCompression)
}

func (h *Handler) buildDataResponse(
	summary StorageServerSummary,
	dataRequest DataRequest,
) (DataResponse, error) {
	switch request := dataRequest.(type) {
	case *GetServerProtocolVersionRequest:
		return NewServerProtocolVersionResponse(ServerProtocolVersion{
			ProtocolVersion: StorageServerProtocolVersion,
		}), nil
	case *GetStorageServerSummaryRequest:
		return NewStorageServerSummaryResponse(summary), nil
	case *GetEpochEndingLedgerInfosRequest:
		endEpoch := truncateChunkEnd(
			request.StartEpoch,
			request.ExpectedEndEpoch,
			h.config.MaxEpochChunkSize,
		)
		proof, err := h.storage.GetEpochEndingLedgerInfos(
			request.StartEpoch,
			endEpoch,
		)
		if err != nil {
			return nil, err
		}
		return NewEpochEndingLedgerInfosResponse(proof), nil
	case *GetNumberOfStatesAtVersionRequest:
		numberOfStates, err := h.storage.GetNumberOfStatesAtVersion(
			request.Version,
		)
		if err != nil {
			return nil, err
		}
		return NewNumberOfStatesAtVersionResponse(numberOfStates), nil
	case *GetStateValuesWithProofRequest:
		endIndex := truncateChunkEnd(
			request.StartIndex,
			request.EndIndex,
			h.config.MaxStateChunkSize,
		)
		chunk, err := h.storage.GetStateValuesWithProof(
			request.Version,
			request.StartIndex,
			endIndex,
		)
		if err != nil {
			return nil, err
		}
		return NewStateValueChunkWithProofResponse(chunk), nil
	case *GetTransactionsWithProofRequest:
		endVersion := truncateChunkEnd(
			request.StartVersion,
			request.EndVersion,
			h.config.MaxTransactionChunkSize,
		)
		transactionList, err := h.storage.GetTransactionsWithProof(
			request.ProofVersion,
			request.StartVersion,
			endVersion,
			request.IncludeEvents,
		)
		if err != nil {
			return nil, err
		}
		return MakeTransactionsWithProofResponse(transactionList), nil
	case *GetTransactionOutputsWithProofRequest:
		endVersion := truncateChunkEnd(
			request.StartVersion,
			request.EndVersion,
			h.config.MaxTransactionOutputChunkSize,
		)
		outputList, err := h.storage.GetTransactionOutputsWithProof(
			request.ProofVersion,
			request.StartVersion,
			endVersion,
		)
		if err != nil {
			return nil, err
		}
		return MakeTransactionOutputsWithProofResponse(outputList), nil
	case *GetTransactionsOrOutputsWithProofRequest:
		// Prefer outputs; the requester accepts either
		endVersion := truncateChunkEnd(
			request.StartVersion,
			request.EndVersion,
			h.config.MaxTransactionOutputChunkSize,
		)
		outputList, err := h.storage.GetTransactionOutputsWithProof(
			request.ProofVersion,
			request.StartVersion,
			endVersion,
		)
		if err != nil {
			return nil, err
		}
		return MakeTransactionsOrOutputsWithProofResponse(
			types.TransactionOrOutputListWithProof{
				OutputList: &outputList,
			},
		), nil
	case *GetNewTransactionsWithProofRequest:
		target, startVersion, endVersion, err := h.newDataBounds(
			summary,
			request.KnownVersion,
			h.config.MaxTransactionChunkSize,
		)
		if err != nil {
			return nil, err
		}
		transactionList, err := h.storage.GetTransactionsWithProof(
			target.LedgerInfo.Version,
			startVersion,
			endVersion,
			request.IncludeEvents,
		)
		if err != nil {
			return nil, err
		}
		return NewNewTransactionsWithProofResponse(
			transactionList,
			*target,
			nil,
		), nil
	case *GetNewTransactionOutputsWithProofRequest:
		target, startVersion, endVersion, err := h.newDataBounds(
			summary,
			request.KnownVersion,
			h.config.MaxTransactionOutputChunkSize,
		)
		if err != nil {
			return nil, err
		}
		outputList, err := h.storage.GetTransactionOutputsWithProof(
			target.LedgerInfo.Version,
			startVersion,
			endVersion,
		)
		if err != nil {
			return nil, err
		}
		return NewNewTransactionOutputsWithProofResponse(
			outputList,
			*target,
			nil,
		), nil
	case *GetNewTransactionsOrOutputsWithProofRequest:
		target, startVersion, endVersion, err := h.newDataBounds(
			summary,
			request.KnownVersion,
			h.config.MaxTransactionOutputChunkSize,
		)
		if err != nil {
			return nil, err
		}
		outputList, err := h.storage.GetTransactionOutputsWithProof(
			target.LedgerInfo.Version,
			startVersion,
			endVersion,
		)
		if err != nil {
			return nil, err
		}
		return NewNewTransactionsOrOutputsWithProofResponse(
			types.TransactionOrOutputListWithProof{
				OutputList: &outputList,
			},
			*target,
			nil,
		), nil
	default:
		return nil, fmt.Errorf(
			"unknown data request type: %d",
			dataRequest.Type(),
		)
	}
}

// newDataBounds determines the version bounds for serving an optimistic
// fetch: everything committed after the requester's known version, up to
// the synced frontier, truncated to the chunk limit
func (h *Handler) newDataBounds(
	summary StorageServerSummary,
	knownVersion types.Version,
	maxChunkSize uint64,
) (*types.LedgerInfoWithSignatures, types.Version, types.Version, error) {
	target := summary.DataSummary.SyncedLedgerInfo
	if target == nil || target.LedgerInfo.Version <= knownVersion {
		return nil, 0, 0, ErrUnserviceableRequest
	}
	startVersion := knownVersion + 1
	endVersion := truncateChunkEnd(
		startVersion,
		target.LedgerInfo.Version,
		maxChunkSize,
	)
	return target, startVersion, endVersion, nil
}

// truncateChunkEnd clamps an inclusive chunk end so that the chunk holds at
// most maxChunkSize items
func truncateChunkEnd(start, end, maxChunkSize uint64) uint64 {
	if maxChunkSize == 0 || start > end {
		return end
	}
	maxEnd := start + (maxChunkSize - 1)
	if maxEnd < start {
		// Overflow; the request already spans the whole domain
		return end
	}
	if end > maxEnd {
		return maxEnd
	}
	return end
}
