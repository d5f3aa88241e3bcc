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
	"math"

	"github.com/alilloig/aptos-core/cbor"
	"github.com/alilloig/aptos-core/types"
)

const (
	DataRequestTypeGetEpochEndingLedgerInfos            uint8 = 0
	DataRequestTypeGetNewTransactionOutputsWithProof    uint8 = 1
	DataRequestTypeGetNewTransactionsWithProof          uint8 = 2
	DataRequestTypeGetNumberOfStatesAtVersion           uint8 = 3
	DataRequestTypeGetServerProtocolVersion             uint8 = 4
	DataRequestTypeGetStateValuesWithProof              uint8 = 5
	DataRequestTypeGetStorageServerSummary              uint8 = 6
	DataRequestTypeGetTransactionOutputsWithProof       uint8 = 7
	DataRequestTypeGetTransactionsWithProof             uint8 = 8
	DataRequestTypeGetNewTransactionsOrOutputsWithProof uint8 = 9
	DataRequestTypeGetTransactionsOrOutputsWithProof    uint8 = 10
)

// DataRequest is a single data request made against a storage server.
// This layer only reads request fields; request construction and
// validation happen upstream
type DataRequest interface {
	Type() uint8
	Label() string
}

// DataRequestBase provides the common fields for data requests
type DataRequestBase struct {
	// Tells the CBOR decoder to convert to/from a struct and a CBOR array
	_           struct{} `cbor:",toarray"`
	RequestType uint8
}

func (r *DataRequestBase) Type() uint8 {
	return r.RequestType
}

// NewDataRequestFromCbor parses a data request from CBOR data tagged with
// the given request type
func NewDataRequestFromCbor(requestType uint8, data []byte) (DataRequest, error) {
	var ret DataRequest
	switch requestType {
	case DataRequestTypeGetEpochEndingLedgerInfos:
		ret = &GetEpochEndingLedgerInfosRequest{}
	case DataRequestTypeGetNewTransactionOutputsWithProof:
		ret = &GetNewTransactionOutputsWithProofRequest{}
	case DataRequestTypeGetNewTransactionsWithProof:
		ret = &GetNewTransactionsWithProofRequest{}
	case DataRequestTypeGetNumberOfStatesAtVersion:
		ret = &GetNumberOfStatesAtVersionRequest{}
	case DataRequestTypeGetServerProtocolVersion:
		ret = &GetServerProtocolVersionRequest{}
	case DataRequestTypeGetStateValuesWithProof:
		ret = &GetStateValuesWithProofRequest{}
	case DataRequestTypeGetStorageServerSummary:
		ret = &GetStorageServerSummaryRequest{}
	case DataRequestTypeGetTransactionOutputsWithProof:
		ret = &GetTransactionOutputsWithProofRequest{}
	case DataRequestTypeGetTransactionsWithProof:
		ret = &GetTransactionsWithProofRequest{}
	case DataRequestTypeGetNewTransactionsOrOutputsWithProof:
		ret = &GetNewTransactionsOrOutputsWithProofRequest{}
	case DataRequestTypeGetTransactionsOrOutputsWithProof:
		ret = &GetTransactionsOrOutputsWithProofRequest{}
	default:
		return nil, fmt.Errorf("unknown data request type: %d", requestType)
	}
	if _, err := cbor.Decode(data, ret); err != nil {
		return nil, fmt.Errorf("data request decode error: %w", err)
	}
	return ret, nil
}

// GetEpochEndingLedgerInfosRequest requests epoch ending ledger infos for
// the given epoch range (inclusive)
type GetEpochEndingLedgerInfosRequest struct {
	DataRequestBase
	StartEpoch       types.Epoch
	ExpectedEndEpoch types.Epoch
}

func NewGetEpochEndingLedgerInfosRequest(
	startEpoch types.Epoch,
	expectedEndEpoch types.Epoch,
) *GetEpochEndingLedgerInfosRequest {
	return &GetEpochEndingLedgerInfosRequest{
		DataRequestBase: DataRequestBase{
			RequestType: DataRequestTypeGetEpochEndingLedgerInfos,
		},
		StartEpoch:       startEpoch,
		ExpectedEndEpoch: expectedEndEpoch,
	}
}

func (r *GetEpochEndingLedgerInfosRequest) Label() string {
	return "get_epoch_ending_ledger_infos"
}

// GetNewTransactionOutputsWithProofRequest requests new transaction outputs
// committed after the requester's known version (optimistic fetch)
type GetNewTransactionOutputsWithProofRequest struct {
	DataRequestBase
	KnownVersion types.Version
	KnownEpoch   types.Epoch
}

func NewGetNewTransactionOutputsWithProofRequest(
	knownVersion types.Version,
	knownEpoch types.Epoch,
) *GetNewTransactionOutputsWithProofRequest {
	return &GetNewTransactionOutputsWithProofRequest{
		DataRequestBase: DataRequestBase{
			RequestType: DataRequestTypeGetNewTransactionOutputsWithProof,
		},
		KnownVersion: knownVersion,
		KnownEpoch:   knownEpoch,
	}
}

func (r *GetNewTransactionOutputsWithProofRequest) Label() string {
	return "get_new_transaction_outputs_with_proof"
}

// GetNewTransactionsWithProofRequest requests new transactions committed
// after the requester's known version (optimistic fetch)
type GetNewTransactionsWithProofRequest struct {
	DataRequestBase
	KnownVersion  types.Version
	KnownEpoch    types.Epoch
	IncludeEvents bool
}

func NewGetNewTransactionsWithProofRequest(
	knownVersion types.Version,
	knownEpoch types.Epoch,
	includeEvents bool,
) *GetNewTransactionsWithProofRequest {
	return &GetNewTransactionsWithProofRequest{
		DataRequestBase: DataRequestBase{
			RequestType: DataRequestTypeGetNewTransactionsWithProof,
		},
		KnownVersion:  knownVersion,
		KnownEpoch:    knownEpoch,
		IncludeEvents: includeEvents,
	}
}

func (r *GetNewTransactionsWithProofRequest) Label() string {
	return "get_new_transactions_with_proof"
}

// GetNumberOfStatesAtVersionRequest requests the number of states at the
// given version
type GetNumberOfStatesAtVersionRequest struct {
	DataRequestBase
	Version types.Version
}

func NewGetNumberOfStatesAtVersionRequest(
	version types.Version,
) *GetNumberOfStatesAtVersionRequest {
	return &GetNumberOfStatesAtVersionRequest{
		DataRequestBase: DataRequestBase{
			RequestType: DataRequestTypeGetNumberOfStatesAtVersion,
		},
		Version: version,
	}
}

func (r *GetNumberOfStatesAtVersionRequest) Label() string {
	return "get_number_of_states_at_version"
}

// GetServerProtocolVersionRequest requests the protocol version run by the
// server
type GetServerProtocolVersionRequest struct {
	DataRequestBase
}

func NewGetServerProtocolVersionRequest() *GetServerProtocolVersionRequest {
	return &GetServerProtocolVersionRequest{
		DataRequestBase: DataRequestBase{
			RequestType: DataRequestTypeGetServerProtocolVersion,
		},
	}
}

func (r *GetServerProtocolVersionRequest) Label() string {
	return "get_server_protocol_version"
}

// GetStateValuesWithProofRequest requests a chunk of state values at the
// given version
type GetStateValuesWithProofRequest struct {
	DataRequestBase
	Version    types.Version
	StartIndex uint64
	EndIndex   uint64
}

func NewGetStateValuesWithProofRequest(
	version types.Version,
	startIndex uint64,
	endIndex uint64,
) *GetStateValuesWithProofRequest {
	return &GetStateValuesWithProofRequest{
		DataRequestBase: DataRequestBase{
			RequestType: DataRequestTypeGetStateValuesWithProof,
		},
		Version:    version,
		StartIndex: startIndex,
		EndIndex:   endIndex,
	}
}

func (r *GetStateValuesWithProofRequest) Label() string {
	return "get_state_values_with_proof"
}

// GetStorageServerSummaryRequest requests the storage server summary
type GetStorageServerSummaryRequest struct {
	DataRequestBase
}

func NewGetStorageServerSummaryRequest() *GetStorageServerSummaryRequest {
	return &GetStorageServerSummaryRequest{
		DataRequestBase: DataRequestBase{
			RequestType: DataRequestTypeGetStorageServerSummary,
		},
	}
}

func (r *GetStorageServerSummaryRequest) Label() string {
	return "get_storage_server_summary"
}

// GetTransactionOutputsWithProofRequest requests transaction outputs for
// the given version range, proven at the given proof version
type GetTransactionOutputsWithProofRequest struct {
	DataRequestBase
	ProofVersion types.Version
	StartVersion types.Version
	EndVersion   types.Version
}

func NewGetTransactionOutputsWithProofRequest(
	proofVersion types.Version,
	startVersion types.Version,
	endVersion types.Version,
) *GetTransactionOutputsWithProofRequest {
	return &GetTransactionOutputsWithProofRequest{
		DataRequestBase: DataRequestBase{
			RequestType: DataRequestTypeGetTransactionOutputsWithProof,
		},
		ProofVersion: proofVersion,
		StartVersion: startVersion,
		EndVersion:   endVersion,
	}
}

func (r *GetTransactionOutputsWithProofRequest) Label() string {
	return "get_transaction_outputs_with_proof"
}

// GetTransactionsWithProofRequest requests transactions for the given
// version range, proven at the given proof version
type GetTransactionsWithProofRequest struct {
	DataRequestBase
	ProofVersion  types.Version
	StartVersion  types.Version
	EndVersion    types.Version
	IncludeEvents bool
}

func NewGetTransactionsWithProofRequest(
	proofVersion types.Version,
	startVersion types.Version,
	endVersion types.Version,
	includeEvents bool,
) *GetTransactionsWithProofRequest {
	return &GetTransactionsWithProofRequest{
		DataRequestBase: DataRequestBase{
			RequestType: DataRequestTypeGetTransactionsWithProof,
		},
		ProofVersion:  proofVersion,
		StartVersion:  startVersion,
		EndVersion:    endVersion,
		IncludeEvents: includeEvents,
	}
}

func (r *GetTransactionsWithProofRequest) Label() string {
	return "get_transactions_with_proof"
}

// GetNewTransactionsOrOutputsWithProofRequest requests new transactions or
// outputs committed after the requester's known version (optimistic fetch)
type GetNewTransactionsOrOutputsWithProofRequest struct {
	DataRequestBase
	KnownVersion           types.Version
	KnownEpoch             types.Epoch
	IncludeEvents          bool
	MaxNumOutputReductions uint64
}

func NewGetNewTransactionsOrOutputsWithProofRequest(
	knownVersion types.Version,
	knownEpoch types.Epoch,
	includeEvents bool,
	maxNumOutputReductions uint64,
) *GetNewTransactionsOrOutputsWithProofRequest {
	return &GetNewTransactionsOrOutputsWithProofRequest{
		DataRequestBase: DataRequestBase{
			RequestType: DataRequestTypeGetNewTransactionsOrOutputsWithProof,
		},
		KnownVersion:           knownVersion,
		KnownEpoch:             knownEpoch,
		IncludeEvents:          includeEvents,
		MaxNumOutputReductions: maxNumOutputReductions,
	}
}

func (r *GetNewTransactionsOrOutputsWithProofRequest) Label() string {
	return "get_new_transactions_or_outputs_with_proof"
}

// GetTransactionsOrOutputsWithProofRequest requests transactions or outputs
// for the given version range, proven at the given proof version. The
// server picks which to return
type GetTransactionsOrOutputsWithProofRequest struct {
	DataRequestBase
	ProofVersion           types.Version
	StartVersion           types.Version
	EndVersion             types.Version
	IncludeEvents          bool
	MaxNumOutputReductions uint64
}

func NewGetTransactionsOrOutputsWithProofRequest(
	proofVersion types.Version,
	startVersion types.Version,
	endVersion types.Version,
	includeEvents bool,
	maxNumOutputReductions uint64,
) *GetTransactionsOrOutputsWithProofRequest {
	return &GetTransactionsOrOutputsWithProofRequest{
		DataRequestBase: DataRequestBase{
			RequestType: DataRequestTypeGetTransactionsOrOutputsWithProof,
		},
		ProofVersion:           proofVersion,
		StartVersion:           startVersion,
		EndVersion:             endVersion,
		IncludeEvents:          includeEvents,
		MaxNumOutputReductions: maxNumOutputReductions,
	}
}

func (r *GetTransactionsOrOutputsWithProofRequest) Label() string {
	return "get_transactions_or_outputs_with_proof"
}

// StorageServiceRequest pairs a data request with the requester's
// compression preference for the response payload
type StorageServiceRequest struct {
	DataRequest    DataRequest
	UseCompression bool
}

func NewStorageServiceRequest(
	dataRequest DataRequest,
	useCompression bool,
) StorageServiceRequest {
	return StorageServiceRequest{
		DataRequest:    dataRequest,
		UseCompression: useCompression,
	}
}

// Label returns a summary label for the request, suffixed when the
// requester asked for a compressed response
func (r StorageServiceRequest) Label() string {
	label := r.DataRequest.Label()
	if r.UseCompression {
		label += CompressionSuffixLabel
	}
	return label
}

func (r StorageServiceRequest) MarshalCBOR() ([]byte, error) {
	tmp := []any{
		r.DataRequest,
		r.UseCompression,
	}
	return cbor.Encode(&tmp)
}

func (r *StorageServiceRequest) UnmarshalCBOR(cborData []byte) error {
	var tmp struct {
		cbor.StructAsArray
		DataRequest    cbor.RawMessage
		UseCompression bool
	}
	if _, err := cbor.Decode(cborData, &tmp); err != nil {
		return err
	}
	requestType, err := cbor.DecodeIdFromList(tmp.DataRequest)
	if err != nil {
		return err
	}
	if requestType < 0 || requestType > math.MaxUint8 {
		return fmt.Errorf("unknown data request type: %d", requestType)
	}
	dataRequest, err := NewDataRequestFromCbor(uint8(requestType), tmp.DataRequest)
	if err != nil {
		return err
	}
	r.DataRequest = dataRequest
	r.UseCompression = tmp.UseCompression
	return nil
}
