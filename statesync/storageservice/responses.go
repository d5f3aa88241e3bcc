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
	"github.com/alilloig/aptos-core/compression"
	"github.com/alilloig/aptos-core/types"
)

// CompressionSuffixLabel is appended to a payload label when the payload is
// stored compressed
const CompressionSuffixLabel = "_compressed"

const (
	DataResponseTypeEpochEndingLedgerInfos            uint8 = 0
	DataResponseTypeNewTransactionOutputsWithProof    uint8 = 1
	DataResponseTypeNewTransactionsWithProof          uint8 = 2
	DataResponseTypeNumberOfStatesAtVersion           uint8 = 3
	DataResponseTypeServerProtocolVersion             uint8 = 4
	DataResponseTypeStateValueChunkWithProof          uint8 = 5
	DataResponseTypeStorageServerSummary              uint8 = 6
	DataResponseTypeTransactionOutputsWithProof       uint8 = 7
	DataResponseTypeTransactionsWithProof             uint8 = 8
	DataResponseTypeNewTransactionsOrOutputsWithProof uint8 = 9
	DataResponseTypeTransactionsOrOutputsWithProof    uint8 = 10
)

// Envelope tags distinguishing compressed from raw responses on the wire
const (
	storageServiceResponseTypeCompressed uint8 = 0
	storageServiceResponseTypeRaw        uint8 = 1
)

// DataResponse is a single data response payload. Each variant carries a
// unique, stable label used for logging and mismatch diagnostics only
type DataResponse interface {
	Type() uint8
	Label() string
}

// DataResponseBase provides the common fields for data responses
type DataResponseBase struct {
	// Tells the CBOR decoder to convert to/from a struct and a CBOR array
	_            struct{} `cbor:",toarray"`
	ResponseType uint8
}

func (r *DataResponseBase) Type() uint8 {
	return r.ResponseType
}

// NewDataResponseFromCbor parses a data response from CBOR data tagged with
// the given response type
func NewDataResponseFromCbor(
	responseType uint8,
	data []byte,
) (DataResponse, error) {
	var ret DataResponse
	switch responseType {
	case DataResponseTypeEpochEndingLedgerInfos:
		ret = &EpochEndingLedgerInfosResponse{}
	case DataResponseTypeNewTransactionOutputsWithProof:
		ret = &NewTransactionOutputsWithProofResponse{}
	case DataResponseTypeNewTransactionsWithProof:
		ret = &NewTransactionsWithProofResponse{}
	case DataResponseTypeNumberOfStatesAtVersion:
		ret = &NumberOfStatesAtVersionResponse{}
	case DataResponseTypeServerProtocolVersion:
		ret = &ServerProtocolVersionResponse{}
	case DataResponseTypeStateValueChunkWithProof:
		ret = &StateValueChunkWithProofResponse{}
	case DataResponseTypeStorageServerSummary:
		ret = &StorageServerSummaryResponse{}
	case DataResponseTypeTransactionOutputsWithProof:
		ret = &TransactionOutputsWithProofResponse{}
	case DataResponseTypeTransactionsWithProof:
		ret = &TransactionsWithProofResponse{}
	case DataResponseTypeNewTransactionsOrOutputsWithProof:
		ret = &NewTransactionsOrOutputsWithProofResponse{}
	case DataResponseTypeTransactionsOrOutputsWithProof:
		ret = &TransactionsOrOutputsWithProofResponse{}
	default:
		return nil, fmt.Errorf("unknown data response type: %d", responseType)
	}
	if _, err := cbor.Decode(data, ret); err != nil {
		return nil, fmt.Errorf("data response decode error: %w", err)
	}
	return ret, nil
}

// EpochEndingLedgerInfosResponse carries a chain of epoch ending ledger infos
type EpochEndingLedgerInfosResponse struct {
	DataResponseBase
	Proof types.EpochChangeProof
}

func NewEpochEndingLedgerInfosResponse(
	proof types.EpochChangeProof,
) *EpochEndingLedgerInfosResponse {
	return &EpochEndingLedgerInfosResponse{
		DataResponseBase: DataResponseBase{
			ResponseType: DataResponseTypeEpochEndingLedgerInfos,
		},
		Proof: proof,
	}
}

func (r *EpochEndingLedgerInfosResponse) Label() string {
	return "epoch_ending_ledger_infos"
}

// NewTransactionOutputsWithProofResponse carries new transaction outputs
// along with the ledger info they are proven against and an optional last
// chunk hint
type NewTransactionOutputsWithProofResponse struct {
	DataResponseBase
	OutputList    types.TransactionOutputListWithProof
	LedgerInfo    types.LedgerInfoWithSignatures
	LastChunkHint *uint64
}

func NewNewTransactionOutputsWithProofResponse(
	outputList types.TransactionOutputListWithProof,
	ledgerInfo types.LedgerInfoWithSignatures,
	lastChunkHint *uint64,
) *NewTransactionOutputsWithProofResponse {
	return &NewTransactionOutputsWithProofResponse{
		DataResponseBase: DataResponseBase{
			ResponseType: DataResponseTypeNewTransactionOutputsWithProof,
		},
		OutputList:    outputList,
		LedgerInfo:    ledgerInfo,
		LastChunkHint: lastChunkHint,
	}
}

func (r *NewTransactionOutputsWithProofResponse) Label() string {
	return "new_transaction_outputs_with_proof"
}

// NewTransactionsWithProofResponse carries new transactions along with the
// ledger info they are proven against and an optional last chunk hint
type NewTransactionsWithProofResponse struct {
	DataResponseBase
	TransactionList types.TransactionListWithProof
	LedgerInfo      types.LedgerInfoWithSignatures
	LastChunkHint   *uint64
}

func NewNewTransactionsWithProofResponse(
	transactionList types.TransactionListWithProof,
	ledgerInfo types.LedgerInfoWithSignatures,
	lastChunkHint *uint64,
) *NewTransactionsWithProofResponse {
	return &NewTransactionsWithProofResponse{
		DataResponseBase: DataResponseBase{
			ResponseType: DataResponseTypeNewTransactionsWithProof,
		},
		TransactionList: transactionList,
		LedgerInfo:      ledgerInfo,
		LastChunkHint:   lastChunkHint,
	}
}

func (r *NewTransactionsWithProofResponse) Label() string {
	return "new_transactions_with_proof"
}

// NumberOfStatesAtVersionResponse carries the number of states at the
// requested version
type NumberOfStatesAtVersionResponse struct {
	DataResponseBase
	NumberOfStates uint64
}

func NewNumberOfStatesAtVersionResponse(
	numberOfStates uint64,
) *NumberOfStatesAtVersionResponse {
	return &NumberOfStatesAtVersionResponse{
		DataResponseBase: DataResponseBase{
			ResponseType: DataResponseTypeNumberOfStatesAtVersion,
		},
		NumberOfStates: numberOfStates,
	}
}

func (r *NumberOfStatesAtVersionResponse) Label() string {
	return "number_of_states_at_version"
}

// ServerProtocolVersion is the protocol version run by a server. Clients
// request this first to identify what API calls and data requests the
// server supports
type ServerProtocolVersion struct {
	cbor.StructAsArray
	ProtocolVersion uint64
}

// ServerProtocolVersionResponse carries the server's protocol version
type ServerProtocolVersionResponse struct {
	DataResponseBase
	Version ServerProtocolVersion
}

func NewServerProtocolVersionResponse(
	version ServerProtocolVersion,
) *ServerProtocolVersionResponse {
	return &ServerProtocolVersionResponse{
		DataResponseBase: DataResponseBase{
			ResponseType: DataResponseTypeServerProtocolVersion,
		},
		Version: version,
	}
}

func (r *ServerProtocolVersionResponse) Label() string {
	return "server_protocol_version"
}

// StateValueChunkWithProofResponse carries a chunk of state values with proof
type StateValueChunkWithProofResponse struct {
	DataResponseBase
	Chunk types.StateValueChunkWithProof
}

func NewStateValueChunkWithProofResponse(
	chunk types.StateValueChunkWithProof,
) *StateValueChunkWithProofResponse {
	return &StateValueChunkWithProofResponse{
		DataResponseBase: DataResponseBase{
			ResponseType: DataResponseTypeStateValueChunkWithProof,
		},
		Chunk: chunk,
	}
}

func (r *StateValueChunkWithProofResponse) Label() string {
	return "state_value_chunk_with_proof"
}

// StorageServerSummaryResponse carries the server's storage summary
type StorageServerSummaryResponse struct {
	DataResponseBase
	Summary StorageServerSummary
}

func NewStorageServerSummaryResponse(
	summary StorageServerSummary,
) *StorageServerSummaryResponse {
	return &StorageServerSummaryResponse{
		DataResponseBase: DataResponseBase{
			ResponseType: DataResponseTypeStorageServerSummary,
		},
		Summary: summary,
	}
}

func (r *StorageServerSummaryResponse) Label() string {
	return "storage_server_summary"
}

// TransactionOutputsWithProofResponse carries transaction outputs with proof
type TransactionOutputsWithProofResponse struct {
	DataResponseBase
	OutputList types.TransactionOutputListWithProof
}

func MakeTransactionOutputsWithProofResponse(
	outputList types.TransactionOutputListWithProof,
) *TransactionOutputsWithProofResponse {
	return &TransactionOutputsWithProofResponse{
		DataResponseBase: DataResponseBase{
			ResponseType: DataResponseTypeTransactionOutputsWithProof,
		},
		OutputList: outputList,
	}
}

func (r *TransactionOutputsWithProofResponse) Label() string {
	return "transaction_outputs_with_proof"
}

// TransactionsWithProofResponse carries transactions with proof
type TransactionsWithProofResponse struct {
	DataResponseBase
	TransactionList types.TransactionListWithProof
}

func MakeTransactionsWithProofResponse(
	transactionList types.TransactionListWithProof,
) *TransactionsWithProofResponse {
	return &TransactionsWithProofResponse{
		DataResponseBase: DataResponseBase{
			ResponseType: DataResponseTypeTransactionsWithProof,
		},
		TransactionList: transactionList,
	}
}

func (r *TransactionsWithProofResponse) Label() string {
	return "transactions_with_proof"
}

// NewTransactionsOrOutputsWithProofResponse carries new transactions or
// outputs along with the ledger info they are proven against and an
// optional last chunk hint
type NewTransactionsOrOutputsWithProofResponse struct {
	DataResponseBase
	TransactionOrOutputList types.TransactionOrOutputListWithProof
	LedgerInfo              types.LedgerInfoWithSignatures
	LastChunkHint           *uint64
}

func NewNewTransactionsOrOutputsWithProofResponse(
	transactionOrOutputList types.TransactionOrOutputListWithProof,
	ledgerInfo types.LedgerInfoWithSignatures,
	lastChunkHint *uint64,
) *NewTransactionsOrOutputsWithProofResponse {
	return &NewTransactionsOrOutputsWithProofResponse{
		DataResponseBase: DataResponseBase{
			ResponseType: DataResponseTypeNewTransactionsOrOutputsWithProof,
		},
		TransactionOrOutputList: transactionOrOutputList,
		LedgerInfo:              ledgerInfo,
		LastChunkHint:           lastChunkHint,
	}
}

func (r *NewTransactionsOrOutputsWithProofResponse) Label() string {
	return "new_transactions_or_outputs_with_proof"
}

// TransactionsOrOutputsWithProofResponse carries transactions or outputs
// with proof, whichever the serving side chose to return
type TransactionsOrOutputsWithProofResponse struct {
	DataResponseBase
	TransactionOrOutputList types.TransactionOrOutputListWithProof
}

func MakeTransactionsOrOutputsWithProofResponse(
	transactionOrOutputList types.TransactionOrOutputListWithProof,
) *TransactionsOrOutputsWithProofResponse {
	return &TransactionsOrOutputsWithProofResponse{
		DataResponseBase: DataResponseBase{
			ResponseType: DataResponseTypeTransactionsOrOutputsWithProof,
		},
		TransactionOrOutputList: transactionOrOutputList,
	}
}

func (r *TransactionsOrOutputsWithProofResponse) Label() string {
	return "transactions_or_outputs_with_proof"
}

// StorageServiceResponse is the outer envelope for a data response. The
// payload is stored either raw or compressed; a compressed envelope keeps
// the payload label alongside the bytes so that logging and metrics never
// pay the decompression cost
type StorageServiceResponse struct {
	compressed     bool
	label          string
	compressedData compression.CompressedData
	dataResponse   DataResponse
}

// NewStorageServiceResponse creates a new response envelope, compressing
// the payload if requested. Compression failures, including exceeding the
// byte budget, surface as an UnexpectedError
func NewStorageServiceResponse(
	dataResponse DataResponse,
	performCompression bool,
) (StorageServiceResponse, error) {
	if !performCompression {
		return StorageServiceResponse{
			dataResponse: dataResponse,
		}, nil
	}
	rawData, err := cbor.Encode(dataResponse)
	if err != nil {
		return StorageServiceResponse{}, &UnexpectedError{Detail: err.Error()}
	}
	compressedData, err := compression.Compress(
		rawData,
		compression.ClientStateSync,
		MaxApplicationMessageSize,
	)
	if err != nil {
		return StorageServiceResponse{}, &UnexpectedError{Detail: err.Error()}
	}
	return StorageServiceResponse{
		compressed:     true,
		label:          dataResponse.Label() + CompressionSuffixLabel,
		compressedData: compressedData,
	}, nil
}

// DataResponse returns the data response regardless of the inner format.
// The operation is idempotent and side-effect-free
func (r StorageServiceResponse) DataResponse() (DataResponse, error) {
	if !r.compressed {
		return r.dataResponse, nil
	}
	rawData, err := compression.Decompress(
		r.compressedData,
		compression.ClientStateSync,
		MaxApplicationMessageSize,
	)
	if err != nil {
		return nil, &UnexpectedError{Detail: err.Error()}
	}
	dataResponse, err := decodeDataResponse(rawData)
	if err != nil {
		return nil, &UnexpectedError{Detail: err.Error()}
	}
	return dataResponse, nil
}

// Label returns a summary label for the response. Compressed responses
// return the stored label without decompressing the payload
func (r StorageServiceResponse) Label() string {
	if r.compressed {
		return r.label
	}
	return r.dataResponse.Label()
}

// IsCompressed returns true iff the inner payload is compressed
func (r StorageServiceResponse) IsCompressed() bool {
	return r.compressed
}

func (r StorageServiceResponse) MarshalCBOR() ([]byte, error) {
	if r.compressed {
		tmp := []any{
			storageServiceResponseTypeCompressed,
			r.label,
			[]byte(r.compressedData),
		}
		return cbor.Encode(&tmp)
	}
	tmp := []any{
		storageServiceResponseTypeRaw,
		r.dataResponse,
	}
	return cbor.Encode(&tmp)
}

func (r *StorageServiceResponse) UnmarshalCBOR(cborData []byte) error {
	responseType, err := cbor.DecodeIdFromList(cborData)
	if err != nil {
		return err
	}
	switch uint8(responseType) {
	case storageServiceResponseTypeCompressed:
		var tmp struct {
			cbor.StructAsArray
			ResponseType uint8
			Label        string
			Data         []byte
		}
		if _, err := cbor.Decode(cborData, &tmp); err != nil {
			return err
		}
		r.compressed = true
		r.label = tmp.Label
		r.compressedData = tmp.Data
		r.dataResponse = nil
	case storageServiceResponseTypeRaw:
		var tmp struct {
			cbor.StructAsArray
			ResponseType uint8
			Payload      cbor.RawMessage
		}
		if _, err := cbor.Decode(cborData, &tmp); err != nil {
			return err
		}
		dataResponse, err := decodeDataResponse(tmp.Payload)
		if err != nil {
			return err
		}
		r.compressed = false
		r.label = ""
		r.compressedData = nil
		r.dataResponse = dataResponse
	default:
		return fmt.Errorf("unknown storage service response type: %d", responseType)
	}
	return nil
}

// decodeDataResponse decodes a data response union, dispatching on the
// leading variant tag
func decodeDataResponse(data []byte) (DataResponse, error) {
	responseType, err := cbor.DecodeIdFromList(data)
	if err != nil {
		return nil, err
	}
	if responseType < 0 || responseType > math.MaxUint8 {
		return nil, fmt.Errorf("unknown data response type: %d", responseType)
	}
	return NewDataResponseFromCbor(uint8(responseType), data)
}

// ExtractDataResponse unwraps the response envelope and extracts the
// expected data response type. On a variant mismatch it fails with an
// UnexpectedResponseError naming both the expected and actual label
func ExtractDataResponse[T DataResponse](
	response StorageServiceResponse,
) (T, error) {
	var expected T
	dataResponse, err := response.DataResponse()
	if err != nil {
		return expected, err
	}
	typed, ok := dataResponse.(T)
	if !ok {
		return expected, &UnexpectedResponseError{
			Detail: fmt.Sprintf(
				"expected %s, found %s",
				expected.Label(),
				dataResponse.Label(),
			),
		}
	}
	return typed, nil
}
