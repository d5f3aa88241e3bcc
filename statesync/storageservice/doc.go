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

// Package storageservice implements the data-availability and response
// types of the state-sync storage service.
//
// # AI Navigation Guide
//
// Peers advertise which contiguous ranges of ledger data they hold and
// answer typed, optionally compressed data requests. Serviceability (can
// this node answer that request?) is decided entirely from a frozen
// StorageServerSummary snapshot; responses are packaged in a
// StorageServiceResponse envelope.
//
// # Key Files
//
//   - range.go: CompleteDataRange, the invariant-checked contiguous range
//   - summary.go: DataSummary/ProtocolMetadata/StorageServerSummary and
//     the CanService predicate
//   - requests.go: DataRequest union and StorageServiceRequest
//   - responses.go: DataResponse union, the response envelope, and typed
//     extraction
//   - server.go: Handler that builds responses from local storage
//   - config.go: StorageServiceConfig and its chunk-size limits
//
// # Serviceability
//
// CanService is a total boolean predicate: malformed request ranges fold
// into false rather than erroring. Optimistic fetches for new data are
// serviceable while the requester's known version is within
// OptimisticFetchVersionDelta of the synced frontier.
package storageservice
