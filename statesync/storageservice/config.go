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

// MaxApplicationMessageSize is the maximum serialized message size accepted
// by the network layer, used as the byte budget for payload compression
const MaxApplicationMessageSize uint64 = 64 * 1024 * 1024

// StorageServiceConfig holds the static serving limits for a storage
// service instance
type StorageServiceConfig struct {
	// Max number of epoch ending ledger infos per response chunk
	MaxEpochChunkSize uint64
	// Max number of state values per response chunk
	MaxStateChunkSize uint64
	// Max number of transactions per response chunk
	MaxTransactionChunkSize uint64
	// Max number of transaction outputs per response chunk
	MaxTransactionOutputChunkSize uint64
}

// StorageServiceConfigOptionFunc represents a function used to modify the
// storage service config
type StorageServiceConfigOptionFunc func(*StorageServiceConfig)

// NewStorageServiceConfig returns a new storage service config object with
// the provided options
func NewStorageServiceConfig(
	options ...StorageServiceConfigOptionFunc,
) StorageServiceConfig {
	c := StorageServiceConfig{
		MaxEpochChunkSize:             100,
		MaxStateChunkSize:             2000,
		MaxTransactionChunkSize:       2000,
		MaxTransactionOutputChunkSize: 1000,
	}
	// Apply provided options functions
	for _, option := range options {
		option(&c)
	}
	return c
}

// WithMaxEpochChunkSize specifies the max epoch ending ledger infos per chunk
func WithMaxEpochChunkSize(size uint64) StorageServiceConfigOptionFunc {
	return func(c *StorageServiceConfig) {
		c.MaxEpochChunkSize = size
	}
}

// WithMaxStateChunkSize specifies the max state values per chunk
func WithMaxStateChunkSize(size uint64) StorageServiceConfigOptionFunc {
	return func(c *StorageServiceConfig) {
		c.MaxStateChunkSize = size
	}
}

// WithMaxTransactionChunkSize specifies the max transactions per chunk
func WithMaxTransactionChunkSize(size uint64) StorageServiceConfigOptionFunc {
	return func(c *StorageServiceConfig) {
		c.MaxTransactionChunkSize = size
	}
}

// WithMaxTransactionOutputChunkSize specifies the max transaction outputs per chunk
func WithMaxTransactionOutputChunkSize(
	size uint64,
) StorageServiceConfigOptionFunc {
	return func(c *StorageServiceConfig) {
		c.MaxTransactionOutputChunkSize = size
	}
}
