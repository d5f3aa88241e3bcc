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

// Package executor defines the block-execution contract consumed by
// state-sync orchestration. Implementations live elsewhere; this package
// only pins down the interface
package executor

import (
	"github.com/alilloig/aptos-core/types"
)

// StateView is a read-only snapshot of ledger state that a block executes
// against
type StateView interface {
	// StateValue returns the value stored under the given state key, or nil
	// if the key is not present in the snapshot
	StateValue(key []byte) ([]byte, error)
}

// BlockExecutor executes a signature-verified block of transactions against
// a base state view, producing one output per transaction. A returned error
// is fatal for the whole block; there are no partial results
type BlockExecutor[A any] interface {
	ExecuteBlock(
		executorArguments A,
		signatureVerifiedBlock []types.Transaction,
		baseView StateView,
	) ([]types.TransactionOutput, error)
}
