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
	"errors"
	"fmt"
)

// ErrDegenerateRange is returned when a data range's bounds are invalid or
// its length would overflow the underlying type
var ErrDegenerateRange = errors.New("data range cannot be degenerate")

// ErrUnserviceableRequest is returned by the handler when the current
// storage summary cannot answer a request
var ErrUnserviceableRequest = errors.New(
	"request cannot be serviced by this node",
)

// UnexpectedError wraps an internal fault, e.g. a serialization or
// compression failure
type UnexpectedError struct {
	Detail string
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected error encountered: %s", e.Detail)
}

// UnexpectedResponseError indicates a protocol mismatch: a typed extraction
// found a different payload variant than the caller expected
type UnexpectedResponseError struct {
	Detail string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected response error: %s", e.Detail)
}
