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
)

// Unsigned is the set of integer types a CompleteDataRange can span
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// CompleteDataRange is a contiguous, non-empty data range (lowest to
// highest, inclusive) where data is complete, i.e. there are no missing
// pieces of data within the range.
//
// A CompleteDataRange is never degenerate: lowest <= highest always holds
// and the range length is always expressible without overflowing the
// underlying type. Constructing a degenerate range returns
// ErrDegenerateRange, as does deserializing one off the wire
type CompleteDataRange[T Unsigned] struct {
	lowest  T
	highest T
}

func maxValue[T Unsigned]() T {
	return ^T(0)
}

func rangeLengthChecked[T Unsigned](lowest, highest T) (T, error) {
	if lowest > highest {
		return 0, ErrDegenerateRange
	}
	// len = highest - lowest + 1
	// Subtract before adding one so that highest == lowest cannot overflow
	diff := highest - lowest
	if diff == maxValue[T]() {
		return 0, ErrDegenerateRange
	}
	return diff + 1, nil
}

// NewCompleteDataRange creates a data range from explicit bounds
func NewCompleteDataRange[T Unsigned](
	lowest T,
	highest T,
) (CompleteDataRange[T], error) {
	if _, err := rangeLengthChecked(lowest, highest); err != nil {
		return CompleteDataRange[T]{}, err
	}
	return CompleteDataRange[T]{lowest: lowest, highest: highest}, nil
}

// CompleteDataRangeFromLen creates a data range given the lower bound and
// the length of the range
func CompleteDataRangeFromLen[T Unsigned](
	lowest T,
	length T,
) (CompleteDataRange[T], error) {
	// highest = lowest + length - 1
	// Subtract before adding so a full-domain length cannot overflow
	if length == 0 {
		return CompleteDataRange[T]{}, ErrDegenerateRange
	}
	addend := length - 1
	if lowest > maxValue[T]()-addend {
		return CompleteDataRange[T]{}, ErrDegenerateRange
	}
	return NewCompleteDataRange(lowest, lowest+addend)
}

// CompleteDataRangeFromGenesis creates a data range spanning from genesis
// (zero) to the given upper bound
func CompleteDataRangeFromGenesis[T Unsigned](highest T) CompleteDataRange[T] {
	return CompleteDataRange[T]{lowest: 0, highest: highest}
}

func (r CompleteDataRange[T]) Lowest() T {
	return r.lowest
}

func (r CompleteDataRange[T]) Highest() T {
	return r.highest
}

// Len returns the length of the data range. The length is recomputed with
// the same overflow check used at construction rather than cached, which
// keeps the type trivially copyable
func (r CompleteDataRange[T]) Len() (T, error) {
	return rangeLengthChecked(r.lowest, r.highest)
}

// Contains returns true iff the given item is within this range
func (r CompleteDataRange[T]) Contains(item T) bool {
	return r.lowest <= item && item <= r.highest
}

// SupersetOf returns true iff this range is a superset of the other range
func (r CompleteDataRange[T]) SupersetOf(other CompleteDataRange[T]) bool {
	return r.lowest <= other.lowest && other.highest <= r.highest
}

func (r CompleteDataRange[T]) MarshalCBOR() ([]byte, error) {
	tmp := struct {
		cbor.StructAsArray
		Lowest  T
		Highest T
	}{
		Lowest:  r.lowest,
		Highest: r.highest,
	}
	return cbor.Encode(&tmp)
}

// UnmarshalCBOR funnels decoded bounds through the checked constructor so
// that a degenerate range received from a peer fails to deserialize rather
// than constructing silently
func (r *CompleteDataRange[T]) UnmarshalCBOR(cborData []byte) error {
	var tmp struct {
		cbor.StructAsArray
		Lowest  T
		Highest T
	}
	if _, err := cbor.Decode(cborData, &tmp); err != nil {
		return err
	}
	newRange, err := NewCompleteDataRange(tmp.Lowest, tmp.Highest)
	if err != nil {
		return err
	}
	*r = newRange
	return nil
}
