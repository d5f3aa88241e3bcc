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

package cbor_test

import (
	"encoding/hex"
	"reflect"
	"testing"

	"github.com/alilloig/aptos-core/cbor"
)

type decodeTestDefinition struct {
	CborHex string
	Object  any
}

var decodeTests = []decodeTestDefinition{
	// Simple list of numbers
	{
		CborHex: "83010203",
		Object:  []any{uint64(1), uint64(2), uint64(3)},
	},
	// Simple map
	{
		CborHex: "a1616101",
		Object:  map[any]any{"a": uint64(1)},
	},
	// Nested list
	{
		CborHex: "8201820203",
		Object:  []any{uint64(1), []any{uint64(2), uint64(3)}},
	},
}

func TestDecode(t *testing.T) {
	for _, test := range decodeTests {
		cborData, err := hex.DecodeString(test.CborHex)
		if err != nil {
			t.Fatalf("failed to decode CBOR hex: %s", err)
		}
		var dest any
		if _, err := cbor.Decode(cborData, &dest); err != nil {
			t.Fatalf("failed to decode CBOR: %s", err)
		}
		if !reflect.DeepEqual(dest, test.Object) {
			t.Fatalf(
				"CBOR did not decode to expected object\n  got:    %#v\n  wanted: %#v",
				dest,
				test.Object,
			)
		}
	}
}

func TestEncodeDeterministic(t *testing.T) {
	// Map keys must come out in deterministic order
	tmp := map[string]uint64{
		"bb": 2,
		"a":  1,
		"cc": 3,
	}
	var lastHex string
	for i := 0; i < 5; i++ {
		cborData, err := cbor.Encode(&tmp)
		if err != nil {
			t.Fatalf("failed to encode CBOR: %s", err)
		}
		cborHex := hex.EncodeToString(cborData)
		if lastHex != "" && cborHex != lastHex {
			t.Fatalf(
				"encoding was not deterministic: %s != %s",
				cborHex,
				lastHex,
			)
		}
		lastHex = cborHex
	}
}

func TestListLength(t *testing.T) {
	testDefs := []struct {
		CborHex        string
		ExpectedLength int
	}{
		{CborHex: "80", ExpectedLength: 0},
		{CborHex: "83010203", ExpectedLength: 3},
		// 32-element list uses a length prefix byte
		{
			CborHex:        "9820" + repeatHex("01", 32),
			ExpectedLength: 32,
		},
	}
	for _, testDef := range testDefs {
		cborData, err := hex.DecodeString(testDef.CborHex)
		if err != nil {
			t.Fatalf("failed to decode CBOR hex: %s", err)
		}
		length, err := cbor.ListLength(cborData)
		if err != nil {
			t.Fatalf("failed to determine list length: %s", err)
		}
		if length != testDef.ExpectedLength {
			t.Fatalf(
				"did not get expected list length: got %d, wanted %d",
				length,
				testDef.ExpectedLength,
			)
		}
	}
}

func TestDecodeIdFromList(t *testing.T) {
	testDefs := []struct {
		CborHex     string
		ExpectedId  int
		ExpectedErr string
	}{
		{CborHex: "83010203", ExpectedId: 1},
		{CborHex: "820a6178", ExpectedId: 10},
		// First item larger than a simple uint
		{CborHex: "8218ff00", ExpectedId: 255},
		{
			CborHex:     "80",
			ExpectedErr: "cannot return first item from empty list",
		},
		{
			CborHex:     "816161",
			ExpectedErr: "first list item was not numeric: cbor: cannot unmarshal UTF-8 text string into Go value of type uint64",
		},
	}
	for _, testDef := range testDefs {
		cborData, err := hex.DecodeString(testDef.CborHex)
		if err != nil {
			t.Fatalf("failed to decode CBOR hex: %s", err)
		}
		id, err := cbor.DecodeIdFromList(cborData)
		if testDef.ExpectedErr != "" {
			if err == nil || err.Error() != testDef.ExpectedErr {
				t.Fatalf(
					"did not get expected error: got %v, wanted %s",
					err,
					testDef.ExpectedErr,
				)
			}
			continue
		}
		if err != nil {
			t.Fatalf("failed to decode ID from list: %s", err)
		}
		if id != testDef.ExpectedId {
			t.Fatalf(
				"did not get expected ID: got %d, wanted %d",
				id,
				testDef.ExpectedId,
			)
		}
	}
}

func TestDecodeById(t *testing.T) {
	type variantOne struct {
		cbor.StructAsArray
		Id    uint8
		Value uint64
	}
	type variantTwo struct {
		cbor.StructAsArray
		Id   uint8
		Name string
	}
	idMap := map[int]any{
		1: &variantOne{},
		2: &variantTwo{},
	}
	cborData, err := hex.DecodeString("820263666f6f")
	if err != nil {
		t.Fatalf("failed to decode CBOR hex: %s", err)
	}
	ret, err := cbor.DecodeById(cborData, idMap)
	if err != nil {
		t.Fatalf("failed to decode by ID: %s", err)
	}
	decoded, ok := ret.(*variantTwo)
	if !ok {
		t.Fatalf("decoded object was not the expected variant")
	}
	if decoded.Name != "foo" {
		t.Fatalf(
			"did not get expected value: got %s, wanted foo",
			decoded.Name,
		)
	}
	// Unknown ID
	cborData, err = hex.DecodeString("8203")
	if err != nil {
		t.Fatalf("failed to decode CBOR hex: %s", err)
	}
	if _, err := cbor.DecodeById(cborData, idMap); err == nil {
		t.Fatalf("did not get expected error for unknown ID")
	}
}

func TestDecodeRejectsUnknownMapFields(t *testing.T) {
	var dest struct {
		Known uint64
	}
	// {"Known": 1, "Extra": 2}
	cborData, err := hex.DecodeString("a2654b6e6f776e0165457874726102")
	if err != nil {
		t.Fatalf("failed to decode CBOR hex: %s", err)
	}
	if _, err := cbor.Decode(cborData, &dest); err == nil {
		t.Fatalf("did not get expected error for unknown map field")
	}
}

type storedCborObject struct {
	cbor.StructAsArray
	cbor.DecodeStoreCbor
	Value uint64
}

func (o *storedCborObject) UnmarshalCBOR(cborData []byte) error {
	return o.UnmarshalCborGeneric(cborData, o)
}

func (o *storedCborObject) MarshalCBOR() ([]byte, error) {
	if o.Cbor() != nil {
		return o.Cbor(), nil
	}
	return cbor.EncodeGeneric(o)
}

func TestDecodeStoreCbor(t *testing.T) {
	// [42]
	cborData, err := hex.DecodeString("81182a")
	if err != nil {
		t.Fatalf("failed to decode CBOR hex: %s", err)
	}
	var obj storedCborObject
	if _, err := cbor.Decode(cborData, &obj); err != nil {
		t.Fatalf("failed to decode CBOR: %s", err)
	}
	if obj.Value != 42 {
		t.Fatalf("did not get expected value: got %d, wanted 42", obj.Value)
	}
	// Original bytes are retained and re-served on encode
	if !reflect.DeepEqual(obj.Cbor(), cborData) {
		t.Fatalf("stored CBOR did not match original bytes")
	}
	reencoded, err := cbor.Encode(&obj)
	if err != nil {
		t.Fatalf("failed to encode CBOR: %s", err)
	}
	if !reflect.DeepEqual(reencoded, cborData) {
		t.Fatalf("re-encoded CBOR did not match original bytes")
	}
}

func TestDecodeGenericBypassesUnmarshaler(t *testing.T) {
	// [7]
	cborData, err := hex.DecodeString("8107")
	if err != nil {
		t.Fatalf("failed to decode CBOR hex: %s", err)
	}
	var obj storedCborObject
	if err := cbor.DecodeGeneric(cborData, &obj); err != nil {
		t.Fatalf("failed to decode CBOR: %s", err)
	}
	if obj.Value != 7 {
		t.Fatalf("did not get expected value: got %d, wanted 7", obj.Value)
	}
	// The custom UnmarshalCBOR was bypassed, so no bytes were stored
	if obj.Cbor() != nil {
		t.Fatalf("unexpected stored CBOR after generic decode")
	}
}

func repeatHex(hexByte string, count int) string {
	ret := ""
	for i := 0; i < count; i++ {
		ret += hexByte
	}
	return ret
}
