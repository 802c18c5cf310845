/* Copyright 2019 Castlelore Studios, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package dom

import (
	"testing"
)

func TestObjectFields(t *testing.T) {
	h := NewObject()
	h.SetString("name", "homer")
	h.SetNumber("strength", 3)

	if s, have := h.GetString("name"); !have || s != "homer" {
		t.Fatalf(`GetString: %q, %v`, s, have)
	}
	if f, have := h.GetNumber("strength"); !have || f != 3 {
		t.Fatalf("GetNumber: %v, %v", f, have)
	}
	if _, have := h.GetString("nope"); have {
		t.Fatal("GetString found a missing field")
	}
	if _, have := h.GetString("strength"); have {
		t.Fatal("GetString found a number")
	}
}

func TestObjectEmptyFieldName(t *testing.T) {
	h := NewObject()
	h.SetString("", "queso")
	if h.Len() != 0 {
		t.Fatal("empty field name was not rejected")
	}
}

func TestObjectSharing(t *testing.T) {
	parent := NewObject()
	child := NewObject()
	parent.SetObject("child", child)

	// Writes to the child after embedding should be visible from
	// the parent.
	child.SetString("name", "bart")

	got, have := parent.GetObject("child")
	if !have {
		t.Fatal("GetObject")
	}
	if s, have := got.GetString("name"); !have || s != "bart" {
		t.Fatalf(`child name: %q, %v`, s, have)
	}
}

func TestSerializeParse(t *testing.T) {
	h := NewObject()
	h.SetString("cmd", "look")
	inner := NewObject()
	inner.SetNumber("n", 1)
	h.SetObject("args", inner)

	js, ok := h.Serialize()
	if !ok {
		t.Fatal("Serialize")
	}

	back := NewObject()
	if !back.Parse(js) {
		t.Fatal("Parse")
	}
	if s, have := back.GetString("cmd"); !have || s != "look" {
		t.Fatalf(`cmd: %q, %v`, s, have)
	}
	args, have := back.GetObject("args")
	if !have {
		t.Fatal("args")
	}
	if f, have := args.GetNumber("n"); !have || f != 1 {
		t.Fatalf("n: %v, %v", f, have)
	}
}

func TestParseBad(t *testing.T) {
	h := NewObject()
	if h.Parse("not json") {
		t.Fatal("Parse accepted garbage")
	}
	if h.Parse(`["an","array"]`) {
		t.Fatal("Parse accepted an array")
	}
	// The handle should still be usable.
	h.SetString("still", "here")
	if s, have := h.GetString("still"); !have || s != "here" {
		t.Fatalf(`still: %q, %v`, s, have)
	}
}

func TestArray(t *testing.T) {
	a := NewArray()
	for _, name := range []string{"lisa", "maggie"} {
		h := NewObject()
		h.SetString("name", name)
		a.Append(h)
	}

	if a.Len() != 2 {
		t.Fatalf("Len: %d", a.Len())
	}
	if s, have := a.StringAt(1, "name"); !have || s != "maggie" {
		t.Fatalf(`StringAt: %q, %v`, s, have)
	}
	if _, have := a.ObjectAt(2); have {
		t.Fatal("ObjectAt out of range")
	}
	if k, have := a.KindAt(0); !have || k != Object {
		t.Fatalf("KindAt: %v, %v", k, have)
	}
}

func TestParseArray(t *testing.T) {
	a, n, ok := ParseArray(`[{"name":"moe"},"tavern",42,null]`)
	if !ok || n != 4 {
		t.Fatalf("ParseArray: %d, %v", n, ok)
	}

	vs := a.Values()
	if len(vs) != 4 {
		t.Fatalf("Values: %d", len(vs))
	}

	wantKinds := []Kind{Object, String, Number, Null}
	for i, want := range wantKinds {
		if got := vs[i].Kind(); got != want {
			t.Fatalf("element %d Kind: %v wanted %v", i, got, want)
		}
	}

	if s, have := a.StringAt(0, "name"); !have || s != "moe" {
		t.Fatalf(`StringAt: %q, %v`, s, have)
	}
	if vs[1].AsString() != "tavern" {
		t.Fatalf(`AsString: %q`, vs[1].AsString())
	}
	if vs[2].AsNumber() != 42 {
		t.Fatalf("AsNumber: %v", vs[2].AsNumber())
	}

	if _, _, ok := ParseArray(`{"not":"an array"}`); ok {
		t.Fatal("ParseArray accepted an object")
	}
}

func TestAppendArray(t *testing.T) {
	inner := NewArray()
	h := NewObject()
	h.SetString("name", "ned")
	inner.Append(h)

	outer := NewArray()
	outer.AppendArray("folks", inner)

	if outer.Len() != 1 {
		t.Fatalf("Len: %d", outer.Len())
	}
	wrapper, have := outer.ObjectAt(0)
	if !have {
		t.Fatal("ObjectAt")
	}
	keys := wrapper.Keys()
	if k, have := keys["folks"]; !have || k != Array {
		t.Fatalf("keys: %v", keys)
	}
}

func TestKeys(t *testing.T) {
	h := NewObject()
	h.SetString("a", "x")
	h.SetNumber("b", 2)
	sub := NewObject()
	h.SetObject("c", sub)

	keys := h.Keys()
	want := map[string]Kind{"a": String, "b": Number, "c": Object}
	if len(keys) != len(want) {
		t.Fatalf("Keys: %v", keys)
	}
	for name, k := range want {
		if keys[name] != k {
			t.Fatalf("key %q: %v wanted %v", name, keys[name], k)
		}
	}
}

func TestNilHandles(t *testing.T) {
	// None of these should panic.
	var h *Handle
	h.SetString("a", "b")
	if _, have := h.GetString("a"); have {
		t.Fatal("nil handle had a field")
	}
	if _, ok := h.Serialize(); ok {
		t.Fatal("nil handle serialized")
	}
	h.Dump()

	var a *HandleArray
	a.Append(NewObject())
	if a.Len() != 0 {
		t.Fatal("nil array grew")
	}
	if _, ok := a.Serialize(); ok {
		t.Fatal("nil array serialized")
	}
	a.Dump()

	var v *Value
	if v.Kind() != None {
		t.Fatal("nil value had a kind")
	}
	if v.AsObject() != nil || v.AsArray() != nil || v.AsString() != "" {
		t.Fatal("nil value had content")
	}
}
