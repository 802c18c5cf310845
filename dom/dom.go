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

// Package dom provides mutable JSON document handles.
//
// A Handle wraps a shared JSON object, a HandleArray wraps an ordered
// sequence of JSON values, and a Value wraps any single JSON value.
// Handles alias their trees: embedding a Handle in another Handle
// shares structure, so later writes to the child are visible from the
// parent.
//
// Every operation tolerates nil receivers and nil arguments.  Failures
// are reported with a false flag and a log line; nothing here panics.
package dom

import (
	"encoding/json"
	"log"
)

// Handle wraps a mutable JSON object.
//
// Copies of a Handle share the same underlying tree.
type Handle struct {
	fields map[string]interface{}
}

// NewObject creates a Handle wrapping an empty JSON object.
func NewObject() *Handle {
	return &Handle{
		fields: make(map[string]interface{}),
	}
}

func (h *Handle) usable() bool {
	return h != nil && h.fields != nil
}

// SetString sets a string field.  An empty field name is rejected.
func (h *Handle) SetString(name, value string) {
	if !h.usable() {
		log.Printf("dom.SetString: nil handle")
		return
	}
	if name == "" {
		log.Printf("dom.SetString: no field name")
		return
	}
	h.fields[name] = value
}

// SetNumber sets a numeric field.
func (h *Handle) SetNumber(name string, value float64) {
	if !h.usable() {
		log.Printf("dom.SetNumber: nil handle")
		return
	}
	if name == "" {
		log.Printf("dom.SetNumber: no field name")
		return
	}
	h.fields[name] = value
}

// SetObject embeds another object.  The child's tree is shared, not
// copied.
func (h *Handle) SetObject(name string, value *Handle) {
	if !h.usable() || !value.usable() {
		log.Printf("dom.SetObject: nil handle")
		return
	}
	if name == "" {
		log.Printf("dom.SetObject: no field name")
		return
	}
	h.fields[name] = value.fields
}

// SetArray embeds an array.  The array's values are shared, not
// copied.
func (h *Handle) SetArray(name string, value *HandleArray) {
	if !h.usable() || value == nil {
		log.Printf("dom.SetArray: nil handle")
		return
	}
	if name == "" {
		log.Printf("dom.SetArray: no field name")
		return
	}
	h.fields[name] = value.values
}

// GetString gets a string field.  Missing fields and non-strings
// report false.
func (h *Handle) GetString(name string) (string, bool) {
	if !h.usable() {
		log.Printf("dom.GetString: nil handle")
		return "", false
	}
	x, have := h.fields[name]
	if !have {
		return "", false
	}
	s, is := x.(string)
	return s, is
}

// GetNumber gets a numeric field.
func (h *Handle) GetNumber(name string) (float64, bool) {
	if !h.usable() {
		log.Printf("dom.GetNumber: nil handle")
		return 0, false
	}
	x, have := h.fields[name]
	if !have {
		return 0, false
	}
	f, is := x.(float64)
	return f, is
}

// GetObject gets an embedded object.  The returned Handle shares the
// child's tree.
func (h *Handle) GetObject(name string) (*Handle, bool) {
	if !h.usable() {
		log.Printf("dom.GetObject: nil handle")
		return nil, false
	}
	x, have := h.fields[name]
	if !have {
		return nil, false
	}
	m, is := x.(map[string]interface{})
	if !is {
		return nil, false
	}
	return &Handle{fields: m}, true
}

// Keys reports the object's field names and their Kinds.
func (h *Handle) Keys() map[string]Kind {
	acc := make(map[string]Kind)
	if !h.usable() {
		log.Printf("dom.Keys: nil handle")
		return acc
	}
	for name, x := range h.fields {
		acc[name] = KindOf(x)
	}
	return acc
}

// Len reports the number of fields.
func (h *Handle) Len() int {
	if !h.usable() {
		return 0
	}
	return len(h.fields)
}

// Serialize renders the object as a JSON string.
func (h *Handle) Serialize() (string, bool) {
	if !h.usable() {
		log.Printf("dom.Serialize: nil handle")
		return "", false
	}
	js, err := json.Marshal(h.fields)
	if err != nil {
		log.Printf("dom.Serialize: %s", err)
		return "", false
	}
	return string(js), true
}

// Parse replaces the handle's tree with the result of parsing the
// given JSON, which must be an object.
func (h *Handle) Parse(s string) bool {
	if h == nil {
		log.Printf("dom.Parse: nil handle")
		return false
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		log.Printf("dom.Parse: %s", err)
		return false
	}
	if m == nil {
		// "null" parses to a nil map, which would leave the
		// handle unusable.
		m = make(map[string]interface{})
	}
	h.fields = m
	return true
}

// HandleArray wraps an ordered sequence of JSON values.
type HandleArray struct {
	values []interface{}
}

// NewArray creates an empty HandleArray.
func NewArray() *HandleArray {
	return &HandleArray{
		values: make([]interface{}, 0, 8),
	}
}

// Append appends an object to the array.  The object's tree is
// shared.
func (a *HandleArray) Append(h *Handle) {
	if a == nil || !h.usable() {
		log.Printf("dom.Append: nil handle")
		return
	}
	a.values = append(a.values, h.fields)
}

// AppendArray wraps the given array in a one-field object named by
// name and appends that object.
func (a *HandleArray) AppendArray(name string, value *HandleArray) {
	if a == nil || value == nil {
		log.Printf("dom.AppendArray: nil handle")
		return
	}
	wrapper := NewObject()
	wrapper.SetArray(name, value)
	a.Append(wrapper)
}

// Len reports the number of elements.
func (a *HandleArray) Len() int {
	if a == nil {
		return 0
	}
	return len(a.values)
}

// At gets the element at the given index.
func (a *HandleArray) At(i int) (*Value, bool) {
	if a == nil {
		log.Printf("dom.At: nil handle")
		return nil, false
	}
	if i < 0 || len(a.values) <= i {
		return nil, false
	}
	return &Value{x: a.values[i]}, true
}

// ObjectAt gets the object at the given index.  Reports false if the
// element isn't an object.
func (a *HandleArray) ObjectAt(i int) (*Handle, bool) {
	v, have := a.At(i)
	if !have {
		return nil, false
	}
	h := v.AsObject()
	return h, h != nil
}

// StringAt gets a string field of the object at the given index.
func (a *HandleArray) StringAt(i int, name string) (string, bool) {
	h, have := a.ObjectAt(i)
	if !have {
		return "", false
	}
	return h.GetString(name)
}

// KindAt reports the Kind of the element at the given index.
func (a *HandleArray) KindAt(i int) (Kind, bool) {
	v, have := a.At(i)
	if !have {
		return None, false
	}
	return v.Kind(), true
}

// Values returns the elements as Values.
func (a *HandleArray) Values() []*Value {
	if a == nil {
		log.Printf("dom.Values: nil handle")
		return nil
	}
	acc := make([]*Value, 0, len(a.values))
	for _, x := range a.values {
		acc = append(acc, &Value{x: x})
	}
	return acc
}

// Serialize renders the array as a JSON string.
func (a *HandleArray) Serialize() (string, bool) {
	if a == nil {
		log.Printf("dom.Serialize: nil handle")
		return "", false
	}
	js, err := json.Marshal(a.values)
	if err != nil {
		log.Printf("dom.Serialize: %s", err)
		return "", false
	}
	return string(js), true
}

// ParseArray parses a JSON array, reporting the element count.
func ParseArray(s string) (*HandleArray, int, bool) {
	var vs []interface{}
	if err := json.Unmarshal([]byte(s), &vs); err != nil {
		log.Printf("dom.ParseArray: %s", err)
		return nil, 0, false
	}
	return &HandleArray{values: vs}, len(vs), true
}

// Value wraps any single JSON value.
type Value struct {
	x interface{}
}

// Kind reports the Kind of the wrapped value.  A nil Value has Kind
// None.
func (v *Value) Kind() Kind {
	if v == nil {
		return None
	}
	return KindOf(v.x)
}

// AsObject returns the value as a Handle, or nil if the value isn't
// an object.
func (v *Value) AsObject() *Handle {
	if v == nil {
		return nil
	}
	m, is := v.x.(map[string]interface{})
	if !is {
		return nil
	}
	return &Handle{fields: m}
}

// AsArray returns the value as a HandleArray, or nil if the value
// isn't an array.
func (v *Value) AsArray() *HandleArray {
	if v == nil {
		return nil
	}
	vs, is := v.x.([]interface{})
	if !is {
		return nil
	}
	return &HandleArray{values: vs}
}

// AsString returns the wrapped string, or "" if the value isn't a
// string.
func (v *Value) AsString() string {
	if v == nil {
		return ""
	}
	s, _ := v.x.(string)
	return s
}

// AsNumber returns the wrapped number, or 0 if the value isn't a
// number.
func (v *Value) AsNumber() float64 {
	if v == nil {
		return 0
	}
	f, _ := v.x.(float64)
	return f
}
