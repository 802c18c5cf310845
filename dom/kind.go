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
	"encoding/json"
	"fmt"
)

// Kind tags the type of a JSON value.
//
// None means "no value at all", which is distinct from an explicit
// JSON null.
type Kind int

const (
	None Kind = iota
	Null
	String
	Number
	Boolean
	Array
	Object
)

var kindNames = map[Kind]string{
	None:    "none",
	Null:    "null",
	String:  "string",
	Number:  "number",
	Boolean: "boolean",
	Array:   "array",
	Object:  "object",
}

func (k Kind) String() string {
	if name, have := kindNames[k]; have {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// MarshalJSON renders the Kind as its lower-case name.
func (k Kind) MarshalJSON() ([]byte, error) {
	name, have := kindNames[k]
	if !have {
		return nil, fmt.Errorf("unknown Kind %d", int(k))
	}
	return json.Marshal(name)
}

// UnmarshalJSON parses a lower-case Kind name.
func (k *Kind) UnmarshalJSON(bs []byte) error {
	var name string
	if err := json.Unmarshal(bs, &name); err != nil {
		return err
	}
	for kind, s := range kindNames {
		if s == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown Kind %q", name)
}

// KindOf reports the Kind of a decoded JSON value.
//
// The value should be what encoding/json produces: nil, string,
// float64, bool, []interface{}, or map[string]interface{}.  Anything
// else gets None.
func KindOf(x interface{}) Kind {
	switch x.(type) {
	case nil:
		return Null
	case string:
		return String
	case float64:
		return Number
	case bool:
		return Boolean
	case []interface{}:
		return Array
	case map[string]interface{}:
		return Object
	default:
		return None
	}
}
