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

import "log"

// Dump logs the object's fields recursively.  For debugging.
func (h *Handle) Dump() {
	if !h.usable() {
		log.Printf("dom.Dump: nil handle")
		return
	}
	dumpObject(h.fields, 0)
}

// Dump logs the array's elements recursively.  For debugging.
func (a *HandleArray) Dump() {
	if a == nil {
		log.Printf("dom.Dump: nil handle")
		return
	}
	dumpArray(a.values, 0)
}

func dumpArray(vs []interface{}, level int) {
	log.Printf("dom.Dump: %*sarray with %d elements", level*2, "", len(vs))
	for i, x := range vs {
		log.Printf("dom.Dump: %*selement %d", level*2, "", i)
		dumpValue(x, level)
	}
}

func dumpValue(x interface{}, level int) {
	pad := level * 2
	switch KindOf(x) {
	case Null:
		log.Printf("dom.Dump: %*snull", pad, "")
	case String:
		log.Printf("dom.Dump: %*sstring %q", pad, "", x)
	case Number:
		log.Printf("dom.Dump: %*snumber %v", pad, "", x)
	case Boolean:
		log.Printf("dom.Dump: %*sboolean %v", pad, "", x)
	case Array:
		dumpArray(x.([]interface{}), level+1)
	case Object:
		dumpObject(x.(map[string]interface{}), level+1)
	default:
		log.Printf("dom.Dump: %*snone (%T)", pad, "", x)
	}
}

func dumpObject(m map[string]interface{}, level int) {
	log.Printf("dom.Dump: %*sobject with %d fields", level*2, "", len(m))
	for name, x := range m {
		log.Printf("dom.Dump: %*sfield %q", level*2, "", name)
		dumpValue(x, level)
	}
}
