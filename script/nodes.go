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

package script

import (
	"context"
	"fmt"

	"github.com/castlelore/mudlink/dom"
	"github.com/castlelore/mudlink/link"

	"github.com/dop251/goja"
)

// export unwraps a goja.Value.
func export(x interface{}) interface{} {
	if v, is := x.(goja.Value); is {
		return v.Export()
	}
	return x
}

func asConn(x interface{}) *link.Conn {
	c, _ := export(x).(*link.Conn)
	return c
}

func asHandle(x interface{}) *dom.Handle {
	h, _ := export(x).(*dom.Handle)
	return h
}

func asHandleArray(x interface{}) *dom.HandleArray {
	a, _ := export(x).(*dom.HandleArray)
	return a
}

func asString(o *goja.Runtime, x interface{}) string {
	s, is := export(x).(string)
	if !is {
		protest(o, "not a string")
	}
	return s
}

func asNumber(o *goja.Runtime, x interface{}) float64 {
	switch vv := export(x).(type) {
	case float64:
		return vv
	case int64:
		return float64(vv)
	case int:
		return float64(vv)
	default:
		protest(o, "not a number")
		return 0
	}
}

// bindLinkNodes installs the socket nodes.
//
// Each node reports failure with an ok flag (plus a log line from
// package link) rather than a Javascript exception, which preserves
// the boolean contract a scripted caller wants.
func bindLinkNodes(ctx context.Context, o *goja.Runtime, env map[string]interface{}) {

	env["connect"] = func(x interface{}) interface{} {
		var address string
		switch vv := export(x).(type) {
		case string:
			address = vv
		case map[string]interface{}:
			ip, _ := vv["ip"].(string)
			address = fmt.Sprintf("%s:%v", ip, vv["port"])
		default:
			protest(o, "bad address")
		}

		c, err := link.Dial(ctx, address)
		if err != nil {
			return map[string]interface{}{
				"ok": false,
			}
		}
		return map[string]interface{}{
			"ok":   true,
			"conn": c,
		}
	}

	env["send"] = func(cx, tx interface{}) interface{} {
		return asConn(cx).Send(ctx, asString(o, tx)) == nil
	}

	env["recv"] = func(cx interface{}) interface{} {
		text, err := asConn(cx).Receive(ctx)
		if err != nil {
			return map[string]interface{}{
				"ok": false,
			}
		}
		return map[string]interface{}{
			"ok":   true,
			"text": text,
		}
	}

	env["hasPending"] = func(cx interface{}) interface{} {
		return asConn(cx).HasPending()
	}

	env["close"] = func(cx interface{}) interface{} {
		return asConn(cx).Close() == nil
	}
}

// bindDOMNodes installs the JSON nodes.
func bindDOMNodes(o *goja.Runtime, env map[string]interface{}) {

	env["jsonObj"] = func() interface{} {
		return dom.NewObject()
	}

	env["jsonArr"] = func() interface{} {
		return dom.NewArray()
	}

	env["jsonSet"] = func(hx, namex, valx interface{}) interface{} {
		h := asHandle(hx)
		name := asString(o, namex)
		switch vv := export(valx).(type) {
		case string:
			h.SetString(name, vv)
		case float64:
			h.SetNumber(name, vv)
		case int64:
			h.SetNumber(name, float64(vv))
		case int:
			h.SetNumber(name, float64(vv))
		case *dom.Handle:
			h.SetObject(name, vv)
		case *dom.HandleArray:
			h.SetArray(name, vv)
		default:
			protest(o, fmt.Sprintf("bad value (%T)", vv))
		}
		return hx
	}

	env["jsonGetString"] = func(hx, namex interface{}) interface{} {
		value, have := asHandle(hx).GetString(asString(o, namex))
		return map[string]interface{}{
			"ok":    have,
			"value": value,
		}
	}

	env["jsonGetNumber"] = func(hx, namex interface{}) interface{} {
		value, have := asHandle(hx).GetNumber(asString(o, namex))
		return map[string]interface{}{
			"ok":    have,
			"value": value,
		}
	}

	env["jsonGetObject"] = func(hx, namex interface{}) interface{} {
		child, have := asHandle(hx).GetObject(asString(o, namex))
		return map[string]interface{}{
			"ok":  have,
			"obj": child,
		}
	}

	env["jsonAppend"] = func(ax, hx interface{}) interface{} {
		asHandleArray(ax).Append(asHandle(hx))
		return ax
	}

	env["jsonAppendArray"] = func(ax, namex, innerx interface{}) interface{} {
		asHandleArray(ax).AppendArray(asString(o, namex), asHandleArray(innerx))
		return ax
	}

	env["jsonSerialize"] = func(x interface{}) interface{} {
		var (
			text string
			ok   bool
		)
		switch vv := export(x).(type) {
		case *dom.Handle:
			text, ok = vv.Serialize()
		case *dom.HandleArray:
			text, ok = vv.Serialize()
		default:
			protest(o, fmt.Sprintf("not a handle (%T)", vv))
		}
		return map[string]interface{}{
			"ok":   ok,
			"text": text,
		}
	}

	env["jsonParse"] = func(hx, sx interface{}) interface{} {
		return asHandle(hx).Parse(asString(o, sx))
	}

	env["jsonParseMany"] = func(sx interface{}) interface{} {
		arr, count, ok := dom.ParseArray(asString(o, sx))
		return map[string]interface{}{
			"ok":    ok,
			"arr":   arr,
			"count": count,
		}
	}

	env["jsonKeys"] = func(hx interface{}) interface{} {
		kinds := asHandle(hx).Keys()
		acc := make(map[string]interface{}, len(kinds))
		for name, kind := range kinds {
			acc[name] = kind.String()
		}
		return acc
	}

	env["jsonLen"] = func(x interface{}) interface{} {
		switch vv := export(x).(type) {
		case *dom.Handle:
			return vv.Len()
		case *dom.HandleArray:
			return vv.Len()
		default:
			return 0
		}
	}

	env["jsonKindAt"] = func(ax, ix interface{}) interface{} {
		kind, have := asHandleArray(ax).KindAt(int(asNumber(o, ix)))
		if !have {
			return dom.None.String()
		}
		return kind.String()
	}

	env["jsonObjAt"] = func(ax, ix interface{}) interface{} {
		child, have := asHandleArray(ax).ObjectAt(int(asNumber(o, ix)))
		return map[string]interface{}{
			"ok":  have,
			"obj": child,
		}
	}

	env["jsonStrAt"] = func(ax, ix, namex interface{}) interface{} {
		value, have := asHandleArray(ax).StringAt(int(asNumber(o, ix)), asString(o, namex))
		return map[string]interface{}{
			"ok":    have,
			"value": value,
		}
	}

	env["jsonDump"] = func(x interface{}) interface{} {
		switch vv := export(x).(type) {
		case *dom.Handle:
			vv.Dump()
		case *dom.HandleArray:
			vv.Dump()
		}
		return x
	}
}
