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

// Node describes one callable node in the script environment at _.
type Node struct {
	Name string `json:"name"`

	// Sig is an informal signature.
	Sig string `json:"sig"`

	// Doc is Markdown.
	Doc string `json:"doc"`
}

// Catalog lists the nodes that Exec installs, for reference
// documentation.
func Catalog() []Node {
	return []Node{
		{"connect", "connect(address) -> {ok, conn}",
			"Dial a server.  `address` is `host:port` (TCP) or a `ws://`, `wss://`, or `mqtt://` URL, or a map with `ip` and `port`.  One-shot: no retry, no reconnection."},
		{"send", "send(conn, text) -> ok",
			"Write one chunk of text.  No framing is added."},
		{"recv", "recv(conn) -> {ok, text}",
			"Drain everything the peer has delivered and return the **last** chunk.  `ok` is false when nothing is pending."},
		{"hasPending", "hasPending(conn) -> bool",
			"Poll for delivered data without consuming it."},
		{"close", "close(conn) -> ok",
			"Close the connection.  A second close reports false."},

		{"jsonObj", "jsonObj() -> handle",
			"Make an empty JSON object handle."},
		{"jsonArr", "jsonArr() -> handle",
			"Make an empty JSON array handle."},
		{"jsonSet", "jsonSet(handle, name, value) -> handle",
			"Set a field.  `value` may be a string, a number, an object handle, or an array handle.  Embedded handles share structure."},
		{"jsonGetString", "jsonGetString(handle, name) -> {ok, value}",
			"Get a string field."},
		{"jsonGetNumber", "jsonGetNumber(handle, name) -> {ok, value}",
			"Get a numeric field."},
		{"jsonGetObject", "jsonGetObject(handle, name) -> {ok, obj}",
			"Get an embedded object."},
		{"jsonAppend", "jsonAppend(arr, handle) -> arr",
			"Append an object to an array."},
		{"jsonAppendArray", "jsonAppendArray(arr, name, inner) -> arr",
			"Wrap `inner` in a one-field object named `name` and append it."},
		{"jsonSerialize", "jsonSerialize(handleOrArr) -> {ok, text}",
			"Render a handle as a JSON string."},
		{"jsonParse", "jsonParse(handle, text) -> ok",
			"Parse a JSON object into an existing handle, replacing its tree."},
		{"jsonParseMany", "jsonParseMany(text) -> {ok, arr, count}",
			"Parse a JSON array."},
		{"jsonKeys", "jsonKeys(handle) -> {name: kind}",
			"Field names and their kinds (`none`, `null`, `string`, `number`, `boolean`, `array`, `object`)."},
		{"jsonLen", "jsonLen(handleOrArr) -> n",
			"Number of fields or elements."},
		{"jsonKindAt", "jsonKindAt(arr, i) -> kind",
			"Kind of the element at index `i` (`none` when out of range)."},
		{"jsonObjAt", "jsonObjAt(arr, i) -> {ok, obj}",
			"Object at index `i`."},
		{"jsonStrAt", "jsonStrAt(arr, i, name) -> {ok, value}",
			"String field `name` of the object at index `i`."},
		{"jsonDump", "jsonDump(handleOrArr) -> handleOrArr",
			"Log the tree recursively.  For debugging."},

		{"out", "out(msg) -> msg",
			"Add the given object as a message to emit."},
		{"log", "log(x) -> x",
			"Log the given value as JSON."},
		{"gensym", "gensym() -> string",
			"Generate a random string."},
		{"esc", "esc(s) -> string",
			"URL query-escape the given string."},
		{"cronNext", "cronNext(expr) -> timestamp",
			"Next time matching the given cron expression, as RFC 3339."},
		{"http", "http(req) -> resp",
			"Synchronous cookie-jar HTTP request.  `req` has `url` and optional `method`, `body`, `headers`."},
	}
}
