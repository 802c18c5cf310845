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
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestExecSimple(t *testing.T) {
	code := `return {likes:"chips"};`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	r := NewRuntime()
	r.Testing = true
	compiled, err := r.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	exe, err := r.Exec(ctx, nil, nil, code, compiled)
	if err != nil {
		t.Fatal(err)
	}
	x, have := exe.Bindings["likes"]
	if !have {
		t.Fatalf("nothing liked in %#v", exe.Bindings)
	}
	s, is := x.(string)
	if !is {
		t.Fatalf("liked %#v is a %T, not a %T", x, x, s)
	}
	if s != "chips" {
		t.Fatalf("didn't want \"%s\"", s)
	}
}

func TestExecProps(t *testing.T) {
	code := `return {connId:_.props.cid};`
	props := map[string]interface{}{
		"cid": "simpsons",
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	r := NewRuntime()
	exe, err := r.Exec(ctx, nil, props, code, nil)
	if err != nil {
		t.Fatal(err)
	}
	if exe.Bindings["connId"] != "simpsons" {
		t.Fatalf("connId: %#v", exe.Bindings)
	}
}

func TestExecEmitted(t *testing.T) {
	code := `_.out({said:"hello"}); return null;`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	r := NewRuntime()
	exe, err := r.Exec(ctx, nil, nil, code, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(exe.Emitted) != 1 {
		t.Fatalf("emitted %#v", exe.Emitted)
	}
	m, is := exe.Emitted[0].(map[string]interface{})
	if !is || m["said"] != "hello" {
		t.Fatalf("emitted %#v", exe.Emitted)
	}
}

func TestExecTimeout(t *testing.T) {
	code := `for (;;) { sleep(10); } return null;`

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := NewRuntime()
	r.Testing = true
	compiled, err := r.Compile(ctx, code)
	if err != nil {
		t.Fatal(err)
	}

	if _, err = r.Exec(ctx, nil, nil, code, compiled); err == nil {
		t.Fatal("didn't timeout")
	} else if err.Error() != InterruptedMessage {
		t.Fatalf("surprised by \"%s\"", err)
	}
}

func TestExecError(t *testing.T) {
	code := `likes + tacos; return null;`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	r := NewRuntime()
	if _, err := r.Exec(ctx, nil, nil, code, nil); err == nil {
		t.Fatal("didn't protest")
	}
}

func TestExecRequires(t *testing.T) {
	r := NewRuntime()
	r.LibraryProvider = MakeMapLibraryProvider(map[string]string{
		"greetings": `function greet(who) { return "hello, " + who; }`,
	})

	src := map[string]interface{}{
		"requires": "greetings",
		"code":     `return {greeting: greet("moe")};`,
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	exe, err := r.Exec(ctx, nil, nil, src, nil)
	if err != nil {
		t.Fatal(err)
	}
	if exe.Bindings["greeting"] != "hello, moe" {
		t.Fatalf("greeting: %#v", exe.Bindings)
	}
}

func TestJSONNodes(t *testing.T) {
	code := `
var h = _.jsonObj();
_.jsonSet(h, "cmd", "look");
_.jsonSet(h, "n", 3);

var args = _.jsonObj();
_.jsonSet(args, "target", "tavern");
_.jsonSet(h, "args", args);

// Embedded handles share structure.
_.jsonSet(args, "late", "write");

var s = _.jsonSerialize(h);
if (!s.ok) { throw "serialize failed"; }

var back = _.jsonObj();
if (!_.jsonParse(back, s.text)) { throw "parse failed"; }

var cmd = _.jsonGetString(back, "cmd");
var n = _.jsonGetNumber(back, "n");
var sub = _.jsonGetObject(back, "args");
var late = _.jsonGetString(sub.obj, "late");

return {
  cmd: cmd.value,
  n: n.value,
  late: late.value,
  kinds: _.jsonKeys(back),
  len: _.jsonLen(back)
};
`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r := NewRuntime()
	exe, err := r.Exec(ctx, nil, nil, code, nil)
	if err != nil {
		t.Fatal(err)
	}

	bs := exe.Bindings
	if bs["cmd"] != "look" {
		t.Fatalf("cmd: %#v", bs)
	}
	if bs["n"] != float64(3) {
		t.Fatalf("n: %#v", bs["n"])
	}
	if bs["late"] != "write" {
		t.Fatalf("late: %#v", bs)
	}

	kinds, is := bs["kinds"].(map[string]interface{})
	if !is {
		t.Fatalf("kinds: %#v", bs["kinds"])
	}
	want := map[string]string{"cmd": "string", "n": "number", "args": "object"}
	for name, kind := range want {
		if kinds[name] != kind {
			t.Fatalf("kind of %q: %v", name, kinds[name])
		}
	}
}

func TestJSONArrayNodes(t *testing.T) {
	code := `
var parsed = _.jsonParseMany('[{"name":"moe"},{"name":"barney"},42]');
if (!parsed.ok) { throw "parse failed"; }

var a = parsed.arr;

var built = _.jsonArr();
var h = _.jsonObj();
_.jsonSet(h, "name", "carl");
_.jsonAppend(built, h);

return {
  count: parsed.count,
  first: _.jsonStrAt(a, 0, "name").value,
  kind2: _.jsonKindAt(a, 2),
  kind9: _.jsonKindAt(a, 9),
  builtLen: _.jsonLen(built),
  builtSer: _.jsonSerialize(built).text
};
`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r := NewRuntime()
	exe, err := r.Exec(ctx, nil, nil, code, nil)
	if err != nil {
		t.Fatal(err)
	}

	bs := exe.Bindings
	if bs["count"] != int64(3) && bs["count"] != float64(3) {
		t.Fatalf("count: %#v (%T)", bs["count"], bs["count"])
	}
	if bs["first"] != "moe" {
		t.Fatalf("first: %#v", bs)
	}
	if bs["kind2"] != "number" {
		t.Fatalf("kind2: %#v", bs)
	}
	if bs["kind9"] != "none" {
		t.Fatalf("kind9: %#v", bs)
	}
	if bs["builtSer"] != `[{"name":"carl"}]` {
		t.Fatalf("builtSer: %#v", bs["builtSer"])
	}
}

func TestLinkNodes(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()

	go func() {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 1024)
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		conn.Write([]byte("heard " + string(buf[:n])))
		time.Sleep(5 * time.Second)
	}()

	code := fmt.Sprintf(`
var c = _.connect(%q);
if (!c.ok) { throw "connect failed"; }

if (!_.send(c.conn, "look")) { throw "send failed"; }

var tries = 0;
while (!_.hasPending(c.conn) && tries < 500) { sleep(10); tries++; }

var got = _.recv(c.conn);
var empty = _.recv(c.conn);
var closed = _.close(c.conn);
var again = _.close(c.conn);

return {got: got, empty: empty.ok, closed: closed, again: again};
`, l.Addr().String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	r := NewRuntime()
	r.Testing = true
	exe, err := r.Exec(ctx, nil, nil, code, nil)
	if err != nil {
		t.Fatal(err)
	}

	bs := exe.Bindings
	got, is := bs["got"].(map[string]interface{})
	if !is || got["ok"] != true || got["text"] != "heard look" {
		t.Fatalf("got: %#v", bs["got"])
	}
	if bs["empty"] != false {
		t.Fatalf("empty: %#v", bs["empty"])
	}
	if bs["closed"] != true || bs["again"] != false {
		t.Fatalf("closed: %#v again: %#v", bs["closed"], bs["again"])
	}
}

func TestConnectFailure(t *testing.T) {
	// Grab a port and close it so nobody's listening there.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()

	code := fmt.Sprintf(`return {c: _.connect(%q)};`, addr)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r := NewRuntime()
	exe, err := r.Exec(ctx, nil, nil, code, nil)
	if err != nil {
		t.Fatal(err)
	}
	c, is := exe.Bindings["c"].(map[string]interface{})
	if !is || c["ok"] != false {
		t.Fatalf("c: %#v", exe.Bindings["c"])
	}
}

func TestHTTPNode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintf(w, `{"room":"tavern"}`)
	}))
	defer server.Close()

	code := fmt.Sprintf(`
var resp = _.http({url: %q});
return {status: resp.statusCode, body: resp.body};
`, server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r := NewRuntime()
	exe, err := r.Exec(ctx, nil, nil, code, nil)
	if err != nil {
		t.Fatal(err)
	}
	if exe.Bindings["status"] != float64(200) && exe.Bindings["status"] != int64(200) {
		t.Fatalf("status: %#v (%T)", exe.Bindings["status"], exe.Bindings["status"])
	}
	body, _ := exe.Bindings["body"].(string)
	if !strings.Contains(body, "tavern") {
		t.Fatalf("body: %q", body)
	}
}

func TestCronNext(t *testing.T) {
	code := `return {next: _.cronNext("* * * * *")};`

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	r := NewRuntime()
	exe, err := r.Exec(ctx, nil, nil, code, nil)
	if err != nil {
		t.Fatal(err)
	}
	next, is := exe.Bindings["next"].(string)
	if !is {
		t.Fatalf("next: %#v", exe.Bindings["next"])
	}
	if _, err := time.Parse(time.RFC3339Nano, next); err != nil {
		t.Fatal(err)
	}
}

func TestCatalogCoversEnv(t *testing.T) {
	names := make(map[string]bool)
	for _, node := range Catalog() {
		if names[node.Name] {
			t.Fatalf("duplicate node %q", node.Name)
		}
		names[node.Name] = true
	}
	for _, required := range []string{
		"connect", "send", "recv", "hasPending", "close",
		"jsonObj", "jsonArr", "jsonSet", "jsonSerialize", "jsonParse",
		"out", "log", "gensym", "esc", "cronNext", "http",
	} {
		if !names[required] {
			t.Fatalf("catalog is missing %q", required)
		}
	}
}
