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

// Package script hosts game-server links and JSON handles as callable
// nodes in an embedded ECMAScript runtime.
//
// The runtime is Goja, a Go implementation of ECMAScript 5.1+.  See
// https://github.com/dop251/goja.
package script

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/castlelore/mudlink/util"

	"github.com/dop251/goja"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)

	// IgnoreExit will prevent the script function "exit" from
	// terminating the process.  Being able to halt the process
	// from a script is useful for some tests and utilities.
	IgnoreExit = false
)

// Runtime compiles and executes ECMAScript source with the node
// bindings installed.
type Runtime struct {

	// Testing is used to expose or hide some runtime
	// capabilities (sleep, exit).
	Testing bool

	// LibraryProvider is a pluggable library provider, which can
	// be used instead of the standard behavior, which uses
	// DefaultLibraryProvider when this LibraryProvider is nil.
	LibraryProvider func(ctx context.Context, r *Runtime, libraryName string) (string, error)
}

// NewRuntime makes a new Runtime.
func NewRuntime() *Runtime {
	return &Runtime{}
}

// Execution is what a script run produces: the bindings the script
// returned (if any) and the messages it emitted via _.out().
type Execution struct {
	Bindings map[string]interface{} `json:"bindings,omitempty"`
	Emitted  []interface{}          `json:"emitted,omitempty"`
}

func newExecution() *Execution {
	return &Execution{
		Emitted: make([]interface{}, 0, 4),
	}
}

// ProvideLibrary resolves the library name into library source.
func (r *Runtime) ProvideLibrary(ctx context.Context, name string) (string, error) {
	if r.LibraryProvider != nil {
		return r.LibraryProvider(ctx, r, name)
	}
	return DefaultLibraryProvider(ctx, r, name)
}

var DefaultLibraryProvider = MakeFileLibraryProvider(".")

// MakeFileLibraryProvider supports (barely) library names that are
// URLs with protocols of "file", "http", and "https".  There
// currently is no additional control when using HTTP/HTTPS.
func MakeFileLibraryProvider(dir string) func(context.Context, *Runtime, string) (string, error) {
	return func(ctx context.Context, r *Runtime, name string) (string, error) {
		parts := strings.SplitN(name, "://", 2)
		if 2 != len(parts) {
			return "", fmt.Errorf("bad link '%s'", name)
		}
		switch parts[0] {
		case "file":
			filename := parts[1]
			bs, err := ioutil.ReadFile(dir + "/" + filename)
			if err != nil {
				return "", err
			}
			return string(bs), nil
		case "http", "https":
			req, err := http.NewRequest("GET", name, nil)
			if err != nil {
				return "", err
			}
			req = req.WithContext(ctx)
			client := http.Client{}
			resp, err := client.Do(req)
			if err != nil {
				return "", err
			}
			switch resp.StatusCode {
			case http.StatusOK:
				bs, err := ioutil.ReadAll(resp.Body)
				if err != nil {
					return "", err
				}
				return string(bs), nil
			default:
				return "", fmt.Errorf("library fetch status %s %d",
					resp.Status, resp.StatusCode)
			}
		default:
			return "", fmt.Errorf("unknown protocol '%s'", parts[0])
		}
	}
}

// MakeMapLibraryProvider serves libraries from the given map of name
// to source.
func MakeMapLibraryProvider(srcs map[string]string) func(context.Context, *Runtime, string) (string, error) {
	return func(ctx context.Context, r *Runtime, name string) (string, error) {
		src, have := srcs[name]
		if !have {
			return "", fmt.Errorf("undefined library '%s'", name)
		}
		return src, nil
	}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

// parseSource looks into the given map to try to find "requires" and
// "code" properties.
func parseSource(vv map[string]interface{}) (code string, libs []string, err error) {
	x, have := vv["code"]
	if !have {
		code = ""
	}
	if s, is := x.(string); is {
		code = s
	} else {
		err = errors.New("bad script code")
		return
	}

	x, have = vv["requires"]
	switch vv := x.(type) {
	case string:
		libs = []string{vv}
	case []string:
		libs = vv
	case []interface{}:
		libs = make([]string, 0, len(vv))
		for _, x := range vv {
			switch vv := x.(type) {
			case string:
				libs = append(libs, vv)
			default:
				err = errors.New("bad library")
				return
			}
		}
	}

	return
}

// AsSource accepts either a plain code string or a map with "code"
// and optional "requires" properties.
func AsSource(src interface{}) (code string, libs []string, err error) {
	switch vv := src.(type) {
	case string:
		code = vv
		return
	case map[interface{}]interface{}:
		m := make(map[string]interface{})
		for k, v := range vv {
			str, ok := k.(string)
			if !ok {
				err = fmt.Errorf("bad src key (%T)", k)
				return
			}
			m[str] = v
		}
		return parseSource(m)
	case map[string]interface{}:
		return parseSource(vv)
	default:
		err = fmt.Errorf("bad script source (%T)", src)
		return
	}
}

// Compile resolves any required libraries and calls goja.Compile.
//
// This method can block if the runtime's LibraryProvider blocks in
// order to obtain external libraries.
func (r *Runtime) Compile(ctx context.Context, src interface{}) (*goja.Program, error) {
	code, libs, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	code = wrapSrc(code)

	var libsSrc string
	for _, lib := range libs {
		libSrc, err := r.ProvideLibrary(ctx, lib)
		if err != nil {
			return nil, err
		}
		libsSrc += libSrc + "\n"
	}

	code = libsSrc + code

	obj, err := goja.Compile("", code, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}

	return obj, nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

// Exec compiles (if necessary) and runs the given script source.
//
// The following properties are available from the runtime at _.
//
// These things are most important:
//
//	bindings: the map of the given bindings.
//	out(obj): Add the given object as a message to emit.
//
// The socket and JSON nodes are documented in the Catalog.
//
// Some useful utilities:
//
//	gensym(): generate a random string.
//	esc(s): URL query-escape the given string.
//	cronNext(expr): the next time matching the cron expression.
//	http(req): synchronous cookie-jar HTTP request.
//	log(x): log the given value as JSON.
//
// For testing only (requires the Testing flag):
//
//	sleep(ms): sleep for the given number of milliseconds.
//	exit(code, msg): Terminate the process after printing the
//	  given message.
func (r *Runtime) Exec(ctx context.Context, bindings map[string]interface{}, props map[string]interface{}, src interface{}, compiled *goja.Program) (*Execution, error) {
	exe := newExecution()

	if compiled == nil {
		var err error
		if compiled, err = r.Compile(ctx, src); err != nil {
			return exe, err
		}
	}

	env := map[string]interface{}{
		"ctx": ctx,
	}
	if props == nil {
		env["props"] = map[string]interface{}{}
	} else {
		env["props"] = props
	}

	if bindings != nil {
		env["bindings"] = bindings
	}

	o := goja.New()

	o.Set("_", env)

	if r.Testing {
		o.Set("sleep", func(ms int) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		})
	}

	env["gensym"] = func() interface{} {
		return util.Gensym(32)
	}

	env["cronNext"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		cronExpr, is := x.(string)
		if !is {
			protest(o, "not a string")
		}

		c, err := cronexpr.Parse(cronExpr)
		if err != nil {
			protest(o, err.Error())
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	}

	env["esc"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		s, is := x.(string)
		if !is {
			panic("not a string")
		}
		return url.QueryEscape(s)
	}

	if r.Testing {
		env["exit"] = func(n interface{}, msg interface{}) interface{} {
			switch vv := msg.(type) {
			case goja.Value:
				msg = vv.Export()
			}
			s, is := msg.(string)
			if !is {
				panic("not a string")
			}
			switch vv := n.(type) {
			case goja.Value:
				n = vv.Export()
			}
			ec, is := n.(int64)
			if !is {
				panic(fmt.Sprintf("a %T is not an %T", n, ec))
			}
			log.Println(s)
			if !IgnoreExit {
				os.Exit(int(ec))
			}
			return msg
		}
	}

	// "out" adds the given message to the list of messages to
	// emit.
	env["out"] = func(x interface{}) interface{} {
		var err error

		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}

		if x, err = canonicalize(x); err != nil {
			// Will end up as a Javascript exception.
			panic(err)
		}

		exe.Emitted = append(exe.Emitted, x)

		return x
	}

	env["log"] = func(x interface{}) interface{} {
		switch vv := x.(type) {
		case goja.Value:
			x = vv.Export()
		}
		js, err := json.Marshal(&x)
		if err != nil {
			log.Println("script.log (can't marshal: " + err.Error() + ")")
		} else {
			log.Println(string(js))
		}

		return x
	}

	env["http"] = func(x goja.Value) interface{} {
		return httpNode(ctx, o, x)
	}

	bindLinkNodes(ctx, o, env)
	bindDOMNodes(o, env)

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	ictx, cancel := context.WithCancel(ctx)
	go func() {
		<-ictx.Done()
		// If this Exec method calls cancel() after RunProgram
		// returns, then we'll never see this
		// InterruptedMessage, which is actually the behavior
		// we want.  In this case, we weren't actually
		// interrupted.
		o.Interrupt(InterruptedMessage)
	}()

	v, err := o.RunProgram(compiled)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return nil, Interrupted
		}
		return nil, err
	}

	x := v.Export()

	switch vv := x.(type) {
	case *goja.InterruptedError:
		return nil, vv
	case map[string]interface{}:
		exe.Bindings = vv
	case nil:
	default:
		return nil, fmt.Errorf("%#v (%T) isn't bindings", x, x)
	}

	return exe, nil
}

// canonicalize round-trips through JSON to get vanilla maps, slices,
// and float64s.
func canonicalize(x interface{}) (interface{}, error) {
	js, err := json.Marshal(&x)
	if err != nil {
		return nil, err
	}
	var y interface{}
	if err = json.Unmarshal(js, &y); err != nil {
		return nil, err
	}
	return y, nil
}
