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
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/dop251/goja"
	"golang.org/x/net/publicsuffix"
)

// Jar is a cookie jar that also remembers the cookies it has seen,
// which lets a scripted login flow inspect them.
type Jar struct {
	*cookiejar.Jar
	Kookies []*http.Cookie `json:"cookies"`
}

func NewJar() (*Jar, error) {
	cookieJar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	return &Jar{Jar: cookieJar}, nil
}

func (j *Jar) AddCookies(cs []*http.Cookie) {
	if j.Kookies == nil {
		j.Kookies = make([]*http.Cookie, 0, 2*len(cs))
	}
	j.Kookies = append(j.Kookies, cs...)
}

// HTTPRequest is a synchronous HTTP request made on behalf of a
// script (say for a webclient login flow).
type HTTPRequest struct {
	Method  string      `json:"method,omitempty"`
	URL     string      `json:"url"`
	Body    string      `json:"body,omitempty"`
	Headers http.Header `json:"headers,omitempty"`

	Debug bool `json:"debug,omitempty"`
}

type HTTPResponse struct {
	StatusCode int         `json:"statusCode"`
	Status     string      `json:"status"`
	Error      string      `json:"error,omitempty"`
	Headers    http.Header `json:"headers,omitempty"`
	Body       string      `json:"body,omitempty"`
}

func (r *HTTPRequest) logf(format string, args ...interface{}) {
	if r.Debug {
		log.Printf(format, args...)
	}
}

// Do makes the request.  The given jar (optional) carries cookies in
// and collects cookies out.
//
// http.Request doesn't itself support cookie jars; http.Client does.
// We don't want to make an http.Client per request, so we work the
// jar manually.
func (r *HTTPRequest) Do(ctx context.Context, jar *Jar) *HTTPResponse {
	result := &HTTPResponse{}

	u, err := url.Parse(r.URL)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	req := &http.Request{
		Method: r.Method,
		URL:    u,
		Header: r.Headers,
	}
	if req.Method == "" {
		req.Method = "GET"
	}

	if r.Body != "" {
		req.Body = ioutil.NopCloser(bytes.NewReader([]byte(r.Body)))
	}

	if jar != nil {
		if req.Header == nil {
			req.Header = make(http.Header)
		}
		for i, cookie := range jar.Cookies(u) {
			r.logf("script.http adding cookie %d: %#v", i, cookie)
			req.AddCookie(cookie)
		}
	}

	req = req.WithContext(ctx)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		r.logf("script.http Do error %v", err)
		result.Error = err.Error()
		return result
	}

	result.Headers = resp.Header
	result.Status = resp.Status
	result.StatusCode = resp.StatusCode

	body, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		r.logf("script.http ReadAll error %v", err)
		result.Error = err.Error()
		return result
	}
	result.Body = string(body)

	if jar != nil {
		jar.SetCookies(u, resp.Cookies())
		jar.AddCookies(resp.Cookies())
	}

	return result
}

// httpNode backs the script function http(req).
//
// The request is a map with "url" and optional "method", "body", and
// "headers".  The response is a map with "statusCode", "status",
// "body", "headers", and (on failure) "error".  A jar is made per
// call, so cookies survive redirects but not calls.
func httpNode(ctx context.Context, o *goja.Runtime, x goja.Value) interface{} {
	v, err := canonicalize(x.Export())
	if err != nil {
		protest(o, err.Error())
	}

	js, err := json.Marshal(v)
	if err != nil {
		protest(o, err.Error())
	}

	var req HTTPRequest
	if err := json.Unmarshal(js, &req); err != nil {
		protest(o, err.Error())
	}

	jar, err := NewJar()
	if err != nil {
		protest(o, err.Error())
	}

	resp := req.Do(ctx, jar)

	y, err := canonicalize(resp)
	if err != nil {
		protest(o, err.Error())
	}

	return y
}
