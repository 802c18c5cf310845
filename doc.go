// Package mudlink provides text-oriented game-server links and a
// mutable JSON document surface for an embedded ECMAScript layer.
//
// The connection code is in package 'link', the JSON handles are in
// 'dom', the scripting runtime is in 'script', and a command-line
// shell is in 'cmd/mudsh'.
package mudlink
