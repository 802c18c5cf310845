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

// Package tools renders reference documentation for the script node
// catalog.
package tools

import (
	"fmt"
	"io"

	"github.com/castlelore/mudlink/script"

	md "github.com/russross/blackfriday/v2"
)

// RenderNodesHTML writes an HTML table documenting the given nodes.
//
// Node docs are Markdown.
func RenderNodesHTML(nodes []script.Node, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	f(`<div class="nodes"><table>`)

	for _, node := range nodes {
		f(`<tr class="node"><td><span id="%s" class="nodeName">%s</span></td><td>`, node.Name, node.Name)
		if node.Sig != "" {
			f(`<div class="nodeSig"><code>%s</code></div>`, node.Sig)
		}
		if node.Doc != "" {
			f(`<div class="nodeDoc doc">%s</div>`, md.Run([]byte(node.Doc)))
		}
		f(`</td></tr>`)
	}

	f(`</table></div>`)

	return nil
}

// RenderNodesHTMLPage wraps RenderNodesHTML in a minimal standalone
// page.
func RenderNodesHTMLPage(nodes []script.Node, out io.Writer) error {
	fmt.Fprintf(out, `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>mudlink nodes</title></head>
<body>
<h1>mudlink nodes</h1>
`)
	if err := RenderNodesHTML(nodes, out); err != nil {
		return err
	}
	fmt.Fprintf(out, "</body>\n</html>\n")
	return nil
}
