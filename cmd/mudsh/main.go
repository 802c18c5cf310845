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

// mudsh is a little shell for talking to game servers.
//
// Ops arrive as JSON lines on stdin and/or a TCP port, and results go
// back the same way.  See shell.Op for the protocol.
//
// Example session:
//
//   {"connect":{"address":"localhost:4000"}}
//   {"send":{"id":"SOMEID","text":"look"}}
//   {"recv":{"id":"SOMEID"}}
//   {"eval":{"source":"return 1+2;"}}
//
package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"

	"github.com/castlelore/mudlink/history"
	"github.com/castlelore/mudlink/script"
	"github.com/castlelore/mudlink/shell"
	"github.com/castlelore/mudlink/tools"
)

func main() {

	var (
		configFile    = flag.String("c", "", "optional YAML config file")
		historyFile   = flag.String("d", "", "transcript database filename ('' to disable)")
		libDir        = flag.String("l", ".", "directory for file: script libraries")
		tcpPort       = flag.String("t", "", "port for TCP op listener ('' to disable)")
		listenOnStdin = flag.Bool("I", true, "listen for ops on stdin")
		testingFns    = flag.Bool("x", false, "enable script sleep and exit functions")

		nodesHTML = flag.String("nodes-html", "", "write the node catalog as HTML to this file and exit")
	)

	flag.Parse()

	if *nodesHTML != "" {
		f, err := os.Create(*nodesHTML)
		if err != nil {
			log.Fatal(err)
		}
		if err = tools.RenderNodesHTMLPage(script.Catalog(), f); err != nil {
			log.Fatal(err)
		}
		if err = f.Close(); err != nil {
			log.Fatal(err)
		}
		return
	}

	conf := &Config{}
	if *configFile != "" {
		var err error
		if conf, err = LoadConfig(*configFile); err != nil {
			log.Fatal(err)
		}
	}

	// Explicit flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "d":
			conf.HistoryFile = *historyFile
		case "l":
			conf.LibDir = *libDir
		case "t":
			conf.TCPPort = *tcpPort
		case "x":
			conf.Testing = *testingFns
		}
	})
	if conf.LibDir == "" {
		conf.LibDir = *libDir
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := shell.NewService()

	r := script.NewRuntime()
	r.Testing = conf.Testing
	r.LibraryProvider = script.MakeFileLibraryProvider(conf.LibDir)
	s.Runtime = r

	if conf.HistoryFile != "" {
		h, err := history.NewStore(conf.HistoryFile)
		if err != nil {
			log.Fatal(err)
		}
		if err = h.Open(); err != nil {
			log.Fatal(err)
		}
		defer h.Close()
		s.History = h
	}
	defer s.CloseAll()

	ctl := make(chan bool)

	if *listenOnStdin {
		go func() {
			if err := s.Listener(ctx, bufio.NewReader(os.Stdin), os.Stdout, ctl); err != nil {
				log.Printf("stdin listener error %s", err)
			}
			ctl <- true
		}()
	}

	if conf.TCPPort != "" {
		go func() {
			if err := s.TCPService(ctx, conf.TCPPort); err != nil {
				log.Printf("TCP listener error %s", err)
			}
			ctl <- true
		}()
	}

	if !*listenOnStdin && conf.TCPPort == "" {
		log.Fatal("nothing to do (no -I and no -t)")
	}

	<-ctl
}
