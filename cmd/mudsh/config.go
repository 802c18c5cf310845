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

package main

import (
	"io/ioutil"

	yaml "gopkg.in/yaml.v2"
)

// Config is the optional YAML configuration file.
//
// Command-line flags that are given explicitly win over these values.
type Config struct {
	// TCPPort is the port for a TCP op listener (":9000").
	// Empty disables the listener.
	TCPPort string `yaml:"tcpPort"`

	// HistoryFile is the transcript storage filename.  Empty
	// disables transcripts.
	HistoryFile string `yaml:"historyFile"`

	// LibDir is the directory for file:// script libraries.
	LibDir string `yaml:"libDir"`

	// Testing enables the script sleep and exit functions.
	Testing bool `yaml:"testing"`
}

func LoadConfig(filename string) (*Config, error) {
	bs, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var conf Config
	if err := yaml.UnmarshalStrict(bs, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}
