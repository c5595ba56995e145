// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import "flag"

// Sender holds every resolved flag for cmd/netlogger-sender, matching the
// CLI contract spec.md §4.8/§6 names for the replay collaborator.
type Sender struct {
	Path   string
	Target string

	Accel        float64
	Once         bool
	AppendSource string
	JSONPath     string
	Rate         float64
}

// ParseSender parses args (normally os.Args[1:]). -a/--accel, -1/--once,
// -s/--append-source and -j/--json alias long and short flag spellings
// onto the same variable, the one departure from the teacher's
// single-spelling flag style, required by the named CLI contract.
func ParseSender(args []string) (Sender, error) {
	fs := flag.NewFlagSet("netlogger-sender", flag.ContinueOnError)

	var s Sender
	fs.Float64Var(&s.Accel, "accel", 50.0, "Timestamp-delta playback acceleration factor")
	fs.Float64Var(&s.Accel, "a", 50.0, "Shorthand for -accel")
	fs.BoolVar(&s.Once, "once", false, "Play the merged stream once instead of looping")
	fs.BoolVar(&s.Once, "1", false, "Shorthand for -once")
	fs.StringVar(&s.AppendSource, "append-source", "", "Tag appended to every payload naming its source")
	fs.StringVar(&s.AppendSource, "s", "", "Shorthand for -append-source")
	fs.StringVar(&s.JSONPath, "json", "", "Explicit path to a newline-delimited JSON file to replay")
	fs.StringVar(&s.JSONPath, "j", "", "Shorthand for -json")
	fs.Float64Var(&s.Rate, "rate", 10000, "Fixed packets/second pace used in JSON mode")
	fs.StringVar(&s.Target, "target", "127.0.0.1:9000", "UDP address of the receiver")

	if err := fs.Parse(args); err != nil {
		return Sender{}, err
	}

	s.Path = "data/"
	if rest := fs.Args(); len(rest) > 0 {
		s.Path = rest[0]
	}
	return s, nil
}
