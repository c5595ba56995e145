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

package mirror

import "github.com/etalazz/netlogger/internal/obs"

// New selects the Redis-backed mirror when addr is non-empty, otherwise
// the logging stand-in. Mirroring is always optional: callers never need
// to special-case a nil Publisher.
func New(addr string, log *obs.Logger) Publisher {
	if addr == "" {
		return LoggingMirror{Log: log}
	}
	return NewRedisMirror(addr)
}
