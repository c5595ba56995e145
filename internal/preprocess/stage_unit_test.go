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

package preprocess

import (
	"testing"

	"github.com/etalazz/netlogger/internal/model"
	"github.com/etalazz/netlogger/internal/obs"
	"github.com/etalazz/netlogger/internal/pipeline"
	"github.com/etalazz/netlogger/internal/stats"
)

type fakeHistory struct {
	appended []model.HistoryKey
}

func (f *fakeHistory) Append(k model.HistoryKey) error {
	f.appended = append(f.appended, k)
	return nil
}

func newTestStage() (*Stage, *fakeHistory) {
	hist := &fakeHistory{}
	s := &Stage{
		In:      pipeline.New[model.RawLine](),
		Out:     pipeline.New[model.ParsedRecord](),
		Errors:  pipeline.New[model.ErrorEvent](),
		History: hist,
		Stats:   stats.New(),
		Log:     obs.New(discard{}),
	}
	return s, hist
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestStage_JSONHappyPath(t *testing.T) {
	s, hist := newTestStage()
	payload := `{"timestamp":1700000000,"export_bytes":1234567,"export_flows":50,"export_packets":1000,"export_rtr":1.0,"export_rtt":2000,"export_srt":3000}`

	s.process(model.RawLine{Payload: payload})

	rec, ok := s.Out.TryPop()
	if !ok {
		t.Fatalf("expected a record on Out")
	}
	want := "1700000000000,1234567.000000,50.000000,1000.000000,1.000000,2000.000000,3000.000000"
	if rec.Line != want {
		t.Errorf("Line = %q, want %q", rec.Line, want)
	}
	if len(hist.appended) != 1 {
		t.Fatalf("history appended %d records, want 1", len(hist.appended))
	}
	if _, ok := s.Errors.TryPop(); ok {
		t.Errorf("unexpected error event for a well-formed JSON payload")
	}
}

func TestStage_LegacyCSV(t *testing.T) {
	s, hist := newTestStage()
	payload := "1700000000,1500,1500"

	s.process(model.RawLine{Payload: payload})

	rec, ok := s.Out.TryPop()
	if !ok {
		t.Fatalf("expected a record on Out")
	}
	if rec.Line != payload {
		t.Errorf("Line = %q, want forwarded verbatim %q", rec.Line, payload)
	}
	if len(hist.appended) != 1 {
		t.Fatalf("history appended %d records, want 1", len(hist.appended))
	}
	got := hist.appended[0]
	want := model.HistoryKey{TSMillis: 1700000000, In0: 0.75, In1: 0.75}
	if got != want {
		t.Errorf("history key = %+v, want %+v", got, want)
	}
}

func TestStage_MalformedLegacyRowRoutesToError(t *testing.T) {
	s, hist := newTestStage()
	payload := "1700000000,-5,10"

	s.process(model.RawLine{Payload: payload})

	if _, ok := s.Out.TryPop(); ok {
		t.Errorf("unexpected record on Out for a malformed row")
	}
	ev, ok := s.Errors.TryPop()
	if !ok {
		t.Fatalf("expected an error event")
	}
	if ev.Message != payload {
		t.Errorf("error event message = %q, want verbatim %q", ev.Message, payload)
	}
	if len(hist.appended) != 0 {
		t.Errorf("history should not be appended for a rejected row")
	}
}

func TestStage_EmptyJSONObjectRoutesToError(t *testing.T) {
	s, _ := newTestStage()
	s.process(model.RawLine{Payload: "{}"})

	if _, ok := s.Out.TryPop(); ok {
		t.Errorf("unexpected record on Out for an all-NaN datapoint")
	}
	if _, ok := s.Errors.TryPop(); !ok {
		t.Errorf("expected an error event for {}")
	}
}
