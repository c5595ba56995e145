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

// Command netlogger-sender is the replay collaborator: it reads
// timestamped CSV or newline-delimited JSON telemetry files and resends
// them as UDP datagrams to a netlogger-receiver instance, in ascending
// timestamp order across every merged source file.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/etalazz/netlogger/internal/config"
	"github.com/etalazz/netlogger/internal/replay"
)

func main() {
	cfg, err := config.ParseSender(os.Args[1:])
	if err != nil {
		log.Fatalf("netlogger-sender: %v", err)
	}

	records, paceRate, err := resolveRecords(cfg)
	if err != nil {
		log.Fatalf("netlogger-sender: %v", err)
	}
	if len(records) == 0 {
		log.Fatalf("netlogger-sender: no records found to replay")
	}

	sender, err := replay.DialUDPSender(cfg.Target)
	if err != nil {
		log.Fatalf("netlogger-sender: %v", err)
	}
	defer sender.Close()

	accel := cfg.Accel
	rate := 0.0
	if paceRate {
		rate = cfg.Rate
		accel = 0
	}

	player := &replay.Player{
		Sender:       sender,
		Accel:        accel,
		Rate:         rate,
		Once:         cfg.Once,
		AppendSource: cfg.AppendSource,
	}

	fmt.Printf("netlogger-sender: replaying %d records to %s (once=%v)\n", len(records), cfg.Target, cfg.Once)
	if err := player.Play(records); err != nil {
		log.Fatalf("netlogger-sender: %v", err)
	}
}

// resolveRecords implements the path/-json resolution contract from
// spec.md §6: an explicit -json file always wins and paces by fixed rate;
// otherwise a directory is scanned for merged.jsonl first, then for every
// *.csv/*.jsonl file, merged ascending and paced by accel. The bool
// return reports whether fixed-rate (JSON) pacing applies.
func resolveRecords(cfg config.Sender) ([]replay.Record, bool, error) {
	if cfg.JSONPath != "" {
		records, err := replay.LoadJSONL(cfg.JSONPath)
		return records, true, err
	}

	info, err := os.Stat(cfg.Path)
	if err != nil {
		return nil, false, fmt.Errorf("stat %s: %w", cfg.Path, err)
	}
	if !info.IsDir() {
		return loadSingleFile(cfg.Path)
	}

	merged := filepath.Join(cfg.Path, "merged.jsonl")
	if _, err := os.Stat(merged); err == nil {
		records, err := replay.LoadJSONL(merged)
		return records, true, err
	}

	var sources [][]replay.Record
	csvPaths, _ := filepath.Glob(filepath.Join(cfg.Path, "*.csv"))
	for _, p := range csvPaths {
		records, err := replay.LoadCSV(p)
		if err != nil {
			return nil, false, err
		}
		sources = append(sources, records)
	}
	jsonlPaths, _ := filepath.Glob(filepath.Join(cfg.Path, "*.jsonl"))
	for _, p := range jsonlPaths {
		records, err := replay.LoadJSONL(p)
		if err != nil {
			return nil, false, err
		}
		sources = append(sources, records)
	}
	return replay.MergeAscending(sources...), false, nil
}

func loadSingleFile(path string) ([]replay.Record, bool, error) {
	switch filepath.Ext(path) {
	case ".jsonl", ".json":
		records, err := replay.LoadJSONL(path)
		return records, true, err
	default:
		records, err := replay.LoadCSV(path)
		return records, false, err
	}
}
