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

// Package represent formats predictor output into the log line shape the
// original system emitted, evaluates the single-component anomaly rule
// against a running last-observed target, and optionally forwards the
// line to a chat-completion endpoint for an out-of-band interpretation.
package represent

import (
	"fmt"
	"strings"

	"github.com/etalazz/netlogger/internal/model"
)

// anomalyThreshold is the raw-units first-component prediction/target gap
// that trips the anomaly rule.
const anomalyThreshold = 1e5

func formatPredLine(pred model.Prediction) string {
	var b strings.Builder
	b.WriteString("pred")
	for _, v := range pred.Current {
		fmt.Fprintf(&b, ",%.6f", v)
	}
	fmt.Fprintf(&b, ",cost,%.6f", pred.Cost)
	return b.String()
}

func formatPredPrevLine(pred model.Prediction) string {
	var b strings.Builder
	b.WriteString("pred_prev,pred")
	for _, v := range pred.PrevPrediction {
		fmt.Fprintf(&b, ",%.6f", v)
	}
	b.WriteString(",target")
	for _, v := range pred.Target {
		fmt.Fprintf(&b, ",%.6f", v)
	}
	fmt.Fprintf(&b, ",cost,%.6f", pred.Cost)
	return b.String()
}
