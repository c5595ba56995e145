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

package mlp

import "math/rand"

// NewSigmoid builds the non-canonical sigmoid-activation variant found
// alongside the linear net in the merged revisions of the original
// receiver's module2. It is never selected implicitly: a caller must ask
// for it (the predictor does so only behind an explicit -arch=sigmoid
// flag). Hidden layers use sigmoid activations; the output layer stays
// linear so denormalized predictions are not squashed into (0, Scale_i).
func NewSigmoid(hidden []int, lr float64, rng *rand.Rand) *Network {
	sizes := append([]int{}, hidden...)
	sizes = append([]int{6}, append(sizes, 6)...)
	n := &Network{LR: lr, ClipWeightDelta: 0.1, ClipDelta: 100}
	for l := 0; l+1 < len(sizes); l++ {
		act := ActivationSigmoid
		if l == len(sizes)-2 {
			act = ActivationLinear
		}
		n.Layers = append(n.Layers, newLayer(sizes[l], sizes[l+1], act, rng))
	}
	return n
}
