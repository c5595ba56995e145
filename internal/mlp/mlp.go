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

// Package mlp implements the small, fixed-schema online-trained multilayer
// perceptron at the heart of the predictor stage: forward pass, online
// stochastic backpropagation with mean-squared-error loss, and the
// normalization the network trains in.
//
// The canonical network (see NewLinear) has linear activations throughout
// and variable depth, matching the most general of the competing net
// shapes carried over merged revisions of the original receiver's module2.
// A second, explicitly opt-in variant with sigmoid activations is provided
// in sigmoid.go; it is never substituted for the canonical network
// silently.
package mlp

import (
	"math"
	"math/rand"
)

// Scale is the per-feature normalization vector: dividing a raw magnitude
// by Scale[i] maps it into the network's working domain. The same vector
// is used for both input normalization and output denormalization
// (self-predictive architecture).
var Scale = [6]float64{
	3.1075704787e7, 3.355433e2, 2.864212e4, 2.847470817e1,
	8.656777584e5, 4.7823377e6,
}

// Normalize divides each raw feature by its scale.
func Normalize(raw [6]float64) [6]float64 {
	var out [6]float64
	for i := range raw {
		out[i] = raw[i] / Scale[i]
	}
	return out
}

// Denormalize multiplies each network-domain value back by its scale.
func Denormalize(norm [6]float64) [6]float64 {
	var out [6]float64
	for i := range norm {
		out[i] = norm[i] * Scale[i]
	}
	return out
}

// Activation selects the per-layer nonlinearity. The canonical network
// uses ActivationLinear throughout.
type Activation int

const (
	ActivationLinear Activation = iota
	ActivationSigmoid
)

func (a Activation) apply(z float64) float64 {
	switch a {
	case ActivationSigmoid:
		return 1 / (1 + math.Exp(-z))
	default:
		return z
	}
}

// derivative returns dy/dz given the post-activation value y (not z), which
// is what backprop needs for both linear (constant 1) and sigmoid
// (y*(1-y)) activations.
func (a Activation) derivative(y float64) float64 {
	switch a {
	case ActivationSigmoid:
		return y * (1 - y)
	default:
		return 1
	}
}

// Layer is one fully connected layer expressed as a contiguous weight
// matrix (OutLen x InLen, row-major) and a bias vector, per the spec's
// "manual malloc'd neuron arrays → arenas or contiguous matrices" design
// note.
type Layer struct {
	InLen, OutLen int
	Weights       []float64 // row-major: Weights[j*InLen+i]
	Biases        []float64
	Act           Activation
}

func newLayer(inLen, outLen int, act Activation, rng *rand.Rand) Layer {
	l := Layer{InLen: inLen, OutLen: outLen, Act: act}
	l.Weights = make([]float64, outLen*inLen)
	l.Biases = make([]float64, outLen)
	for i := range l.Weights {
		l.Weights[i] = uniform(rng, -0.1, 0.1)
	}
	for i := range l.Biases {
		l.Biases[i] = uniform(rng, -0.1, 0.1)
	}
	return l
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func (l *Layer) weightAt(j, i int) float64 { return l.Weights[j*l.InLen+i] }

// forward computes this layer's post-activation output for the given
// input activation vector.
func (l *Layer) forward(input []float64) []float64 {
	out := make([]float64, l.OutLen)
	for j := 0; j < l.OutLen; j++ {
		sum := l.Biases[j]
		base := j * l.InLen
		for i := 0; i < l.InLen; i++ {
			sum += l.Weights[base+i] * input[i]
		}
		out[j] = l.Act.apply(sum)
	}
	return out
}

// Network is a variable-depth, fixed-input/output MLP trained by online
// one-sample SGD. Hidden layer count and sizes are configurable; the
// canonical configuration (NewLinear) is INPUT_SIZE -> 16 -> 32 -> 64 ->
// 32 -> OUTPUT_SIZE with linear activations and learning rate 0.1.
type Network struct {
	Layers []Layer
	LR     float64

	// ClipWeightDelta bounds the per-weight SGD step to [-ClipWeightDelta,
	// +ClipWeightDelta]; zero disables clipping.
	ClipWeightDelta float64
	// ClipDelta bounds per-neuron backprop deltas to [-ClipDelta, +ClipDelta];
	// zero disables clipping.
	ClipDelta float64
}

// DefaultHiddenSizes are the canonical hidden layer widths.
var DefaultHiddenSizes = []int{16, 32, 64, 32}

// DefaultLearningRate is the canonical SGD step size.
const DefaultLearningRate = 0.1

// NewLinear builds the canonical linear, variable-depth network. hidden
// may be nil/empty for a direct input->output single layer (K=0 hidden
// layers); rng supplies the uniform(-0.1, 0.1) initial weights and biases.
func NewLinear(hidden []int, lr float64, rng *rand.Rand) *Network {
	sizes := append([]int{}, hidden...)
	sizes = append([]int{6}, append(sizes, 6)...)
	n := &Network{LR: lr, ClipWeightDelta: 0.1, ClipDelta: 100}
	for l := 0; l+1 < len(sizes); l++ {
		n.Layers = append(n.Layers, newLayer(sizes[l], sizes[l+1], ActivationLinear, rng))
	}
	return n
}

// LayerSizes returns the neuron count of every layer after the input,
// i.e. the hidden layer widths followed by the output width — the shape
// persisted in the weight file.
func (n *Network) LayerSizes() []int {
	sizes := make([]int, len(n.Layers))
	for i, l := range n.Layers {
		sizes[i] = l.OutLen
	}
	return sizes
}

// forwardAll runs the full forward pass and returns the activation vector
// at every layer boundary: activations[0] is the input, activations[i+1]
// is layer i's output.
func (n *Network) forwardAll(input []float64) [][]float64 {
	activations := make([][]float64, len(n.Layers)+1)
	activations[0] = input
	cur := input
	for i := range n.Layers {
		cur = n.Layers[i].forward(cur)
		activations[i+1] = cur
	}
	return activations
}

// Forward runs a pure forward pass (no gradient bookkeeping) and returns
// the network's output.
func (n *Network) Forward(input [6]float64) [6]float64 {
	activations := n.forwardAll(input[:])
	var out [6]float64
	copy(out[:], activations[len(activations)-1])
	return out
}

func clamp(v, bound float64) float64 {
	if bound <= 0 {
		return v
	}
	if v > bound {
		return bound
	}
	if v < -bound {
		return -bound
	}
	return v
}

// TrainStep performs one online SGD step: a forward pass on prevNormalized
// using the network's current (pre-update) weights, a Euclidean cost
// against targetNormalized, backpropagation through linear layers, and an
// in-place weight/bias update. It returns the pre-update cost, computed
// before any weight changes — testable property 3 in the spec.
func (n *Network) TrainStep(prevNormalized, targetNormalized [6]float64) float64 {
	activations := n.forwardAll(prevNormalized[:])
	output := activations[len(activations)-1]

	cost := 0.0
	outDelta := make([]float64, len(output))
	for j := range output {
		d := output[j] - targetNormalized[j]
		cost += d * d
		outDelta[j] = d
	}
	cost = math.Sqrt(cost)

	// Compute every layer's delta using pre-update weights before any
	// layer is modified. Each layer's delta is its incoming error signal
	// times its own activation derivative (1 for linear layers; this is
	// also what makes the sigmoid variant's hidden layers trainable).
	last := len(n.Layers) - 1
	deltas := make([][]float64, len(n.Layers))
	deltas[last] = make([]float64, len(outDelta))
	for j, d := range outDelta {
		deltas[last][j] = d * n.Layers[last].Act.derivative(output[j])
	}
	for l := last - 1; l >= 0; l-- {
		next := &n.Layers[l+1]
		nextDelta := deltas[l+1]
		own := activations[l+1]
		cur := make([]float64, next.InLen)
		for i := 0; i < next.InLen; i++ {
			var sum float64
			for j := 0; j < next.OutLen; j++ {
				sum += nextDelta[j] * next.weightAt(j, i)
			}
			cur[i] = sum * n.Layers[l].Act.derivative(own[i])
		}
		deltas[l] = cur
	}

	for l := range n.Layers {
		layer := &n.Layers[l]
		act := activations[l]
		for j := 0; j < layer.OutLen; j++ {
			d := clamp(deltas[l][j], n.ClipDelta)
			base := j * layer.InLen
			for i := 0; i < layer.InLen; i++ {
				step := clamp(n.LR*d*act[i], n.ClipWeightDelta)
				layer.Weights[base+i] -= step
			}
			layer.Biases[j] -= clamp(n.LR*d, n.ClipWeightDelta)
		}
	}

	return cost
}
