// Copyright 2024 TeamUp Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logics

import "github.com/chewxy/math32"

// SparseVector maps feature indices to weights. Indices absent from the map
// are implicitly zero. Valid indices lie in [0, dim) of the owning
// featurizer.
type SparseVector map[int32]float32

// SquaredSum returns the sum of squared weights.
func (v SparseVector) SquaredSum() float32 {
	var sum float32
	for _, value := range v {
		sum += value * value
	}
	return sum
}

// L2Normalize scales the vector to unit length in place. A zero vector is
// left unchanged.
func (v SparseVector) L2Normalize() {
	sum := v.SquaredSum()
	if sum <= 0 {
		return
	}
	inv := 1 / math32.Sqrt(sum)
	for index := range v {
		v[index] *= inv
	}
}

// AddScaled accumulates scale * other into the vector.
func (v SparseVector) AddScaled(other SparseVector, scale float32) {
	for index, value := range other {
		v[index] += scale * value
	}
}

// Dot returns the dot product. For two L2-normalized vectors this equals
// their cosine similarity. The smaller vector is iterated.
func (v SparseVector) Dot(other SparseVector) float32 {
	a, b := v, other
	if len(a) > len(b) {
		a, b = b, a
	}
	var sum float32
	for index, value := range a {
		if w, exist := b[index]; exist {
			sum += value * w
		}
	}
	return sum
}

// Clone returns a deep copy.
func (v SparseVector) Clone() SparseVector {
	out := make(SparseVector, len(v))
	for index, value := range v {
		out[index] = value
	}
	return out
}
