/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"fmt"
	"strconv"
)

// Change is one pending update the interaction layer proposes for an object.
// Exactly three shapes exist: PositionOnly, DimensionOnly and PositionAndDimension.
type Change interface {
	ObjectID() string
	fmt.Stringer
	sealed()
}

// PositionOnly moves an object (drag). X/Y are in the object's native frame.
type PositionOnly struct {
	ID   string
	X, Y float64
}

// DimensionOnly resizes from the bottom-right corner; the top-left stays fixed.
type DimensionOnly struct {
	ID     string
	Width  *float64
	Height *float64
}

// PositionAndDimension resizes from the top-left corner; the bottom-right stays fixed.
type PositionAndDimension struct {
	ID     string
	X, Y   float64
	Width  *float64
	Height *float64
}

func (c PositionOnly) ObjectID() string         { return c.ID }
func (c DimensionOnly) ObjectID() string        { return c.ID }
func (c PositionAndDimension) ObjectID() string { return c.ID }

func (PositionOnly) sealed()         {}
func (DimensionOnly) sealed()        {}
func (PositionAndDimension) sealed() {}

func (c PositionOnly) String() string {
	return fmt.Sprintf("position %s x=%s y=%s", c.ID, num(c.X), num(c.Y))
}

func (c DimensionOnly) String() string {
	return fmt.Sprintf("dimensions %s width=%s height=%s", c.ID, optNum(c.Width), optNum(c.Height))
}

func (c PositionAndDimension) String() string {
	return fmt.Sprintf("position+dimensions %s x=%s y=%s width=%s height=%s",
		c.ID, num(c.X), num(c.Y), optNum(c.Width), optNum(c.Height))
}

// Batch is the set of changes the host proposes in one update.
type Batch []Change

// Float returns a pointer to v, for the optional dimension fields.
func Float(v float64) *float64 { return &v }

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func optNum(v *float64) string {
	if v == nil {
		return "-"
	}
	return num(*v)
}
