/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

// Session is the hysteresis memory of one gesture: the line matched last per
// orientation. Switching to another object clears it.
type Session struct {
	objectID string
	last     [2]string
}

// NewSession starts an empty session for an object.
func NewSession(objectID string) *Session { return &Session{objectID: objectID} }

// ObjectID returns the object the session belongs to.
func (s *Session) ObjectID() string { return s.objectID }

// Last returns the key of the line matched last for o, or "".
func (s *Session) Last(o Orientation) string { return s.last[o] }

// Reset forgets both remembered lines.
func (s *Session) Reset() { s.last = [2]string{} }

func (s *Session) remember(o Orientation, key string) { s.last[o] = key }

// bind points the session at objectID, clearing the memory when it changes.
func (s *Session) bind(objectID string) {
	if s.objectID != objectID {
		s.objectID = objectID
		s.Reset()
	}
}
