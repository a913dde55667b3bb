// SPDX-License-Identifier: MIT

package api

import "time"

// SetClock overrides the server clock for testing purposes.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
