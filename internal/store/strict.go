package store


// Snapshots handed out by the store are deep copies, so writing to them
// never reaches the live tree. Strict mode covers the remaining hole: a
// mutation that stores a caller-owned slice, map or pointer from its
// payload, which the caller then modifies after Commit returns.

// Verify reports ErrStrictModeViolation when the live state no longer
// matches what the last commit left behind. It is a no-op outside strict
// mode.
func (s *Store) Verify() error {
	if !s.strict {
		return nil
	}
	unlock := s.rlock()
	defer unlock()
	return s.verifyLocked()
}

func (s *Store) verifyLocked() error {
	if !s.strict {
		return nil
	}
	s.fpMu.Lock()
	defer s.fpMu.Unlock()
	for _, path := range s.reg.order {
		if !s.reg.modules[path].matches(s.fingerprints[path]) {
			s.fingerprints = s.fingerprintAll()
			return &Error{Op: "verify", Name: path, Err: ErrStrictModeViolation}
		}
	}
	return nil
}

func (s *Store) refreshFingerprints() {
	if !s.strict {
		return
	}
	current := s.fingerprintAll()
	s.fpMu.Lock()
	s.fingerprints = current
	s.fpMu.Unlock()
}

// fingerprintAll takes a private copy of every module's state.
func (s *Store) fingerprintAll() map[string]any {
	out := make(map[string]any, len(s.reg.order))
	for _, path := range s.reg.order {
		out[path] = s.reg.modules[path].baseline()
	}
	return out
}
