package importer

// Session holds the outcome of one parse for preview. The caller inspects
// every row (valid and invalid, each with its messages), then either
// confirms — committing the valid rows — or cancels. Either way the session
// is discarded; nothing from an abandoned parse leaks into the next one.
type Session struct {
	Filename string

	rows []Row
}

// Rows returns a copy of the parsed rows in source order.
func (s *Session) Rows() []Row {
	out := make([]Row, len(s.rows))
	copy(out, s.rows)

	return out
}

// ValidCount returns the number of rows with an empty error list.
func (s *Session) ValidCount() int {
	n := 0
	for _, r := range s.rows {
		if r.Valid() {
			n++
		}
	}

	return n
}

// InvalidCount returns the number of rows carrying at least one error.
func (s *Session) InvalidCount() int {
	return len(s.rows) - s.ValidCount()
}

// CanConfirm reports whether confirmation is allowed: at least one row must
// be committable, otherwise there is nothing to do.
func (s *Session) CanConfirm() bool {
	return s.ValidCount() > 0
}
