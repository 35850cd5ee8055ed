package fsmx

// validateTable checks a candidate state table. Checks run in a fixed order:
// emptiness, then nil entries, then ordering, so the order scan never sees a
// nil entry.
func validateTable[C any](states []*State[C]) error {
	if len(states) == 0 {
		return &ConfigError{Code: ConfigEmpty, Index: -1, Got: NoState}
	}
	for i, s := range states {
		if s == nil {
			return &ConfigError{Code: ConfigNullEntry, Index: i, Got: NoState}
		}
	}
	for i, s := range states {
		if s.ID() != StateID(i) {
			return &ConfigError{Code: ConfigOrderMismatch, Index: i, Got: s.ID()}
		}
	}
	return nil
}
