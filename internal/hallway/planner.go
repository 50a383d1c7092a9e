package hallway

// miniWalkLength is the number of rooms a mini walk visits.
const miniWalkLength = 3

// PlanRooms returns the ordered list of rooms to run.
//
// Semantics:
//   - If subset is non-empty, return the rooms of sequence that also occur
//     in subset, in sequence order. Subset order is ignored, unknown subset
//     entries are dropped, and subset takes precedence over miniWalk.
//   - Else if miniWalk is true, return the first three rooms of sequence
//     (or fewer, if sequence is shorter).
//   - Else return a copy of the full sequence.
//
// PlanRooms never mutates sequence and always returns fresh storage, so
// callers mutating the result cannot corrupt the canonical definition.
func PlanRooms(sequence, subset []string, miniWalk bool) []string {
	if len(subset) > 0 {
		allowed := make(map[string]struct{}, len(subset))
		for _, id := range subset {
			allowed[id] = struct{}{}
		}
		planned := make([]string, 0, len(sequence))
		for _, id := range sequence {
			if _, ok := allowed[id]; ok {
				planned = append(planned, id)
			}
		}
		return planned
	}

	n := len(sequence)
	if miniWalk && n > miniWalkLength {
		n = miniWalkLength
	}
	planned := make([]string, n)
	copy(planned, sequence[:n])
	return planned
}
