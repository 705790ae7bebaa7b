package roster

// Snapshot captures the persisted facts about an event read once at batch
// start. The admission decision works entirely off this snapshot; the store
// is not re-queried mid-batch.
type Snapshot struct {
	EventID          uint
	Capacity         int64
	Registered       int64
	RegisteredEmails map[string]struct{}
}

// Remaining reports how many more attendees the event can take
func (s Snapshot) Remaining() int64 {
	if s.Registered >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Registered
}

// PlanAdmission decides which candidates of a batch may be committed.
//
// Candidates are visited in input order. A candidate is discarded when its
// event does not match the target event, or when its email is already
// registered or was already accepted earlier in the batch. Once the
// persisted count plus the accepted count reaches capacity, the remaining
// candidates are discarded without inspection.
//
// The returned slice satisfies: len(accepted) + snapshot.Registered never
// exceeds capacity, no two accepted candidates share an email, and no
// accepted email collides with a registered one.
func PlanAdmission(snapshot Snapshot, batch []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(batch))
	var accepted []Candidate

	for _, candidate := range batch {
		if candidate.EventID != snapshot.EventID {
			continue
		}
		if _, registered := snapshot.RegisteredEmails[candidate.Email]; registered {
			continue
		}
		if _, dup := seen[candidate.Email]; dup {
			continue
		}
		if snapshot.Registered+int64(len(accepted)) >= snapshot.Capacity {
			// Capacity reached, the rest of the batch is dropped
			break
		}
		accepted = append(accepted, candidate)
		seen[candidate.Email] = struct{}{}
	}

	return accepted
}
