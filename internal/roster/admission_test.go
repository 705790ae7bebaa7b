package roster

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func candidates(eventID uint, emails ...string) []Candidate {
	out := make([]Candidate, len(emails))
	for i, email := range emails {
		out[i] = Candidate{
			FirstName: "First",
			LastName:  "Last",
			Email:     email,
			EventID:   eventID,
		}
	}
	return out
}

func emptySnapshot(eventID uint, capacity, registered int64) Snapshot {
	return Snapshot{
		EventID:          eventID,
		Capacity:         capacity,
		Registered:       registered,
		RegisteredEmails: map[string]struct{}{},
	}
}

func TestPlanAdmissionCapacity(t *testing.T) {
	// Event with capacity 2, empty store, 3 distinct rows: exactly 2 admitted
	snap := emptySnapshot(1, 2, 0)
	accepted := PlanAdmission(snap, candidates(1, "a@x.com", "b@x.com", "c@x.com"))

	require.Len(t, accepted, 2)
	require.Equal(t, "a@x.com", accepted[0].Email)
	require.Equal(t, "b@x.com", accepted[1].Email)
}

func TestPlanAdmissionNeverExceedsCapacity(t *testing.T) {
	for registered := int64(0); registered <= 5; registered++ {
		snap := emptySnapshot(1, 5, registered)

		var emails []string
		for i := 0; i < 10; i++ {
			emails = append(emails, fmt.Sprintf("u%d@x.com", i))
		}
		accepted := PlanAdmission(snap, candidates(1, emails...))

		require.LessOrEqual(t, registered+int64(len(accepted)), snap.Capacity,
			"registered=%d", registered)
	}
}

func TestPlanAdmissionDedupWithinBatch(t *testing.T) {
	snap := emptySnapshot(1, 10, 0)
	accepted := PlanAdmission(snap, candidates(1, "a@x.com", "a@x.com", "b@x.com"))

	require.Len(t, accepted, 2)
	require.Equal(t, "a@x.com", accepted[0].Email)
	require.Equal(t, "b@x.com", accepted[1].Email)
}

func TestPlanAdmissionDedupAgainstStore(t *testing.T) {
	snap := Snapshot{
		EventID:    1,
		Capacity:   10,
		Registered: 1,
		RegisteredEmails: map[string]struct{}{
			"a@x.com": {},
		},
	}
	accepted := PlanAdmission(snap, candidates(1, "a@x.com", "b@x.com"))

	require.Len(t, accepted, 1)
	require.Equal(t, "b@x.com", accepted[0].Email)
}

func TestPlanAdmissionEventMismatch(t *testing.T) {
	snap := emptySnapshot(1, 10, 0)

	batch := candidates(1, "a@x.com")
	batch = append(batch, Candidate{Email: "other@x.com", EventID: 2})
	batch = append(batch, candidates(1, "b@x.com")...)

	accepted := PlanAdmission(snap, batch)
	require.Len(t, accepted, 2)
	for _, c := range accepted {
		require.Equal(t, uint(1), c.EventID)
	}
}

func TestPlanAdmissionStopsAtCapacity(t *testing.T) {
	// Once capacity is reached the rest of the batch is dropped without
	// inspection, so a later duplicate of an accepted email stays dropped.
	snap := emptySnapshot(1, 1, 0)
	accepted := PlanAdmission(snap, candidates(1, "a@x.com", "b@x.com", "c@x.com"))

	require.Len(t, accepted, 1)
	require.Equal(t, "a@x.com", accepted[0].Email)
}

func TestPlanAdmissionFullBeforeBatch(t *testing.T) {
	snap := emptySnapshot(1, 2, 2)
	accepted := PlanAdmission(snap, candidates(1, "a@x.com"))
	require.Empty(t, accepted)
}

func TestPlanAdmissionDuplicatesDoNotConsumeCapacity(t *testing.T) {
	// Duplicates are discarded before the capacity check, so they must not
	// count against the remaining slots.
	snap := Snapshot{
		EventID:    1,
		Capacity:   2,
		Registered: 1,
		RegisteredEmails: map[string]struct{}{
			"a@x.com": {},
		},
	}
	accepted := PlanAdmission(snap, candidates(1, "a@x.com", "a@x.com", "b@x.com"))

	require.Len(t, accepted, 1)
	require.Equal(t, "b@x.com", accepted[0].Email)
}

func TestSnapshotRemaining(t *testing.T) {
	require.Equal(t, int64(3), emptySnapshot(1, 5, 2).Remaining())
	require.Equal(t, int64(0), emptySnapshot(1, 5, 5).Remaining())
	require.Equal(t, int64(0), emptySnapshot(1, 5, 7).Remaining())
}
