package scheduler

// NoSkip tells DetectConflicts to consider every existing activity.
const NoSkip = -1

// Conflict details an existing activity overlapping a candidate interval.
type Conflict struct {
	Index    int
	Activity Activity
}

// DetectConflicts returns the activities in existing whose intervals overlap
// candidate, in slice order. The activity at index skip is ignored so an
// activity being edited is not reported against itself.
func DetectConflicts(existing []Activity, candidate Interval, skip int) []Conflict {
	if candidate.Validate() != nil {
		return nil
	}

	var conflicts []Conflict
	for i, activity := range existing {
		if i == skip {
			continue
		}
		if activity.interval.Overlaps(candidate) {
			conflicts = append(conflicts, Conflict{Index: i, Activity: activity})
		}
	}
	return conflicts
}
