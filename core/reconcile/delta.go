package reconcile

import "time"

// Delta returns actual - expected in whole calendar days.
// It is nil when either date is missing.
func Delta(expected, actual *time.Time) *int {
	if expected == nil || actual == nil || expected.IsZero() || actual.IsZero() {
		return nil
	}
	days := int(civil(*actual).Sub(civil(*expected)).Hours() / 24)
	return &days
}
