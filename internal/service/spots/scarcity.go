package spots

// TotalSpots is the launch capacity the remaining-spots counter is measured against.
const TotalSpots = 30

const (
	MessageExhausted = "spots exhausted"
	MessageLast      = "last spots!"
	MessageUnder10   = "fewer than 10 spots"
	MessageUnder15   = "fewer than 15 spots"
	MessageAvailable = "spots available"
)

// Display coarsens an exact remaining count into the value shown publicly.
// Small counts are exact; larger ones are rounded up into fixed buckets.
func Display(actual int) (int, string) {
	switch {
	case actual <= 0:
		return 0, MessageExhausted
	case actual <= 5:
		return actual, MessageLast
	case actual <= 10:
		return 10, MessageUnder10
	case actual <= 15:
		return 15, MessageUnder15
	default:
		return 20, MessageAvailable
	}
}
