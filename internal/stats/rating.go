package stats

// Performance ratings shown on the results screen.
const (
	RatingExcellent     = "Excellent"
	RatingGood          = "Good"
	RatingAverage       = "Average"
	RatingNeedsPractice = "Needs Practice"
)

// Rate grades a finished attempt by net speed and accuracy.
func Rate(speed, accuracy int) string {
	switch {
	case speed >= 70 && accuracy >= 95:
		return RatingExcellent
	case speed >= 50 && accuracy >= 90:
		return RatingGood
	case speed >= 30 && accuracy >= 80:
		return RatingAverage
	default:
		return RatingNeedsPractice
	}
}

// SpeedRemark is the one-line comment under the speed figure.
func SpeedRemark(speed int) string {
	switch {
	case speed > 40:
		return "Above average!"
	case speed > 25:
		return "Keep practicing!"
	default:
		return "Room for improvement"
	}
}
