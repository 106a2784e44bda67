package sanitizer

const (
	MinGuestCount = 1

	MaxGuestCount = 50
)

func ClampGuestCount(count int) int {
	if count < MinGuestCount {
		return MinGuestCount
	}
	if count > MaxGuestCount {
		return MaxGuestCount
	}
	return count
}
