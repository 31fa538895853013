package vars

// FirstNonZero returns the first value that is not the zero value of T, so
// sources can be listed from highest to lowest priority.
func FirstNonZero[T comparable](values ...T) T {
	var zero T
	for _, value := range values {
		if value != zero {
			return value
		}
	}
	return zero
}
