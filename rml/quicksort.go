package rml

// quicksortFloat64 sorts values[left:right+1] ascending in place, using
// the Hoare-partition recurrence of the original TypeIIRMLQuicksort.cpp.
// The synchronizer's candidate list never holds more than 3K+1 entries,
// so a hand-rolled in-place quicksort is exactly as fast as sort.Float64s
// here; it is kept for fidelity to the source recurrence, not performance.
func quicksortFloat64(values []float64, left, right int) {
	i, j := left, right
	pivot := values[(left+right)/2]

	for i <= j {
		for values[i] < pivot {
			i++
		}
		for values[j] > pivot {
			j--
		}
		if i <= j {
			values[i], values[j] = values[j], values[i]
			i++
			j--
		}
	}

	if left < j {
		quicksortFloat64(values, left, j)
	}
	if i < right {
		quicksortFloat64(values, i, right)
	}
}

// sortFloat64 sorts values ascending in place.
func sortFloat64(values []float64) {
	if len(values) < 2 {
		return
	}
	quicksortFloat64(values, 0, len(values)-1)
}
