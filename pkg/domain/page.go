package domain

// Report pages are stored newest-first while logical numbers ascend from the
// oldest page (1). These helpers are the only place that inversion lives.

// StorageIndex translates a 1-based logical page number into the index of
// that page in newest-first storage of the given length.
func StorageIndex(logical, length int) (int, bool) {
	if logical < 1 || logical > length {
		return -1, false
	}
	return length - logical, true
}

// LogicalNumber translates a newest-first storage index into the page's
// 1-based logical number.
func LogicalNumber(index, length int) (int, bool) {
	if index < 0 || index >= length {
		return 0, false
	}
	return length - index, true
}

// RenumberSpan returns how many pages, counted from the front of storage,
// can have shifted when pages at or after target changed.
func RenumberSpan(target, length int) int {
	if target < 1 {
		target = 1
	}
	span := length + 1 - target
	if span < 0 {
		return 0
	}
	if span > length {
		return length
	}
	return span
}
