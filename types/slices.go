package types

// GrowSlice returns a slice of length len(myslice)+n whose prefix holds the
// original values and whose tail holds n copies of fill. The backing array is
// reused when it has room, so values already stored never move relative to
// their index.
func GrowSlice[T any](myslice []T, n int, fill T) (biggerSlice []T) {
	if n <= 0 {
		return myslice
	}
	var (
		l = len(myslice)
	)
	if cap(myslice)-l >= n {
		biggerSlice = myslice[:l+n]
	} else {
		newCap := 2 * cap(myslice)
		if newCap < l+n {
			newCap = l + n
		}
		biggerSlice = make([]T, l+n, newCap)
		copy(biggerSlice, myslice)
	}
	for i := l; i < l+n; i++ {
		biggerSlice[i] = fill
	}
	return
}
