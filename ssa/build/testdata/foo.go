package main

// foo sums 3*i+1 for i in [0, n).
func foo(n int) int {
	s := 0
	for i := 0; i < n; i++ {
		s += 3*i + 1
	}
	return s
}
