package main

func bar(n int) int {
	p := 1
	for i := 0; i < n; i++ {
		p *= 2
	}
	return p
}
