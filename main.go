package main

import "github.com/sieve/sieve/cmd/sieve"

func main() {
	sieve.Execute()
}
