// Command genhash prints a bcrypt hash for a password, for seeding users.
//
// Usage:
//
//	go run ./cmd/genhash 'my-password'
package main

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: genhash <password>")
		os.Exit(1)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(os.Args[1]), 12)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate hash: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(string(hash))
}
