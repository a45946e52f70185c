// Command hash_password generates a bcrypt hash for the admin password used
// by the serve command.
//
// Usage:
//
//	go run cmd/tools/hash_password/main.go <password>
//
// The output goes into the ADMIN_PASSWORD_HASH environment variable.
// BCRYPT_COST and PASSWORD_PEPPER are honored if set.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/deck-composer/internal/config"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: hash_password <password>")
		os.Exit(1)
	}

	passwords, err := config.NewPasswordConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	hash, err := passwords.HashPassword(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: Failed to hash password: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}
