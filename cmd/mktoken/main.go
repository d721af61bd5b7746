// Command mktoken mints a development bearer token for exercising the API
// without the external identity provider. It signs with the same JWT_SECRET
// the server verifies against.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"gatherly/internal/adapters/auth"
)

func main() {
	userID := flag.String("user", "", "subject user ID for the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: mktoken -user <id> [-ttl 24h]")
		os.Exit(2)
	}

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		os.Exit(1)
	}

	token, err := auth.NewJWTIssuer(secret).Issue(*userID, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "issue token:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
