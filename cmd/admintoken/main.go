// Command admintoken mints a bearer token for the gateway's /admin routes.
//
//	admintoken -sub ops -ttl 1h
//
// The token is signed with JWT_SECRET, read the same way the server reads it.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cloudpocket/gateway/internal/config"
)

func main() {
	sub := flag.String("sub", "admin", "token subject, logged with every admin request")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	cfg := config.Load()
	token, err := issueToken(cfg.JWTSecret, *sub, *ttl, time.Now())
	if err != nil {
		fmt.Fprintln(os.Stderr, "admintoken:", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

// issueToken creates a signed HS256 JWT for subject.
func issueToken(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("JWT_SECRET is not set")
	}
	if subject == "" {
		return "", errors.New("subject is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive, got %s", ttl)
	}

	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
