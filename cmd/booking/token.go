package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/example/coworking-booking/internal/application"
	"github.com/example/coworking-booking/internal/auth"
)

// runToken prints a signed bearer token for local use:
//
//	booking token -id alice -name Alice -role ADMIN -ttl 8h
func runToken(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(stderr)
	id := fs.String("id", "", "actor ID (token subject)")
	name := fs.String("name", "", "actor display name; defaults to the ID")
	role := fs.String("role", string(application.RoleUser), "USER or ADMIN")
	ttl := fs.Duration("ttl", 8*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	secret := strings.TrimSpace(os.Getenv("BOOKING_JWT_SECRET"))
	if secret == "" {
		fmt.Fprintln(stderr, "BOOKING_JWT_SECRET is not set")
		return 1
	}
	if strings.TrimSpace(*id) == "" {
		fmt.Fprintln(stderr, "-id is required")
		return 2
	}
	actorRole := application.Role(strings.ToUpper(strings.TrimSpace(*role)))
	if !actorRole.Valid() {
		fmt.Fprintf(stderr, "unknown role %q\n", *role)
		return 2
	}

	token, err := auth.Sign(secret, application.Actor{ID: *id, Name: *name, Role: actorRole}, *ttl, time.Now())
	if err != nil {
		fmt.Fprintf(stderr, "sign token: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, token)
	return 0
}
