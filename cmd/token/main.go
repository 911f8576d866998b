package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"backend-tourdesk/internal/auth"
	"backend-tourdesk/internal/config"

	"github.com/joho/godotenv"
)

// token prints a bearer token for an operator, signed with JWT_SECRET.
func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], os.Stdout, config.Load()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer, cfg config.Config) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	fs.SetOutput(out)
	var (
		operator = fs.String("operator", "", "Operator id to embed in the token")
		ttl      = fs.Duration("ttl", auth.DefaultTokenTTL, "Token lifetime")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *operator == "" {
		fs.Usage()
		return errors.New("-operator is required")
	}

	token, err := auth.NewIssuer(cfg.JWTSecret).Issue(*operator, *ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
