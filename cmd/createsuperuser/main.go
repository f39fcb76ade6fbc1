// Package main creates a staff superuser account.
//
// Usage:
//
//	createsuperuser -email admin@example.com -name Admin [-- server flags]
//
// The password comes from -password, then SHELFKEEP_SUPERUSER_PASSWORD, then
// the first line of stdin. Flags after "--" are handed to the config loader,
// so -data-path and friends select the same database the server uses.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/samber/do/v2"

	"github.com/shelfkeep/shelfkeep-server/internal/di"
	"github.com/shelfkeep/shelfkeep-server/internal/di/providers"
	"github.com/shelfkeep/shelfkeep-server/internal/logger"
	"github.com/shelfkeep/shelfkeep-server/internal/service"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "createsuperuser: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("createsuperuser", flag.ContinueOnError)
	email := fs.String("email", os.Getenv("SHELFKEEP_SUPERUSER_EMAIL"), "Superuser email")
	name := fs.String("name", os.Getenv("SHELFKEEP_SUPERUSER_NAME"), "Superuser display name")
	password := fs.String("password", os.Getenv("SHELFKEEP_SUPERUSER_PASSWORD"), "Superuser password (read from stdin when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *email == "" || *name == "" {
		return errors.New("-email and -name are required")
	}

	if *password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}

	injector := di.NewContainer(fs.Args())
	defer func() { _ = injector.Shutdown() }()

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	log := do.MustInvoke[*logger.Logger](injector)
	users, err := do.Invoke[*service.UserService](injector)
	if err != nil {
		return err
	}

	user, err := users.CreateSuperuser(context.Background(), service.RegisterRequest{
		Email:    *email,
		Password: *password,
		Name:     *name,
	})
	if err != nil {
		return err
	}

	log.Info("Superuser created", "user_id", user.ID, "email", user.Email)
	return nil
}
