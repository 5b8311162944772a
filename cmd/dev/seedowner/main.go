// seedowner provisions an owner account. Owner registration is not exposed
// on the public API, so this is the only way owners come into existence.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"bikeshop/internal/account"
	"bikeshop/pkg/config"
	"bikeshop/pkg/db"
)

func main() {
	email := flag.String("email", "", "owner email")
	password := flag.String("password", "", "owner password")
	flag.Parse()

	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: seedowner -email owner@shop.com -password secret")
		os.Exit(2)
	}

	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.Open(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "db open: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	hash, err := account.HashPassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	repo := account.NewRepository(pool)
	a, err := repo.Create(ctx, *email, hash, account.RoleOwner)
	if err != nil {
		if errors.Is(err, account.ErrExists) {
			fmt.Fprintf(os.Stderr, "owner %s already exists\n", *email)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "create owner: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("owner created: %s (%s)\n", a.Email, a.ID)
}
