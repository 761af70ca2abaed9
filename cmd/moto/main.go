// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/mauricehans/moto/internal/cache"
	"github.com/mauricehans/moto/internal/config"
	"github.com/mauricehans/moto/internal/database"
	"github.com/mauricehans/moto/internal/models"
	"github.com/mauricehans/moto/internal/repository"
	"github.com/mauricehans/moto/internal/seed"
	"github.com/mauricehans/moto/internal/server"
	"github.com/mauricehans/moto/internal/services/auth"
	"github.com/mauricehans/moto/internal/services/catalog"
	"github.com/urfave/cli/v3"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// A missing .env is fine; the environment and config.toml still apply.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	cmd := &cli.Command{
		Name:    "moto",
		Usage:   "Agde Moto dealership API",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags:   config.Flags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			server.SetupLogger(cmd.String("log-level"), cmd.String("log-format"))
			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Start the HTTP API",
				Flags:  config.ServeFlags(),
				Action: server.Run,
			},
			{
				Name:  "create-admin",
				Usage: "Create a staff account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Email address", Required: true},
					&cli.StringFlag{Name: "password", Usage: "Password", Required: true},
					&cli.StringFlag{Name: "username", Usage: "Username (defaults to the local part of the email)"},
					&cli.BoolFlag{Name: "superuser", Usage: "Grant superuser rights"},
				},
				Action: createAdmin,
			},
			{
				Name:  "set-password",
				Usage: "Replace the password of an active account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Email address", Required: true},
					&cli.StringFlag{Name: "password", Usage: "New password", Required: true},
				},
				Action: setPassword,
			},
			{
				Name:   "list-admins",
				Usage:  "List staff accounts",
				Action: listAdmins,
			},
			{
				Name:  "seed",
				Usage: "Load catalog fixtures from a YAML file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Value: "fixtures.yaml", Usage: "Fixture file"},
					&cli.StringFlag{Name: "author", Usage: "Email of the blog posts' author (defaults to the first superuser)"},
				},
				Action: seedCatalog,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func openRepository(cmd *cli.Command) (*repository.Repository, func(), error) {
	db, err := database.Open(cmd.String("database-dsn"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return repository.New(db), func() { _ = db.Close() }, nil
}

func createAdmin(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := openRepository(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	svc := auth.NewService(repo, auth.NewPasswordValidator(int(cmd.Int("min-password-length"))))
	user, err := svc.CreateAdmin(ctx, auth.CreateAdminParams{
		Email:     cmd.String("email"),
		Username:  cmd.String("username"),
		Password:  cmd.String("password"),
		Superuser: cmd.Bool("superuser"),
	})
	if err != nil {
		return passwordRejected(err)
	}

	fmt.Fprintf(cmd.Root().Writer, "Created %s (id %d, superuser: %t)\n", user.Username, user.ID, user.IsSuperuser)
	return nil
}

func setPassword(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := openRepository(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	user, err := repo.FindActiveUserByEmail(ctx, strings.ToLower(cmd.String("email")))
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("no active account with email %s", cmd.String("email"))
	}
	if err != nil {
		return err
	}

	validator := auth.NewPasswordValidator(int(cmd.Int("min-password-length")))
	password := cmd.String("password")
	if err := validator.Validate(password, user.Email, user.Username); err != nil {
		return passwordRejected(err)
	}
	if err := auth.NewService(repo, validator).SetPassword(ctx, user.ID, password); err != nil {
		return err
	}

	fmt.Fprintf(cmd.Root().Writer, "Password updated for %s\n", user.Username)
	return nil
}

// passwordRejected flattens validation failures into one message.
func passwordRejected(err error) error {
	var perr *auth.PasswordValidationError
	if !errors.As(err, &perr) {
		return err
	}
	msgs := make([]string, len(perr.Errors))
	for i, e := range perr.Errors {
		msgs[i] = e.Message
	}
	return fmt.Errorf("password rejected: %s", strings.Join(msgs, " "))
}

func listAdmins(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := openRepository(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	admins, err := repo.ListStaff(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.Root().Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tSUPERUSER\tACTIVE")
	for _, a := range admins {
		fmt.Fprintf(w, "%d\t%s\t%s\t%t\t%t\n", a.ID, a.Username, a.Email, a.IsSuperuser, a.IsActive)
	}
	return w.Flush()
}

func seedCatalog(ctx context.Context, cmd *cli.Command) error {
	fh, err := os.Open(cmd.String("file"))
	if err != nil {
		return err
	}
	defer fh.Close()

	fixtures, err := seed.Parse(fh)
	if err != nil {
		return err
	}

	repo, closeDB, err := openRepository(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	author, err := findAuthor(ctx, repo, cmd.String("author"))
	if err != nil {
		return err
	}

	// Fixtures load before the API runs, so a private cache is enough.
	store := cache.NewMemory()
	defer store.Close()

	sum, err := seed.Load(ctx, catalog.NewService(repo, store), author, fixtures)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Root().Writer, "Loaded %d motorcycles, %d parts, %d posts\n", sum.Motorcycles, sum.Parts, sum.Posts)
	return nil
}

// findAuthor returns the ID of the staff account with the given email, or
// of the first superuser. Zero means no author is available.
func findAuthor(ctx context.Context, repo *repository.Repository, email string) (int64, error) {
	admins, err := repo.ListStaff(ctx)
	if err != nil {
		return 0, err
	}
	var match func(models.User) bool
	if email != "" {
		match = func(u models.User) bool { return strings.EqualFold(u.Email, email) }
	} else {
		match = func(u models.User) bool { return u.IsSuperuser && u.IsActive }
	}
	for _, a := range admins {
		if match(a) {
			return a.ID, nil
		}
	}
	if email != "" {
		return 0, fmt.Errorf("no staff account with email %s", email)
	}
	return 0, nil
}
