// Command admin manages administrator accounts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"capsort/internal/config"
	"capsort/internal/database"
	"capsort/internal/models"
	"capsort/internal/repository"
	"capsort/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  admin create --name <full name> --email <email> --password <password> [--contact <number>]")
	fmt.Println("  admin list [--role admin|student]")
	fmt.Println("  admin promote <email>")
	fmt.Println("  admin demote <email>")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	users := service.NewUserService(repository.NewUserRepository(db))
	ctx := context.Background()

	if err := run(ctx, users, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, users *service.UserService, command string, args []string) error {
	switch command {
	case "create":
		fs := flag.NewFlagSet("create", flag.ExitOnError)
		name := fs.String("name", "", "Full name")
		email := fs.String("email", "", "Email address")
		contact := fs.String("contact", "", "Contact number")
		password := fs.String("password", "", "Password (6+ chars with upper, lower and a digit)")
		_ = fs.Parse(args)

		user, err := users.CreateUser(ctx, service.CreateUserInput{
			FullName:      *name,
			Email:         *email,
			ContactNumber: *contact,
			Password:      *password,
			Role:          models.RoleAdmin,
		})
		if err != nil {
			return describe(err)
		}
		fmt.Printf("Created admin %s (ID: %d)\n", user.Email, user.ID)

	case "list":
		fs := flag.NewFlagSet("list", flag.ExitOnError)
		role := fs.String("role", string(models.RoleAdmin), "Role to list")
		_ = fs.Parse(args)

		list, err := users.ListUsers(ctx, models.Role(*role))
		if err != nil {
			return describe(err)
		}
		if len(list) == 0 {
			fmt.Printf("No %s accounts found\n", *role)
			return nil
		}
		for _, u := range list {
			fmt.Printf("ID: %d | Name: %s | Email: %s | Created: %s\n",
				u.ID, u.FullName, u.Email, u.CreatedAt.Format("2006-01-02"))
		}

	case "promote", "demote":
		if len(args) < 1 {
			usage()
			os.Exit(1)
		}
		role := models.RoleAdmin
		if command == "demote" {
			role = models.RoleStudent
		}
		if err := users.SetRole(ctx, args[0], role); err != nil {
			return describe(err)
		}
		fmt.Printf("%s is now %s\n", args[0], role)

	default:
		usage()
		return fmt.Errorf("unknown command: %s", command)
	}
	return nil
}

// describe flattens field errors so operators see which input was rejected.
func describe(err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) || len(appErr.Fields) == 0 {
		return err
	}
	msg := appErr.Message
	for _, f := range appErr.Fields {
		msg += fmt.Sprintf("\n  %s: %s", f.Field, f.Message)
	}
	return fmt.Errorf("%s", msg)
}
