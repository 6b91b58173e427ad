// Command maint runs data maintenance reports and cleanups.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"capsort/internal/config"
	"capsort/internal/database"
	"capsort/internal/models"
	"capsort/internal/repository"
	"capsort/internal/service"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  maint duplicates")
	fmt.Println("  maint prune-fields --keep IoT,Database [--dry-run]")
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

	maint := service.NewMaintenanceService(repository.NewMaintenanceRepository(db))
	ctx := context.Background()

	switch os.Args[1] {
	case "duplicates":
		err = duplicates(ctx, maint)
	case "prune-fields":
		err = pruneFields(ctx, maint, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func duplicates(ctx context.Context, maint *service.MaintenanceService) error {
	groups, err := maint.Duplicates(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Println("No duplicate projects found")
		return nil
	}

	for _, g := range groups {
		kind := "same title and year, different authors"
		if g.SameWork {
			kind = "same title, author and year"
		}
		fmt.Printf("%q (%d) [%s]\n", g.Title, g.Year, kind)
		fmt.Printf("  authors: %s\n", strings.Join(g.Authors, ", "))
		fmt.Printf("  ids: %v\n", g.IDs)
	}
	fmt.Printf("%d duplicate groups\n", len(groups))
	return nil
}

func pruneFields(ctx context.Context, maint *service.MaintenanceService, args []string) error {
	fs := flag.NewFlagSet("prune-fields", flag.ExitOnError)
	keep := fs.String("keep", "", "Comma-separated fields to keep")
	dryRun := fs.Bool("dry-run", false, "Report without deleting")
	_ = fs.Parse(args)

	var fields []string
	for _, f := range strings.Split(*keep, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}

	res, err := maint.PruneFields(ctx, fields, *dryRun)
	if err != nil {
		return err
	}

	printCounts("before", res.Before)
	printCounts("after", res.After)
	verb := "Deleted"
	if res.DryRun {
		verb = "Would delete"
	}
	fmt.Printf("%s %d projects and %d saves\n", verb, res.Projects, res.Saves)
	return nil
}

func printCounts(label string, counts []models.FieldCount) {
	fmt.Printf("%s:\n", label)
	for _, c := range counts {
		fmt.Printf("  %-20s %d\n", c.Field, c.Count)
	}
}
