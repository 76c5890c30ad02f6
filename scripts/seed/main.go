// Seed adds sample tasks to the database. Run from project root: go run ./scripts/seed
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"tasker/internal/config"
	"tasker/internal/database"
	"tasker/internal/models"
	"tasker/internal/repository"
)

func main() {
	loadEnvFile(".env")

	ctx := context.Background()
	cfg := config.Get()

	db, err := database.Open(ctx, cfg.DatabasePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Open database failed:", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.MigrateOrCreateSchema(ctx, db); err != nil {
		fmt.Fprintln(os.Stderr, "Schema failed:", err)
		os.Exit(1)
	}

	repo := repository.NewTaskRepository(db)
	now := time.Now()
	samples := []struct {
		title    string
		desc     string
		dueIn    time.Duration
		reminder bool
	}{
		{"Pay rent", "Transfer before the 1st", 24 * time.Hour, true},
		{"Dentist appointment", "", 72 * time.Hour, true},
		{"Water the plants", "Balcony and kitchen", -12 * time.Hour, false},
		{"Renew car insurance", "Compare quotes first", 14 * 24 * time.Hour, true},
		{"Return library books", "", 48 * time.Hour, false},
	}

	for _, s := range samples {
		due := now.Add(s.dueIn).Format(models.DueDateLayout)
		id, err := repo.Create(ctx, s.title, s.desc, due, s.reminder)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Insert failed:", err)
			os.Exit(1)
		}
		fmt.Printf("Created task %d: %s (due %s)\n", id, s.title, due)
	}
	fmt.Printf("Done: %d tasks in %s\n", len(samples), cfg.DatabasePath)
}

func loadEnvFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		if strings.HasPrefix(val, `"`) && strings.HasSuffix(val, `"`) {
			val = strings.Trim(val, `"`)
		} else if strings.HasPrefix(val, "'") && strings.HasSuffix(val, "'") {
			val = strings.Trim(val, "'")
		}
		if key != "" && os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}
}
