package main

import (
	"context"
	stderrors "errors"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"fhtsuite/adapters/export"
	"fhtsuite/adapters/sqlstore"
	"fhtsuite/domain/core"
	"fhtsuite/internal/config"
	"fhtsuite/internal/validation"
)

// migrate applies the schema to the configured database and, when a results
// directory is given, imports every exported run JSON found under it.
func main() {
	_ = godotenv.Load()

	if len(os.Args) > 2 {
		log.Fatal("Usage: migrate [results_dir]")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	log.Printf("Migrating %s database %s", cfg.Database.Driver, cfg.Database.URL)

	db, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Schema is up to date")
	if len(os.Args) < 2 {
		return
	}

	repo := sqlstore.NewRunRepository(db)
	files, err := findResultFiles(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to find result files: %v", err)
	}
	log.Printf("Found %d result files to import", len(files))

	imported := 0
	skipped := 0
	for _, file := range files {
		result, err := loadResultFromFile(file)
		if err != nil {
			log.Printf("Failed to load run from %s: %v", file, err)
			skipped++
			continue
		}

		if _, err := repo.GetRun(ctx, result.RunID); err == nil {
			log.Printf("Run %s already stored, skipping %s", result.RunID, filepath.Base(file))
			skipped++
			continue
		} else if !stderrors.Is(err, core.ErrRunNotFound) {
			log.Printf("Failed to check run %s: %v", result.RunID, err)
			skipped++
			continue
		}

		if err := repo.SaveRun(ctx, result); err != nil {
			log.Printf("Failed to save run %s: %v", result.RunID, err)
			skipped++
			continue
		}

		imported++
		log.Printf("Imported run %s from %s", result.RunID, filepath.Base(file))
	}

	log.Printf("Migration complete: %d imported, %d skipped", imported, skipped)
}

// findResultFiles returns exported run documents, fht_validation_<run>.json
func findResultFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		name := info.Name()
		if !info.IsDir() && strings.HasPrefix(name, "fht_validation_") && strings.HasSuffix(name, ".json") {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}

func loadResultFromFile(path string) (*validation.SuiteResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return export.ReadResultJSON(f)
}
