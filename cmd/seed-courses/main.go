package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/stemsi/course-catalog/internal/config"
	"github.com/stemsi/course-catalog/internal/events"
	"github.com/stemsi/course-catalog/internal/logger"
	"github.com/stemsi/course-catalog/internal/repository"
	"github.com/stemsi/course-catalog/internal/service"
	"github.com/stemsi/course-catalog/internal/validator"
)

func main() {
	var path string
	var assumeYes bool
	flag.StringVar(&path, "file", "courses.csv", "CSV or XLSX file with a header row of course fields")
	flag.BoolVar(&assumeYes, "yes", false, "Skip the confirmation prompt")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	rows, err := loadRows(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("Failed to read course rows")
	}

	fmt.Println("=== Seeding Courses ===")
	fmt.Printf("%d rows from %s into %s\n", len(rows), path, cfg.CatalogFile)

	if !assumeYes && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Print("Continue? [y/N]: ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Println("Aborted")
			return
		}
	}

	courseRepo, err := repository.NewCourseRepository(cfg.CatalogFile,
		repository.WithSink(events.NewLogSink(log)),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open course catalog")
	}
	courseService := service.NewCourseService(courseRepo, log)

	sum := seed(ctx, courseService, rows)

	fmt.Printf("\nSeed completed! Added %d/%d courses (%d duplicates, %d invalid).\n",
		sum.added, len(rows), sum.duplicates, sum.invalid)
	if sum.failed > 0 {
		fmt.Printf("Stopped after a storage error on row %d\n", sum.failed)
		os.Exit(1)
	}
}

type summary struct {
	added      int
	duplicates int
	invalid    int
	// failed is the 1-based row that hit a storage error, 0 when none did.
	failed int
}

// seed submits rows in order. Duplicate and invalid rows are reported and
// skipped; a storage error stops the run.
func seed(ctx context.Context, svc *service.CourseService, rows []map[string]string) summary {
	var sum summary
	for i, fields := range rows {
		course, err := svc.Create(ctx, fields)
		switch {
		case err == nil:
			sum.added++
			fmt.Printf("Added %s - %s\n", course.Code, course.Name)
		case errors.Is(err, repository.ErrDuplicateCode):
			sum.duplicates++
			fmt.Printf("Row %d: %v\n", i+1, err)
		case errors.Is(err, validator.ErrValidation):
			sum.invalid++
			fmt.Printf("Row %d: %v\n", i+1, err)
		default:
			sum.failed = i + 1
			fmt.Printf("Row %d: %v\n", i+1, err)
			return sum
		}
	}
	return sum
}
