package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/helper-roster/internal/collection"
	"github.com/noah-isme/helper-roster/internal/middleware"
	"github.com/noah-isme/helper-roster/internal/models"
	"github.com/noah-isme/helper-roster/internal/repository"
	"github.com/noah-isme/helper-roster/internal/roster"
	"github.com/noah-isme/helper-roster/internal/service"
	"github.com/noah-isme/helper-roster/pkg/config"
	"github.com/noah-isme/helper-roster/pkg/logger"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fs := flag.NewFlagSet("roster-load", flag.ContinueOnError)
	fs.SetOutput(stdout)
	source := fs.String("source", cfg.Sources.Kind, "Input source (csv, xlsx or sheets)")
	students := fs.String("students", cfg.Sources.StudentsPath, "Path to the students file")
	teachers := fs.String("teachers", cfg.Sources.TeachersPath, "Path to the teachers file")
	schemaName := fs.String("schema", cfg.Roster.Schema, "Schema revision (current or legacy)")
	policyName := fs.String("policy", cfg.Roster.DedupPolicy, "Duplicate policy (last or first)")
	skipHeader := fs.Bool("skip-header", cfg.Sources.SkipHeader, "Skip the first row of each file")
	format := fs.String("format", "text", "Output format (text or json)")
	issueToken := fs.String("issue-token", "", "Print an admin token for the given operator and exit")
	tokenTTL := fs.Duration("token-ttl", 24*time.Hour, "Lifetime of an issued admin token")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *issueToken != "" {
		token, err := middleware.IssueAdminToken(cfg.Admin.TokenSecret, *issueToken, *tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, token)
		return nil
	}

	ctx := context.Background()
	logr, err := logger.New(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	schema, err := roster.New(models.SchemaVersion(strings.ToLower(*schemaName)), roster.Options{
		LegacyHelpersAtOnce:  cfg.Roster.LegacyHelpersAtOnce,
		LegacyHelpersPerWeek: cfg.Roster.LegacyHelpersPerWeek,
	})
	if err != nil {
		return err
	}
	policy, err := collection.ParsePolicy(*policyName)
	if err != nil {
		return err
	}

	sources := cfg.Sources
	sources.Kind = strings.ToLower(*source)
	sources.StudentsPath = *students
	sources.TeachersPath = *teachers
	sources.SkipHeader = *skipHeader
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "students":
			sources.XLSX.StudentsPath = *students
		case "teachers":
			sources.XLSX.TeachersPath = *teachers
		}
	})
	studentColumns, teacherColumns := schema.Columns()
	widths := repository.Widths{Students: studentColumns, Teachers: teacherColumns}
	studentSource, teacherSource, err := repository.NewSources(ctx, sources, widths)
	if err != nil {
		return err
	}

	svc := service.NewRosterService(service.RosterServiceConfig{
		Students: studentSource,
		Teachers: teacherSource,
		Schema:   schema,
		Policy:   policy,
		Logger:   logr.With(zap.String("component", "roster-load")),
	})
	result, err := svc.Load(ctx)
	if err != nil {
		return err
	}

	if *format == "json" {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printSummary(stdout, result)
	return nil
}

func printSummary(w io.Writer, r *models.Roster) {
	s := service.Summarize(r)
	fmt.Fprintf(w, "run %s (schema %s)\n", s.RunID, s.SchemaVersion)
	fmt.Fprintf(w, "students: %d from %d rows\n", s.Students, s.StudentRows)
	fmt.Fprintf(w, "teachers: %d from %d rows\n", s.Teachers, s.TeacherRows)
	fmt.Fprintf(w, "intervals: %d accepted, %d rejected\n", s.AcceptedIntervals, s.RejectedIntervals)
	printDuplicates(w, "student", r.Stats.DuplicateStudents)
	printDuplicates(w, "teacher", r.Stats.DuplicateTeachers)
}

func printDuplicates(w io.Writer, kind string, keys []string) {
	if len(keys) == 0 {
		return
	}
	fmt.Fprintf(w, "duplicate %s submissions: %s\n", kind, strings.Join(keys, ", "))
}
