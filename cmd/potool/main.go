package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/pocompose/backend-go/internal/config"
	"github.com/pocompose/backend-go/internal/importer"
)

// potool runs the import pipeline offline: validate line files before
// uploading them, or write the import template to disk.

type fileReport struct {
	path    string
	session *importer.Session
	err     error
}

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded environment from .env")
	}

	app := &cli.App{
		Name:  "potool",
		Usage: "Validate purchase order line files and generate the import template",
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Parse and validate one or more line files, printing a per-row report",
				ArgsUsage: "FILE [FILE...]",
				Action:    runValidate,
			},
			{
				Name:  "template",
				Usage: "Write the import template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "Output path for the template",
						Value: importer.TemplateFilename,
					},
				},
				Action: runTemplate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runValidate(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return cli.Exit("validate: at least one file is required", 1)
	}

	defaults := config.Load().ImportDefaults()

	// Parse files concurrently, report sequentially.
	reports := make([]fileReport, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		g.Go(func() error {
			reports[i] = validateFile(path, defaults)
			return nil
		})
	}
	_ = g.Wait()

	failed := false
	for _, r := range reports {
		if !printReport(r) {
			failed = true
		}
	}
	if failed {
		return cli.Exit("one or more files failed validation", 1)
	}

	return nil
}

func validateFile(path string, defaults importer.Defaults) fileReport {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileReport{path: path, err: err}
	}

	session, err := importer.Parse(path, data, defaults)

	return fileReport{path: path, session: session, err: err}
}

// printReport writes one file's validation outcome to stdout and reports
// whether the file passed.
func printReport(r fileReport) bool {
	if r.err != nil {
		fmt.Printf("%s: %v\n", r.path, r.err)
		return false
	}

	rows := r.session.Rows()
	fmt.Printf("%s: %d rows, %d valid, %d invalid\n",
		r.path, len(rows), r.session.ValidCount(), r.session.InvalidCount())
	for _, row := range rows {
		if row.Valid() {
			continue
		}
		for _, msg := range row.Errors {
			fmt.Printf("  line %d: %s\n", row.SourceLine, msg)
		}
	}

	return r.session.InvalidCount() == 0
}

func runTemplate(c *cli.Context) error {
	data, err := importer.Template()
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	out := c.String("out")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write template to %s: %w", out, err)
	}
	fmt.Printf("template written to %s\n", out)

	return nil
}
