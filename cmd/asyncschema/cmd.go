package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/reoring/asyncschema"
	"github.com/reoring/asyncschema/descriptor"
	"github.com/reoring/asyncschema/internal/config"
	"github.com/reoring/asyncschema/observe"
	"github.com/reoring/asyncschema/source"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// errValidationFailed makes the process exit with status 1 after the report
// has been printed.
var errValidationFailed = errors.New("validation failed")

type checkFlags struct {
	schema         string
	data           string
	first          bool
	firstFields    []string
	allFirstFields bool
	keys           []string
	locale         string
	metrics        bool
	envFiles       []string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "asyncschema",
		Short:         "Validate data documents against rule descriptors",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(newCheckCmd(stdout, stderr), newVersionCmd(stdout))
	return root
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(stdout, version)
		},
	}
}

func newCheckCmd(stdout, stderr io.Writer) *cobra.Command {
	var f checkFlags
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a JSON or YAML document",
		Long: `The check command validates the object in --data against the rules in --schema.
It prints "ok", or a JSON report {errors, fields} and exits with status 1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.first && (f.allFirstFields || len(f.firstFields) > 0) {
				return errors.New("--first cannot be combined with --first-fields or --all-first-fields")
			}
			return runCheck(cmd.Context(), f, stdout, stderr)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.schema, "schema", "", "rule descriptor file (YAML or JSON)")
	fl.StringVar(&f.data, "data", "", "data document (.json, .yaml or .yml)")
	fl.BoolVar(&f.first, "first", false, "stop at the first error")
	fl.StringSliceVar(&f.firstFields, "first-fields", nil, "fields that stop at their first error")
	fl.BoolVar(&f.allFirstFields, "all-first-fields", false, "every field stops at its first error")
	fl.StringSliceVar(&f.keys, "keys", nil, "validate only these fields")
	fl.StringVar(&f.locale, "locale", "", "message language (default $ASYNCSCHEMA_LOCALE or en)")
	fl.BoolVar(&f.metrics, "metrics", false, "print run metrics to stderr")
	fl.StringSliceVar(&f.envFiles, "env-file", nil, ".env files to load")
	_ = cmd.MarkFlagRequired("schema")
	_ = cmd.MarkFlagRequired("data")
	return cmd
}

func runCheck(ctx context.Context, f checkFlags, stdout, stderr io.Writer) error {
	cfg, err := config.Load(f.envFiles...)
	if err != nil {
		return err
	}
	log := cfg.Logger(stderr)

	locale := cfg.Locale
	if f.locale != "" {
		locale = f.locale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return fmt.Errorf("locale %q: %w", locale, err)
	}
	chosen := asyncschema.SetLocale(tag)
	log.Debug().Str("locale", chosen.String()).Msg("messages selected")

	metrics := observe.NewMetrics(cfg.MetricsNamespace)
	schema, err := descriptor.Load(f.schema, asyncschema.WithLogger(log), asyncschema.WithObserver(metrics))
	if err != nil {
		return err
	}
	data, err := source.File(f.data)
	if err != nil {
		return err
	}

	var opts []asyncschema.Option
	switch {
	case f.first:
		opts = append(opts, asyncschema.WithFirst())
	case f.allFirstFields:
		opts = append(opts, asyncschema.WithAllFirstFields())
	case len(f.firstFields) > 0:
		opts = append(opts, asyncschema.WithFirstFields(f.firstFields...))
	}
	if len(f.keys) > 0 {
		opts = append(opts, asyncschema.WithKeys(f.keys...))
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	_, verr := schema.Validate(ctx, data, opts...)

	if f.metrics {
		if err := metrics.WriteText(stderr); err != nil {
			log.Warn().Err(err).Msg("write metrics")
		}
	}

	report, ok := asyncschema.AsValidationErrors(verr)
	switch {
	case verr == nil:
		fmt.Fprintln(stdout, "ok")
		return nil
	case !ok:
		return verr
	}
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, string(out))
	return errValidationFailed
}
