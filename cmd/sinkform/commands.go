package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-sinkform/pkg/logging"
	"github.com/goliatone/go-sinkform/pkg/model"
	"github.com/goliatone/go-sinkform/pkg/openapi"
	"github.com/goliatone/go-sinkform/pkg/postgres"
	"github.com/goliatone/go-sinkform/pkg/render"
	"github.com/goliatone/go-sinkform/pkg/renderers/tui"
	"github.com/goliatone/go-sinkform/pkg/server"
	"github.com/goliatone/go-sinkform/pkg/sink"
	"github.com/goliatone/go-sinkform/pkg/sink/tdsqlpostgresql"
	"github.com/goliatone/go-sinkform/pkg/visibility/expr"
)

// contextFlags are the form context switches shared by several commands.
type contextFlags struct {
	edit     bool
	status   int
	dataType string
	group    string
	values   string
}

func (f *contextFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.edit, "edit", false, "Render for editing an existing sink")
	cmd.Flags().IntVar(&f.status, "status", 0, "Lifecycle status of the sink, e.g. 130 once configured")
	cmd.Flags().StringVar(&f.dataType, "data-type", "", "Data type of the owning stream")
	cmd.Flags().StringVar(&f.group, "group", "", "Owning inlong group id")
	cmd.Flags().StringVar(&f.values, "values", "", "JSON or YAML file with the current sink record, - for stdin")
}

// formContext loads the record named by --values and applies --status on top.
func (f *contextFlags) formContext(cmd *cobra.Command) (model.FormContext, error) {
	values, err := readValues(cmd, f.values)
	if err != nil {
		return model.FormContext{}, err
	}
	if cmd.Flags().Changed("status") {
		if values == nil {
			values = map[string]any{}
		}
		values[model.StatusKey] = f.status
	}
	return model.FormContext{
		CurrentValues: values,
		IsEdit:        f.edit,
		InlongGroupID: f.group,
		DataType:      f.dataType,
	}, nil
}

func newListCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered sink types and their summary columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			type summary struct {
				Type    string             `json:"type"`
				Columns []model.ColumnView `json:"columns"`
			}
			var out []summary
			for _, kind := range a.sinks.List() {
				desc, err := a.descriptor(kind)
				if err != nil {
					return err
				}
				out = append(out, summary{
					Type:    desc.Type(),
					Columns: model.ColumnViews(desc.TableColumns(), model.RowState{}),
				})
			}
			data, err := encode(out, format)
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", data)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	return cmd
}

func newFormCmd(a *app) *cobra.Command {
	var (
		flags  contextFlags
		mode   string
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "form <type>",
		Short: "Render the configuration form of a sink type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := a.descriptor(args[0])
			if err != nil {
				return err
			}
			formCtx, err := flags.formContext(cmd)
			if err != nil {
				return err
			}
			view := desc.GetForm(sink.ParseMode(mode), formCtx)
			opts := render.RenderOptions{
				Title:   desc.Type(),
				Locale:  a.cfg.Locale,
				Context: formCtx,
			}
			opts.Hidden = render.MergeHiddenFields(nil, render.ContextHidden(opts)...)

			data, _, err := a.renderers.Render(cmd.Context(), format, view, opts)
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, data)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&mode, "mode", string(sink.ModeForm), "form for the editable form, col for summary columns")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, yaml or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")
	return cmd
}

func newColumnsCmd(a *app) *cobra.Command {
	var (
		flags  contextFlags
		format string
	)
	cmd := &cobra.Command{
		Use:   "columns <type>",
		Short: "Print the columns of a sink's field list table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := a.descriptor(args[0])
			if err != nil {
				return err
			}
			formCtx, err := flags.formContext(cmd)
			if err != nil {
				return err
			}
			columns := desc.FieldListColumns(formCtx.DataType, formCtx.CurrentValues)
			data, err := encode(model.ColumnViews(columns, formCtx.State()), format)
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", data)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	return cmd
}

func newSchemaCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "schema [type]",
		Short: "Print the OpenAPI schema of a sink type, or the whole document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value any
			if len(args) == 1 {
				desc, err := a.descriptor(args[0])
				if err != nil {
					return err
				}
				value = openapi.SinkSchema(desc)
			} else {
				doc, err := openapi.Document(a.sinks, a.cfg.Locale, cmd.Root().Version)
				if err != nil {
					return err
				}
				value = doc
			}
			data, err := encode(value, format)
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", data)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or yaml")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sink API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv := server.New(a.cfg.Listen,
				server.WithSinks(a.sinks, a.catalog),
				server.WithRenderers(a.renderers),
				server.WithDefaultLocale(a.cfg.Locale),
				server.WithConnectTimeout(a.cfg.ConnectTimeout),
				server.WithVersion(cmd.Root().Version),
				server.WithLogger(a.logger),
			)
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().String("listen", ":8080", "Address the API listens on ($SINKFORM_LISTEN)")
	return cmd
}

func newPromptCmd(a *app) *cobra.Command {
	var (
		flags  contextFlags
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "prompt <type>",
		Short: "Collect a sink configuration interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := a.descriptor(args[0])
			if err != nil {
				return err
			}
			formCtx, err := flags.formContext(cmd)
			if err != nil {
				return err
			}
			renderer, err := tui.New(
				// Prompts go to stderr so stdout carries only the collected record.
				tui.WithPromptDriver(tui.NewSurveyDriver(cmd.ErrOrStderr(), survey.WithStdio(os.Stdin, os.Stderr, os.Stderr))),
				tui.WithOutputFormat(tui.ParseOutputFormat(format)),
				tui.WithTranslator(a.translate()),
			)
			if err != nil {
				return err
			}
			data, err := renderer.Render(cmd.Context(), desc.GetForm(sink.ModeForm, formCtx), render.RenderOptions{
				Title:   desc.Type(),
				Locale:  a.cfg.Locale,
				Context: formCtx,
			})
			if err != nil {
				return err
			}
			return writeOutput(cmd, output, data)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, yaml, form or pretty")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (stdout if empty)")
	return cmd
}

// sinkConfig resolves kind, which must name the TDSQL-PostgreSQL sink, and
// decodes the record at path.
func (a *app) sinkConfig(cmd *cobra.Command, kind, path string) (tdsqlpostgresql.SinkConfig, error) {
	desc, err := a.descriptor(kind)
	if err != nil {
		return tdsqlpostgresql.SinkConfig{}, err
	}
	if desc.Type() != tdsqlpostgresql.Type {
		return tdsqlpostgresql.SinkConfig{}, fmt.Errorf("%s sinks have no database operations", desc.Type())
	}
	if strings.TrimSpace(path) == "" {
		return tdsqlpostgresql.SinkConfig{}, fmt.Errorf("--values is required")
	}
	values, err := readValues(cmd, path)
	if err != nil {
		return tdsqlpostgresql.SinkConfig{}, err
	}
	return tdsqlpostgresql.DecodeConfig(values)
}

func newCheckCmd(a *app) *cobra.Command {
	var values string
	cmd := &cobra.Command{
		Use:   "check <type>",
		Short: "Test the database connection of a sink record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.sinkConfig(cmd, args[0], values)
			if err != nil {
				return err
			}
			if err := tdsqlpostgresql.CheckConnection(cmd.Context(), cfg, a.cfg.ConnectTimeout); err != nil {
				logging.From(cmd.Context()).Warn("connection check failed", zap.Error(err))
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "connection ok")
			return err
		},
	}
	cmd.Flags().StringVar(&values, "values", "", "JSON or YAML file with the sink record, - for stdin")
	return cmd
}

func newCreateResourceCmd(a *app) *cobra.Command {
	var (
		values string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "create-resource <type>",
		Short: "Create or extend the destination table of a sink record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.sinkConfig(cmd, args[0], values)
			if err != nil {
				return err
			}
			if err := cfg.Check(); err != nil {
				return err
			}

			if dryRun {
				def := cfg.TableDef()
				stmts := append([]string{postgres.CreateSchemaSQL(def.Schema)}, postgres.CreateTableSQL(def)...)
				return writeOutput(cmd, "", []byte(strings.Join(stmts, ";\n")+";\n"))
			}

			ctx := cmd.Context()
			client, err := tdsqlpostgresql.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			result, err := tdsqlpostgresql.NewResourceOperator(client).Apply(ctx, cfg)
			if err != nil {
				return err
			}
			data, err := encode(result, "json")
			if err != nil {
				return err
			}
			return writeOutput(cmd, "", data)
		},
	}
	cmd.Flags().StringVar(&values, "values", "", "JSON or YAML file with the sink record, - for stdin")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the DDL instead of executing it")
	return cmd
}

func newLintCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lint [type...]",
		Short: "Check that every rule string agrees with the predicate it mirrors",
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := args
			if len(kinds) == 0 {
				kinds = a.sinks.List()
			}
			eval := expr.New()
			var violations []sink.Violation
			for _, kind := range kinds {
				desc, err := a.descriptor(kind)
				if err != nil {
					return err
				}
				violations = append(violations, sink.Lint(desc, eval)...)
			}
			for _, v := range violations {
				fmt.Fprintln(cmd.ErrOrStderr(), v.String())
			}
			if len(violations) > 0 {
				return fmt.Errorf("%d rule violations", len(violations))
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%d sink types ok\n", len(kinds))
			return err
		},
	}
}
