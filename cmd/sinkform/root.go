package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/goliatone/go-sinkform/pkg/config"
	"github.com/goliatone/go-sinkform/pkg/i18n"
	"github.com/goliatone/go-sinkform/pkg/logging"
	"github.com/goliatone/go-sinkform/pkg/render"
	"github.com/goliatone/go-sinkform/pkg/server"
	"github.com/goliatone/go-sinkform/pkg/sink"
	"github.com/goliatone/go-sinkform/pkg/sink/tdsqlpostgresql"
)

// app carries the state resolved once the flags are parsed.
type app struct {
	v         *viper.Viper
	cfg       config.Config
	logger    *zap.Logger
	catalog   *i18n.Catalog
	sinks     *sink.Registry
	renderers *render.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	cmd := &cobra.Command{
		Use:           "sinkform",
		Short:         "Describe, render and provision TDSQL-PostgreSQL data sinks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "Path to a config file ($SINKFORM_CONFIG)")
	flags.String(config.KeyLocale, i18n.DefaultLocale, "Locale used for labels and messages ($SINKFORM_LOCALE)")
	flags.String(config.KeyCatalogDir, "", "Directory of catalog files overlaid on the embedded ones ($SINKFORM_CATALOG_DIR)")
	flags.String(config.KeyLogLevel, "info", "Log level: debug, info, warn or error ($SINKFORM_LOG_LEVEL)")
	flags.String(config.KeyLogFormat, logging.FormatJSON, "Log format: json or console ($SINKFORM_LOG_FORMAT)")
	flags.Duration(config.KeyConnectTimeout, config.Defaults[config.KeyConnectTimeout].(time.Duration), "Timeout of database connection attempts ($SINKFORM_CONNECT_TIMEOUT)")

	cmd.AddCommand(
		newListCmd(a),
		newFormCmd(a),
		newColumnsCmd(a),
		newSchemaCmd(a),
		newServeCmd(a),
		newPromptCmd(a),
		newCheckCmd(a),
		newCreateResourceCmd(a),
		newLintCmd(a),
	)
	return cmd
}

// setup binds the parsed flags into viper and builds the shared services.
func (a *app) setup(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	cfg, err := config.Load(a.v, a.v.GetString("config"))
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, logging.WithOutput(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	a.logger = logger
	cmd.SetContext(logging.WithLogger(cmd.Context(), logger))

	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}
	a.catalog = catalog

	a.sinks = sink.NewRegistry(catalog)
	if err := tdsqlpostgresql.Register(a.sinks); err != nil {
		return err
	}

	a.renderers, err = server.DefaultRenderers()
	if err != nil {
		return err
	}
	logger.Debug("sinkform configured",
		zap.String("locale", cfg.Locale),
		zap.Strings("sinks", a.sinks.List()),
		zap.Strings("renderers", a.renderers.List()),
	)
	return nil
}

func (a *app) descriptor(kind string) (sink.Descriptor, error) {
	return a.sinks.Descriptor(kind, a.cfg.Locale)
}

func (a *app) translate() i18n.Func {
	return i18n.Bind(a.catalog, a.cfg.Locale)
}
