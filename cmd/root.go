package cmd

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"emperror.dev/errors"
	"github.com/NYTimes/logrotate"
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/apex/log/handlers/multi"
	"github.com/spf13/cobra"

	"github.com/priyxstudio/pub/config"
	"github.com/priyxstudio/pub/evaluator"
	"github.com/priyxstudio/pub/generator"
	"github.com/priyxstudio/pub/internal/database"
	"github.com/priyxstudio/pub/modules"
	"github.com/priyxstudio/pub/router"
	"github.com/priyxstudio/pub/system"
)

var (
	configPath = config.GetDefaultConfigLocation()
	debug      = false
)

var rootCommand = &cobra.Command{
	Use:   "pub",
	Short: "Runs the module API server, generating and running modules from their descriptions.",
	PreRun: func(cmd *cobra.Command, args []string) {
		initConfig()
		initLogging()
	},
	Run: rootCmdRun,
}

var versionCommand = &cobra.Command{
	Use:   "version",
	Short: "Prints the current executable version and exits.",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Printf("pub v%s\n", system.Version)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCommand.Execute(); err != nil {
		log.WithField("error", err).Fatal("failed to execute command")
	}
}

func init() {
	rootCommand.PersistentFlags().StringVar(&configPath, "config", config.GetDefaultConfigLocation(), "set the location for the configuration file")
	rootCommand.PersistentFlags().BoolVar(&debug, "debug", false, "pass in order to run in debug mode")

	rootCommand.AddCommand(versionCommand)
	rootCommand.AddCommand(newListCommand())
	rootCommand.AddCommand(newExportCommand())
	rootCommand.AddCommand(newConfigureCommand())
}

func rootCmdRun(cmd *cobra.Command, _ []string) {
	log.WithField("version", system.Version).Info("starting module server")

	if err := config.ConfigureDirectories(); err != nil {
		log.WithField("error", err).Fatal("failed to configure system directories")
	}
	c := config.Get()
	if err := database.Initialize(c.System.RootDirectory); err != nil {
		log.WithField("error", err).Fatal("failed to initialize database")
	}

	registry := newRegistry(c)
	if err := registry.Load(cmd.Context()); err != nil {
		// A malformed record leaves the registry empty; the server still
		// starts so the modules can be managed.
		log.WithField("error", err).Error("failed to load modules")
	}
	registry.Activate()

	var fixer *modules.AutoFixer
	if interval := c.Modules.FixInterval(); interval > 0 {
		fixer = modules.NewAutoFixer(registry, interval, c.Modules.MaxFixAttempts)
		if err := fixer.Start(); err != nil {
			log.WithField("error", err).Fatal("failed to start module auto-fixer")
		}
	}

	s := &http.Server{
		Addr:    c.Api.Host + ":" + strconv.Itoa(c.Api.Port),
		Handler: router.Configure(registry),
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	errs := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"use_ssl": c.Api.Ssl.Enabled,
			"host":    c.Api.Host,
			"port":    c.Api.Port,
		}).Info("configuring internal webserver")

		var err error
		if c.Api.Ssl.Enabled {
			err = s.ListenAndServeTLS(c.Api.Ssl.CertificateFile, c.Api.Ssl.KeyFile)
		} else {
			err = s.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errs:
		log.WithField("error", err).Error("failed to serve webserver")
	case sg := <-sig:
		log.WithField("signal", sg.String()).Info("received signal, shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		log.WithField("error", err).Warn("failed to shut down webserver cleanly")
	}
	if fixer != nil {
		if err := fixer.Stop(); err != nil {
			log.WithField("error", err).Warn("failed to stop module auto-fixer")
		}
	}
	registry.Close()
}

// newRegistry wires the registry to the database and the configured
// generator.
func newRegistry(c *config.Configuration) *modules.Registry {
	client := generator.New(
		c.Generator.Endpoint,
		generator.WithCredentials(c.Generator.ApiKey),
		generator.WithModel(c.Generator.Model),
		generator.WithMaxRetries(c.Generator.MaxRetries),
		generator.WithRateLimit(c.Generator.RequestsPerSecond),
	)
	return modules.NewRegistry(
		modules.NewDatabaseStore(database.Instance()),
		client,
		evaluator.New(),
		modules.WithGenerationTimeout(c.Generator.GenerationTimeout()),
		modules.WithCascadeLimit(c.Modules.CascadeLimit),
		modules.WithLoadWorkers(c.Modules.LoadWorkers),
		modules.WithOutputLines(c.Modules.OutputLines),
	)
}

// Reads the configuration from the disk and then sets up the global singleton
// with all the configuration values.
func initConfig() {
	if !filepath.IsAbs(configPath) {
		d, err := filepath.Abs(configPath)
		if err != nil {
			fatal("cmd/root: failed to get path to config file", err)
		}
		configPath = d
	}
	if err := config.FromFile(configPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			exitWithConfigurationNotice()
		}
		fatal("cmd/root: error while reading configuration file", err)
	}
	if debug && !config.Get().Debug {
		config.SetDebugViaFlag(debug)
	}
}

// Configures the global logger for the application. Everything goes to the
// terminal, and as JSON to a file in the log directory when one can be opened.
func initLogging() {
	handler := log.Handler(cli.New(os.Stderr))
	dir := config.Get().System.LogDirectory
	if err := os.MkdirAll(dir, 0o700); err == nil {
		// The file is reopened on SIGHUP so that it can be rotated externally.
		f, err := logrotate.NewFile(filepath.Join(dir, "pub.log"))
		if err == nil {
			handler = multi.New(handler, json.New(f))
		}
	}
	log.SetHandler(handler)
	log.SetLevel(log.InfoLevel)
	if config.Get().Debug {
		log.SetLevel(log.DebugLevel)
	}
}

// Prints a message to the terminal when the configuration file can't be found.
func exitWithConfigurationNotice() {
	fmt.Printf(`
No configuration file was found at %s.

Create one with at least an authentication token and a generator API key:

  token: <random string clients send as a bearer token>
  generator:
    api_key: <api key>

or run "pub configure --config %s token <value>" to start one.
`, configPath, configPath)
	os.Exit(1)
}

func fatal(msg string, err error) {
	log.SetHandler(cli.Default)
	log.WithField("error", err).Fatal(msg)
}
