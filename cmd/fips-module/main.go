// Command fips-module runs the power-on self-test of the cryptographic
// module, serves its status and provisions the integrity checksum.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pzverkov/quantum-go-fips/pkg/audit"
	"github.com/pzverkov/quantum-go-fips/pkg/crypto"
	"github.com/pzverkov/quantum-go-fips/pkg/fips"
	"github.com/pzverkov/quantum-go-fips/pkg/metrics"
	pkgversion "github.com/pzverkov/quantum-go-fips/pkg/version"
)

// Build-time variables (set via -ldflags)
var (
	version   = ""        // Set via -ldflags "-X main.version=x.y.z"
	buildTime = "unknown" // Set via -ldflags "-X main.buildTime=..."
	gitCommit = "unknown" // Set via -ldflags "-X main.gitCommit=..."
)

func getVersion() string {
	if version != "" {
		return version
	}
	return pkgversion.String()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	compliance bool
	auditPath  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "fips-module",
		Short: "FIPS 140-3 style module around ML-KEM-1024 and ML-DSA-65",
		Long: `fips-module operates the cryptographic module: it runs the power-on
self-test, serves the module state over HTTP and computes the integrity
checksum that release builds embed at link time.

Examples:
  # Run the power-on self-test in compliance mode
  fips-module post --compliance

  # Serve health, metrics and the operator API
  fips-module serve --config /etc/fips/module.yaml

  # Compute the checksum of a release binary
  fips-module digest ./bin/service`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Path to the YAML configuration file")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error, silent")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")
	pf.BoolVar(&opts.compliance, "compliance", false, "Force compliance mode on or off")
	pf.StringVar(&opts.auditPath, "audit-log", "", "Path to the audit log (overrides audit.path)")

	root.AddCommand(
		newPOSTCmd(opts),
		newServeCmd(opts),
		newDigestCmd(),
		newAuditCmd(),
		newHashCredentialCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig reads the configuration and applies the flag overrides.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (fips.Config, error) {
	cfg := fips.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = fips.LoadConfig(o.configPath); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("compliance") {
		cfg.ComplianceMode = o.compliance
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if o.auditPath != "" {
		cfg.Audit.Path = o.auditPath
	}
	return cfg, cfg.Validate()
}

func newLogger(cfg fips.Config, w io.Writer) *metrics.Logger {
	format := metrics.FormatText
	if strings.EqualFold(cfg.Log.Format, "json") {
		format = metrics.FormatJSON
	}
	return metrics.NewLogger(
		metrics.WithOutput(w),
		metrics.WithLevel(metrics.ParseLevel(cfg.Log.Level)),
		metrics.WithFormat(format),
	)
}

// moduleEnv is a module together with the resources it owns.
type moduleEnv struct {
	module *fips.Module
	logger *metrics.Logger
	audit  audit.Writer
}

func (e *moduleEnv) Close() error {
	return e.audit.Close()
}

// openModule builds a module from cfg writing its technical log to logOut.
func openModule(cfg fips.Config, logOut io.Writer, opts ...fips.Option) (*moduleEnv, error) {
	logger := newLogger(cfg, logOut)

	var w audit.Writer = audit.NopWriter{}
	if cfg.Audit.Path != "" {
		fw, err := audit.NewFileWriter(cfg.Audit.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open audit log: %w", err)
		}
		w = fw
	}

	base := []fips.Option{fips.WithLogger(logger), fips.WithAuditWriter(w)}
	m, err := fips.New(cfg, append(base, opts...)...)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	return &moduleEnv{module: m, logger: logger, audit: w}, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "fips-module version %s\n", getVersion())
			fmt.Fprintln(out, pkgversion.Full(crypto.FIPSMode()))
			if buildTime != "unknown" {
				fmt.Fprintf(out, "Built: %s\n", buildTime)
			}
			if gitCommit != "unknown" {
				fmt.Fprintf(out, "Commit: %s\n", gitCommit)
			}
		},
	}
}
