package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/five82/mixit/internal/config"
	"github.com/five82/mixit/internal/logging"
	"github.com/five82/mixit/internal/reporter"
	"github.com/five82/mixit/internal/util"
)

type globalFlags struct {
	config  string
	verbose bool
	logDir  string
	noLog   bool
	json    bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = fmt.Errorf("load config: %w", err)
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) verbose() bool {
	return c.flags.verbose || (c.config != nil && c.config.Logging.Verbose)
}

// session bundles the per-run log file and reporter of one command.
type session struct {
	fileLog  *logging.FileLogger
	reporter reporter.Reporter
}

func (s *session) Close() {
	logging.SetGlobal(logging.Discard())
	_ = s.fileLog.Close()
}

// openSession sets up run logging next to outputDir and picks a reporter for
// the command's output streams.
func (c *commandContext) openSession(cmd *cobra.Command, outputDir string) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logDir := firstNonEmpty(c.flags.logDir, cfg.Logging.Dir)
	if logDir == "" {
		logDir = filepath.Join(outputDir, "logs")
	}
	fileLog, err := logging.Setup(logDir, c.verbose(), c.flags.noLog || cfg.Logging.Disabled)
	if err != nil {
		return nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	level := logging.LevelInfo
	if c.verbose() {
		level = logging.LevelDebug
	}
	logging.Init(level, fileLog.Writer())
	if c.configPath != "" {
		fileLog.Info("Config: %s", c.configPath)
	}

	s := &session{fileLog: fileLog, reporter: c.newReporter(cmd.OutOrStdout(), cmd.ErrOrStderr())}
	info := util.GetSystemInfo()
	s.reporter.Hardware(reporter.HardwareSummary{Hostname: info.Hostname, NumCPU: info.NumCPU})
	fileLog.Info("Host: %s (%s/%s, %d CPUs)", info.Hostname, info.OS, info.Arch, info.NumCPU)
	return s, nil
}

func (c *commandContext) newReporter(out, errOut io.Writer) reporter.Reporter {
	if c.flags.json {
		return reporter.NewJSONReporterWithWriter(out)
	}
	return reporter.NewTerminalReporterWithWriters(out, errOut, isTerminal(errOut), c.verbose())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
