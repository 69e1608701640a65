package main

import (
	"context"
	"flag"
	"os"

	"festsched/internal/app"
	"festsched/internal/config"
	appLog "festsched/internal/log"
)

type flagConfig struct {
	configPath string
	program    string
	listen     string
	logLevel   string
	once       bool
	exportPath string
	importSrc  string
}

func main() {
	os.Exit(run())
}

func run() int {
	flags := parseFlags()
	appLog.SetLevel(appLog.ParseLevel(flags.logLevel))
	defer appLog.Sync()

	appLog.Info("festsched starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		return 1
	}

	// CLI flags override the config file.
	if flags.program != "" {
		conf.ProgramPath = flags.program
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"program", conf.ProgramPath,
		"refresh", conf.RefreshCron,
		"days", len(conf.Days),
		"target_audience", conf.TargetAudience,
		"basic_auth", conf.BasicAuth != nil,
	)

	a, err := app.New(conf)
	if err != nil {
		appLog.Error("failed to initialise", err)
		return 1
	}

	if flags.once || flags.exportPath != "" || flags.importSrc != "" {
		return oneShot(a, flags)
	}

	if err := a.Run(context.Background()); err != nil {
		appLog.Error("festsched exited with error", err)
		return 1
	}
	return 0
}

// oneShot runs the requested offline commands and exits. The exit code
// is non-zero when anything failed or did not validate.
func oneShot(a *app.App, flags flagConfig) int {
	code := 0

	if flags.once {
		ok, err := a.Check(os.Stdout)
		if err != nil {
			appLog.Error("program check failed", err)
			return 1
		}
		if !ok {
			code = 2
		}
	}

	if flags.exportPath != "" {
		if err := a.Export(flags.exportPath); err != nil {
			appLog.Error("export failed", err, "path", flags.exportPath)
			return 1
		}
		appLog.Info("program exported", "path", flags.exportPath)
	}

	if flags.importSrc != "" {
		sum, err := a.Import(context.Background(), flags.importSrc, os.Stdout)
		if err != nil {
			appLog.Error("import failed", err, "source", flags.importSrc)
			return 1
		}
		appLog.Info("import checked",
			"accepted", sum.Accepted,
			"rejected", sum.Rejected,
			"skipped", sum.Skipped,
		)
		if sum.Rejected > 0 {
			code = 2
		}
	}
	return code
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "festsched.yaml", "Path to config file")
	flag.StringVar(&cfg.program, "program", "", "Program file (overrides config if set)")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&cfg.once, "once", false, "Validate the program, print the report and exit")
	flag.StringVar(&cfg.exportPath, "export", "", "Write the program as an ICS calendar to this file and exit")
	flag.StringVar(&cfg.importSrc, "import", "", "Validate draft events from an ICS file or http(s) URL and exit")

	flag.Parse()

	return cfg
}
