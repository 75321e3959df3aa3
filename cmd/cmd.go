package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	easy "github.com/t-tomalak/logrus-easy-formatter"

	"github.com/visviva/thorium/debug"
)

// Version is reported by `thorium --version`.
const Version = "0.1.0"

// App builds the `thorium` root command: no argument launches the REPL, one
// path argument runs that file, and cobra supplies --version/-h for free.
func App(exitCode *int) (app *cobra.Command) {
	app = &cobra.Command{
		Use:     "thorium [path]",
		Short:   "Launch the thorium bytecode interpreter",
		Version: Version,
		Args:    cobra.MaximumNArgs(1),
	}

	app.Flags().SortFlags = true
	defaultVerbosityStr := "INFO"
	verbosity := app.Flags().StringP("verbosity", "v", defaultVerbosityStr, "Logging verbosity")

	app.RunE = func(_ *cobra.Command, args []string) error {
		verbosityLvl, err := logrus.ParseLevel(*verbosity)
		if err != nil {
			verbosityLvl, _ = logrus.ParseLevel(defaultVerbosityStr)
		}
		logrus.SetLevel(verbosityLvl)
		logrus.SetFormatter(&easy.Formatter{LogFormat: "//DBG// %msg%\n"})
		debug.DEBUG = verbosityLvl >= logrus.DebugLevel

		if len(args) == 1 {
			*exitCode = runFile(args[0])
		} else {
			*exitCode = repl()
		}
		return nil
	}
	return
}

// Execute runs the CLI and returns the process exit code: 0 on success, 65
// on a compile error, 70 on a runtime error.
func Execute() int {
	exitCode := 0
	app := App(&exitCode)
	if err := app.Execute(); err != nil {
		logrus.Error(err)
		return 1
	}
	return exitCode
}
