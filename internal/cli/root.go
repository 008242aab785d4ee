package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/uaenergy/news/internal/app"
	"github.com/uaenergy/news/internal/config"
	"github.com/uaenergy/news/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "uaenergy",
	Short: "Scrape and analyse ua-energy.org news",
	Long: `uaenergy downloads the daily news of the Ukrainian energy portal ua-energy.org
and enriches it with tag statistics, topic models and named entities.

Datasets are stored as Parquet by default and can be exported to JSON, CSV,
XLSX and Markdown.`,
	Version:      "0.1.0",
	SilenceUsage: true,
}

// Execute runs the root command with ctx, which is cancelled on interrupt.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Lazily initialize the application before running commands (avoid starting app for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetAppFromCmd(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(rootCmd)
		if err != nil {
			return err
		}

		appCtx, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, appCtx)
		return nil
	}

	// Ensure app is closed after command runs
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		appCtx := GetAppFromCmd(cmd)
		if appCtx == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), appCtx.Config.HTTPTimeout)
		defer cancel()
		_ = appCtx.Close(ctx)
		SetApp(cmd, nil)
	}
}

func init() {
	// Register centralized flags
	config.RegisterFlags(rootCmd)

	rootCmd.Flags().BoolP("help", "h", false, "Help for uaenergy")
	rootCmd.Flags().Bool("version", false, "Version for uaenergy")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetHelpFunc(printHelp)
	rootCmd.SetUsageFunc(printUsage)
}

// printHelp renders the colourised --help page
func printHelp(cmd *cobra.Command, _ []string) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "\n%s\n", ui.Value(strings.ToUpper(cmd.Name())))
	if cmd.Short != "" {
		fmt.Fprintln(w, cmd.Short)
	}
	if long := strings.TrimSpace(cmd.Long); long != "" && long != cmd.Short {
		fmt.Fprintf(w, "\n%s\n", long)
	}

	writeUsage(w, cmd)

	if cmd.HasExample() {
		fmt.Fprintf(w, "\n%s\n", ui.Heading("Examples"))
		for _, line := range strings.Split(cmd.Example, "\n") {
			switch line = strings.TrimSpace(line); {
			case line == "":
				fmt.Fprintln(w)
			case strings.HasPrefix(line, "#"):
				fmt.Fprintf(w, "  %s\n", ui.Dim(line))
			default:
				fmt.Fprintf(w, "  %s\n", ui.Success("$ "+line))
			}
		}
	}

	writeCommands(w, cmd)
	writeFlags(w, "Flags", cmd.LocalFlags())
	writeFlags(w, "Global Flags", cmd.InheritedFlags())

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "\n%s\n", ui.Dim(fmt.Sprintf("Use \"%s <command> --help\" for more information about a command.", cmd.CommandPath())))
	}
	fmt.Fprintln(w)
}

// printUsage is shown on stderr after a usage error
func printUsage(cmd *cobra.Command) error {
	w := cmd.ErrOrStderr()
	writeUsage(w, cmd)
	writeCommands(w, cmd)
	writeFlags(w, "Flags", cmd.LocalFlags())
	fmt.Fprintf(w, "\n%s\n", ui.Dim(fmt.Sprintf("Use \"%s --help\" for more information.", cmd.CommandPath())))
	return nil
}

func writeUsage(w io.Writer, cmd *cobra.Command) {
	fmt.Fprintf(w, "\n%s\n", ui.Heading("Usage"))
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s\n", ui.Info(cmd.UseLine()))
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s <command> [flags]\n", ui.Info(cmd.CommandPath()))
	}
}

func writeCommands(w io.Writer, cmd *cobra.Command) {
	var subs []*cobra.Command
	width := 0
	for _, c := range cmd.Commands() {
		if c.IsAvailableCommand() && c.Name() != "help" {
			subs = append(subs, c)
			width = max(width, len(c.Name()))
		}
	}
	if len(subs) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s\n", ui.Heading("Commands"))
	for _, c := range subs {
		fmt.Fprintf(w, "  %s%s  %s\n", ui.Value(c.Name()), strings.Repeat(" ", width-len(c.Name())), ui.Dim(c.Short))
	}
}

// writeFlags lists the visible flags of fs as "-o, --output string  usage (default x)"
func writeFlags(w io.Writer, title string, fs *pflag.FlagSet) {
	var names, usages []string
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := "--" + f.Name
		if f.Shorthand != "" {
			name = "-" + f.Shorthand + ", " + name
		}
		varname, usage := pflag.UnquoteUsage(f)
		if varname != "" {
			name += " " + varname
		}
		switch f.DefValue {
		case "", "false", "0", "[]":
		default:
			usage += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		names = append(names, name)
		usages = append(usages, usage)
	})
	if len(names) == 0 {
		return
	}

	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}
	fmt.Fprintf(w, "\n%s\n", ui.Heading(title))
	for i, n := range names {
		fmt.Fprintf(w, "  %s%s  %s\n", ui.Success(n), strings.Repeat(" ", width-len(n)), ui.Dim(usages[i]))
	}
}
