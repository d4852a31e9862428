// notes2latex uploads handwritten-note images to the notestolatex.com web
// converter and saves the recognized LaTeX, one .txt file per image.
// PDF arguments are expanded to one image per page first.
//
// Usage:
//
//	notes2latex <file1> [file2] [file3.pdf] ...
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	noteslatex "github.com/porticus-lab/go-notes-latex"
)

// version is set at build time via ldflags.
var version = "dev"

// errReported signals exit status 1 without an extra error line; the
// command has already printed what the user needs to see.
var errReported = errors.New("already reported")

var rootCmd = &cobra.Command{
	Use:   "notes2latex <file1> [file2] [file3.pdf] ...",
	Short: "Convert handwritten notes to LaTeX via notestolatex.com",
	Long: `notes2latex drives the notestolatex.com web converter through Chrome: each
image is uploaded, the Transform button is clicked, and the recognized LaTeX
is saved as <label>.txt in the output directory. PDF arguments are rasterized
to one PNG per page first, which requires pdftoppm (poppler-utils) or mutool
(mupdf-tools) in PATH.

The browser window is visible by default so conversions can be watched; pass
--headless for unattended runs.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./notes2latex.yaml or ~/.config/notes2latex/config.yaml)")

	rootCmd.Flags().Bool("headless", false, "run the browser without a visible window")
	rootCmd.Flags().Bool("no-sandbox", false, "disable the Chrome sandbox (required when running as root)")
	rootCmd.Flags().Bool("auto-download", false, "download a Chromium build when no browser is installed")
	rootCmd.Flags().String("chrome-path", "", "path to the Chrome or Chromium executable")
	rootCmd.Flags().String("url", noteslatex.DefaultTargetURL, "conversion service URL")
	rootCmd.Flags().String("output-dir", noteslatex.DefaultOutputDir, "directory for the .txt results")
	rootCmd.Flags().Duration("delay", noteslatex.DefaultDelay, "pause between consecutive uploads")
	rootCmd.Flags().Duration("result-timeout", noteslatex.DefaultResultTimeout, "how long to wait for each conversion result")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("notes2latex")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "notes2latex"))
		}
	}

	viper.SetEnvPrefix("NOTES2LATEX")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// Settings resolve as flag > config file / environment > flag default.

func stringSetting(cmd *cobra.Command, name string) string {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetString(name)
	}
	v, _ := cmd.Flags().GetString(name)
	return v
}

func boolSetting(cmd *cobra.Command, name string) bool {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetBool(name)
	}
	v, _ := cmd.Flags().GetBool(name)
	return v
}

func durationSetting(cmd *cobra.Command, name string) time.Duration {
	if !cmd.Flags().Changed(name) && viper.IsSet(name) {
		return viper.GetDuration(name)
	}
	v, _ := cmd.Flags().GetDuration(name)
	return v
}

func printUsage() {
	fmt.Print(`Usage: notes2latex <file1> [file2] [file3.pdf] ...
Supports: .png, .jpg, .jpeg, .pdf
`)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		printUsage()
		return errReported
	}

	outputDir := stringSetting(cmd, "output-dir")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	ctx := context.Background()

	items, err := noteslatex.ExpandInputs(ctx, args, nil, os.Stdout)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No valid files to process")
		return errReported
	}

	absDir, err := filepath.Abs(outputDir)
	if err != nil {
		absDir = outputDir
	}
	fmt.Printf("\nWill process %d image(s)\n", len(items))
	fmt.Printf("Output directory: %s\n", absDir)

	opts := []noteslatex.Option{
		noteslatex.WithProgress(os.Stdout),
		noteslatex.WithTargetURL(stringSetting(cmd, "url")),
		noteslatex.WithResultTimeout(durationSetting(cmd, "result-timeout")),
	}
	if p := stringSetting(cmd, "chrome-path"); p != "" {
		opts = append(opts, noteslatex.WithChromePath(p))
	}
	if boolSetting(cmd, "headless") {
		opts = append(opts, noteslatex.WithHeadless())
	}
	if boolSetting(cmd, "no-sandbox") {
		opts = append(opts, noteslatex.WithNoSandbox())
	}
	if boolSetting(cmd, "auto-download") {
		opts = append(opts, noteslatex.WithAutoDownload())
	}

	u, err := noteslatex.NewUploader(opts...)
	if err != nil {
		return err
	}
	defer u.Close()

	noteslatex.RunBatch(ctx, u, items, noteslatex.BatchConfig{
		OutputDir: outputDir,
		Delay:     durationSetting(cmd, "delay"),
	}, os.Stdout)

	fmt.Printf("\n%s\n", strings.Repeat("=", 50))
	fmt.Printf("Done! Check the '%s' folder for results.\n", outputDir)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
