package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joern1811/wanotebook/internal/adapter/parser"
	"github.com/joern1811/wanotebook/internal/adapter/renderer"
	"github.com/joern1811/wanotebook/internal/adapter/transcriber"
	"github.com/joern1811/wanotebook/internal/app"
	"github.com/joern1811/wanotebook/internal/domain"
)

var (
	fromStr    string
	toStr      string
	format     string
	dateOrder  string
	transcribe bool
)

var rootCmd = &cobra.Command{
	Use:   "wanotebook <export> <output-dir>",
	Short: "Convert WhatsApp chat exports to monthly NotebookLM markdown",
	Long: `wanotebook converts a WhatsApp chat export (folder or .zip) into one
markdown document per calendar month, ready for bulk upload to NotebookLM.
Images are embedded as base64; videos, audio and documents are referenced
by name. With --transcribe, voice notes are transcribed via the OpenAI
Whisper API.`,
	Args: cobra.ExactArgs(2),
	RunE: runRoot,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().StringVar(&fromStr, "from", "", `Start time filter (format: "DD.MM.YYYY" or "DD.MM.YYYY HH:MM")`)
	rootCmd.Flags().StringVar(&toStr, "to", "", `End time filter (format: "DD.MM.YYYY" or "DD.MM.YYYY HH:MM")`)
	rootCmd.Flags().StringVarP(&format, "format", "f", "markdown", `Output format: "markdown" or "html"`)
	rootCmd.Flags().StringVar(&dateOrder, "date-order", "", `Ambiguous date interpretation: "day-first" or "month-first" (default from config, else day-first)`)
	rootCmd.Flags().BoolVar(&transcribe, "transcribe", false, "Transcribe voice notes via the OpenAI Whisper API")
}

func configDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		configHome = filepath.Join(home, ".config")
	}

	return filepath.Clean(filepath.Join(configHome, app.ApplicationName))
}

func initConfig() {
	dir := configDir()

	if _, err := os.Stat(dir); os.IsNotExist(err) { //nolint:gosec // path is constructed from XDG_CONFIG_HOME or user home dir
		err = os.MkdirAll(dir, 0750) //nolint:gosec // see above
		cobra.CheckErr(err)
	}

	viper.AddConfigPath(dir)
	viper.SetConfigType("json")
	viper.SetConfigName("config")

	viper.SetDefault("date_order", string(parser.DayFirst))

	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))
	viper.AutomaticEnv()

	// Silently ignore missing config file
	_ = viper.ReadInConfig()

	// Bridge config value to environment variable for OpenAI SDK
	if apiKey := viper.GetString("openai_api_key"); apiKey != "" {
		if os.Getenv("OPENAI_API_KEY") == "" {
			_ = os.Setenv("OPENAI_API_KEY", apiKey)
		}
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	exportPath, outputDir := args[0], args[1]

	from, err := parseTime(fromStr)
	if err != nil {
		return fmt.Errorf("parsing --from: %w", err)
	}

	to, err := parseTime(toStr)
	if err != nil {
		return fmt.Errorf("parsing --to: %w", err)
	}

	// If --to is date-only, set to end of day
	if to != nil && !strings.Contains(toStr, " ") {
		endOfDay := to.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		to = &endOfDay
	}

	order, err := resolveDateOrder()
	if err != nil {
		return err
	}

	var r domain.GroupRenderer
	switch format {
	case "markdown":
		r = &renderer.MarkdownRenderer{}
	case "html":
		r = renderer.NewHTMLRenderer()
	default:
		return fmt.Errorf(`unknown format %q (expected "markdown" or "html")`, format)
	}

	p := &parser.WhatsAppParser{DateOrder: order}
	t := transcriber.NewOpenAITranscriber()

	svc := app.NewConvertService(p, t, r)

	opts := app.Options{From: from, To: to, Transcribe: transcribe}

	ctx := context.Background()
	if err := svc.Process(ctx, exportPath, outputDir, opts); err != nil {
		p.Cleanup()
		return err
	}

	p.Cleanup()
	return nil
}

func resolveDateOrder() (parser.DateOrder, error) {
	value := dateOrder
	if value == "" {
		value = viper.GetString("date_order")
	}

	switch parser.DateOrder(value) {
	case parser.DayFirst, parser.MonthFirst:
		return parser.DateOrder(value), nil
	default:
		return "", fmt.Errorf(`unknown date order %q (expected "day-first" or "month-first")`, value)
	}
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	formats := []string{
		"02.01.2006 15:04",
		"02.01.2006",
	}

	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("unknown time format: %q (expected DD.MM.YYYY or DD.MM.YYYY HH:MM)", s)
}
