package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/kanavox/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kanavox [text]",
		Short: "Batch speech synthesis with a VOICEVOX engine",
		Long: `kanavox renders text to speech files using a local VOICEVOX compatible engine.

Each line of the input list becomes one wav file. A line may carry an output
name after a colon ("ハローワールド:greeting"). Latin words can be turned into
katakana through a local dictionary before synthesis.

Examples:
  kanavox                              # Render every line of words.txt
  kanavox --batch lines.txt -o out     # Render another list into out/
  kanavox こんにちは --name hello       # Render a single text
  kanavox --transliterate "Hello World"
  kanavox --list-presets               # Show the presets of the engine`,
		Args:         cobra.MaximumNArgs(1),
		Version:      internal.Version,
		SilenceUsage: true,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.kanavox.yaml)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")

	// Local flags
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output directory")
	cmd.Flags().StringVarP(&flags.BatchFile, "batch", "b", flags.BatchFile, "Input list (one entry per line)")
	cmd.Flags().StringVar(&flags.Name, "name", "", "Output name for single text mode")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move the existing output files to an archive directory and exit")
	cmd.Flags().BoolVar(&flags.ListPresets, "list-presets", false, "List the presets configured on the engine")
	cmd.Flags().StringVar(&flags.ImportDict, "import-dict", "", "Import word,kana rows from a CSV file into the dictionary and exit")
	cmd.Flags().StringVar(&flags.ReportFile, "report", "", "Write a YAML report of the batch run to this file")
	cmd.Flags().IntVar(&flags.Retries, "retries", 0, "Retry failed entries this many times")

	// Engine flags
	cmd.Flags().StringVar(&flags.EngineURL, "engine-url", flags.EngineURL, "Base URL of the synthesis engine")
	cmd.Flags().DurationVar(&flags.EngineTimeout, "engine-timeout", flags.EngineTimeout, "Timeout of a single engine request")
	cmd.Flags().Float64Var(&flags.RateLimit, "rate-limit", 0, "Maximum engine requests per second (0 = unlimited)")
	cmd.Flags().IntVar(&flags.BreakerFailures, "breaker-failures", flags.BreakerFailures, "Consecutive engine failures before requests are short-circuited (0 = never)")

	// Synthesis flags
	cmd.Flags().IntVarP(&flags.Speaker, "speaker", "s", flags.Speaker, "Speaker (style) id")
	cmd.Flags().IntVarP(&flags.Preset, "preset", "p", flags.Preset, "Preset id used for rendering")
	cmd.Flags().BoolVar(&flags.NoPreset, "no-preset", false, "Render with the plain speaker instead of a preset")
	cmd.Flags().Float64Var(&flags.SpeedScale, "speed", flags.SpeedScale, "Speed scale")
	cmd.Flags().Float64Var(&flags.VolumeScale, "volume", flags.VolumeScale, "Volume scale")
	cmd.Flags().Float64Var(&flags.IntonationScale, "intonation", flags.IntonationScale, "Intonation scale")
	cmd.Flags().Float64Var(&flags.PrePhonemeLength, "pre-phoneme", flags.PrePhonemeLength, "Silence before the speech in seconds")
	cmd.Flags().Float64Var(&flags.PostPhonemeLength, "post-phoneme", flags.PostPhonemeLength, "Silence after the speech in seconds")
	cmd.Flags().BoolVar(&flags.NoDiagnosticQuery, "no-diagnostic-query", false, "Skip the preset-less query issued before a preset query")

	// Transliteration flags
	cmd.Flags().BoolVarP(&flags.Transliterate, "transliterate", "t", false, "Transliterate Latin words to katakana before synthesis")
	cmd.Flags().StringVar(&flags.DictFile, "dict", defaultDictFile(), "Transliteration dictionary (SQLite)")
	cmd.Flags().StringVar(&flags.LLM, "llm", "", "Ask an LLM for words missing from the dictionary: openai or gemini")
	cmd.Flags().StringVar(&flags.LLMModel, "llm-model", "", "Model used by --llm (default depends on the provider)")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func defaultDictFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "kana.db"
	}
	return filepath.Join(home, ".local", "share", "kanavox", "kana.db")
}

func bindFlagsToViper(cmd *cobra.Command) {
	bindings := map[string]string{
		"output.directory":              "output",
		"output.report":                 "report",
		"batch.file":                    "batch",
		"batch.retries":                 "retries",
		"engine.url":                    "engine-url",
		"engine.timeout":                "engine-timeout",
		"engine.rate_limit":             "rate-limit",
		"engine.breaker_failures":       "breaker-failures",
		"synthesis.speaker":             "speaker",
		"synthesis.preset":              "preset",
		"synthesis.no_preset":           "no-preset",
		"synthesis.speed":               "speed",
		"synthesis.volume":              "volume",
		"synthesis.intonation":          "intonation",
		"synthesis.pre_phoneme":         "pre-phoneme",
		"synthesis.post_phoneme":        "post-phoneme",
		"synthesis.no_diagnostic_query": "no-diagnostic-query",
		"transliterate.enabled":         "transliterate",
		"transliterate.dictionary":      "dict",
		"transliterate.llm":             "llm",
		"transliterate.llm_model":       "llm-model",
	}
	for key, name := range bindings {
		_ = viper.BindPFlag(key, cmd.Flags().Lookup(name))
	}
}

// InitConfig initializes viper configuration. A .env file in the working
// directory is loaded into the environment first.
func InitConfig(cfgFile string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search config in home directory with name ".kanavox" (without extension)
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".kanavox")
	}

	// Environment variables
	viper.SetEnvPrefix("KANAVOX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	slog.Debug("Using config file", "path", viper.ConfigFileUsed())
	return nil
}

// LoadConfig copies the effective configuration into flags. Values come from
// the command line when set there, else from the environment or the config
// file, else from the flag defaults.
func LoadConfig(flags *Flags) {
	flags.OutputDir = viper.GetString("output.directory")
	flags.ReportFile = viper.GetString("output.report")
	flags.BatchFile = viper.GetString("batch.file")
	flags.Retries = viper.GetInt("batch.retries")

	flags.EngineURL = viper.GetString("engine.url")
	flags.EngineTimeout = viper.GetDuration("engine.timeout")
	flags.RateLimit = viper.GetFloat64("engine.rate_limit")
	flags.BreakerFailures = viper.GetInt("engine.breaker_failures")

	flags.Speaker = viper.GetInt("synthesis.speaker")
	flags.Preset = viper.GetInt("synthesis.preset")
	flags.NoPreset = viper.GetBool("synthesis.no_preset")
	flags.SpeedScale = viper.GetFloat64("synthesis.speed")
	flags.VolumeScale = viper.GetFloat64("synthesis.volume")
	flags.IntonationScale = viper.GetFloat64("synthesis.intonation")
	flags.PrePhonemeLength = viper.GetFloat64("synthesis.pre_phoneme")
	flags.PostPhonemeLength = viper.GetFloat64("synthesis.post_phoneme")
	flags.NoDiagnosticQuery = viper.GetBool("synthesis.no_diagnostic_query")

	flags.Transliterate = viper.GetBool("transliterate.enabled")
	flags.DictFile = viper.GetString("transliterate.dictionary")
	flags.LLM = viper.GetString("transliterate.llm")
	flags.LLMModel = viper.GetString("transliterate.llm_model")
}

// SetupLogging installs the diagnostic logger on stderr
func SetupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("transliterate.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if key := os.Getenv(name); key != "" {
			return key
		}
	}
	return viper.GetString("transliterate.gemini_key")
}
