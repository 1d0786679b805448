package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app       = "interview-coach"
	envPrefix = "INTERVIEW"
)

type Config struct {
	MaxQuestions   int           `mapstructure:"max-questions" validate:"min=3,max=10"`
	Seed           uint64        `mapstructure:"seed"`
	CandidateEmail string        `mapstructure:"candidate-email" validate:"omitempty,email"`
	QuestionsFile  string        `mapstructure:"questions-file"`
	AI             *AIConfig     `mapstructure:"ai" validate:"required"`
	Report         *ReportConfig `mapstructure:"report" validate:"required"`
	SMTP           *SMTPConfig   `mapstructure:"smtp" validate:"required"`
	Auth           *AuthConfig   `mapstructure:"auth" validate:"required"`
}

type AIConfig struct {
	Enabled      bool            `mapstructure:"enabled"`
	Provider     string          `mapstructure:"provider" validate:"omitempty,oneof=gemini openai"`
	Timeout      time.Duration   `mapstructure:"timeout" validate:"gte=0"`
	MaxLogLength int             `mapstructure:"max-log-length" validate:"gte=0"`
	Gemini       *ProviderConfig `mapstructure:"gemini"`
	OpenAI       *ProviderConfig `mapstructure:"openai"`
}

type ProviderConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type ReportConfig struct {
	OutputDir string `mapstructure:"output-dir"`
}

type SMTPConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	PasswordFile string `mapstructure:"password-file"`
	From         string `mapstructure:"from" validate:"omitempty,email"`
}

type AuthConfig struct {
	UsersFile string `mapstructure:"users-file"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interview-coach is a terminal assistant that reads your resume and runs a technical mock interview",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-coach.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	configureViper(viper.GetViper())
}

// configureViper sets defaults and the environment mapping, so
// INTERVIEW_AI_GEMINI_API_KEY overrides ai.gemini.api-key.
func configureViper(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("max-questions", 5)
	v.SetDefault("seed", 0)
	v.SetDefault("candidate-email", "")
	v.SetDefault("questions-file", "")

	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.timeout", 20*time.Second)
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.openai.api-key", "")
	v.SetDefault("ai.openai.api-key-file", "")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")

	v.SetDefault("report.output-dir", ".")

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.password-file", "")
	v.SetDefault("smtp.from", "")

	v.SetDefault("auth.users-file", "")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Every key has a default, so running without a config file is fine.
	// A file that exists but does not parse is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	return loadConfig(viper.GetViper())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var config *Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}
