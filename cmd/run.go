package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spigell/interview-coach/internal/ai"
	"github.com/spigell/interview-coach/internal/ai/gemini"
	"github.com/spigell/interview-coach/internal/ai/openai"
	"github.com/spigell/interview-coach/internal/auth"
	"github.com/spigell/interview-coach/internal/ingest"
	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/questions"
	"github.com/spigell/interview-coach/internal/report"
	"github.com/spigell/interview-coach/internal/scoring"
	"github.com/spigell/interview-coach/internal/secrets"
	"github.com/spigell/interview-coach/internal/skills"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptLogin  = "Log in"
	PromptSignUp = "Sign up"
	PromptQuit   = "Quit"
)

var errExit = errors.New("exit requested")

var completionItems = []string{
	"Review answers",
	"Export PDF",
	"Send results via email",
	"View history",
	"Start new interview",
	PromptQuit,
}

var documentExtensions = []string{".pdf", ".docx", ".txt", ".md"}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start an interactive interview session",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume", "r", "", "resume file to load at start (pdf, docx, txt or md)")
	runCmd.Flags().IntP("max-questions", "n", 0, "number of questions per interview (3-10)")
	runCmd.Flags().Uint64("seed", 0, "seed for question selection; 0 picks a random one")

	viper.BindPFlag("max-questions", runCmd.Flags().Lookup("max-questions"))
	viper.BindPFlag("seed", runCmd.Flags().Lookup("seed"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(logger.Options{JSON: viper.GetBool("json"), Debug: viper.GetBool("debug")})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the interview coach", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	recipient := strings.TrimSpace(config.CandidateEmail)
	if config.Auth.UsersFile != "" {
		identity, err := login(config.Auth.UsersFile, cmd.ErrOrStderr())
		if err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("logging in", zap.Error(err))
		}
		recipient = identity.Email
		logger.Info("logged in", zap.String("email", identity.Email))
	}

	grader, err := newGrader(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("model grading disabled, using lexical scoring only", zap.Error(err))
	}

	catalog := questions.DefaultCatalog()
	if config.QuestionsFile != "" {
		catalog, err = questions.LoadCatalog(config.QuestionsFile)
		if err != nil {
			logger.Fatal("loading questions", zap.Error(err))
		}
		if unused := unreachableSkills(catalog, skills.DefaultCatalog()); len(unused) > 0 {
			logger.Warn("questions for skills the extractor never reports",
				zap.Strings("skills", unused),
				zap.String("file", config.QuestionsFile),
			)
		}
	}

	rng := newRand(config.Seed)
	machine := interview.NewMachine(interview.Deps{
		Extractor: skills.NewExtractor(nil, logger),
		Selector:  questions.NewSelector(catalog, rng),
		Scorer:    scoring.New(grader, config.AI.Timeout, logger),
		Reporter:  newReporter(config, logger),
		History:   interview.NewHistory(),
	}, interview.Options{
		MaxQuestions: config.MaxQuestions,
		Recipient:    recipient,
		Rand:         rng,
	}, logger)

	reader := ingest.NewReader(logger)
	out := cmd.OutOrStdout()

	sess, greeting := machine.Start()
	printReply(out, greeting)

	if path, _ := cmd.Flags().GetString("resume"); path != "" {
		printReply(out, machine.IngestDocument(sess, reader.ExtractFile(path)))
	}

	for {
		input, err := readInput(sess)
		if err != nil {
			if errors.Is(err, errExit) {
				logger.Info("exiting", zap.String("reason", "quit requested"))
				return
			}
			logger.Fatal("reading input", zap.Error(err))
		}

		if path, ok := documentPath(sess, input); ok {
			printReply(out, machine.IngestDocument(sess, reader.ExtractFile(path)))
			continue
		}

		var reply interview.Reply
		sess, reply = machine.Handle(ctx, sess, input)
		printReply(out, reply)
	}
}

// readInput asks for the next user turn. The finished state offers a menu
// instead of free text.
func readInput(sess *interview.Session) (string, error) {
	if sess.State == interview.StateComplete {
		menu := promptui.Select{
			Label: "What's next?",
			Items: completionItems,
		}
		_, choice, err := menu.Run()
		if err != nil {
			return "", promptError(err)
		}
		if choice == PromptQuit {
			return "", errExit
		}
		return strings.ToLower(choice), nil
	}

	prompt := promptui.Prompt{Label: promptLabel(sess)}
	input, err := prompt.Run()
	if err != nil {
		return "", promptError(err)
	}

	switch strings.ToLower(strings.TrimSpace(input)) {
	case "quit", "exit":
		return "", errExit
	}
	return input, nil
}

func promptLabel(sess *interview.Session) string {
	switch sess.State {
	case interview.StateInterview:
		return fmt.Sprintf("Question %d/%d (%.0f%%)", sess.Index+1, len(sess.Questions), sess.Progress()*100)
	case interview.StateAwaitingResume:
		return "Resume (paste text or a file path)"
	case interview.StateManualSkills, interview.StateConfirmSkills:
		return "Skills"
	default:
		return "You"
	}
}

func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errExit
	}
	return err
}

// documentPath reports whether input names a résumé file that should be
// ingested instead of treated as pasted text.
func documentPath(sess *interview.Session, input string) (string, bool) {
	if sess.State != interview.StateAwaitingResume {
		return "", false
	}

	path := strings.Trim(strings.TrimSpace(input), `"'`)
	ext := strings.ToLower(filepath.Ext(path))
	supported := false
	for _, e := range documentExtensions {
		if ext == e {
			supported = true
			break
		}
	}
	if !supported {
		return "", false
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// unreachableSkills lists question bank skills that no skill catalog
// category contains; their questions are only used as last-resort filler.
func unreachableSkills(bank *questions.Catalog, known *skills.Catalog) []string {
	var out []string
	for _, skill := range bank.Skills() {
		if !known.Contains(skill) {
			out = append(out, skill)
		}
	}
	return out
}

func printReply(w io.Writer, reply interview.Reply) {
	if len(reply.Messages) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n\n", reply.String())
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed))
}

var errPasswordMismatch = errors.New("passwords do not match")

// The login dialogue reads through these so it can be scripted.
var (
	askAccountAction = promptAccountAction
	askCredentials   = promptCredentials
	askRepeat        = promptRepeatPassword
)

// login runs the account dialogue until the user is in or quits. Wrong
// credentials and rejected sign-ups are reported to out and asked again.
func login(usersFile string, out io.Writer) (*auth.Identity, error) {
	store, err := auth.Open(usersFile)
	if err != nil {
		return nil, err
	}

	for {
		action := PromptSignUp
		if store.Len() > 0 {
			if action, err = askAccountAction(); err != nil {
				return nil, err
			}
		}

		var identity *auth.Identity
		switch action {
		case PromptQuit:
			return nil, errExit
		case PromptSignUp:
			identity, err = signUp(store)
		default:
			identity, err = authenticate(store)
		}

		if err == nil {
			return identity, nil
		}
		if !retryableLogin(err) {
			return nil, err
		}
		fmt.Fprintf(out, "Login failed: %v\n", err)
	}
}

func retryableLogin(err error) bool {
	return errors.Is(err, auth.ErrInvalidCredentials) ||
		errors.Is(err, auth.ErrInvalidInput) ||
		errors.Is(err, auth.ErrUserExists) ||
		errors.Is(err, errPasswordMismatch)
}

func authenticate(store *auth.Store) (*auth.Identity, error) {
	creds, err := askCredentials()
	if err != nil {
		return nil, err
	}
	return store.Authenticate(creds.Email, creds.Password)
}

func signUp(store *auth.Store) (*auth.Identity, error) {
	creds, err := askCredentials()
	if err != nil {
		return nil, err
	}

	repeated, err := askRepeat()
	if err != nil {
		return nil, err
	}
	if repeated != creds.Password {
		return nil, errPasswordMismatch
	}

	identity, err := store.Register(creds)
	if err != nil {
		return nil, err
	}
	if err := store.Save(); err != nil {
		return nil, err
	}
	return identity, nil
}

func promptAccountAction() (string, error) {
	choice := promptui.Select{
		Label: "Account",
		Items: []string{PromptLogin, PromptSignUp, PromptQuit},
	}
	_, action, err := choice.Run()
	if err != nil {
		return "", promptError(err)
	}
	return action, nil
}

func promptCredentials() (auth.Credentials, error) {
	email := promptui.Prompt{
		Label: "Email",
		Validate: func(s string) error {
			return auth.Credentials{Email: s, Password: "placeholder"}.Validate()
		},
	}
	address, err := email.Run()
	if err != nil {
		return auth.Credentials{}, promptError(err)
	}

	password := promptui.Prompt{Label: "Password", Mask: '*'}
	secret, err := password.Run()
	if err != nil {
		return auth.Credentials{}, promptError(err)
	}

	return auth.Credentials{Email: strings.TrimSpace(address), Password: secret}, nil
}

func promptRepeatPassword() (string, error) {
	confirm := promptui.Prompt{Label: "Repeat password", Mask: '*'}
	repeated, err := confirm.Run()
	if err != nil {
		return "", promptError(err)
	}
	return repeated, nil
}

// newGrader builds the model grader for the configured provider. A nil
// grader with a nil error means model grading is switched off.
func newGrader(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Grader, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))

	var generator ai.ContentGenerator
	switch provider {
	case "", "gemini":
		provider = "gemini"
		pc := providerConfig(cfg.Gemini)
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: pc.APIKey,
			File:  pc.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}
		g, err := gemini.NewGenerator(ctx, apiKey, pc.Model)
		if err != nil {
			return nil, err
		}
		generator = g
	case "openai":
		pc := providerConfig(cfg.OpenAI)
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			Value: pc.APIKey,
			File:  pc.APIKeyFile,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY)", err)
		}
		g, err := openai.NewGenerator(apiKey, pc.Model)
		if err != nil {
			return nil, err
		}
		generator = g
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	graderLogger := logger.WithCommonFields(log, provider, generator.Model())
	return ai.NewGrader(generator, cfg.MaxLogLength, graderLogger), nil
}

func providerConfig(pc *ProviderConfig) ProviderConfig {
	if pc == nil {
		return ProviderConfig{}
	}
	return *pc
}

// newReporter wires PDF export and, when an SMTP host is configured, email
// delivery.
func newReporter(config *Config, log *zap.Logger) *report.Service {
	exporter := report.NewExporter(config.Report.OutputDir)

	smtpCfg := config.SMTP
	if smtpCfg.Host == "" {
		return report.NewService(exporter, nil, log)
	}

	password, err := secrets.Load(secrets.Source{
		Name:  "smtp password",
		Value: smtpCfg.Password,
		File:  smtpCfg.PasswordFile,
		Env:   "SMTP_PASSWORD",
	})
	if err != nil && smtpCfg.Username != "" {
		log.Warn("email delivery disabled", zap.Error(err))
		return report.NewService(exporter, nil, log)
	}

	mailer, err := report.NewMailer(report.SMTPConfig{
		Host:     smtpCfg.Host,
		Port:     smtpCfg.Port,
		Username: smtpCfg.Username,
		Password: password,
		From:     smtpCfg.From,
	})
	if err != nil {
		log.Warn("email delivery disabled", zap.Error(err))
		return report.NewService(exporter, nil, log)
	}

	return report.NewService(exporter, mailer, log)
}

// redacted returns a copy of config that is safe to log.
func redacted(config *Config) Config {
	c := *config
	hide := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}

	if c.AI != nil {
		aiCfg := *c.AI
		if aiCfg.Gemini != nil {
			g := *aiCfg.Gemini
			g.APIKey = hide(g.APIKey)
			aiCfg.Gemini = &g
		}
		if aiCfg.OpenAI != nil {
			o := *aiCfg.OpenAI
			o.APIKey = hide(o.APIKey)
			aiCfg.OpenAI = &o
		}
		c.AI = &aiCfg
	}
	if c.SMTP != nil {
		s := *c.SMTP
		s.Password = hide(s.Password)
		c.SMTP = &s
	}
	return c
}
