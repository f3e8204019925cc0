package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/VidaNova/AcolheBot/internal/api"
	"github.com/VidaNova/AcolheBot/internal/dispatch"
	"github.com/VidaNova/AcolheBot/internal/knowledge"
	"github.com/VidaNova/AcolheBot/internal/lockfile"
	"github.com/VidaNova/AcolheBot/internal/models"
	"github.com/VidaNova/AcolheBot/internal/queue"
	"github.com/VidaNova/AcolheBot/internal/store"
	"github.com/VidaNova/AcolheBot/internal/twiliowhatsapp"
	"github.com/VidaNova/AcolheBot/internal/util"
	"github.com/VidaNova/AcolheBot/internal/whatsapp"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for AcolheBot state data
	DefaultStateDir = "/var/lib/acolhebot"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "acolhebot.db"
	// DefaultWhatsmeowDBFileName is the default whatsmeow session database filename
	DefaultWhatsmeowDBFileName = "whatsmeow.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// One instance per state directory: the WhatsApp session and the SQLite
	// database cannot be shared.
	lock, err := lockfile.AcquireLock(*flags.stateDir)
	if err != nil {
		slog.Error("Failed to lock state directory", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	// Build module options
	storeOpts := buildStoreOptions(flags)
	msgOpts := buildTwilioOptions(flags)
	waOpts := buildWhatsAppOptions(flags)
	kbOpts := buildKnowledgeOptions(flags)
	dispatchOpts := buildDispatchOptions(flags, config)
	queueOpts := buildQueueOptions(config)
	apiOpts := buildAPIOptions(flags, config)

	// Start the service
	slog.Info("Bootstrapping AcolheBot with configured modules")
	slog.Debug("Module options counts",
		"store", len(storeOpts), "twilio", len(msgOpts), "whatsapp", len(waOpts),
		"knowledge", len(kbOpts), "dispatch", len(dispatchOpts), "queue", len(queueOpts), "api", len(apiOpts))
	if err := api.Run(storeOpts, msgOpts, waOpts, kbOpts, dispatchOpts, queueOpts, apiOpts...); err != nil {
		slog.Error("AcolheBot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("AcolheBot exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL       string
	WhatsAppDSN       string
	StateDir          string
	OpenAIKey         string
	OpenAIModel       string
	APIAddr           string
	Intercessors      []string
	Secretariat       string
	AllowedOrigins    []string
	UseWhatsmeow      bool
	KnowledgeGate     float64
	SendDelay         string
	ForwardFinalState string
}

// Flags holds command line flag values
type Flags struct {
	qrOutput     *string
	numeric      *bool
	stateDir     *string
	dbDSN        *string
	waDBDSN      *string
	openaiKey    *string
	apiAddr      *string
	intercessors *string
	secretariat  *string
	useWhatsmeow *bool
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		WhatsAppDSN:       os.Getenv("WHATSAPP_DB_DSN"),
		StateDir:          os.Getenv("ACOLHEBOT_STATE_DIR"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:       os.Getenv("OPENAI_MODEL"),
		APIAddr:           os.Getenv("API_ADDR"),
		Intercessors:      util.SplitList(os.Getenv("INTERCESSOR_PHONES")),
		Secretariat:       os.Getenv("SECRETARIAT_PHONE"),
		AllowedOrigins:    util.SplitList(os.Getenv("ALLOWED_ORIGINS")),
		UseWhatsmeow:      util.ParseBoolEnv("USE_WHATSMEOW", false),
		KnowledgeGate:     util.ParseFloatEnv("KNOWLEDGE_THRESHOLD", dispatch.DefaultKnowledgeThreshold),
		SendDelay:         os.Getenv("SEND_DELAY"),
		ForwardFinalState: os.Getenv("FORWARD_FINAL_STATE"),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No ACOLHEBOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	// The whatsmeow session gets its own database next to the main one
	if config.WhatsAppDSN == "" {
		if store.DetectDSNType(config.DatabaseURL) == "postgres" {
			config.WhatsAppDSN = config.DatabaseURL
		} else {
			config.WhatsAppDSN = filepath.Join(config.StateDir, DefaultWhatsmeowDBFileName)
		}
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"WHATSAPP_DB_DSN_SET", config.WhatsAppDSN != "",
		"ACOLHEBOT_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"INTERCESSORS", len(config.Intercessors),
		"SECRETARIAT_SET", config.Secretariat != "",
		"USE_WHATSMEOW", config.UseWhatsmeow)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput:     flag.String("qr-output", "", "path to write login QR code"),
		numeric:      flag.Bool("numeric-code", false, "use numeric login code instead of QR code"),
		stateDir:     flag.String("state-dir", config.StateDir, "state directory for AcolheBot data (overrides $ACOLHEBOT_STATE_DIR)"),
		dbDSN:        flag.String("db-dsn", config.DatabaseURL, "database DSN for the visitor store (overrides $DATABASE_URL)"),
		waDBDSN:      flag.String("wa-db-dsn", config.WhatsAppDSN, "database DSN for the whatsmeow session (overrides $WHATSAPP_DB_DSN)"),
		openaiKey:    flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		apiAddr:      flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		intercessors: flag.String("intercessors", strings.Join(config.Intercessors, ","), "comma-separated intercessor phones (overrides $INTERCESSOR_PHONES)"),
		secretariat:  flag.String("secretariat", config.Secretariat, "secretariat phone (overrides $SECRETARIAT_PHONE)"),
		useWhatsmeow: flag.Bool("use-whatsmeow", config.UseWhatsmeow, "deliver through a direct whatsmeow connection instead of Twilio (overrides $USE_WHATSMEOW)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"qrOutput", *flags.qrOutput,
		"numeric", *flags.numeric,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"waDBDSN_set", *flags.waDBDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"intercessors", *flags.intercessors,
		"secretariat_set", *flags.secretariat != "",
		"useWhatsmeow", *flags.useWhatsmeow)

	// Follow the state directory when the DSN was left at its derived default
	if *flags.dbDSN == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}
	if *flags.waDBDSN == filepath.Join(config.StateDir, DefaultWhatsmeowDBFileName) && *flags.stateDir != config.StateDir {
		*flags.waDBDSN = filepath.Join(*flags.stateDir, DefaultWhatsmeowDBFileName)
		slog.Debug("Updated waDBDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	if store.DetectDSNType(*flags.dbDSN) != "postgres" {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	}
	return storeOpts
}

// buildTwilioOptions constructs Twilio configuration options. Credentials are
// read from $TWILIO_ACCOUNT_SID, $TWILIO_AUTH_TOKEN and $TWILIO_FROM_NUMBER
// by the client itself.
func buildTwilioOptions(Flags) []twiliowhatsapp.Option {
	return nil
}

// buildWhatsAppOptions constructs whatsmeow configuration options
func buildWhatsAppOptions(flags Flags) []whatsapp.Option {
	var waOpts []whatsapp.Option
	if *flags.qrOutput != "" {
		waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
	}
	if *flags.numeric {
		waOpts = append(waOpts, whatsapp.WithNumericCode())
	}
	if *flags.waDBDSN != "" {
		waOpts = append(waOpts, whatsapp.WithDBDSN(*flags.waDBDSN))
	}
	return waOpts
}

// buildKnowledgeOptions constructs knowledge fallback configuration options
func buildKnowledgeOptions(flags Flags) []knowledge.Option {
	var kbOpts []knowledge.Option
	if *flags.openaiKey != "" {
		kbOpts = append(kbOpts, knowledge.WithAPIKey(*flags.openaiKey))
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		kbOpts = append(kbOpts, knowledge.WithModel(model))
	}
	return kbOpts
}

// buildDispatchOptions constructs dispatcher configuration options
func buildDispatchOptions(flags Flags, config Config) []dispatch.Option {
	var dispatchOpts []dispatch.Option
	if intercessors := util.SplitList(*flags.intercessors); len(intercessors) > 0 {
		dispatchOpts = append(dispatchOpts, dispatch.WithIntercessors(intercessors...))
	}
	if *flags.secretariat != "" {
		dispatchOpts = append(dispatchOpts, dispatch.WithSecretariat(*flags.secretariat))
	}
	if config.KnowledgeGate != dispatch.DefaultKnowledgeThreshold {
		dispatchOpts = append(dispatchOpts, dispatch.WithKnowledgeThreshold(config.KnowledgeGate))
	}
	if config.ForwardFinalState != "" {
		dispatchOpts = append(dispatchOpts, dispatch.WithForwardFinalState(models.State(config.ForwardFinalState)))
	}
	return dispatchOpts
}

// buildQueueOptions constructs delivery queue configuration options
func buildQueueOptions(config Config) []queue.Option {
	var queueOpts []queue.Option
	if config.SendDelay != "" {
		queueOpts = append(queueOpts, queue.WithSendDelay(util.ParseDurationEnv("SEND_DELAY", queue.DefaultSendDelay)))
	}
	return queueOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags, config Config) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if len(config.AllowedOrigins) > 0 {
		apiOpts = append(apiOpts, api.WithAllowedOrigins(config.AllowedOrigins...))
	}
	if *flags.useWhatsmeow {
		apiOpts = append(apiOpts, api.WithWhatsmeow())
	}
	return apiOpts
}
