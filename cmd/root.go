package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shipliyo/smsgate/core/config"
	"github.com/shipliyo/smsgate/core/database"
	domainAddress "github.com/shipliyo/smsgate/domains/address"
	domainDialogue "github.com/shipliyo/smsgate/domains/dialogue"
	domainHealth "github.com/shipliyo/smsgate/domains/health"
	domainIngest "github.com/shipliyo/smsgate/domains/ingest"
	domainMessage "github.com/shipliyo/smsgate/domains/message"
	"github.com/shipliyo/smsgate/infrastructure/notifier"
	"github.com/shipliyo/smsgate/infrastructure/store"
	"github.com/shipliyo/smsgate/infrastructure/valkey"
	"github.com/shipliyo/smsgate/pkg/catalog"
	"github.com/shipliyo/smsgate/pkg/dedup"
	"github.com/shipliyo/smsgate/pkg/lang"
	"github.com/shipliyo/smsgate/pkg/msgworker"
	"github.com/shipliyo/smsgate/pkg/ratelimit"
	"github.com/shipliyo/smsgate/pkg/smsparser"
	"github.com/shipliyo/smsgate/pkg/utils"
	"github.com/shipliyo/smsgate/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serverID string

	// Infrastructure
	messageRepo  domainMessage.IMessageRepository
	vkClient     *valkey.Client
	dispatchPool *msgworker.Pool

	// Usecase
	healthUsecase   domainHealth.IHealthUsecase
	dialogueUsecase domainDialogue.IDialogueUsecase
	ingestUsecase   domainIngest.IIngestUsecase
	messageUsecase  domainMessage.IMessageUsecase
	addressUsecase  domainAddress.IAddressUsecase

	stopBackground context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "smsgate",
	Short: "Shipliyo SMS gateway and verification code bot",
	Long: `Receives forwarded SMS from the Android gateway app, stores them and
answers chat users asking for the verification code of a shopping site.`,
}

func init() {
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig)
}

func initFlags() {
	flags := rootCmd.PersistentFlags()
	flags.StringP("port", "p", "3000", "change port number with --port <number> | example: --port=8080")
	flags.BoolP("debug", "d", false, "hide or displaying log with --debug <true/false> | example: --debug=true")
	flags.String("db-driver", "sqlite", `message store driver --db-driver <sqlite|postgres|mongo|memory> | example: --db-driver=postgres`)
	flags.String("db-name", "", `sqlite file, postgres or mongo database name --db-name <string> | example: --db-name="storages/smsgate.db"`)
	flags.Bool("valkey", false, "share dedup and rate-limit state through valkey --valkey <true/false>")
	flags.Int("dispatch-workers", 8, "number of concurrent dispatch workers --dispatch-workers <number>")
	flags.Int("dispatch-queue-size", 500, "queue size per dispatch worker --dispatch-queue-size <number>")

	bindings := map[string]string{
		"app_port":                   "port",
		"app_debug":                  "debug",
		"db_driver":                  "db-driver",
		"db_name":                    "db-name",
		"valkey_enabled":             "valkey",
		"dispatch_worker_pool_size":  "dispatch-workers",
		"dispatch_worker_queue_size": "dispatch-queue-size",
	}
	for key, flag := range bindings {
		if err := viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			logrus.Fatalf("[CONFIG] failed to bind flag %s: %v", flag, err)
		}
	}
}

// initEnvConfig loads the environment, then lets explicitly set flags win.
func initEnvConfig() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("[CONFIG] %v", err)
	}

	if viper.IsSet("app_port") {
		cfg.App.Port = viper.GetString("app_port")
	}
	if viper.IsSet("app_debug") {
		cfg.App.Debug = viper.GetBool("app_debug")
	}
	if viper.IsSet("db_driver") {
		cfg.Database.Driver = viper.GetString("db_driver")
	}
	if viper.IsSet("db_name") {
		cfg.Database.Name = viper.GetString("db_name")
	}
	if viper.IsSet("valkey_enabled") {
		cfg.Database.ValkeyEnabled = viper.GetBool("valkey_enabled")
	}
	if viper.IsSet("dispatch_worker_pool_size") {
		cfg.WorkerPool.Size = viper.GetInt("dispatch_worker_pool_size")
	}
	if viper.IsSet("dispatch_worker_queue_size") {
		cfg.WorkerPool.QueueSize = viper.GetInt("dispatch_worker_queue_size")
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("[CONFIG] %v", err)
	}

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.Debugf("[CONFIG] %v", config.GetAllSettings())
	}
}

// openMessageStore connects the configured message store and ensures its schema.
func openMessageStore(ctx context.Context, cfg *config.Config) (domainMessage.IMessageRepository, error) {
	var repo domainMessage.IMessageRepository

	switch cfg.Database.Driver {
	case "memory":
		logrus.Warn("[STORE] using the in-memory message store, messages are lost on restart")
		repo = store.NewMessageMemoryRepository()
	case "mongo":
		mongoRepo, err := store.NewMessageMongoRepository(ctx, cfg.Database.MongoURI, cfg.Database.Name)
		if err != nil {
			return nil, err
		}
		repo = mongoRepo
	default:
		db, err := database.NewDatabase(cfg)
		if err != nil {
			return nil, err
		}
		repo = store.NewMessageGormRepository(db)
	}

	if err := repo.InitSchema(ctx); err != nil {
		_ = repo.Close(ctx)
		return nil, fmt.Errorf("failed to initialize %s schema: %w", cfg.Database.Driver, err)
	}
	return repo, nil
}

func initApp() {
	cfg := config.Global
	ctx, cancel := context.WithCancel(context.Background())
	stopBackground = cancel

	if err := utils.CreateFolder(cfg.App.StoragePath); err != nil {
		logrus.Errorln(err)
	}
	serverID = utils.GetPersistentServerID(cfg.App.ServerID, cfg.App.StoragePath)

	var err error
	messageRepo, err = openMessageStore(ctx, cfg)
	if err != nil {
		logrus.Fatalf("[STORE] %v", err)
	}
	logrus.Infof("[STORE] %s message store ready", cfg.Database.Driver)

	// 1. Shared ingest state: valkey when enabled, process memory otherwise
	var (
		limiter ratelimit.Limiter
		cache   dedup.Cache
	)
	if cfg.Database.ValkeyEnabled {
		vkClient, err = valkey.NewClient(valkey.Config{
			Address:   cfg.Database.ValkeyAddress,
			Password:  cfg.Database.ValkeyPassword,
			DB:        cfg.Database.ValkeyDB,
			KeyPrefix: cfg.Database.ValkeyKeyPrefix,
		})
		if err != nil {
			logrus.Fatalf("[VALKEY] %v", err)
		}
		limiter = ratelimit.NewValkeyLimiter(vkClient, cfg.Ingest.RateLimitMax, cfg.Ingest.RateLimitWindow)
		cache = dedup.NewValkeyCache(vkClient, cfg.Ingest.DedupWindow)
		logrus.Infof("[VALKEY] connected to %s", cfg.Database.ValkeyAddress)
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.Ingest.RateLimitMax, cfg.Ingest.RateLimitWindow)
		cache = dedup.NewMemoryCache(cfg.Ingest.DedupWindow, cfg.Ingest.DedupRetention)
	}

	// 2. Dispatch pool
	dispatchPool = msgworker.NewPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize)
	dispatchPool.Start(ctx)

	// 3. Health
	if vkClient != nil {
		healthUsecase = usecase.NewHealthService(messageRepo, vkClient, dispatchPool)
	} else {
		healthUsecase = usecase.NewHealthService(messageRepo, nil, dispatchPool)
	}
	healthUsecase.StartPeriodicChecks(ctx, 0)

	// 4. Domain usecases
	parser := smsparser.NewParser()
	dialogueUsecase = usecase.NewDialogueService(messageRepo, parser, catalog.MustLoad(), usecase.DialogueSettings{
		SiteWindow:      cfg.Dialogue.SiteWindow,
		SiteLimit:       cfg.Dialogue.SiteLimit,
		ReferenceWindow: cfg.Dialogue.ReferenceWindow,
		DefaultLanguage: lang.OrDefault(lang.Language(cfg.Dialogue.DefaultLanguage)),
	}, usecase.WithHealthReporter(healthUsecase))

	ingestOpts := []usecase.IngestOption{}
	if cfg.Notifier.Enabled() {
		twilio, err := notifier.NewTwilio(cfg.Notifier.TwilioAccountSID, cfg.Notifier.TwilioAuthToken, cfg.Notifier.TwilioFromNumber)
		if err != nil {
			logrus.Fatalf("[NOTIFIER] %v", err)
		}
		ingestOpts = append(ingestOpts, usecase.WithNotifier(twilio))
		logrus.Infof("[NOTIFIER] replies to phone senders go out through %s", twilio.Name())
	}
	ingestUsecase = usecase.NewIngestService(messageRepo, limiter, cache, dispatchPool, dialogueUsecase, parser, usecase.IngestSettings{
		MaxBodyLength: cfg.Ingest.MaxBodyLength,
		ValidatePhone: cfg.Ingest.ValidatePhone,
	}, ingestOpts...)
	messageUsecase = usecase.NewMessageService(messageRepo)
	addressUsecase = usecase.NewAddressService()

	logrus.Infof("[APP] server %s initialized (%s)", serverID, cfg.App.Version)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp drains the dispatch pool and closes every connection.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if dispatchPool != nil {
		dispatchPool.Stop()
	}
	if stopBackground != nil {
		stopBackground()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if messageRepo != nil {
		if err := messageRepo.Close(ctx); err != nil {
			logrus.WithError(err).Error("[STORE] failed to close message store")
		}
	}
	if vkClient != nil {
		vkClient.Close()
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
