package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	coreconfig "github.com/shipliyo/smsgate/core/config"
	"github.com/shipliyo/smsgate/ui/rest"
	"github.com/shipliyo/smsgate/ui/rest/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Serve the SMS gateway and chatbot API over http",
	Run:   restServer,
}

func init() {
	restCmd.Flags().String("basic-auth", "", "Basic auth for the diagnostics API (format: user:pass,user2:pass2)")
	rootCmd.AddCommand(restCmd)
}

func restServer(cmd *cobra.Command, _ []string) {
	if baFlag, _ := cmd.Flags().GetString("basic-auth"); baFlag != "" {
		coreconfig.Global.App.BasicAuth = strings.Split(baFlag, ",")
	}

	initApp()

	fiberConfig := fiber.Config{
		EnableTrustedProxyCheck: true,
		BodyLimit:               64 * 1024,
		Network:                 "tcp",
		AppName:                 "Shipliyo SMS Gateway",
		ServerHeader:            "Hidden",
	}
	if len(coreconfig.Global.App.TrustedProxies) > 0 {
		fiberConfig.TrustedProxies = coreconfig.Global.App.TrustedProxies
		fiberConfig.ProxyHeader = fiber.HeaderXForwardedFor
	}

	app := fiber.New(fiberConfig)

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(coreconfig.Global.App.CorsAllowedOrigins, ", "),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "no-referrer",
	}))

	// Coarse flood guard; the per-client SMS budget lives in the ingest pipeline.
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if coreconfig.Global.App.Debug {
		app.Use(logger.New())
	}

	apiGroup := app.Group("/api")
	if accounts := basicAuthAccounts(coreconfig.Global.App.BasicAuth); len(accounts) > 0 {
		// Group middleware runs for every /api route; only diagnostics are guarded.
		apiGroup.Use(basicauth.New(basicauth.Config{
			Users: accounts,
			Next: func(c *fiber.Ctx) bool {
				return c.Method() == fiber.MethodOptions || !isDiagnosticsPath(c.Path())
			},
		}))
	} else {
		logrus.Warn("[REST] APP_BASIC_AUTH is not set; diagnostics endpoints are public")
	}

	// Public: the gateway app and the chat widget carry no credentials
	rest.InitRestSMS(app, ingestUsecase)
	rest.InitRestChatbot(app, dialogueUsecase, healthUsecase)
	rest.InitRestAddress(app, addressUsecase)

	// Diagnostics
	rest.InitRestMessage(apiGroup, messageUsecase)
	rest.InitRestHealth(app, apiGroup, healthUsecase)
	rest.InitRestWorkerPool(apiGroup, dispatchPool)

	apiGroup.All("/*", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "API Endpoint not found",
			"path":  c.Path(),
		})
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	if err := serve(app, ":"+coreconfig.Global.App.Port, sigChan, StopApp); err != nil {
		logrus.Fatalln("Failed to start: ", err.Error())
	}
}

type listener interface {
	Listen(addr string) error
	Shutdown() error
}

// serve blocks until the listener returns and cleanup has finished. A signal
// on stop shuts the listener down.
func serve(l listener, addr string, stop <-chan os.Signal, cleanup func()) error {
	go func() {
		<-stop
		logrus.Info("[REST] Reception of termination signal, shutting down gracefully...")
		if err := l.Shutdown(); err != nil {
			logrus.Errorf("[REST] Error during Fiber shutdown: %v", err)
		}
	}()

	err := l.Listen(addr)
	cleanup()
	return err
}

func basicAuthAccounts(credentials []string) map[string]string {
	accounts := make(map[string]string, len(credentials))
	for _, credential := range credentials {
		user, secret, ok := strings.Cut(credential, ":")
		if !ok || user == "" {
			logrus.Fatalln("Basic auth is not valid, please this following format <user>:<secret>")
		}
		accounts[user] = secret
	}
	return accounts
}

func isDiagnosticsPath(path string) bool {
	return path == "/api/sms" ||
		strings.HasPrefix(path, "/api/health/") ||
		strings.HasPrefix(path, "/api/dispatch-pool/")
}
