package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/safecomms/safecomms-go/pkg/config"
	"github.com/safecomms/safecomms-go/pkg/infra/httpx"
	infraLogger "github.com/safecomms/safecomms-go/pkg/infra/logger"
	"github.com/safecomms/safecomms-go/pkg/safecomms"
)

func main() {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	logger := infraLogger.NewLogger()

	if err := config.Load(os.Getenv("SAFECOMMS_CONFIG_PATH")); err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.GetConfig()

	apiKey := os.Getenv("SAFECOMMS_API_KEY")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	client, err := buildClient(cfg, apiKey, logger)
	if err != nil {
		logger.Fatalf("Failed to build client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "moderate-text":
		err = runModerateText(ctx, client, cfg, os.Args[2:])
	case "moderate-image":
		err = runModerateImage(ctx, client, os.Args[2:])
	case "moderate-file":
		err = runModerateFile(ctx, client, os.Args[2:])
	case "usage":
		err = runUsage(ctx, client)
	default:
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		logger.WithError(err).Error("command failed")
		os.Exit(exitCode(err))
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: safecomms <command> [flags] [args]

commands:
  moderate-text   [flags] <text>    analyze text for harmful content
  moderate-image  <base64-image>    analyze a base64-encoded image
  moderate-file   [flags] <path>    upload and analyze an image file
  usage                             show account usage counters

SAFECOMMS_API_KEY must be set (or present in .env).`)
}

func buildClient(cfg *config.Config, apiKey string, logger *logrus.Logger) (*safecomms.Client, error) {
	timeout := time.Duration(cfg.Client.TimeoutSeconds) * time.Second

	var transport httpx.Client
	switch cfg.Client.Transport {
	case "fasthttp":
		opts := []httpx.FastHTTPClientOption{httpx.WithTimeout(timeout)}
		if cfg.Client.UserAgent != "" {
			opts = append(opts, httpx.WithUserAgent(cfg.Client.UserAgent))
		}
		transport = httpx.NewFastHTTPClient(opts...)
	default:
		transport = &http.Client{Timeout: timeout}
	}

	if cfg.Breaker.Enabled {
		breaker := httpx.NewCircuitBreaker(
			"safecomms",
			time.Duration(cfg.Breaker.TimeoutSeconds)*time.Second,
			cfg.Breaker.MaxFailures,
		)
		transport = httpx.NewBreakerClient(transport, breaker)
	}

	opts := []safecomms.Option{
		safecomms.WithHTTPClient(transport),
		safecomms.WithLogger(logger),
	}
	if cfg.API.BaseURL != "" {
		opts = append(opts, safecomms.WithBaseURL(cfg.API.BaseURL))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, safecomms.WithMetrics())
	}

	return safecomms.NewClient(apiKey, opts...)
}

func runModerateText(ctx context.Context, client *safecomms.Client, cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet("moderate-text", flag.ExitOnError)
	language := flags.String("language", "", "ISO language code")
	replace := flags.Bool("replace", false, "return redacted text")
	pii := flags.Bool("pii", false, "scan for personally identifiable information")
	replaceSeverity := flags.String("replace-severity", "", "minimum severity to redact (low|medium|high|critical)")
	profileID := flags.String("profile-id", "", "server-side moderation profile id")
	profile := flags.String("profile", "", "named option preset from the config file")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("moderate-text expects exactly one text argument")
	}

	opts := &safecomms.ModerationOptions{}
	if *profile != "" {
		preset, err := cfg.ModerationProfile(*profile)
		if err != nil {
			return err
		}
		opts = preset
	}
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "language":
			opts.Language = *language
		case "replace":
			opts.Replace = safecomms.Bool(*replace)
		case "pii":
			opts.PII = safecomms.Bool(*pii)
		case "replace-severity":
			opts.ReplaceSeverity = safecomms.Severity(*replaceSeverity)
		case "profile-id":
			opts.ModerationProfileID = *profileID
		}
	})

	result, err := client.ModerateText(ctx, flags.Arg(0), opts)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runModerateImage(ctx context.Context, client *safecomms.Client, args []string) error {
	if len(args) != 1 {
		return errors.New("moderate-image expects exactly one base64 image argument")
	}
	result, err := client.ModerateImage(ctx, args[0], nil)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runModerateFile(ctx context.Context, client *safecomms.Client, args []string) error {
	flags := flag.NewFlagSet("moderate-file", flag.ExitOnError)
	language := flags.String("language", "", "ISO language code")
	profileID := flags.String("profile-id", "", "server-side moderation profile id")
	enableOCR := flags.Bool("ocr", false, "extract and moderate text found in the image")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() != 1 {
		return errors.New("moderate-file expects exactly one path argument")
	}

	opts := &safecomms.ImageModerationOptions{}
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "language":
			opts.Language = *language
		case "profile-id":
			opts.ModerationProfileID = *profileID
		case "ocr":
			opts.EnableOCR = safecomms.Bool(*enableOCR)
		}
	})

	result, err := client.ModerateImageFile(ctx, flags.Arg(0), opts)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func runUsage(ctx context.Context, client *safecomms.Client) error {
	report, err := client.GetUsage(ctx)
	if err != nil {
		return err
	}
	return printJSON(report)
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func exitCode(err error) int {
	var (
		configurationErr  *safecomms.ConfigurationError
		validationErr     *safecomms.ValidationError
		authenticationErr *safecomms.AuthenticationError
		rateLimitErr      *safecomms.RateLimitError
		networkErr        *safecomms.NetworkError
	)
	switch {
	case errors.As(err, &configurationErr), errors.As(err, &validationErr):
		return 2
	case errors.As(err, &authenticationErr):
		return 3
	case errors.As(err, &rateLimitErr):
		return 4
	case errors.As(err, &networkErr):
		return 5
	default:
		return 1
	}
}
