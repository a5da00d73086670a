// Command oversea extracts product data from Chinese e-commerce pages and
// translates it using AI.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oversea-labs/oversea"
	"github.com/oversea-labs/oversea/cache"
	"github.com/oversea-labs/oversea/config"
	"github.com/oversea-labs/oversea/extractor"
	"github.com/oversea-labs/oversea/provider"
	"github.com/oversea-labs/oversea/server"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = oversea.Version
	commit    = oversea.GitCommit
	buildDate = oversea.BuildDate
)

var (
	configPath string
	cfg        *config.Config
	log        = logrus.New()
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "oversea",
		Short:         oversea.Description,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional; real deployments use the environment
			_ = godotenv.Load()
			cfg = config.LoadOrDefault(configPath)
			if level, err := logrus.ParseLevel(cfg.Server.LogLevel); err == nil {
				log.SetLevel(level)
			}
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: configs/config.json)")

	root.AddCommand(
		newExtractCmd(),
		newTranslateCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", oversea.Name, version)
			if commit != "unknown" && commit != "" {
				fmt.Printf("  commit:  %s\n", commit)
			}
			if buildDate != "unknown" && buildDate != "" {
				fmt.Printf("  built:   %s\n", buildDate)
			}
		},
	}
}

func newExtractCmd() *cobra.Command {
	var (
		output  string
		useHTTP bool
	)

	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Extract product data from a 1688 product page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext := newExtractor(useHTTP)
			doc, err := ext.Extract(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeJSON(output, doc)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&useHTTP, "http", false, "Use plain HTTP instead of a headless browser")
	return cmd
}

func newTranslateCmd() *cobra.Command {
	var (
		output    string
		lang      string
		quiet     bool
		cacheFile string
	)

	cmd := &cobra.Command{
		Use:   "translate [file]",
		Short: "Translate an extracted product document (reads stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if len(args) == 0 {
				data, err = io.ReadAll(os.Stdin)
			} else {
				data, err = os.ReadFile(args[0]) // #nosec G304 - CLI tool reads user-specified files
			}
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}

			doc, err := oversea.ParseDocument(data)
			if err != nil {
				return fmt.Errorf("parsing input: %w", err)
			}

			if lang != "" {
				cfg.Translate.TargetLang = lang
			}

			var progress oversea.ProgressFunc
			if !quiet {
				progress = func(e oversea.ProgressEvent) {
					fmt.Fprintf(os.Stderr, "\r%s: %d/%d (%.0f%%)",
						e.Stage, e.ProcessedItems, e.TotalItems, e.Percent)
					if e.Status == oversea.ProgressCompleted {
						fmt.Fprintln(os.Stderr)
					}
				}
			}

			translationCache := newCache()
			var snapshot *cache.InMemoryCache
			if cacheFile != "" {
				var n int
				snapshot, n, err = loadCacheSnapshot(cacheFile)
				if err != nil {
					return err
				}
				if !quiet && n > 0 {
					fmt.Fprintf(os.Stderr, "loaded %d cached translations from %s\n", n, cacheFile)
				}
				translationCache = snapshot
			}

			translator, err := newTranslator(cfg.Translate.TargetLang, progress, translationCache)
			if err != nil {
				return err
			}

			started := time.Now()
			result, err := translator.TranslateProductData(cmd.Context(), doc)
			if err != nil {
				return err
			}

			if snapshot != nil {
				if err := cache.Export(snapshot, cacheFile); err != nil {
					return fmt.Errorf("saving cache snapshot: %w", err)
				}
			}

			if !quiet {
				fmt.Fprintf(os.Stderr, "translated %d, cached %d, missed %d in %s\n",
					result.Report.TranslatedCount, result.Report.CachedCount,
					result.Report.MissedCount, time.Since(started).Round(time.Millisecond))
			}
			return writeJSON(output, result.Data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&lang, "lang", "", "Target language code (default: from config)")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress progress output")
	cmd.Flags().StringVar(&cacheFile, "cache-file", "", "JSON cache snapshot, loaded before the run and saved after it")
	return cmd
}

func newServeCmd() *cobra.Command {
	var useHTTP bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the extraction and translation API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ext := newExtractor(useHTTP)
			factory := func(targetLang string, progress oversea.ProgressFunc) server.ProductTranslator {
				t, err := newTranslator(targetLang, progress, newCache())
				if err != nil {
					log.WithError(err).Error("translator setup failed, using mock provider")
					return oversea.NewTranslator(provider.NewMockProvider())
				}
				return t
			}
			return server.NewServer(cfg, log, ext, factory).Run()
		},
	}

	cmd.Flags().BoolVar(&useHTTP, "http", false, "Use plain HTTP instead of a headless browser")
	return cmd
}

func newExtractor(useHTTP bool) *extractor.Extractor {
	var fetcher extractor.Fetcher
	if useHTTP {
		fetcher = extractor.NewHTTPFetcher()
	} else {
		fetcher = &extractor.ChromedpFetcher{
			Headless:    cfg.Browser.Headless,
			UserDataDir: cfg.Browser.UserDataDir,
			Delay:       cfg.Browser.Delay,
			Timeout:     cfg.Browser.Timeout,
			Logger:      log,
		}
	}
	return extractor.NewAlibaba1688(fetcher, extractor.WithExtractorLogger(log))
}

func newTranslator(targetLang string, progress oversea.ProgressFunc, translationCache oversea.TranslationCache) (*oversea.Translator, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("no API key: set OPENAI_API_KEY or openai.api_key in the config file")
	}

	p := provider.NewOpenAIProvider(provider.OpenAIConfig{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		BaseURL:     cfg.OpenAI.BaseURL,
	})

	opts := []oversea.TranslatorOption{
		oversea.WithTargetLang(targetLang),
		oversea.WithBatchSize(cfg.Translate.BatchSize),
		oversea.WithMaxPasses(cfg.Translate.MaxPasses),
		oversea.WithLogger(log),
		oversea.WithCache(translationCache),
	}
	if progress != nil {
		opts = append(opts, oversea.WithProgress(progress))
	}
	return oversea.NewTranslator(p, opts...), nil
}

func newCache() oversea.TranslationCache {
	if cfg.Redis.Addr == "" {
		return cache.NewInMemoryCache(3600)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return cache.NewRedisCacheFromClient(client, 0, "")
}

// loadCacheSnapshot reads a JSON cache snapshot into a fresh in-memory
// cache. A missing file yields an empty cache, so first runs just start
// cold and write the snapshot on the way out.
func loadCacheSnapshot(path string) (*cache.InMemoryCache, int, error) {
	c := cache.NewInMemoryCache(0)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c, 0, nil
	}
	n, err := cache.Import(c, path)
	if err != nil {
		return nil, 0, fmt.Errorf("loading cache snapshot: %w", err)
	}
	return c, n, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
