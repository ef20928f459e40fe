package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"tunai-collect/pkg/config"
	"tunai-collect/pkg/crawler"
	"tunai-collect/pkg/fetch"
)

const version = "0.4.1"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "crawl":
		runCrawl(os.Args[2:], false)
	case "resume":
		runCrawl(os.Args[2:], true)
	case "validate":
		runValidate(os.Args[2:])
	case "list-sites":
		runListSites(os.Args[2:])
	case "version":
		fmt.Printf("tunai-collect %s\n", version)
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}
}

func printUsage() {
	fmt.Println(`tunai-collect - Tunisian Arabic corpus crawler

Usage:
  tunai-collect <command> [options]

Commands:
  crawl       Start a fresh collection run
  resume      Continue a run using persisted visited state
  validate    Validate configuration file
  list-sites  List configured site keys
  version     Show version info

Run 'tunai-collect <command> -h' for command-specific help.`)
}

// loadConfig reads and parses the YAML config file.
func loadConfig(path string) (*config.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg config.AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func setupLogger(levelStr string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	log.SetLevel(logrus.InfoLevel)

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		log.Warnf("Invalid log level '%s', using default 'info'. Error: %v", levelStr, err)
	} else {
		log.SetLevel(level)
	}
	return log
}

// runCrawl handles both crawl and resume subcommands.
func runCrawl(args []string, isResume bool) {
	cmdName := "crawl"
	if isResume {
		cmdName = "resume"
	}

	fs := flag.NewFlagSet(cmdName, flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")
	siteKey := fs.String("site", "", "Site key from config (single site)")
	sites := fs.String("sites", "", "Comma-separated site keys")
	allSites := fs.Bool("all-sites", false, "Crawl all configured sites")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error, fatal)")
	maxPages := fs.Int("max-pages", 0, "Override page budget for every selected site")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: tunai-collect %s [options]\n\nOptions:\n", cmdName)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  tunai-collect %s -site tunisia_sat\n", cmdName)
		fmt.Fprintf(os.Stderr, "  tunai-collect %s -sites tunisia_sat,derja_ninja\n", cmdName)
		fmt.Fprintf(os.Stderr, "  tunai-collect %s --all-sites\n", cmdName)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	log := setupLogger(*logLevel)

	if envFile := config.LoadEnv(log); envFile != "" {
		log.Infof("Loaded environment from %s", envFile)
	}

	log.Infof("Loading configuration from %s", *configFile)
	appCfg, err := loadConfig(*configFile)
	if err != nil {
		log.Errorf("Config error: %v", err)
		os.Exit(2)
	}
	appCfg.ApplyEnvOverrides()

	warnings, err := appCfg.Validate()
	for _, w := range warnings {
		log.Warn(w)
	}
	if err != nil {
		log.Errorf("Config error: %v", err)
		os.Exit(2)
	}

	siteKeys, err := selectSiteKeys(appCfg, *siteKey, *sites, *allSites)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		os.Exit(2)
	}

	for _, key := range siteKeys {
		siteCfg := appCfg.Sites[key]
		siteWarnings, err := siteCfg.Validate()
		for _, w := range siteWarnings {
			log.Warnf("[%s] %s", key, w)
		}
		if err != nil {
			log.Errorf("[%s] %v", key, err)
			os.Exit(2)
		}
		if *maxPages > 0 {
			siteCfg.MaxPages = *maxPages
		}
		appCfg.Sites[key] = siteCfg
	}

	os.Exit(executeCrawl(appCfg, siteKeys, isResume, log))
}

// selectSiteKeys resolves the -site/-sites/--all-sites flags to a sorted
// list of configured site keys.
func selectSiteKeys(appCfg *config.AppConfig, siteKey, sites string, allSites bool) ([]string, error) {
	var keys []string
	switch {
	case allSites:
		for k := range appCfg.Sites {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	case sites != "":
		for _, s := range strings.Split(sites, ",") {
			if s = strings.TrimSpace(s); s != "" {
				keys = append(keys, s)
			}
		}
	case siteKey != "":
		keys = []string{siteKey}
	default:
		return nil, fmt.Errorf("one of -site, -sites, or --all-sites is required")
	}

	for _, k := range keys {
		if _, ok := appCfg.Sites[k]; !ok {
			return nil, fmt.Errorf("site '%s' not found in config", k)
		}
	}
	return keys, nil
}

// executeCrawl runs the selected sites, at most MaxSiteConcurrency at a
// time. Each site's crawl loop is sequential; only sites run in parallel.
// Returns the process exit code.
func executeCrawl(appCfg *config.AppConfig, siteKeys []string, isResume bool, log *logrus.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := fetch.NewClient(appCfg.HTTPClientSettings, log)
	limiter := fetch.NewRateLimiter(appCfg.DefaultDelayPerHost, log)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(appCfg.MaxSiteConcurrency)

	type outcome struct {
		key     string
		summary *crawler.Summary
		err     error
	}
	results := make([]outcome, len(siteKeys))

	for i, key := range siteKeys {
		i, key := i, key
		g.Go(func() error {
			sess, err := crawler.NewSession(gctx, key, appCfg.Sites[key], appCfg, client, limiter, isResume, log)
			if err != nil {
				log.WithField("site", key).Errorf("Cannot start session: %v", err)
				results[i] = outcome{key: key, err: err}
				return nil // other sites keep running
			}
			summary, err := sess.Run(gctx)
			results[i] = outcome{key: key, summary: summary, err: err}
			return nil
		})
	}
	g.Wait()

	exitCode := 0
	for _, r := range results {
		if r.err != nil {
			exitCode = 1
		}
		if r.summary == nil {
			continue
		}
		log.WithFields(logrus.Fields{
			"site":   r.key,
			"pages":  r.summary.PagesWritten,
			"posts":  r.summary.PostsWritten,
			"cards":  r.summary.CardsWritten,
			"words":  r.summary.WordCount,
			"errors": errorTotal(r.summary.Errors),
		}).Info("Site complete")
	}
	return exitCode
}

func errorTotal(errs map[string]int) int {
	total := 0
	for _, n := range errs {
		total += n
	}
	return total
}

// runValidate handles the validate subcommand.
func runValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")
	siteKey := fs.String("site", "", "Site key to validate (optional, validates all if empty)")

	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	os.Exit(doValidate(*configFile, *siteKey, os.Stdout, os.Stderr))
}

// doValidate performs validation and writes results to the provided
// writers. Returns the process exit code.
func doValidate(configPath, siteKey string, stdout, stderr io.Writer) int {
	appCfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	warnings, appErr := appCfg.Validate()
	for _, w := range warnings {
		fmt.Fprintf(stdout, "WARN: %s\n", w)
	}
	if appErr != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", appErr)
		return 2
	}

	keys := []string{siteKey}
	if siteKey == "" {
		keys = keys[:0]
		for k := range appCfg.Sites {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	hasError := false
	for _, key := range keys {
		siteCfg, ok := appCfg.Sites[key]
		if !ok {
			fmt.Fprintf(stderr, "Error: site '%s' not found in config\n", key)
			return 2
		}
		siteWarnings, err := siteCfg.Validate()
		if err != nil {
			fmt.Fprintf(stderr, "ERROR: [%s] %v\n", key, err)
			hasError = true
			continue
		}
		for _, w := range siteWarnings {
			fmt.Fprintf(stdout, "WARN: [%s] %s\n", key, w)
		}
		fmt.Fprintf(stdout, "OK: [%s]\n", key)
	}
	if hasError {
		return 2
	}

	fmt.Fprintln(stdout, "Configuration valid.")
	return 0
}

// runListSites handles the list-sites subcommand.
func runListSites(args []string) {
	fs := flag.NewFlagSet("list-sites", flag.ExitOnError)
	configFile := fs.String("config", "config.yaml", "Path to config file")

	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	appCfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	keys := make([]string, 0, len(appCfg.Sites))
	for k := range appCfg.Sites {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cfg := appCfg.Sites[k]
		kind := "site"
		if cfg.Forum {
			kind = "forum"
		}
		fmt.Printf("%-24s %s  seeds=%d  domains=%v\n", k, kind, len(cfg.SeedURLs), cfg.AllowedDomains)
	}
}
