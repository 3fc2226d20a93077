package cli

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"maps"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kdeps/pkg/buildinfo"
	"github.com/matzehuels/kdeps/pkg/config"
	"github.com/matzehuels/kdeps/pkg/deps"
	"github.com/matzehuels/kdeps/pkg/errors"
	"github.com/matzehuels/kdeps/pkg/httputil"
	mavenrepo "github.com/matzehuels/kdeps/pkg/integrations/maven"
	"github.com/matzehuels/kdeps/pkg/maven"
	"github.com/matzehuels/kdeps/pkg/observability"
)

// fetchOptions holds the root command flags.
type fetchOptions struct {
	file         string
	configPath   string
	output       string
	pomDir       string
	repo         string
	exclusionKey string
	workers      int
	maxDepth     int
	retries      int
	skipOptional bool
	noAudit      bool
	noCache      bool
	refresh      bool
	redis        string
	graph        string
	dot          string
	svg          string
	metricsFile  string
}

func (o *fetchOptions) register(cmd *cobra.Command) {
	def := config.Default()
	f := cmd.Flags()
	f.StringVarP(&o.file, "file", "f", "", "read coordinates from file (default: stdin)")
	f.StringVar(&o.configPath, "config", "", "config file (default: ./"+config.FileName+" if present)")
	f.StringVarP(&o.output, "output", "o", def.Output, "artifact output directory")
	f.StringVar(&o.pomDir, "pom-dir", def.PomDir, "directory for fetched POM files")
	f.StringVar(&o.repo, "repo", def.Repository, "Maven 2 repository base URL")
	f.StringVar(&o.exclusionKey, "exclusion-key", def.ExclusionKey, "exclusion key mode: version, module or legacy")
	f.IntVar(&o.workers, "workers", def.Workers, "concurrent artifact downloads")
	f.IntVar(&o.maxDepth, "max-depth", def.MaxDepth, "maximum dependency depth (0: unlimited)")
	f.IntVar(&o.retries, "retries", def.Retries, "attempts per request for transient failures")
	f.BoolVar(&o.skipOptional, "skip-optional", def.SkipOptional, "do not follow optional dependencies")
	f.BoolVar(&o.noAudit, "no-audit", def.SkipAudit, "do not keep fetched POM files")
	f.BoolVar(&o.noCache, "no-cache", false, "disable the metadata cache")
	f.BoolVar(&o.refresh, "refresh", false, "ignore cached metadata")
	f.StringVar(&o.redis, "redis", "", "use a Redis metadata cache (redis://host:port/db)")
	f.StringVar(&o.graph, "graph", "", "write the resolved graph as JSON")
	f.StringVar(&o.dot, "dot", "", "write the resolved graph as Graphviz DOT")
	f.StringVar(&o.svg, "svg", "", "render the resolved graph as SVG")
	f.StringVar(&o.metricsFile, "metrics-file", "", "write Prometheus metrics in textfile format")
}

// settings merges the config file with explicitly set flags.
func (o *fetchOptions) settings(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	path := o.configPath
	if path == "" {
		if found, ok := config.Find("."); ok {
			path = found
		}
	}
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("output") {
		cfg.Output = o.output
	}
	if f.Changed("pom-dir") {
		cfg.PomDir = o.pomDir
	}
	if f.Changed("repo") {
		cfg.Repository = o.repo
	}
	if f.Changed("exclusion-key") {
		cfg.ExclusionKey = o.exclusionKey
	}
	if f.Changed("workers") {
		cfg.Workers = o.workers
	}
	if f.Changed("max-depth") {
		cfg.MaxDepth = o.maxDepth
	}
	if f.Changed("retries") {
		cfg.Retries = o.retries
	}
	if f.Changed("skip-optional") {
		cfg.SkipOptional = o.skipOptional
	}
	if f.Changed("no-audit") {
		cfg.SkipAudit = o.noAudit
	}
	if f.Changed("redis") {
		cfg.Cache.Redis = o.redis
	}
	if o.noCache {
		cfg.Cache.Disabled = true
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *CLI) runFetch(cmd *cobra.Command, opts *fetchOptions) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := opts.settings(cmd)
	if err != nil {
		return err
	}
	keyMode, _ := cfg.KeyMode()

	seeds, err := opts.readSeeds(cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		printWarning("No coordinates given")
		return nil
	}

	var prom *observability.Prometheus
	if opts.metricsFile != "" {
		prom = observability.NewPrometheus()
		observability.SetResolveHooks(prom)
		observability.SetCacheHooks(prom)
		observability.SetHTTPHooks(prom)
		defer observability.Reset()
	}

	mc, err := newCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer mc.Close()

	repo := mavenrepo.NewClient(mavenrepo.Options{
		Layout:   maven.NewLayout(cfg.Repository),
		Cache:    mc,
		CacheTTL: cfg.Cache.TTL.Duration,
		Refresh:  opts.refresh,
		Retry:    httputil.Policy{Attempts: cfg.Retries},
		Headers:  requestHeaders(cfg.Headers),
	})

	logger.Debug("settings", "repo", cfg.Repository, "exclusion_key", keyMode, "workers", cfg.Workers, "max_depth", cfg.MaxDepth)
	prog := newProgress(logger)
	res, err := deps.NewResolver(repo, deps.Options{
		OutputDir:   cfg.Output,
		MetadataDir: cfg.PomDir,
		SkipAudit:   cfg.SkipAudit,
		Workers:     cfg.Workers,
		MaxDepth:    cfg.MaxDepth,
		Parse: maven.ParseOptions{
			KeyMode:      keyMode,
			Placeholders: cfg.Placeholders,
			SkipOptional: cfg.SkipOptional,
		},
		Logger: logger,
	}).Resolve(ctx, seeds)
	if res == nil {
		return err
	}
	prog.done(fmt.Sprintf("Resolved %d coordinates", res.Stats.Visited))

	printSummary(res, cfg.Output)
	if err != nil {
		printWarning("Interrupted, results are partial")
		return err
	}

	if err := writeOutputs(res, opts.graph, opts.dot, opts.svg); err != nil {
		return err
	}
	if prom != nil {
		if err := prom.WriteTextfile(opts.metricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
		printFile(opts.metricsFile)
	}
	return nil
}

// readSeeds reads coordinates from the --file flag, or from stdin when it
// is not set.
func (o *fetchOptions) readSeeds(stdin io.Reader) ([]maven.Coordinate, error) {
	if o.file == "" {
		return parseSeeds(stdin, "stdin")
	}
	f, err := os.Open(o.file)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "file does not exist or cannot be read: %s", o.file)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "file does not exist or cannot be read: %s", o.file)
	}
	defer f.Close()
	return parseSeeds(f, o.file)
}

// parseSeeds reads one coordinate per line. Blank lines and lines starting
// with '#' are skipped; any other malformed line fails the whole input.
func parseSeeds(r io.Reader, name string) ([]maven.Coordinate, error) {
	var seeds []maven.Coordinate
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		c, err := maven.ParseCoordinate(text)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidCoordinate, err, "%s:%d", name, line)
		}
		seeds = append(seeds, c)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", name)
	}
	return seeds, nil
}

func requestHeaders(extra map[string]string) map[string]string {
	h := map[string]string{"User-Agent": buildinfo.UserAgent()}
	maps.Copy(h, extra)
	return h
}
