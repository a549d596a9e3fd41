package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"schemefinder/internal/catalog"
	"schemefinder/internal/gateway/config"
	"schemefinder/internal/llm"
	"schemefinder/internal/logging"
	"schemefinder/internal/recommend"
	"schemefinder/internal/scheme"
	"schemefinder/internal/util/jsonutil"
)

const usage = `usage: schemectl <command> [flags]

commands:
  recommend -profile profile.json      recommend schemes for a profile (- reads stdin)
  search    -q keyword [-lang hi]      search schemes by keyword
  chat      -scheme record.json -question text [-lang hi]
  catalog   show|push [-file catalog.json]
`

func main() {
	_ = godotenv.Load()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "schemectl: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("missing command")

// cli carries the output streams so commands can be driven from tests.
type cli struct {
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}
	c := cli{stdout: stdout, stderr: stderr}
	switch args[0] {
	case "recommend":
		return c.runRecommend(ctx, args[1:])
	case "search":
		return c.runSearch(ctx, args[1:])
	case "chat":
		return c.runChat(ctx, args[1:])
	case "catalog":
		return c.runCatalog(ctx, args[1:])
	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// env bundles what every model-backed command needs.
type env struct {
	cfg    *config.Config
	cat    *catalog.Catalog
	client llm.LLMClient
	log    *zap.Logger
}

func (e *env) Close() {
	_ = e.client.Close()
	_ = e.log.Sync()
}

func commonFlags(fs *flag.FlagSet) (provider, level *string) {
	provider = fs.String("provider", "", "llm provider: groq, gemini or fake (default from LLM_PROVIDER)")
	level = fs.String("log-level", "warn", "log level")
	return provider, level
}

func openEnv(ctx context.Context, provider, level string) (*env, error) {
	cfg := config.FromEnv()
	if p := strings.TrimSpace(provider); p != "" {
		cfg.LLM.Provider = p
	}
	log := logging.New(level, "console")
	cat, _, err := catalog.Open(ctx, cfg.Catalog)
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	client, err := llm.Open(ctx, cfg.LLM, cat, logging.Component(log, "llm"))
	if err != nil {
		_ = log.Sync()
		return nil, err
	}
	return &env{cfg: cfg, cat: cat, client: client, log: log}, nil
}

func (c cli) runRecommend(ctx context.Context, args []string) error {
	fs := c.flags("recommend")
	profilePath := fs.String("profile", "", "path to a profile JSON document, - for stdin")
	provider, level := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *profilePath == "" {
		return errors.New("-profile is required")
	}
	var p scheme.UserProfile
	if err := readJSON(*profilePath, &p); err != nil {
		return fmt.Errorf("read profile: %w", err)
	}

	e, err := openEnv(ctx, *provider, *level)
	if err != nil {
		return err
	}
	defer e.Close()

	r, err := recommend.NewRecommender(e.client, e.cat, recommend.Options{
		BatchSize:      e.cfg.Recommend.BatchSize,
		MaxConcurrency: e.cfg.Recommend.MaxConcurrency,
		Retry:          e.cfg.Retry.Policy(),
		Logger:         logging.Component(e.log, "recommend"),
	})
	if err != nil {
		return err
	}
	var mu sync.Mutex
	ctx = recommend.WithProgress(ctx, func(ev recommend.Event) {
		mu.Lock()
		defer mu.Unlock()
		switch ev.Kind {
		case recommend.EventNames:
			fmt.Fprintf(c.stderr, "found %d names in %d batches\n", len(ev.Names), ev.Batches)
		case recommend.EventBatch:
			status := "ok"
			if ev.Failed {
				status = "failed"
			}
			fmt.Fprintf(c.stderr, "batch %d: %s (%d schemes)\n", ev.Batch, status, len(ev.Schemes))
		case recommend.EventFallback:
			fmt.Fprintln(c.stderr, "serving fallback catalog")
		}
	})
	rec, err := r.Recommend(ctx, p)
	if err != nil {
		return err
	}
	return writeJSON(c.stdout, rec)
}

func (c cli) runSearch(ctx context.Context, args []string) error {
	fs := c.flags("search")
	query := fs.String("q", "", "keyword")
	lang := fs.String("lang", "en", "output language: en or hi")
	provider, level := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	e, err := openEnv(ctx, *provider, *level)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := recommend.NewSearcher(e.client, logging.Component(e.log, "search")).Search(ctx, *query, *lang)
	if err != nil {
		return err
	}
	return writeJSON(c.stdout, res)
}

func (c cli) runChat(ctx context.Context, args []string) error {
	fs := c.flags("chat")
	recordPath := fs.String("scheme", "", "path to a scheme record JSON document")
	question := fs.String("question", "", "question about the scheme")
	lang := fs.String("lang", "en", "answer language: en or hi")
	provider, level := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *recordPath == "" || strings.TrimSpace(*question) == "" {
		return errors.New("-scheme and -question are required")
	}
	var rec scheme.Record
	if err := readJSON(*recordPath, &rec); err != nil {
		return fmt.Errorf("read scheme: %w", err)
	}

	e, err := openEnv(ctx, *provider, *level)
	if err != nil {
		return err
	}
	defer e.Close()

	answer := recommend.NewChatter(e.client, logging.Component(e.log, "chat")).Chat(ctx, rec, *question, *lang)
	fmt.Fprintln(c.stdout, answer)
	return nil
}

func (c cli) runCatalog(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("catalog needs a subcommand: show or push")
	}
	fs := c.flags("catalog " + args[0])
	file := fs.String("file", "", "catalog document to publish (default: embedded catalog)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	cfg := config.FromEnv()

	switch args[0] {
	case "show":
		cat, source, err := catalog.Open(ctx, cfg.Catalog)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stderr, "source=%s version=%s schemes=%d\n", source, cat.Version(), cat.Len())
		return writeJSON(c.stdout, cat.Schemes())
	case "push":
		if !cfg.Catalog.S3.Enabled() {
			return errors.New("CATALOG_S3_ENDPOINT and CATALOG_S3_BUCKET must be set")
		}
		cat := catalog.Default()
		if *file != "" {
			var err error
			if cat, err = catalog.LoadFile(*file); err != nil {
				return err
			}
		}
		if err := catalog.PublishS3(ctx, cfg.Catalog.S3, cat); err != nil {
			return err
		}
		fmt.Fprintf(c.stderr, "published catalog version=%s schemes=%d to bucket %s\n", cat.Version(), cat.Len(), cfg.Catalog.S3.Bucket)
		return nil
	default:
		return fmt.Errorf("unknown catalog subcommand %q", args[0])
	}
}

func (c cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func readJSON(path string, v any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	return json.NewDecoder(r).Decode(v)
}

func writeJSON(w io.Writer, v any) error {
	b, err := jsonutil.MarshalNoEscapeIndent(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
