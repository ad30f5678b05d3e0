// Command herdimport imports an animal CSV export into the configured sink,
// or serves the import JSON API.
//
// Usage:
//
//	herdimport -config import.json -file herd.csv -farm farm-42
//	herdimport -file herd.csv -map "Animal=type" -map "Notes=" -dry-run
//	herdimport -config import.json -serve
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/config"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/importer"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/mapping/semantic"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/metrics"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/parser/csv"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/schema"
	"github.com/MathysVH98/herdsync-690106b4-sub001/internal/webui"

	// register all backends with the storage factory.
	_ "github.com/MathysVH98/herdsync-690106b4-sub001/internal/storage/all"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Printf("herdimport: %v", err)
		stop()
		os.Exit(1)
	}
}

// mapFlags collects repeated -map Header=field overrides.
type mapFlags []mapOverride

type mapOverride struct {
	Column string
	Field  schema.Field
}

func (m *mapFlags) String() string {
	parts := make([]string, len(*m))
	for i, o := range *m {
		parts[i] = o.Column + "=" + string(o.Field)
	}
	return strings.Join(parts, ",")
}

func (m *mapFlags) Set(v string) error {
	i := strings.LastIndex(v, "=")
	if i <= 0 {
		return fmt.Errorf("want Header=field, got %q", v)
	}
	f, ok := schema.Parse(v[i+1:])
	if !ok {
		return fmt.Errorf("unknown field %q", v[i+1:])
	}
	*m = append(*m, mapOverride{Column: v[:i], Field: f})
	return nil
}

type options struct {
	cfgPath        string
	file           string
	farm           string
	overrides      mapFlags
	dryRun         bool
	validate       bool
	serve          bool
	verbose        bool
	metricsBackend string
	pushgatewayURL string
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("herdimport", flag.ContinueOnError)
	fs.StringVar(&o.cfgPath, "config", "", "import config JSON path (defaults apply when empty)")
	fs.StringVar(&o.file, "file", "", "CSV file to import")
	fs.StringVar(&o.farm, "farm", "", "farm id the animals belong to")
	fs.Var(&o.overrides, "map", "override a proposed mapping, Header=field (empty field skips); repeatable")
	fs.BoolVar(&o.dryRun, "dry-run", false, "print the mapping and a normalized sample without writing")
	fs.BoolVar(&o.validate, "validate", false, "validate the configuration and exit")
	fs.BoolVar(&o.serve, "serve", false, "serve the import JSON API")
	fs.BoolVar(&o.verbose, "v", false, "enable verbose logs")
	fs.StringVar(&o.metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway, datadog (overrides env METRICS_BACKEND)")
	fs.StringVar(&o.pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if o.cfgPath != "" {
		if cfg, err = config.Load(o.cfgPath); err != nil {
			return err
		}
	}
	issues := config.ValidateImport(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		return fmt.Errorf("configuration is invalid: %s", o.cfgPath)
	}
	if o.validate {
		log.Printf("configuration is valid: %s", o.cfgPath)
		return nil
	}

	flush := setupMetrics(cfg, o)
	defer flush()

	classifier, err := buildClassifier(cfg)
	if err != nil {
		return err
	}
	opts := importer.Options{
		Job:       cfg.Job,
		Parser:    csv.NewParser(csv.Options{Comma: cfg.Parser.Options.Rune("delimiter", 0)}),
		Mapper:    &semantic.Mapper{Classifier: classifier, Timeout: cfg.Runtime.MappingTimeout(), SampleRows: cfg.Runtime.SampleRows},
		ChunkSize: cfg.Runtime.ChunkSize,
	}
	if o.verbose {
		log.Printf("herdimport: job=%s storage=%s table=%s classifier=%s chunk_size=%d",
			cfg.Job, cfg.Storage.Kind, cfg.Storage.DB.Table, cfg.Classifier.Kind, cfg.Runtime.ChunkSize)
	}

	if o.serve {
		repo, err := openSink(ctx, cfg)
		if err != nil {
			return err
		}
		defer repo.Close()
		opts.Sink = repo
		return serve(ctx, cfg, importer.NewStore(opts))
	}

	if o.file == "" {
		return errors.New("-file is required unless -serve or -validate is set")
	}
	if !o.dryRun {
		if strings.TrimSpace(o.farm) == "" {
			return errors.New("-farm is required to commit")
		}
		repo, err := openSink(ctx, cfg)
		if err != nil {
			return err
		}
		defer repo.Close()
		opts.Sink = repo
	}
	return importFile(ctx, importer.NewSession(opts), o, stdout)
}

func importFile(ctx context.Context, sess *importer.Session, o options, stdout io.Writer) error {
	f, err := os.Open(o.file)
	if err != nil {
		return fmt.Errorf("open %s: %w", o.file, err)
	}
	defer f.Close()

	start := time.Now()
	if err := sess.Load(ctx, f.Name(), f); err != nil {
		return err
	}
	for _, ov := range o.overrides {
		if err := sess.Assign(ov.Column, ov.Field); err != nil {
			return fmt.Errorf("-map %s: %w", ov.Column, err)
		}
	}
	if !sess.Editor().Ready() {
		log.Printf("herdimport: no column maps to tag or name; identifiers will be generated")
	}

	if o.dryRun {
		return printDryRun(sess, stdout)
	}

	out, err := sess.Commit(ctx, o.farm)
	if encErr := json.NewEncoder(stdout).Encode(out); encErr != nil {
		return encErr
	}
	if err != nil {
		return err
	}
	if o.verbose {
		log.Printf("completed in %s", time.Since(start).Truncate(time.Millisecond))
	}
	if out.Total > 0 && !out.Usable() {
		return errors.New(out.Message())
	}
	return nil
}

func printDryRun(sess *importer.Session, stdout io.Writer) error {
	snap := sess.Snapshot(0)
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "COLUMN\tFIELD\tCONFIDENCE\tTIER\n")
	for _, m := range snap.Mappings {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", m.SourceColumn, m.Label, m.Confidence, m.Tier)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "rows=%d source=%s fingerprint=%s\n", snap.RowCount, snap.MappingSource, snap.Fingerprint)

	recs, err := sess.Preview(5)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	for _, r := range recs {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// serve runs the HTTP API and, when metrics are pushed, a periodic flush,
// until ctx is cancelled.
func serve(ctx context.Context, cfg config.Import, store *importer.Store) error {
	g, gctx := errgroup.WithContext(ctx)
	srv := webui.NewServer(webui.Config{Addr: cfg.Server.Addr, SampleRows: cfg.Runtime.SampleRows}, store)
	g.Go(func() error { return srv.Serve(gctx) })
	g.Go(func() error {
		t := time.NewTicker(30 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-t.C:
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}
		}
	})
	return g.Wait()
}
