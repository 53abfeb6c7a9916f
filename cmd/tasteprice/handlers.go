package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/elonfeng/tasteprice/internal/config"
	"github.com/elonfeng/tasteprice/internal/scheduler"
	"github.com/elonfeng/tasteprice/internal/store"
	"github.com/elonfeng/tasteprice/pkg/alert"
	"github.com/elonfeng/tasteprice/pkg/catalog"
	"github.com/elonfeng/tasteprice/pkg/recommend"
	"github.com/elonfeng/tasteprice/pkg/server"
	"github.com/elonfeng/tasteprice/pkg/source"
)

type recommendOpts struct {
	bias       float64
	topK       int
	cutoff     int
	jsonOutput bool
}

type submitOpts struct {
	restaurant  string
	food        string
	price       *float64
	location    string
	taste       *float64
	portion     string
	category    string
	description string
}

// app holds the components every command shares.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	table   store.Store
	cache   *catalog.Cache
	engine  *recommend.Engine
	service *catalog.Service
	alerts  *alert.Manager
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, eris.Wrap(err, "load config")
	}

	logger, err := config.InitLogger(cfg.Log)
	if err != nil {
		return nil, err
	}

	table, err := store.Open(cfg.Table.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "open table %s", cfg.Table.Path)
	}

	cache := catalog.NewCache(table, logger)
	cache.OnLoad = server.ObserveCatalogLoad

	alerts := buildAlertManager(cfg, logger)
	var opts []catalog.ServiceOption
	if alerts.HasNotifiers() {
		opts = append(opts, catalog.WithOnChange(alerts.OnChange))
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		table:   table,
		cache:   cache,
		engine:  recommend.NewEngine(cache, cfg.Recommend.Options(), logger),
		service: catalog.NewService(table, cache, logger, opts...),
		alerts:  alerts,
	}, nil
}

func (a *app) Close() error {
	_ = a.logger.Sync()
	return a.table.Close()
}

func (a *app) scheduler(sources []source.Source) *scheduler.Scheduler {
	return scheduler.New(a.service, a.cache, sources,
		a.cfg.Schedule.ParseCollectInterval(),
		a.cfg.Schedule.ParseRefreshInterval(),
		a.logger,
	)
}

func buildSources(cfg *config.Config, logger *zap.Logger) []source.Source {
	fetcher := source.NewFetcher(cfg.Sources.RequestsPerSecond)
	filter := source.NewFilter(cfg.Filter.ExcludeKeywords)

	var sources []source.Source

	if cfg.Sources.Chowdeck.Enabled {
		vendors := make([]source.Vendor, len(cfg.Sources.Chowdeck.Vendors))
		for i, v := range cfg.Sources.Chowdeck.Vendors {
			vendors[i] = source.Vendor{Name: v.Name, URL: v.URL}
		}
		sources = append(sources, source.NewChowdeck(fetcher, vendors, cfg.Sources.Chowdeck.Location, filter, logger))
	}
	if cfg.Sources.Menus.Enabled {
		pages := make([]source.MenuPage, len(cfg.Sources.Menus.Pages))
		for i, p := range cfg.Sources.Menus.Pages {
			pages[i] = source.MenuPage{Name: p.Name, URL: p.URL, Parser: p.Parser}
		}
		sources = append(sources, source.NewMenuPages(fetcher, pages, cfg.Sources.Menus.Location, filter, logger))
	}
	if cfg.Sources.Feeds.Enabled {
		feeds := make([]source.MenuFeed, len(cfg.Sources.Feeds.Feeds))
		for i, f := range cfg.Sources.Feeds.Feeds {
			feeds[i] = source.MenuFeed{Name: f.Name, URL: f.URL}
		}
		sources = append(sources, source.NewFeed(fetcher, feeds, cfg.Sources.Feeds.Location, filter, logger))
	}

	return sources
}

// selectSources keeps the sources named in wanted. An empty list keeps all.
func selectSources(all []source.Source, wanted []string) ([]source.Source, error) {
	if len(wanted) == 0 {
		return all, nil
	}

	names := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		names[strings.ToLower(strings.TrimSpace(w))] = true
	}

	var out []source.Source
	for _, s := range all {
		if names[string(s.Name())] {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, eris.Errorf("no enabled sources match: %s", strings.Join(wanted, ", "))
	}
	return out, nil
}

func buildAlertManager(cfg *config.Config, logger *zap.Logger) *alert.Manager {
	var notifiers []alert.Notifier

	if cfg.Alerts.Slack.Enabled && cfg.Alerts.Slack.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewSlack(cfg.Alerts.Slack.WebhookURL))
	}
	if cfg.Alerts.Discord.Enabled && cfg.Alerts.Discord.WebhookURL != "" {
		notifiers = append(notifiers, alert.NewDiscord(cfg.Alerts.Discord.WebhookURL))
	}
	if cfg.Alerts.Webhook.Enabled && cfg.Alerts.Webhook.URL != "" {
		notifiers = append(notifiers, alert.NewWebhook(cfg.Alerts.Webhook.URL, cfg.Alerts.Webhook.Secret))
	}

	return alert.NewManager(notifiers, logger)
}

func runRecommend(ctx context.Context, args []string, opts recommendOpts) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	q := recommend.Query{Text: strings.Join(args, " "), TopK: opts.topK}
	if opts.bias >= 0 {
		if opts.bias > 1 {
			return eris.Errorf("--bias must be between 0 and 1, got %g", opts.bias)
		}
		q.CheapBias = &opts.bias
	}
	if opts.cutoff >= 0 {
		if opts.cutoff > 100 {
			return eris.Errorf("--cutoff must be between 0 and 100, got %d", opts.cutoff)
		}
		q.Cutoff = &opts.cutoff
	}

	res, err := a.engine.Recommend(ctx, q)
	if errors.Is(err, recommend.ErrNoMatch) {
		fmt.Fprintf(os.Stdout, "no dishes found for %q (try: tasteprice suggest --food %q)\n", q.Text, q.Text)
		return nil
	}
	if err != nil {
		return dataError(err, a.cfg.Table.Path)
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	return printRecommendation(os.Stdout, res)
}

func printRecommendation(out io.Writer, res *recommend.Result) error {
	fmt.Fprintf(out, "best match: %s", res.Primary)
	if len(res.Matches) > 1 {
		others := make([]string, 0, len(res.Matches)-1)
		for _, m := range res.Matches[1:] {
			others = append(others, m.Name)
		}
		fmt.Fprintf(out, " (also: %s)", strings.Join(others, ", "))
	}
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSCORE\tRESTAURANT\tFOOD\tPRICE\tTASTE\tVOTES\tLOCATION")
	for i, it := range res.Items {
		fmt.Fprintf(w, "%d\t%.3f\t%s\t%s\t%.2f\t%s\t%d\t%s\n",
			i+1, it.UserScore, it.Restaurant, it.Food, it.Price,
			formatTaste(it.Taste), it.Votes, it.Location)
	}
	return w.Flush()
}

func formatTaste(t *float64) string {
	if t == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*t, 'f', 2, 64)
}

func runRate(ctx context.Context, restaurant, food, ratingArg string) error {
	rating, err := strconv.ParseFloat(strings.TrimSpace(ratingArg), 64)
	if err != nil {
		return eris.Errorf("rating must be a number between %g and %g, got %q",
			catalog.MinRating, catalog.MaxRating, ratingArg)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.service.RateDish(ctx, restaurant, food, rating)
	if err != nil {
		return writeError(err, a.cfg.Table.Path)
	}

	fmt.Fprintf(os.Stdout, "rated %s at %s: taste %s over %d votes\n",
		rec.Food, rec.Restaurant, formatTaste(rec.Taste), derefInt(rec.VotesCount))
	return nil
}

func runSubmit(ctx context.Context, opts submitOpts) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rec, err := a.service.SubmitEntry(ctx, catalog.Submission{
		Restaurant:  opts.restaurant,
		Food:        opts.food,
		Price:       opts.price,
		Taste:       opts.taste,
		Location:    opts.location,
		PortionSize: opts.portion,
		Category:    opts.category,
		Description: opts.description,
	})
	if err != nil {
		return writeError(err, a.cfg.Table.Path)
	}

	fmt.Fprintf(os.Stdout, "added %s at %s (%s) for GHS %.2f\n",
		rec.Food, rec.Restaurant, rec.Location, derefFloat(rec.Price))
	return nil
}

func runSuggest(ctx context.Context, restaurant, food string, limit int) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	pairs, err := a.engine.Suggest(ctx, restaurant, food, limit)
	if err != nil {
		return dataError(err, a.cfg.Table.Path)
	}
	return printSuggestions(os.Stdout, pairs)
}

func printSuggestions(out io.Writer, pairs []catalog.Pair) error {
	if len(pairs) == 0 {
		fmt.Fprintln(out, "no suggestions")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RESTAURANT\tFOOD")
	for _, p := range pairs {
		fmt.Fprintf(w, "%s\t%s\n", p.Restaurant, p.Food)
	}
	return w.Flush()
}

func runCollect(ctx context.Context, wanted []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	sources, err := selectSources(buildSources(a.cfg, a.logger), wanted)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Fprintln(os.Stdout, "no sources enabled (enable one under sources: in config.yaml)")
		return nil
	}

	res, err := a.scheduler(sources).RunCollect(ctx)
	if err != nil {
		return eris.Wrap(err, "collect")
	}
	return printCollect(os.Stdout, sources, res)
}

func printCollect(out io.Writer, sources []source.Source, res *source.Result) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tROWS\tERROR")
	for _, s := range sources {
		fmt.Fprintf(w, "%s\t%d\t%s\n", s.Name(), res.Counts[s.Name()], res.Errors[s.Name()])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\ntotal: %d rows from %d sources\n", len(res.Records), len(sources))
	return nil
}

func runServe(ctx context.Context, port int) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if port == 0 {
		port = a.cfg.Server.Port
	}

	srv := server.New(a.engine, a.service, a.scheduler(buildSources(a.cfg, a.logger)), port, a.logger)
	return srv.ListenAndServe(ctx)
}

func runDaemon(ctx context.Context, port int) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if port == 0 {
		port = a.cfg.Server.Port
	}

	sched := a.scheduler(buildSources(a.cfg, a.logger))
	srv := server.New(a.engine, a.service, sched, port, a.logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := sched.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})

	err = g.Wait()
	a.logger.Info("shutting down")
	return err
}

// dataError turns a missing table into an actionable message.
func dataError(err error, path string) error {
	if errors.Is(err, catalog.ErrDataUnavailable) {
		return eris.Errorf("no dish data at %s (run: tasteprice collect, or tasteprice submit)", path)
	}
	return err
}

// writeError turns rate and submit failures into user messages.
func writeError(err error, path string) error {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		return eris.Errorf("invalid or missing fields: %s", strings.Join(verr.Fields, ", "))
	case errors.Is(err, catalog.ErrNotFound):
		return eris.New("dish not found; add it first with: tasteprice submit")
	}
	return dataError(err, path)
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
