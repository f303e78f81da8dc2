package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yiblet/spares/internal/api"
	"github.com/yiblet/spares/internal/catalog"
	"github.com/yiblet/spares/internal/clipboard"
	"github.com/yiblet/spares/internal/clipboard/sysboard"
	"github.com/yiblet/spares/internal/config"
	"github.com/yiblet/spares/internal/history"
	"github.com/yiblet/spares/internal/logger"
	"github.com/yiblet/spares/internal/search"
	"github.com/yiblet/spares/internal/store"
	"github.com/yiblet/spares/internal/store/dbstore"
	"github.com/yiblet/spares/internal/suggest"
	"github.com/yiblet/spares/internal/tui"
)

const (
	// DefaultDBName is the state database inside the config directory.
	DefaultDBName = "spares.db"

	userAgent = "spares/0.1.0"
)

// CLI handles the command-line interface
type CLI struct {
	config        *config.Config
	configManager *config.ConfigManager
	store         store.Store
	history       *history.Store
	client        *api.Client
	fetcher       *suggest.Fetcher
	clipboard     clipboard.Clipboard
	log           *slog.Logger
	closeLog      func() error

	out io.Writer
	in  io.Reader

	// runProgram runs a bubbletea model to completion.
	runProgram func(tea.Model) (tea.Model, error)
}

// New creates a new CLI instance
func New() (*CLI, error) {
	return NewWithArgs(nil)
}

// NewWithArgs creates a new CLI instance. Settings come from the config file,
// then .env and the environment, then flags.
func NewWithArgs(args *Args) (*CLI, error) {
	if args == nil {
		args = &Args{}
	}

	if err := config.LoadEnvFile(".env"); err != nil {
		return nil, err
	}

	var cm *config.ConfigManager
	if args.ConfigPath != nil {
		cm = config.NewConfigManagerWithPath(*args.ConfigPath)
	} else {
		var err error
		cm, err = config.NewConfigManager()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := cm.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Config commands touch only the file and must work while it is invalid.
	if args.Config != nil {
		return &CLI{
			config:        cfg,
			configManager: cm,
			log:           logger.Nop(),
			closeLog:      func() error { return nil },
			out:           os.Stdout,
			in:            os.Stdin,
			runProgram:    runProgram,
		}, nil
	}

	cfg.ApplyEnv(os.Getenv)
	if args.APIURL != nil {
		cfg.APIURL = *args.APIURL
	}
	if args.Category != nil {
		cfg.Category = *args.Category
	}
	if args.Debug {
		cfg.Debug = true
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, closeLog, err := logger.OpenFile(cfg.LogFile, cfg.Debug)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(args.DBPath, cfg.HistoryLocation)
	if err != nil {
		closeLog()
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	sqliteStore, err := dbstore.NewSQLiteStore(dbPath)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to create database store: %w", err)
	}

	client, err := api.New(cfg.APIURL, api.WithUserAgent(userAgent))
	if err != nil {
		sqliteStore.Close()
		closeLog()
		return nil, err
	}

	log.Debug("cli ready", "api_url", cfg.APIURL, "db_path", sqliteStore.Path(), "category", cfg.Category)

	return &CLI{
		config:        cfg,
		configManager: cm,
		store:         sqliteStore,
		history:       history.New(sqliteStore.State(), log),
		client:        client,
		fetcher: suggest.NewFetcher(client, suggest.Options{
			Timeout:   cfg.FetchTimeout(),
			RateLimit: cfg.RateLimit,
			CacheTTL:  cfg.CacheTTL(),
			Logger:    log,
		}),
		clipboard:  sysboard.New(),
		log:        log,
		closeLog:   closeLog,
		out:        os.Stdout,
		in:         os.Stdin,
		runProgram: runProgram,
	}, nil
}

// resolveDBPath picks the database file: flag, then config, then the default.
// Relative config paths live under the config directory.
func resolveDBPath(flag *string, location string) (string, error) {
	if flag != nil {
		return *flag, nil
	}

	configDir, err := config.DefaultDir()
	if err != nil {
		return "", err
	}
	switch {
	case location == "":
		return filepath.Join(configDir, DefaultDBName), nil
	case filepath.IsAbs(location):
		return location, nil
	default:
		return filepath.Join(configDir, location), nil
	}
}

func runProgram(model tea.Model) (tea.Model, error) {
	return tea.NewProgram(model, tea.WithAltScreen()).Run()
}

// Close releases the database and the log file.
func (c *CLI) Close() error {
	var err error
	if c.store != nil {
		err = c.store.Close()
	}
	if cerr := c.closeLog(); err == nil {
		err = cerr
	}
	return err
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.Suggest != nil:
		return c.executeSuggest(args.Suggest)
	case args.Popular != nil:
		return c.executePopular()
	case args.History != nil:
		return c.executeHistory(args.History)
	case args.Browse != nil:
		return c.executeBrowse(args.Browse)
	case args.Config != nil:
		return c.executeConfig(args.Config)
	case args.Search != nil:
		return c.executeSearch(args.Search)
	default:
		return c.executeSearch(&SearchCmd{})
	}
}

// executeSearch runs the interactive search and prints the committed route.
func (c *CLI) executeSearch(cmd *SearchCmd) error {
	model := tui.NewAppModel(tui.Options{
		Suggester:      c.fetcher,
		History:        c.history,
		Clipboard:      c.clipboard,
		Logger:         c.log,
		Category:       c.config.Category,
		Debounce:       c.config.Debounce(),
		MinQueryLength: c.config.MinQueryLength,
		PopularRefresh: c.config.PopularRefresh(),
		InitialQuery:   cmd.Query,
	})

	final, err := c.runProgram(model)
	model.Teardown()
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if app, ok := final.(*tui.AppModel); ok && app.Selected != nil {
		c.log.Info("selection committed", "route", app.Selected.Route)
		fmt.Fprintln(c.out, app.Selected.Route)
	}
	return nil
}

// executeSuggest handles the 'spares suggest' command
func (c *CLI) executeSuggest(cmd *SuggestCmd) error {
	if search.QueryLength(cmd.Query) < c.config.MinQueryLength {
		c.log.Debug("query too short, skipping lookup", "query", cmd.Query)
		return nil
	}

	result, err := c.fetcher.Fetch(context.Background(), cmd.Query, c.config.Category)
	if err != nil {
		return err
	}

	if len(result.Suggestions) == 0 {
		fmt.Fprintf(c.out, "No results for %q\n", strings.TrimSpace(cmd.Query))
	}
	suggestions := result.Suggestions
	if len(suggestions) > search.MaxSuggestions {
		suggestions = suggestions[:search.MaxSuggestions]
	}
	for _, s := range suggestions {
		fmt.Fprintf(c.out, "%s\t%s\t%s\n", bracketMatches(s.Label, cmd.Query), s.MatchType, s.Route())
	}

	if len(result.Popular) > 0 {
		fmt.Fprintf(c.out, "\nPopular: %s\n", strings.Join(result.Popular, ", "))
	}
	return nil
}

// bracketMatches marks every occurrence of query in label with brackets.
func bracketMatches(label, query string) string {
	var b strings.Builder
	for _, seg := range search.Highlight(label, query) {
		if seg.Match {
			b.WriteString("[" + seg.Text + "]")
		} else {
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

// executePopular handles the 'spares popular' command
func (c *CLI) executePopular() error {
	popular, err := c.fetcher.Popular(context.Background())
	if err != nil {
		return fmt.Errorf("failed to load popular searches: %w", err)
	}

	if len(popular) == 0 {
		fmt.Fprintln(c.out, "No popular searches yet.")
		return nil
	}
	for _, q := range popular {
		fmt.Fprintln(c.out, q)
	}
	return nil
}

// executeHistory handles the 'spares history' command
func (c *CLI) executeHistory(cmd *HistoryCmd) error {
	switch {
	case cmd.List != nil:
		return c.executeHistoryList(cmd.List)
	case cmd.Clear != nil:
		return c.executeHistoryClear(cmd.Clear)
	default:
		return fmt.Errorf("no history subcommand specified")
	}
}

func (c *CLI) executeHistoryList(cmd *HistoryListCmd) error {
	entries := c.history.List(cmd.Limit)
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "No recent searches.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintln(c.out, e)
	}
	if cmd.Verbose {
		if at, ok := c.history.UpdatedAt(); ok {
			fmt.Fprintf(c.out, "\nLast updated: %s\n", at.Local().Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}

func (c *CLI) executeHistoryClear(cmd *HistoryClearCmd) error {
	entries := c.history.List(0)
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "No recent searches.")
		return nil
	}

	// Prompt for confirmation unless --force is used
	if !cmd.Force {
		fmt.Fprintf(c.out, "This will delete %d recent search(es). Continue? [y/N]: ", len(entries))
		response, _ := bufio.NewReader(c.in).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(c.out, "Cancelled.")
			return nil
		}
	}

	if err := c.history.Clear(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	fmt.Fprintf(c.out, "Cleared %d recent search(es).\n", len(entries))
	return nil
}

// executeBrowse prints the filtered catalog, or opens the browser when no
// filter is given.
func (c *CLI) executeBrowse(cmd *BrowseCmd) error {
	brands, err := c.loadCatalog(cmd.Catalog)
	if err != nil {
		return err
	}

	if cmd.Query == nil {
		final, err := c.runProgram(tui.NewBrowseModel(brands, c.config.Category, ""))
		if err != nil {
			return fmt.Errorf("browse failed: %w", err)
		}
		if b, ok := final.(*tui.BrowseModel); ok && b.Selected != nil {
			fmt.Fprintln(c.out, b.Selected.Route)
		}
		return nil
	}

	query := *cmd.Query
	matches := catalog.Filter(brands, query)
	if len(matches) == 0 {
		return fmt.Errorf("no brands or models match %q", strings.TrimSpace(query))
	}
	for _, brand := range matches {
		fmt.Fprintln(c.out, brand.Name)
		for _, m := range brand.Models {
			if search.Matches(brand.Name, query) || search.Matches(m.Name, query) {
				fmt.Fprintf(c.out, "  %s\n", m.Name)
			}
		}
	}
	return nil
}

func (c *CLI) loadCatalog(path *string) ([]catalog.Brand, error) {
	if path != nil {
		return catalog.LoadFile(*path)
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.config.FetchTimeout())
	defer cancel()
	brands, err := c.client.Brands(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	return brands, nil
}

// executeConfig handles the 'spares config' command
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Get != nil:
		return c.executeConfigGet(cmd.Get)
	case cmd.Set != nil:
		return c.executeConfigSet(cmd.Set)
	case cmd.List != nil:
		return c.executeConfigList()
	default:
		return fmt.Errorf("no config subcommand specified")
	}
}

// executeConfigGet handles the 'spares config get' command
func (c *CLI) executeConfigGet(cmd *ConfigGetCmd) error {
	value, err := c.configManager.Get(cmd.Key)
	if err != nil {
		return fmt.Errorf("failed to get config value: %w", err)
	}

	fmt.Fprintln(c.out, value)
	return nil
}

// executeConfigSet handles the 'spares config set' command
func (c *CLI) executeConfigSet(cmd *ConfigSetCmd) error {
	if err := c.configManager.Update(cmd.Key, cmd.Value); err != nil {
		return fmt.Errorf("failed to set config value: %w", err)
	}

	fmt.Fprintf(c.out, "Set %s = %s\n", cmd.Key, cmd.Value)
	return nil
}

// executeConfigList handles the 'spares config list' command
func (c *CLI) executeConfigList() error {
	values, err := c.configManager.List()
	if err != nil {
		return fmt.Errorf("failed to list config values: %w", err)
	}

	fmt.Fprintf(c.out, "Current configuration (%s):\n", c.configManager.GetConfigPath())
	for _, key := range config.Keys() {
		fmt.Fprintf(c.out, "  %s = %s\n", key, values[key])
	}
	return nil
}
