package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yiblet/spares/internal/config"
)

// Args represents the top-level command structure
type Args struct {
	ConfigPath *string `arg:"--config" help:"Path to config.yaml (default: ~/.config/spares/config.yaml)"`
	DBPath     *string `arg:"--db-path" help:"Path to the client state database (default: ~/.config/spares/spares.db)"`
	APIURL     *string `arg:"--api-url" help:"Storefront API base URL (overrides config and SPARES_API_URL)"`
	Category   *string `arg:"--category" help:"Restrict lookups to a part category"`
	Debug      bool    `arg:"--debug" help:"Verbose logging to the configured log file"`

	Search  *SearchCmd  `arg:"subcommand:search" help:"Interactive search (default)"`
	Suggest *SuggestCmd `arg:"subcommand:suggest" help:"One-shot autocomplete lookup"`
	Popular *PopularCmd `arg:"subcommand:popular" help:"Show popular searches"`
	History *HistoryCmd `arg:"subcommand:history" help:"Manage recent searches"`
	Browse  *BrowseCmd  `arg:"subcommand:browse" help:"Browse the brand and model catalog"`
	Config  *ConfigCmd  `arg:"subcommand:config" help:"Manage configuration"`
}

// SearchCmd represents the 'spares search' command
type SearchCmd struct {
	Query string `arg:"-q,--query" help:"Start with this query already typed"`
}

// SuggestCmd represents the 'spares suggest' command
type SuggestCmd struct {
	Query string `arg:"positional,required" help:"Query to look up"`
}

// PopularCmd represents the 'spares popular' command
type PopularCmd struct{}

// HistoryCmd represents the 'spares history' command
type HistoryCmd struct {
	List  *HistoryListCmd  `arg:"subcommand:list" help:"List recent searches, newest first"`
	Clear *HistoryClearCmd `arg:"subcommand:clear" help:"Clear recent searches"`
}

// HistoryListCmd represents the 'spares history list' command
type HistoryListCmd struct {
	Limit   int  `arg:"-n,--limit" default:"0" help:"Maximum number of entries (0 = all)"`
	Verbose bool `arg:"-v,--verbose" help:"Also show when the list was last updated"`
}

// HistoryClearCmd represents the 'spares history clear' command
type HistoryClearCmd struct {
	Force bool `arg:"-f,--force" help:"Skip confirmation prompt"`
}

// BrowseCmd represents the 'spares browse' command
type BrowseCmd struct {
	Catalog *string `arg:"--catalog" help:"Load the catalog from a YAML or JSON file instead of the API"`
	Query   *string `arg:"positional" help:"Print brands and models matching this filter (opens the browser if omitted)"`
}

// ConfigCmd represents the 'spares config' command
type ConfigCmd struct {
	Get  *ConfigGetCmd  `arg:"subcommand:get" help:"Get configuration value"`
	Set  *ConfigSetCmd  `arg:"subcommand:set" help:"Set configuration value"`
	List *ConfigListCmd `arg:"subcommand:list" help:"List all configuration"`
}

// ConfigGetCmd represents the 'spares config get' command
type ConfigGetCmd struct {
	Key string `arg:"positional,required" help:"Configuration key"`
}

// ConfigSetCmd represents the 'spares config set' command
type ConfigSetCmd struct {
	Key   string `arg:"positional,required" help:"Configuration key"`
	Value string `arg:"positional,required" help:"Configuration value"`
}

// ConfigListCmd represents the 'spares config list' command
type ConfigListCmd struct{}

// Description returns the program description
func (Args) Description() string {
	return "spares - search the spare-parts storefront from your terminal"
}

// Version returns the program version
func (Args) Version() string {
	return "spares 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  spares                              # Interactive search, prints the chosen route
  spares search -q "iphone 13"        # Start with a query
  spares --category display suggest sam
  spares popular
  spares history list -n 5
  spares history clear --force
  spares browse vivo                  # Print matching brands and models
  spares config set api-url https://shop.example.com/api

Configuration keys: ` + strings.Join(config.Keys(), ", ")
}

// HasCommand reports whether a subcommand was given.
func (args *Args) HasCommand() bool {
	return args.Search != nil || args.Suggest != nil || args.Popular != nil ||
		args.History != nil || args.Browse != nil || args.Config != nil
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	switch {
	case args.Suggest != nil:
		return args.Suggest.Validate()
	case args.History != nil:
		return args.History.Validate()
	case args.Config != nil:
		return args.Config.Validate()
	}
	return nil
}

// Validate validates suggest command arguments
func (s *SuggestCmd) Validate() error {
	if strings.TrimSpace(s.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	return nil
}

// Validate validates history command arguments
func (h *HistoryCmd) Validate() error {
	if h.List == nil && h.Clear == nil {
		return fmt.Errorf("no history subcommand specified")
	}
	if h.List != nil && h.List.Limit < 0 {
		return fmt.Errorf("limit must be non-negative")
	}
	return nil
}

// Validate validates config command arguments
func (c *ConfigCmd) Validate() error {
	var key string
	switch {
	case c.Get != nil:
		key = c.Get.Key
	case c.Set != nil:
		key = c.Set.Key
	case c.List != nil:
		return nil
	default:
		return fmt.Errorf("no config subcommand specified")
	}
	if !slices.Contains(config.Keys(), key) {
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
