package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	defaultTickInterval  = 3 * time.Second
	defaultWindowSize    = 50
	defaultWarmupCandles = 10
	defaultCurrency      = "RUB"
	defaultListenAddr    = ":8080"
	defaultJournalDir    = "./wal/sessions"
)

var (
	defaultInitialPrice     = decimal.NewFromInt(100)
	defaultInitialCash      = decimal.NewFromInt(100000)
	defaultMaxChangePercent = decimal.NewFromInt(3)
	defaultWickSize         = decimal.NewFromInt(2)
)

type Config struct {
	TickInterval  time.Duration
	WindowSize    int
	WarmupCandles int
	InitialPrice  decimal.Decimal
	InitialCash   decimal.Decimal
	// MaxChangePercent bounds the per-tick move, 3 means +/-3%.
	MaxChangePercent decimal.Decimal
	WickSize         decimal.Decimal
	Seed             int64
	Currency         string

	ListenAddr   string
	TLSDomains   []string
	CertCacheDir string

	JournalEnabled bool
	JournalDir     string
}

type ConfigTmp struct {
	TickInterval        time.Duration `yaml:"tick_interval,omitempty"`
	WindowSize          int           `yaml:"window_size,omitempty"`
	WarmupCandlesStr    string        `yaml:"warmup_candles,omitempty"`
	InitialPrice        string        `yaml:"initial_price,omitempty"`
	InitialCash         string        `yaml:"initial_cash,omitempty"`
	MaxChangePercentStr string        `yaml:"max_change_percent,omitempty"`
	WickSizeStr         string        `yaml:"wick_size,omitempty"`
	Seed                int64         `yaml:"seed,omitempty"`
	Currency            string        `yaml:"currency,omitempty"`
	ListenAddr          string        `yaml:"listen_addr,omitempty"`
	TLSDomains          []string      `yaml:"tls_domains,omitempty"`
	CertCacheDir        string        `yaml:"cert_cache_dir,omitempty"`
	JournalDisabled     bool          `yaml:"journal_disabled,omitempty"`
	JournalDir          string        `yaml:"journal_dir,omitempty"`
}

// Default returns the configuration of the classic game.
func Default() Config {
	return Config{
		TickInterval:     defaultTickInterval,
		WindowSize:       defaultWindowSize,
		WarmupCandles:    defaultWarmupCandles,
		InitialPrice:     defaultInitialPrice,
		InitialCash:      defaultInitialCash,
		MaxChangePercent: defaultMaxChangePercent,
		WickSize:         defaultWickSize,
		Currency:         defaultCurrency,
		ListenAddr:       defaultListenAddr,
		JournalEnabled:   true,
		JournalDir:       defaultJournalDir,
	}
}

// Get reads the configuration from the command line.
func Get() (Config, error) {
	return Parse(os.Args[1:])
}

// Parse reads a yaml config when --config is given, otherwise the remaining flags.
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("papertrader", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to yaml config")
	tick := fs.Duration("tick", defaultTickInterval, "interval between simulated ticks")
	window := fs.Int("window", defaultWindowSize, "number of candles kept for the chart")
	warmup := fs.Int("warmup", defaultWarmupCandles, "candles generated at session start")
	price := fs.String("price", defaultInitialPrice.String(), "initial share price")
	cash := fs.String("cash", defaultInitialCash.String(), "initial cash balance")
	maxChange := fs.String("maxchange", defaultMaxChangePercent.String(), "max per-tick move in percent, example: 3")
	wick := fs.String("wick", defaultWickSize.String(), "max wick length in price units")
	seed := fs.Int64("seed", 0, "random seed, 0 means time based")
	currency := fs.String("currency", defaultCurrency, "display currency code")
	addr := fs.String("addr", defaultListenAddr, "http listen address")
	domains := fs.String("tlsdomains", "", "comma separated domains for automatic TLS")
	certCache := fs.String("certcache", "", "directory for cached TLS certificates")
	journalDir := fs.String("journaldir", defaultJournalDir, "session journal directory")
	noJournal := fs.Bool("nojournal", false, "disable the session journal")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *configPath != "" {
		return getYaml(*configPath)
	}

	c := ConfigTmp{
		TickInterval:        *tick,
		WindowSize:          *window,
		WarmupCandlesStr:    fmt.Sprintf("%d", *warmup),
		InitialPrice:        *price,
		InitialCash:         *cash,
		MaxChangePercentStr: *maxChange,
		WickSizeStr:         *wick,
		Seed:                *seed,
		Currency:            *currency,
		ListenAddr:          *addr,
		TLSDomains:          splitDomains(*domains),
		CertCacheDir:        *certCache,
		JournalDisabled:     *noJournal,
		JournalDir:          *journalDir,
	}
	return c.toConfig()
}

func getYaml(path string) (Config, error) {
	var c ConfigTmp

	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(f, &c); err != nil {
		return Config{}, err
	}

	return c.toConfig()
}

func (c ConfigTmp) toConfig() (Config, error) {
	conf := Default()

	if c.TickInterval != 0 {
		conf.TickInterval = c.TickInterval
	}
	if c.WindowSize != 0 {
		conf.WindowSize = c.WindowSize
	}
	if c.WarmupCandlesStr != "" {
		var warmup int
		if _, err := fmt.Sscanf(c.WarmupCandlesStr, "%d", &warmup); err != nil {
			return Config{}, fmt.Errorf("incorrect 'warmup_candles' param (must be an integer), error: %w", err)
		}
		conf.WarmupCandles = warmup
	}

	var err error
	if conf.InitialPrice, err = parseDecimal(c.InitialPrice, "initial_price", conf.InitialPrice); err != nil {
		return Config{}, err
	}
	if conf.InitialCash, err = parseDecimal(c.InitialCash, "initial_cash", conf.InitialCash); err != nil {
		return Config{}, err
	}
	if conf.MaxChangePercent, err = parseDecimal(c.MaxChangePercentStr, "max_change_percent", conf.MaxChangePercent); err != nil {
		return Config{}, err
	}
	if conf.WickSize, err = parseDecimal(c.WickSizeStr, "wick_size", conf.WickSize); err != nil {
		return Config{}, err
	}

	conf.Seed = c.Seed
	if c.Currency != "" {
		conf.Currency = strings.ToUpper(c.Currency)
	}
	if c.ListenAddr != "" {
		conf.ListenAddr = c.ListenAddr
	}
	conf.TLSDomains = c.TLSDomains
	conf.CertCacheDir = c.CertCacheDir
	conf.JournalEnabled = !c.JournalDisabled
	if c.JournalDir != "" {
		conf.JournalDir = c.JournalDir
	}

	if err := conf.Validate(); err != nil {
		return Config{}, err
	}
	return conf, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("window size must be at least 1, got %d", c.WindowSize)
	}
	if c.WarmupCandles < 0 {
		return fmt.Errorf("warmup candles must not be negative, got %d", c.WarmupCandles)
	}
	if !c.InitialPrice.IsPositive() {
		return fmt.Errorf("initial price must be positive, got %s", c.InitialPrice.String())
	}
	if !c.InitialCash.IsPositive() {
		return fmt.Errorf("initial cash must be positive, got %s", c.InitialCash.String())
	}
	if !c.MaxChangePercent.IsPositive() || c.MaxChangePercent.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return fmt.Errorf("max change percent must be in (0, 100), got %s", c.MaxChangePercent.String())
	}
	if c.WickSize.IsNegative() {
		return fmt.Errorf("wick size must not be negative, got %s", c.WickSize.String())
	}
	return nil
}

// MaxChange returns the per-tick move bound as a fraction.
func (c Config) MaxChange() float64 {
	return c.MaxChangePercent.Div(decimal.NewFromInt(100)).InexactFloat64()
}

func parseDecimal(value, name string, fallback decimal.Decimal) (decimal.Decimal, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("incorrect '%s' param (must be a decimal), error: %w", name, err)
	}
	return d, nil
}

func splitDomains(s string) []string {
	var out []string
	for _, d := range strings.Split(s, ",") {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}
