package setup

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/papertrader/config"
)

// ConfigFile is where the wizard writes its result.
const ConfigFile = "config.gen.yaml"

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// Answers holds the raw wizard inputs.
type Answers struct {
	InitialCash      string
	InitialPrice     string
	Currency         string
	TickInterval     string
	WindowSize       string
	WarmupCandles    string
	MaxChangePercent string
	WickSize         string
	ListenAddr       string
	Journal          bool
}

// DefaultAnswers prefills the wizard with the default game.
func DefaultAnswers() Answers {
	d := config.Default()
	return Answers{
		InitialCash:      d.InitialCash.String(),
		InitialPrice:     d.InitialPrice.String(),
		Currency:         d.Currency,
		TickInterval:     d.TickInterval.String(),
		WindowSize:       strconv.Itoa(d.WindowSize),
		WarmupCandles:    strconv.Itoa(d.WarmupCandles),
		MaxChangePercent: d.MaxChangePercent.String(),
		WickSize:         d.WickSize.String(),
		ListenAddr:       d.ListenAddr,
		Journal:          d.JournalEnabled,
	}
}

// ConfigTmp converts the answers to the yaml config layout.
func (a Answers) ConfigTmp() (config.ConfigTmp, error) {
	tick, err := time.ParseDuration(a.TickInterval)
	if err != nil {
		return config.ConfigTmp{}, fmt.Errorf("invalid tick interval: %w", err)
	}
	window, err := strconv.Atoi(strings.TrimSpace(a.WindowSize))
	if err != nil {
		return config.ConfigTmp{}, fmt.Errorf("invalid window size: %w", err)
	}

	return config.ConfigTmp{
		TickInterval:        tick,
		WindowSize:          window,
		WarmupCandlesStr:    strings.TrimSpace(a.WarmupCandles),
		InitialPrice:        strings.TrimSpace(a.InitialPrice),
		InitialCash:         strings.TrimSpace(a.InitialCash),
		MaxChangePercentStr: strings.TrimSpace(a.MaxChangePercent),
		WickSizeStr:         strings.TrimSpace(a.WickSize),
		Currency:            strings.ToUpper(strings.TrimSpace(a.Currency)),
		ListenAddr:          strings.TrimSpace(a.ListenAddr),
		JournalDisabled:     !a.Journal,
	}, nil
}

// WriteConfig saves the answers as yaml to path.
func WriteConfig(path string, a Answers) error {
	cfgTmp, err := a.ConfigTmp()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}
	return nil
}

func clearScreen(step string) {
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PAPERTRADER SETUP"))
	fmt.Println(stepStyle.Render(step))
}

// RunTUI launches the terminal configuration wizard and writes ConfigFile.
func RunTUI() error {
	answers := DefaultAnswers()
	var confirm bool

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PAPERTRADER SETUP"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Configure your paper trading game.\n"))

	fmt.Println(stepStyle.Render("STEP 1: ACCOUNT"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Starting cash").
				Value(&answers.InitialCash).
				Validate(validatePositive),
			huh.NewInput().
				Title("Display currency").
				Description("ISO 4217 code (e.g. RUB, USD)").
				Value(&answers.Currency).
				Validate(validateCurrency),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen("STEP 2: MARKET")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Initial share price").
				Value(&answers.InitialPrice).
				Validate(validatePositive),
			huh.NewInput().
				Title("Max move per tick %").
				Description("Price moves up to this percent each tick (e.g. 3)").
				Value(&answers.MaxChangePercent).
				Validate(validatePercent),
			huh.NewInput().
				Title("Max wick length").
				Value(&answers.WickSize).
				Validate(validateNonNegative),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen("STEP 3: TIMING")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Tick interval").
				Description("Duration string (e.g. 3s, 500ms)").
				Value(&answers.TickInterval).
				Validate(validateDuration),
			huh.NewInput().
				Title("Chart window").
				Description("Candles kept on the chart (40-50 plays best)").
				Value(&answers.WindowSize).
				Validate(validatePositiveInt),
			huh.NewInput().
				Title("Warm-up candles").
				Value(&answers.WarmupCandles).
				Validate(validateNonNegativeInt),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen("STEP 4: SERVER")
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen address").
				Value(&answers.ListenAddr),
			huh.NewConfirm().
				Title("Keep a session journal?").
				Value(&answers.Journal),
		),
	).Run()
	if err != nil {
		return err
	}

	clearScreen("FINAL CONFIRMATION")
	summary := fmt.Sprintf(
		"Cash: %s %s\nPrice: %s\nMove: ±%s%%\nTick: %s\nWindow: %s\nAddress: %s\n",
		answers.InitialCash, strings.ToUpper(answers.Currency), answers.InitialPrice,
		answers.MaxChangePercent, answers.TickInterval, answers.WindowSize, answers.ListenAddr,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}
	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	if err := WriteConfig(ConfigFile, answers); err != nil {
		return err
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nStarting game...", ConfigFile)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func validatePositive(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if !d.IsPositive() {
		return fmt.Errorf("must be greater than 0")
	}
	return nil
}

func validateNonNegative(s string) error {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if d.IsNegative() {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validatePercent(s string) error {
	if err := validatePositive(s); err != nil {
		return err
	}
	d, _ := decimal.NewFromString(strings.TrimSpace(s))
	if d.GreaterThanOrEqual(decimal.NewFromInt(100)) {
		return fmt.Errorf("must be below 100")
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be an integer")
	}
	if n < 1 {
		return fmt.Errorf("must be at least 1")
	}
	return nil
}

func validateNonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be an integer")
	}
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateCurrency(s string) error {
	if money.GetCurrency(strings.ToUpper(strings.TrimSpace(s))) == nil {
		return fmt.Errorf("unknown currency code")
	}
	return nil
}
