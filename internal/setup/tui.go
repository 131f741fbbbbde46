package setup

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"papersim/config"
)

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

// RunTUI launches the terminal configuration wizard and writes the result
// to config.gen.yaml.
func RunTUI() error {
	var (
		listenAddr      string
		feedURL         string
		pollIntervalStr string
		stateDir        string
		supplyStr       string
		confirm         bool
	)

	// defaults
	listenAddr = ":8080"
	pollIntervalStr = "1s"
	stateDir = "simstate"
	supplyStr = "1000000000"

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("PAPERSIM CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Set up your paper trading simulator.\n"))

	fmt.Println(stepStyle.Render("STEP 1: DASHBOARD"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listen Address").
				Description("Address the dashboard API binds to (e.g. :8080)").
				Value(&listenAddr).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("listen address cannot be empty")
					}
					return nil
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PAPERSIM CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: QUOTE FEED"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Websocket Feed URL").
				Description("Leave empty to run on fallback prices only").
				Value(&feedURL),
			huh.NewInput().
				Title("Poll Interval").
				Description("Duration string (e.g. 500ms, 1s, 5s)").
				Value(&pollIntervalStr).
				Validate(func(s string) error {
					_, err := time.ParseDuration(s)
					return err
				}),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PAPERSIM CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: ACCOUNTING"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("State Directory").
				Description("Where the trading state is persisted").
				Value(&stateDir).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("state directory cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Assumed Token Supply").
				Description("Supply used to derive token price from market cap").
				Value(&supplyStr).
				Validate(validateSupply),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("PAPERSIM CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"Listen: %s\nFeed: %s\nInterval: %s\nState Dir: %s\nToken Supply: %s\n",
		listenAddr, feedOrNone(feedURL), pollIntervalStr, stateDir, supplyStr,
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

	pollInterval, _ := time.ParseDuration(pollIntervalStr)

	cfgTmp := config.ConfigTmp{
		ListenAddr:     listenAddr,
		FeedURL:        feedURL,
		PollInterval:   pollInterval,
		StateDir:       stateDir,
		TokenSupplyStr: supplyStr,
	}

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nStarting simulator...", filename)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func validateSupply(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if !d.IsPositive() {
		return fmt.Errorf("must be positive")
	}
	return nil
}

func feedOrNone(url string) string {
	if url == "" {
		return "(fallback prices only)"
	}
	return url
}
