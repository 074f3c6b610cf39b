package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Banner returns the flame-lettered title shown by the CLI and login screen.
func Banner() string {
	flame := lipgloss.NewStyle().Foreground(Flame).Bold(true)
	ember := lipgloss.NewStyle().Foreground(Ember)
	dim := lipgloss.NewStyle().Foreground(Muted)

	art := "" +
		ember.Render("     )    (         )") + "\n" +
		flame.Render("  ╻ ╻┏━┓╺┳╸   ╺┳╸┏━┓╻┏ ┏━╸┏━┓") + "\n" +
		flame.Render("  ┣━┫┃ ┃ ┃     ┃ ┣━┫┣┻┓┣╸ ┗━┓") + "\n" +
		flame.Render("  ╹ ╹┗━┛ ╹     ╹ ╹ ╹╹ ╹┗━╸┗━┛") + "\n" +
		dim.Render("  swipe right to agree, left to disagree") + "\n"
	return art
}

// PrintBanner prints the banner to stdout.
func PrintBanner() {
	fmt.Print(Banner())
}
