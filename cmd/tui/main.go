package main

import (
	"fmt"
	"os"
	"time"

	"codeberg.org/storefront/server/internal/presence"
	"codeberg.org/storefront/server/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: tui <productId>")
		os.Exit(2)
	}

	productID := os.Args[1]

	endpoint := os.Getenv("STOREFRONT_API_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:8080"
	}

	opts := presence.DefaultWidgetOptions()
	widget := presence.NewWidget(presence.NewClient(endpoint, 10*time.Second), productID, opts)

	app := tui.NewApp(endpoint, productID, widget)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("error running viewer monitor: %v\n", err)
		os.Exit(1)
	}
}
