package main

import (
	"flag"
	"fmt"
	"os"

	"medstock/cmd/medctl/ui"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	url := flag.String("url", "http://127.0.0.1:9500", "Backend base URL")
	flag.Parse()

	client := ui.NewClient(*url)
	p := tea.NewProgram(ui.NewRootModel(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "medctl:", err)
		os.Exit(1)
	}
}
