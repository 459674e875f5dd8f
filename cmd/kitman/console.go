// Package main provides the kitman CLI entry point.
// This file launches the interactive console.
package main

import (
	"kitman/cmd/kitman/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// runConsole starts the interactive console
func runConsole() error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	p := tea.NewProgram(
		ui.NewApp(cfg, st),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	return err
}
