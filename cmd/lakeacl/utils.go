package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/tidelake/lakeacl/internal/config"
	"github.com/tidelake/lakeacl/internal/utils"
)

var (
	// https://github.com/muesli/termenv/blob/master/ansicolors.go
	red       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	green     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	yellow    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cyan      = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	gray      = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	lightGray = lipgloss.NewStyle().Foreground(lipgloss.Color("248"))
)

func showHeader() {
	color.New(color.FgHiCyan, color.Bold).
		Print(utils.LakeAclArt + "\n")
}

func logConfig(cfg *config.Config) {
	fmt.Println(lightGray.Render("------ LAKEACL CONFIG ------"))
	fmt.Printf("%s%s\n", gray.Render("Account "), green.Render(cfg.Account))
	fmt.Printf("%s%s\n", gray.Render("Server  "), green.Render(cfg.ServerURL))
	fmt.Printf("%s%s\n", gray.Render("Key     "), green.Render(utils.MaskSecret(cfg.AccessKey)))
	fmt.Printf("%s%s\n", gray.Render("Config  "), green.Render(cfg.Path))
}
