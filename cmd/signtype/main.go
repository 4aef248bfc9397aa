// Copyright 2025 The SignType Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the SignType suggestion server and its debugging commands.

SignType turns recognized hand signs into text. A client sends camera frames
and the sentence signed so far; the server classifies each frame with an
external recognizer and answers with next-word suggestions drawn from a
trigram model trained on a plain-text corpus, one utterance per line.

# Usage

Start the MessagePack IPC server on stdin/stdout:

	signtype --corpus markov_chain.txt

Try the model interactively:

	signtype cli -d

One-shot queries:

	signtype suggest i like
	signtype stats

# Configuration

A TOML config is created with defaults on first run (see package config).
SIGNTYPE_* environment variables, optionally from a .env file in the working
directory, override it. Server mode re-reads the file when it changes.
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/signtype/signtype/pkg/config"
)

var (
	Version = "0.1.0"
	gh      = "https://github.com/signtype/signtype"
)

func sigHandler(cleanup func()) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		if cleanup != nil {
			cleanup()
		}
		os.Exit(0)
	}()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// showVersion prints the styled version banner.
func showVersion() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"}).
		Background(lipgloss.AdaptiveColor{Light: "#f2e9e1", Dark: "#26233a"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	logger.SetStyles(styles)

	logger.Print("")
	logger.Print("[ SignType ] Signs in, words out.")
	logger.Print("", "version", Version)
	logger.Print("")
	logger.Print("use -h or --help to see available options")
	logger.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(a *app) {
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	fmt.Fprintln(os.Stderr, "==========")
	fmt.Fprintln(os.Stderr, " SignType ")
	fmt.Fprintln(os.Stderr, "==========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", os.Getpid())
	log.Infof("corpus: ( %s )", a.corpusPath)
	log.Infof("config: ( %s )", config.GetActiveConfigPath(a.configPath))
	log.Info("status: ready")
	fmt.Fprintln(os.Stderr, "==========")

	log.SetLevel(currentLevel)
}
