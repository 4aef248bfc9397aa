package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/signtype/signtype/internal/cli"
	"github.com/signtype/signtype/internal/logger"
	"github.com/signtype/signtype/internal/utils"
	"github.com/signtype/signtype/pkg/config"
	"github.com/signtype/signtype/pkg/ngram"
	"github.com/signtype/signtype/pkg/recognize"
	"github.com/signtype/signtype/pkg/server"
	"github.com/signtype/signtype/pkg/speech"
	"github.com/signtype/signtype/pkg/suggest"
	"github.com/spf13/cobra"
)

// app carries flags and everything built from them.
type app struct {
	debug      bool
	corpusFlag string
	configFlag string
	envFile    string
	limit      int

	cfg        *config.Config
	configPath string
	corpusPath string
	holder     *suggest.Holder
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "signtype",
		Short:         "Serve next-word suggestions for sign-to-text over MessagePack IPC",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "version":
				return nil
			case "config":
				logger.Setup(a.debug)
				return nil
			}
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve()
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.debug, "debug", "d", false, "Toggle debug mode")
	flags.StringVar(&a.corpusFlag, "corpus", "", "Corpus file, one utterance per line (overrides [corpus] path)")
	flags.StringVar(&a.configFlag, "config", "", "Path to a config.toml")
	flags.StringVar(&a.envFile, "env", ".env", "Optional .env file with SIGNTYPE_* overrides")
	flags.IntVar(&a.limit, "limit", 0, "Number of suggestions to return (0 uses [server] default_limit)")

	root.AddCommand(
		&cobra.Command{
			Use:   "cli",
			Short: "Interactive prompt for trying suggestions",
			RunE: func(cmd *cobra.Command, args []string) error {
				log.SetReportTimestamp(false)
				h := cli.NewInputHandler(a.holder, a.corpusPath, a.cfg.ClampLimit(a.limit), a.cfg.Server.FilterEnd, os.Stdin, os.Stdout)
				return h.Start()
			},
		},
		&cobra.Command{
			Use:   "suggest <sentence...>",
			Short: "Print the next words for a sentence",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				found := a.holder.Load().Suggest(suggest.ContextFromSentence(strings.Join(args, " ")))
				if a.cfg.Server.FilterEnd {
					found = suggest.WithoutEnd(found)
				}
				for _, s := range suggest.Limit(found, a.cfg.ClampLimit(a.limit)) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%.4f\n", s.Word, s.Probability)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Print model table sizes",
			RunE: func(cmd *cobra.Command, args []string) error {
				stats := a.holder.Load().Model().Stats()
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "corpus:              %s\n", a.corpusPath)
				fmt.Fprintf(out, "utterances:          %s\n", utils.FormatWithCommas(stats.Utterances))
				fmt.Fprintf(out, "start words:         %s\n", utils.FormatWithCommas(stats.StartWords))
				fmt.Fprintf(out, "bigram contexts:     %s\n", utils.FormatWithCommas(stats.BigramContexts))
				fmt.Fprintf(out, "trigram contexts:    %s\n", utils.FormatWithCommas(stats.TrigramContexts))
				fmt.Fprintf(out, "  ending an utterance: %s\n", utils.FormatWithCommas(stats.TrigramEndContexts))
				fmt.Fprintf(out, "vocabulary:          %s\n", utils.FormatWithCommas(stats.VocabularySize))
				return nil
			},
		},
		newConfigCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Show current version",
			Run: func(cmd *cobra.Command, args []string) {
				showVersion()
			},
		},
	)
	return root
}

// newConfigCmd edits the [server] section of the config file in place.
// Environment overrides are not applied, so they never end up on disk.
func newConfigCmd(a *app) *cobra.Command {
	var defaultLimit, maxLimit int
	var filterEnd bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or update [server] values in the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := a.configFlag
			if configPath == "" {
				var err error
				if configPath, err = config.GetDefaultConfigPath(); err != nil {
					return err
				}
			}
			cfg, err := config.InitConfig(configPath)
			if err != nil {
				return err
			}

			var dl, ml *int
			var fe *bool
			flags := cmd.Flags()
			if flags.Changed("default-limit") {
				dl = &defaultLimit
			}
			if flags.Changed("max-limit") {
				ml = &maxLimit
			}
			if flags.Changed("filter-end") {
				fe = &filterEnd
			}
			if dl != nil || ml != nil || fe != nil {
				if err := cfg.Update(configPath, dl, ml, fe); err != nil {
					log.Errorf("Failed to save config: %v", err)
					return err
				}
				log.Debugf("Updated config file: %s", configPath)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:        %s\n", config.GetActiveConfigPath(configPath))
			fmt.Fprintf(out, "default_limit: %d\n", cfg.Server.DefaultLimit)
			fmt.Fprintf(out, "max_limit:     %d\n", cfg.Server.MaxLimit)
			fmt.Fprintf(out, "filter_end:    %v\n", cfg.Server.FilterEnd)
			return nil
		},
	}
	cmd.Flags().IntVar(&defaultLimit, "default-limit", 0, "Suggestions returned when a request gives no limit")
	cmd.Flags().IntVar(&maxLimit, "max-limit", 0, "Upper bound on any requested limit")
	cmd.Flags().BoolVar(&filterEnd, "filter-end", false, "Drop the end-of-utterance marker from suggestions")
	return cmd
}

// setup loads env and config, finds the corpus and trains the model.
// A corpus that cannot be read aborts startup.
func (a *app) setup() error {
	if err := config.LoadEnvFile(a.envFile); err != nil {
		return fmt.Errorf("loading %s: %w", a.envFile, err)
	}
	if debug, err := strconv.ParseBool(os.Getenv(config.EnvDebug)); err == nil && debug {
		a.debug = true
	}
	logger.Setup(a.debug)

	cfg, configPath, err := config.LoadConfigWithPriority(a.configFlag)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.configPath = configPath
	log.Debugf("Using config file: (%s)", configPath)

	corpusPath := cfg.Corpus.Path
	if a.corpusFlag != "" {
		corpusPath = a.corpusFlag
	}

	pathResolver, err := utils.NewPathResolver()
	if err != nil {
		log.Errorf("Failed to initialize path resolver: %v", err)
		return err
	}
	a.corpusPath, err = pathResolver.GetCorpusPath(corpusPath)
	if err != nil {
		log.Errorf("Corpus not found: %v", err)
		return err
	}

	start := time.Now()
	model, err := ngram.TrainFile(a.corpusPath)
	if err != nil {
		log.Errorf("Failed to train: %v", err)
		return err
	}
	a.holder = suggest.NewHolder(suggest.NewEngine(model))
	log.Debugf("Trained on %s in %v", a.corpusPath, time.Since(start))
	return nil
}

func (a *app) serve() error {
	opts := []server.Option{
		server.WithRecognizer(a.recognizer()),
	}
	if a.configPath != "" {
		opts = append(opts, server.WithConfigPath(a.configPath))
	}

	var queue *speech.Queue
	if speaker := a.speaker(); speaker != nil {
		queue = speech.NewQueue(speaker, 16, 30*time.Second)
		opts = append(opts, server.WithSayer(queue))
	}
	sigHandler(func() {
		if queue != nil {
			queue.Close()
		}
	})

	srv := server.NewServer(a.holder, a.cfg, a.corpusPath, opts...)
	showStartupInfo(a)

	err := srv.Start(context.Background())
	if queue != nil {
		queue.Close()
	}
	if err != nil {
		log.Errorf("Server stopped: %v", err)
	}
	return err
}

func (a *app) recognizer() recognize.Recognizer {
	rc := a.cfg.Recognizer
	if rc.Command == "" {
		log.Warn("No recognizer command configured, predict will return empty labels")
		return recognize.Nop{}
	}
	r, err := recognize.NewCommandRecognizer(rc.Command, time.Duration(rc.TimeoutMs)*time.Millisecond)
	if err != nil {
		log.Warnf("Recognizer disabled: %v", err)
		return recognize.Nop{}
	}
	return r
}

func (a *app) speaker() speech.Speaker {
	sc := a.cfg.Speech
	if !sc.Enabled || sc.Command == "" {
		return nil
	}
	s, err := speech.NewCommandSpeaker(sc.Command, sc.Rate, sc.Volume)
	if err != nil {
		log.Warnf("Speech disabled: %v", err)
		return nil
	}
	return s
}
