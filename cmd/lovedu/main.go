package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"lovedu_client/cmd/lovedu/config"

	"github.com/joho/godotenv"
)

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"login":      {"Sign in with email and password", runLogin},
	"signup":     {"Create an account", runSignup},
	"logout":     {"Forget the stored session", runLogout},
	"whoami":     {"Show the signed-in user", runWhoami},
	"profile":    {"Update full name and date of birth", runProfile},
	"password":   {"Change the account password", runPassword},
	"chat":       {"Open the chat REPL", runChat},
	"courses":    {"List, browse and enroll in courses", runCourses},
	"admin":      {"Manage assistant files and courses (admins)", runAdmin},
	"plan":       {"Show or change the subscription plan", runPlan},
	"lang":       {"Show or set the interface language (en, ar)", runLang},
	"serve-mock": {"Run the in-memory development backend", runServeMock},
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Usage: lovedu [-config lovedu.yaml] <command> [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "  %-11s %s\n", name, commands[name].summary)
	}
}

func main() {
	configPath := flag.String("config", "", "Path to config file")
	flag.Usage = usage
	flag.Parse()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to read .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := newLogger(cfg.Log.Level)

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	name := flag.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		usage()
		os.Exit(2)
	}

	a, err := newApp(cfg, logger, os.Stdin, os.Stdout)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize client")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.run(ctx, a, flag.Args()[1:]); err != nil {
		a.fail(err)
		stop()
		os.Exit(1)
	}
}
