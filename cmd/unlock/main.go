// unlock runs the client-side access recovery flow from a terminal: it
// checks a magic-link token or a typed license against the unlock service
// and records the result in a local flag store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/agenciadigital/accessgate/internal/config"
	"github.com/agenciadigital/accessgate/internal/logging"
	"github.com/agenciadigital/accessgate/internal/recovery"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, errLocked) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// errLocked reports a completed run that did not unlock access.
var errLocked = errors.New("access still locked")

func run(args []string) error {
	var (
		baseURL   string
		token     string
		pageURL   string
		license   string
		storePath string
		lang      string
		logLevel  string
		timeout   time.Duration
		status    bool
		reset     bool
	)

	flagSet := pflag.NewFlagSet("unlock", pflag.ContinueOnError)
	flagSet.StringVar(&baseURL, "base-url", "http://localhost:8080", "unlock service base URL")
	flagSet.StringVar(&token, "token", "", "magic-link token")
	flagSet.StringVar(&pageURL, "url", "", "full magic-link URL; its token query parameter is used")
	flagSet.StringVarP(&license, "license", "l", "", "license key to submit")
	flagSet.StringVar(&storePath, "store", "access.db", "path to the local flag store")
	flagSet.StringVar(&lang, "lang", os.Getenv("LANG"), "message language (es, en)")
	flagSet.StringVar(&logLevel, "log-level", "warn", "log level")
	flagSet.DurationVar(&timeout, "timeout", 15*time.Second, "overall timeout")
	flagSet.BoolVar(&status, "status", false, "print whether access is unlocked and exit")
	flagSet.BoolVar(&reset, "reset", false, "clear the local unlock flag and exit")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	logger := logging.New(os.Stderr, config.LoggingConfig{Level: logLevel, Format: "text"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	durable, err := recovery.OpenSQLiteBackend(ctx, storePath)
	if err != nil {
		return err
	}
	defer durable.Close()
	flags := recovery.NewFlagStore(durable, recovery.NewMemoryBackend())

	switch {
	case reset:
		if err := flags.Reset(ctx); err != nil {
			return fmt.Errorf("reset flag: %w", err)
		}
		fmt.Println("locked")
		return nil
	case status:
		return printStatus(ctx, flags)
	}

	query, err := tokenQuery(token, pageURL)
	if err != nil {
		return err
	}
	if len(query) == 0 && license == "" {
		return errors.New("one of --token, --url or --license is required")
	}

	messages := recovery.NewMessages(lang)
	flow := recovery.NewFlow(
		recovery.NewClient(baseURL),
		flags,
		recovery.WithEventSink(recovery.NewLogSink(logger)),
		recovery.WithMessages(messages),
		recovery.WithLogger(logger),
	)

	var out recovery.Outcome
	if len(query) > 0 {
		out = flow.Start(ctx, query)
	}
	if out.State != recovery.StateUnlocked && license != "" {
		if out.Message != "" {
			fmt.Println(out.Message)
		}
		out = flow.SubmitLicense(ctx, license)
	}

	fmt.Println(out.Message)
	if out.Err != nil {
		return out.Err
	}
	if out.State != recovery.StateUnlocked {
		return errLocked
	}
	return nil
}

func printStatus(ctx context.Context, flags *recovery.FlagStore) error {
	unlocked, err := flags.Unlocked(ctx)
	if err != nil {
		return err
	}
	if unlocked {
		fmt.Println("unlocked")
	} else {
		fmt.Println("locked")
	}
	return nil
}

// tokenQuery builds the page query the flow reads its token from.
func tokenQuery(token, pageURL string) (url.Values, error) {
	if token != "" {
		return url.Values{"token": {token}}, nil
	}
	if pageURL == "" {
		return nil, nil
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse --url: %w", err)
	}
	q := u.Query()
	if q.Get("token") == "" {
		return nil, fmt.Errorf("--url has no token parameter")
	}
	return q, nil
}
