package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	verifier "github.com/unlimitedverifier/free-email-verifier"
	"github.com/unlimitedverifier/free-email-verifier/internal/config"
)

const version = "1.0.0"

const goodbye = "Goodbye from UnlimitedVerifier.com!"

var (
	jsonOutput bool
	envPath    string
)

type verifyFunc func(ctx context.Context, email string) (verifier.Result, error)

type renderFunc func(w io.Writer, result verifier.Result) error

func init() {
	flag.BoolVar(&jsonOutput, "json", false, "print results as JSON")
	flag.StringVar(&envPath, "env", "", "path to a .env file (default: ./.env when present)")
}

func loadEnv() error {
	if envPath != "" {
		return godotenv.Load(envPath)
	}
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
	return nil
}

func newVerifier(cfg *config.Config, logger *slog.Logger) *verifier.Verifier {
	return verifier.New().
		WithDNS(verifier.DNSOptions{
			Timeout:     cfg.DNSTimeout,
			Nameservers: cfg.Nameservers,
		}).
		WithSMTP(verifier.SMTPOptions{
			HeloHostname: cfg.HeloHostname,
			MailFrom:     cfg.MailFrom,
			Timeout:      cfg.SMTPTimeout,
			Port:         cfg.SMTPPort,
		}).
		WithRateLimit(cfg.RateLimit).
		WithLogger(logger)
}

func main() {
	flag.Parse()

	if err := loadEnv(); err != nil {
		log.Fatal("failed to load env file", "path", envPath, "error", err)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatal("failed to load config", "error", err)
	}

	handler := log.NewWithOptions(os.Stderr, log.Options{
		Level:           log.Level(cfg.LogLevel),
		ReportTimestamp: true,
	})
	logger := slog.New(handler)

	v := newVerifier(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	render := func(w io.Writer, r verifier.Result) error {
		renderTable(w, r)
		return nil
	}
	if jsonOutput {
		render = renderJSON
	}

	if args := flag.Args(); len(args) > 0 {
		if err := verifyAll(ctx, os.Stdout, args, v.Verify, render); err != nil {
			log.Fatal("verification failed", "error", err)
		}
		return
	}

	printBanner(os.Stdout, v.RateLimit().String(), cfg.HeloHostname)
	if err := interactive(ctx, os.Stdin, os.Stdout, v.Verify, render); err != nil {
		log.Fatal("verification failed", "error", err)
	}
}

// verifyAll verifies each address in order and renders the results.
func verifyAll(ctx context.Context, w io.Writer, emails []string, verify verifyFunc, render renderFunc) error {
	for _, email := range emails {
		if ctx.Err() != nil {
			return nil
		}
		result, err := verify(ctx, strings.TrimSpace(email))
		if err != nil {
			return err
		}
		if err := render(w, result); err != nil {
			return err
		}
	}
	return nil
}

// interactive prompts for addresses until quit, end of input or ctx is
// cancelled.
func interactive(ctx context.Context, in io.Reader, w io.Writer, verify verifyFunc, render renderFunc) error {
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-readCtx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(w, "  Enter email to verify (or 'quit'): ")

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintf(w, "\n\n  %s\n", goodbye)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintf(w, "\n\n  %s\n", goodbye)
			return nil
		}

		email := strings.TrimSpace(line)
		if strings.EqualFold(email, "quit") {
			fmt.Fprintf(w, "\n  %s\n", goodbye)
			return nil
		}
		if email == "" {
			continue
		}

		fmt.Fprintf(w, "\n  Verifying: %s\n\n", email)
		result, err := verify(ctx, email)
		if err != nil {
			return err
		}
		if err := render(w, result); err != nil {
			return err
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			fmt.Fprintf(w, "\n  %s\n", goodbye)
			return nil
		}
	}
}
