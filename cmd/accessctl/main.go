// accessctl mints magic-link URLs and license keys signed with the
// configured access secret.
//
//	accessctl magic-link --sub cliente@example.com --ttl 72h
//	accessctl license --email cliente@example.com --purchase-id ord_123
package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/agenciadigital/accessgate/internal/auth"
	"github.com/agenciadigital/accessgate/internal/config"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		printUsage(out)
		return errors.New("missing command")
	}

	switch args[0] {
	case "magic-link":
		return magicLink(args[1:], out)
	case "license":
		return license(args[1:], out)
	case "help", "-h", "--help":
		printUsage(out)
		return nil
	default:
		printUsage(out)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, `Usage: accessctl <command> [flags]

Commands:
  magic-link   mint a signed recovery link
  license      mint a license key for a purchase`)
}

// loadSecret reads the access secret the same way the server does.
func loadSecret(path string) (string, *config.Config, error) {
	cfg, err := config.LoadOptional(path)
	if err != nil {
		return "", nil, err
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}
	if cfg.Access.Secret == config.DefaultSecret {
		fmt.Fprintln(os.Stderr, "warning: signing with the built-in development secret")
	}
	return cfg.Access.Secret, cfg, nil
}

func magicLink(args []string, out io.Writer) error {
	var (
		configPath string
		sub        string
		ttl        time.Duration
		siteURL    string
		path       string
		tokenOnly  bool
	)
	flagSet := pflag.NewFlagSet("magic-link", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "configs/config.yaml", "path to configuration file")
	flagSet.StringVar(&sub, "sub", "", "subject the link is issued to (usually an email)")
	flagSet.DurationVar(&ttl, "ttl", 72*time.Hour, "link lifetime; 0 for no expiry")
	flagSet.StringVar(&siteURL, "site-url", "", "site URL (defaults to the configured site)")
	flagSet.StringVar(&path, "path", "/", "page path the link opens")
	flagSet.BoolVar(&tokenOnly, "token-only", false, "print only the token")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if strings.TrimSpace(sub) == "" {
		return errors.New("--sub is required")
	}

	secret, cfg, err := loadSecret(configPath)
	if err != nil {
		return err
	}

	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	token, err := auth.IssueToken(secret, sub, exp)
	if err != nil {
		return err
	}
	if tokenOnly {
		fmt.Fprintln(out, token)
		return nil
	}

	link, err := buildLink(siteURL, cfg.Site.URL, path, token)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, link)
	return nil
}

// buildLink attaches token to the page at path on the chosen site.
func buildLink(override, configured, path, token string) (string, error) {
	base := override
	if base == "" {
		base = configured
	}
	if base == "" {
		return "", errors.New("no site URL: pass --site-url or set SITE_URL")
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid site URL %q", base)
	}
	u.Path = path
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func license(args []string, out io.Writer) error {
	var (
		configPath string
		email      string
		purchaseID string
		year       int
	)
	flagSet := pflag.NewFlagSet("license", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "configs/config.yaml", "path to configuration file")
	flagSet.StringVar(&email, "email", "", "buyer email")
	flagSet.StringVar(&purchaseID, "purchase-id", "", "purchase or order identifier")
	flagSet.IntVar(&year, "year", time.Now().Year(), "license year")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	secret, _, err := loadSecret(configPath)
	if err != nil {
		return err
	}
	key, err := auth.IssueLicense(secret, email, purchaseID, year)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, key)
	return nil
}
