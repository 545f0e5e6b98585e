// Command folio-admin manages portfolio content through the admin API.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/khoahotran/folio/adapters/apiclient"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/logger"
)

const defaultAPIURL = "http://localhost:8080"

var (
	apiURL    string
	assumeYes bool
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "folio-admin",
	Short: "Manage portfolio content",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := godotenv.Load(); err != nil && verbose {
			log.Println("Error loading .env file, skipping")
		}
		if apiURL == "" {
			apiURL = os.Getenv("FOLIO_API_URL")
		}
		if apiURL == "" {
			apiURL = defaultAPIURL
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (default $FOLIO_API_URL or "+defaultAPIURL+")")
	rootCmd.PersistentFlags().BoolVarP(&assumeYes, "yes", "y", false, "answer yes to confirmation prompts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests and session changes")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalln(err.Error())
	}
}

func cliLogger() logger.Logger {
	if verbose {
		return logger.NewZapLogger("development")
	}
	return logger.NewNop()
}

// tokenPath is where the session token is kept between invocations.
func tokenPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "folio", "token"), nil
}

func loadToken() string {
	if t := os.Getenv("FOLIO_TOKEN"); t != "" {
		return t
	}
	p, err := tokenPath()
	if err != nil {
		return ""
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func saveToken(token string) error {
	p, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(token+"\n"), 0o600)
}

func clearToken() error {
	p, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// newClient returns an API client carrying the stored token.
func newClient() *apiclient.Client {
	c := apiclient.New(apiURL, nil)
	c.SetToken(loadToken())
	return c
}

func exitOnErr(msg string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, apperror.ErrUnauthorized) {
		fmt.Fprintln(os.Stderr, msg+": not signed in, run `folio-admin login`")
	} else {
		fmt.Fprintln(os.Stderr, msg+":", apperror.MessageOf(err))
	}
	os.Exit(1)
}
