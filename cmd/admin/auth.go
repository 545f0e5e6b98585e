package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/khoahotran/folio/internal/application/guard"
	"github.com/khoahotran/folio/internal/domain/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in as the site owner",
	Run: func(cmd *cobra.Command, args []string) {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("FOLIO_PASSWORD")
		}

		prompt := newLineConfirmer(os.Stdin, os.Stdout, false)
		var err error
		if email == "" {
			email, err = prompt.ReadLine("Email: ")
			exitOnErr("Unable to read email", err)
		}
		if password == "" {
			password, err = prompt.ReadLine("Password: ")
			exitOnErr("Unable to read password", err)
		}

		client := newClient()
		s, err := client.Login(cmd.Context(), email, password)
		exitOnErr("Login failed", err)
		exitOnErr("Unable to store session token", saveToken(client.Token()))

		fmt.Printf("Signed in as %s until %s\n", s.Email, s.ExpiresAt.Local().Format(time.RFC1123))
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored session",
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient()
		if client.Token() != "" {
			exitOnErr("Logout failed", client.Logout(cmd.Context()))
		}
		exitOnErr("Unable to remove session token", clearToken())
		fmt.Println("Signed out")
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the session state; --watch follows it until sign-out",
	Run: func(cmd *cobra.Command, args []string) {
		watch, _ := cmd.Flags().GetBool("watch")
		client := newClient()
		log := cliLogger()
		defer log.Sync()

		if !watch {
			outcome, s := guard.Resolve(cmd.Context(), client, client.Token(), log)
			printOutcome(outcome, s)
			if outcome.Kind != guard.ShowChildren {
				os.Exit(1)
			}
			return
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g := guard.New(client, client.Token(), log)
		g.OnChange(func(state guard.State, s *session.Session) {
			printOutcome(guard.OutcomeFor(state), s)
			if state == guard.StateUnauthenticated {
				stop()
			}
		})
		if err := g.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			exitOnErr("Session watch failed", err)
		}
		if g.State() != guard.StateAuthenticated {
			os.Exit(1)
		}
	},
}

func printOutcome(o guard.Outcome, s *session.Session) {
	switch o.Kind {
	case guard.ShowChildren:
		fmt.Printf("authenticated as %s (expires %s)\n", s.Email, s.ExpiresAt.Local().Format(time.RFC1123))
	case guard.ShowRedirect:
		fmt.Printf("unauthenticated, sign in at %s or run `folio-admin login`\n", o.RedirectTo)
	default:
		fmt.Println("loading")
	}
}

func init() {
	loginCmd.Flags().String("email", "", "owner email")
	loginCmd.Flags().String("password", "", "owner password (default $FOLIO_PASSWORD, else prompted)")
	statusCmd.Flags().Bool("watch", false, "keep following the session until it ends")

	rootCmd.AddCommand(loginCmd, logoutCmd, statusCmd)
}

