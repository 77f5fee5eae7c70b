package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/fx"

	"github.com/edcompanion/edcompanion/internal/companion"
	"github.com/edcompanion/edcompanion/internal/config"
	"github.com/edcompanion/edcompanion/internal/frontier"
	"github.com/edcompanion/edcompanion/internal/journal"
	"github.com/edcompanion/edcompanion/internal/journal/sqlstore"
	"github.com/edcompanion/edcompanion/internal/logger"
)

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "edcompanion",
	Short: "A companion CLI for the Frontier cAPI",
	Long: `edcompanion logs a commander in to the Frontier companion API using
the OAuth2 authorization-code flow with PKCE, then fetches the commander
profile and the most recent daily journal, storing the journal locally.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			pterm.Error.Printf("\nCaught panic: %v\n", r)
			pterm.Error.Printf("%s\n", debug.Stack())
			os.Exit(2)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags()
	rootCmd.PersistentFlags().AddFlagSet(pflag.CommandLine)
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(loginCmd, logoutCmd, profileCmd, journalCmd, loadCmd)
}

// deps collects everything the commands pull out of the fx app.
type deps struct {
	fx.In

	Flow      *frontier.LoginFlow
	Tokens    *frontier.TokenStore
	Service   *companion.Service
	Retriever *journal.Retriever
}

// withApp builds the fx application, starts it, runs fn, and tears the app
// down again. The context is cancelled on SIGINT/SIGTERM so a pending
// browser login or fetch can be abandoned cleanly.
func withApp(fn func(ctx context.Context, d deps) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var d deps
	app := fx.New(
		fx.NopLogger,
		fx.Provide(config.Load),
		fx.Invoke(func(cfg *config.Config) error {
			return logger.InitLogger(&cfg.Logging)
		}),
		frontier.Module,
		journal.Module,
		sqlstore.Module,
		companion.Module,
		fx.Populate(&d),
	)

	// Start first: the store's schema hook must run before any command logic
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	runErr := fn(ctx, d)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		return err
	}
	return runErr
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the Frontier authorization server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, d deps) error {
			if err := d.Flow.Login(ctx); err != nil {
				return err
			}
			if d.Flow.State() != frontier.StateAuthenticated {
				pterm.Warning.Println("Login did not complete")
				return nil
			}
			pterm.Success.Println("Logged in")
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session tokens",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, d deps) error {
			if err := d.Tokens.Clear(); err != nil {
				return err
			}
			pterm.Success.Println("Logged out")
			return nil
		})
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Fetch and display the commander profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, d deps) error {
			profile, err := d.Service.RefreshProfile(ctx)
			if err != nil {
				return loginHint(err)
			}
			printProfile(profile)
			return nil
		})
	},
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Fetch and store the most recent daily journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, d deps) error {
			if err := d.Retriever.FetchLatest(ctx); err != nil {
				return loginHint(err)
			}
			pterm.Success.Println("Journal up to date")
			return nil
		})
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Fetch the profile and the latest journal in one go",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, d deps) error {
			if err := d.Service.LoadAll(ctx); err != nil {
				return loginHint(err)
			}
			if profile := d.Service.Profile(); profile != nil {
				printProfile(profile)
			}
			return nil
		})
	},
}

// loginHint decorates authentication failures with the command to run.
func loginHint(err error) error {
	if errors.Is(err, frontier.ErrAuthenticationRequired) {
		pterm.Warning.Println("Not logged in, run: edcompanion login")
	}
	return err
}

func printProfile(profile *frontier.Profile) {
	pterm.DefaultSection.Println("CMDR " + profile.Commander.Name)
	pterm.Info.Printf("Credits: %d (debt %d)\n", profile.Commander.Credits, profile.Commander.Debt)
	if profile.LastSystem != nil {
		pterm.Info.Printf("System: %s\n", profile.LastSystem.Name)
	}
	if profile.LastStarport != nil {
		pterm.Info.Printf("Starport: %s\n", profile.LastStarport.Name)
	}
	if profile.Ship != nil {
		pterm.Info.Printf("Ship: %s (%s), %d modules\n",
			profile.Ship.Name, profile.Ship.ShipName, len(profile.Ship.Modules))
	}
	rank := profile.Commander.Rank
	pterm.Info.Printf("Ranks: combat %d, trade %d, explore %d, cqc %d\n",
		rank.Combat, rank.Trade, rank.Explore, rank.CQC)
}
