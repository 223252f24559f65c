// univent is the command-line client for the univent event-discovery
// backend. It drives the same session core the mobile app uses: a
// persisted token, a startup resolver and an auth gateway.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/harxxhilgg/univent/internal/authclient"
	"github.com/harxxhilgg/univent/internal/models"
	"github.com/harxxhilgg/univent/internal/session"
	"github.com/harxxhilgg/univent/internal/tokenstore"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config represents the structure of the ~/.univent/config.yaml file.
type Config struct {
	APIURL   string `yaml:"api_url"`
	TokenDir string `yaml:"token_dir"`
}

var (
	configPath string

	sessions *session.Store
	tokens   tokenstore.Store
	client   *authclient.Client
)

var rootCmd = &cobra.Command{
	Use:   "univent",
	Short: "Client for the univent event-discovery API",
	Long: `univent logs in to the univent backend, keeps the issued token on
disk and resolves it into a session on every run, the same way the
mobile app does at startup.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		sessions = session.NewStore()
		tokens = tokenstore.NewFileStore(cfg.TokenDir)
		client = authclient.New(cfg.APIURL, tokens, sessions)
		return nil
	},
}

func loadConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	cfg := Config{
		APIURL:   "http://localhost:5000/api",
		TokenDir: filepath.Join(home, ".univent"),
	}

	path := configPath
	if path == "" {
		path = filepath.Join(home, ".univent", "config.yaml")
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Log in and persist the issued token",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := client.Login(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s <%s>\n", user.Username, user.Email)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup <username> <email> <password>",
	Short: "Create a new account",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		msg, err := client.Signup(cmd.Context(), args[0], args[1], args[2])
		if err != nil {
			return err
		}
		if msg == "" {
			msg = "Account created, log in to continue"
		}
		fmt.Println(msg)
		return nil
	},
}

var guestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Continue as a guest (read-only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := client.GuestLogin()
		fmt.Printf("Continuing as %s <%s>\n", s.User.Username, s.User.Email)
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Resolve the persisted token into a session",
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver := session.NewResolver(tokens, sessions)
		resolver.Notify = func(msg string) { fmt.Fprintln(os.Stderr, msg) }

		s := resolver.Resolve(cmd.Context())
		if !s.Authenticated() {
			fmt.Println("Not logged in")
			return nil
		}
		fmt.Printf("Logged in as %s <%s> (id %d)\n", s.User.Username, s.User.Email, s.User.ID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Delete the persisted token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Logged out")
		return nil
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events [email]",
	Short: "List events, optionally only those created by an account",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			events []models.Event
			err    error
		)
		if len(args) == 1 {
			events, err = client.EventsByUser(cmd.Context(), args[0])
		} else {
			events, err = client.Events(cmd.Context())
		}
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No events")
			return nil
		}
		for _, ev := range events {
			fmt.Printf("%s  %s %s  @ %s  (by %s)\n", ev.Title, ev.EventDate, ev.EventTime, ev.Location, ev.Organizer)
		}
		return nil
	},
}

var deleteAccountCmd = &cobra.Command{
	Use:   "delete-account <email>",
	Short: "Delete the account and log out",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := client.DeleteAccount(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Account deleted")
		return nil
	},
}

func main() {
	// The CLI is interactive; keep structured logs out of the way.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")
	rootCmd.AddCommand(loginCmd, signupCmd, guestCmd, whoamiCmd, logoutCmd, eventsCmd, deleteAccountCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
