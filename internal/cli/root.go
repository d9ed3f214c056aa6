package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix("WORDDUEL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "wordduel",
		Short: "CLI client for the word duel game server",
		Long: `wordduel is a CLI client for the word duel game server.

It can mint connection tokens, stream and send game events over the
websocket endpoint, and seed the Redis backend with users, friendships
and keywords.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			client = NewClient(cfg.ServerURL, cfg.Token)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	fs := rootCmd.PersistentFlags()
	fs.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: WORDDUEL_SERVER)")
	fs.StringVar(&cfg.Token, "token", cfg.Token, "Connection token (env: WORDDUEL_TOKEN)")
	fs.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: WORDDUEL_TOKEN_FILE)")
	fs.StringVar(&cfg.Secret, "secret", cfg.Secret, "Token signing secret (env: WORDDUEL_SECRET)")
	fs.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for seed commands (env: WORDDUEL_REDIS_URL)")
	fs.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Environment variables override defaults; explicit flags win
	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	// Add subcommands
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newListenCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
