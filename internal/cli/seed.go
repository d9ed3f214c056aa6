package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	dirredis "github.com/wordduel/wordduel/internal/directory/redis"
	kwredis "github.com/wordduel/wordduel/internal/keywords/redis"
	"github.com/wordduel/wordduel/internal/model"
)

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the Redis backend",
		Long: `Seed the Redis backend with users, friendships, blocks and keywords.

The server reads this data but never writes it; these commands stand in
for the account system that owns it in a full deployment.`,
	}

	cmd.AddCommand(newSeedUserCmd())
	cmd.AddCommand(newSeedFriendsCmd())
	cmd.AddCommand(newSeedBlockCmd())
	cmd.AddCommand(newSeedKeywordsCmd())

	return cmd
}

// seedContext connects to Redis for a seed command
func seedContext() (context.Context, context.CancelFunc, *redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	if err := client.Ping(ctx).Err(); err != nil {
		cancel()
		return nil, nil, nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return ctx, cancel, client, nil
}

func newSeedUserCmd() *cobra.Command {
	var (
		id       string
		nickname string
		email    string
		avatar   string
	)

	cmd := &cobra.Command{
		Use:   "user",
		Short: "Create or update a user profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel, client, err := seedContext()
			if err != nil {
				return err
			}
			defer cancel()

			dir := dirredis.New(client)
			err = dir.SaveUser(ctx, &model.Profile{
				ID:       model.UserID(id),
				Nickname: nickname,
				Email:    email,
				Avatar:   avatar,
			})
			if err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("user %s saved", id))
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "User id (required)")
	cmd.Flags().StringVar(&nickname, "nickname", "", "Nickname (required)")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar URL")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("nickname")

	return cmd
}

func newSeedFriendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "friends <userId> <userId>",
		Short: "Add a friendship between two users",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel, client, err := seedContext()
			if err != nil {
				return err
			}
			defer cancel()

			dir := dirredis.New(client)
			if err := dir.AddFriendship(ctx, model.UserID(args[0]), model.UserID(args[1])); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("%s and %s are now friends", args[0], args[1]))
			return nil
		},
	}
}

func newSeedBlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "block <blockerId> <blockedId>",
		Short: "Record that one user has blocked another",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel, client, err := seedContext()
			if err != nil {
				return err
			}
			defer cancel()

			dir := dirredis.New(client)
			if err := dir.Block(ctx, model.UserID(args[0]), model.UserID(args[1])); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("%s blocked %s", args[0], args[1]))
			return nil
		},
	}
}

func newSeedKeywordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keywords <file>",
		Short: "Replace the keyword set from a file, one word per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			var words []string
			scanner := bufio.NewScanner(f)
			for scanner.Scan() {
				words = append(words, scanner.Text())
			}
			if err := scanner.Err(); err != nil {
				return err
			}

			ctx, cancel, client, err := seedContext()
			if err != nil {
				return err
			}
			defer cancel()

			if err := kwredis.New(client).Load(ctx, words); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("%d keywords loaded", len(words)))
			return nil
		},
	}
}
