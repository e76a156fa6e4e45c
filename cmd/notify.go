/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/relaychat/apiserver/config"
	"github.com/relaychat/apiserver/internal/mq"
	"github.com/relaychat/apiserver/internal/server"
	"github.com/relaychat/apiserver/internal/services"
	"github.com/spf13/cobra"
)

// notifyCmd tails the chat event stream from the configured broker.
var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Tail chat events from the configured broker",
	Long: `Subscribes to the chat event channel and prints each event to
stdout as JSON. Requires MQ_BACKEND to be configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		if cfg.MQ.Backend == "" {
			return errors.New("MQ_BACKEND is not configured")
		}

		broker, err := server.NewBroker(cmd.Context(), cfg.MQ)
		if err != nil {
			return fmt.Errorf("connect to broker failed: %w", err)
		}
		defer func() {
			_ = broker.Close()
		}()

		err = broker.Subscribe(cmd.Context(), services.EventsChannel, func(ctx context.Context, msg mq.Message) error {
			fmt.Fprintf(os.Stdout, "%s\t%s\n", msg.Attributes["event"], msg.Data)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}
