package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Ucell-first/cmpp30/session"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Connect and print inbound messages and delivery reports until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()

		client, err := newClient(cfg, logger)
		if err != nil {
			return err
		}

		client.OnMessageReceive(func(m session.MessageReceive) {
			fmt.Fprintf(cmd.OutOrStdout(), "receive id=%d from=%s to=%s content=%q\n", m.MessageID, m.Source, m.Destination, m.Content)
		})
		client.OnMessageReport(func(r session.MessageReport) {
			fmt.Fprintf(cmd.OutOrStdout(), "report id=%d to=%s status=%s\n", r.MessageID, r.Destination, r.StatusText)
		})

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		if err := client.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		return client.Stop()
	},
}
