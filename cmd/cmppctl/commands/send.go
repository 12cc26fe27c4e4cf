package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	cmpperrors "github.com/Ucell-first/cmpp30/cmpp/errors"
	"github.com/Ucell-first/cmpp30/session"
)

var (
	sendTo           []string
	sendExtendedCode string
	sendContent      string
	sendStatusReport bool
	sendWaitConnect  time.Duration
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Connect, send one message, and report its outcome",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(sendTo) == 0 {
			return cmpperrors.New("--to is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()

		client, err := newClient(cfg, logger)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), sendWaitConnect+cfg.SubmitTimeout)
		defer cancel()

		if err := client.Start(ctx); err != nil {
			return err
		}
		defer client.Stop()

		if err := waitConnected(ctx, client, sendWaitConnect); err != nil {
			return err
		}

		status, msgIDs, err := client.Send(ctx, sendExtendedCode, sendTo, sendContent, sendStatusReport)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "status=%s msgIDs=%v\n", status, msgIDs)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringSliceVar(&sendTo, "to", nil, "destination MSISDNs (repeatable)")
	sendCmd.Flags().StringVar(&sendExtendedCode, "extended-code", "", "extended service code appended to the SP code")
	sendCmd.Flags().StringVar(&sendContent, "content", "", "message text")
	sendCmd.Flags().BoolVar(&sendStatusReport, "status-report", false, "request a delivery status report")
	sendCmd.Flags().DurationVar(&sendWaitConnect, "wait-connect", 15*time.Second, "how long to wait for the session to reach Connected")
}

// waitConnected polls the client's state until it reaches Connected, fails
// outright (AuthenticationFailed/Disposed), or the deadline elapses.
func waitConnected(ctx context.Context, client *session.Client, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		switch client.Status() {
		case session.Connected:
			return nil
		case session.AuthenticationFailed:
			return cmpperrors.New("authentication failed: " + client.StatusText())
		case session.Disposed:
			return cmpperrors.New("session disposed before connecting")
		}
		if time.Now().After(deadline) {
			return cmpperrors.New("timed out waiting for session to connect")
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
