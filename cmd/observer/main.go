package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blogem/corpdata-hub/client"
	"github.com/blogem/corpdata-hub/logging"
)

type observerOptions struct {
	server        string
	port          int
	output        string
	verbose       bool
	retryDelay    time.Duration
	rejectedDelay time.Duration
}

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	opts := &observerOptions{}

	cmd := &cobra.Command{
		Use:   "corpdata-observer",
		Short: "Subscribe to the corporate data hub and print every update",
		Long: `Subscribe to update notifications and print each one as it arrives.

The observer reconnects when the connection is lost and keeps running
until interrupted.

Example:
  corpdata-observer -s 10.0.0.5
  corpdata-observer -o updates.log --retry-delay 5s`,
		Version:       client.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, stdout)
		},
	}

	cmd.Flags().StringVarP(&opts.server, "server", "s", "localhost", "server host")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 8080, "server TCP port")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "file to append notifications to")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	cmd.Flags().DurationVar(&opts.retryDelay, "retry-delay", 30*time.Second, "wait before reconnecting after a lost connection")
	cmd.Flags().DurationVar(&opts.rejectedDelay, "retry-delay-rejected", 10*time.Second, "wait before retrying a refused subscription")

	return cmd
}

// notificationPrinter writes notifications to stdout and optionally to a file
type notificationPrinter struct {
	mu     sync.Mutex
	stdout io.Writer
	output string
}

func (p *notificationPrinter) handle(msg json.RawMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	pretty, _ := client.Pretty(msg)
	fmt.Fprintln(p.stdout, "\n--- Notification received ---")
	fmt.Fprintln(p.stdout, string(pretty))
	fmt.Fprintln(p.stdout, "-----------------------------")

	if p.output == "" {
		return nil
	}
	f, err := os.OpenFile(p.output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", p.output, err)
	}
	defer f.Close()
	if _, err := f.Write(append(pretty, "\n---\n"...)); err != nil {
		return fmt.Errorf("failed to write to %s: %w", p.output, err)
	}
	return nil
}

func run(ctx context.Context, opts *observerOptions, stdout io.Writer) error {
	level := "info"
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, "text", os.Stderr)
	if err != nil {
		return err
	}

	clientID := client.MachineID()
	addr := net.JoinHostPort(opts.server, strconv.Itoa(opts.port))
	logger.WithField("client_id", clientID).Debugf("starting observer version %s", client.Version)

	printer := &notificationPrinter{stdout: stdout, output: opts.output}
	obs := client.NewObserver(client.New(addr, logger), clientID, printer.handle)
	obs.RetryDelay = opts.retryDelay
	obs.RejectedDelay = opts.rejectedDelay

	err = obs.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("Closing observer")
		return nil
	}
	return err
}
