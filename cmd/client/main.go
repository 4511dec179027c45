package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/blogem/corpdata-hub/client"
	"github.com/blogem/corpdata-hub/logging"
)

type clientOptions struct {
	input   string
	output  string
	server  string
	port    int
	verbose bool
}

func main() {
	if err := newRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	opts := &clientOptions{}

	cmd := &cobra.Command{
		Use:   "corpdata-client",
		Short: "Send one request to the corporate data hub",
		Long: `Send the JSON request stored in a file and print the server response.

The request gets this machine's id as UUID when it does not carry one.

Example:
  corpdata-client -i get.json
  corpdata-client -i set.json -o response.json -s 10.0.0.5 -p 8080`,
		Version:       client.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, stdout)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "JSON file holding the request (required)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "file to write the response to")
	cmd.Flags().StringVarP(&opts.server, "server", "s", "localhost", "server host")
	cmd.Flags().IntVarP(&opts.port, "port", "p", 8080, "server TCP port")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose output")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// readRequest loads a request object, keeping numbers as written
func readRequest(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %q: %w", path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var request map[string]any
	if err := dec.Decode(&request); err != nil || request == nil {
		return nil, fmt.Errorf("input file %q does not contain a valid JSON object", path)
	}
	return request, nil
}

func run(ctx context.Context, opts *clientOptions, stdout io.Writer) error {
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(level, "text", os.Stderr)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	request, err := readRequest(opts.input)
	if err != nil {
		return err
	}
	if id := client.MachineID(); client.EnsureClientID(request, id) {
		logger.WithField("client_id", id).Debug("adding this machine's id to the request")
	}

	addr := net.JoinHostPort(opts.server, strconv.Itoa(opts.port))
	logger.WithField("addr", addr).Debug("connecting")
	response, err := client.New(addr, logger).Do(ctx, request)
	if err != nil {
		return fmt.Errorf("could not reach %s, is the server running? %w", addr, err)
	}
	if len(response) == 0 {
		return errors.New("the server closed the connection without a response")
	}

	pretty, ok := client.Pretty(response)

	if opts.output != "" {
		if err := os.WriteFile(opts.output, pretty, 0o644); err != nil {
			return fmt.Errorf("failed to write output file %q: %w", opts.output, err)
		}
		if ok {
			fmt.Fprintf(stdout, "Response saved to %s\n", opts.output)
		} else {
			fmt.Fprintf(stdout, "Response (raw) saved to %s\n", opts.output)
		}
		return nil
	}

	fmt.Fprintln(stdout, "\n--- Server response ---")
	fmt.Fprintln(stdout, string(pretty))
	fmt.Fprintln(stdout, "-----------------------")
	return nil
}
