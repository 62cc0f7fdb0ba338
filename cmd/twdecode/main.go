// Command twdecode decodes Twitter v1.1 REST and streaming payloads.
//
//	twdecode decode --shape users_cursored followers.json
//	twdecode stream < user_stream.txt
//	twdecode fetch UserShow --param screen_name=jack
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	twitter "github.com/anatolykoptev/go-twitter-decode"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs.
type app struct {
	cfg config
	dec *twitter.Decoder
	out io.Writer
	in  io.Reader
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var format string

	root := &cobra.Command{
		Use:          "twdecode",
		Short:        "Decode Twitter v1.1 REST and streaming JSON",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if format != "" {
				cfg.Format = format
			}
			if err := cfg.validate(); err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: parseLogLevel(cfg.LogLevel),
			}))
			slog.SetDefault(logger)

			a.cfg = cfg
			a.dec = twitter.NewDecoder(twitter.DecoderConfig{
				Logger:            logger,
				LogBodyLimit:      cfg.BodyLimit,
				StreamEndSentinel: cfg.Sentinel,
			})
			a.out = cmd.OutOrStdout()
			a.in = cmd.InOrStdin()
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&format, "format", "f", "", "output format: json or yaml")

	root.AddCommand(a.decodeCmd(), a.streamCmd(), a.fetchCmd(), shapesCmd())
	return root
}

func (a *app) decodeCmd() *cobra.Command {
	var shapeName string
	cmd := &cobra.Command{
		Use:   "decode [FILE|-]",
		Short: "Decode one response body as a named shape",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			shape, err := twitter.ParseShape(shapeName)
			if err != nil {
				return err
			}
			body, err := a.readInput(args)
			if err != nil {
				return err
			}
			res, err := a.dec.Decode(body, shape)
			if err != nil {
				return err
			}
			return a.print(resultView(res))
		},
	}
	cmd.Flags().StringVarP(&shapeName, "shape", "s", "", "shape name (see `twdecode shapes`)")
	_ = cmd.MarkFlagRequired("shape")
	return cmd
}

func (a *app) streamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stream [FILE|-]",
		Short: "Resolve each line of a stream into an event",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, closeFn, err := a.openInput(args)
			if err != nil {
				return err
			}
			defer closeFn()
			return a.dec.NewStreamReader(r).Each(cmd.Context(), func(ev twitter.StreamEvent) error {
				return a.print(eventView(ev))
			})
		},
	}
}

func (a *app) fetchCmd() *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "fetch OPERATION",
		Short: "Call a REST operation with the configured accounts and decode the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			for _, p := range params {
				k, v, ok := strings.Cut(p, "=")
				if !ok {
					return fmt.Errorf("param %q: want key=value", p)
				}
				q.Add(k, v)
			}
			client, err := twitter.NewClient(twitter.ClientConfig{
				Accounts:     twitter.ParseAccounts(a.cfg.Accounts),
				DefaultProxy: a.cfg.Proxy,
				SessionDir:   a.cfg.SessionDir,
				Decoder: twitter.DecoderConfig{
					Logger:       slog.Default(),
					LogBodyLimit: a.cfg.BodyLimit,
				},
			})
			if err != nil {
				return err
			}
			res, err := client.Fetch(cmd.Context(), args[0], q)
			if err != nil {
				return err
			}
			return a.print(resultView(res))
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value (repeatable)")
	return cmd
}

func shapesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shapes",
		Short: "List the shape names decode accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range twitter.ShapeNames() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func (a *app) openInput(args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return a.in, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func (a *app) readInput(args []string) ([]byte, error) {
	r, closeFn, err := a.openInput(args)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return io.ReadAll(r)
}

func (a *app) print(v any) error {
	if a.cfg.Format == "yaml" {
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	data, err := twitter.MarshalIndent(v)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	data = append(data, '\n')
	_, err = a.out.Write(data)
	return err
}
