package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/ChatbotAPI/internal/liveness"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keepalive",
		Short: "Poll a deployed server's ping and health endpoints",
		Long: `Runs the keep-alive poller (every 5 minutes), the ping poller (every 30 seconds)
or both against --url until interrupted. With --once a single check is made and the
exit code reports the result.`,
		SilenceUsage: true,
		RunE:         runKeepAlive,
	}
	cmd.Flags().String("url", os.Getenv("KEEPALIVE_URL"), "base URL of the server")
	cmd.Flags().String("mode", "both", "keepalive, ping or both")
	cmd.Flags().Bool("once", false, "check once and exit")
	cmd.Flags().Bool("json", false, "log as JSON")
	return cmd
}

func runKeepAlive(cmd *cobra.Command, _ []string) error {
	url, _ := cmd.Flags().GetString("url")
	mode, _ := cmd.Flags().GetString("mode")
	once, _ := cmd.Flags().GetBool("once")
	asJSON, _ := cmd.Flags().GetBool("json")
	if url == "" {
		return errors.New("--url is required")
	}
	logger_i.InitWithWriter(cmd.ErrOrStderr(), asJSON)

	configs, err := pingerConfigs(mode, url)
	if err != nil {
		return err
	}

	if once {
		res := liveness.NewPinger(configs[0]).CheckOnce(cmd.Context())
		if !res.OK() {
			return fmt.Errorf("%s unhealthy", url)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is up (ping %s, health %s)\n", url, res.Ping.Latency, res.Health.Latency)
		return nil
	}

	pingers := make([]*liveness.Pinger, 0, len(configs))
	for _, c := range configs {
		p := liveness.NewPinger(c)
		p.Start(cmd.Context())
		pingers = append(pingers, p)
	}
	<-cmd.Context().Done()
	for _, p := range pingers {
		p.Stop()
	}
	return nil
}

func pingerConfigs(mode, url string) ([]liveness.PingerConfig, error) {
	switch mode {
	case "keepalive":
		return []liveness.PingerConfig{liveness.KeepAliveConfig(url)}, nil
	case "ping":
		return []liveness.PingerConfig{liveness.PingConfig(url)}, nil
	case "both":
		return []liveness.PingerConfig{liveness.KeepAliveConfig(url), liveness.PingConfig(url)}, nil
	default:
		return nil, fmt.Errorf("unknown mode %q, want keepalive, ping or both", mode)
	}
}
