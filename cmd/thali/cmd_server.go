package main

import (
	"context"
	"fmt"
	"net"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/thali/config"
	"github.com/shashiranjanraj/thali/internal/kernel"
	"github.com/shashiranjanraj/thali/internal/server"
	"github.com/shashiranjanraj/thali/pkg/grpc"
	"github.com/shashiranjanraj/thali/pkg/logger"
)

var (
	servePort string
	grpcPort  string
)

// thali serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and the gRPC health listener",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == "" {
			port = config.AppPort()
		}
		rpcPort := grpcPort
		switch {
		case strings.EqualFold(rpcPort, "off"):
			rpcPort = ""
		case rpcPort == "":
			rpcPort = config.GRPCPort()
		}
		return serve(ctx, port, rpcPort)
	},
}

// serve runs both listeners until ctx ends or either fails. gRPC health
// reports SERVING only once the kernel has booted. An empty rpcPort skips
// gRPC.
func serve(ctx context.Context, httpPort, rpcPort string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var rpc *grpc.Server
	rpcDone := make(chan error, 1)
	if rpcPort != "" {
		rpc = grpc.New()
		go func() {
			err := rpc.Start(ctx, net.JoinHostPort("", rpcPort))
			if err != nil {
				logger.Error("grpc server failed", "error", err)
				cancel()
			}
			rpcDone <- err
		}()
	} else {
		rpcDone <- nil
	}

	k, cleanup, err := kernel.Boot(ctx)
	if err != nil {
		cancel()
		<-rpcDone
		return err
	}
	defer cleanup()
	if rpc != nil {
		rpc.SetServing(true)
	}

	httpErr := server.Start(ctx, net.JoinHostPort("", httpPort), k.Handler())
	cancel()
	rpcErr := <-rpcDone
	if httpErr != nil {
		return httpErr
	}
	return rpcErr
}

// thali route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		k, err := kernel.New(ctx, kernel.NewMemoryOptions())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range k.Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "port to listen on (default APP_PORT)")
	serveCmd.Flags().StringVar(&grpcPort, "grpc-port", "", `gRPC health port (default GRPC_PORT, "off" disables)`)
}
