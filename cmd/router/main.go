// Command router runs a single simulated IP-layer packet router listening
// on one UDP socket, forwarding and reassembling wire-encoded datagrams per
// a route file.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arjunvale/udprouter/internal/config"
	"github.com/arjunvale/udprouter/internal/logging"
	"github.com/arjunvale/udprouter/pkg/common"
	"github.com/arjunvale/udprouter/pkg/forwarder"
	"github.com/arjunvale/udprouter/pkg/metrics"
	"github.com/arjunvale/udprouter/pkg/routing"
	"github.com/arjunvale/udprouter/pkg/transport"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "router <listen-ip> <listen-port> <route-file>",
		Short: "Run a simulated IP-layer packet router over UDP",
		Args:  cobra.ExactArgs(3),
		RunE:  run,
	}
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	listenIP := args[0]
	listenPort, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil {
		return fmt.Errorf("listen-port: %w", err)
	}
	routeFile := args[2]

	opts, err := config.Load(config.Options{LogLevel: "info", MetricsAddr: ""})
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logging.New(logging.Options{Level: opts.LogLevel, FilePath: opts.LogFile})
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	metrics.Serve(opts.MetricsAddr)

	self, err := common.ParseEndpoint(listenIP, uint16(listenPort))
	if err != nil {
		return fmt.Errorf("listen-ip: %w", err)
	}

	table := routing.NewTable(routeFile)
	fwd := forwarder.NewForwarder(self, table)
	fwd.Log = func(msg string, fields map[string]interface{}) {
		log.WithFields(logrus.Fields(fields)).Info(msg)
	}

	if opts.GroupTTL != "" {
		d, err := time.ParseDuration(opts.GroupTTL)
		if err != nil {
			return fmt.Errorf("group-ttl: %w", err)
		}
		fwd.GroupTTL = d
		go evictPeriodically(fwd, d)
	}

	socket, err := transport.Listen(listenIP, uint16(listenPort))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer socket.Close()

	log.WithFields(logrus.Fields{
		"listen_ip":   listenIP,
		"listen_port": listenPort,
		"route_file":  routeFile,
	}).Info("router started")

	for {
		buf := common.ReceiveBufferPool.Get()
		n, _, err := socket.Receive(buf)
		if err != nil {
			log.WithError(err).Warn("receive error")
			common.ReceiveBufferPool.Put(buf)
			continue
		}

		fwd.HandlePacket(buf[:n],
			func(payload []byte) {
				fmt.Println(string(payload))
			},
			func(to routing.NextHop, wire string) {
				if err := socket.Send(to.Endpoint, []byte(wire)); err != nil {
					log.WithError(err).Warn("send error")
				}
			},
		)
		common.ReceiveBufferPool.Put(buf)
	}
}

func evictPeriodically(fwd *forwarder.Forwarder, ttl time.Duration) {
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for range ticker.C {
		fwd.EvictExpiredGroups()
	}
}
