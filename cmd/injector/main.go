// Command injector reads test_file.txt from the working directory and
// sends one UDP datagram per line, each body being "<prefix>,<line>".
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arjunvale/udprouter/internal/logging"
)

const testFileName = "test_file.txt"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "injector <header-prefix> <first-hop-ip> <first-hop-port>",
		Short: "Inject the lines of test_file.txt as UDP datagrams",
		Args:  cobra.ExactArgs(3),
		RunE:  run,
	}
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	prefix := args[0]
	firstHopIP := args[1]
	firstHopPort, err := strconv.ParseUint(args[2], 10, 16)
	if err != nil {
		return fmt.Errorf("first-hop-port: %w", err)
	}

	log, err := logging.New(logging.Options{Level: "info"})
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	runID := uuid.New().String()
	runLog := log.WithFields(logrus.Fields{"run_id": runID})

	f, err := os.Open(testFileName)
	if err != nil {
		return fmt.Errorf("open %s: %w", testFileName, err)
	}
	defer f.Close()

	conn, err := net.DialUDP("udp4", nil, &net.UDPAddr{
		IP:   net.ParseIP(firstHopIP),
		Port: int(firstHopPort),
	})
	if err != nil {
		return fmt.Errorf("dial %s:%d: %w", firstHopIP, firstHopPort, err)
	}
	defer conn.Close()

	scanner := bufio.NewScanner(f)
	sent := 0
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		body := prefix + "," + line
		if _, err := conn.Write([]byte(body)); err != nil {
			runLog.WithError(err).Warn("send failed")
			continue
		}
		sent++
		runLog.WithFields(logrus.Fields{"line": sent}).Debugf("sent %s", body)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", testFileName, err)
	}

	runLog.Infof("sent %d datagram(s) to %s:%d", sent, firstHopIP, firstHopPort)
	return nil
}
