package main

import (
	"fmt"
	"net"
	"os"

	"github.com/diegok/rundevrun-audio/internal/app"
	"github.com/diegok/rundevrun-audio/internal/config"
)

func main() {
	cfg, err := config.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		printUsage()
		os.Exit(1)
	}

	if cfg.IsServer && !cfg.Headless {
		showServerInfo(cfg.Port)
	}

	application := app.NewApp(cfg)
	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  rundevrun-audio [options]                      Sound board on this machine")
	fmt.Fprintln(os.Stderr, "  rundevrun-audio --server [--headless]          Also play events from remote games")
	fmt.Fprintln(os.Stderr, "  rundevrun-audio --join <address>               Send events to an audio server")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "  --port <port>           Server port (default: 5555)")
	fmt.Fprintln(os.Stderr, "  --name <name>           Name sent to the audio server")
	fmt.Fprintln(os.Stderr, "  --music-volume <0-1>    Music volume (default: 0.3)")
	fmt.Fprintln(os.Stderr, "  --sfx-volume <0-1>      Sound effects volume (default: 0.5)")
	fmt.Fprintln(os.Stderr, "  --master-volume <0-1>   Master volume (default: 1)")
	fmt.Fprintln(os.Stderr, "  --mute                  Disable audio")
	fmt.Fprintln(os.Stderr, "  --patterns <file>       YAML file with extra music patterns")
	fmt.Fprintln(os.Stderr, "  --config <file>         YAML file with default options")
	fmt.Fprintln(os.Stderr, "  --log <file>            Write logs to a file")
	fmt.Fprintln(os.Stderr, "  --debug                 Debug logging")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Examples:")
	fmt.Fprintln(os.Stderr, "  rundevrun-audio --server --headless --port 7000")
	fmt.Fprintln(os.Stderr, "  rundevrun-audio --join 192.168.1.100 --name laptop")
}

func showServerInfo(port int) {
	fmt.Printf("Starting audio server on port %d\n", port)
	fmt.Println("Games can connect using:")
	fmt.Println("")

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		fmt.Printf("  rundevrun-audio --join localhost:%d\n", port)
		return
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}

		ip := ipNet.IP
		if ip.IsLoopback() || ip.To4() == nil {
			continue
		}

		fmt.Printf("  rundevrun-audio --join %s:%d\n", ip.String(), port)
	}

	fmt.Printf("  rundevrun-audio --join localhost:%d  (same machine)\n", port)
	fmt.Println("")
}
