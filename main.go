// main.go - composition root: CLI argument parsing, system construction, goroutine supervision

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

func boilerPlate() {
	fmt.Println("\nA multi-system retro-console emulator core: Chip8 and GameBoy behind a shared component bus, with a remote-debug server.")
	fmt.Println("(c) 2024 - 2026 Zayn Otley")
	fmt.Println("https://github.com/IntuitionAmiga/IntuitionEngine")
	fmt.Println("License: GPLv3 or later")
}

func usage() {
	fmt.Printf("Usage: retroconsole <%v> <romfile> [debug-addr]\n", RegisteredSystemNames())
	fmt.Println("  debug-addr defaults to 127.0.0.1:1234; pass \"\" to disable the remote-debug server")
}

func main() {
	boilerPlate()

	if len(os.Args) < 3 {
		usage()
		os.Exit(1)
	}

	sysName, romPath := os.Args[1], os.Args[2]
	debugAddr := "127.0.0.1:1234"
	if len(os.Args) > 3 {
		debugAddr = os.Args[3]
	}

	factory, ok := ResolveSystem(sysName)
	if !ok {
		fmt.Printf("unknown system %q (available: %v)\n", sysName, RegisteredSystemNames())
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "["+sysName+"] ", log.LstdFlags)

	rom, err := os.ReadFile(romPath)
	if err != nil {
		fmt.Printf("failed to read ROM %q: %v\n", romPath, err)
		os.Exit(1)
	}

	sys := factory(logger, time.Now().UnixNano())
	loadROM(sys, rom)
	sys.PowerOn()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		sys.Run()
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		for sys.Status() != StatusHalted {
			sys.SetStatus(StatusStopping)
			time.Sleep(10 * time.Millisecond)
		}
		return nil
	})

	if debugAddr != "" {
		stop := make(chan struct{})
		g.Go(func() error {
			return RunDebugServer(sys, logger, debugAddr, stop)
		})
		g.Go(func() error {
			<-ctx.Done()
			close(stop)
			return nil
		})
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		g.Go(func() error {
			defer cancel()
			return runTerminalFrontend(sys, romPath, logger)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Printf("fatal: %v", err)
		os.Exit(1)
	}
}

// loadROM dispatches ROM bytes to whichever CPU component the system
// exposes; Chip8 and GameBoy both tag their CPU ComponentCPU, but their
// LoadROM signatures live on the concrete type since bus-level typed access
// has no notion of a bulk image load.
func loadROM(sys *System, rom []byte) {
	cpuDevice := sys.GetFirstComponentByType(ComponentCPU)
	switch c := cpuDevice.(type) {
	case *GameBoyCPU:
		c.LoadROM(rom)
	case *Chip8CPU:
		c.LoadROM(rom)
	}
}
