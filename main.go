// Command ch8 executes CHIP-8 programs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"runtime/pprof"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/nf/ch8/cosmac"
)

func main() {
	log.SetPrefix("ch8: ")
	log.SetFlags(0)

	def := cosmac.DefaultConfig()
	var (
		cliFlag      = flag.Bool("cli", false, "run in the terminal instead of a window")
		headlessFlag = flag.Bool("headless", false, "run without presenting the display")
		framesFlag   = flag.Int("frames", 0, "run for `n` frames, then print the display and exit (implies -headless)")
		disasmFlag   = flag.Bool("disasm", false, "print a disassembly of the program and exit")
		devFlag      = flag.Bool("dev", false, "enable developer mode (reload the program when it changes)")
		debugFlag    = flag.Bool("debug", false, "enable debugger (implies -dev)")

		speedFlag  = flag.Int("speed", def.Speed, "instructions per frame")
		scaleFlag  = flag.Int("scale", def.Scale, "window pixels per display pixel")
		keysFlag   = flag.String("keys", def.Keymap.String(), "keyboard runes for keys 0 to F")
		noWaitFlag = flag.Bool("nowait", false, "keep executing after a draw instead of waiting for the next frame")
		fgFlag     = flag.String("fg", "ffffff", "foreground `colour`")
		bgFlag     = flag.String("bg", "000000", "background `colour`")
		wavFlag    = flag.String("wav", "", "record the beeper to `file`")

		cpuProfileFlag = flag.String("cpu_profile", "", "write CPU profile to `file`")
		statsViewFlag  = flag.String("statsview", "", "serve runtime charts on `addr`")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-cli | -headless | -frames n] <program.ch8>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s [-cli] <-dev | -debug> <program.ch8>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "       %s -disasm <program.ch8>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
	}

	if *disasmFlag {
		if err := disasmFile(os.Stdout, flag.Arg(0)); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg, err := parseConfig(*speedFlag, *scaleFlag, *keysFlag, *fgFlag, *bgFlag)
	if err != nil {
		log.Fatal(err)
	}
	cfg.DisplayWait = !*noWaitFlag
	cfg.WAV = *wavFlag

	var fe cosmac.Frontend
	switch {
	case *framesFlag > 0:
		fe = &cosmac.Headless{Frames: *framesFlag, Out: os.Stdout}
	case *headlessFlag:
		fe = &cosmac.Headless{}
	case *cliFlag:
		fe = cosmac.NewTerminal(cfg)
	default:
		fe = cosmac.NewGUI(cfg)
	}

	if addr := *statsViewFlag; addr != "" {
		go func() {
			viewer.SetConfiguration(viewer.WithAddr(addr))
			if err := statsview.New().Start(); err != nil {
				log.Printf("statsview: %v", err)
			}
		}()
		log.Printf("stats server available at http://%s/debug/statsview", addr)
	}

	stopProfile, err := startCPUProfile(*cpuProfileFlag)
	if err != nil {
		log.Fatal(err)
	}
	if *devFlag || *debugFlag {
		err = devMode(fe, *debugFlag, flag.Arg(0), cfg)
	} else {
		err = run(fe, flag.Arg(0), cfg)
	}
	stopProfile()
	if err != nil {
		log.Fatal(err)
	}
}

// startCPUProfile starts writing a CPU profile to file, if set, and
// returns the function that stops it.
func startCPUProfile(file string) (stop func(), err error) {
	if file == "" {
		return func() {}, nil
	}
	f, err := os.Create(file)
	if err != nil {
		return nil, fmt.Errorf("creating CPU profile file: %v", err)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("starting CPU profile: %v", err)
	}
	return func() {
		pprof.StopCPUProfile()
		if err := f.Close(); err != nil {
			log.Printf("writing CPU profile: %v", err)
		}
	}, nil
}

func parseConfig(speed, scale int, keys, fg, bg string) (cosmac.Config, error) {
	cfg := cosmac.DefaultConfig()
	if speed < 1 {
		return cfg, fmt.Errorf("speed must be at least 1, got %d", speed)
	}
	if scale < 1 {
		return cfg, fmt.Errorf("scale must be at least 1, got %d", scale)
	}
	cfg.Speed, cfg.Scale = speed, scale
	var err error
	if cfg.Keymap, err = cosmac.ParseKeymap(keys); err != nil {
		return cfg, err
	}
	if cfg.FG, err = cosmac.ParseColor(fg); err != nil {
		return cfg, fmt.Errorf("fg: %v", err)
	}
	if cfg.BG, err = cosmac.ParseColor(bg); err != nil {
		return cfg, fmt.Errorf("bg: %v", err)
	}
	return cfg, nil
}

func run(fe cosmac.Frontend, romFile string, cfg cosmac.Config) error {
	rom, err := os.ReadFile(romFile)
	if err != nil {
		return err
	}
	c, err := cosmac.New(rom, cfg)
	if err != nil {
		return err
	}
	return cosmac.NewRunner(fe, false, nil).Run(c)
}

func disasmFile(w io.Writer, romFile string) error {
	rom, err := os.ReadFile(romFile)
	if err != nil {
		return err
	}
	syms, err := parseSymbols(romFile + ".sym")
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading symbols: %v", err)
	}
	return disassemble(w, rom, syms)
}
