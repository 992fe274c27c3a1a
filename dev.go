package main

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"

	"github.com/nf/ch8/cosmac"
)

// devMode runs romFile, restarting it whenever the file changes. A halted
// program is reported rather than ending the run.
func devMode(fe cosmac.Frontend, debug bool, romFile string, cfg cosmac.Config) error {
	romFile = filepath.Clean(romFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(romFile)); err != nil {
		return err
	}

	var (
		d     *debugger
		state cosmac.StateFunc
	)
	if debug {
		d = newDebugger()
		state = d.StateFunc
	}
	runner := cosmac.NewRunner(fe, true, state)

	load := func() (*cosmac.Cosmac, error) {
		rom, err := os.ReadFile(romFile)
		if err != nil {
			return nil, err
		}
		if d != nil {
			syms, err := parseSymbols(romFile + ".sym")
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				log.Printf("dev: reading symbols: %v", err)
			}
			d.setSymbols(syms)
		}
		return cosmac.New(rom, cfg)
	}
	c, err := load()
	if err != nil {
		return err
	}

	if d != nil {
		d.run = runner
		log.SetPrefix("")
		log.SetOutput(d.log)
		go func() {
			if err := d.Run(); err != nil {
				log.Fatalf("debug: %v", err)
			}
			log.SetOutput(os.Stderr)
			log.SetPrefix("ch8: ")
			runner.Debug("exit", 0)
		}()
	}

	go func() {
		var reload <-chan time.Time
		for {
			select {
			case <-reload:
				reload = nil
				log.Printf("dev: reload %s", filepath.Base(romFile))
				c, err := load()
				if err != nil {
					log.Printf("dev: %v", err)
					break
				}
				runner.Reset(c)
			case ev := <-watcher.Event:
				if ev.Name == romFile && !ev.IsAttrib() {
					reload = time.After(100 * time.Millisecond)
				}
			case err := <-watcher.Error:
				log.Printf("dev: watcher: %v", err)
			}
		}
	}()
	return runner.Run(c)
}
