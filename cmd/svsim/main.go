// Copyright 2026 The svsim Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Command svsim parses a SystemVerilog source file, elaborates one of
// its modules and optionally simulates it against a generated clock
// and reset, printing the resulting signal trace.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/svkit/svsim"
	"github.com/svkit/svsim/svlib"
)

func main() {
	var (
		logLevel = flag.String("log-level", "error", "logging level (trace, debug, info, warn, error)")
		modName  = flag.String("module", "", "module to elaborate (default: first in the file)")
		outPath  = flag.String("o", "", "write the canonical formatted source to this path")
		cycles   = flag.Int("cycles", 0, "number of clock cycles to simulate (0 disables simulation)")
		period   = flag.Uint64("period", 10, "clock period in time units")
		clkName  = flag.String("clk", "clk", "clock signal name")
		rstName  = flag.String("rst", "n_rst", "active-low reset signal name, released after one cycle")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] file.sv\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		fail(err)
	}
	log := logrus.New()
	log.SetLevel(level)
	svsim.SetLogger(log)

	path := flag.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		fail(err)
	}
	src, err := svsim.Parse(string(data))
	if err != nil {
		fail(err)
	}
	log.WithField("file", path).Info("parsed input file")

	if *outPath != "" {
		if err := os.WriteFile(*outPath, []byte(svsim.Format(src)), 0o644); err != nil {
			fail(err)
		}
	}

	d, err := svsim.Elaborate(src, *modName, nil)
	if err != nil {
		fail(err)
	}
	fmt.Printf("module %s\n", d.Name())
	for _, sig := range d.Signals() {
		if sig.IsPort {
			fmt.Printf("  %-6s %-4s %2d  %s\n", sig.Dir, sig.Kind, sig.Width, sig.Name)
		}
	}

	if *cycles <= 0 {
		return
	}
	if _, ok := d.Signal(*clkName); !ok {
		fail(errors.Errorf("module %s has no clock signal %q", d.Name(), *clkName))
	}
	stim := svlib.Clock(*clkName, 0, *period, *cycles)
	if _, ok := d.Signal(*rstName); ok {
		stim = svlib.Merge(stim, svlib.PulseLow(*rstName, 0, *period))
	}
	trace, err := svsim.NewSimulator(d).Run(stim)
	if err != nil {
		fail(err)
	}
	for _, e := range trace.Events() {
		fmt.Printf("%8d  %s = %d\n", e.Time, e.Signal, e.Value)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "svsim:", err)
	os.Exit(1)
}
