// bindc CLI - inspect driver bind artifacts and query a driver registry
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"

	"github.com/driverbind/bindc/manifest"
	"github.com/driverbind/bindc/pkg/artifact"
	"github.com/driverbind/bindc/pkg/bytecode"
	"github.com/driverbind/bindc/registry"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bindc [options] <command> [args...]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  dump <artifact>                      Disassemble an artifact\n")
		fmt.Fprintf(os.Stderr, "  match <artifact> <device.toml>       Match an artifact against a device\n")
		fmt.Fprintf(os.Stderr, "  store <registry.db> <artifact>       Add an artifact to a registry\n")
		fmt.Fprintf(os.Stderr, "  list <registry.db>                   List registered drivers\n")
		fmt.Fprintf(os.Stderr, "  match-all <registry.db> <device.toml>  Match a device against every driver\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *verbose {
		commonlog.Configure(1, nil)
	} else {
		commonlog.Configure(0, nil)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	var err error
	switch args[0] {
	case "dump":
		err = runDump(args[1:])
	case "match":
		err = runMatch(args[1:])
	case "store":
		err = runStore(args[1:])
	case "list":
		err = runList(args[1:])
	case "match-all":
		err = runMatchAll(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runDump(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: bindc dump <artifact>")
	}
	a, err := artifact.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("; Driver: %s\n", a.Name)
	fmt.Print(a.Program().Disassemble())
	return nil
}

func runMatch(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: bindc match <artifact> <device.toml>")
	}
	a, err := artifact.Load(args[0])
	if err != nil {
		return err
	}
	props, err := loadDeviceProperties(args[1])
	if err != nil {
		return err
	}
	ok, err := bytecode.MatchBytecode(a.Program(), props)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("no match")
		os.Exit(2)
	}
	fmt.Println("match")
	return nil
}

func runStore(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: bindc store <registry.db> <artifact>")
	}
	a, err := artifact.Load(args[1])
	if err != nil {
		return err
	}
	r, err := registry.Open(args[0])
	if err != nil {
		return err
	}
	defer r.Close()
	if err := r.Put(a); err != nil {
		return err
	}
	fmt.Printf("stored %s\n", a.Name)
	return nil
}

func runList(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: bindc list <registry.db>")
	}
	r, err := registry.Open(args[0])
	if err != nil {
		return err
	}
	defer r.Close()
	names, err := r.List()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runMatchAll(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: bindc match-all <registry.db> <device.toml>")
	}
	props, err := loadDeviceProperties(args[1])
	if err != nil {
		return err
	}
	r, err := registry.Open(args[0])
	if err != nil {
		return err
	}
	defer r.Close()
	matched, err := r.MatchAll(props)
	if err != nil {
		return err
	}
	for _, name := range matched {
		fmt.Println(name)
	}
	if len(matched) == 0 {
		os.Exit(2)
	}
	return nil
}

func loadDeviceProperties(path string) (bytecode.DeviceProperties, error) {
	d, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	return d.DeviceProperties()
}
