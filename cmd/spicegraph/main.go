package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/voltlab/spicegraph/pkg/config"
	"github.com/voltlab/spicegraph/pkg/design"
	"github.com/voltlab/spicegraph/pkg/erc"
	"github.com/voltlab/spicegraph/pkg/graph"
	"github.com/voltlab/spicegraph/pkg/logging"
	"github.com/voltlab/spicegraph/pkg/metrics"
	"github.com/voltlab/spicegraph/pkg/netlist"
)

func main() {
	configPath := flag.String("config", "", "Optional YAML configuration file")
	ground := flag.String("ground", "", "Override the reference node identifier")
	flag.Usage = usage
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			fatal(err)
		}
		cfg = loaded
	}
	if *ground != "" {
		cfg.Ground = *ground
	}

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	logger := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	var err error
	switch args[0] {
	case "check":
		err = runCheck(cfg, args[1:])
	case "stats":
		err = runStats(args[1:])
	case "emit":
		err = runEmit(cfg, logger, args[1:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: spicegraph [flags] <command> <file>

Commands:
  check <netlist>   Parse a netlist and run the full rule engine
  stats <netlist>   Parse a netlist and print parse and graph statistics
  emit <spec.json>  Apply a JSON design specification and emit the netlist

Flags:
`)
	flag.PrintDefaults()
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "spicegraph: %v\n", err)
	os.Exit(1)
}

// runCheck parses the netlist and prints the final-phase rule report.
func runCheck(cfg config.Config, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}
	report, timing := erc.RunERC(string(text), cfg.Ground)
	out := struct {
		*erc.Report
		Timing erc.Timing `json:"timing"`
	}{report, timing}
	if err := printJSON(out); err != nil {
		return err
	}
	if !report.Pass {
		os.Exit(1)
	}
	return nil
}

// runStats parses the netlist and prints line accounting plus graph
// size.
func runStats(args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}
	comps, parseStats := netlist.ParseWithStats(string(text))
	g := graph.Build(comps)
	return printJSON(struct {
		Parse netlist.ParseStats `json:"parse"`
		Graph graph.Stats        `json:"graph"`
	}{parseStats, g.Stats()})
}

// runEmit rebuilds a design from a JSON specification and writes the
// rendered netlist to stdout.
func runEmit(cfg config.Config, logger logging.Logger, args []string) error {
	data, err := readInput(args)
	if err != nil {
		return err
	}
	spec, err := design.ParseSpec(data)
	if err != nil {
		return err
	}

	opts := []design.Option{
		design.WithGround(cfg.Ground),
		design.WithGroundAliases(cfg.GroundAliases...),
		design.WithLogger(logger),
	}
	if cfg.MetricsEnabled {
		opts = append(opts, design.WithMetrics(metrics.DefaultRegistry()))
	}
	d := design.New(opts...)
	if _, err := d.Apply(spec, design.Options{}); err != nil {
		return err
	}
	fmt.Print(d.EmitNetlist(spec.Title))
	return nil
}

func readInput(args []string) ([]byte, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected exactly one input file")
	}
	if args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
