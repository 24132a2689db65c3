package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/funvibe/hostcall/internal/config"
	"github.com/funvibe/hostcall/internal/icache"
	"github.com/funvibe/hostcall/internal/il"
	"github.com/funvibe/hostcall/internal/vm"
)

type cliArgs struct {
	configPath string
	unchecked  bool
	trace      bool
	disasm     bool
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: %s [-config <file>] [-unchecked] [-trace] [-disasm]\n", os.Args[0])
	fmt.Fprintln(w, "  -config <file>  options file (default: nearest "+config.ConfigFileName+")")
	fmt.Fprintln(w, "  -unchecked      emit long->int argument narrowing without overflow checks")
	fmt.Fprintln(w, "  -trace          log inline cache misses")
	fmt.Fprintln(w, "  -disasm         print the compiled units")
}

func parseArgs(args []string) (*cliArgs, error) {
	a := &cliArgs{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-config", "--config":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("%s needs a file argument", args[i])
			}
			i++
			a.configPath = args[i]
		case "-unchecked", "--unchecked":
			a.unchecked = true
		case "-trace", "--trace":
			a.trace = true
		case "-disasm", "--disasm":
			a.disasm = true
		default:
			return nil, fmt.Errorf("unknown argument %q", args[i])
		}
	}
	return a, nil
}

func loadOptions(path string) (*config.Options, error) {
	if path == "" {
		found, err := config.FindOptions(".")
		if err != nil {
			return nil, err
		}
		if found == "" {
			return config.DefaultOptions(), nil
		}
		path = found
	}
	return config.LoadOptions(path)
}

// traceOutput opens the writer named by the trace.output option.
func traceOutput(out string) (io.Writer, func(), error) {
	switch out {
	case config.TraceStderr, "":
		return os.Stderr, func() {}, nil
	case config.TraceStdout:
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening trace output: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func highlighter() func(string) string {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return nil
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return nil
	}
	return func(s string) string { return "\033[1;36m" + s + "\033[0m" }
}

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	if len(os.Args) > 1 && (os.Args[1] == "-help" || os.Args[1] == "--help" || os.Args[1] == "help") {
		usage(os.Stdout)
		return
	}

	args, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		usage(os.Stderr)
		os.Exit(2)
	}

	opts, err := loadOptions(args.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
	if args.unchecked {
		opts.UncheckedMath = true
	}
	if args.trace {
		opts.Trace.Enabled = true
	}
	opts.Apply()

	var tracer icache.Tracer
	if opts.Trace.Enabled {
		w, closeFn, err := traceOutput(opts.Trace.Output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}
		defer closeFn()
		tracer = icache.NewLogTracer(log.New(w, "trace: ", 0), opts.Trace.Hits)
	}

	units, err := buildDemo(tracer)
	if err != nil {
		log.Printf("Compilation error: %v", err)
		os.Exit(1)
	}

	hl := highlighter()
	for _, d := range units {
		if args.disasm {
			fmt.Print(il.Disassemble(d.chunk, hl))
		}
		for _, in := range d.inputs {
			res, err := vm.New().Run(d.chunk, in...)
			if err != nil {
				log.Printf("Runtime error: %v", err)
				continue
			}
			fmt.Printf("%s%s => %v\n", d.chunk.Name, formatInputs(in), res)
		}
	}

	printStats(os.Stdout, units)
}

func formatInputs(in []any) string {
	if len(in) == 0 {
		return ""
	}
	parts := make([]string, len(in))
	for i, v := range in {
		parts[i] = fmt.Sprintf("%T", v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func printStats(w io.Writer, units []*demoUnit) {
	for _, d := range units {
		for _, c := range d.chunk.Caches.Caches() {
			s := c.Stats()
			fmt.Fprintf(w, "site %s %s: hits=%d misses=%d entries=%d\n",
				c.Site(), c.MethodName(), s.Hits, s.Misses, s.Entries)
		}
	}
}
