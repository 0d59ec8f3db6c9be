package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/schemafile"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	sub := os.Args[1]
	switch sub {
	case "convert":
		convertCmd(os.Args[2:], os.Stdin, os.Stdout)
	case "types":
		typesCmd(os.Args[2:], os.Stdout)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "docbind CLI\n\nUsage:\n  docbind convert -schema schema.yaml -type T -from json|xml|yaml -to json|xml|yaml [-indent N] [-v] [file]\n  docbind types -schema schema.yaml\n\nNotes:\n  - convert reads stdin when no file is given and writes to stdout.")
}

type convertOptions struct {
	schema  string
	typ     string
	from    string
	to      string
	indent  int
	verbose bool
}

func convertCmd(args []string, stdin io.Reader, stdout io.Writer) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	var o convertOptions
	fs.StringVar(&o.schema, "schema", "", "schema file (YAML)")
	fs.StringVar(&o.typ, "type", "", "type of the top-level entity")
	fs.StringVar(&o.from, "from", "json", "input format")
	fs.StringVar(&o.to, "to", "json", "output format")
	fs.IntVar(&o.indent, "indent", 0, "indentation of the output")
	fs.BoolVar(&o.verbose, "v", false, "enable verbose logs")
	_ = fs.Parse(args)
	if o.schema == "" || o.typ == "" {
		fs.Usage()
		os.Exit(2)
	}

	in := stdin
	if fs.NArg() > 0 {
		f, err := os.Open(fs.Arg(0))
		if err != nil {
			fatalf("open input: %v", err)
		}
		defer f.Close()
		in = f
	}

	logger := zap.NewNop()
	if o.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fatalf("logger: %v", err)
		}
		logger = l
	}
	defer func() { _ = logger.Sync() }()

	if err := convert(context.Background(), o, in, stdout, logger); err != nil {
		fatalf("%v", err)
	}
}

func convert(ctx context.Context, o convertOptions, in io.Reader, out io.Writer, logger *zap.Logger) error {
	from, err := docbind.ParseFormat(o.from)
	if err != nil {
		return err
	}
	to, err := docbind.ParseFormat(o.to)
	if err != nil {
		return err
	}
	reg, err := schemafile.LoadFile(o.schema)
	if err != nil {
		return err
	}
	rec, err := reg.New(o.typ)
	if err != nil {
		return err
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	logger.Debug("parsing", zap.String("type", o.typ), zap.Stringer("format", from), zap.Int("bytes", len(data)))
	if err := docbind.Parse(ctx, from, data, rec, docbind.WithLogger(logger)); err != nil {
		return err
	}
	body, err := docbind.Render(ctx, to, rec, docbind.WithLogger(logger), docbind.WithIndent(o.indent))
	if err != nil {
		return err
	}
	if _, err := out.Write(body); err != nil {
		return err
	}
	if len(body) > 0 && body[len(body)-1] != '\n' {
		_, err = io.WriteString(out, "\n")
	}
	return err
}

func typesCmd(args []string, stdout io.Writer) {
	fs := flag.NewFlagSet("types", flag.ExitOnError)
	var schema string
	fs.StringVar(&schema, "schema", "", "schema file (YAML)")
	_ = fs.Parse(args)
	if schema == "" {
		fs.Usage()
		os.Exit(2)
	}
	reg, err := schemafile.LoadFile(schema)
	if err != nil {
		fatalf("%v", err)
	}
	for _, name := range reg.Names() {
		s, _ := reg.Schema(name)
		fmt.Fprintf(stdout, "%s\t%d properties\n", name, len(s.Definitions()))
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
