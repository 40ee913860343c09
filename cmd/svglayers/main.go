package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pkg/browser"
	log "github.com/sirupsen/logrus"
	"github.com/tdewolff/argp"
	"github.com/tdewolff/svglayers"
	"github.com/tdewolff/svglayers/render"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

type Export struct {
	Layers     []string `short:"l" name:"layer" desc:"Layer pattern with optional offset, as pattern[@x,y], can be repeated. Without it all layers visible in the input are exported"`
	LayersFile string   `short:"f" name:"layers-file" desc:"File with one layer pattern per line"`
	List       bool     `short:"L" name:"list" desc:"List the paths of all layers instead of exporting"`
	Crop       string   `short:"c" name:"crop" desc:"Crop the output to the bounding box of this layer path"`
	Renderer   string   `short:"r" name:"renderer" default:"inkscape" desc:"Renderer: inkscape, inkscape-legacy or canvas"`
	Inkscape   string   `name:"inkscape" desc:"Inkscape binary, defaults to $INKSCAPE or inkscape"`
	Minify     bool     `name:"minify" desc:"Minify the SVG before rendering"`
	Open       bool     `name:"open" desc:"Open the output when done"`
	Verbose    bool     `short:"v" name:"verbose" desc:"Verbose logging"`
	Input      string   `index:"0" desc:"Input Inkscape SVG file"`
	Output     string   `index:"1" default:"" desc:"Output file, the format is given by its extension"`
}

func main() {
	log.SetFormatter(&prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	log.SetOutput(os.Stderr)
	log.SetLevel(log.InfoLevel)

	root := argp.NewCmd(&Export{}, "Export selected layers of an Inkscape SVG file")
	root.Parse()
	root.PrintHelp()
}

func (cmd *Export) Run() error {
	if cmd.Verbose {
		log.SetLevel(log.DebugLevel)
	}
	if cmd.Input == "" {
		return argp.ShowUsage
	} else if cmd.List {
		if cmd.Output != "" {
			return fmt.Errorf("only one of output and --list can be specified")
		} else if len(cmd.Layers) != 0 || cmd.LayersFile != "" {
			return fmt.Errorf("only one of --layer and --list can be specified")
		}
	} else if cmd.Output == "" {
		return fmt.Errorf("one of output or --list must be specified")
	}

	if err := cmd.run(); svglayers.IsUserError(err) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	} else if err != nil {
		return err
	}
	return nil
}

func (cmd *Export) run() error {
	doc, err := svglayers.ParseFile(cmd.Input)
	if err != nil {
		return err
	}

	if cmd.List {
		tree, err := svglayers.BuildTree(doc)
		if err != nil {
			return err
		}
		return svglayers.ListLayers(os.Stdout, tree)
	}

	opts := svglayers.Options{Crop: cmd.Crop}
	if cmd.Layers != nil {
		if opts.Selections, err = svglayers.ParseSelections(cmd.Layers); err != nil {
			return err
		}
	}
	if cmd.LayersFile != "" {
		sels, err := readSelections(cmd.LayersFile)
		if err != nil {
			return err
		}
		opts.Selections = append(opts.Selections, sels...)
	}
	if opts.Selections != nil && len(opts.Selections) == 0 {
		return fmt.Errorf("%w: no layer patterns given", svglayers.ErrNoMatch)
	}

	command := cmd.Inkscape
	if command == "" {
		if command = os.Getenv("INKSCAPE"); command == "" {
			command = "inkscape"
		}
	}
	renderer, err := render.ByName(cmd.Renderer, command, os.Stderr)
	if err != nil {
		return err
	}

	exporter := &svglayers.Exporter{
		Renderer: renderer,
		Minify:   cmd.Minify,
		Log:      log.WithField("prefix", "export"),
	}
	if err := exporter.Export(doc, cmd.Output, opts); err != nil {
		return err
	}

	if cmd.Open {
		if err := browser.OpenFile(cmd.Output); err != nil {
			log.WithError(err).Warn("could not open output")
		}
	}
	return nil
}

func readSelections(filename string) ([]svglayers.Selection, error) {
	f, err := os.Open(filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: layers file %s", svglayers.ErrNotFound, filename)
	} else if err != nil {
		return nil, err
	}
	defer f.Close()
	return svglayers.ReadSelections(f)
}
