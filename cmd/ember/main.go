package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/deths74r/ember"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "ember [file]",
		Short:   "A terminal text editor with lazy buffers and themeable rendering",
		Args:    cobra.MaximumNArgs(1),
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return run(path)
		},
		SilenceUsage: true,
	}
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string) error {
	cfgDir := ember.ConfigDir()
	if cfgDir != "" {
		_ = os.MkdirAll(cfgDir, 0o755)
		if flush, err := ember.InitLogger(filepath.Join(cfgDir, "ember.log")); err == nil {
			defer flush()
		}
	}
	cfg, err := ember.LoadConfig(filepath.Join(cfgDir, "config.ini"))
	if err != nil {
		return err
	}
	theme := ember.DefaultTheme()
	if cfg.Theme != "" && cfg.Theme != "default" {
		if t, err := ember.LoadTheme(filepath.Join(cfgDir, "themes", cfg.Theme+".ini")); err == nil {
			theme = t
		}
	}

	buf := ember.NewBuffer()
	if path != "" {
		buf, err = ember.Load(path)
		if err != nil {
			return err
		}
	}

	tty, err := ember.OpenTerminal()
	if err != nil {
		return err
	}
	defer tty.Restore()

	ed := ember.NewEditor(buf, cfg, theme)
	defer ed.Close()

	rows, cols, err := tty.Size()
	if err != nil {
		return err
	}
	ed.SetSize(rows, cols)

	// The input loop: bounded terminal reads feed the decoder; the VTIME
	// timeout lets each pass drain worker results and check the resize
	// flag even when no keys arrive.
	var pending []byte
	readBuf := make([]byte, 64)
	for !ed.ShouldQuit() {
		if tty.Resized() {
			if rows, cols, err := tty.Size(); err == nil {
				ed.SetSize(rows, cols)
			}
		}
		ed.Tick()
		os.Stdout.WriteString(ed.RenderFrame())

		n, err := tty.Read(readBuf)
		if err != nil {
			return err
		}
		pending = append(pending, readBuf[:n]...)
		for len(pending) > 0 {
			ev, consumed := ember.DecodeInput(pending)
			if consumed == 0 {
				break // incomplete sequence, read more bytes
			}
			pending = pending[consumed:]
			ed.HandleEvent(ev)
		}
	}
	return nil
}
