package render

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tdewolff/svglayers"
)

// Inkscape renders by running the Inkscape command line. The whole page is exported, the output
// type is given by the extension of the destination.
type Inkscape struct {
	Command string    // defaults to inkscape
	Legacy  bool      // use the arguments of Inkscape 0.92
	Stderr  io.Writer // receives the diagnostics of a failed run
}

// Args returns the command line arguments that render src to dst.
func (r *Inkscape) Args(src, dst string) []string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(dst)), ".")
	if ext == "" {
		ext = "png"
	}
	if r.Legacy {
		return []string{"--export-area-page", "--export-" + ext, dst, src}
	}
	return []string{"--export-area-page", "--export-type=" + ext, "--export-filename=" + dst, src}
}

func (r *Inkscape) Render(src, dst string) error {
	command := r.Command
	if command == "" {
		command = "inkscape"
	}
	args := r.Args(src, dst)

	log.WithField("prefix", "inkscape").Debugf("%s %s", command, strings.Join(args, " "))
	stderr := &bytes.Buffer{}
	cmd := exec.Command(command, args...)
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		if r.Stderr != nil {
			r.Stderr.Write(stderr.Bytes())
		}
		return fmt.Errorf("%w: %s %s: %v", svglayers.ErrRender, command, strings.Join(args, " "), err)
	}
	return nil
}
