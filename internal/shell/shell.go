// Package shell is a line-oriented interpreter that drives one cleaning
// session. The same interpreter serves interactive use and scripts.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/shlex"
	"go.uber.org/zap"

	"github.com/KaramelBytes/cleaner-cli/internal/ops"
	"github.com/KaramelBytes/cleaner-cli/internal/session"
)

// Options configures a Shell.
type Options struct {
	// Samples maps sample names to CSV URLs.
	Samples     map[string]string
	HTTPTimeout time.Duration
	PreviewRows int
	// IQRMultiplier scales the outlier fences shown by `outliers`; it should
	// match the session's.
	IQRMultiplier float64
	// NullThreshold is the auto-clean column drop threshold, in percent. Zero
	// drops every column with a missing value.
	NullThreshold float64
	// OutputDir is where `export` writes when given no path.
	OutputDir string
	Logger    *zap.Logger
}

// Shell interprets cleaning commands against a session.
type Shell struct {
	sess *session.Session
	out  io.Writer
	opt  Options
	log  *zap.Logger
	st   styles
	cmds map[string]command
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, args []string) error
}

type styles struct {
	ok, warn, fail, head, dim lipgloss.Style
}

func newStyles(out io.Writer) styles {
	r := lipgloss.NewRenderer(out)
	return styles{
		ok:   r.NewStyle().Foreground(lipgloss.Color("2")),
		warn: r.NewStyle().Foreground(lipgloss.Color("3")),
		fail: r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		head: r.NewStyle().Bold(true),
		dim:  r.NewStyle().Faint(true),
	}
}

// errQuit ends Run without error.
var errQuit = errors.New("quit")

// New returns a Shell writing to out.
func New(sess *session.Session, out io.Writer, opt Options) *Shell {
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}
	if opt.PreviewRows <= 0 {
		opt.PreviewRows = 5
	}
	sh := &Shell{sess: sess, out: out, opt: opt, log: opt.Logger, st: newStyles(out)}
	sh.cmds = sh.commands()
	return sh
}

// Run reads commands from in until EOF or quit. When prompt is set a prompt
// is printed before each line. Command errors are reported and do not stop
// the loop.
func (sh *Shell) Run(ctx context.Context, in io.Reader, prompt bool) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		if prompt {
			fmt.Fprint(sh.out, sh.st.dim.Render("cleaner> "))
		}
		if !sc.Scan() {
			break
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sh.Exec(ctx, sc.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			sh.report(err)
		}
	}
	return sc.Err()
}

// Exec runs a single command line. Blank lines and lines starting with # are
// ignored.
func (sh *Shell) Exec(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	args, err := shlex.Split(line)
	if err != nil {
		return &ops.ValidationError{Reason: fmt.Sprintf("parse %q: %v", line, err)}
	}
	if len(args) == 0 {
		return nil
	}
	name := strings.ToLower(args[0])
	c, ok := sh.cmds[name]
	if !ok {
		return &ops.ValidationError{Reason: fmt.Sprintf("unknown command %q (try help)", args[0])}
	}
	sh.log.Debug("exec", zap.String("cmd", name), zap.Strings("args", args[1:]))
	return c.run(ctx, args[1:])
}

// report prints err styled by its class.
func (sh *Shell) report(err error) {
	switch {
	case ops.IsValidation(err), errors.Is(err, session.ErrNotLoaded):
		sh.warnf("%v", err)
	default:
		sh.failf("%v", err)
	}
}

func (sh *Shell) okf(format string, args ...any) {
	fmt.Fprintln(sh.out, sh.st.ok.Render("✓ "+fmt.Sprintf(format, args...)))
}

func (sh *Shell) warnf(format string, args ...any) {
	fmt.Fprintln(sh.out, sh.st.warn.Render("⚠ "+fmt.Sprintf(format, args...)))
}

func (sh *Shell) failf(format string, args ...any) {
	fmt.Fprintln(sh.out, sh.st.fail.Render("✗ Error: "+fmt.Sprintf(format, args...)))
}

func (sh *Shell) infof(format string, args ...any) {
	fmt.Fprintf(sh.out, format+"\n", args...)
}

func (sh *Shell) heading(s string) {
	fmt.Fprintln(sh.out, sh.st.head.Render(s))
}

func (sh *Shell) printHelp() {
	names := make([]string, 0, len(sh.cmds))
	width := 0
	for n, c := range sh.cmds {
		names = append(names, n)
		if len(c.usage) > width {
			width = len(c.usage)
		}
	}
	sort.Strings(names)
	sh.heading("Commands")
	for _, n := range names {
		c := sh.cmds[n]
		sh.infof("  %-*s  %s", width, c.usage, c.help)
	}
}
