package shell

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/cleaner-cli/internal/analysis"
	"github.com/KaramelBytes/cleaner-cli/internal/dataset"
	"github.com/KaramelBytes/cleaner-cli/internal/ops"
	"github.com/KaramelBytes/cleaner-cli/internal/session"
	"github.com/KaramelBytes/cleaner-cli/internal/utils"
)

func (sh *Shell) commands() map[string]command {
	return map[string]command{
		"load":       {"load <path>", "load a CSV file", sh.cmdLoad},
		"sample":     {"sample <name>", "load a bundled sample dataset", sh.cmdSample},
		"samples":    {"samples", "list sample datasets", sh.cmdSamples},
		"head":       {"head [n]", "show the first rows", sh.cmdHead},
		"info":       {"info", "describe columns", sh.cmdInfo},
		"nulls":      {"nulls", "missing values per column", sh.cmdNulls},
		"duplicates": {"duplicates", "count duplicate rows", sh.cmdDuplicates},
		"dedupe":     {"dedupe", "remove duplicate rows", sh.cmdDedupe},
		"drop":       {"drop <col>...", "remove columns", sh.cmdDrop},
		"dropna":     {"dropna rows | dropna cols <threshold>", "remove rows or columns with missing values", sh.cmdDropNA},
		"fill":       {"fill num <col> median|<n>... | fill cat <col> mode|=<text>...", "fill missing values", sh.cmdFill},
		"outliers":   {"outliers [drop|cap <col>...]", "show, drop or cap IQR outliers", sh.cmdOutliers},
		"convert":    {"convert preview|apply <col> int|float|str|datetime", "change a column type", sh.cmdConvert},
		"auto":       {"auto [threshold]", "run the automatic cleaning pipeline", sh.cmdAuto},
		"undo":       {"undo", "revert the last change", sh.cmdUndo},
		"reset":      {"reset", "restore the loaded dataset (undoable)", sh.cmdReset},
		"history":    {"history", "list the actions taken", sh.cmdHistory},
		"export":     {"export [path]", "write the working dataset as CSV", sh.cmdExport},
		"help":       {"help", "show this help", sh.cmdHelp},
		"quit":       {"quit", "leave the shell", sh.cmdQuit},
		"exit":       {"exit", "leave the shell", sh.cmdQuit},
	}
}

func usage(format string, args ...any) error {
	return &ops.ValidationError{Reason: "usage: " + fmt.Sprintf(format, args...)}
}

// Load loads src into the session and reports the outcome.
func (sh *Shell) Load(ctx context.Context, src session.Source) error {
	fresh, err := sh.sess.Load(ctx, src)
	if err != nil {
		return err
	}
	if !fresh {
		sh.warnf("%s is already loaded", src.Name())
		return nil
	}
	return sh.sess.Inspect(func(ds *dataset.Dataset) {
		sh.okf("Loaded %s: %d rows × %d columns", src.Name(), ds.NumRows(), ds.NumCols())
	})
}

func (sh *Shell) cmdLoad(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("load <path>")
	}
	return sh.Load(ctx, session.FileSource{Path: args[0]})
}

func (sh *Shell) cmdSample(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("sample <name>")
	}
	return sh.LoadSample(ctx, args[0])
}

// LoadSample loads a configured sample by case-insensitive name.
func (sh *Shell) LoadSample(ctx context.Context, name string) error {
	key := strings.ToLower(name)
	url, ok := sh.opt.Samples[key]
	if !ok {
		return &ops.ValidationError{Op: "sample", Reason: fmt.Sprintf("unknown sample %q (have: %s)", name, strings.Join(sh.sampleNames(), ", "))}
	}
	return sh.Load(ctx, session.URLSource{Label: key, URL: url, Timeout: sh.opt.HTTPTimeout})
}

func (sh *Shell) sampleNames() []string {
	names := make([]string, 0, len(sh.opt.Samples))
	for n := range sh.opt.Samples {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (sh *Shell) cmdSamples(context.Context, []string) error {
	if len(sh.opt.Samples) == 0 {
		sh.infof("No samples configured")
		return nil
	}
	for _, n := range sh.sampleNames() {
		sh.infof("- %s  %s", n, sh.st.dim.Render(sh.opt.Samples[n]))
	}
	return nil
}

func (sh *Shell) cmdHead(_ context.Context, args []string) error {
	n := sh.opt.PreviewRows
	if len(args) > 1 {
		return usage("head [n]")
	}
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 0 {
			return usage("head [n] (n must be a non-negative integer)")
		}
		n = v
	}
	return sh.sess.Inspect(func(ds *dataset.Dataset) {
		fmt.Fprint(sh.out, analysis.DatasetTable(ds.Head(n)))
		sh.infof("%s", sh.st.dim.Render(fmt.Sprintf("%d of %d rows", min(n, ds.NumRows()), ds.NumRows())))
	})
}

func (sh *Shell) cmdInfo(context.Context, []string) error {
	name := sh.sess.Name()
	return sh.sess.Inspect(func(ds *dataset.Dataset) {
		opt := analysis.DefaultOptions()
		opt.SampleRows = sh.opt.PreviewRows
		fmt.Fprint(sh.out, analysis.Profile(name, ds, opt).Markdown())
	})
}

func (sh *Shell) cmdNulls(context.Context, []string) error {
	return sh.sess.Inspect(func(ds *dataset.Dataset) {
		stats := ops.NullSummary(ds)
		if len(stats) == 0 {
			sh.okf("No missing values")
			return
		}
		rows := make([][]string, len(stats))
		for i, s := range stats {
			rows[i] = []string{s.Column, s.Kind.String(), strconv.Itoa(s.Count), fmt.Sprintf("%.2f%%", s.Percent)}
		}
		fmt.Fprint(sh.out, analysis.Table([]string{"column", "type", "missing", "percent"}, rows))
	})
}

func (sh *Shell) cmdDuplicates(context.Context, []string) error {
	return sh.sess.Inspect(func(ds *dataset.Dataset) {
		if n := ops.CountDuplicates(ds); n > 0 {
			sh.warnf("%d duplicate rows", n)
		} else {
			sh.okf("No duplicate rows")
		}
	})
}

func (sh *Shell) cmdDedupe(context.Context, []string) error {
	rep, err := sh.sess.DropDuplicates()
	if err != nil {
		return err
	}
	if rep.Removed == 0 {
		sh.okf("No duplicates to remove")
		return nil
	}
	sh.okf("Removed %d duplicate rows", rep.Removed)
	return nil
}

func (sh *Shell) cmdDrop(_ context.Context, args []string) error {
	if err := sh.sess.DropColumns(args); err != nil {
		return err
	}
	sh.okf("Dropped %s", strings.Join(args, ", "))
	return nil
}

func (sh *Shell) cmdDropNA(_ context.Context, args []string) error {
	if len(args) == 0 {
		return usage("dropna rows | dropna cols <threshold>")
	}
	switch args[0] {
	case "rows":
		if len(args) != 1 {
			return usage("dropna rows")
		}
		rep, err := sh.sess.DropNullRows()
		if err != nil {
			return err
		}
		if rep.Removed == 0 {
			sh.okf("No rows with missing values")
			return nil
		}
		sh.okf("Removed %d rows (%.2f%%)", rep.Removed, rep.Percent)
		return nil
	case "cols", "columns":
		if len(args) != 2 {
			return usage("dropna cols <threshold>")
		}
		thr, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return usage("dropna cols <threshold> (threshold is a percentage)")
		}
		dropped, err := sh.sess.DropNullColumns(thr)
		if err != nil {
			return err
		}
		if len(dropped) == 0 {
			sh.okf("No columns above %.2f%% missing", thr)
			return nil
		}
		sh.okf("Dropped %s", strings.Join(dropped, ", "))
		return nil
	}
	return usage("dropna rows | dropna cols <threshold>")
}

func (sh *Shell) cmdFill(_ context.Context, args []string) error {
	if len(args) < 3 || len(args)%2 != 1 {
		return usage("fill num <col> median|<n>... | fill cat <col> mode|=<text>...")
	}
	pairs := args[1:]
	var (
		reps []ops.FillReport
		err  error
	)
	switch args[0] {
	case "num", "numeric":
		fills := make([]ops.NumericFill, 0, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			f := ops.NumericFill{Column: pairs[i]}
			if strings.EqualFold(pairs[i+1], "median") {
				f.Median = true
			} else {
				v, perr := strconv.ParseFloat(pairs[i+1], 64)
				if perr != nil {
					return usage("fill num <col> median|<number> (got %q)", pairs[i+1])
				}
				f.Value = v
			}
			fills = append(fills, f)
		}
		reps, err = sh.sess.FillNumeric(fills)
	case "cat", "categorical":
		fills := make([]ops.CategoricalFill, 0, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			f := ops.CategoricalFill{Column: pairs[i]}
			switch spec := pairs[i+1]; {
			case strings.EqualFold(spec, "mode"):
				f.MostFrequent = true
			case strings.HasPrefix(spec, "="):
				f.Value = strings.TrimPrefix(spec, "=")
			default:
				return usage("fill cat <col> mode|=<text> (got %q)", spec)
			}
			fills = append(fills, f)
		}
		reps, err = sh.sess.FillCategorical(fills)
	default:
		return usage("fill num|cat ...")
	}
	if err != nil {
		return err
	}
	for _, r := range reps {
		how := r.Value
		if r.Statistic != "" {
			how = fmt.Sprintf("%s %s", r.Statistic, r.Value)
		}
		sh.okf("Filled %d missing in %s with %s", r.Filled, r.Column, how)
	}
	return nil
}

func (sh *Shell) cmdOutliers(_ context.Context, args []string) error {
	if len(args) == 0 {
		return sh.sess.Inspect(func(ds *dataset.Dataset) {
			stats := ops.OutlierSummary(ds, sh.opt.IQRMultiplier)
			if len(stats) == 0 {
				sh.infof("No numeric columns")
				return
			}
			rows := make([][]string, len(stats))
			for i, s := range stats {
				rows[i] = []string{s.Column, strconv.Itoa(s.Count),
					strconv.FormatFloat(s.Bounds.Low, 'g', 6, 64), strconv.FormatFloat(s.Bounds.High, 'g', 6, 64)}
			}
			fmt.Fprint(sh.out, analysis.Table([]string{"column", "outliers", "low", "high"}, rows))
		})
	}
	switch args[0] {
	case "drop":
		rep, err := sh.sess.DropOutliers(args[1:])
		if err != nil {
			return err
		}
		sh.okf("Removed %d rows (%.2f%%)", rep.Removed, rep.Percent)
		return nil
	case "cap":
		rep, err := sh.sess.CapOutliers(args[1:])
		if err != nil {
			return err
		}
		sh.okf("Capped values in %d rows", rep.RowsChanged)
		return nil
	}
	return usage("outliers [drop|cap <col>...]")
}

func (sh *Shell) cmdConvert(_ context.Context, args []string) error {
	if len(args) != 3 {
		return usage("convert preview|apply <col> int|float|str|datetime")
	}
	kind, err := dataset.ParseKind(strings.ToLower(args[2]))
	if err != nil {
		return &ops.ValidationError{Op: "convert", Reason: err.Error()}
	}
	col := args[1]
	switch args[0] {
	case "preview":
		conv, err := sh.sess.PreviewConversion(col, kind)
		if err != nil {
			return err
		}
		sh.heading(fmt.Sprintf("%s: %s -> %s", conv.Column, conv.From, conv.Target))
		preview := dataset.MustNew(conv.Result)
		fmt.Fprint(sh.out, analysis.DatasetTable(preview.Head(sh.opt.PreviewRows)))
		if conv.Safe() {
			sh.okf("Safe to convert")
		} else {
			sh.warnf("%d of %d values (%.2f%%) would become missing, rows %s",
				conv.Failed, conv.Total, conv.Percent, formatRows(conv.FailedRows, 10))
		}
		sh.infof("%s", sh.st.dim.Render(fmt.Sprintf("run `convert apply %s %s` to commit", col, args[2])))
		return nil
	case "apply":
		conv, err := sh.sess.ApplyConversion(col, kind)
		if err != nil {
			return err
		}
		sh.okf("Converted %s to %s", conv.Column, conv.Target)
		return nil
	}
	return usage("convert preview|apply <col> <type>")
}

func formatRows(rows []int, limit int) string {
	parts := make([]string, 0, limit+1)
	for i, r := range rows {
		if i == limit {
			parts = append(parts, fmt.Sprintf("… (+%d)", len(rows)-limit))
			break
		}
		parts = append(parts, strconv.Itoa(r))
	}
	return strings.Join(parts, ", ")
}

func (sh *Shell) cmdAuto(_ context.Context, args []string) error {
	opt := ops.AutoCleanOptions{NullThreshold: sh.opt.NullThreshold}
	if len(args) > 1 {
		return usage("auto [threshold]")
	}
	if len(args) == 1 {
		thr, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return usage("auto [threshold] (threshold is a percentage)")
		}
		opt.NullThreshold = thr
	}
	_, err := sh.AutoClean(opt)
	return err
}

// AutoClean runs the cleaning pipeline and writes one line per step.
func (sh *Shell) AutoClean(opt ops.AutoCleanOptions) (ops.AutoCleanReport, error) {
	rep, err := sh.sess.AutoClean(opt)
	if err != nil {
		return rep, err
	}
	sh.printAutoClean(rep)
	return rep, nil
}

func (sh *Shell) printAutoClean(rep ops.AutoCleanReport) {
	if !rep.Changed() {
		sh.okf("Nothing to clean")
		return
	}
	sh.okf("Removed %d duplicate rows", rep.DuplicatesRemoved)
	if len(rep.DroppedColumns) > 0 {
		sh.okf("Dropped sparse columns: %s", strings.Join(rep.DroppedColumns, ", "))
	}
	for _, f := range rep.NumericFills {
		sh.okf("Filled %s with median %s (%d)", f.Column, f.Value, f.Filled)
	}
	for _, f := range rep.CategoricalFills {
		sh.okf("Filled %s with most frequent %q (%d)", f.Column, f.Value, f.Filled)
	}
}

func (sh *Shell) cmdUndo(context.Context, []string) error {
	if !sh.sess.Undo() {
		sh.warnf("Nothing to undo")
		return nil
	}
	sh.okf("Undone (%d more)", sh.sess.HistoryLen())
	return nil
}

func (sh *Shell) cmdReset(context.Context, []string) error {
	if err := sh.sess.Reset(); err != nil {
		return err
	}
	sh.okf("Reset to the loaded dataset")
	return nil
}

func (sh *Shell) cmdHistory(context.Context, []string) error {
	j := sh.sess.Journal()
	if len(j) == 0 {
		sh.infof("No history")
		return nil
	}
	rows := make([][]string, len(j))
	for i, e := range j {
		rows[i] = []string{strconv.Itoa(i + 1), e.At.Format("15:04:05"), e.Op, e.Detail, fmt.Sprintf("%d×%d", e.Rows, e.Cols)}
	}
	fmt.Fprint(sh.out, analysis.Table([]string{"#", "time", "action", "detail", "shape"}, rows))
	sh.infof("%s", sh.st.dim.Render(fmt.Sprintf("%d undoable", sh.sess.HistoryLen())))
	return nil
}

// ExportPath returns the default export path for a loaded dataset name.
func ExportPath(dir, name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "dataset"
	}
	return filepath.Join(dir, "cleaned_"+base+".csv")
}

func (sh *Shell) cmdExport(_ context.Context, args []string) error {
	if len(args) > 1 {
		return usage("export [path]")
	}
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	_, err := sh.Export(path)
	return err
}

// Export writes the working dataset to path, or to the default export path
// under OutputDir when path is empty. It returns the path written.
func (sh *Shell) Export(path string) (string, error) {
	if !sh.sess.Loaded() {
		return "", session.ErrNotLoaded
	}
	if path == "" {
		path = ExportPath(sh.opt.OutputDir, sh.sess.Name())
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
	var b strings.Builder
	if err := sh.sess.Export(&b); err != nil {
		return "", err
	}
	if err := utils.SafeWriteFile(path, []byte(b.String())); err != nil {
		return "", err
	}
	sh.okf("Wrote %s", path)
	return path, nil
}

func (sh *Shell) cmdHelp(context.Context, []string) error {
	sh.printHelp()
	return nil
}

func (sh *Shell) cmdQuit(context.Context, []string) error { return errQuit }
