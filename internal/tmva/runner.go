package tmva

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// Runner executes a rendered macro with the ROOT interpreter.
type Runner struct {
	Binary string
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Run executes `<binary> -l -b -q <macro>` and waits for it to finish or for
// ctx to be cancelled.
func (r Runner) Run(ctx context.Context, macro string) error {
	bin := r.Binary
	if bin == "" {
		bin = "root"
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cmd := exec.CommandContext(ctx, bin, "-l", "-b", "-q", macro)
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}
	logger.Info("running classification macro", "binary", bin, "macro", macro)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("tmva: %s cancelled: %w", macro, ctx.Err())
		}
		return fmt.Errorf("tmva: run %s: %w", macro, err)
	}
	return nil
}
