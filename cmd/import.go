package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/lfx/internal/formatter"
	"github.com/desertthunder/lfx/internal/shared"
	"github.com/desertthunder/lfx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Import imports every tag given as an argument, in order.
//
// A whole-tag failure does not stop the remaining tags but makes the command exit non-zero.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	tags := []string{}
	for _, arg := range cmd.Args().Slice() {
		if tag := strings.TrimSpace(arg); tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		return fmt.Errorf("%w: at least one tag is required", shared.ErrMissingArgument)
	}

	limit := cmd.Int("limit")
	if limit < 0 {
		return fmt.Errorf("%w: --limit must not be negative", shared.ErrInvalidArgument)
	}

	importer, err := r.importer()
	if err != nil {
		return err
	}

	if timeout := cmd.Duration("timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	progress := make(chan tasks.ProgressUpdate, 32)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	bulk, err := importer.ImportTags(ctx, progress, tags, limit)
	close(progress)
	<-done

	if bulk == nil {
		return err
	}

	if cmd.Bool("json") {
		if werr := r.writeJSON(bulk, cmd.Bool("pretty")); werr != nil {
			return werr
		}
		return err
	}

	r.printBulkImport(bulk)
	return err
}

func (r *Runner) printBulkImport(bulk *tasks.BulkImportResult) {
	for _, entry := range bulk.Tags {
		r.writePlainHeader(fmt.Sprintf("Import: %s", entry.Tag))

		if entry.Result != nil {
			r.writePlain("%s", formatter.ImportReport(entry.Result))
		}

		if entry.Err != nil {
			r.writePlain("%s\n", r.palette.Status(string(tasks.StatusFailed), "✗ "+entry.Error))
			continue
		}
		r.writePlain("%s\n", r.palette.Status(string(tasks.StatusImported),
			fmt.Sprintf("✓ %s imported in %s", entry.Tag, entry.Result.Duration.Round(time.Millisecond))))
	}

	summary := fmt.Sprintf("Tags: %d succeeded, %d failed", bulk.Succeeded, bulk.Failed)
	if bulk.Failed > 0 {
		r.writePlainln("%s", r.palette.Err(summary))
	} else {
		r.writePlainln("%s", r.palette.OK(summary))
	}
}
