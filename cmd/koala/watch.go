package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Comcast/koala/util"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// watcher re-checks programs when they change.  It watches the
// directories that hold the files since editors often replace a file
// rather than write to it.
type watcher struct {
	notify *fsnotify.Watcher
	files  map[string]bool
	logger *logrus.Logger
	onEdit func(filename string)
}

func newWatcher(logger *logrus.Logger, filenames []string, onEdit func(string)) (*watcher, error) {
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &watcher{
		notify: notify,
		files:  make(map[string]bool, len(filenames)),
		logger: logger,
		onEdit: onEdit,
	}

	dirs := make(map[string]bool)
	for _, filename := range filenames {
		abs, err := filepath.Abs(filename)
		if err != nil {
			notify.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := notify.Add(dir); err != nil {
			notify.Close()
			return nil, err
		}
		logger.Debugf("monitoring directory '%v'", dir)
	}

	return w, nil
}

// Run handles events until ctx is done.
func (w *watcher) Run(ctx context.Context) {
	defer w.notify.Close()
	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("terminating watcher")
			return
		case event, ok := <-w.notify.Events:
			if !ok {
				return
			}
			w.logger.Debugf("watcher got event: %v", event)
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if abs, err := filepath.Abs(event.Name); err == nil && w.files[abs] {
				w.onEdit(event.Name)
			}
		case err, ok := <-w.notify.Errors:
			if !ok {
				return
			}
			w.logger.Warnf("watcher got error: %v", err)
		}
	}
}

func newWatchCmd() *cobra.Command {
	var roots []string

	cmd := &cobra.Command{
		Use:   "watch FILE...",
		Short: "Check programs every time they change",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p := newPalette(cfg.Colorize(os.Stdout))
			out := cmd.OutOrStdout()

			recheck := func(filename string) {
				fmt.Fprintln(out, p.Faint("--- %s", filename))
				checkFile(filename, roots).print(out, p)
			}
			for _, filename := range args {
				recheck(filename)
			}

			w, err := newWatcher(util.Logger(), args, recheck)
			if err != nil {
				return err
			}
			w.Run(cmd.Context())
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&roots, "root", nil, "predicates (name/arity) that start reachability analysis")

	return cmd
}
