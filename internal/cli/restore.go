package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/libman/internal/watch"
	"github.com/matzehuels/libman/pkg/manifest"
	"github.com/matzehuels/libman/pkg/providers"
)

// restoreCommand restores every library in libman.json.
func (c *CLI) restoreCommand() *cobra.Command {
	var watchMode bool

	cmd := &cobra.Command{
		Use:   "restore [manifest...]",
		Short: "Restore the libraries declared in libman.json",
		Long: `Restore downloads every library declared in libman.json into its destination.

Files that are already up to date are left untouched. With --watch, libman
keeps running and restores again whenever libman.json changes.

Given manifest paths (or directories holding a libman.json), each is
restored in turn against its own directory. A manifest that cannot be read
is reported and the others still run.`,
		Example: `  libman restore
  libman restore --watch
  libman restore web/libman.json admin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(args) > 0 {
				if watchMode {
					return fmt.Errorf("--watch restores a single project; drop the manifest arguments")
				}
				return c.restoreFiles(ctx, args)
			}
			e, err := c.projectEnv(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			restoreErr := c.runRestore(ctx, e)
			if !watchMode {
				return restoreErr
			}
			if restoreErr != nil && ctx.Err() != nil {
				return restoreErr
			}
			return c.watchRestore(ctx, e)
		},
	}

	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "restore again whenever libman.json changes")
	return cmd
}

// runRestore loads the manifest, restores it and prints the outcome.
func (c *CLI) runRestore(ctx context.Context, e *env) error {
	m, err := e.loadManifest()
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	spin := newSpinner(ctx, fmt.Sprintf("Restoring %d libraries...", len(m.Libraries())))
	spin.Start()
	results := m.Restore(ctx)
	spin.Stop()

	sum := printResults(m, results, "restored to")
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if sum.failed > 0 {
		return errFailed{sum}
	}
	prog.done("Restore finished: " + sum.String())
	return nil
}

// restoreFiles restores several manifests, each with providers bound to the
// manifest's own directory.
func (c *CLI) restoreFiles(ctx context.Context, args []string) error {
	base, err := c.workDir()
	if err != nil {
		return err
	}
	paths := make([]string, len(args))
	for i, p := range args {
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		if fi, err := os.Stat(p); err == nil && fi.IsDir() {
			p = filepath.Join(p, manifest.FileName)
		}
		paths[i] = p
	}

	var envs []*env
	defer func() {
		for _, e := range envs {
			e.close()
		}
	}()
	newDeps := func(dir string) (*providers.Dependencies, error) {
		e, err := c.newEnv(ctx, dir)
		if err != nil {
			return nil, err
		}
		envs = append(envs, e)
		return e.deps, nil
	}

	prog := newProgress(c.Logger)
	spin := newSpinner(ctx, fmt.Sprintf("Restoring %d manifests...", len(paths)))
	spin.Start()
	out := manifest.RestoreFiles(ctx, paths, newDeps)
	spin.Stop()

	var total resultSummary
	unreadable := 0
	for _, fr := range out {
		fmt.Fprintln(stdout, StyleTitle.Render(fr.Path))
		if fr.Err != nil {
			unreadable++
			printError("%v", fr.Err)
			continue
		}
		total.add(printResults(fr.Manifest, fr.Results, "restored to"))
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if unreadable > 0 {
		return fmt.Errorf("%d of %d manifests could not be restored", unreadable, len(out))
	}
	if total.failed > 0 {
		return errFailed{total}
	}
	prog.done("Restore finished: " + total.String())
	return nil
}

// watchRestore re-runs restore on every change to libman.json until ctx ends.
func (c *CLI) watchRestore(ctx context.Context, e *env) error {
	w, err := watch.New(watch.Config{
		Dir:      e.host.WorkingDirectory(),
		Patterns: []string{manifest.FileName},
		Logger:   c.Logger,
		OnChange: func(ctx context.Context, changed []string) error {
			printInfo("%s changed, restoring", strings.Join(changed, ", "))
			err := c.runRestore(ctx, e)
			var failed errFailed
			if errors.As(err, &failed) {
				return nil
			}
			return err
		},
	})
	if err != nil {
		return err
	}
	printInfo("Watching %s for changes (Ctrl+C to stop)", manifest.FileName)
	return w.Run(ctx)
}
