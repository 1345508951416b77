package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/panels/internal/tui"
	"github.com/matzehuels/panels/pkg/drag"
)

// editCommand opens the interactive editor.
func (c *CLI) editCommand() *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "edit [id|name]",
		Short: "Open the interactive editor",
		Long: `Open a workspace in the terminal editor, or an empty layout when no
workspace is given. Key bindings come from the keyboard section of the
config file; press ? inside the editor to list them. Ctrl+S saves.

Log output would corrupt the screen, so it is discarded unless --log-file
is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				c.Logger.SetOutput(f)
			} else {
				c.Logger.SetOutput(io.Discard)
			}

			m, closeFn, err := c.openWorkspaces(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			var name string
			if len(args) == 1 {
				name = args[0]
			}
			st, ws, err := c.openStore(ctx, m, name)
			if err != nil {
				return err
			}
			keys, err := c.newDispatcher(st)
			if err != nil {
				return err
			}

			title := appName
			if ws.Name != "" {
				title = appName + " · " + ws.Name
			}
			model := tui.New(ctx, st, tui.Options{
				Keys: keys,
				Drag: drag.Options{
					Throttle:          c.config.Drag.Throttle,
					SnapToGrid:        true,
					MagneticThreshold: c.config.Drag.MagneticThreshold,
					ConstrainToParent: c.config.Drag.ConstrainToParent,
				},
				Title:  title,
				Logger: c.Logger,
			})
			return tui.Run(ctx, model)
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "append log output to this file")
	return cmd
}
