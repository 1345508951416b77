package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/panels/pkg/workspace"
)

// workspaceCommand creates the workspace management command.
func (c *CLI) workspaceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "workspace",
		Aliases: []string{"ws"},
		Short:   "Manage saved workspaces",
	}

	cmd.AddCommand(c.workspaceListCommand())
	cmd.AddCommand(c.workspaceShowCommand())
	cmd.AddCommand(c.workspaceDeleteCommand())
	cmd.AddCommand(c.workspaceExportCommand())
	cmd.AddCommand(c.workspaceImportCommand())

	return cmd
}

// withWorkspaces opens the workspace manager for the duration of fn.
func (c *CLI) withWorkspaces(ctx context.Context, fn func(*workspace.Manager) error) error {
	m, closeFn, err := c.openWorkspaces(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(m)
}

func (c *CLI) workspaceListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkspaces(cmd.Context(), func(m *workspace.Manager) error {
				return printWorkspaces(cmd.OutOrStdout(), m)
			})
		},
	}
}

func printWorkspaces(w io.Writer, m *workspace.Manager) error {
	list := m.List()
	if len(list) == 0 {
		printInfo(w, "No saved workspaces")
		return nil
	}
	active, _ := m.Active()

	rows := make([][]string, 0, len(list))
	for _, cfg := range list {
		mark := ""
		if cfg.ID == active.ID {
			mark = styleActive.Render(iconActive)
		}
		rows = append(rows, []string{
			mark,
			cfg.Name,
			cfg.ID,
			strconv.Itoa(len(cfg.Panels)),
			formatRelativeTime(cfg.UpdatedAt),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Name", "ID", "Panels", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func (c *CLI) workspaceShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|name>",
		Short: "Show a workspace and its panels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkspaces(cmd.Context(), func(m *workspace.Manager) error {
				cfg, err := findWorkspace(m, args[0])
				if err != nil {
					return err
				}
				printWorkspace(cmd.OutOrStdout(), cfg)
				return nil
			})
		},
	}
}

func printWorkspace(w io.Writer, cfg workspace.Config) {
	fmt.Fprintln(w, StyleTitle.Render(cfg.Name))
	printKeyValue(w, "id", cfg.ID)
	if cfg.Description != "" {
		printKeyValue(w, "description", cfg.Description)
	}
	printKeyValue(w, "viewport", fmt.Sprintf("%gx%g", cfg.Viewport.Width, cfg.Viewport.Height))
	grid := "off"
	if cfg.Grid.Enabled {
		grid = fmt.Sprintf("%gpx", cfg.Grid.Size)
	}
	printKeyValue(w, "grid", grid)
	printKeyValue(w, "updated", cfg.UpdatedAt.Format(time.RFC3339))
	printKeyValue(w, "panels", strconv.Itoa(len(cfg.Panels)))
	for _, p := range cfg.Panels {
		hidden := ""
		if !p.Visible {
			hidden = " hidden"
		}
		printDetail(w, "%s %s at %g,%g size %gx%g z%d%s",
			p.ID, p.Kind, p.Position.X, p.Position.Y, p.Size.Width, p.Size.Height, p.ZIndex, hidden)
	}
}

func (c *CLI) workspaceDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a saved workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return c.withWorkspaces(ctx, func(m *workspace.Manager) error {
				cfg, err := findWorkspace(m, args[0])
				if err != nil {
					return err
				}
				if err := m.Delete(ctx, cfg.ID); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Deleted workspace %s", cfg.Name)
				return nil
			})
		},
	}
}

func (c *CLI) workspaceExportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <id|name>",
		Short: "Write a workspace as TOML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withWorkspaces(cmd.Context(), func(m *workspace.Manager) error {
				cfg, err := findWorkspace(m, args[0])
				if err != nil {
					return err
				}
				if output == "" || output == "-" {
					return workspace.ExportTOML(cmd.OutOrStdout(), cfg)
				}
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				if err := workspace.ExportTOML(f, cfg); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("close %s: %w", output, err)
				}
				printSuccess(cmd.OutOrStdout(), "Exported workspace %s", cfg.Name)
				printFile(cmd.OutOrStdout(), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func (c *CLI) workspaceImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a workspace from a TOML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()

			cfg, err := workspace.ImportTOML(f)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			return c.withWorkspaces(ctx, func(m *workspace.Manager) error {
				if existing, ok := m.Get(cfg.ID); ok && cfg.ID != "" {
					printWarning(cmd.OutOrStdout(), "Replacing workspace %s", existing.Name)
				}
				saved, err := m.Import(ctx, cfg)
				if err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Imported workspace %s", saved.Name)
				printDetail(cmd.OutOrStdout(), "%s, %d panels", saved.ID, len(saved.Panels))
				return nil
			})
		},
	}
}

// formatRelativeTime returns a human-friendly relative time string.
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	case d < 24*time.Hour:
		hours := int(d.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case d < 30*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "yesterday"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("Jan 2, 2006")
	}
}
