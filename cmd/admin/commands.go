package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bunnystock/leaddesk/internal/auth"
	"github.com/bunnystock/leaddesk/internal/dashboard"
	"github.com/bunnystock/leaddesk/internal/dashboard/tui"
	"github.com/bunnystock/leaddesk/internal/entity"
	"github.com/bunnystock/leaddesk/internal/infra/database"
	"github.com/bunnystock/leaddesk/internal/infra/integration/leadapi"
	"github.com/bunnystock/leaddesk/internal/usecase"
)

const defaultTimeout = 15 * time.Second

func newClient() *leadapi.Client {
	return leadapi.NewClient(
		viper.GetString("api"),
		viper.GetString("api-key"),
		viper.GetString("origin"),
		nil,
	)
}

func location() *time.Location {
	loc, err := time.LoadLocation(viper.GetString("timezone"))
	if err != nil {
		return time.UTC
	}
	return loc
}

func contextWithTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	d := viper.GetDuration("timeout")
	if d <= 0 {
		d = defaultTimeout
	}
	return context.WithTimeout(ctx, d)
}

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive lead board",
		RunE: func(cmd *cobra.Command, args []string) error {
			m := tui.New(newClient(), tui.Options{
				Timeout:  viper.GetDuration("timeout"),
				Location: location(),
			})
			_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
			return err
		},
	}
}

func listCmd() *cobra.Command {
	var (
		p   leadapi.ListParams
		all bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List consultation requests, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := contextWithTimeout(cmd)
			defer cancel()

			client := newClient()
			var (
				out *leadapi.ListResponse
				err error
			)
			if all {
				out, err = client.ListAll(ctx, p)
			} else {
				out, err = client.List(ctx, p)
			}
			if err != nil {
				return err
			}

			if viper.GetBool("json") {
				return printJSON(os.Stdout, out)
			}
			if out.Degraded {
				fmt.Fprintln(os.Stderr, "warning: the server returned id-ordered results")
			}
			renderLeads(os.Stdout, out.Items, location())
			if out.NextPageToken != "" && !all {
				fmt.Printf("next page: --page-token %s\n", out.NextPageToken)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&p.Limit, "limit", 0, fmt.Sprintf("page size (server default %d, max %d)", usecase.AdminDefaultLimit, usecase.AdminMaxLimit))
	cmd.Flags().StringVar(&p.Status, "status", "", "status filter (new, in_progress, done)")
	cmd.Flags().StringVarP(&p.Query, "query", "q", "", "text search over name, email, phone, channel and message")
	cmd.Flags().StringVar(&p.Start, "start", "", "created at or after (RFC3339, YYYY-MM-DD or epoch ms)")
	cmd.Flags().StringVar(&p.End, "end", "", "created before (RFC3339, YYYY-MM-DD or epoch ms)")
	cmd.Flags().StringVar(&p.PageToken, "page-token", "", "continue from a previous page")
	cmd.Flags().BoolVar(&all, "all", false, "follow page tokens until the end")
	return cmd
}

func setStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <id> <new|in_progress|done>",
		Short: "Change the workflow status of a lead",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := entity.ParseStatus(args[1])
			if err != nil {
				return err
			}
			ctx, cancel := contextWithTimeout(cmd)
			defer cancel()

			if err := newClient().UpdateStatus(ctx, args[0], string(status)); err != nil {
				if leadapi.IsCode(err, "forbidden") {
					return fmt.Errorf("%w (set --origin or ADMIN_ORIGIN to the admin origin)", err)
				}
				return err
			}
			fmt.Printf("%s → %s\n", args[0], dashboard.StatusLabel(status))
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	var dsn string
	cmd := &cobra.Command{
		Use:       "migrate <up|down>",
		Short:     "Apply or roll back the lead schema",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if dsn == "" {
				dsn = os.Getenv("DATABASE_URL")
			}
			if dsn == "" {
				return fmt.Errorf("--database-url or DATABASE_URL required")
			}
			if err := database.Migrate(dsn, args[0]); err != nil {
				return err
			}
			fmt.Printf("migrations %s: ok\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&dsn, "database-url", "", "postgres connection string")
	return cmd
}

func hashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Long:  "Hashes the argument, or the first line of stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pw string
			if len(args) == 1 {
				pw = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && err != io.EOF {
					return err
				}
				pw = line
			}
			if strings.TrimSpace(pw) == "" {
				return fmt.Errorf("password must not be empty")
			}
			h, err := auth.HashPassword(pw, cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", 0, "bcrypt cost (default 10)")
	return cmd
}

func renderLeads(w io.Writer, items []usecase.AdminLeadItem, loc *time.Location) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"ID", "Created", "Name", "Phone", "Email", "Channel", "Status", "Message"})
	for _, it := range items {
		tw.AppendRow(table.Row{
			it.ID,
			time.UnixMilli(it.CreatedAt).In(loc).Format("2006-01-02 15:04"),
			it.Name,
			it.Phone,
			it.Email,
			it.Channel,
			dashboard.StatusLabel(entity.Status(it.Status)),
			truncate(it.Message, 40),
		})
	}
	tw.AppendFooter(table.Row{"", "", "", "", "", "", "Total", len(items)})
	tw.Render()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
