package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"taskList/internal/app"
	"taskList/internal/models/task"
	"taskList/internal/service"
	"taskList/internal/view"

	"github.com/spf13/cobra"
)

func (r *RootCommand) serveCommand() *cobra.Command {
	run := func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := app.New(r.config).Init(ctx)
		if err != nil {
			return err
		}
		defer a.Shutdown()
		return a.Run(ctx)
	}
	r.cmd.RunE = run

	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web page, JSON API and overdue worker",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
}

func (r *RootCommand) addCommand() *cobra.Command {
	var deadline, priority string

	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Add a pending task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := task.ParsePriority(priority)
			if err != nil {
				return err
			}
			loc, err := r.config.Location()
			if err != nil {
				return err
			}
			d, err := task.ParseDeadlineIn(deadline, loc)
			if err != nil {
				return err
			}

			return r.withService(cmd.Context(), func(svc *service.TaskService) error {
				created, err := svc.AddTask(cmd.Context(), args[0], d, p)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %d\n", created.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&deadline, "deadline", "d", "", "Deadline, 2006-01-02T15:04 or RFC 3339 (required)")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(task.PriorityMedium), "Priority: low, medium or high")
	_ = cmd.MarkFlagRequired("deadline")
	return cmd
}

func (r *RootCommand) listCommand() *cobra.Command {
	var filter, sort string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show pending tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []service.ViewOption
			if filter != "" {
				f, err := task.ParseFilter(filter)
				if err != nil {
					return err
				}
				opts = append(opts, service.WithFilter(f))
			}
			if sort != "" {
				m, err := task.ParseSortMode(sort)
				if err != nil {
					return err
				}
				opts = append(opts, service.WithSort(m))
			}

			return r.withService(cmd.Context(), func(svc *service.TaskService) error {
				snap := svc.Snapshot(opts...)
				return r.printPending(cmd.OutOrStdout(), snap)
			})
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Priority filter: all, low, medium or high")
	cmd.Flags().StringVar(&sort, "sort", "", "deadlineAsc, deadlineDesc, priorityAsc or priorityDesc")
	return cmd
}

func (r *RootCommand) completeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Move a pending task to the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.mutate(cmd, args[0], "completed", func(svc *service.TaskService) func(context.Context, int64) (bool, error) {
				return svc.CompleteTask
			})
		},
	}
}

func (r *RootCommand) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a pending task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.mutate(cmd, args[0], "deleted", func(svc *service.TaskService) func(context.Context, int64) (bool, error) {
				return svc.DeletePending
			})
		},
	}
}

func (r *RootCommand) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show completed tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withService(cmd.Context(), func(svc *service.TaskService) error {
				return r.printHistory(cmd.OutOrStdout(), svc.Snapshot())
			})
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task from the history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.mutate(cmd, args[0], "deleted", func(svc *service.TaskService) func(context.Context, int64) (bool, error) {
				return svc.DeleteFromHistory
			})
		},
	})
	return cmd
}

func (r *RootCommand) summaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show completed, pending and overdue counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withService(cmd.Context(), func(svc *service.TaskService) error {
				s := svc.Summary()
				fmt.Fprintf(cmd.OutOrStdout(), "completed: %d\npending: %d\noverdue: %d\n", s.Completed, s.Pending, s.Overdue)
				return nil
			})
		},
	}
}

// mutate: неизвестный id - не ошибка, просто сообщаем, что ничего не изменилось
func (r *RootCommand) mutate(cmd *cobra.Command, rawID, verb string,
	pick func(*service.TaskService) func(context.Context, int64) (bool, error)) error {

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("неверный id %q", rawID)
	}

	return r.withService(cmd.Context(), func(svc *service.TaskService) error {
		changed, err := pick(svc)(cmd.Context(), id)
		if err != nil {
			return err
		}
		if changed {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", verb, id)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "no task %d\n", id)
		}
		return nil
	})
}

func (r *RootCommand) formatter() view.Formatter {
	loc, err := r.config.Location()
	if err != nil {
		loc = nil
	}
	return view.NewFormatter(r.config.View.Locale, loc)
}

func (r *RootCommand) printPending(out io.Writer, snap service.Snapshot) error {
	if len(snap.Pending) == 0 {
		_, err := fmt.Fprintln(out, "No pending tasks")
		return err
	}

	f := r.formatter()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDESCRIPTION\tDEADLINE\tPRIORITY\t")
	for _, t := range snap.Pending {
		mark := ""
		if t.IsOverdue(snap.Now) {
			mark = "overdue"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Description, f.DateTime(t.Deadline), f.Priority(t.Priority), mark)
	}
	return w.Flush()
}

func (r *RootCommand) printHistory(out io.Writer, snap service.Snapshot) error {
	if len(snap.History) == 0 {
		_, err := fmt.Fprintln(out, "No completed tasks")
		return err
	}

	f := r.formatter()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDESCRIPTION\tDEADLINE\tCOMPLETED\t")
	for _, t := range snap.History {
		completedAt := ""
		if t.CompletedAt != nil {
			completedAt = f.DateTime(*t.CompletedAt)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t\n", t.ID, t.Description, f.DateTime(t.Deadline), completedAt)
	}
	return w.Flush()
}
