package commands

import (
	"context"
	"fmt"

	"taskList/internal/app"
	"taskList/internal/config"
	"taskList/internal/logger"
	"taskList/internal/service"

	"github.com/spf13/cobra"
)

// RootCommand - корневая команда tasklist; без подкоманды запускает сервер
type RootCommand struct {
	cmd        *cobra.Command
	configPath string
	repoType   string
	verbose    bool
	config     *config.Config
}

func NewRootCommand() *RootCommand {
	root := &RootCommand{}

	root.cmd = &cobra.Command{
		Use:   "tasklist",
		Short: "Task list with deadlines, priorities and completion history",
		Long: `tasklist keeps pending tasks with a deadline and a priority, and a history
of completed tasks. It serves a web page and a JSON API, and the same list
can be managed from the command line.

EXAMPLES:
  tasklist serve                                      # Start the web server
  tasklist add "Write report" --deadline 2024-03-05T10:00 --priority high
  tasklist list --filter high --sort priorityAsc      # Pending tasks
  tasklist complete 1709287200000                     # Move a task to history
  tasklist history                                    # Completed tasks
  tasklist summary                                    # Counters

CONFIGURATION:
  Settings are read from config.yml and can be overridden with TASKLIST_*
  environment variables, e.g. TASKLIST_REPOSITORY_TYPE=sqlite.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.loadConfig()
		},
	}

	flags := root.cmd.PersistentFlags()
	flags.StringVarP(&root.configPath, "config", "c", "config.yml", "Path to the configuration file")
	flags.StringVar(&root.repoType, "repository", "", "Storage backend (overrides repository.type)")
	flags.BoolVarP(&root.verbose, "verbose", "v", false, "Log to stderr")

	root.cmd.AddCommand(
		root.serveCommand(),
		root.addCommand(),
		root.listCommand(),
		root.completeCommand(),
		root.deleteCommand(),
		root.historyCommand(),
		root.summaryCommand(),
	)

	return root
}

func (r *RootCommand) Execute(ctx context.Context) error {
	return r.cmd.ExecuteContext(ctx)
}

// Command нужен тестам для SetArgs/SetOut
func (r *RootCommand) Command() *cobra.Command {
	return r.cmd
}

func (r *RootCommand) loadConfig() error {
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return err
	}
	if r.repoType != "" {
		cfg.Repository.Type = r.repoType
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if r.verbose {
		if err := logger.Init(cfg.Logging.Development); err != nil {
			return fmt.Errorf("инициализация логгера: %w", err)
		}
	}
	r.config = cfg
	return nil
}

// withService открывает хранилище на время одной команды
func (r *RootCommand) withService(ctx context.Context, fn func(*service.TaskService) error) error {
	svc, closeStore, err := app.OpenService(ctx, r.config)
	if err != nil {
		return err
	}
	defer closeStore()
	defer logger.Sync()
	return fn(svc)
}
