package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"taskdesk/pkg/commands"
)

// Args represents parsed command line arguments
type Args struct {
	ConfigPath string
	Verbose    bool
	APIURL     string

	// Session operations
	Login    string
	Register string
	NameFlag string
	Logout   bool
	Whoami   bool

	// Task operations
	AddTask    string
	DescFlag   string
	StatusFlag string
	DateFlag   string
	List       bool
	BeforeFlag string
	DeleteID   int64
	YesFlag    bool

	// Import/Export operations
	ImportFile string
	ExportFile string
	TypeFlag   string

	// Flags is kept so configuration can bind to it
	Flags *pflag.FlagSet
}

// ParseArgs parses command line arguments and returns Args struct
func ParseArgs() *Args {
	args, err := parseArgs(pflag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Printf("Error parsing arguments: %v\n", err)
		os.Exit(2)
	}
	return args
}

func parseArgs(flags *pflag.FlagSet, argv []string) (*Args, error) {
	args := &Args{Flags: flags}

	flags.StringVar(&args.ConfigPath, "config", "", "Path to configuration file")
	flags.BoolVar(&args.Verbose, "verbose", false, "Enable verbose logging")
	flags.StringVar(&args.APIURL, "api-url", "", "Backend base URL (e.g. http://localhost:3010/api/v1)")
	flags.String("storage", "", "Path to the local storage file")
	flags.String("log-file", "", "Path to the debug log file")

	// Session operations
	flags.StringVar(&args.Login, "login", "", "Log in as USER (password is read from stdin)")
	flags.StringVar(&args.Register, "register", "", "Register USER (password is read from stdin)")
	flags.StringVar(&args.NameFlag, "name", "", "Display name for --register")
	flags.BoolVar(&args.Logout, "logout", false, "Forget the stored credential")
	flags.BoolVar(&args.Whoami, "whoami", false, "Show the logged in user")

	// Task operations
	flags.StringVar(&args.AddTask, "add", "", "Add a new task")
	flags.StringVar(&args.DescFlag, "desc", "", "Description for --add")
	flags.StringVar(&args.StatusFlag, "status", "", "Status for --add, filter for --list (To Do, In Progress, Done)")
	flags.StringVar(&args.DateFlag, "date", "", "Deadline for --add (YYYY-MM-DD format)")
	flags.BoolVar(&args.List, "list", false, "List tasks")
	flags.StringVar(&args.BeforeFlag, "before", "", "Only list tasks due on or before this date (YYYY-MM-DD)")
	flags.Int64Var(&args.DeleteID, "delete", 0, "Delete the task with this ID")
	flags.BoolVar(&args.YesFlag, "yes", false, "Skip confirmation")

	// Import/Export operations
	flags.StringVar(&args.ImportFile, "import", "", "Import tasks from file")
	flags.StringVar(&args.ExportFile, "export", "", "Export tasks to file")
	flags.StringVar(&args.TypeFlag, "type", "json", "Export file type (json, txt)")

	if err := flags.Parse(argv); err != nil {
		return nil, err
	}
	return args, nil
}

// HandleCommands processes CLI commands and returns true if a command was handled
func HandleCommands(ctx context.Context, app *commands.App, args *Args) bool {
	handled, err := dispatch(ctx, app, args)
	if !handled {
		return false
	}
	if err != nil {
		fmt.Fprintf(app.Err, "Error: %v\n", err)
		os.Exit(1)
	}
	return true
}

func dispatch(ctx context.Context, app *commands.App, args *Args) (bool, error) {
	switch {
	case args.Login != "":
		return true, commands.HandleLogin(ctx, app, args.Login)
	case args.Register != "":
		return true, commands.HandleRegister(ctx, app, args.Register, args.NameFlag)
	case args.Logout:
		return true, commands.HandleLogout(app)
	case args.Whoami:
		return true, commands.HandleWhoami(ctx, app)
	case args.AddTask != "":
		return true, commands.HandleAddTask(ctx, app, args.AddTask, args.DescFlag, args.StatusFlag, args.DateFlag)
	case args.List:
		return true, commands.HandleListTasks(ctx, app, args.StatusFlag, args.BeforeFlag)
	case args.DeleteID != 0:
		return true, commands.HandleDeleteTask(ctx, app, args.DeleteID, args.YesFlag)
	case args.ImportFile != "":
		return true, commands.HandleImportCommand(ctx, app, args.ImportFile)
	case args.ExportFile != "":
		return true, commands.HandleExportCommand(ctx, app, args.ExportFile, args.TypeFlag)
	}

	// No CLI command was handled
	return false, nil
}
