package setup

import (
	"flag"
	"fmt"
	"io"
	"os"
)

const usage = `Case Dashboard MCP Setup

Usage:
  mcp-server setup <command> [options]

Commands:
  install   Register the MCP server with the desktop client
  remove    Remove the registration
  status    Show the current registration

Options for install:
  -binary string    server binary (defaults to this executable)
  -config string    client configuration file (defaults to the platform location)
  -source-kind      data source kind: http, file, sqlite or postgres
  -source-url       CSV export URL for the http source
  -source-path      CSV or SQLite file for the file and sqlite sources
`

// CLI runs setup commands, writing human readable output to Out
type CLI struct {
	Out io.Writer
}

// RunCLI runs a setup command against stdout
func RunCLI(args []string) error {
	return (&CLI{Out: os.Stdout}).Run(args)
}

// Run dispatches args[0]
func (c *CLI) Run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.Out, usage)
		return nil
	}

	switch args[0] {
	case "install":
		return c.install(args[1:])
	case "remove":
		return c.remove(args[1:])
	case "status":
		return c.status(args[1:])
	case "help", "--help", "-h":
		fmt.Fprint(c.Out, usage)
		return nil
	default:
		fmt.Fprint(c.Out, usage)
		return fmt.Errorf("unknown setup command: %s", args[0])
	}
}

func (c *CLI) install(args []string) error {
	var opts Options
	fs := flag.NewFlagSet("install", flag.ContinueOnError)
	fs.SetOutput(c.Out)
	fs.StringVar(&opts.BinaryPath, "binary", "", "server binary")
	fs.StringVar(&opts.ConfigPath, "config", "", "client configuration file")
	fs.StringVar(&opts.SourceKind, "source-kind", "", "data source kind")
	fs.StringVar(&opts.SourceURL, "source-url", "", "CSV export URL")
	fs.StringVar(&opts.SourcePath, "source-path", "", "CSV or SQLite file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if opts.BinaryPath == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locating executable: %w", err)
		}
		opts.BinaryPath = exe
	}

	path, err := Configure(opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Out, "Registered %s in %s\n", ServerName, path)
	fmt.Fprintln(c.Out, "Restart the desktop client to load the new configuration.")
	return nil
}

func (c *CLI) remove(args []string) error {
	path, err := c.configPath("remove", args)
	if err != nil {
		return err
	}

	removed, err := Remove(path)
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintf(c.Out, "Removed %s from %s\n", ServerName, path)
	} else {
		fmt.Fprintf(c.Out, "%s was not registered in %s\n", ServerName, path)
	}
	return nil
}

func (c *CLI) status(args []string) error {
	path, err := c.configPath("status", args)
	if err != nil {
		return err
	}

	status, err := GetStatus(path)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.Out, "Client config: %s\n", status.ConfigPath)
	if status.Configured {
		fmt.Fprintf(c.Out, "Registered:    yes\nBinary:        %s\n", status.Entry.Command)
		for _, k := range envKeys(status.Entry.Env) {
			fmt.Fprintf(c.Out, "  %s=%s\n", k, status.Entry.Env[k])
		}
	} else {
		fmt.Fprintln(c.Out, "Registered:    no")
	}
	for _, issue := range status.Issues {
		fmt.Fprintf(c.Out, "Issue: %s\n", issue)
	}
	return nil
}

func (c *CLI) configPath(name string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.Out)
	path := fs.String("config", "", "client configuration file")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if *path != "" {
		return *path, nil
	}
	return DefaultClientConfigPath()
}
