// ABOUTME: Entry point for the sales CRM terminal client
// ABOUTME: Routes to the TUI, MCP server or CLI commands based on arguments
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/harperreed/salescrm/api"
	"github.com/harperreed/salescrm/cli"
	"github.com/harperreed/salescrm/config"
	"github.com/harperreed/salescrm/logging"
	"github.com/harperreed/salescrm/query"
	"github.com/harperreed/salescrm/session"
)

const version = "0.2.0"

// commands that work without reaching the backend first
var offline = map[string]bool{
	"login":    true,
	"logout":   true,
	"register": true,
}

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	configPath := flag.String("config", "", "Config file (default: ~/.config/salescrm/config.yaml)")
	apiURL := flag.String("api-url", "", "Backend URL, overrides the config file")

	// Parse global flags; the rest belongs to the subcommand
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("salescrm version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}
	command := args[0]
	commandArgs := args[1:]

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(err)
	}
	// config commands persist settings, so they never see the override
	if *apiURL != "" && command != "config" {
		if err := cfg.SetAPIURL(*apiURL); err != nil {
			fatal(err)
		}
	}

	// The TUI and MCP server own stdio, so they log to a file.
	var logOut io.Writer = os.Stderr
	if command == "tui" || command == "mcp" {
		path := cfg.LogFile
		if path == "" {
			path = config.DefaultLogPath()
		}
		f, err := logging.OpenFile(path)
		if err != nil {
			fatal(err)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := logging.New(logOut, cfg.LogLevel)
	if err != nil {
		fatal(err)
	}

	client := api.NewClient(api.Options{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Burst:     cfg.Burst,
		Logger:    logger,
	})
	store, err := session.NewStore(cfg.TokenStore, "")
	if err != nil {
		fatal(err)
	}
	sess := session.New(client, store, logger)
	if command != "config" {
		if err := sess.Init(context.Background()); err != nil {
			if !offline[command] {
				fatal(err)
			}
			logger.Warn("could not restore session", "err", err)
		}
	}

	env := &cli.Env{
		Config:  cfg,
		Session: sess,
		Cache:   query.NewCache(),
		Logger:  logger,
		Version: version,
		Out:     os.Stdout,
		In:      os.Stdin,
	}

	switch command {
	case "tui":
		err = cli.TUICommand(env)
	case "mcp":
		err = cli.MCPCommand(env)
	case "web":
		err = cli.WebCommand(env, commandArgs)

	// Record commands
	case "list":
		err = cli.ListCommand(env, commandArgs)
	case "get":
		err = cli.GetCommand(env, commandArgs)
	case "fields":
		err = cli.FieldsCommand(env, commandArgs)
	case "create":
		err = cli.CreateCommand(env, commandArgs)
	case "update":
		err = cli.UpdateCommand(env, commandArgs)
	case "delete":
		err = cli.DeleteCommand(env, commandArgs)
	case "dashboard":
		err = cli.DashboardCommand(env, commandArgs)

	// Account commands
	case "login":
		err = cli.LoginCommand(env, commandArgs)
	case "logout":
		err = cli.LogoutCommand(env, commandArgs)
	case "whoami":
		err = cli.WhoamiCommand(env, commandArgs)
	case "register":
		err = cli.RegisterCommand(env, commandArgs)
	case "org":
		err = cli.OrgCommand(env, commandArgs)
	case "profile":
		err = cli.ProfileCommand(env, commandArgs)
	case "password":
		err = cli.PasswordCommand(env, commandArgs)

	case "config":
		err = cli.ConfigCommand(env, commandArgs)

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		logger.Debug("command failed", "command", command, "err", err)
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Printf(`salescrm v%s - Sales CRM terminal client

USAGE:
  salescrm [global flags] <command> [arguments] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --config <path>        Config file (default: ~/.config/salescrm/config.yaml)
  --api-url <url>        Backend URL (default: http://localhost:8000)

COMMANDS:
  tui                    Interactive terminal UI
  mcp                    Start MCP server for Claude Desktop
  web                    Read-only browser view
    --port <n>             Port to listen on (default: 8080)

ENTITIES:
  leads, opportunities, accounts, contacts, products, quotes, tasks,
  interactions, customers (singular names work too)

RECORD COMMANDS:
  salescrm list <entity>          List one page of records
    --search <text>                 Search term
    --page <n>                      Page number (default: 1)

  salescrm get <entity> <id>      Show every field of a record

  salescrm fields <entity>        Show the fields accepted by --set

  salescrm create <entity>        Create a record
    --set key=value                 Field value (repeatable)

  salescrm update <entity> <id>   Change only the given fields
    --set key=value                 Field value (repeatable)

  salescrm delete <entity> <id>   Delete a record
    --yes                           Do not ask for confirmation

  salescrm dashboard              Pipeline summary and recent activity
    --refresh                       Ignore cached pages

ACCOUNT COMMANDS:
  salescrm login                  Sign in (password is prompted)
    --username <email>              Email address
  salescrm logout                 Sign out and forget stored tokens
  salescrm whoami                 Show the signed-in user
  salescrm register               Create an account
    --email, --first-name, --last-name, --org, --org-description
  salescrm org create             Create your organization
    --name <name>, --description <text>
  salescrm profile                Change your name
    --first-name, --last-name
  salescrm password               Change your password

CONFIG COMMANDS:
  salescrm config show            Show effective settings
  salescrm config get <key>       Show one setting
  salescrm config set <key> <v>   Save one setting
  salescrm config path            Show the config file path

EXAMPLES:
  # Sign in and browse leads
  salescrm login --username ada@example.com
  salescrm list leads --search acme

  # Create a lead
  salescrm create leads --set name="Jane Doe" --set email=jane@acme.com

  # Move an opportunity forward
  salescrm update opportunities 12 --set stage=negotiation

`, version)
}
