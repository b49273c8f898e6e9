// Copyright 2023 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"code.gitea.io/sessionvars/modules/log"
	"code.gitea.io/sessionvars/modules/setting"

	"github.com/urfave/cli/v3"
)

// cmdHelp is our own help subcommand with more information
// Keep in mind that the "./sessionvars help"(subcommand) is different from "./sessionvars --help"(flag), the flag doesn't parse the config or output "DEFAULT CONFIGURATION:" information
func cmdHelp() *cli.Command {
	c := &cli.Command{
		Name:      "help",
		Aliases:   []string{"h"},
		Usage:     "Shows a list of commands or help for one command",
		ArgsUsage: "[command]",
		Action: func(ctx context.Context, c *cli.Command) (err error) {
			if !c.Args().Present() {
				err = cli.ShowAppHelp(c.Root())
			} else {
				err = cli.ShowCommandHelp(ctx, c.Root(), c.Args().First())
			}
			if err == nil {
				_, _ = fmt.Fprintf(c.Root().Writer, `
DEFAULT CONFIGURATION:
   ConfigFile:       %s
   VariablesStorage: %s

`, setting.CustomConf, setting.SessionConfig.VariablesStorage)
			}
			return err
		},
	}
	return c
}

func appGlobalFlags() []cli.Flag {
	return []cli.Flag{
		// make the builtin flags at the top
		cli.HelpFlag,

		// shared configuration flags, they are for global and for each sub-command at the same time
		// eg: such command is valid: "./sessionvars --config /tmp/app.ini web --config /tmp/app.ini", while it's discouraged indeed
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Value:   setting.CustomConf,
			Usage:   "Set custom config file (defaults to 'custom/conf/app.ini')",
		},
	}
}

func prepareSubcommandWithGlobalFlags(command *cli.Command) {
	command.Flags = slices.Concat(appGlobalFlags(), command.Flags)
	command.Before = prepareCustomConf()
}

// prepareCustomConf loads the config file given by the nearest --config flag
func prepareCustomConf() cli.BeforeFunc {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		customConf := setting.CustomConf
		// from children to parent, check the global flags
		for _, curCtx := range cmd.Lineage() {
			if curCtx.IsSet("config") {
				customConf = curCtx.String("config")
				break
			}
		}
		if err := setting.InitCfgProvider(customConf); err != nil {
			return ctx, fmt.Errorf("unable to load config %q: %w", customConf, err)
		}
		// the command line flags win over the [log] section
		applyLoggerFlags(cmd.Root())
		return ctx, nil
	}
}

func applyLoggerFlags(root *cli.Command) {
	if root.Bool("quiet") {
		log.GetLogger().SetLevel(log.FATAL)
	}
	if root.Bool("debug") {
		log.GetLogger().SetLevel(log.DEBUG)
	}
}

// PrepareConsoleLoggerLevel sets the level of the default logger before the config is loaded
func PrepareConsoleLoggerLevel(defaultLevel log.Level) cli.BeforeFunc {
	return func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		log.GetLogger().SetLevel(defaultLevel)
		applyLoggerFlags(cmd)
		return ctx, nil
	}
}

type AppVersion struct {
	Version string
	Extra   string
}

func NewMainApp(appVer AppVersion) *cli.Command {
	app := &cli.Command{}
	app.Name = "sessionvars" // must be lower-cased because it appears in the "USAGE" section
	app.Usage = "Session variables over HTTP sessions"
	app.Description = `sessionvars serves the variables of HTTP sessions with the "web" subcommand and inspects stored sessions with the "vars" subcommand. If no subcommand is given, it starts the web server by default.`
	app.Version = appVer.Version + appVer.Extra
	app.EnableShellCompletion = true

	// these sub-commands need to use config file
	subCmdWithConfig := []*cli.Command{
		cmdHelp(), // the "help" sub-command was used to show the more information for the custom config
		cmdWeb(),
		cmdVars(),
	}

	app.DefaultCommand = "web"

	app.Flags = append(app.Flags, cli.VersionFlag)
	app.Flags = append(app.Flags, appGlobalFlags()...)
	app.Flags = append(app.Flags,
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "Only log fatal errors"},
		&cli.BoolFlag{Name: "debug", Usage: "Log debug messages"},
	)
	app.Before = PrepareConsoleLoggerLevel(log.INFO)
	for i := range subCmdWithConfig {
		prepareSubcommandWithGlobalFlags(subCmdWithConfig[i])
	}
	app.Commands = append(app.Commands, subCmdWithConfig...)
	return app
}

func RunMainApp(app *cli.Command, args ...string) error {
	ctx, cancel := installSignals()
	defer cancel()
	err := app.Run(ctx, args)
	if err == nil {
		return nil
	}
	if strings.HasPrefix(err.Error(), "flag provided but not defined:") {
		// the cli package should already have output the error message, so just exit
		cli.OsExiter(1)
		return err
	}
	_, _ = fmt.Fprintf(app.ErrWriter, "Command error: %v\n", err)
	cli.OsExiter(1)
	return err
}

func installSignals() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
