// Copyright 2026 The Gitea Authors. All rights reserved.
// SPDX-License-Identifier: MIT

package cmd

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"

	"code.gitea.io/sessionvars/modules/json"
	session_module "code.gitea.io/sessionvars/modules/session"
	"code.gitea.io/sessionvars/modules/setting"
	"code.gitea.io/sessionvars/modules/util"

	"github.com/gobwas/glob"
	"github.com/urfave/cli/v3"
)

// newVariablesProvider is replaced in tests
var newVariablesProvider = session_module.NewProviderFromSetting

func idFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "id",
		Usage:    "ID of the session",
		Required: true,
	}
}

func cmdVars() *cli.Command {
	return &cli.Command{
		Name:  "vars",
		Usage: "Inspect and change the variables of a stored session",
		Description: `The variables must be kept outside of the go-chi session, [session] VARIABLES_STORAGE must be "redis" or "cache" with the memcache adapter.`,
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List the variables of a session",
				Flags: []cli.Flag{
					idFlag(),
					&cli.StringFlag{
						Name:  "match",
						Usage: "Only list the variables whose name matches the glob pattern, '.' separates name segments",
					},
				},
				Action: runVarsList,
			},
			{
				Name:      "get",
				Usage:     "Print the JSON value of a variable",
				ArgsUsage: "<name>",
				Flags:     []cli.Flag{idFlag()},
				Action:    runVarsGet,
			},
			{
				Name:      "set",
				Usage:     "Set a variable, the value is parsed as JSON and kept as a string if it is not valid JSON",
				ArgsUsage: "<name> <value>",
				Flags:     []cli.Flag{idFlag()},
				Action:    runVarsSet,
			},
			{
				Name:      "rm",
				Usage:     "Remove a variable",
				ArgsUsage: "<name>",
				Flags:     []cli.Flag{idFlag()},
				Action:    runVarsRemove,
			},
			{
				Name:   "clear",
				Usage:  "Remove all variables but keep the session",
				Flags:  []cli.Flag{idFlag()},
				Action: runVarsClear,
			},
			{
				Name:   "destroy",
				Usage:  "Destroy the session",
				Flags:  []cli.Flag{idFlag()},
				Action: runVarsDestroy,
			},
		},
	}
}

// inProcessStorage reports whether the configured variables storage only lives
// inside the web process, a separate command would open an empty store of its own
func inProcessStorage() bool {
	switch setting.SessionConfig.VariablesStorage {
	case setting.VariablesStorageMemory:
		return true
	case setting.VariablesStorageCache:
		return setting.SessionConfig.VariablesCacheAdapter == "memory"
	}
	return false
}

func openVariableStore(ctx context.Context, cmd *cli.Command) (*session_module.VariableStore, error) {
	if inProcessStorage() {
		return nil, util.NewInvalidArgumentErrorf("session variables kept in %q storage only live inside the web process, set [session] VARIABLES_STORAGE to redis or a memcache cache in %s",
			setting.SessionConfig.VariablesStorage, setting.CustomConf)
	}
	provider, err := newVariablesProvider(ctx)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, util.NewInvalidArgumentErrorf("session variables are kept in the go-chi session, set [session] VARIABLES_STORAGE in %s", setting.CustomConf)
	}
	backend, err := provider.Open(cmd.String("id"))
	if err != nil {
		return nil, err
	}
	return session_module.NewVariableStore(backend)
}

func argName(cmd *cli.Command) (string, error) {
	name := cmd.Args().First()
	if name == "" {
		return "", errors.New("a variable name is required")
	}
	return name, nil
}

func runVarsList(ctx context.Context, cmd *cli.Command) error {
	store, err := openVariableStore(ctx, cmd)
	if err != nil {
		return err
	}
	var matcher glob.Glob
	if pattern := cmd.String("match"); pattern != "" {
		if matcher, err = glob.Compile(pattern, '.'); err != nil {
			return util.NewInvalidArgumentErrorf("invalid --match pattern %q: %v", pattern, err)
		}
	}
	variables := store.GetAllVariables()
	for _, name := range slices.Sorted(maps.Keys(variables)) {
		if matcher != nil && !matcher.Match(name) {
			continue
		}
		value, err := json.Marshal(variables[name])
		if err != nil {
			return fmt.Errorf("unable to encode %q: %w", name, err)
		}
		_, _ = fmt.Fprintf(cmd.Root().Writer, "%s=%s\n", name, value)
	}
	return nil
}

func runVarsGet(ctx context.Context, cmd *cli.Command) error {
	name, err := argName(cmd)
	if err != nil {
		return err
	}
	store, err := openVariableStore(ctx, cmd)
	if err != nil {
		return err
	}
	value, ok := store.GetVariable(name).Get()
	if !ok {
		return util.NewNotExistErrorf("session variable %q is not set", name)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.Root().Writer, string(data))
	return nil
}

func runVarsSet(ctx context.Context, cmd *cli.Command) error {
	name, err := argName(cmd)
	if err != nil {
		return err
	}
	if cmd.Args().Len() != 2 {
		return errors.New("usage: vars set --id <id> <name> <value>")
	}
	raw := cmd.Args().Get(1)
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}
	store, err := openVariableStore(ctx, cmd)
	if err != nil {
		return err
	}
	return store.SetVariable(name, value)
}

func runVarsRemove(ctx context.Context, cmd *cli.Command) error {
	name, err := argName(cmd)
	if err != nil {
		return err
	}
	store, err := openVariableStore(ctx, cmd)
	if err != nil {
		return err
	}
	return store.RemoveVariable(name)
}

func runVarsClear(ctx context.Context, cmd *cli.Command) error {
	store, err := openVariableStore(ctx, cmd)
	if err != nil {
		return err
	}
	return store.RemoveAllVariables()
}

func runVarsDestroy(ctx context.Context, cmd *cli.Command) error {
	store, err := openVariableStore(ctx, cmd)
	if err != nil {
		return err
	}
	return store.DestroySession()
}
