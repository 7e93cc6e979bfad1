package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"kvlite/internal/config"
	"kvlite/internal/storage"
)

const notFoundMessage = "Key not found"

func main() {
	app := &cli.App{
		Name:  "kvlite",
		Usage: "minimal log-structured key-value store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "directory containing the command log",
			},
			&cli.StringFlag{
				Name:  "config",
				Value: ".kvlite.yaml",
				Usage: "path to a YAML config file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "store <value> under <key>",
				ArgsUsage: "<key> <value>",
				Action:    setCmd,
			},
			{
				Name:      "get",
				Usage:     "print the value stored under <key>",
				ArgsUsage: "<key>",
				Action:    getCmd,
			},
			{
				Name:      "rm",
				Usage:     "remove <key>",
				ArgsUsage: "<key>",
				Action:    rmCmd,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore builds a store from the config file and command-line overrides.
func openStore(c *cli.Context) (*storage.Store, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if dir := c.String("dir"); dir != "" {
		cfg.Dir = dir
	}

	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	if c.Bool("verbose") {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	storeCfg := storage.DefaultConfig()
	storeCfg.CompactAfter = cfg.CompactAfter
	storeCfg.SyncWrites = cfg.SyncWrites
	storeCfg.Logger = logger

	return storage.Open(cfg.Dir, storeCfg)
}

func setCmd(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: kvlite set <key> <value>", 1)
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Set(c.Args().Get(0), c.Args().Get(1))
}

func getCmd(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: kvlite get <key>", 1)
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	value, ok, err := store.Get(c.Args().Get(0))
	if err != nil {
		return err
	}
	if !ok {
		// A missing key is a normal outcome for get: message, zero exit.
		fmt.Println(notFoundMessage)
		return nil
	}

	fmt.Println(value)
	return nil
}

func rmCmd(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: kvlite rm <key>", 1)
	}

	store, err := openStore(c)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Remove(c.Args().Get(0)); err != nil {
		if storage.IsKeyNotFound(err) {
			// Same message as get, but removal of a missing key is an
			// error exit.
			fmt.Println(notFoundMessage)
			return cli.Exit("", 1)
		}
		return err
	}
	return nil
}
