// sparkysuppress manages a SparkPost customer suppression list from
// CSV files: validate a file, upload it, delete its entries from the
// provider, or download the provider's list into a file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/ignite/sparkpost-suppress/internal/config"
	"github.com/ignite/sparkpost-suppress/internal/pkg/logger"
	"github.com/ignite/sparkpost-suppress/internal/runner"
	"github.com/ignite/sparkpost-suppress/internal/sparkpost"
)

const (
	name  = "sparkysuppress"
	usage = "Manage a SparkPost customer suppression list from CSV files"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = name
	app.Usage = usage
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "path to the ini configuration file",
			Value: "sparkpost.ini",
		},
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "enable debug logging",
		},
	}
	app.Before = func(c *cli.Context) error {
		logger.Setup(os.Stderr, c.GlobalBool("verbose"))
		return nil
	}

	app.Commands = []cli.Command{
		{
			Name:      "check",
			Usage:     "Validate the format of a file without uploading it",
			ArgsUsage: "<file>",
			Action: func(c *cli.Context) error {
				cfg, path, err := setup(c, 1)
				if err != nil {
					return err
				}
				return runner.Check(cfg, path, newReporter())
			},
		},
		{
			Name:      "update",
			Usage:     "Upload file contents to the suppression list (also verifies as check does)",
			ArgsUsage: "<file>",
			Action: func(c *cli.Context) error {
				cfg, path, err := setup(c, 1)
				if err != nil {
					return err
				}
				return runner.Update(context.Background(), sparkpost.NewClient(cfg), cfg, path, newReporter())
			},
		},
		{
			Name:      "delete",
			Usage:     "Remove the file's entries from the suppression list",
			ArgsUsage: "<file>",
			Action: func(c *cli.Context) error {
				cfg, path, err := setup(c, 1)
				if err != nil {
					return err
				}
				return runner.Delete(context.Background(), sparkpost.NewClient(cfg), cfg, path, newReporter())
			},
		},
		{
			Name:      "retrieve",
			Usage:     "Download the suppression list into a file",
			ArgsUsage: "<file> [from_time to_time]  (format YYYY-MM-DDTHH:MM)",
			Action: func(c *cli.Context) error {
				nargs := c.NArg()
				if nargs != 1 && nargs != 3 {
					return fmt.Errorf("retrieve takes <file> or <file> <from_time> <to_time>")
				}
				cfg, path, err := setup(c, nargs)
				if err != nil {
					return err
				}
				from, to := c.Args().Get(1), c.Args().Get(2)
				return runner.Retrieve(context.Background(), sparkpost.NewClient(cfg), cfg, path, from, to, newReporter())
			},
		},
	}

	return app
}

// setup loads and validates configuration and checks argument count.
// Every command's first argument is the suppression file path.
func setup(c *cli.Context, nargs int) (config.Config, string, error) {
	if c.NArg() != nargs {
		return config.Config{}, "", fmt.Errorf("expected %d argument(s), got %d: see '%s %s --help'", nargs, c.NArg(), name, c.Command.Name)
	}

	cfg, err := config.LoadFromEnv(c.GlobalString("config"))
	if err != nil {
		return config.Config{}, "", err
	}

	log.WithFields(log.Fields{
		"run_id":  uuid.NewString(),
		"command": c.Command.Name,
		"file":    c.Args().First(),
		"host":    cfg.Host,
	}).Debug("starting run")

	return cfg, c.Args().First(), nil
}

func newReporter() *runner.Reporter {
	return runner.NewReporter(os.Stdout)
}
