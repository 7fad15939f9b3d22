// Command ttbench is a host-side production test and field diagnostics
// tool: it opens the board's CLI UART from a PC and drives the same
// line-oriented command surface a terminal would, through a cobra
// subcommand tree instead of a raw terminal session.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ttcontrol/host/bench"
)

var device string

func main() {
	root := &cobra.Command{
		Use:   "ttbench",
		Short: "Bench tool for the turntable controller's CLI UART",
	}
	root.PersistentFlags().StringVar(&device, "device", "/dev/ttyACM0", "serial device path")

	root.AddCommand(
		statusCmd(),
		startCmd(),
		stopCmd(),
		speedCmd(),
		getCmd(),
		setCmd(),
		listCmd(),
		presetCmd(),
		errorCmd(),
		debugCmd(),
		runtimeCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(line string) error {
	c, err := bench.Open(device)
	if err != nil {
		return fmt.Errorf("open %s: %w", device, err)
	}
	defer c.Close()

	lines, err := c.Command(line)
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Println(l)
	}
	return nil
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print motor state, speed, frequency and pitch",
		RunE:  func(cmd *cobra.Command, args []string) error { return run("status") },
	}
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the motor",
		RunE:  func(cmd *cobra.Command, args []string) error { return run("start") },
	}
}

func stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the motor",
		RunE:  func(cmd *cobra.Command, args []string) error { return run("stop") },
	}
}

func speedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "speed <0|1|2>",
		Short: "Select speed 33/45/78 RPM directly",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return run("speed " + args[0]) },
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Read one setting",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return run("get " + args[0]) },
	}
}

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write one setting and persist it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run("set " + args[0] + " " + args[1])
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every setting key and value",
		RunE:  func(cmd *cobra.Command, args []string) error { return run("list") },
	}
}

func presetCmd() *cobra.Command {
	preset := &cobra.Command{
		Use:   "preset",
		Short: "Save, load, rename or duplicate a preset slot",
	}
	preset.AddCommand(
		&cobra.Command{
			Use:  "save <slot>",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error { return run("preset save " + args[0]) },
		},
		&cobra.Command{
			Use:  "load <slot>",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error { return run("preset load " + args[0]) },
		},
		&cobra.Command{
			Use:  "reset <slot>",
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error { return run("preset reset " + args[0]) },
		},
		&cobra.Command{
			Use:  "rename <slot> <name>",
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run("preset rename " + args[0] + " " + args[1])
			},
		},
		&cobra.Command{
			Use:  "dup <src> <dest>",
			Args: cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return run("preset dup " + args[0] + " " + args[1])
			},
		},
	)
	return preset
}

func errorCmd() *cobra.Command {
	errCmd := &cobra.Command{
		Use:   "error",
		Short: "Inspect or clear the board's error log",
	}
	errCmd.AddCommand(
		&cobra.Command{
			Use:  "dump",
			RunE: func(cmd *cobra.Command, args []string) error { return run("error dump") },
		},
		&cobra.Command{
			Use:  "clear",
			RunE: func(cmd *cobra.Command, args []string) error { return run("error clear") },
		},
	)
	return errCmd
}

func debugCmd() *cobra.Command {
	dbg := &cobra.Command{
		Use:   "debug",
		Short: "Toggle verbose logging or inspect the timing ring buffer",
	}
	dbg.AddCommand(
		&cobra.Command{
			Use:  "on",
			RunE: func(cmd *cobra.Command, args []string) error { return run("debug on") },
		},
		&cobra.Command{
			Use:  "off",
			RunE: func(cmd *cobra.Command, args []string) error { return run("debug off") },
		},
		&cobra.Command{
			Use:  "status",
			RunE: func(cmd *cobra.Command, args []string) error { return run("debug status") },
		},
		&cobra.Command{
			Use:  "dump",
			RunE: func(cmd *cobra.Command, args []string) error { return run("debug dump") },
		},
		&cobra.Command{
			Use:  "clear",
			RunE: func(cmd *cobra.Command, args []string) error { return run("debug clear") },
		},
	)
	return dbg
}

func runtimeCmd() *cobra.Command {
	rt := &cobra.Command{
		Use:   "runtime",
		Short: "Print session and total runtime, or reset the persisted total",
		RunE:  func(cmd *cobra.Command, args []string) error { return run("runtime") },
	}
	rt.AddCommand(
		&cobra.Command{
			Use:  "reset",
			RunE: func(cmd *cobra.Command, args []string) error { return run("runtime reset") },
		},
	)
	return rt
}
