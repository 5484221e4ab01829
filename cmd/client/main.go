// Command client is a cobra-based CLI for a running causal-kv node.
//
// Usage:
//
//	kvctl create A name=x           --server http://localhost:8001
//	kvctl update A name=y           --server http://localhost:8001
//	kvctl get A                     --server http://localhost:8001
//	kvctl list                      --server http://localhost:8001
//	kvctl log                       --server http://localhost:8001
//	kvctl queue                     --server http://localhost:8001
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"causalkv/internal/client"
)

var (
	serverAddr string
	timeout    time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "kvctl",
		Short: "CLI client for a causal-kv node",
	}

	root.PersistentFlags().StringVarP(&serverAddr, "server", "s",
		"http://localhost:8001", "node base URL")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second,
		"HTTP request timeout")

	root.AddCommand(createCmd(), updateCmd(), getCmd(), listCmd(), logCmd(), queueCmd(), healthCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <key> [field=value ...]",
		Short: "CREATE a record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			resp, err := c.Create(context.Background(), args[0], parseFields(args[1:]))
			if err != nil {
				return err
			}
			return prettyPrint(resp)
		},
	}
}

func updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <key> [field=value ...]",
		Short: "UPDATE a record",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			resp, err := c.Update(context.Background(), args[0], parseFields(args[1:]))
			if err != nil {
				return err
			}
			return prettyPrint(resp)
		},
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Retrieve a record by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			resp, err := c.Get(context.Background(), args[0])
			if err == client.ErrNotFound {
				fmt.Printf("key %q not found\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			return prettyPrint(resp)
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all records",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(serverAddr, timeout)
			resp, err := c.List(context.Background())
			if err != nil {
				return err
			}
			return prettyPrint(resp)
		},
	}
}

func logCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log",
		Short: "Show the node's operation log",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printRaw("/log")
		},
	}
}

func queueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show the node's hold-back queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printRaw("/queue")
		},
	}
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show the node's health snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printRaw("/health")
		},
	}
}

func printRaw(path string) error {
	c := client.New(serverAddr, timeout)
	resp, err := c.GetRaw(context.Background(), path)
	if err != nil {
		return err
	}
	fmt.Println(resp)
	return nil
}

// parseFields turns "name=x" "anio=3" pairs into a payload map.
func parseFields(args []string) map[string]any {
	fields := make(map[string]any, len(args))
	for _, a := range args {
		parts := strings.SplitN(a, "=", 2)
		if len(parts) != 2 {
			continue
		}
		fields[parts[0]] = parts[1]
	}
	return fields
}

func prettyPrint(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
