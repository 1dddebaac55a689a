package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var connectionCmd = &cobra.Command{
	Use:   "connection",
	Short: "Manage the stored Confluence connection",
	Long: `The stored connection is a named set of credential values kept in the local
database. Environment variables take precedence over it; the [atlassian]
config section is the fallback.`,
}

var connectionSetCmd = &cobra.Command{
	Use:   "set KEY=VALUE...",
	Short: "Store credential values (an empty value removes the key)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConnectionSet,
}

var connectionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored values with the token masked",
	Args:  cobra.NoArgs,
	RunE:  runConnectionShow,
}

var connectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored connections, marking the one in use",
	Args:  cobra.NoArgs,
	RunE:  runConnectionList,
}

var connectionDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the stored connection",
	Args:  cobra.NoArgs,
	RunE:  runConnectionDelete,
}

func init() {
	connectionCmd.AddCommand(connectionSetCmd, connectionShowCmd, connectionListCmd, connectionDeleteCmd)
}

func runConnectionSet(cmd *cobra.Command, args []string) error {
	values, err := parseAssignments(args)
	if err != nil {
		return err
	}

	if err := application.Connections.Set(cmd.Context(), values); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Updated connection '%s' (%d key(s))\n", application.Connections.Name(), len(values))
	return nil
}

func runConnectionShow(cmd *cobra.Command, args []string) error {
	lines, err := application.Connections.Show(cmd.Context())
	if err != nil {
		return err
	}

	if len(lines) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Connection '%s' has no stored values\n", application.Connections.Name())
		return nil
	}

	values := make(map[string]string, len(lines))
	for _, line := range lines {
		key, value, _ := strings.Cut(line, "=")
		values[key] = value
	}
	return printResult(cmd, values, strings.Join(lines, "\n"))
}

func runConnectionList(cmd *cobra.Command, args []string) error {
	names, err := application.Connections.List(cmd.Context())
	if err != nil {
		return err
	}

	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No stored connections")
		return nil
	}

	lines := make([]string, 0, len(names))
	for _, name := range names {
		marker := "  "
		if name == application.Connections.Name() {
			marker = "* "
		}
		lines = append(lines, marker+name)
	}
	return printResult(cmd, names, strings.Join(lines, "\n"))
}

func runConnectionDelete(cmd *cobra.Command, args []string) error {
	if err := application.Connections.Delete(cmd.Context()); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted connection '%s'\n", application.Connections.Name())
	return nil
}

// parseAssignments parses KEY=VALUE arguments
func parseAssignments(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q (expected KEY=VALUE)", arg)
		}
		values[key] = value
	}
	return values, nil
}
