package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"csvquery/adapters/excel"
	"csvquery/domain/dataset"
	"csvquery/internal/config"
	"csvquery/internal/container"
	"csvquery/internal/errors"
	"csvquery/internal/profiling"
	"csvquery/internal/session"

	"github.com/spf13/cobra"
)

func newOverviewCmd() *cobra.Command {
	var sections []string
	var previewRows int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "overview [file]",
		Short: "Print the data overview of a CSV or XLSX file",
		Long: `Load a table and print its shape, columns, preview rows, descriptive
statistics, missing values and inferred types.

Example: csvquery-cli overview people.csv --sections shape,statistics --preview 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := profiling.DefaultOptions()
			opts.PreviewRows = previewRows
			if len(sections) > 0 {
				parsed, err := profiling.ParseSections(sections)
				if err != nil {
					return err
				}
				opts.Sections = parsed
			}

			table, err := loadFile(args[0])
			if err != nil {
				return err
			}
			report := profiling.Summarize(table, opts)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			return printOverview(cmd.OutOrStdout(), filepath.Base(args[0]), report)
		},
	}

	cmd.Flags().StringSliceVar(&sections, "sections", nil, "Sections to print: shape,columns,preview,statistics,missing,types")
	cmd.Flags().IntVar(&previewRows, "preview", 5, "Number of preview rows")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	return cmd
}

func newAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [file] [question...]",
		Short: "Ask one question about a table",
		Long: `Load a table and send one question to the hosted agent.

Requires GROQ_API_KEY. LLM_MODEL, LLM_BASE_URL and AGENT_TIMEOUT are honoured.

Example: csvquery-cli ask people.csv "What is the average age?"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(args[0])
			if err != nil {
				return err
			}

			entry, err := sess.Ask(cmd.Context(), strings.Join(args[1:], " "))
			if err != nil {
				return fmt.Errorf("%s", errors.UserMessage(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), entry.Answer)
			return nil
		},
	}
	return cmd
}

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [file]",
		Short: "Ask questions about a table interactively",
		Long: `Load a table and read questions from standard input, one per line.
Failed questions are reported and the session continues. An empty line is ignored;
"exit" or end of input quits.

Example: csvquery-cli chat people.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(args[0])
			if err != nil {
				return err
			}
			return runChat(cmd, sess, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	return cmd
}

func runChat(cmd *cobra.Command, sess *session.Session, in io.Reader, out io.Writer) error {
	table := sess.Table()
	fmt.Fprintf(out, "Loaded %s: %d rows, %d columns. Ask a question, or type exit.\n",
		sess.Source(), table.RowCount(), table.ColumnCount())

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if trimmed == "exit" || trimmed == "quit" {
			break
		}

		entry, err := sess.Ask(cmd.Context(), line)
		if err != nil {
			fmt.Fprintf(out, "error: %s\n", errors.UserMessage(err))
			continue
		}
		fmt.Fprintf(out, "%s\n\n", entry.Answer)
	}
	fmt.Fprintf(out, "\n%d questions answered.\n", len(sess.Transcript()))
	return scanner.Err()
}

// newSession builds a configured session with the file already loaded
func newSession(path string) (*session.Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	sess := c.Store.GetOrCreate("")
	if _, err := sess.Load(filepath.Base(path), data); err != nil {
		return nil, fmt.Errorf("%s", errors.UserMessage(err))
	}
	return sess, nil
}

func loadFile(path string) (*dataset.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	table, err := excel.NewDataReader(nil).LoadFile(filepath.Base(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s", errors.UserMessage(err))
	}
	return table, nil
}
