package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/vanshika/cyphertx"
	"github.com/vanshika/cyphertx/bolt"
	"github.com/vanshika/cyphertx/internal/config"
	"github.com/vanshika/cyphertx/internal/logging"
)

func main() {
	var (
		useBolt    = flag.Bool("bolt", false, "execute over the Bolt protocol instead of the HTTP endpoint")
		paramsJSON = flag.String("params", "", "statement parameters as a JSON object")
		timeout    = flag.Duration("timeout", time.Minute, "overall execution timeout")
	)
	flag.Parse()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: cypherq [flags] <cypher statement>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "cypherq")

	stmt := cyphertx.NewStatement(query)
	if *paramsJSON != "" {
		var params map[string]cyphertx.Value
		if err := json.Unmarshal([]byte(*paramsJSON), &params); err != nil {
			logger.Error("invalid -params value", "error", err)
			os.Exit(1)
		}
		stmt.WithParams(params)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	runner, cleanup, err := buildRunner(ctx, logger, cfg, *useBolt || cfg.Graph.UseBolt)
	if err != nil {
		logger.Error("failed to create graph client", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	result, err := runner.Exec(ctx, stmt)
	if err != nil {
		var epErr *cyphertx.EndpointError
		if errors.As(err, &epErr) {
			for _, se := range epErr.Errors {
				logger.Error("statement failed", "code", se.Code, "message", se.Message)
			}
		} else {
			logger.Error("execution failed", "error", err)
		}
		os.Exit(1)
	}

	renderTable(os.Stdout, result)
	logger.Info("statement executed", "rows", result.Len())
}

func buildRunner(ctx context.Context, logger *slog.Logger, cfg config.Config, useBolt bool) (cyphertx.Runner, func(), error) {
	if useBolt {
		client, err := bolt.Connect(ctx, bolt.Options{
			URI:            cfg.Graph.URI,
			Database:       cfg.Graph.Database,
			Username:       cfg.Graph.Username,
			Password:       cfg.Graph.Password,
			MaxConnections: cfg.Graph.MaxConnections,
		})
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if err := client.Close(context.Background()); err != nil {
				logger.Warn("closing bolt client failed", "error", err)
			}
		}
		return client, cleanup, nil
	}

	client, err := cyphertx.New(cyphertx.Options{
		URI:      cfg.Graph.URI,
		Username: cfg.Graph.Username,
		Password: cfg.Graph.Password,
		Timeout:  cfg.Graph.RequestTimeout,
		Logger:   logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return client, func() {}, nil
}

func renderTable(w io.Writer, result *cyphertx.Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(result.Columns())

	rows := result.Rows()
	for rows.Next() {
		row := rows.Row()
		cells := make([]string, row.Len())
		for i := range cells {
			var value any
			if err := row.GetIndex(i, &value); err != nil {
				cells[i] = "?"
				continue
			}
			cells[i] = formatCell(value)
		}
		table.Append(cells)
	}

	table.Render()
}

func formatCell(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
