package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/lfx/internal/shared"
	"github.com/urfave/cli/v3"
)

// APICall calls a Last.fm method directly and prints the response.
func (r *Runner) APICall(ctx context.Context, cmd *cli.Command) error {
	method := strings.TrimSpace(cmd.Args().First())
	if method == "" {
		return fmt.Errorf("%w: method is required (e.g. tag.getinfo)", shared.ErrMissingArgument)
	}

	params, err := parseParams(cmd.StringSlice("param"))
	if err != nil {
		return err
	}

	svc, err := r.lastFMService()
	if err != nil {
		return err
	}

	r.logger.Info("API call", "method", method)

	resp, err := svc.Call(ctx, method, params)
	if err != nil {
		return err
	}

	if resp.IsJSON {
		if err := r.writeJSON(resp.JSONData, cmd.Bool("pretty")); err != nil {
			return err
		}
	} else {
		r.output.Write(resp.Body)
		r.output.Write([]byte("\n"))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}
	return nil
}

// parseParams splits key=value pairs.
func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: parameter %q must be key=value", shared.ErrInvalidArgument, pair)
		}
		params[key] = value
	}
	return params, nil
}
