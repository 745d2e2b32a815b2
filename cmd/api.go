package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/flow/internal/services"
	"github.com/desertthunder/flow/internal/shared"
	"github.com/urfave/cli/v3"
)

// methodCaller is implemented by services that expose raw API methods.
type methodCaller interface {
	Call(ctx context.Context, method string, params url.Values) (*services.APIResponse, error)
}

// parseParams turns key=value arguments into query values.
func parseParams(args []string) (url.Values, error) {
	params := url.Values{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: parameter %q is not key=value", shared.ErrInvalidArgument, arg)
		}
		params.Add(key, value)
	}
	return params, nil
}

// APICall invokes a raw API method with the stored session and prints the response body.
func (r *Runner) APICall(ctx context.Context, cmd *cli.Command) error {
	caller, ok := r.service.(methodCaller)
	if !ok {
		return fmt.Errorf("%w: %s does not support raw calls", shared.ErrServiceUnavailable, r.service.Name())
	}

	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: method name", shared.ErrMissingArgument)
	}

	params, err := parseParams(args[1:])
	if err != nil {
		return err
	}

	if err := r.authenticate(ctx); err != nil {
		return err
	}

	r.logger.Info("API call", "method", args[0], "params", len(params))

	resp, err := caller.Call(ctx, args[0], params)
	var apiErr *services.APIError
	if err != nil && !(errors.As(err, &apiErr) && resp != nil) {
		return err
	}
	r.logger.Debug("API response", "url", resp.URL, "bytes", len(resp.Body), "xml", resp.IsXML)

	if _, werr := r.output.Write(resp.Body); werr != nil {
		return fmt.Errorf("failed to write output: %w", werr)
	}
	r.writePlain("\n")
	return err
}
