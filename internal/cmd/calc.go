package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/aitechneut/autovandezaakofprive/internal/config"
	"github.com/aitechneut/autovandezaakofprive/internal/model"
)

var CalcCmd = &cobra.Command{
	Use:   "calc [request.json]",
	Short: "Run one calculation from a JSON request file (or stdin) and print the result",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCalc,
}

var errCalculationFailed = errors.New("calculation failed")

func init() {
	CalcCmd.Flags().String("plate", "", "look up the vehicle by license plate instead of the request's vehicle")
}

func runCalc(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	in := cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	var req model.CalculationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	if plate, _ := cmd.Flags().GetString("plate"); plate != "" {
		req.LicensePlate = plate
		req.Vehicle = nil
	}

	e, vehicles, err := build(cfg, logger)
	if err != nil {
		return err
	}
	if req.Vehicle == nil && req.LicensePlate != "" {
		rec, err := vehicles.Lookup(cmd.Context(), req.LicensePlate)
		if err != nil {
			return fmt.Errorf("look up %s: %w", req.LicensePlate, err)
		}
		req.Vehicle = rec
	}

	resp := e.Calculate(&req)
	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if resp.CalculationMetadata.CalculationOutcome == model.OutcomeFailure {
		return errCalculationFailed
	}
	return nil
}
