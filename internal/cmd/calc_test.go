package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

const request = `{
	"tenant_id": "cli",
	"vehicle": {"merk": "VOLKSWAGEN", "datum_eerste_toelating": "20160510", "brandstof": "Benzine", "massa_ledig_voertuig": "1150", "catalogusprijs": "24000"},
	"usage": {"monthly_distance": 1200, "consumption_per_hundred": 6.5, "unit_price": 2.05},
	"ownership": {"purchase_price": 9000, "depreciation_years": 4},
	"finance": {"annual_gross_income": 50000},
	"as_of": {"year": 2025, "instant": "2025-03-01T00:00:00Z"}
}`

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
	})
	err := RootCmd.Execute()
	return out.String(), err
}

func TestCalcFromFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "request.json")
	if err := os.WriteFile(path, []byte(request), 0o600); err != nil {
		t.Fatalf("write request: %v", err)
	}

	out, err := runRoot(t, "calc", path)
	if err != nil {
		t.Fatalf("calc returned error: %v\n%s", err, out)
	}
	for _, want := range []string{`"calculation_outcome": "SUCCESS"`, `"percentage": 25`, `"tax_percentage": 37.48`, `"tenant_id": "cli"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output:\n%s", want, out)
		}
	}
}

func TestCalcFailureExitsWithError(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "request.json")
	bad := strings.Replace(request, `"brandstof": "Benzine", `, "", 1)
	if err := os.WriteFile(path, []byte(bad), 0o600); err != nil {
		t.Fatalf("write request: %v", err)
	}

	out, err := runRoot(t, "calc", path)
	if !errors.Is(err, errCalculationFailed) {
		t.Fatalf("expected errCalculationFailed, got %v", err)
	}
	if !strings.Contains(out, "INVALID_VEHICLE_DATA") {
		t.Fatalf("expected INVALID_VEHICLE_DATA in output:\n%s", out)
	}
}

func TestCalcRejectsMalformedRequest(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "request.json")
	if err := os.WriteFile(path, []byte(`{"usage":`), 0o600); err != nil {
		t.Fatalf("write request: %v", err)
	}

	if _, err := runRoot(t, "calc", path); err == nil || !strings.Contains(err.Error(), "decode request") {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "warn")
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected log output %q", buf.String())
	}
}
