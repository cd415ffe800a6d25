package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/evcraddock/visit-planner/internal/cep"
	"github.com/evcraddock/visit-planner/internal/db"
	"github.com/evcraddock/visit-planner/internal/planner"
	"github.com/evcraddock/visit-planner/internal/visit"
	"github.com/evcraddock/visit-planner/internal/web"
)

// startPlanner serves a planner over a temporary database holding visits
// and points the CLI at it.
func startPlanner(t *testing.T, visits []visit.Visit) {
	t.Helper()
	startPlannerWithLookup(t, visits, nil)
}

func startPlannerWithLookup(t *testing.T, visits []visit.Visit, lookup planner.AddressLookup) {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "cli.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	repo := visit.NewRepository(d)
	if err := repo.Save(context.Background(), visits); err != nil {
		t.Fatalf("seed visits: %v", err)
	}

	svc, err := planner.NewService(context.Background(), repo, planner.Options{Logger: zerolog.Nop(), Lookup: lookup})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	srv := httptest.NewServer(web.NewServer(svc, web.Options{Logger: zerolog.Nop()}))
	t.Cleanup(srv.Close)

	t.Setenv("HOME", t.TempDir())
	t.Setenv("VP_SERVER_URL", srv.URL)
}

// fullDay has one small visit and one filling the rest of 2024-01-10.
func fullDay() []visit.Visit {
	return []visit.Visit{
		{ID: "a1", Date: "2024-01-10", Status: visit.StatusPending, FormCount: 2},
		{ID: "a2", Date: "2024-01-10", Status: visit.StatusPending, FormCount: 30},
	}
}

// stubLookup resolves the postal codes it holds, keyed by digits.
type stubLookup map[string]cep.Address

func (s stubLookup) Lookup(_ context.Context, code string) (*cep.Address, error) {
	digits, err := cep.Normalize(code)
	if err != nil {
		return nil, err
	}
	a, ok := s[digits]
	if !ok {
		return nil, cep.ErrNotFound
	}
	return &a, nil
}

func visitInSaoCarlos() visit.Visit {
	return visit.Visit{
		ID: "a1", Date: "2024-01-10", Status: visit.StatusPending, FormCount: 2,
		Address: visit.Address{
			PostalCode: "13560-000", State: "SP", City: "São Carlos",
			Street: "Rua Episcopal", Neighborhood: "Centro", Number: "10",
		},
	}
}

func withInput(t *testing.T, s string) {
	t.Helper()
	prev := promptIn
	promptIn = strings.NewReader(s)
	t.Cleanup(func() { promptIn = prev })
}

func TestAddVisit(t *testing.T) {
	startPlanner(t, nil)

	out, err := executeCommand("add", "2024-01-10", "-f", "3", "-p", "5", "--city", "Campinas", "--state", "SP", "--lookup=false")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !strings.Contains(out, "Visit scheduled") {
		t.Errorf("expected success notice, got %q", out)
	}
	if !strings.Contains(out, "Forms:    3") || !strings.Contains(out, "Campinas/SP") {
		t.Errorf("expected visit summary, got %q", out)
	}
}

func TestAddVisitOverCapacity(t *testing.T) {
	startPlanner(t, fullDay())

	out, err := executeCommand("add", "2024-01-10", "-f", "1", "--lookup=false")
	if err == nil {
		t.Fatal("expected capacity error")
	}
	if !strings.Contains(err.Error(), "adding visit") {
		t.Errorf("error = %v", err)
	}
	if !strings.Contains(out, "Not enough time") || !strings.Contains(out, "15min short") {
		t.Errorf("expected shortfall notice, got %q", out)
	}
}

func TestListGroupsByDay(t *testing.T) {
	visits := append(fullDay(), visit.Visit{ID: "b1", Date: "2024-01-09", Status: visit.StatusCompleted, FormCount: 1})
	startPlanner(t, visits)

	out, err := executeCommand("list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	first := strings.Index(out, "2024-01-09")
	second := strings.Index(out, "2024-01-10")
	if first < 0 || second < 0 || first > second {
		t.Errorf("expected days in date order, got %q", out)
	}
	if !strings.Contains(out, "Total: 3 visits") {
		t.Errorf("expected total, got %q", out)
	}
}

func TestListEmpty(t *testing.T) {
	startPlanner(t, nil)

	out, err := executeCommand("list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No visits found.") {
		t.Errorf("got %q", out)
	}
}

func TestShowJSON(t *testing.T) {
	startPlanner(t, fullDay())

	out, err := executeCommand("show", "a1", "--format", "json")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var v visit.Visit
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if v.ID != "a1" || v.FormCount != 2 {
		t.Errorf("visit = %+v", v)
	}
}

func TestShowMissing(t *testing.T) {
	startPlanner(t, nil)

	if _, err := executeCommand("show", "nope"); err == nil {
		t.Fatal("expected not found error")
	}
}

func TestCheck(t *testing.T) {
	startPlanner(t, fullDay())

	out, err := executeCommand("check", "2024-01-10", "-f", "1")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, "Fits:      no (15min short)") {
		t.Errorf("got %q", out)
	}

	// Leaving a1 out frees exactly the 30 minutes two forms need.
	out, err = executeCommand("check", "2024-01-10", "-f", "2", "--exclude", "a1")
	if err != nil {
		t.Fatalf("check exclude: %v", err)
	}
	if !strings.Contains(out, "Available: 30min") || !strings.Contains(out, "Fits:      yes") {
		t.Errorf("got %q", out)
	}

	out, err = executeCommand("check", "2024-01-10", "-f", "3", "--exclude", "a1")
	if err != nil {
		t.Fatalf("check exclude: %v", err)
	}
	if !strings.Contains(out, "Fits:      no (15min short)") {
		t.Errorf("got %q", out)
	}
}

func TestEditKeepsUnsetFields(t *testing.T) {
	startPlanner(t, fullDay()[:1])

	out, err := executeCommand("edit", "a1", "-p", "2", "--format", "json")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	var v visit.Visit
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if v.FormCount != 2 || v.ProductCount != 2 || v.Date != "2024-01-10" {
		t.Errorf("visit = %+v", v)
	}
}

func TestEditLookupFailureKeepsAddress(t *testing.T) {
	startPlanner(t, []visit.Visit{visitInSaoCarlos()})

	out, err := executeCommand("edit", "a1", "--cep", "01310-100", "--format", "json")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	var v visit.Visit
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	a := v.Address
	if a.PostalCode != "01310-100" {
		t.Errorf("postal code = %q", a.PostalCode)
	}
	if a.City != "São Carlos" || a.State != "SP" || a.Street != "Rua Episcopal" || a.Neighborhood != "Centro" {
		t.Errorf("address lost after failed lookup: %+v", a)
	}
}

func TestEditLookupFailureWarns(t *testing.T) {
	startPlanner(t, []visit.Visit{visitInSaoCarlos()})

	out, err := executeCommand("edit", "a1", "--cep", "01310-100")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !strings.Contains(out, "Address lookup failed") || !strings.Contains(out, "Rua Episcopal") {
		t.Errorf("got %q", out)
	}
}

func TestEditLookupReplacesAddress(t *testing.T) {
	startPlannerWithLookup(t, []visit.Visit{visitInSaoCarlos()}, stubLookup{
		"01310100": {PostalCode: "01310-100", State: "SP", City: "São Paulo", Street: "Avenida Paulista", Neighborhood: "Bela Vista"},
	})

	out, err := executeCommand("edit", "a1", "--cep", "01310100", "--number", "1578", "--format", "json")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	var v visit.Visit
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	want := visit.Address{
		PostalCode: "01310-100", State: "SP", City: "São Paulo",
		Street: "Avenida Paulista", Neighborhood: "Bela Vista", Number: "1578",
	}
	if v.Address != want {
		t.Errorf("address = %+v, want %+v", v.Address, want)
	}
}

func TestCompleteRequiresConfirmation(t *testing.T) {
	startPlanner(t, fullDay())
	withInput(t, "n\n")

	_, err := executeCommand("complete", "a1")
	if !errors.Is(err, errCanceled) {
		t.Fatalf("expected canceled, got %v", err)
	}

	out, err := executeCommand("show", "a1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "Pending") {
		t.Errorf("visit should still be pending, got %q", out)
	}
}

func TestCompleteTwice(t *testing.T) {
	startPlanner(t, fullDay())

	out, err := executeCommand("complete", "a1", "--yes")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !strings.Contains(out, "Visit completed") {
		t.Errorf("got %q", out)
	}

	if _, err := executeCommand("complete", "a1", "--yes"); err == nil {
		t.Fatal("expected error completing a completed visit")
	}
}

func TestCloseDayMovesPending(t *testing.T) {
	startPlanner(t, fullDay())

	if _, err := executeCommand("complete", "a1", "-y"); err != nil {
		t.Fatalf("complete: %v", err)
	}

	out, err := executeCommand("close-day", "2024-01-10", "-y")
	if err != nil {
		t.Fatalf("close-day: %v", err)
	}
	if !strings.Contains(out, "1 visits moved") || !strings.Contains(out, "a2 -> 2024-01-11") {
		t.Errorf("got %q", out)
	}

	out, err = executeCommand("close-day", "2024-01-10", "-y")
	if err != nil {
		t.Fatalf("second close-day: %v", err)
	}
	if !strings.Contains(out, "Nothing to move") {
		t.Errorf("got %q", out)
	}
}

func TestDays(t *testing.T) {
	startPlanner(t, fullDay())

	out, err := executeCommand("days")
	if err != nil {
		t.Fatalf("days: %v", err)
	}
	if !strings.Contains(out, "2024-01-10") || !strings.Contains(out, "8h (100%)") {
		t.Errorf("got %q", out)
	}
}

func TestRemove(t *testing.T) {
	startPlanner(t, fullDay())

	out, err := executeCommand("remove", "a2", "--yes")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !strings.Contains(out, "Visit removed") {
		t.Errorf("got %q", out)
	}
	if _, err := executeCommand("show", "a2"); err == nil {
		t.Fatal("expected removed visit to be gone")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	startPlanner(t, fullDay())
	file := filepath.Join(t.TempDir(), "visits.json")

	if _, err := executeCommand("export", file); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := executeCommand("remove", "a1", "-y"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	out, err := executeCommand("import", file, "-y")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "2 visits") {
		t.Errorf("got %q", out)
	}
	if _, err := executeCommand("show", "a1"); err != nil {
		t.Errorf("imported visit missing: %v", err)
	}
}

func TestImportRejectsObject(t *testing.T) {
	startPlanner(t, nil)
	file := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(file, []byte(`{"id":"a1"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := executeCommand("import", file, "-y"); err == nil {
		t.Fatal("expected error for non-array import")
	}
}

func TestStatusAgainstPlanner(t *testing.T) {
	startPlanner(t, fullDay())

	out, err := executeCommand("status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "1 with visits, 2 visits pending") {
		t.Errorf("got %q", out)
	}
}

func TestConfigFormatIsDefault(t *testing.T) {
	startPlanner(t, fullDay())
	if err := saveConfig(CLIConfig{Format: "json"}); err != nil {
		t.Fatalf("save config: %v", err)
	}

	out, err := executeCommand("show", "a1")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var v visit.Visit
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("expected JSON from config default, got %q: %v", out, err)
	}

	out, err = executeCommand("show", "a1", "--format", "text")
	if err != nil {
		t.Fatalf("show text: %v", err)
	}
	if !strings.Contains(out, "Visit a1") {
		t.Errorf("flag should override config, got %q", out)
	}
}

func TestConfigAssumeYesSkipsConfirmation(t *testing.T) {
	startPlanner(t, fullDay())
	if err := saveConfig(CLIConfig{AssumeYes: true}); err != nil {
		t.Fatalf("save config: %v", err)
	}
	withInput(t, "n\n")

	out, err := executeCommand("complete", "a1")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !strings.Contains(out, "Visit completed") {
		t.Errorf("got %q", out)
	}
}
