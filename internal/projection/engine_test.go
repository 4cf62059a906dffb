package projection_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Dividend-Income-Projector/internal/apperrors"
	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
	"github.com/ndewijer/Dividend-Income-Projector/internal/projection"
)

// TestEngine_Project_Amounts tests that events carry the fee arithmetic.
//
// WHY: The engine is where quantity, per-share amount and fee rule meet; a wrong
// multiplier here would skew every total on the dashboard.
func TestEngine_Project_Amounts(t *testing.T) {
	result := mustProject(t, newEngine(),
		[]model.Holding{holding("0050", "24")},
		map[string][]model.DividendDeclaration{
			"0050": {decl("2026-01-22", "2026-02-11", "1.0")},
		},
		referenceDay,
	)

	if len(result.Events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(result.Events))
	}

	e := result.Events[0]
	if e.GrossAmount != 24000 || e.Fee != 506 || e.NetAmount != 23494 {
		t.Errorf("Expected 24000/506/23494, got %d/%d/%d", e.GrossAmount, e.Fee, e.NetAmount)
	}
	if e.Ticker != "0050" {
		t.Errorf("Expected ticker 0050, got %s", e.Ticker)
	}
	if e.ExDividendDate != "2026-01-22" {
		t.Errorf("Expected ex-dividend date to pass through, got %s", e.ExDividendDate)
	}
	if !e.PaymentDate.Equal(day(2026, time.February, 11)) {
		t.Errorf("Expected payment date 2026-02-11, got %s", e.PaymentDate)
	}
	if e.Month != "Feb" {
		t.Errorf("Expected month Feb, got %s", e.Month)
	}
	if e.Status != model.StatusPending {
		t.Errorf("Expected pending, got %s", e.Status)
	}
	if e.IsProjection {
		t.Error("Expected a real event, got a projection")
	}
}

// TestEngine_Project_ZeroQuantity tests that empty positions never contribute.
//
// WHY: Sold-out positions stay in the portfolio file; their rich history must not
// leak into expected income.
func TestEngine_Project_ZeroQuantity(t *testing.T) {
	history := []model.DividendDeclaration{
		decl("2026-03-10", "2026-04-09", "3.0"),
		decl("2025-06-12", "2025-07-10", "4.5"),
		decl("2025-12-10", "2026-01-08", "3.0"),
	}

	result := mustProject(t, newEngine(),
		[]model.Holding{holding("2330", "0"), holding("0050", "1")},
		map[string][]model.DividendDeclaration{"2330": history},
		referenceDay,
	)

	for _, e := range result.Events {
		if e.Ticker == "2330" {
			t.Errorf("Zero-quantity holding produced event %+v", e)
		}
	}
	if len(result.Events) != 0 {
		t.Errorf("Expected no events, got %d", len(result.Events))
	}
}

// TestEngine_Project_GapFill tests rolling last year's declarations forward.
//
// WHY: Until a ticker announces this year's dividends, last year's same-month
// payment is the best estimate. A month already announced must not be doubled.
func TestEngine_Project_GapFill(t *testing.T) {
	t.Run("projects only the uncovered month", func(t *testing.T) {
		result := mustProject(t, newEngine(),
			[]model.Holding{holding("0056", "10")},
			map[string][]model.DividendDeclaration{
				"0056": {
					decl("2026-01-22", "2026-02-11", "0.866"),
					decl("2025-01-16", "2025-02-14", "0.7"),
					decl("2025-07-16", "2025-08-12", "1.07"),
				},
			},
			referenceDay,
		)

		if len(result.Events) != 2 {
			t.Fatalf("Expected 2 events, got %d: %+v", len(result.Events), result.Events)
		}

		actual, projected := result.Events[0], result.Events[1]
		if actual.IsProjection || actual.Month != "Feb" || !actual.PaymentDate.Equal(day(2026, time.February, 11)) {
			t.Errorf("Expected real Feb event on 2026-02-11, got %+v", actual)
		}
		if !projected.IsProjection || projected.Month != "Aug" {
			t.Errorf("Expected projected Aug event, got %+v", projected)
		}
		if !projected.PaymentDate.Equal(day(2026, time.August, 12)) {
			t.Errorf("Expected projected payment date 2026-08-12, got %s", projected.PaymentDate)
		}
		if projected.ExDividendDate != "2025-07-16" {
			t.Errorf("Expected ex-dividend date kept as-is, got %s", projected.ExDividendDate)
		}
		if projected.GrossAmount != 10700 {
			t.Errorf("Expected last year's per-share amount to be used (10700), got %d", projected.GrossAmount)
		}

		for _, e := range result.Events {
			if e.IsProjection && e.Month == "Feb" {
				t.Errorf("Projected event duplicates covered month: %+v", e)
			}
		}
	})

	t.Run("projects every payment when nothing is announced yet", func(t *testing.T) {
		result := mustProject(t, newEngine(),
			[]model.Holding{holding("00919", "1")},
			map[string][]model.DividendDeclaration{
				"00919": {
					decl("2025-03-18", "2025-04-15", "0.7"),
					decl("2025-06-17", "2025-07-14", "0.72"),
					decl("2025-09-16", "2025-10-15", "0.54"),
					decl("2025-12-16", "2026-01-13", "0.54"),
				},
			},
			referenceDay,
		)

		// The December 2025 ex-date is paid in January 2026, so it is a real
		// current-year event and covers January.
		if len(result.Events) != 4 {
			t.Fatalf("Expected 4 events, got %d", len(result.Events))
		}
		if result.Events[0].IsProjection {
			t.Error("Expected the January payment to be a real event")
		}
		for _, e := range result.Events[1:] {
			if !e.IsProjection {
				t.Errorf("Expected projection, got %+v", e)
			}
			if e.PaymentDate.Year() != 2026 {
				t.Errorf("Expected projected payment in 2026, got %s", e.PaymentDate)
			}
		}
	})

	t.Run("ignores declarations outside both years", func(t *testing.T) {
		result := mustProject(t, newEngine(),
			[]model.Holding{holding("2892", "52")},
			map[string][]model.DividendDeclaration{
				"2892": {
					decl("2024-07-10", "2024-08-08", "1.0"),
					decl("2027-07-10", "2027-08-08", "1.0"),
				},
			},
			referenceDay,
		)

		if len(result.Events) != 0 {
			t.Errorf("Expected no events, got %+v", result.Events)
		}
	})

	t.Run("leap day rolls into March", func(t *testing.T) {
		result := mustProject(t, newEngine(),
			[]model.Holding{holding("6533", "11")},
			map[string][]model.DividendDeclaration{
				"6533": {decl("2024-01-30", "2024-02-29", "1.0")},
			},
			time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		)

		if len(result.Events) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(result.Events))
		}
		if !result.Events[0].PaymentDate.Equal(day(2025, time.March, 1)) {
			t.Errorf("Expected 2025-03-01, got %s", result.Events[0].PaymentDate)
		}
		if result.Events[0].Month != "Mar" {
			t.Errorf("Expected month label Mar, got %s", result.Events[0].Month)
		}
	})
}

// TestEngine_Project_StatusBoundary tests received/pending classification.
//
// WHY: A payment due today has not been disbursed yet; only strictly earlier
// payments are received.
func TestEngine_Project_StatusBoundary(t *testing.T) {
	today := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	justBefore := today.Add(-time.Microsecond).Format(time.RFC3339Nano)

	result := mustProject(t, newEngine(),
		[]model.Holding{holding("AAA", "1"), holding("BBB", "1")},
		map[string][]model.DividendDeclaration{
			"AAA": {decl("2026-02-01", "2026-03-15", "1")},
			"BBB": {decl("2026-02-01", justBefore, "1")},
		},
		today,
	)

	if len(result.Events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(result.Events))
	}

	statuses := map[string]model.DividendStatus{}
	for _, e := range result.Events {
		statuses[e.Ticker] = e.Status
	}
	if statuses["AAA"] != model.StatusPending {
		t.Errorf("Expected payment on today to be pending, got %s", statuses["AAA"])
	}
	if statuses["BBB"] != model.StatusReceived {
		t.Errorf("Expected payment one microsecond before today to be received, got %s", statuses["BBB"])
	}
}

// TestEngine_Project_ProjectedStatusUsesAdjustedDate tests that status follows
// the rolled-forward date, not last year's date.
func TestEngine_Project_ProjectedStatusUsesAdjustedDate(t *testing.T) {
	result := mustProject(t, newEngine(),
		[]model.Holding{holding("2884", "2")},
		map[string][]model.DividendDeclaration{
			"2884": {
				decl("2025-01-05", "2025-01-10", "1"),
				decl("2025-07-05", "2025-08-10", "1"),
			},
		},
		referenceDay,
	)

	if len(result.Events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(result.Events))
	}
	if result.Events[0].Status != model.StatusReceived {
		t.Errorf("Expected 2026-01-10 projection to be received, got %s", result.Events[0].Status)
	}
	if result.Events[1].Status != model.StatusPending {
		t.Errorf("Expected 2026-08-10 projection to be pending, got %s", result.Events[1].Status)
	}
}

// TestEngine_Project_Ordering tests the output ordering contract.
//
// WHY: Timeline displays read the list in order; ties on the payment date must
// be broken by ticker so the order never depends on input order.
func TestEngine_Project_Ordering(t *testing.T) {
	holdings := []model.Holding{
		holding("2892", "1"),
		holding("00881", "1"),
		holding("0050", "1"),
	}
	histories := map[string][]model.DividendDeclaration{
		"2892":  {decl("2026-06-01", "2026-07-01", "1"), decl("2026-01-01", "2026-02-11", "1")},
		"00881": {decl("2026-01-20", "2026-02-12", "1")},
		"0050":  {decl("2026-01-22", "2026-02-11", "1")},
	}

	result := mustProject(t, newEngine(), holdings, histories, referenceDay)

	want := []struct {
		ticker string
		date   time.Time
	}{
		{"0050", day(2026, time.February, 11)},
		{"2892", day(2026, time.February, 11)},
		{"00881", day(2026, time.February, 12)},
		{"2892", day(2026, time.July, 1)},
	}

	if len(result.Events) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(result.Events))
	}
	for i, w := range want {
		got := result.Events[i]
		if got.Ticker != w.ticker || !got.PaymentDate.Equal(w.date) {
			t.Errorf("Event %d: expected %s on %s, got %s on %s", i, w.ticker, w.date.Format("2006-01-02"), got.Ticker, got.PaymentDate.Format("2006-01-02"))
		}
	}

	for i := 1; i < len(result.Events); i++ {
		prev, cur := result.Events[i-1], result.Events[i]
		if cur.PaymentDate.Before(prev.PaymentDate) {
			t.Errorf("Events %d and %d out of date order", i-1, i)
		}
		if cur.PaymentDate.Equal(prev.PaymentDate) && cur.Ticker < prev.Ticker {
			t.Errorf("Events %d and %d out of ticker order on equal dates", i-1, i)
		}
	}
}

// TestEngine_Project_Idempotent tests that repeated runs are byte-identical.
//
// WHY: Projections must be reproducible; nothing may depend on the wall clock
// or on map iteration order.
func TestEngine_Project_Idempotent(t *testing.T) {
	holdings := []model.Holding{
		holding("0050", "24"),
		holding("00881", "275"),
		holding("0056", "14"),
		holding("00919", "350"),
		holding("2887", "380"),
	}
	histories := map[string][]model.DividendDeclaration{
		"0050":  {decl("2026-01-22", "2026-02-11", "1.0"), decl("2025-07-17", "2025-08-14", "1.0")},
		"00881": {decl("2026-01-20", "2026-02-12", "2.65"), decl("2025-08-18", "2025-09-12", "0.5")},
		"0056":  {decl("2025-10-23", "2025-11-19", "0.866"), decl("2025-07-17", "2025-08-13", "0.866")},
		"00919": {decl("2025-12-16", "2026-01-13", "0.54"), decl("2025-03-18", "2025-04-15", "0.7")},
		"2887":  {decl("2025-07-10", "2025-08-08", "0.4")},
		"0056b": {decl("2025-07-17", "2025-08-13", "1")},
	}

	engine := newEngine()
	first := mustProject(t, engine, holdings, histories, referenceDay)
	second := mustProject(t, engine, holdings, histories, referenceDay)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("Expected identical results for identical inputs")
	}

	a, err := json.Marshal(first.Events)
	if err != nil {
		t.Fatalf("Failed to marshal events: %v", err)
	}
	b, err := json.Marshal(second.Events)
	if err != nil {
		t.Fatalf("Failed to marshal events: %v", err)
	}
	if string(a) != string(b) {
		t.Errorf("Expected byte-identical output:\n%s\n%s", a, b)
	}
}

// TestEngine_Project_EmptyHistory tests graceful degradation without data.
func TestEngine_Project_EmptyHistory(t *testing.T) {
	t.Run("ticker absent from history map", func(t *testing.T) {
		result := mustProject(t, newEngine(), []model.Holding{holding("00965", "10")}, nil, referenceDay)

		if result.Events == nil {
			t.Error("Expected an empty, non-nil event list")
		}
		if len(result.Events) != 0 {
			t.Errorf("Expected no events, got %d", len(result.Events))
		}
	})

	t.Run("ticker with empty history", func(t *testing.T) {
		result := mustProject(t, newEngine(),
			[]model.Holding{holding("00696B", "100")},
			map[string][]model.DividendDeclaration{"00696B": {}},
			referenceDay,
		)

		if len(result.Events) != 0 {
			t.Errorf("Expected no events, got %d", len(result.Events))
		}
	})

	t.Run("history for tickers not held is unused", func(t *testing.T) {
		result := mustProject(t, newEngine(),
			[]model.Holding{holding("0050", "1")},
			map[string][]model.DividendDeclaration{"9999": {decl("2026-01-01", "2026-02-01", "5")}},
			referenceDay,
		)

		if len(result.Events) != 0 {
			t.Errorf("Expected no events, got %+v", result.Events)
		}
	})
}

// TestEngine_Project_CaseInsensitiveTicker tests ticker identity at the history boundary.
func TestEngine_Project_CaseInsensitiveTicker(t *testing.T) {
	result := mustProject(t, newEngine(),
		[]model.Holding{holding("00696B", "100")},
		map[string][]model.DividendDeclaration{
			"00696b": {decl("2026-03-17", "2026-04-14", "0.4")},
		},
		referenceDay,
	)

	if len(result.Events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(result.Events))
	}
	if result.Events[0].Ticker != "00696B" {
		t.Errorf("Expected holding's ticker spelling, got %s", result.Events[0].Ticker)
	}
}

// TestEngine_Project_MalformedDeclarations tests per-declaration rejection.
//
// WHY: One bad record must not hide the rest of a ticker's income, and must not
// produce an event with a meaningless date.
func TestEngine_Project_MalformedDeclarations(t *testing.T) {
	result := mustProject(t, newEngine(),
		[]model.Holding{holding("0050", "1")},
		map[string][]model.DividendDeclaration{
			"0050": {
				decl("2026-01-22", "not-a-date", "1"),
				decl("garbage", "2026-05-01", "1"),
				decl("2026-06-01", "2026-07-01", "-1"),
				decl("2026-01-22", "2026-02-11", "1"),
			},
		},
		referenceDay,
	)

	if len(result.Events) != 1 {
		t.Fatalf("Expected 1 valid event, got %d", len(result.Events))
	}
	if len(result.Rejected) != 3 {
		t.Fatalf("Expected 3 rejected declarations, got %d", len(result.Rejected))
	}
	if result.Rejected[0].Ticker != "0050" || result.Rejected[0].Declaration.PaymentDate != "not-a-date" {
		t.Errorf("Unexpected first rejection: %+v", result.Rejected[0])
	}
	if result.Rejected[0].Reason == "" {
		t.Error("Expected a rejection reason")
	}
}

// TestEngine_Project_Restatement tests duplicate declarations of the same dividend.
func TestEngine_Project_Restatement(t *testing.T) {
	t.Run("identical duplicates collapse to one event", func(t *testing.T) {
		result := mustProject(t, newEngine(),
			[]model.Holding{holding("0050", "24")},
			map[string][]model.DividendDeclaration{
				"0050": {
					decl("2026-01-22", "2026-02-11", "1.0"),
					decl("2026-01-22", "2026-02-11", "1.0"),
					decl("2026-01-22", "2026-02-11", "1.0"),
				},
			},
			referenceDay,
		)

		if len(result.Events) != 1 {
			t.Errorf("Expected 1 event, got %d", len(result.Events))
		}
	})

	t.Run("last restated amount wins", func(t *testing.T) {
		result := mustProject(t, newEngine(),
			[]model.Holding{holding("0050", "10")},
			map[string][]model.DividendDeclaration{
				"0050": {
					decl("2026-01-22", "2026-02-11", "1.0"),
					decl("2026-01-22", "2026-02-11T00:00:00Z", "1.2"),
				},
			},
			referenceDay,
		)

		if len(result.Events) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(result.Events))
		}
		if result.Events[0].GrossAmount != 12000 {
			t.Errorf("Expected restated gross 12000, got %d", result.Events[0].GrossAmount)
		}
	})

	t.Run("payment dates keep their written calendar day", func(t *testing.T) {
		result := mustProject(t, newEngine(),
			[]model.Holding{holding("0050", "10")},
			map[string][]model.DividendDeclaration{
				"0050": {
					decl("2025-12-20", "2026-01-01T00:00:00+08:00", "1.0"),
					decl("2025-07-15T00:00:00", "2025-08-13T00:00:00", "1.0"),
				},
			},
			referenceDay,
		)

		if len(result.Rejected) != 0 {
			t.Fatalf("Expected no rejected declarations, got %v", result.Rejected)
		}
		if len(result.Events) != 2 {
			t.Fatalf("Expected 2 events, got %d", len(result.Events))
		}
		if got := result.Events[0].PaymentDate; !got.Equal(day(2026, time.January, 1)) || result.Events[0].IsProjection {
			t.Errorf("Expected real event on 2026-01-01, got %s (projection %v)", got, result.Events[0].IsProjection)
		}
		if got := result.Events[1].PaymentDate; !got.Equal(day(2026, time.August, 13)) || !result.Events[1].IsProjection {
			t.Errorf("Expected projected event on 2026-08-13, got %s", got)
		}
	})

	t.Run("distinct dividends in the same month are both kept", func(t *testing.T) {
		result := mustProject(t, newEngine(),
			[]model.Holding{holding("0050", "1")},
			map[string][]model.DividendDeclaration{
				"0050": {
					decl("2026-03-01", "2026-03-20", "1"),
					decl("2026-03-05", "2026-03-25", "1"),
				},
			},
			referenceDay,
		)

		if len(result.Events) != 2 {
			t.Errorf("Expected 2 events, got %d", len(result.Events))
		}
	})
}

// TestEngine_Project_InvalidInput tests caller contract violations.
func TestEngine_Project_InvalidInput(t *testing.T) {
	t.Run("negative quantity", func(t *testing.T) {
		_, err := newEngine().Project([]model.Holding{holding("0050", "-1")}, nil, referenceDay)
		if !errors.Is(err, apperrors.ErrNegativeQuantity) {
			t.Errorf("Expected ErrNegativeQuantity, got %v", err)
		}
	})

	t.Run("duplicate ticker in different case", func(t *testing.T) {
		_, err := newEngine().Project([]model.Holding{holding("00696B", "1"), holding("00696b", "2")}, nil, referenceDay)
		if !errors.Is(err, apperrors.ErrDuplicateHolding) {
			t.Errorf("Expected ErrDuplicateHolding, got %v", err)
		}
	})

	t.Run("missing reference date", func(t *testing.T) {
		_, err := newEngine().Project([]model.Holding{holding("0050", "1")}, nil, time.Time{})
		if !errors.Is(err, apperrors.ErrMissingReferenceDate) {
			t.Errorf("Expected ErrMissingReferenceDate, got %v", err)
		}
	})
}

// TestEngine_Project_CustomFeeRule tests that the configured rule is applied.
func TestEngine_Project_CustomFeeRule(t *testing.T) {
	rule := projection.FeeRule{Threshold: 0, Rate: decimal.RequireFromString("0.0211")}
	engine := projection.NewEngine(rule, nil)

	result := mustProject(t, engine,
		[]model.Holding{holding("0056", "1")},
		map[string][]model.DividendDeclaration{"0056": {decl("2026-01-22", "2026-02-11", "1")}},
		referenceDay,
	)

	if result.Events[0].Fee != 21 {
		t.Errorf("Expected fee 21 with zero threshold, got %d", result.Events[0].Fee)
	}
	if engine.FeeRule().Threshold != 0 {
		t.Errorf("Expected engine to report its rule")
	}
}
