package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/ndewijer/Dividend-Income-Projector/internal/model"
	"github.com/ndewijer/Dividend-Income-Projector/internal/projection"
)

// formatAmount renders whole currency units with the currency's symbol and
// separators. Unknown currencies fall back to a plain number and the code.
func formatAmount(units int64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return fmt.Sprintf("%d %s", units, currency)
	}

	factor, _ := decimal.NewFromInt(10).PowInt32(int32(cur.Fraction))
	amount := decimal.NewFromInt(units).Mul(factor)
	return money.New(amount.IntPart(), currency).Display()
}

// writeDashboard prints the event timeline followed by the totals and the
// monthly breakdown.
func writeDashboard(w io.Writer, d model.Dashboard, currency string) error {
	s := d.Summary
	fmt.Fprintf(w, "Reference date: %s\n", s.ReferenceDate.Format(projection.DateLayout))
	if !s.ShowProjections {
		fmt.Fprintln(w, "Projected payments hidden")
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Payment\tTicker\tGross\tFee\tNet\tStatus\t")
	for _, ev := range d.Events {
		status := string(ev.Status)
		if ev.IsProjection {
			status += "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			ev.PaymentDate.Format(projection.DateLayout),
			ev.Ticker,
			formatAmount(ev.GrossAmount, currency),
			formatAmount(ev.Fee, currency),
			formatAmount(ev.NetAmount, currency),
			status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if s.ShowProjections {
		fmt.Fprintln(w, "* projected from last year's payment")
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total:    %s\n", formatAmount(s.TotalNet, currency))
	fmt.Fprintf(w, "Received: %s\n", formatAmount(s.ReceivedNet, currency))
	fmt.Fprintf(w, "Pending:  %s\n", formatAmount(s.PendingNet, currency))
	if s.NextPayment != nil {
		fmt.Fprintf(w, "Next:     %s %s %s\n",
			s.NextPayment.PaymentDate.Format(projection.DateLayout),
			s.NextPayment.Ticker,
			formatAmount(s.NextPayment.NetAmount, currency))
	}
	fmt.Fprintln(w)

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, b := range s.Monthly {
		fmt.Fprintf(tw, "%s\t%s\t\n", b.Month, formatAmount(b.Amount, currency))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	for _, r := range d.Rejected {
		fmt.Fprintf(w, "warning: skipped %s declaration %s/%s: %s\n",
			r.Ticker, r.Declaration.ExDividendDate, r.Declaration.PaymentDate, r.Reason)
	}
	return nil
}

// writeRefresh prints the per-ticker outcome of a refresh.
func writeRefresh(w io.Writer, r model.RefreshResult) {
	for _, t := range r.Refreshed {
		fmt.Fprintf(w, "refreshed %s\n", t)
	}
	for _, f := range r.Failed {
		fmt.Fprintf(w, "failed    %s: %s\n", f.Ticker, f.Error)
	}
	if !r.LastUpdated.IsZero() {
		fmt.Fprintf(w, "last updated %s\n", r.LastUpdated.Format("2006-01-02 15:04:05 MST"))
	}
}
