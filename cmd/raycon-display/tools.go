package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/roboricindustries/raycon-display/pkg/audit"
	"github.com/roboricindustries/raycon-display/pkg/query"
	"github.com/roboricindustries/raycon-display/pkg/widgets"
)

// printAuditTail writes the last n audit entries, newest first, followed by
// per-outcome totals.
func printAuditTail(ctx context.Context, w io.Writer, store *audit.Store, n int) error {
	entries, err := store.Recent(ctx, audit.Filter{Limit: n})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RECEIVED\tCOMMAND\tRECORD\tOUTCOME\tSTACK\tREASON")
	for _, e := range entries {
		rec := ""
		if e.RecordID != nil {
			rec = *e.RecordID
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			e.ReceivedAt.Format("2006-01-02 15:04:05"), e.Command, rec, e.Outcome, e.StackSize, e.Reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	total, err := store.Count(ctx, "")
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "\ntotal %d", total)
	for _, o := range []audit.Outcome{audit.Applied, audit.Dropped, audit.Ignored} {
		c, err := store.Count(ctx, o)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s %d", o, c)
	}
	fmt.Fprintln(w)
	return nil
}

// seedDemo loads a small account with opportunities and activities so the
// panels have something to show against a fresh database.
func seedDemo(ctx context.Context, store *query.Store) error {
	const acct = "001A"
	if err := store.UpsertAccount(ctx, acct, widgets.Address{
		Name:       "Acme Corporation",
		Street:     "1 Main St",
		City:       "Springfield",
		State:      "IL",
		PostalCode: "62701",
		Country:    "USA",
	}); err != nil {
		return err
	}
	opps := []query.Opportunity{
		{ID: "006A", AccountID: acct, Name: "Acme onboarding", Type: "New Customer", StageName: "Closed Won", Amount: 12500, CloseDate: "2024-01-18", IsWon: true, IsClosed: true},
		{ID: "006B", AccountID: acct, Name: "Acme renewal", Type: "Renewal", StageName: "Closed Won", Amount: 8000, CloseDate: "2024-02-09", IsWon: true, IsClosed: true},
		{ID: "006C", AccountID: acct, Name: "Acme seats", Type: "Upsell", StageName: "Closed Won", Amount: 4250.75, CloseDate: "2024-02-27", IsWon: true, IsClosed: true},
		{ID: "006D", AccountID: acct, Name: "Acme analytics", Type: "Upsell", StageName: "Negotiation", Amount: 30000, CloseDate: "2024-04-30"},
		{ID: "006E", AccountID: acct, Name: "Acme EMEA", Type: "New Customer", StageName: "Closed Lost", Amount: 15000, CloseDate: "2024-03-12", IsClosed: true},
	}
	for _, o := range opps {
		if err := store.AddOpportunity(ctx, o); err != nil {
			return err
		}
	}
	acts := []widgets.Activity{
		{ID: "00TA", Type: "task", Subject: "Send renewal quote", Priority: "High", ActivityDate: "2024-02-05"},
		{ID: "00UA", Type: "event", Subject: "Quarterly review", Priority: "Normal", ActivityDate: "2024-03-01"},
		{ID: "02sA", Type: "email", Subject: "Analytics pricing", Priority: "Normal", ActivityDate: "2024-03-20"},
	}
	for _, a := range acts {
		if err := store.AddActivity(ctx, acct, a); err != nil {
			return err
		}
	}
	return nil
}
