package importing

import (
	"strings"
	"testing"

	"donation-import-backend/internal/models"
)

const exportHeader = "charge_id,subscription_id,customer_id,invoice_id,amount,currency,date,status,nickname,description,metadata,customer_name,customer_email,customer_phone,customer_address"

func exportCSV(rows ...string) string {
	return exportHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

func newTestOrchestrator() (*Orchestrator, *memDB) {
	db := &memDB{}
	return NewOrchestrator(&memTx{db: db}, &memBatches{db: db}), db
}

func TestRunSponsorshipScenario(t *testing.T) {
	o, db := newTestOrchestrator()
	csv := exportCSV(
		`ch_1,sub_1,cus_1,inv_1,50.00,usd,2026-01-15,succeeded,Monthly Sponsorship Donation for Sangwan,,,Jordan Donor,donor@example.org,,`,
	)

	summary, err := o.Run("export.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 1 || summary.DonationsCreated() != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	if len(db.children) != 1 || db.children[0].Name != "Sangwan" {
		t.Fatalf("expected child Sangwan created, got %+v", db.children)
	}
	if len(db.projects) != 1 || db.projects[0].Title != "Sponsor Sangwan" ||
		db.projects[0].Type != models.ProjectTypeSponsorship {
		t.Fatalf("expected sponsorship project, got %+v", db.projects)
	}
	if len(db.donations) != 1 {
		t.Fatalf("expected one donation, got %d", len(db.donations))
	}
	d := db.donations[0]
	if d.Amount != 5000 {
		t.Errorf("amount = %d, want 5000", d.Amount)
	}
	if d.Status != models.StatusSucceeded {
		t.Errorf("status = %q", d.Status)
	}
	if d.ChildID == nil || *d.ChildID != db.children[0].ID {
		t.Errorf("donation not linked to Sangwan")
	}
	if d.ProjectID == nil || *d.ProjectID != db.projects[0].ID {
		t.Errorf("donation not linked to sponsorship project")
	}
}

func TestRunMetadataChildWinsOverLabel(t *testing.T) {
	o, db := newTestOrchestrator()
	db.children = append(db.children, &models.Child{Name: "Lina"})
	csv := exportCSV(
		`ch_1,,,,25.00,usd,2026-01-15,succeeded,Donation for Maria,,"{""child_name"": ""Lina""}",,a@example.org,,`,
	)

	summary, err := o.Run("export.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.NeedsAttention != 0 {
		t.Fatalf("resolvable metadata child flagged: %+v", summary.Errors)
	}
	for _, c := range db.children {
		if c.Name == "Maria" {
			t.Errorf("label text created a child despite metadata reference")
		}
	}
}

func TestRunUnrecognizedStatus(t *testing.T) {
	o, db := newTestOrchestrator()
	csv := exportCSV(
		`ch_1,,,,10.00,usd,2026-01-15,disputed,General donation,,,,b@example.org,,`,
	)

	summary, err := o.Run("export.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.NeedsAttention != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	d := db.donations[0]
	if d.Status != models.StatusNeedsAttention {
		t.Errorf("status = %q", d.Status)
	}
	if d.NeedsAttentionReason == nil || !strings.Contains(*d.NeedsAttentionReason, "unrecognized status: disputed") {
		t.Errorf("reason = %v", d.NeedsAttentionReason)
	}
}

func TestRunSameInvoiceDuplicates(t *testing.T) {
	o, db := newTestOrchestrator()
	csv := exportCSV(
		`ch_1,,,inv_1,30.00,usd,2026-01-15,succeeded,Sponsorship for Maria,,,,c@example.org,,`,
		`ch_2,,,inv_1,30.00,usd,2026-01-15,succeeded,Gift for Maria,,,,c@example.org,,`,
	)

	summary, err := o.Run("export.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.NeedsAttention != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(db.donations) != 2 {
		t.Fatalf("colliding rows must both persist, got %d", len(db.donations))
	}
	for i, d := range db.donations {
		if !d.DuplicateFlag {
			t.Errorf("donation %d duplicate flag not set", i)
		}
		if d.Status != models.StatusNeedsAttention {
			t.Errorf("donation %d status = %q", i, d.Status)
		}
		if d.NeedsAttentionReason == nil || !strings.Contains(*d.NeedsAttentionReason, "see row") {
			t.Errorf("donation %d reason = %v", i, d.NeedsAttentionReason)
		}
	}
	// Each reason points at the other row.
	if !strings.Contains(*db.donations[0].NeedsAttentionReason, "see row 2") {
		t.Errorf("row 1 reason = %q", *db.donations[0].NeedsAttentionReason)
	}
	if !strings.Contains(*db.donations[1].NeedsAttentionReason, "see row 1") {
		t.Errorf("row 2 reason = %q", *db.donations[1].NeedsAttentionReason)
	}
	// Same child, same invoice: one child record, one project.
	if len(db.children) != 1 {
		t.Errorf("expected one child, got %d", len(db.children))
	}
	if len(db.projects) != 1 {
		t.Errorf("expected one reused project, got %d", len(db.projects))
	}
}

func TestRunRowFailureDoesNotAbort(t *testing.T) {
	o, db := newTestOrchestrator()
	csv := exportCSV(
		`ch_1,,,,not-a-number,usd,2026-01-15,succeeded,General donation,,,,d@example.org,,`,
		`ch_2,,,,20.00,usd,2026-01-15,succeeded,General donation,,,,d@example.org,,`,
	)

	summary, err := o.Run("export.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("a bad row must not abort the run: %v", err)
	}
	if len(summary.Errors) != 1 {
		t.Fatalf("errors = %+v", summary.Errors)
	}
	if summary.Errors[0].RowNumber != 1 {
		t.Errorf("error row = %d, want 1", summary.Errors[0].RowNumber)
	}
	if summary.Succeeded != 1 || len(db.donations) != 1 {
		t.Errorf("good row not processed: %+v", summary)
	}
	if summary.TotalRows != 2 {
		t.Errorf("total rows = %d, want 2", summary.TotalRows)
	}
}

func TestRunBrokenHeaderAborts(t *testing.T) {
	o, db := newTestOrchestrator()
	csv := "completely,unrelated,columns\nx,y,z\n"

	if _, err := o.Run("export.csv", strings.NewReader(csv)); err == nil {
		t.Fatalf("expected a file-level schema error")
	}
	if len(db.batches) != 1 || db.batches[0].Status != "failed" {
		t.Errorf("batch should be marked failed: %+v", db.batches)
	}
	if len(db.donations) != 0 {
		t.Errorf("no donations should be created")
	}
}

func TestRunIsAdditiveAcrossRuns(t *testing.T) {
	o, db := newTestOrchestrator()
	csv := exportCSV(
		`ch_1,,,,15.00,usd,2026-01-15,succeeded,Sponsorship for Mai,,,,e@example.org,,`,
	)

	for i := 0; i < 2; i++ {
		if _, err := o.Run("export.csv", strings.NewReader(csv)); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	// No external-id dedup: re-running the same file adds donations.
	if len(db.donations) != 2 {
		t.Fatalf("expected 2 donations after two runs, got %d", len(db.donations))
	}
	// But the child and project are reused, not recreated.
	if len(db.children) != 1 {
		t.Errorf("child recreated across runs: %d records", len(db.children))
	}
	if len(db.projects) != 1 {
		t.Errorf("second sponsorship project created: %+v", db.projects)
	}
	if *db.donations[0].ProjectID != *db.donations[1].ProjectID {
		t.Errorf("donations reference different projects across runs")
	}
}

func TestRunFinalizesBatchRecord(t *testing.T) {
	o, db := newTestOrchestrator()
	csv := exportCSV(
		`ch_1,,,,10.00,usd,2026-01-15,succeeded,General donation,,,,f@example.org,,`,
		`ch_2,,,,10.00,usd,2026-01-15,refunded,General donation,,,,f@example.org,,`,
		`ch_3,,,,bogus,usd,2026-01-15,succeeded,General donation,,,,f@example.org,,`,
	)

	summary, err := o.Run("export.csv", strings.NewReader(csv))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(db.batches) != 1 {
		t.Fatalf("expected one batch record")
	}
	batch := db.batches[0]
	if batch.Status != "completed" {
		t.Errorf("batch status = %q", batch.Status)
	}
	if batch.TotalRows != 3 || batch.SucceededCount != 1 || batch.RefundedCount != 1 || batch.ErrorCount != 1 {
		t.Errorf("batch counts = %+v", batch)
	}
	if batch.CompletedAt == nil {
		t.Errorf("batch completion time not set")
	}
	if summary.BatchID != batch.ID {
		t.Errorf("summary batch id mismatch")
	}
}
