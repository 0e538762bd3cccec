package storage

import (
	"testing"

	"github.com/abbasi303/Marketting-dashboard/internal/models"
)

func TestCostTableReplace(t *testing.T) {
	tbl := NewCostTable()

	if got := tbl.Snapshot(); len(got) != 0 {
		t.Errorf("empty table snapshot = %v, want no rates", got)
	}

	tbl.Replace([]models.CostRate{
		{Campaign: "summer", Channel: "email", CPC: 0.5, CPM: 2},
		{Campaign: "summer", Channel: "social", CPC: 0.8, CPM: 3},
	})
	if got := tbl.Snapshot(); len(got) != 2 {
		t.Fatalf("snapshot after Replace = %d rates, want 2", len(got))
	}

	tbl.Replace([]models.CostRate{{Campaign: "winter", Channel: "social", CPC: 1, CPM: 1}})
	snap := tbl.Snapshot()
	if len(snap) != 1 || snap[0].Campaign != "winter" {
		t.Errorf("Replace must drop previous rates wholesale, got %v", snap)
	}
}

func TestCostTableSnapshotIsCopy(t *testing.T) {
	tbl := NewCostTable()
	tbl.Replace([]models.CostRate{{Campaign: "summer", Channel: "email", CPC: 0.5}})

	snap := tbl.Snapshot()
	snap[0].CPC = 99

	if got := tbl.Snapshot()[0].CPC; got != 0.5 {
		t.Errorf("mutating a snapshot must not affect the table, CPC = %v", got)
	}
}

func TestCostTableReplaceCopiesInput(t *testing.T) {
	tbl := NewCostTable()
	rates := []models.CostRate{{Campaign: "summer", Channel: "email", CPC: 0.5}}
	tbl.Replace(rates)

	rates[0].CPC = 99
	if got := tbl.Snapshot()[0].CPC; got != 0.5 {
		t.Errorf("mutating the caller's slice must not affect the table, CPC = %v", got)
	}
}
