package storage

import (
	"path/filepath"
	"testing"

	"automailer/internal"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCampaignLifecycle(t *testing.T) {
	db := openTestDB(t)

	id, err := db.InsertCampaign(internal.ModePersonal, "", "file:sales.xlsx", nil)
	if err != nil {
		t.Fatal(err)
	}

	outcomes := []internal.RowOutcome{
		{RowNo: 1, Accepted: true, Record: &internal.NormalizedRecord{
			DisplayName:  "John Smith",
			Address:      internal.CanonicalAddress{Lines: []string{"123 Main St"}, CityStateZip: "Vero Beach, FL 32960"},
			Zip:          "32960",
			CityStateZip: "Vero Beach, FL 32960",
			SaleDate:     "January 15, 2024",
			SalePrice:    450000,
			Mode:         internal.ModePersonal,
		}},
		{RowNo: 2, Reason: internal.SkipNotOwnerOccupied, Detail: "77 Ocean Dr"},
	}
	if err := db.SaveOutcomes(id, outcomes); err != nil {
		t.Fatal(err)
	}
	// re-saving the same pass upserts rather than duplicating contacts
	if err := db.SaveOutcomes(id, outcomes[:1]); err != nil {
		t.Fatal(err)
	}
	if err := db.UpdateCampaignStatus(id, "completed"); err != nil {
		t.Fatal(err)
	}

	contacts, err := db.GetContacts(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(contacts) != 1 || contacts[0].Name != "John Smith" {
		t.Fatalf("unexpected contacts: %+v", contacts)
	}

	campaign, err := db.GetCampaignByID(id)
	if err != nil {
		t.Fatal(err)
	}
	if campaign == nil || campaign.Status != "completed" {
		t.Fatalf("unexpected campaign: %+v", campaign)
	}

	listed, err := db.ListCampaignsByStatus("completed", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 {
		t.Fatalf("unexpected listing: %+v", listed)
	}
}

func TestDropUpsert(t *testing.T) {
	db := openTestDB(t)

	drop, err := db.UpsertDrop("gmail", "<m1@example>", "July Sales", "gis@county.example", "2026-07-01T00:00:00Z", "hash1", "/tmp/h1.eml", "fetched")
	if err != nil {
		t.Fatal(err)
	}
	if drop.ID == 0 || drop.Status != "fetched" {
		t.Fatalf("unexpected drop: %+v", drop)
	}

	// same provider+messageId updates in place
	again, err := db.UpsertDrop("gmail", "<m1@example>", "July Sales (resend)", "gis@county.example", "2026-07-02T00:00:00Z", "hash2", "/tmp/h2.eml", "fetched")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != drop.ID || again.Hash != "hash2" {
		t.Fatalf("expected in-place update: %+v", again)
	}

	if err := db.UpdateDropStatus(drop.ID, "processed"); err != nil {
		t.Fatal(err)
	}
	pending, err := db.ListDropsByStatus("fetched", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending drops: %+v", pending)
	}

	if _, err := db.MustDropByProviderMessageID("gmail", "<missing@example>"); err == nil {
		t.Fatal("expected error for missing drop")
	}
}

func TestClientReplaceAndUpsert(t *testing.T) {
	db := openTestDB(t)

	if err := db.ReplaceClients([]internal.ClientRecord{
		{Name: "John Smith", MailingAddress: "123 Main St"},
		{Name: "Jane Doe", MailingAddress: "44 Palm Ct"},
	}); err != nil {
		t.Fatal(err)
	}
	clients, err := db.ListClients()
	if err != nil {
		t.Fatal(err)
	}
	if len(clients) != 2 {
		t.Fatalf("unexpected clients: %+v", clients)
	}

	// replace swaps the whole roster
	if err := db.ReplaceClients([]internal.ClientRecord{
		{Name: "Robert Wilson", MailingAddress: "7 Dune Rd"},
	}); err != nil {
		t.Fatal(err)
	}
	clients, err = db.ListClients()
	if err != nil {
		t.Fatal(err)
	}
	if len(clients) != 1 || clients[0].Name != "Robert Wilson" {
		t.Fatalf("unexpected clients: %+v", clients)
	}

	ext := "c-1"
	if err := db.UpsertClients([]internal.ClientRecord{{ExternalID: &ext, Name: "Synced Client", MailingAddress: "9 Bay St"}}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertClients([]internal.ClientRecord{{ExternalID: &ext, Name: "Synced Client", MailingAddress: "10 Bay St"}}); err != nil {
		t.Fatal(err)
	}
	clients, err = db.ListClients()
	if err != nil {
		t.Fatal(err)
	}
	if len(clients) != 2 {
		t.Fatalf("upsert should not duplicate: %+v", clients)
	}
}

func TestZipEntriesAndMetadata(t *testing.T) {
	db := openTestDB(t)

	if err := db.ReplaceZipEntries(map[string]string{"32960": "Vero Beach, FL"}); err != nil {
		t.Fatal(err)
	}
	entries, err := db.ListZipEntries()
	if err != nil {
		t.Fatal(err)
	}
	if entries["32960"] != "Vero Beach, FL" {
		t.Fatalf("unexpected entries: %+v", entries)
	}

	if err := db.SetMetadata("roster.last_full_sync", "2026-09-01T00:00:00Z"); err != nil {
		t.Fatal(err)
	}
	value, err := db.GetMetadata("roster.last_full_sync")
	if err != nil {
		t.Fatal(err)
	}
	if value == nil || *value != "2026-09-01T00:00:00Z" {
		t.Fatalf("unexpected value: %v", value)
	}

	missing, err := db.GetMetadata("nope")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing key, got %v", missing)
	}
}
