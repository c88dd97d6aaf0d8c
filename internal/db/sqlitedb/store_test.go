package sqlitedb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/vowlist/core/internal/model"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createWedding(t *testing.T, store *WeddingStore, wedding *model.Wedding) *model.Wedding {
	t.Helper()
	if _, err := store.CreateWedding(context.Background(), wedding); err != nil {
		t.Fatalf("create wedding: %v", err)
	}
	return wedding
}

func TestMigrate_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer db.Close()

	var version int
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&version); err != nil {
		t.Fatalf("read version: %v", err)
	}
	if want := migrations[len(migrations)-1].version; version != want {
		t.Fatalf("schema version: got %d, want %d", version, want)
	}
}

func TestWeddingStore_Create(t *testing.T) {
	db := testDB(t)
	store := NewWeddingStore(db)
	ctx := context.Background()

	wedding := createWedding(t, store, &model.Wedding{
		BrideName: "Ana Clara", GroomName: "Bruno", WeddingDate: "2026-12-25",
	})

	if wedding.ID == uuid.Nil {
		t.Fatal("no id assigned")
	}
	if !wedding.Active {
		t.Fatal("new wedding not active")
	}
	if wedding.ColorScheme != model.DefaultColorScheme {
		t.Errorf("defaults not applied: %q", wedding.ColorScheme)
	}
	if wedding.Slug == "" {
		t.Fatal("no slug derived")
	}

	got, err := store.GetWeddingBySlug(ctx, wedding.Slug)
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if got.ID != wedding.ID || got.BrideName != "Ana Clara" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestWeddingStore_CreateValidates(t *testing.T) {
	store := NewWeddingStore(testDB(t))
	_, err := store.CreateWedding(context.Background(), &model.Wedding{GroomName: "Bruno"})
	if !model.IsKind(err, model.ErrorKindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestWeddingStore_SlugConflict(t *testing.T) {
	store := NewWeddingStore(testDB(t))
	ctx := context.Background()

	createWedding(t, store, &model.Wedding{BrideName: "Ana", GroomName: "Bruno", Slug: "taken"})

	_, err := store.CreateWedding(ctx, &model.Wedding{BrideName: "Clara", GroomName: "Davi", Slug: "taken"})
	if !model.IsKind(err, model.ErrorKindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Deactivating the holder does not free the slug.
	inactive := false
	holder, err := store.GetWeddingBySlug(ctx, "taken")
	if err != nil {
		t.Fatalf("get holder: %v", err)
	}
	if _, err := store.UpdateWedding(ctx, holder.ID, model.WeddingUpdate{Active: &inactive}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	_, err = store.CreateWedding(ctx, &model.Wedding{BrideName: "Clara", GroomName: "Davi", Slug: "taken"})
	if !model.IsKind(err, model.ErrorKindConflict) {
		t.Fatalf("expected conflict against inactive holder, got %v", err)
	}
}

func TestWeddingStore_ListSkipsInactive(t *testing.T) {
	store := NewWeddingStore(testDB(t))
	ctx := context.Background()

	active := createWedding(t, store, &model.Wedding{BrideName: "Ana", GroomName: "Bruno", Slug: "active"})
	hidden := createWedding(t, store, &model.Wedding{BrideName: "Clara", GroomName: "Davi", Slug: "hidden"})

	off := false
	if _, err := store.UpdateWedding(ctx, hidden.ID, model.WeddingUpdate{Active: &off}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	weddings, err := store.ListWeddings(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(weddings) != 1 || weddings[0].ID != active.ID {
		t.Fatalf("expected only the active wedding, got %d", len(weddings))
	}

	// The public lookup hides it too, by id it stays reachable.
	if _, err := store.GetWeddingBySlug(ctx, "hidden"); !model.IsKind(err, model.ErrorKindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := store.GetWeddingByID(ctx, hidden.ID); err != nil {
		t.Fatalf("get by id: %v", err)
	}
}

func TestWeddingStore_UpdateMerges(t *testing.T) {
	store := NewWeddingStore(testDB(t))
	ctx := context.Background()

	wedding := createWedding(t, store, &model.Wedding{
		BrideName: "Ana", GroomName: "Bruno", VenueName: "Old Hall", Slug: "ana-bruno",
	})

	updated, err := store.UpdateWedding(ctx, wedding.ID, model.WeddingUpdate{VenueName: "New Hall"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.VenueName != "New Hall" {
		t.Errorf("venue: got %q", updated.VenueName)
	}
	if updated.BrideName != "Ana" {
		t.Errorf("empty field overwrote bride: %q", updated.BrideName)
	}
	if updated.Slug != "ana-bruno" {
		t.Errorf("slug changed: %q", updated.Slug)
	}

	_, err = store.UpdateWedding(ctx, uuid.New(), model.WeddingUpdate{VenueName: "x"})
	if !model.IsKind(err, model.ErrorKindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWeddingStore_DeleteCascades(t *testing.T) {
	db := testDB(t)
	weddings := NewWeddingStore(db)
	guests := NewGuestStore(db)
	ctx := context.Background()

	wedding := createWedding(t, weddings, &model.Wedding{BrideName: "Ana", GroomName: "Bruno", Slug: "ana-bruno"})
	for _, phone := range []string{"111", "222"} {
		_, err := guests.CreateGuest(ctx, &model.Guest{
			WeddingID: wedding.ID, Name: "Guest " + phone, Adults: 1,
			AdultNames: []string{"Guest"}, Phone: phone,
		})
		if err != nil {
			t.Fatalf("create guest: %v", err)
		}
	}

	removed, err := weddings.DeleteWedding(ctx, wedding.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed rows: got %d, want 3", removed)
	}

	left, err := guests.ListGuestsByWedding(ctx, wedding.ID)
	if err != nil {
		t.Fatalf("list guests: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("guests survived the delete: %d", len(left))
	}

	if _, err := weddings.DeleteWedding(ctx, wedding.ID); !model.IsKind(err, model.ErrorKindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestGuestStore_PhoneDedup(t *testing.T) {
	db := testDB(t)
	weddings := NewWeddingStore(db)
	guests := NewGuestStore(db)
	ctx := context.Background()

	first := createWedding(t, weddings, &model.Wedding{BrideName: "Ana", GroomName: "Bruno", Slug: "first"})
	second := createWedding(t, weddings, &model.Wedding{BrideName: "Clara", GroomName: "Davi", Slug: "second"})

	guest := &model.Guest{
		WeddingID: first.ID, Name: "Carlos", Adults: 1,
		AdultNames: []string{"Carlos"}, Phone: "11999990000",
	}
	if _, err := guests.CreateGuest(ctx, guest); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := &model.Guest{
		WeddingID: first.ID, Name: "Impostor", Adults: 1,
		AdultNames: []string{"Impostor"}, Phone: "11999990000",
	}
	if _, err := guests.CreateGuest(ctx, dup); !model.IsKind(err, model.ErrorKindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// The same phone is fine on another wedding.
	other := &model.Guest{
		WeddingID: second.ID, Name: "Carlos", Adults: 1,
		AdultNames: []string{"Carlos"}, Phone: "11999990000",
	}
	if _, err := guests.CreateGuest(ctx, other); err != nil {
		t.Fatalf("create on second wedding: %v", err)
	}

	existing, err := guests.CheckPhoneExists(ctx, first.ID, "11999990000")
	if err != nil {
		t.Fatalf("check phone: %v", err)
	}
	if existing == nil || existing.Name != "Carlos" {
		t.Fatalf("expected the original guest, got %+v", existing)
	}

	none, err := guests.CheckPhoneExists(ctx, first.ID, "000")
	if err != nil {
		t.Fatalf("check unknown phone: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil for unknown phone, got %+v", none)
	}
}

func TestGuestStore_RoundTrip(t *testing.T) {
	db := testDB(t)
	weddings := NewWeddingStore(db)
	guests := NewGuestStore(db)
	ctx := context.Background()

	wedding := createWedding(t, weddings, &model.Wedding{BrideName: "Ana", GroomName: "Bruno", Slug: "ana-bruno"})

	guest := &model.Guest{
		WeddingID: wedding.ID, Name: "Carlos",
		Adults: 2, AdultNames: []string{"Carlos", "Julia"},
		Children: 1, ChildrenDetails: []model.ChildDetail{{Name: "Pedro", Over6: true}},
		Phone: "111",
	}
	id, err := guests.CreateGuest(ctx, guest)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := guests.GetGuestByID(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.WeddingSlug != "ana-bruno" {
		t.Errorf("wedding slug: got %q", got.WeddingSlug)
	}
	if len(got.AdultNames) != 2 || got.AdultNames[1] != "Julia" {
		t.Errorf("adult names: got %v", got.AdultNames)
	}
	if len(got.ChildrenDetails) != 1 || !got.ChildrenDetails[0].Over6 {
		t.Errorf("child details: got %v", got.ChildrenDetails)
	}

	if err := guests.DeleteGuest(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := guests.DeleteGuest(ctx, id); !model.IsKind(err, model.ErrorKindNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestGuestStore_Stats(t *testing.T) {
	db := testDB(t)
	weddings := NewWeddingStore(db)
	guests := NewGuestStore(db)
	ctx := context.Background()

	wedding := createWedding(t, weddings, &model.Wedding{BrideName: "Ana", GroomName: "Bruno", Slug: "ana-bruno"})

	seed := []*model.Guest{
		{
			WeddingID: wedding.ID, Name: "Family", Phone: "111",
			Adults: 2, AdultNames: []string{"A", "B"},
			Children: 2, ChildrenDetails: []model.ChildDetail{
				{Name: "Pedro", Over6: true}, {Name: "Lia"},
			},
		},
		{
			WeddingID: wedding.ID, Name: "Solo", Phone: "222",
			Adults: 1, AdultNames: []string{"C"},
		},
	}
	for _, g := range seed {
		if _, err := guests.CreateGuest(ctx, g); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	stats, err := guests.GuestStats(ctx, wedding.ID)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := model.GuestStats{
		Confirmations: 2, Adults: 3, Children: 2, People: 5,
		ChildrenOver6: 1, ChildrenUnder6: 1,
	}
	if *stats != want {
		t.Fatalf("got %+v, want %+v", *stats, want)
	}

	empty, err := guests.GuestStats(ctx, uuid.New())
	if err != nil {
		t.Fatalf("stats of unknown wedding: %v", err)
	}
	if *empty != (model.GuestStats{}) {
		t.Fatalf("expected zero stats, got %+v", *empty)
	}
}

func TestAdminStore_Ensure(t *testing.T) {
	store := NewAdminStore(testDB(t))
	ctx := context.Background()

	admin, err := model.NewAdminUser("admin", "secret")
	if err != nil {
		t.Fatalf("new admin: %v", err)
	}
	if err := store.EnsureAdmin(ctx, admin); err != nil {
		t.Fatalf("first ensure: %v", err)
	}

	again, err := model.NewAdminUser("admin", "other")
	if err != nil {
		t.Fatalf("new admin: %v", err)
	}
	if err := store.EnsureAdmin(ctx, again); err != nil {
		t.Fatalf("second ensure: %v", err)
	}

	got, err := store.GetAdminByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.CheckPassword("secret") {
		t.Fatal("first password no longer valid, ensure overwrote the account")
	}

	if _, err := store.GetAdminByUsername(ctx, "nobody"); !model.IsKind(err, model.ErrorKindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
