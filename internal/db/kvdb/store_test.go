package kvdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/vowlist/core/internal/model"
)

func testDB(t *testing.T) *bolt.DB {
	t.Helper()
	db, err := bolt.Open(filepath.Join(t.TempDir(), "test.db"), 0600, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testStores(t *testing.T) (*WeddingStore, *GuestStore) {
	t.Helper()
	db := testDB(t)
	weddings, err := NewWeddingStore(db)
	if err != nil {
		t.Fatalf("wedding store: %v", err)
	}
	guests, err := NewGuestStore(db)
	if err != nil {
		t.Fatalf("guest store: %v", err)
	}
	return weddings, guests
}

func TestWeddingStore_CreateAndLookup(t *testing.T) {
	weddings, _ := testStores(t)
	ctx := context.Background()

	wedding := &model.Wedding{BrideName: "Ana", GroomName: "Bruno", Slug: "ana-bruno"}
	id, err := weddings.CreateWedding(ctx, wedding)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !wedding.Active {
		t.Fatal("new wedding not active")
	}
	if wedding.ColorScheme != model.DefaultColorScheme {
		t.Errorf("defaults not applied: %q", wedding.ColorScheme)
	}

	got, err := weddings.GetWeddingBySlug(ctx, "ana-bruno")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if got.ID != id {
		t.Fatalf("id mismatch: %s vs %s", got.ID, id)
	}

	if _, err := weddings.GetWeddingBySlug(ctx, "unknown"); !model.IsKind(err, model.ErrorKindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWeddingStore_SlugConflict(t *testing.T) {
	weddings, _ := testStores(t)
	ctx := context.Background()

	if _, err := weddings.CreateWedding(ctx, &model.Wedding{BrideName: "Ana", GroomName: "Bruno", Slug: "taken"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := weddings.CreateWedding(ctx, &model.Wedding{BrideName: "Clara", GroomName: "Davi", Slug: "taken"})
	if !model.IsKind(err, model.ErrorKindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestWeddingStore_DeactivateHidesFromPublic(t *testing.T) {
	weddings, _ := testStores(t)
	ctx := context.Background()

	wedding := &model.Wedding{BrideName: "Ana", GroomName: "Bruno", Slug: "ana-bruno"}
	id, err := weddings.CreateWedding(ctx, wedding)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	off := false
	if _, err := weddings.UpdateWedding(ctx, id, model.WeddingUpdate{Active: &off}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	if _, err := weddings.GetWeddingBySlug(ctx, "ana-bruno"); !model.IsKind(err, model.ErrorKindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := weddings.GetWeddingByID(ctx, id); err != nil {
		t.Fatalf("get by id should ignore active flag: %v", err)
	}

	list, err := weddings.ListWeddings(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("inactive wedding listed: %d", len(list))
	}

	// The slug stays claimed while the record exists.
	_, err = weddings.CreateWedding(ctx, &model.Wedding{BrideName: "Clara", GroomName: "Davi", Slug: "ana-bruno"})
	if !model.IsKind(err, model.ErrorKindConflict) {
		t.Fatalf("expected conflict against inactive holder, got %v", err)
	}
}

func TestWeddingStore_UpdateMerges(t *testing.T) {
	weddings, _ := testStores(t)
	ctx := context.Background()

	wedding := &model.Wedding{BrideName: "Ana", GroomName: "Bruno", VenueName: "Old Hall", Slug: "ana-bruno"}
	id, err := weddings.CreateWedding(ctx, wedding)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := weddings.UpdateWedding(ctx, id, model.WeddingUpdate{VenueName: "New Hall"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.VenueName != "New Hall" || updated.BrideName != "Ana" {
		t.Fatalf("merge wrong: %+v", updated)
	}

	if _, err := weddings.UpdateWedding(ctx, uuid.New(), model.WeddingUpdate{}); !model.IsKind(err, model.ErrorKindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestWeddingStore_DeleteCascades(t *testing.T) {
	weddings, guests := testStores(t)
	ctx := context.Background()

	wedding := &model.Wedding{BrideName: "Ana", GroomName: "Bruno", Slug: "ana-bruno"}
	id, err := weddings.CreateWedding(ctx, wedding)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, phone := range []string{"111", "222"} {
		_, err := guests.CreateGuest(ctx, &model.Guest{
			WeddingID: id, Name: "Guest", Adults: 1, AdultNames: []string{"G"}, Phone: phone,
		})
		if err != nil {
			t.Fatalf("create guest: %v", err)
		}
	}

	removed, err := weddings.DeleteWedding(ctx, id)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed: got %d, want 3", removed)
	}

	left, err := guests.ListGuestsByWedding(ctx, id)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("guests survived: %d", len(left))
	}

	// The slug is free again after a hard delete.
	if _, err := weddings.CreateWedding(ctx, &model.Wedding{BrideName: "Clara", GroomName: "Davi", Slug: "ana-bruno"}); err != nil {
		t.Fatalf("reuse slug: %v", err)
	}
}

func TestGuestStore_PhoneDedup(t *testing.T) {
	_, guests := testStores(t)
	ctx := context.Background()
	weddingID := uuid.New()
	otherWedding := uuid.New()

	guest := &model.Guest{
		WeddingID: weddingID, Name: "Carlos", Adults: 1,
		AdultNames: []string{"Carlos"}, Phone: "11999990000",
	}
	if _, err := guests.CreateGuest(ctx, guest); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := &model.Guest{WeddingID: weddingID, Name: "Impostor", Adults: 1, AdultNames: []string{"I"}, Phone: "11999990000"}
	if _, err := guests.CreateGuest(ctx, dup); !model.IsKind(err, model.ErrorKindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	other := &model.Guest{WeddingID: otherWedding, Name: "Carlos", Adults: 1, AdultNames: []string{"C"}, Phone: "11999990000"}
	if _, err := guests.CreateGuest(ctx, other); err != nil {
		t.Fatalf("same phone on another wedding: %v", err)
	}

	existing, err := guests.CheckPhoneExists(ctx, weddingID, "11999990000")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if existing == nil || existing.Name != "Carlos" {
		t.Fatalf("expected the original guest, got %+v", existing)
	}

	none, err := guests.CheckPhoneExists(ctx, weddingID, "000")
	if err != nil {
		t.Fatalf("check unknown: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil, got %+v", none)
	}
}

func TestGuestStore_Stats(t *testing.T) {
	_, guests := testStores(t)
	ctx := context.Background()
	weddingID := uuid.New()

	seed := []*model.Guest{
		{
			WeddingID: weddingID, Name: "Family", Phone: "111",
			Adults: 2, AdultNames: []string{"A", "B"},
			Children: 2, ChildrenDetails: []model.ChildDetail{
				{Name: "Pedro", Over6: true}, {Name: "Lia"},
			},
		},
		{WeddingID: weddingID, Name: "Solo", Phone: "222", Adults: 1, AdultNames: []string{"C"}},
	}
	for _, g := range seed {
		if _, err := guests.CreateGuest(ctx, g); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	stats, err := guests.GuestStats(ctx, weddingID)
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
}

func TestGuestStore_Delete(t *testing.T) {
	_, guests := testStores(t)
	ctx := context.Background()

	guest := &model.Guest{WeddingID: uuid.New(), Name: "Carlos", Adults: 1, AdultNames: []string{"C"}, Phone: "111"}
	id, err := guests.CreateGuest(ctx, guest)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := guests.DeleteGuest(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := guests.DeleteGuest(ctx, id); !model.IsKind(err, model.ErrorKindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAdminStore_Ensure(t *testing.T) {
	db := testDB(t)
	store, err := NewAdminStore(db)
	if err != nil {
		t.Fatalf("admin store: %v", err)
	}
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
		t.Fatal("ensure overwrote the existing account")
	}

	if _, err := store.GetAdminByUsername(ctx, "nobody"); !model.IsKind(err, model.ErrorKindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
