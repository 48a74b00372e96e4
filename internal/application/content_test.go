package application

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/nthomsencph/wikiworlds/internal/adapters/db/sqlite"
	"github.com/nthomsencph/wikiworlds/internal/domain"
)

type serviceFixture struct {
	content  *ContentService
	identity domain.Identity
	world    domain.World
	typeID   uuid.UUID
}

func newServiceFixture(t *testing.T) (context.Context, serviceFixture) {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "wikiworlds_test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := sqlite.RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	repo := sqlite.NewRepository(db)

	auth := NewAuthService(repo)
	tenancy := NewTenancyService(repo, auth)
	content := NewContentService(repo, repo, tenancy, auth)

	user, err := repo.CreateUser(ctx, domain.User{Email: "author@example.com", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	weave, err := repo.CreateWeave(ctx, domain.Weave{Name: "Middle Earth Press", Slug: "middle-earth-press", CreatedBy: user.ID})
	if err != nil {
		t.Fatalf("create weave: %v", err)
	}
	world, err := repo.CreateWorld(ctx, domain.World{
		WeaveID:   weave.ID,
		Name:      "Arda",
		Slug:      "arda",
		CreatedBy: user.ID,
	}, domain.DefaultEntryTypes)
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	entryType, err := repo.GetEntryTypeBySlug(ctx, world.ID, "locations")
	if err != nil {
		t.Fatalf("get seeded entry type: %v", err)
	}

	identity := domain.Identity{
		User:   user,
		Weaves: map[uuid.UUID]string{weave.ID: "owner"},
		Worlds: map[uuid.UUID]string{world.ID: "admin"},
	}
	return ctx, serviceFixture{content: content, identity: identity, world: world, typeID: entryType.ID}
}

func (f serviceFixture) mustCreateEntry(t *testing.T, ctx context.Context, title string, parentID *uuid.UUID) domain.Entry {
	t.Helper()
	entry, err := f.content.CreateEntry(ctx, f.identity, domain.Entry{
		WorldID:     f.world.ID,
		EntryTypeID: f.typeID,
		Title:       title,
	}, parentID)
	if err != nil {
		t.Fatalf("create entry %q: %v", title, err)
	}
	return entry
}

func TestNonRecursiveDeleteLeavesDescendantsLive(t *testing.T) {
	ctx, f := newServiceFixture(t)

	kingdom := f.mustCreateEntry(t, ctx, "Gondor", nil)
	city := f.mustCreateEntry(t, ctx, "Minas Tirith", &kingdom.ID)
	ward := f.mustCreateEntry(t, ctx, "First Circle", &city.ID)
	sibling := f.mustCreateEntry(t, ctx, "Rohan", nil)

	if err := f.content.DeleteEntry(ctx, f.identity, kingdom.ID, false); err != nil {
		t.Fatalf("non-recursive delete with children must succeed: %v", err)
	}

	if _, err := f.content.GetEntry(ctx, f.identity, kingdom.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deleted entry still readable (err=%v)", err)
	}

	// Descendants stay live with their paths intact, even though their
	// ancestor is hidden.
	cityAfter, err := f.content.GetEntry(ctx, f.identity, city.ID)
	if err != nil {
		t.Fatalf("child must survive a non-recursive delete: %v", err)
	}
	if cityAfter.Path != city.Path {
		t.Fatalf("child path changed from %q to %q", city.Path, cityAfter.Path)
	}
	if _, err := f.content.GetEntry(ctx, f.identity, ward.ID); err != nil {
		t.Fatalf("grandchild must survive a non-recursive delete: %v", err)
	}

	grandchildren, err := f.content.ListChildren(ctx, f.identity, city.ID, false)
	if err != nil {
		t.Fatalf("list children of surviving child: %v", err)
	}
	if len(grandchildren) != 1 || grandchildren[0].ID != ward.ID {
		t.Fatalf("surviving subtree lost its shape: %+v", grandchildren)
	}

	if _, err := f.content.GetEntry(ctx, f.identity, sibling.ID); err != nil {
		t.Fatalf("sibling affected by non-recursive delete: %v", err)
	}
	roots, err := f.content.ListRootEntries(ctx, f.identity, f.world.ID, nil)
	if err != nil {
		t.Fatalf("list roots: %v", err)
	}
	if len(roots) != 1 || roots[0].ID != sibling.ID {
		t.Fatalf("expected only the sibling at root, got %+v", roots)
	}
}
