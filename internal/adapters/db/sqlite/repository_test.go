package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/nthomsencph/wikiworlds/internal/domain"
	"github.com/nthomsencph/wikiworlds/internal/timeline"
	"github.com/nthomsencph/wikiworlds/internal/treepath"
)

type fixture struct {
	repo      *Repository
	user      domain.User
	weave     domain.Weave
	world     domain.World
	entryType domain.EntryType
}

func newFixture(t *testing.T) (context.Context, fixture) {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "wikiworlds_test.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	repo := NewRepository(db)

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

	return ctx, fixture{repo: repo, user: user, weave: weave, world: world, entryType: entryType}
}

func (f fixture) mustCreateEntry(t *testing.T, ctx context.Context, title string, parentID *uuid.UUID) domain.Entry {
	t.Helper()
	entry, err := f.repo.CreateEntry(ctx, domain.Entry{
		WorldID:     f.world.ID,
		EntryTypeID: f.entryType.ID,
		Title:       title,
		Slug:        domain.Slugify(title),
		CreatedBy:   f.user.ID,
	}, parentID)
	if err != nil {
		t.Fatalf("create entry %q: %v", title, err)
	}
	return entry
}

func TestWorldCreationSeedsTaxonomyAndAdmin(t *testing.T) {
	ctx, f := newFixture(t)

	types, err := f.repo.ListEntryTypes(ctx, f.world.ID, 0, 0)
	if err != nil {
		t.Fatalf("list entry types: %v", err)
	}
	if len(types) != len(domain.DefaultEntryTypes) {
		t.Fatalf("expected %d seeded entry types, got %d", len(domain.DefaultEntryTypes), len(types))
	}

	byName := make(map[string]domain.EntryType, len(types))
	for _, et := range types {
		if !et.IsSystem {
			t.Fatalf("seeded entry type %q is not marked system", et.Name)
		}
		byName[et.Name] = et
	}
	characters, places := byName["Characters"], byName["Places"]
	people := byName["People"]
	if characters.ParentID == nil || *characters.ParentID != people.ID {
		t.Fatalf("Characters should be a child of People")
	}
	if places.ParentID != nil {
		t.Fatalf("Places should be a root category")
	}
	if byName["Natural Features"].Slug != "natural-features" {
		t.Fatalf("unexpected seeded slug %q", byName["Natural Features"].Slug)
	}

	member, err := f.repo.GetWorldUser(ctx, f.world.ID, f.user.ID)
	if err != nil {
		t.Fatalf("get world member: %v", err)
	}
	if member.Role != "admin" {
		t.Fatalf("creator role = %q, want admin", member.Role)
	}
}

func TestEntryTreePathsAndListing(t *testing.T) {
	ctx, f := newFixture(t)

	kingdom := f.mustCreateEntry(t, ctx, "Kingdom of Gondor", nil)
	capital := f.mustCreateEntry(t, ctx, "Minas Tirith", &kingdom.ID)
	district := f.mustCreateEntry(t, ctx, "First Circle", &capital.ID)
	f.mustCreateEntry(t, ctx, "Kingdom of Rohan", nil)

	if treepath.Depth(kingdom.Path) != 0 {
		t.Fatalf("root depth = %d, want 0", treepath.Depth(kingdom.Path))
	}
	if !strings.HasPrefix(capital.Path, kingdom.Path+".") {
		t.Fatalf("child path %q does not extend parent path %q", capital.Path, kingdom.Path)
	}
	if !treepath.IsDescendantOf(district.Path, kingdom.Path) {
		t.Fatalf("grandchild should be a descendant of root")
	}

	roots, err := f.repo.ListRootEntries(ctx, f.world.ID, nil)
	if err != nil {
		t.Fatalf("list roots: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("expected 2 root entries, got %d", len(roots))
	}

	direct, err := f.repo.ListChildren(ctx, kingdom.ID, false)
	if err != nil {
		t.Fatalf("list direct children: %v", err)
	}
	if len(direct) != 1 || direct[0].ID != capital.ID {
		t.Fatalf("direct children of kingdom = %+v, want just the capital", direct)
	}

	subtree, err := f.repo.ListChildren(ctx, kingdom.ID, true)
	if err != nil {
		t.Fatalf("list subtree: %v", err)
	}
	if len(subtree) != 2 {
		t.Fatalf("expected 2 descendants, got %d", len(subtree))
	}

	ancestors, err := f.repo.ListAncestors(ctx, district.ID)
	if err != nil {
		t.Fatalf("list ancestors: %v", err)
	}
	if len(ancestors) != 2 || ancestors[0].ID != kingdom.ID || ancestors[1].ID != capital.ID {
		t.Fatalf("ancestors should be root-to-parent ordered, got %+v", ancestors)
	}

	bySlug, err := f.repo.GetEntryBySlug(ctx, f.world.ID, "minas-tirith")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if bySlug.ID != capital.ID {
		t.Fatalf("slug lookup returned wrong entry")
	}

	_, err = f.repo.CreateEntry(ctx, domain.Entry{
		WorldID:     f.world.ID,
		EntryTypeID: f.entryType.ID,
		Title:       "Another Minas Tirith",
		Slug:        "minas-tirith",
		CreatedBy:   f.user.ID,
	}, nil)
	if !errors.Is(err, domain.ErrDuplicateSlug) {
		t.Fatalf("duplicate slug error = %v, want ErrDuplicateSlug", err)
	}
}

func TestMoveEntryRewritesSubtree(t *testing.T) {
	ctx, f := newFixture(t)

	gondor := f.mustCreateEntry(t, ctx, "Gondor", nil)
	arnor := f.mustCreateEntry(t, ctx, "Arnor", nil)
	city := f.mustCreateEntry(t, ctx, "Osgiliath", &gondor.ID)
	ward := f.mustCreateEntry(t, ctx, "East Bank", &city.ID)

	moved, err := f.repo.MoveEntry(ctx, city.ID, &arnor.ID)
	if err != nil {
		t.Fatalf("move entry: %v", err)
	}
	if !treepath.IsDescendantOf(moved.Path, arnor.Path) {
		t.Fatalf("moved path %q is not under new parent %q", moved.Path, arnor.Path)
	}

	wardAfter, err := f.repo.GetEntry(ctx, ward.ID)
	if err != nil {
		t.Fatalf("get descendant after move: %v", err)
	}
	if !treepath.IsDescendantOf(wardAfter.Path, moved.Path) {
		t.Fatalf("descendant path %q not rewritten under %q", wardAfter.Path, moved.Path)
	}
	if treepath.Depth(wardAfter.Path) != 2 {
		t.Fatalf("descendant depth = %d, want 2", treepath.Depth(wardAfter.Path))
	}

	// Moving an ancestor under its own descendant must fail and leave
	// paths untouched.
	_, err = f.repo.MoveEntry(ctx, arnor.ID, &wardAfter.ID)
	if !errors.Is(err, domain.ErrCircularReference) {
		t.Fatalf("cycle move error = %v, want ErrCircularReference", err)
	}
	arnorAfter, _ := f.repo.GetEntry(ctx, arnor.ID)
	if arnorAfter.Path != arnor.Path {
		t.Fatalf("failed move must not change paths")
	}

	rooted, err := f.repo.MoveEntry(ctx, city.ID, nil)
	if err != nil {
		t.Fatalf("move to root: %v", err)
	}
	if !treepath.IsRoot(rooted.Path) {
		t.Fatalf("expected root path, got %q", rooted.Path)
	}
}

func TestMoveEntryRejectsCrossWorldParent(t *testing.T) {
	ctx, f := newFixture(t)

	other, err := f.repo.CreateWorld(ctx, domain.World{
		WeaveID:   f.weave.ID,
		Name:      "Numenor",
		Slug:      "numenor",
		CreatedBy: f.user.ID,
	}, domain.DefaultEntryTypes)
	if err != nil {
		t.Fatalf("create second world: %v", err)
	}
	otherType, err := f.repo.GetEntryTypeBySlug(ctx, other.ID, "locations")
	if err != nil {
		t.Fatalf("get entry type: %v", err)
	}
	foreign, err := f.repo.CreateEntry(ctx, domain.Entry{
		WorldID:     other.ID,
		EntryTypeID: otherType.ID,
		Title:       "Armenelos",
		Slug:        "armenelos",
		CreatedBy:   f.user.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create foreign entry: %v", err)
	}

	local := f.mustCreateEntry(t, ctx, "Pelargir", nil)
	if _, err := f.repo.MoveEntry(ctx, local.ID, &foreign.ID); !errors.Is(err, domain.ErrCrossWorld) {
		t.Fatalf("cross-world move error = %v, want ErrCrossWorld", err)
	}
	if _, err := f.repo.CreateEntry(ctx, domain.Entry{
		WorldID:     f.world.ID,
		EntryTypeID: f.entryType.ID,
		Title:       "Umbar",
		Slug:        "umbar",
		CreatedBy:   f.user.ID,
	}, &foreign.ID); !errors.Is(err, domain.ErrCrossWorld) {
		t.Fatalf("cross-world create error = %v, want ErrCrossWorld", err)
	}
}

func TestRecursiveDeleteHidesSubtreeOnly(t *testing.T) {
	ctx, f := newFixture(t)

	kingdom := f.mustCreateEntry(t, ctx, "Angmar", nil)
	fort := f.mustCreateEntry(t, ctx, "Carn Dum", &kingdom.ID)
	cellar := f.mustCreateEntry(t, ctx, "Deep Cellar", &fort.ID)
	sibling := f.mustCreateEntry(t, ctx, "Forodwaith", nil)

	if err := f.repo.DeleteEntry(ctx, kingdom.ID, true); err != nil {
		t.Fatalf("recursive delete: %v", err)
	}

	for _, id := range []uuid.UUID{kingdom.ID, fort.ID, cellar.ID} {
		if _, err := f.repo.GetEntry(ctx, id); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("deleted entry %s still readable (err=%v)", id, err)
		}
	}
	if _, err := f.repo.GetEntry(ctx, sibling.ID); err != nil {
		t.Fatalf("sibling affected by recursive delete: %v", err)
	}

	roots, err := f.repo.ListRootEntries(ctx, f.world.ID, nil)
	if err != nil {
		t.Fatalf("list roots: %v", err)
	}
	if len(roots) != 1 || roots[0].ID != sibling.ID {
		t.Fatalf("expected only the sibling at root, got %+v", roots)
	}
}

func TestFieldValueVersioning(t *testing.T) {
	ctx, f := newFixture(t)

	entry := f.mustCreateEntry(t, ctx, "Aragorn", nil)
	ruler, err := f.repo.CreateFieldDefinition(ctx, domain.FieldDefinition{
		EntryTypeID: f.entryType.ID,
		Name:        "Title",
		Slug:        "title",
		FieldType:   domain.FieldText,
		IsTemporal:  true,
	})
	if err != nil {
		t.Fatalf("create field definition: %v", err)
	}
	bio, err := f.repo.CreateFieldDefinition(ctx, domain.FieldDefinition{
		EntryTypeID: f.entryType.ID,
		Name:        "Bio",
		Slug:        "bio",
		FieldType:   domain.FieldLongText,
	})
	if err != nil {
		t.Fatalf("create field definition: %v", err)
	}

	// Unbounded writes replace the single current row.
	if _, err := f.repo.SetFieldValue(ctx, domain.FieldValue{
		EntryID:           entry.ID,
		FieldDefinitionID: bio.ID,
		Value:             map[string]any{"text": "A ranger from the north."},
		CreatedBy:         f.user.ID,
	}); err != nil {
		t.Fatalf("set field value: %v", err)
	}
	if _, err := f.repo.SetFieldValue(ctx, domain.FieldValue{
		EntryID:           entry.ID,
		FieldDefinitionID: bio.ID,
		Value:             map[string]any{"text": "The king of the reunited realm."},
		CreatedBy:         f.user.ID,
	}); err != nil {
		t.Fatalf("set field value again: %v", err)
	}
	bioHistory, err := f.repo.ListFieldValueHistory(ctx, entry.ID, bio.ID)
	if err != nil {
		t.Fatalf("bio history: %v", err)
	}
	if len(bioHistory) != 1 {
		t.Fatalf("unbounded writes must upsert, got %d rows", len(bioHistory))
	}
	if bioHistory[0].Value["text"] != "The king of the reunited realm." {
		t.Fatalf("upsert kept stale value %v", bioHistory[0].Value)
	}

	// Bounded writes append. Strider ends in 3019, King starts in 3019.
	start2931, end3019, start3019 := 2931, 3019, 3019
	if _, err := f.repo.SetFieldValue(ctx, domain.FieldValue{
		EntryID:           entry.ID,
		FieldDefinitionID: ruler.ID,
		Value:             map[string]any{"text": "Strider"},
		Timeline:          timeline.Interval{StartYear: &start2931, EndYear: &end3019},
		CreatedBy:         f.user.ID,
	}); err != nil {
		t.Fatalf("set bounded value: %v", err)
	}
	if _, err := f.repo.SetFieldValue(ctx, domain.FieldValue{
		EntryID:           entry.ID,
		FieldDefinitionID: ruler.ID,
		Value:             map[string]any{"text": "King Elessar"},
		Timeline:          timeline.Interval{StartYear: &start3019, IsOngoing: true},
		CreatedBy:         f.user.ID,
	}); err != nil {
		t.Fatalf("set second bounded value: %v", err)
	}

	history, err := f.repo.ListFieldValueHistory(ctx, entry.ID, ruler.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("bounded writes must append, got %d rows", len(history))
	}
	if history[0].Value["text"] != "Strider" {
		t.Fatalf("history not ordered by start year: %v", history[0].Value)
	}

	// Inclusive bounds: the transition year matches both rows.
	year3019 := 3019
	both, err := f.repo.ListFieldValues(ctx, entry.ID, &year3019)
	if err != nil {
		t.Fatalf("list at transition year: %v", err)
	}
	rulerRows := 0
	for _, fv := range both {
		if fv.FieldDefinitionID == ruler.ID {
			rulerRows++
		}
	}
	if rulerRows != 2 {
		t.Fatalf("year 3019 should match both ruler rows, got %d", rulerRows)
	}

	year3000 := 3000
	during, err := f.repo.ListFieldValues(ctx, entry.ID, &year3000)
	if err != nil {
		t.Fatalf("list at 3000: %v", err)
	}
	rulerRows = 0
	for _, fv := range during {
		if fv.FieldDefinitionID == ruler.ID {
			if fv.Value["text"] != "Strider" {
				t.Fatalf("year 3000 should resolve to Strider, got %v", fv.Value)
			}
			rulerRows++
		}
	}
	if rulerRows != 1 {
		t.Fatalf("year 3000 should match one ruler row, got %d", rulerRows)
	}

	// A row with no start year counts as reaching arbitrarily far back.
	endNeg500 := -500
	if _, err := f.repo.SetFieldValue(ctx, domain.FieldValue{
		EntryID:           entry.ID,
		FieldDefinitionID: ruler.ID,
		Value:             map[string]any{"text": "Unnamed"},
		Timeline:          timeline.Interval{EndYear: &endNeg500},
		CreatedBy:         f.user.ID,
	}); err != nil {
		t.Fatalf("set ancient value: %v", err)
	}
	history, err = f.repo.ListFieldValueHistory(ctx, entry.ID, ruler.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 || history[0].Value["text"] != "Unnamed" {
		t.Fatalf("null start year must sort first in history, got %v", history)
	}
}

func TestDeleteFieldDefinitionRemovesValues(t *testing.T) {
	ctx, f := newFixture(t)

	entry := f.mustCreateEntry(t, ctx, "Moria", nil)
	def, err := f.repo.CreateFieldDefinition(ctx, domain.FieldDefinition{
		EntryTypeID: f.entryType.ID,
		Name:        "Population",
		Slug:        "population",
		FieldType:   domain.FieldNumber,
	})
	if err != nil {
		t.Fatalf("create field definition: %v", err)
	}
	if _, err := f.repo.SetFieldValue(ctx, domain.FieldValue{
		EntryID:           entry.ID,
		FieldDefinitionID: def.ID,
		Value:             map[string]any{"number": 40000},
		CreatedBy:         f.user.ID,
	}); err != nil {
		t.Fatalf("set value: %v", err)
	}

	if err := f.repo.DeleteFieldDefinition(ctx, def.ID); err != nil {
		t.Fatalf("delete definition: %v", err)
	}
	values, err := f.repo.ListFieldValues(ctx, entry.ID, nil)
	if err != nil {
		t.Fatalf("list values: %v", err)
	}
	if len(values) != 0 {
		t.Fatalf("definition delete must cascade to values, %d left", len(values))
	}
	if _, err := f.repo.GetFieldDefinition(ctx, def.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("definition still readable after delete (err=%v)", err)
	}
}

func TestBlocksTimelineFilterAndVersion(t *testing.T) {
	ctx, f := newFixture(t)

	entry := f.mustCreateEntry(t, ctx, "The Shire", nil)
	start1000, end2000 := 1000, 2000
	era, err := f.repo.CreateBlock(ctx, domain.Block{
		EntryID:   entry.ID,
		BlockType: domain.BlockParagraph,
		Content:   map[string]any{"text": "Settled by the Fallohides."},
		Timeline:  timeline.Interval{StartYear: &start1000, EndYear: &end2000},
		Position:  1,
		CreatedBy: f.user.ID,
	})
	if err != nil {
		t.Fatalf("create block: %v", err)
	}
	always, err := f.repo.CreateBlock(ctx, domain.Block{
		EntryID:   entry.ID,
		BlockType: domain.BlockHeading1,
		Content:   map[string]any{"text": "The Shire"},
		Position:  0,
		CreatedBy: f.user.ID,
	})
	if err != nil {
		t.Fatalf("create block: %v", err)
	}

	year3000 := 3000
	visible, err := f.repo.ListEntryBlocks(ctx, entry.ID, &year3000)
	if err != nil {
		t.Fatalf("list blocks at 3000: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != always.ID {
		t.Fatalf("year 3000 should hide the dated block, got %+v", visible)
	}

	all, err := f.repo.ListEntryBlocks(ctx, entry.ID, nil)
	if err != nil {
		t.Fatalf("list all blocks: %v", err)
	}
	if len(all) != 2 || all[0].ID != always.ID {
		t.Fatalf("blocks must order by position, got %+v", all)
	}

	era.Content = map[string]any{"text": "Settled in the year 1601 of the Third Age."}
	updated, err := f.repo.UpdateBlock(ctx, era)
	if err != nil {
		t.Fatalf("update block: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("update must bump version, got %d", updated.Version)
	}

	if err := f.repo.DeleteBlock(ctx, era.ID); err != nil {
		t.Fatalf("delete block: %v", err)
	}
	if _, err := f.repo.GetBlock(ctx, era.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deleted block still readable (err=%v)", err)
	}
}

func TestReferencesDirectionAndWorldBoundary(t *testing.T) {
	ctx, f := newFixture(t)

	aragorn := f.mustCreateEntry(t, ctx, "Aragorn", nil)
	gondor := f.mustCreateEntry(t, ctx, "Gondor", nil)

	rules, err := f.repo.CreateReferenceType(ctx, domain.ReferenceType{
		WorldID:     f.world.ID,
		Name:        "Rules",
		InverseName: "Ruled By",
		Slug:        "rules",
		InverseSlug: "ruled-by",
		CreatedBy:   f.user.ID,
	})
	if err != nil {
		t.Fatalf("create reference type: %v", err)
	}

	start3019 := 3019
	if _, err := f.repo.CreateReference(ctx, domain.Reference{
		ReferenceTypeID: rules.ID,
		SourceEntryID:   aragorn.ID,
		TargetEntryID:   gondor.ID,
		Timeline:        timeline.Interval{StartYear: &start3019, IsOngoing: true},
		CreatedBy:       f.user.ID,
	}); err != nil {
		t.Fatalf("create reference: %v", err)
	}

	outgoing, err := f.repo.ListEntryReferences(ctx, aragorn.ID, false, nil)
	if err != nil {
		t.Fatalf("list outgoing: %v", err)
	}
	if len(outgoing) != 1 || outgoing[0].TargetEntryID != gondor.ID {
		t.Fatalf("unexpected outgoing references %+v", outgoing)
	}
	incoming, err := f.repo.ListEntryReferences(ctx, gondor.ID, true, nil)
	if err != nil {
		t.Fatalf("list incoming: %v", err)
	}
	if len(incoming) != 1 || incoming[0].SourceEntryID != aragorn.ID {
		t.Fatalf("unexpected incoming references %+v", incoming)
	}

	year3000 := 3000
	before, err := f.repo.ListEntryReferences(ctx, aragorn.ID, false, &year3000)
	if err != nil {
		t.Fatalf("list before reign: %v", err)
	}
	if len(before) != 0 {
		t.Fatalf("reference should not exist at year 3000, got %+v", before)
	}

	other, err := f.repo.CreateWorld(ctx, domain.World{
		WeaveID: f.weave.ID, Name: "Valinor", Slug: "valinor", CreatedBy: f.user.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create world: %v", err)
	}
	otherType, err := f.repo.CreateEntryType(ctx, domain.EntryType{
		WorldID: other.ID, Name: "Places", Slug: "places", CreatedBy: f.user.ID,
	})
	if err != nil {
		t.Fatalf("create entry type: %v", err)
	}
	foreign, err := f.repo.CreateEntry(ctx, domain.Entry{
		WorldID: other.ID, EntryTypeID: otherType.ID, Title: "Tirion", Slug: "tirion", CreatedBy: f.user.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create foreign entry: %v", err)
	}
	if _, err := f.repo.CreateReference(ctx, domain.Reference{
		ReferenceTypeID: rules.ID,
		SourceEntryID:   aragorn.ID,
		TargetEntryID:   foreign.ID,
		CreatedBy:       f.user.ID,
	}); !errors.Is(err, domain.ErrCrossWorld) {
		t.Fatalf("cross-world reference error = %v, want ErrCrossWorld", err)
	}
}

func TestEntryTimelineFilterOnList(t *testing.T) {
	ctx, f := newFixture(t)

	start100, end200 := 100, 200
	dated, err := f.repo.CreateEntry(ctx, domain.Entry{
		WorldID:     f.world.ID,
		EntryTypeID: f.entryType.ID,
		Title:       "Old Fortress",
		Slug:        "old-fortress",
		Timeline:    timeline.Interval{StartYear: &start100, EndYear: &end200},
		CreatedBy:   f.user.ID,
	}, nil)
	if err != nil {
		t.Fatalf("create dated entry: %v", err)
	}
	f.mustCreateEntry(t, ctx, "Eternal City", nil)

	year150 := 150
	within, err := f.repo.ListWorldEntries(ctx, f.world.ID, domain.EntryFilter{TimelineYear: &year150})
	if err != nil {
		t.Fatalf("list at 150: %v", err)
	}
	if len(within) != 2 {
		t.Fatalf("year 150 should match both entries, got %d", len(within))
	}

	year500 := 500
	after, err := f.repo.ListWorldEntries(ctx, f.world.ID, domain.EntryFilter{TimelineYear: &year500})
	if err != nil {
		t.Fatalf("list at 500: %v", err)
	}
	if len(after) != 1 || after[0].ID == dated.ID {
		t.Fatalf("year 500 should only match the undated entry, got %+v", after)
	}

	typed, err := f.repo.ListWorldEntries(ctx, f.world.ID, domain.EntryFilter{EntryTypeID: &f.entryType.ID, Limit: 1})
	if err != nil {
		t.Fatalf("list with type filter: %v", err)
	}
	if len(typed) != 1 {
		t.Fatalf("limit 1 should cap results, got %d", len(typed))
	}
}
