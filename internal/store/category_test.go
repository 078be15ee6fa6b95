package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"jobboard/internal/category"
	"jobboard/internal/models"
)

func TestCategoryStoreCRUD(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	name := uniqueName("Store Root")
	root, err := s.CreateCategory(ctx, &models.Category{Name: name, Slug: "store-root-" + uuid.NewString()[:8]})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	child, err := s.CreateCategory(ctx, &models.Category{Name: "Child", Slug: root.Slug + "-child", ParentID: &root.ID})
	if err != nil {
		t.Fatalf("CreateCategory child: %v", err)
	}
	t.Cleanup(func() { cleanCategories(t, db, root.ID, child.ID) })

	if root.Status != models.CategoryActive {
		t.Errorf("status = %q, want active", root.Status)
	}

	found, err := s.FindBySlug(ctx, child.Slug)
	if err != nil || found == nil || found.ID != child.ID {
		t.Fatalf("FindBySlug = %+v, %v", found, err)
	}
	if found.ParentID == nil || *found.ParentID != root.ID {
		t.Errorf("ParentID = %v, want %s", found.ParentID, root.ID)
	}

	byName, err := s.FindByName(ctx, nil, name)
	if err != nil || byName == nil || byName.ID != root.ID {
		t.Errorf("FindByName(root) = %+v, %v", byName, err)
	}
	byName, err = s.FindByName(ctx, &root.ID, "Child")
	if err != nil || byName == nil || byName.ID != child.ID {
		t.Errorf("FindByName(child) = %+v, %v", byName, err)
	}

	children, err := s.ListChildren(ctx, []uuid.UUID{root.ID})
	if err != nil || len(children) != 1 || children[0].ID != child.ID {
		t.Errorf("ListChildren = %+v, %v", children, err)
	}

	missing, err := s.FindByID(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Errorf("FindByID(unknown) = %+v, %v; want nil, nil", missing, err)
	}

	if err := s.UpdateStatus(ctx, child.ID, models.CategoryInactive); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	found, _ = s.FindByID(ctx, child.ID)
	if found.Status != models.CategoryInactive {
		t.Errorf("status after deactivate = %q", found.Status)
	}

	moved, err := s.UpdateParent(ctx, child.ID, nil)
	if err != nil {
		t.Fatalf("UpdateParent: %v", err)
	}
	if moved.ParentID != nil {
		t.Errorf("ParentID after promote = %v, want nil", moved.ParentID)
	}
}

func TestCategoryStoreUniqueViolations(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	name := uniqueName("Unique")
	slug := "unique-" + uuid.NewString()[:8]
	root, err := s.CreateCategory(ctx, &models.Category{Name: name, Slug: slug})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	t.Cleanup(func() { cleanCategories(t, db, root.ID) })

	_, err = s.CreateCategory(ctx, &models.Category{Name: uniqueName("Other"), Slug: slug})
	if !errors.Is(err, category.ErrSlugTaken) {
		t.Errorf("duplicate slug: err = %v, want ErrSlugTaken", err)
	}

	_, err = s.CreateCategory(ctx, &models.Category{Name: name, Slug: slug + "-1"})
	if !errors.Is(err, category.ErrNameTaken) {
		t.Errorf("duplicate root name: err = %v, want ErrNameTaken", err)
	}

	exists, err := s.SlugExists(ctx, slug)
	if err != nil || !exists {
		t.Errorf("SlugExists = %v, %v", exists, err)
	}
}

func TestCategoryTreeOnPostgres(t *testing.T) {
	db := testDB(t)
	tree := category.NewTree(NewCategoryStore(db))
	ctx := context.Background()

	root, err := tree.Create(ctx, uniqueName("PG Tree"), nil)
	if err != nil {
		t.Fatalf("Create root: %v", err)
	}
	child, err := tree.Create(ctx, "Backend", &root.ID)
	if err != nil {
		t.Fatalf("Create child: %v", err)
	}
	t.Cleanup(func() { cleanCategories(t, db, root.ID, child.ID) })

	if child.Slug != root.Slug+"-backend" {
		t.Errorf("child slug = %q, want %q", child.Slug, root.Slug+"-backend")
	}
	if _, err := tree.Create(ctx, "Backend", &root.ID); err == nil {
		t.Error("expected duplicate name error")
	}
}

func TestCategoryStoreWriteLock(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)
	ctx := context.Background()

	slug := "locked-" + uuid.NewString()[:8]
	taken, err := s.CreateCategory(ctx, &models.Category{Name: uniqueName("Taken"), Slug: slug})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	t.Cleanup(func() { cleanCategories(t, db, taken.ID) })

	// A unique violation inside the lock leaves the transaction usable.
	var created *models.Category
	err = s.WithWriteLock(ctx, func(ls category.Store) error {
		if _, err := ls.CreateCategory(ctx, &models.Category{Name: uniqueName("Locked"), Slug: slug}); !errors.Is(err, category.ErrSlugTaken) {
			t.Errorf("duplicate slug in lock: err = %v, want ErrSlugTaken", err)
		}
		var err error
		created, err = ls.CreateCategory(ctx, &models.Category{Name: uniqueName("Locked"), Slug: slug + "-1"})
		return err
	})
	if err != nil {
		t.Fatalf("WithWriteLock: %v", err)
	}
	t.Cleanup(func() { cleanCategories(t, db, created.ID) })
	if got, _ := s.FindByID(ctx, created.ID); got == nil {
		t.Error("category written under the lock was not committed")
	}

	// An error from fn rolls the writes back.
	errAbort := errors.New("abort")
	rolledBack := "rolled-back-" + uuid.NewString()[:8]
	err = s.WithWriteLock(ctx, func(ls category.Store) error {
		if _, err := ls.CreateCategory(ctx, &models.Category{Name: uniqueName("Gone"), Slug: rolledBack}); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("WithWriteLock err = %v, want errAbort", err)
	}
	if exists, _ := s.SlugExists(ctx, rolledBack); exists {
		t.Error("write from an aborted lock scope was committed")
	}
}

func TestConcurrentMovesOnPostgres(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	// Two trees stand in for two processes sharing the database.
	left := category.NewTree(NewCategoryStore(db))
	right := category.NewTree(NewCategoryStore(db))

	for i := 0; i < 20; i++ {
		a, err := left.Create(ctx, uniqueName("PG A"), nil)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		b, err := left.Create(ctx, uniqueName("PG B"), nil)
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		t.Cleanup(func() {
			db.ExecContext(context.Background(), `UPDATE categories SET parent_id = NULL WHERE id IN ($1, $2)`, a.ID, b.ID)
			cleanCategories(t, db, a.ID, b.ID)
		})

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = left.Move(ctx, a.ID, &b.ID)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = right.Move(ctx, b.ID, &a.ID)
		}()
		wg.Wait()

		if errs[0] == nil && errs[1] == nil {
			t.Fatalf("iteration %d: both opposite moves succeeded", i)
		}
		if _, err := left.GetAncestors(ctx, a.ID); err != nil {
			t.Fatalf("iteration %d: GetAncestors: %v", i, err)
		}
	}
}
