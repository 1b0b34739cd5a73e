package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/printcraft/storefront/internal/core/domain"
	"github.com/printcraft/storefront/internal/core/ports"
)

type stubStager struct {
	removed []string
	failOn  string
}

func (s *stubStager) Stage(_ context.Context, u ports.Upload) (domain.StagedFile, error) {
	if u.Filename == s.failOn {
		return domain.StagedFile{}, errors.New("disk full")
	}
	return domain.StagedFile{
		Name:        u.Filename,
		LocalPath:   "/var/uploads/" + u.Filename,
		URL:         "/uploads/" + u.Filename,
		Type:        domain.MediaTypeFor(u.ContentType),
		ContentType: u.ContentType,
	}, nil
}

func (s *stubStager) Remove(path string) error {
	s.removed = append(s.removed, path)
	return nil
}

func (s *stubStager) PathFor(url string) (string, bool) {
	if !strings.HasPrefix(url, "/uploads/") {
		return "", false
	}
	return "/var/uploads/" + strings.TrimPrefix(url, "/uploads/"), true
}

type stubMediaStore struct {
	failures  int // number of calls that fail before succeeding
	calls     int
	destroyed []string
}

func (s *stubMediaStore) Upload(_ context.Context, localPath, mediaType string) (domain.Media, error) {
	s.calls++
	if s.calls <= s.failures {
		return domain.Media{}, errors.New("cloudinary: 503")
	}
	name := localPath[strings.LastIndex(localPath, "/")+1:]
	return domain.Media{URL: "https://res.cloudinary.com/demo/" + name, Type: mediaType, PublicID: "storefront/" + name}, nil
}

func (s *stubMediaStore) Destroy(_ context.Context, publicID, _ string) error {
	s.destroyed = append(s.destroyed, publicID)
	return nil
}

func newTestPipeline(stager *stubStager, store *stubMediaStore, queue *stubQueue) *MediaPipeline {
	p := NewMediaPipeline(stager, store, queue, discardLogger)
	p.delay = 0
	return p
}

func TestMediaPipeline_Stage_Validation(t *testing.T) {
	p := newTestPipeline(&stubStager{}, &stubMediaStore{}, &stubQueue{})

	_, err := p.Stage(context.Background(), []ports.Upload{{Filename: "run.sh", ContentType: "text/x-shellscript", Size: 10}})
	if !errors.Is(err, domain.ErrUnsupportedMedia) {
		t.Fatalf("expected ErrUnsupportedMedia, got %v", err)
	}

	_, err = p.Stage(context.Background(), []ports.Upload{{Filename: "huge.mp4", ContentType: "video/mp4", Size: MaxUploadSize + 1}})
	if !errors.Is(err, domain.ErrMediaTooLarge) {
		t.Fatalf("expected ErrMediaTooLarge, got %v", err)
	}

	files, err := p.Stage(context.Background(), []ports.Upload{
		{Filename: "a.png", ContentType: "image/png", Size: 10},
		{Filename: "spec.pdf", ContentType: "application/pdf", Size: 10},
	})
	if err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}
	if len(files) != 2 || files[0].Type != domain.MediaImage || files[1].Type != domain.MediaRaw {
		t.Fatalf("unexpected staged files: %+v", files)
	}
}

func TestMediaPipeline_Stage_CleansUpOnFailure(t *testing.T) {
	stager := &stubStager{failOn: "b.png"}
	p := newTestPipeline(stager, &stubMediaStore{}, &stubQueue{})

	_, err := p.Stage(context.Background(), []ports.Upload{
		{Filename: "a.png", ContentType: "image/png"},
		{Filename: "b.png", ContentType: "image/png"},
	})
	if !errors.Is(err, domain.ErrMediaStorage) {
		t.Fatalf("expected ErrMediaStorage, got %v", err)
	}
	if len(stager.removed) != 1 || stager.removed[0] != "/var/uploads/a.png" {
		t.Fatalf("expected a.png to be removed, got %v", stager.removed)
	}
}

func TestMediaPipeline_Migrate_RetriesAndSwapsURL(t *testing.T) {
	stager := &stubStager{}
	store := &stubMediaStore{failures: 2}
	queue := &stubQueue{}
	p := newTestPipeline(stager, store, queue)

	products := newStubProductRepo(&domain.Product{ID: "p1", Media: []domain.Media{{URL: "/uploads/a.png", Type: domain.MediaImage}}})
	files, _ := p.Stage(context.Background(), []ports.Upload{{Filename: "a.png", ContentType: "image/png"}})
	p.Migrate(products, "p1", files)

	if errs := queue.runAll(context.Background()); len(errs) != 0 {
		t.Fatalf("migration failed: %v", errs)
	}
	if store.calls != 3 {
		t.Fatalf("expected 3 upload attempts, got %d", store.calls)
	}
	got := products.products["p1"].Media[0]
	if got.URL != "https://res.cloudinary.com/demo/a.png" || got.PublicID != "storefront/a.png" {
		t.Fatalf("expected hosted media, got %+v", got)
	}
	if len(stager.removed) != 1 {
		t.Fatalf("expected staged file to be removed after migration")
	}
}

func TestMediaPipeline_Migrate_GivesUpAfterThreeAttempts(t *testing.T) {
	stager := &stubStager{}
	store := &stubMediaStore{failures: 5}
	queue := &stubQueue{}
	p := newTestPipeline(stager, store, queue)

	products := newStubProductRepo(&domain.Product{ID: "p1", Media: []domain.Media{{URL: "/uploads/a.png", Type: domain.MediaImage}}})
	files, _ := p.Stage(context.Background(), []ports.Upload{{Filename: "a.png", ContentType: "image/png"}})
	p.Migrate(products, "p1", files)

	if errs := queue.runAll(context.Background()); len(errs) != 1 {
		t.Fatalf("expected migration failure, got %v", errs)
	}
	if store.calls != 3 {
		t.Fatalf("expected 3 upload attempts, got %d", store.calls)
	}
	if products.products["p1"].Media[0].URL != "/uploads/a.png" {
		t.Fatalf("local URL must be kept when migration fails")
	}
	if len(stager.removed) != 0 {
		t.Fatalf("local file must be kept when migration fails")
	}
}

func TestMediaPipeline_Purge(t *testing.T) {
	stager := &stubStager{}
	store := &stubMediaStore{}
	queue := &stubQueue{}
	p := newTestPipeline(stager, store, queue)

	p.Purge("p1", []domain.Media{
		{URL: "https://res.cloudinary.com/demo/a.png", Type: domain.MediaImage, PublicID: "storefront/a"},
		{URL: "/uploads/b.png", Type: domain.MediaImage},
		{URL: "https://elsewhere.example.com/c.png", Type: domain.MediaImage},
	})
	if keys := queue.keys(); len(keys) != 1 || keys[0] != "media:p1" {
		t.Fatalf("purge must share the owner's task key, got %v", keys)
	}
	if errs := queue.runAll(context.Background()); len(errs) != 0 {
		t.Fatalf("purge failed: %v", errs)
	}
	if len(store.destroyed) != 1 || store.destroyed[0] != "storefront/a" {
		t.Fatalf("unexpected destroyed: %v", store.destroyed)
	}
	if len(stager.removed) != 1 || stager.removed[0] != "/var/uploads/b.png" {
		t.Fatalf("unexpected removed: %v", stager.removed)
	}
}

func TestMediaPipeline_Migrate_DestroysUploadOfDeletedOwner(t *testing.T) {
	stager := &stubStager{}
	store := &stubMediaStore{}
	queue := &stubQueue{}
	p := newTestPipeline(stager, store, queue)

	products := newStubProductRepo(&domain.Product{ID: "p1", Media: []domain.Media{{URL: "/uploads/a.png", Type: domain.MediaImage}}})
	files, _ := p.Stage(context.Background(), []ports.Upload{{Filename: "a.png", ContentType: "image/png"}})
	p.Migrate(products, "p1", files)

	// Deleted before the queued migration ran.
	deleted, _ := products.Delete(context.Background(), "p1")
	p.Purge("p1", deleted.Media)

	if errs := queue.runAll(context.Background()); len(errs) != 0 {
		t.Fatalf("expected orphaned upload to be cleaned up quietly, got %v", errs)
	}
	if len(store.destroyed) != 1 || store.destroyed[0] != "storefront/a.png" {
		t.Fatalf("expected the hosted copy to be destroyed, got %v", store.destroyed)
	}
	if len(stager.removed) == 0 || stager.removed[0] != "/var/uploads/a.png" {
		t.Fatalf("expected the staged file to be removed, got %v", stager.removed)
	}
}

func TestMediaPipeline_Migrate_DestroysUploadDroppedByEdit(t *testing.T) {
	stager := &stubStager{}
	store := &stubMediaStore{}
	queue := &stubQueue{}
	p := newTestPipeline(stager, store, queue)

	products := newStubProductRepo(&domain.Product{ID: "p1", Media: []domain.Media{{URL: "/uploads/a.png", Type: domain.MediaImage}}})
	files, _ := p.Stage(context.Background(), []ports.Upload{{Filename: "a.png", ContentType: "image/png"}})
	p.Migrate(products, "p1", files)
	products.products["p1"].Media = nil

	if errs := queue.runAll(context.Background()); len(errs) != 0 {
		t.Fatalf("migration failed: %v", errs)
	}
	if len(store.destroyed) != 1 || len(products.replaced) != 0 {
		t.Fatalf("expected hosted copy destroyed and nothing swapped, got %v %v", store.destroyed, products.replaced)
	}
}

func TestMediaPipeline_WithoutMediaHostKeepsLocalFiles(t *testing.T) {
	stager := &stubStager{}
	queue := &stubQueue{}
	p := NewMediaPipeline(stager, nil, queue, discardLogger)

	products := newStubProductRepo(&domain.Product{ID: "p1"})
	files, err := p.Stage(context.Background(), []ports.Upload{{Filename: "a.png", ContentType: "image/png"}})
	if err != nil {
		t.Fatalf("Stage returned error: %v", err)
	}
	p.Migrate(products, "p1", files)
	if names := queue.names(); len(names) != 0 {
		t.Fatalf("expected no migration task, got %v", names)
	}

	p.Purge("p1", []domain.Media{{URL: "https://res.cloudinary.com/demo/a.png", PublicID: "storefront/a"}, {URL: "/uploads/b.png"}})
	if errs := queue.runAll(context.Background()); len(errs) != 0 {
		t.Fatalf("purge failed: %v", errs)
	}
	if len(stager.removed) != 1 {
		t.Fatalf("local files must still be purged, got %v", stager.removed)
	}
}
