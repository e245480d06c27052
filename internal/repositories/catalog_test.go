package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/shared"
	tu "github.com/desertthunder/lfx/internal/testing"
)

func TestCatalogUnitOfWork(t *testing.T) {
	ctx := context.Background()

	t.Run("CommitPersists", func(t *testing.T) {
		db := tu.SetupTestDB(t)
		catalog := NewCatalog(db)

		tx, err := catalog.Begin(ctx)
		if err != nil {
			t.Fatalf("failed to begin: %v", err)
		}

		tag, err := tx.CreateTag(ctx, "idm")
		if err != nil {
			t.Fatalf("failed to create tag: %v", err)
		}
		artist := models.NewArtist(0, "Aphex Twin", "", "")
		if err := tx.CreateArtist(ctx, artist); err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}
		if linked, err := tx.AddArtistTagIfAbsent(ctx, artist, tag); err != nil || !linked {
			t.Fatalf("expected link, got %v, %v", linked, err)
		}
		if created, err := tx.AddAlbumIfAbsent(ctx, artist, models.NewAlbum(0, "", "Drukqs", "", "", "")); err != nil || !created {
			t.Fatalf("expected album, got %v, %v", created, err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("failed to commit: %v", err)
		}

		stats, err := catalog.Stats(ctx)
		if err != nil {
			t.Fatalf("failed to read stats: %v", err)
		}
		want := models.CatalogStats{Artists: 1, Albums: 1, Tags: 1, ArtistTags: 1}
		if *stats != want {
			t.Errorf("expected %+v, got %+v", want, *stats)
		}
	})

	t.Run("RollbackDiscards", func(t *testing.T) {
		db := tu.SetupTestDB(t)
		catalog := NewCatalog(db)

		tx, err := catalog.Begin(ctx)
		if err != nil {
			t.Fatalf("failed to begin: %v", err)
		}
		if err := tx.CreateArtist(ctx, models.NewArtist(0, "Aphex Twin", "", "")); err != nil {
			t.Fatalf("failed to create artist: %v", err)
		}
		if err := tx.Rollback(); err != nil {
			t.Fatalf("failed to rollback: %v", err)
		}

		if _, err := NewArtistRepository(db).GetByName(ctx, "Aphex Twin"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected rolled back artist to be absent, got %v", err)
		}

		// sequence increments roll back with the writes
		next, err := NextSequence(ctx, db, "artists")
		if err != nil {
			t.Fatalf("NextSequence failed: %v", err)
		}
		if next != 1 {
			t.Errorf("expected sequence 1 after rollback, got %d", next)
		}
	})

	t.Run("CommitTwice", func(t *testing.T) {
		db := tu.SetupTestDB(t)
		tx, err := NewCatalog(db).Begin(ctx)
		if err != nil {
			t.Fatalf("failed to begin: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("failed to commit: %v", err)
		}
		if err := tx.Commit(); !errors.Is(err, shared.ErrTxDone) {
			t.Errorf("expected ErrTxDone, got %v", err)
		}
		if err := tx.Rollback(); err != nil {
			t.Errorf("rollback after commit should be a no-op, got %v", err)
		}
	})

	t.Run("FindArtistWithRelations", func(t *testing.T) {
		db := tu.SetupTestDB(t)
		artist := mustCreateArtist(t, db, "Aphex Twin")
		mustLink(t, db, artist, mustCreateTag(t, db, "idm"))
		for _, title := range []string{"Drukqs", "Syro"} {
			if _, err := NewAlbumRepository(db).CreateIfAbsent(ctx, models.NewAlbum(0, artist.ID(), title, "", "", "")); err != nil {
				t.Fatalf("failed to create album: %v", err)
			}
		}

		tx, err := NewCatalog(db).Begin(ctx)
		if err != nil {
			t.Fatalf("failed to begin: %v", err)
		}
		defer tx.Rollback()

		bare, err := tx.FindArtistByName(ctx, "Aphex Twin", false)
		if err != nil {
			t.Fatalf("failed to find artist: %v", err)
		}
		if len(bare.Albums()) != 0 || len(bare.Tags()) != 0 {
			t.Error("relations should not load without withRelations")
		}

		full, err := tx.FindArtistByName(ctx, "Aphex Twin", true)
		if err != nil {
			t.Fatalf("failed to find artist: %v", err)
		}
		if len(full.Albums()) != 2 || !full.HasAlbum("Syro") {
			t.Errorf("expected 2 albums including Syro, got %d", len(full.Albums()))
		}
		if len(full.Tags()) != 1 || full.Tags()[0].Name() != "idm" {
			t.Errorf("expected idm tag, got %d tags", len(full.Tags()))
		}

		if _, err := tx.FindArtistByName(ctx, "Autechre", true); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := tx.FindTagByName(ctx, "ambient"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("AddAlbumToUnsavedArtist", func(t *testing.T) {
		db := tu.SetupTestDB(t)
		tx, err := NewCatalog(db).Begin(ctx)
		if err != nil {
			t.Fatalf("failed to begin: %v", err)
		}
		defer tx.Rollback()

		_, err = tx.AddAlbumIfAbsent(ctx, models.NewArtist(0, "Aphex Twin", "", ""), models.NewAlbum(0, "", "Drukqs", "", "", ""))
		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestCatalogProjections(t *testing.T) {
	ctx := context.Background()
	db := tu.SetupTestDB(t)
	catalog := NewCatalog(db)

	idm := mustCreateTag(t, db, "idm")
	ambient := mustCreateTag(t, db, "ambient")
	aphex := mustCreateArtist(t, db, "Aphex Twin")
	eno := mustCreateArtist(t, db, "Brian Eno")
	mustLink(t, db, aphex, idm)
	mustLink(t, db, aphex, ambient)
	mustLink(t, db, eno, ambient)
	if _, err := NewAlbumRepository(db).CreateIfAbsent(ctx, models.NewAlbum(0, aphex.ID(), "Selected Ambient Works 85-92", "", "", "https://img/saw.png")); err != nil {
		t.Fatalf("failed to create album: %v", err)
	}

	t.Run("ListArtists", func(t *testing.T) {
		artists, err := catalog.ListArtists(ctx, "")
		if err != nil {
			t.Fatalf("failed to list artists: %v", err)
		}
		if len(artists) != 2 {
			t.Fatalf("expected 2 artists, got %d", len(artists))
		}
		if got := artists[0].Tags; len(got) != 2 || got[0] != "idm" || got[1] != "ambient" {
			t.Errorf("expected [idm ambient], got %v", got)
		}
	})

	t.Run("ListArtistsByTag", func(t *testing.T) {
		artists, err := catalog.ListArtists(ctx, "idm")
		if err != nil {
			t.Fatalf("failed to list artists: %v", err)
		}
		if len(artists) != 1 || artists[0].Name != "Aphex Twin" {
			t.Errorf("expected only Aphex Twin, got %+v", artists)
		}
	})

	t.Run("ListArtistsEmpty", func(t *testing.T) {
		artists, err := catalog.ListArtists(ctx, "jazz")
		if err != nil {
			t.Fatalf("failed to list artists: %v", err)
		}
		if artists == nil || len(artists) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", artists)
		}
	})

	t.Run("ListArtistDetails", func(t *testing.T) {
		details, err := catalog.ListArtistDetails(ctx)
		if err != nil {
			t.Fatalf("failed to list artist details: %v", err)
		}
		if len(details) != 2 {
			t.Fatalf("expected 2 artists, got %d", len(details))
		}
		if len(details[0].Albums) != 1 || details[0].Albums[0].ImageURL != "https://img/saw.png" {
			t.Errorf("expected Aphex Twin album with image, got %+v", details[0].Albums)
		}
		if details[1].Albums == nil || len(details[1].Albums) != 0 {
			t.Errorf("expected empty non-nil albums for Brian Eno, got %#v", details[1].Albums)
		}
	})

	t.Run("ArtistDetail", func(t *testing.T) {
		detail, err := catalog.ArtistDetail(ctx, aphex.ID())
		if err != nil {
			t.Fatalf("failed to get artist detail: %v", err)
		}
		if detail.Name != "Aphex Twin" || len(detail.Albums) != 1 || len(detail.Tags) != 2 {
			t.Errorf("unexpected detail %+v", detail)
		}

		if _, err := catalog.ArtistDetail(ctx, "nonexistent-id"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListTags", func(t *testing.T) {
		tags, err := catalog.ListTags(ctx)
		if err != nil {
			t.Fatalf("failed to list tags: %v", err)
		}
		if len(tags) != 2 || tags[1].Name != "ambient" || tags[1].ArtistCount != 2 {
			t.Errorf("unexpected tags %+v", tags)
		}
	})
}

func TestCatalogStorageFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("BeginFails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create sqlmock: %v", err)
		}
		defer db.Close()

		mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

		if _, err := NewCatalog(db).Begin(ctx); err == nil {
			t.Fatal("expected begin error")
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("CommitFails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create sqlmock: %v", err)
		}
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("disk I/O error"))

		tx, err := NewCatalog(db).Begin(ctx)
		if err != nil {
			t.Fatalf("failed to begin: %v", err)
		}
		if err := tx.Commit(); err == nil {
			t.Fatal("expected commit error")
		}
		if err := tx.Rollback(); err != nil {
			t.Errorf("rollback after failed commit should be a no-op, got %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("SequenceFails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create sqlmock: %v", err)
		}
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("UPDATE tags_sequence").WillReturnError(errors.New("no such table: tags_sequence"))
		mock.ExpectRollback()

		tx, err := NewCatalog(db).Begin(ctx)
		if err != nil {
			t.Fatalf("failed to begin: %v", err)
		}
		if _, err := tx.CreateTag(ctx, "idm"); err == nil {
			t.Fatal("expected sequence error")
		}
		if err := tx.Rollback(); err != nil {
			t.Errorf("failed to rollback: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})

	t.Run("StatsFails", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("failed to create sqlmock: %v", err)
		}
		defer db.Close()

		mock.ExpectQuery("SELECT").WillReturnError(errors.New("database is closed"))

		if _, err := NewCatalog(db).Stats(ctx); err == nil {
			t.Fatal("expected stats error")
		}
	})
}
