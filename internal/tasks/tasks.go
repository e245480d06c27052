package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/lfx/internal/models"
	"github.com/desertthunder/lfx/internal/services"
	"github.com/desertthunder/lfx/internal/shared"
)

const (
	DefaultArtistLimit = 50
	DefaultAlbumLimit  = 10
)

// Importer defines catalog import operations.
type Importer interface {
	// ImportArtistsByTag imports the tag's top artists and their top albums.
	//
	// The returned error is non-nil only for whole-tag failures and cancellation; per-artist and
	// per-album failures are reported in the result.
	ImportArtistsByTag(ctx context.Context, progress chan<- ProgressUpdate, tag string, limit int) (*ImportResult, error)

	// ImportTags runs ImportArtistsByTag for each tag in order and joins their errors.
	ImportTags(ctx context.Context, progress chan<- ProgressUpdate, tags []string, limit int) (*BulkImportResult, error)
}

// ImportOpts contains configuration for imports.
type ImportOpts struct {
	DefaultLimit int // artists requested when the caller passes no limit (default: 50)
	AlbumLimit   int // albums requested and kept per artist (default: 10)
}

// ImportEngine implements [Importer] against a [models.CatalogStore] and a [services.Provider].
type ImportEngine struct {
	store    models.CatalogStore
	provider services.Provider
	logger   *log.Logger
	opts     ImportOpts
}

// NewImportEngine creates a new ImportEngine with the provided store, provider and logger.
func NewImportEngine(store models.CatalogStore, provider services.Provider, logger *log.Logger, opts ImportOpts) *ImportEngine {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultArtistLimit
	}
	if opts.AlbumLimit <= 0 {
		opts.AlbumLimit = DefaultAlbumLimit
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &ImportEngine{
		store:    store,
		provider: provider,
		logger:   logger,
		opts:     opts,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ImportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// ImportArtistsByTag imports up to limit top artists for tag; limit <= 0 uses the default.
func (e *ImportEngine) ImportArtistsByTag(ctx context.Context, progress chan<- ProgressUpdate, tag string, limit int) (*ImportResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: catalog store not initialized", shared.ErrServiceUnavailable)
	}
	if e.provider == nil {
		return nil, fmt.Errorf("%w: remote provider not initialized", shared.ErrServiceUnavailable)
	}
	if limit <= 0 {
		limit = e.opts.DefaultLimit
	}

	logger := shared.WithLogger(e.logger, "tag", tag)
	result := newImportResult(tag, limit)
	defer result.finish()

	if shared.IsBlank(tag) {
		err := fmt.Errorf("%w: tag name is required", shared.ErrInvalidInput)
		logger.Error("import failed", "err", err)
		return result, err
	}

	logger.Info("starting import", "limit", limit, "provider", e.provider.Name())

	// units of work are detached so cancellation never rolls back a commit midway
	txCtx := context.WithoutCancel(ctx)

	e.sendProgress(progress, ensureTagUpdate(tag))
	tagModel, created, err := e.ensureTag(txCtx, tag)
	if err != nil {
		logger.Error("failed to ensure tag", "err", err)
		return result, fmt.Errorf("failed to ensure tag %q: %w", tag, err)
	}
	result.TagID = tagModel.ID()
	result.TagCreated = created

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("import of %q interrupted: %w", tag, err)
	}

	e.sendProgress(progress, fetchArtistsUpdate(tag, limit))
	remote, err := e.provider.TopArtistsForTag(ctx, tag, limit)
	if err != nil {
		result.FetchError = err.Error()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, fmt.Errorf("import of %q interrupted: %w", tag, ctxErr)
		}
		logger.Warn("no artists fetched", "err", err)
		e.sendProgress(progress, completeUpdate(result))
		return result, nil
	}
	if len(remote) == 0 {
		logger.Info("no artists found")
		e.sendProgress(progress, completeUpdate(result))
		return result, nil
	}

	total := len(remote)
	for i, ra := range remote {
		if err := ctx.Err(); err != nil {
			logger.Warn("import interrupted", "processed", i, "total", total)
			return result, fmt.Errorf("import of %q interrupted: %w", tag, err)
		}

		e.sendProgress(progress, importArtistUpdate(i+1, total, ra.Name))
		ar := e.importArtist(txCtx, logger, tagModel, ra)

		if status := ar.status(); status == StatusImported || status == StatusExisting {
			e.sendProgress(progress, fetchAlbumsUpdate(i+1, total, ra.Name))
			e.importAlbums(ctx, txCtx, progress, logger, ar)
		}

		result.record(*ar.result)
	}

	// the last artist's albums may have stopped early
	if err := ctx.Err(); err != nil {
		logger.Warn("import interrupted", "processed", total, "total", total)
		return result, fmt.Errorf("import of %q interrupted: %w", tag, err)
	}

	logger.Info("import completed",
		"artists", result.ArtistsImported,
		"existing", result.ArtistsExisting,
		"failed", result.ArtistsFailed,
		"albums", result.AlbumsImported,
	)
	e.sendProgress(progress, completeUpdate(result))
	return result, nil
}

// ImportTags imports each tag in order. A whole-tag failure is recorded and the next tag proceeds.
func (e *ImportEngine) ImportTags(ctx context.Context, progress chan<- ProgressUpdate, tags []string, limit int) (*BulkImportResult, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w: at least one tag is required", shared.ErrMissingArgument)
	}

	start := time.Now()
	bulk := &BulkImportResult{Tags: make([]TagImportResult, 0, len(tags))}
	var errs []error

	for _, tag := range tags {
		res, err := e.ImportArtistsByTag(ctx, progress, tag, limit)
		entry := TagImportResult{Tag: tag, Result: res}
		if err != nil {
			entry.Err = err
			entry.Error = err.Error()
			bulk.Failed++
			errs = append(errs, fmt.Errorf("tag %q: %w", tag, err))
		} else {
			bulk.Succeeded++
		}
		bulk.Tags = append(bulk.Tags, entry)

		if ctx.Err() != nil {
			break
		}
	}

	bulk.Duration = time.Since(start)
	return bulk, errors.Join(errs...)
}

// ensureTag finds the tag by name or creates it, committing before returning.
func (e *ImportEngine) ensureTag(ctx context.Context, name string) (*models.Tag, bool, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	created := false
	tag, err := tx.FindTagByName(ctx, name)
	if errors.Is(err, shared.ErrNotFound) {
		tag, err = tx.CreateTag(ctx, name)
		created = true
	}
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, err
	}
	return tag, created, nil
}

// artistRun carries the reconciled artist alongside its report entry.
type artistRun struct {
	artist *models.Artist
	result *ArtistImportResult
}

func (r artistRun) status() ItemStatus { return r.result.Status }

// importArtist reconciles one remote artist and links it to tag in a single unit of work.
func (e *ImportEngine) importArtist(ctx context.Context, logger *log.Logger, tag *models.Tag, ra services.Artist) artistRun {
	res := &ArtistImportResult{Name: ra.Name, Albums: []AlbumImportResult{}}
	run := artistRun{result: res}

	if ra.Err != nil {
		res.fail(ra.Err)
		logger.Error("failed to import artist", "artist", ra.Name, "err", ra.Err)
		return run
	}

	if shared.IsBlank(ra.Name) {
		res.Status = StatusSkippedEmpty
		logger.Debug("skipping artist with blank name")
		return run
	}

	artist, created, linked, err := e.reconcileArtist(ctx, tag, ra)
	if err != nil {
		res.fail(err)
		logger.Error("failed to import artist", "artist", ra.Name, "err", err)
		return run
	}

	run.artist = artist
	res.ArtistID = artist.ID()
	res.Linked = linked
	res.Status = StatusExisting
	if created {
		res.Status = StatusImported
	}

	logger.Info("imported artist", "artist", artist.Name(), "status", res.Status, "linked", linked)
	return run
}

func (e *ImportEngine) reconcileArtist(ctx context.Context, tag *models.Tag, ra services.Artist) (*models.Artist, bool, bool, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return nil, false, false, err
	}
	defer tx.Rollback()

	created := false
	artist, err := tx.FindArtistByName(ctx, ra.Name, true)
	if errors.Is(err, shared.ErrNotFound) {
		artist = models.NewArtist(0, ra.Name, ra.MBID, ra.URL)
		err = tx.CreateArtist(ctx, artist)
		created = true
	}
	if err != nil {
		return nil, false, false, err
	}

	linked := false
	if !artist.HasTag(tag.ID()) {
		if linked, err = tx.AddArtistTagIfAbsent(ctx, artist, tag); err != nil {
			return nil, false, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, false, err
	}

	artist.AddTag(tag)
	return artist, created, linked, nil
}

// importAlbums fetches the artist's top albums and creates each missing one in its own unit of work.
//
// A failed fetch leaves the artist imported with no new albums.
func (e *ImportEngine) importAlbums(ctx, txCtx context.Context, progress chan<- ProgressUpdate, logger *log.Logger, run artistRun) {
	artist := run.artist
	logger = shared.WithLogger(logger, "artist", artist.Name())

	remote, err := e.provider.TopAlbumsForArtist(ctx, artist.Name(), e.opts.AlbumLimit)
	if err != nil {
		run.result.AlbumsFetchError = err.Error()
		logger.Warn("no albums fetched", "err", err)
		return
	}
	if len(remote) == 0 {
		logger.Info("no albums found")
		return
	}
	if len(remote) > e.opts.AlbumLimit {
		remote = remote[:e.opts.AlbumLimit]
	}

	total := len(remote)
	for i, ra := range remote {
		if ctx.Err() != nil {
			return
		}

		res := e.importAlbum(txCtx, logger, artist, ra)
		run.result.Albums = append(run.result.Albums, res)
		e.sendProgress(progress, importAlbumUpdate(i+1, total, res))
	}
}

func (e *ImportEngine) importAlbum(ctx context.Context, logger *log.Logger, artist *models.Artist, ra services.Album) AlbumImportResult {
	res := AlbumImportResult{Title: ra.Title}

	if ra.Err != nil {
		res.fail(ra.Err)
		logger.Error("failed to import album", "album", ra.Title, "err", ra.Err)
		return res
	}

	if shared.IsBlank(ra.Title) {
		res.Status = StatusSkippedEmpty
		logger.Debug("skipping album with blank title")
		return res
	}

	if artist.HasAlbum(ra.Title) {
		res.Status = StatusExisting
		logger.Debug("album already exists", "album", ra.Title)
		return res
	}

	album := models.NewAlbum(0, artist.ID(), ra.Title, ra.MBID, ra.URL, ra.ImageURL)
	created, err := e.addAlbum(ctx, artist, album)
	if err != nil {
		res.fail(err)
		logger.Error("failed to import album", "album", ra.Title, "err", err)
		return res
	}

	if !created {
		res.Status = StatusExisting
		logger.Debug("album already exists", "album", ra.Title)
		return res
	}

	artist.AddAlbum(album)
	res.AlbumID = album.ID()
	res.Status = StatusImported
	return res
}

func (e *ImportEngine) addAlbum(ctx context.Context, artist *models.Artist, album *models.Album) (bool, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	created, err := tx.AddAlbumIfAbsent(ctx, artist, album)
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return created, nil
}
