package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/lfx/internal/formatter"
	"github.com/desertthunder/lfx/internal/shared"
	"github.com/urfave/cli/v3"
)

// CatalogArtists lists artists in import order.
func (r *Runner) CatalogArtists(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.openCatalog()
	if err != nil {
		return err
	}

	tag := strings.TrimSpace(cmd.String("tag"))
	artists, err := catalog.ListArtists(ctx, tag)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(artists, true)
	}

	title := fmt.Sprintf("Artists (%d)", len(artists))
	if tag != "" {
		title = fmt.Sprintf("Artists tagged %q (%d)", tag, len(artists))
	}
	r.writePlainHeader(title)

	for i, artist := range artists {
		r.writePlain("%d. %s", i+1, artist.Name)
		if len(artist.Tags) > 0 {
			r.writePlain(" [%s]", strings.Join(artist.Tags, ", "))
		}
		r.writePlain(" %s\n", r.palette.Help(artist.ID))
	}
	return nil
}

// CatalogArtist shows one artist with its albums.
func (r *Runner) CatalogArtist(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.Args().First())
	if id == "" {
		return fmt.Errorf("%w: artist id is required", shared.ErrMissingArgument)
	}

	catalog, err := r.openCatalog()
	if err != nil {
		return err
	}

	artist, err := catalog.ArtistDetail(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(artist, true)
	}

	r.writePlainHeader(artist.Name)
	if artist.URL != "" {
		r.writePlain("URL:  %s\n", artist.URL)
	}
	if artist.MBID != "" {
		r.writePlain("MBID: %s\n", artist.MBID)
	}
	if len(artist.Tags) > 0 {
		r.writePlain("Tags: %s\n", strings.Join(artist.Tags, ", "))
	}

	r.writePlainln("Albums (%d):", len(artist.Albums))
	for i, album := range artist.Albums {
		r.writePlain("%d. %s\n", i+1, album.Title)
	}
	return nil
}

// CatalogTags lists tags with the number of linked artists.
func (r *Runner) CatalogTags(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.openCatalog()
	if err != nil {
		return err
	}

	tags, err := catalog.ListTags(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tags, true)
	}

	r.writePlainHeader(fmt.Sprintf("Tags (%d)", len(tags)))
	for _, tag := range tags {
		r.writePlain("%s %s\n", tag.Name, r.palette.Help(fmt.Sprintf("(%d artists)", tag.ArtistCount)))
	}
	return nil
}

// CatalogStats prints row counts.
func (r *Runner) CatalogStats(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.openCatalog()
	if err != nil {
		return err
	}

	stats, err := catalog.Stats(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	r.writePlainHeader("Catalog")
	r.writePlain("Artists:     %d\n", stats.Artists)
	r.writePlain("Albums:      %d\n", stats.Albums)
	r.writePlain("Tags:        %d\n", stats.Tags)
	r.writePlain("Artist tags: %d\n", stats.ArtistTags)
	return nil
}

// CatalogExport writes every artist with its albums to a file.
func (r *Runner) CatalogExport(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.openCatalog()
	if err != nil {
		return err
	}

	artists, err := catalog.ListArtistDetails(ctx)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(strings.ToLower(cmd.String("format")), artists, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("catalog exported", "path", path, "artists", len(artists))
	r.writePlain("%s %s\n", r.palette.OK("✓ Exported to"), path)
	return nil
}
