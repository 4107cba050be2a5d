package ortho

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/geosolve/geotools/logging"
	"github.com/geosolve/geotools/rimage"
	"github.com/geosolve/geotools/rimage/transform"
	"github.com/geosolve/geotools/utils"
)

// Source is one camera of a solution together with its image.
type Source struct {
	Name  string
	View  transform.View
	Image *rimage.Image
}

// Pair is a set of correspondences between two sources, indexed into the source list.
type Pair struct {
	CamA, CamB int
	ObsA, ObsB []transform.Pixel
}

// Options configures Orthorectify.
type Options struct {
	// GSD is the tile ground sample distance. Zero uses the native resolution of the first camera.
	GSD float64
	// Elevation of the flat terrain every pixel is projected through.
	Elevation float64
	// Overlays adds camera traces, labels and correspondences on top of the imagery.
	Overlays bool
}

// FootprintsRect bounds the ground footprints of every view.
func FootprintsRect(views []transform.View, elevation float64) (WorldRect, error) {
	if len(views) == 0 {
		return WorldRect{}, errors.New("cannot bound an empty point set")
	}
	var rect WorldRect
	for i, v := range views {
		fp, err := v.Footprint(elevation)
		if err != nil {
			return WorldRect{}, errors.Wrapf(err, "camera %d", i)
		}
		r, err := NewWorldRect(fp[:])
		if err != nil {
			return WorldRect{}, errors.Wrapf(err, "camera %d", i)
		}
		if i == 0 {
			rect = r
			continue
		}
		rect = rect.Union(r)
	}
	return rect, nil
}

// Orthorectify builds a tile covering every source and composites, in order, one projection
// layer per source followed by the optional overlays.
func Orthorectify(
	ctx context.Context,
	logger logging.Logger,
	sources []Source,
	pairs []Pair,
	opts Options,
) (*Tile, error) {
	if len(sources) == 0 {
		return nil, errors.New("no cameras to orthorectify")
	}
	views := make([]transform.View, len(sources))
	for i, s := range sources {
		views[i] = s.View
	}

	rect, err := FootprintsRect(views, opts.Elevation)
	if err != nil {
		return nil, err
	}
	gsd := opts.GSD
	if gsd == 0 {
		first := views[0]
		gsd = NativeGSD(first.Internal.PixelSize, first.Internal.Focal, first.External[2]-opts.Elevation)
	}
	g, err := NewTileGeometry(rect, gsd)
	if err != nil {
		return nil, err
	}
	logger.Infow("tile geometry", "rows", g.Rows, "cols", g.Cols, "gsd", g.GSD,
		"origin_x", g.Origin.X, "origin_y", g.Origin.Y)

	// cameras project independently; compositing below keeps the source order
	layers := make([]*Layer, len(sources))
	stats := make([]ProjectionStats, len(sources))
	projections := make([]utils.SimpleFunc, len(sources))
	for i, s := range sources {
		i, s := i, s
		projections[i] = func(ctx context.Context) error {
			layer, st, err := ProjectCamera(ctx, g, s.Image, s.View, opts.Elevation, s.Name)
			if err != nil {
				return errors.Wrapf(err, "cannot project %s", s.Name)
			}
			layers[i], stats[i] = layer, st
			return nil
		}
	}
	elapsed, err := utils.RunInParallel(ctx, projections)
	if err != nil {
		return nil, err
	}
	logger.Debugw("cameras projected", "cameras", len(sources), "elapsed", elapsed)

	tile := NewTile(g)
	for i, s := range sources {
		logger.With("camera", s.Name).Infow("projected camera",
			"written", stats[i].Written, "filtered", stats[i].Filtered)
		if err := tile.Composite(layers[i]); err != nil {
			return nil, err
		}
	}

	if !opts.Overlays {
		return tile, nil
	}
	overlays, err := overlayLayers(g, sources, pairs, opts.Elevation)
	if err != nil {
		return nil, err
	}
	if err := tile.Composite(overlays...); err != nil {
		return nil, err
	}
	return tile, nil
}

func overlayLayers(g TileGeometry, sources []Source, pairs []Pair, elevation float64) ([]*Layer, error) {
	palette := rimage.Palette(len(sources) + 1)
	var layers []*Layer
	for i, s := range sources {
		fp, err := s.View.Footprint(elevation)
		if err != nil {
			return nil, err
		}
		layers = append(layers,
			DrawCamTrace(g, fp, palette[i], fmt.Sprintf("trace %s", s.Name)),
			DrawLabel(g, s.Name, fp[0], palette[i]),
		)
	}
	for k, p := range pairs {
		if p.CamA < 0 || p.CamA >= len(sources) || p.CamB < 0 || p.CamB >= len(sources) {
			return nil, errors.Errorf("pair %d references cameras %d and %d but only %d are loaded",
				k, p.CamA, p.CamB, len(sources))
		}
		l, err := DrawObsPair(g, sources[p.CamA].View, sources[p.CamB].View, p.ObsA, p.ObsB,
			elevation, palette[len(sources)], fmt.Sprintf("pair %d", k))
		if err != nil {
			return nil, errors.Wrapf(err, "pair %d", k)
		}
		layers = append(layers, l)
	}
	// camera colored markers go last so they sit on top of the correspondence lines
	for k, p := range pairs {
		a, err := DrawObservations(g, sources[p.CamA].View, p.ObsA, elevation, palette[p.CamA],
			fmt.Sprintf("pair %d observations a", k))
		if err != nil {
			return nil, err
		}
		b, err := DrawObservations(g, sources[p.CamB].View, p.ObsB, elevation, palette[p.CamB],
			fmt.Sprintf("pair %d observations b", k))
		if err != nil {
			return nil, err
		}
		layers = append(layers, a, b)
	}
	return layers, nil
}
