// Package geometry loads the world boundary polygons drawn on the globe.
// Geometry is read once at start-up; only its projected path data changes
// per frame.
package geometry

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	geojson "github.com/paulmach/go.geojson"

	"github.com/ben-daghir/hercap/internal/config"
	"github.com/ben-daghir/hercap/internal/infrastructure/monitoring/logging"
	"github.com/ben-daghir/hercap/pkg/errors"
)

const maxGeometrySize = 32 << 20

// World is a set of land polygons in GeoJSON coordinate order: each polygon
// is a list of rings, each ring a list of [lng, lat] positions.
type World struct {
	Polygons [][][][]float64
}

// Empty reports whether there is nothing to draw.
func (w *World) Empty() bool { return w == nil || len(w.Polygons) == 0 }

// Parse reads a FeatureCollection, keeping Polygon and MultiPolygon
// geometries.  Other geometry types are ignored.  A bare Geometry document
// is accepted as well, and so is a TopoJSON topology such as world-atlas.
func Parse(data []byte) (*World, error) {
	world := &World{}
	if isTopology(data) {
		geoms, err := parseTopology(data)
		if err != nil {
			return nil, err
		}
		for _, g := range geoms {
			world.add(g)
		}
		return world, nil
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err == nil && len(fc.Features) > 0 {
		for _, f := range fc.Features {
			world.add(f.Geometry)
		}
		return world, nil
	}

	g, gerr := geojson.UnmarshalGeometry(data)
	if gerr != nil {
		if err == nil {
			err = gerr
		}
		return nil, errors.Wrap(err, errors.ErrCodeGeometryInvalid, "invalid world geometry")
	}
	world.add(g)
	return world, nil
}

func (w *World) add(g *geojson.Geometry) {
	if g == nil {
		return
	}
	switch {
	case g.IsPolygon():
		if len(g.Polygon) > 0 {
			w.Polygons = append(w.Polygons, g.Polygon)
		}
	case g.IsMultiPolygon():
		for _, p := range g.MultiPolygon {
			if len(p) > 0 {
				w.Polygons = append(w.Polygons, p)
			}
		}
	case g.IsCollection():
		for _, sub := range g.Geometries {
			w.add(sub)
		}
	}
}

// ObjectGetter is the slice of the object repository geometry loading needs.
type ObjectGetter interface {
	Get(ctx context.Context, objectKey string) ([]byte, error)
}

// Loader reads world geometry from the source named in GeometryConfig.
type Loader struct {
	cfg     config.GeometryConfig
	objects ObjectGetter
	client  *http.Client
	logger  logging.Logger
}

func NewLoader(cfg config.GeometryConfig, objects ObjectGetter, log logging.Logger) *Loader {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Loader{
		cfg:     cfg,
		objects: objects,
		client:  &http.Client{Timeout: 30 * time.Second},
		logger:  log.Named("geometry"),
	}
}

// Load returns the configured world.  Source "none" yields an empty world
// and the globe is drawn without land.
func (l *Loader) Load(ctx context.Context) (*World, error) {
	data, err := l.read(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return &World{}, nil
	}
	world, err := Parse(data)
	if err != nil {
		return nil, err
	}
	l.logger.Info("world geometry loaded",
		logging.String("source", l.cfg.Source),
		logging.Int("polygons", len(world.Polygons)))
	return world, nil
}

func (l *Loader) read(ctx context.Context) ([]byte, error) {
	switch l.cfg.Source {
	case "", "none":
		return nil, nil
	case "file":
		data, err := os.ReadFile(l.cfg.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrap(err, errors.ErrCodeGeometryNotFound, "geometry file not found").WithDetail(l.cfg.Path)
			}
			return nil, errors.Wrap(err, errors.ErrCodeGeometryLoadFailed, "read geometry file")
		}
		return data, nil
	case "http":
		return l.fetch(ctx)
	case "minio":
		if l.objects == nil {
			return nil, errors.New(errors.ErrCodeGeometryLoadFailed, "geometry source minio needs an object store")
		}
		data, err := l.objects.Get(ctx, l.cfg.Object)
		if err != nil {
			if errors.IsNotFound(err) {
				return nil, errors.Wrap(err, errors.ErrCodeGeometryNotFound, "geometry object not found").WithDetail(l.cfg.Object)
			}
			return nil, errors.Wrap(err, errors.ErrCodeGeometryLoadFailed, "read geometry object")
		}
		return data, nil
	}
	return nil, errors.New(errors.ErrCodeGeometryLoadFailed, "unknown geometry source: "+l.cfg.Source)
}

func (l *Loader) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.cfg.URL, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGeometryLoadFailed, "build geometry request")
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGeometryLoadFailed, "geometry request failed")
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.New(errors.ErrCodeGeometryNotFound, "geometry not found").WithDetail(l.cfg.URL)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New(errors.ErrCodeGeometryLoadFailed, "geometry request returned "+resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxGeometrySize))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGeometryLoadFailed, "read geometry body")
	}
	return data, nil
}

//Personal.AI order the ending
