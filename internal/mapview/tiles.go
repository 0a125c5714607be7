package mapview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
	"github.com/rs/zerolog"
)

// DefaultTileURL is the OpenStreetMap raster tile template.
const DefaultTileURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

// TileConfig configures a TileProvider.
type TileConfig struct {
	URLTemplate string
	Attribution string
	SkipProbe   bool
	Timeout     time.Duration
}

// TileProvider is the process-wide tile source. EnsureReady probes one tile
// the first time it is called; later calls return the same outcome.
type TileProvider struct {
	cfg    TileConfig
	client *http.Client
	log    zerolog.Logger

	once sync.Once
	err  error
	done chan struct{}
}

// NewTileProvider creates a provider; nothing is fetched until EnsureReady.
func NewTileProvider(cfg TileConfig, logger zerolog.Logger) *TileProvider {
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = DefaultTileURL
	}
	if cfg.Attribution == "" {
		cfg.Attribution = "© OpenStreetMap contributors"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &TileProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		log:    logger.With().Str("component", "tiles").Logger(),
		done:   make(chan struct{}),
	}
}

// URLTemplate is the {z}/{x}/{y} template handed to the browser.
func (p *TileProvider) URLTemplate() string { return p.cfg.URLTemplate }

func (p *TileProvider) Attribution() string { return p.cfg.Attribution }

// TileURL expands the template for one tile.
func (p *TileProvider) TileURL(z, x, y uint32) string {
	return strings.NewReplacer(
		"{z}", strconv.FormatUint(uint64(z), 10),
		"{x}", strconv.FormatUint(uint64(x), 10),
		"{y}", strconv.FormatUint(uint64(y), 10),
	).Replace(p.cfg.URLTemplate)
}

// ProbeTile is the tile fetched by EnsureReady: the one covering the default
// centre at the default zoom.
func ProbeTile() maptile.Tile {
	return maptile.At(orb.Point{DefaultCenter.Lng, DefaultCenter.Lat}, maptile.Zoom(defaultZoom))
}

// EnsureReady performs the one-time readiness probe and returns its outcome.
func (p *TileProvider) EnsureReady(ctx context.Context) error {
	p.once.Do(func() {
		defer close(p.done)
		if p.cfg.SkipProbe {
			return
		}
		p.err = p.probe(ctx)
		if p.err != nil {
			p.log.Warn().Err(p.err).Msg("tile provider unavailable, using fallback view")
			return
		}
		p.log.Debug().Str("url", p.cfg.URLTemplate).Msg("tile provider ready")
	})
	return p.err
}

// Status reports loading until EnsureReady has finished.
func (p *TileProvider) Status() TileStatus {
	select {
	case <-p.done:
	default:
		return TilesLoading
	}
	if p.err != nil {
		return TilesFailed
	}
	return TilesReady
}

func (p *TileProvider) probe(ctx context.Context) error {
	t := ProbeTile()
	u := p.TileURL(uint32(t.Z), t.X, t.Y)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "bau-geo/1.0")
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe %s: %w", u, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("probe %s: status %d", u, resp.StatusCode)
	}
	return nil
}
