package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/baustructura/bau-geo/internal/export"
	"github.com/baustructura/bau-geo/internal/marker"
)

// RouteSnapshot is the relational row of a snapshot.
type RouteSnapshot struct {
	RouteID        string         `gorm:"primaryKey;size:64"`
	Name           string         `gorm:"size:200"`
	Markers        datatypes.JSON `gorm:"not null"`
	Geometry       string         `gorm:"type:text"` // WKT, lng/lat
	MarkerCount    int
	DistanceMeters float64
	SavedAt        time.Time `gorm:"index"`
}

func (RouteSnapshot) TableName() string { return "route_snapshots" }

// GormBackend stores snapshots through GORM on SQLite or Postgres.
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend migrates the schema on db.
func NewGormBackend(db *gorm.DB) (*GormBackend, error) {
	if err := db.AutoMigrate(&RouteSnapshot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate route_snapshots: %w", err)
	}
	return &GormBackend{db: db}, nil
}

// OpenSQLite opens a pure Go SQLite database at path.
func OpenSQLite(path string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

// OpenPostgres connects to Postgres with a libpq style or URL DSN.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

func toRow(snap Snapshot) (RouteSnapshot, error) {
	markers, err := json.Marshal(snap.Markers)
	if err != nil {
		return RouteSnapshot{}, err
	}
	geometry, err := export.WKT(snap.Markers)
	if err != nil {
		return RouteSnapshot{}, fmt.Errorf("route geometry of %s: %w", snap.RouteID, err)
	}
	return RouteSnapshot{
		RouteID:        snap.RouteID,
		Name:           snap.Name,
		Markers:        datatypes.JSON(markers),
		Geometry:       geometry,
		MarkerCount:    len(snap.Markers),
		DistanceMeters: snap.DistanceMeters,
		SavedAt:        snap.SavedAt,
	}, nil
}

func (r RouteSnapshot) snapshot() (Snapshot, error) {
	snap := Snapshot{
		RouteID:        r.RouteID,
		Name:           r.Name,
		Markers:        []marker.Marker{},
		DistanceMeters: r.DistanceMeters,
		SavedAt:        r.SavedAt.UTC(),
	}
	if err := json.Unmarshal(r.Markers, &snap.Markers); err != nil {
		return Snapshot{}, fmt.Errorf("decode markers of %s: %w", r.RouteID, err)
	}
	return snap, nil
}

func (b *GormBackend) Save(ctx context.Context, snap Snapshot) error {
	snap, err := normalize(snap)
	if err != nil {
		return err
	}
	row, err := toRow(snap)
	if err != nil {
		return err
	}
	err = b.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", snap.RouteID, err)
	}
	return nil
}

func (b *GormBackend) Load(ctx context.Context, routeID string) (Snapshot, error) {
	if err := ValidateID(routeID); err != nil {
		return Snapshot{}, err
	}
	var row RouteSnapshot
	err := b.db.WithContext(ctx).First(&row, "route_id = ?", routeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, routeID)
	}
	if err != nil {
		return Snapshot{}, err
	}
	return row.snapshot()
}

func (b *GormBackend) List(ctx context.Context) ([]Info, error) {
	var rows []RouteSnapshot
	err := b.db.WithContext(ctx).
		Select("route_id", "name", "marker_count", "distance_meters", "saved_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	infos := make([]Info, 0, len(rows))
	for _, r := range rows {
		infos = append(infos, Info{
			RouteID:        r.RouteID,
			Name:           r.Name,
			MarkerCount:    r.MarkerCount,
			DistanceMeters: r.DistanceMeters,
			SavedAt:        r.SavedAt.UTC(),
		})
	}
	sortInfos(infos)
	return infos, nil
}

func (b *GormBackend) Delete(ctx context.Context, routeID string) error {
	if err := ValidateID(routeID); err != nil {
		return err
	}
	res := b.db.WithContext(ctx).Delete(&RouteSnapshot{}, "route_id = ?", routeID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, routeID)
	}
	return nil
}

func (b *GormBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
