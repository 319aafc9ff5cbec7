package bands

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/codingWhat/drills/conf"
)

// DefaultRefYear stands in for the split year of bands that are still active.
const DefaultRefYear = 2022

// MetalBand maps the metal_bands table the queries below run against.
type MetalBand struct {
	ID       uint   `gorm:"primaryKey"`
	BandName string `gorm:"column:band_name;size:255;not null"`
	Fans     int    `gorm:"column:fans;not null;default:0"`
	Formed   int    `gorm:"column:formed"`
	Split    *int   `gorm:"column:split"`
	Origin   string `gorm:"column:origin;size:255"`
	Style    string `gorm:"column:style;size:255"`
}

func (MetalBand) TableName() string { return "metal_bands" }

type OriginFans struct {
	Origin string `gorm:"column:origin"`
	NbFans int64  `gorm:"column:nb_fans"`
}

type BandLifespan struct {
	BandName string `gorm:"column:band_name"`
	Lifespan int    `gorm:"column:lifespan"`
}

func Open(c conf.MySQL) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(c.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.WithMessage(err, "open mysql")
	}
	return db, nil
}

// RankOriginsByFans sums fans per country of origin, biggest first.
func RankOriginsByFans(ctx context.Context, db *gorm.DB) ([]OriginFans, error) {
	var ranks []OriginFans
	err := db.WithContext(ctx).
		Model(&MetalBand{}).
		Select("origin, SUM(fans) AS nb_fans").
		Group("origin").
		Order("nb_fans DESC").
		Scan(&ranks).Error
	if err != nil {
		return nil, errors.WithMessage(err, "rank origins")
	}
	return ranks, nil
}

// GlamRockLifespans lists Glam rock bands by how long they lasted, longest
// first. Bands without a split year count up to refYear.
func GlamRockLifespans(ctx context.Context, db *gorm.DB, refYear int) ([]BandLifespan, error) {
	if refYear <= 0 {
		refYear = DefaultRefYear
	}
	var spans []BandLifespan
	err := db.WithContext(ctx).
		Model(&MetalBand{}).
		Select("band_name, COALESCE(split, ?) - formed AS lifespan", refYear).
		Where("style LIKE ?", "%Glam rock%").
		Order("lifespan DESC").
		Scan(&spans).Error
	if err != nil {
		return nil, errors.WithMessage(err, "glam rock lifespans")
	}
	return spans, nil
}
