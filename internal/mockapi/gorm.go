package mockapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Shivansh-Raheja/admin-panel/internal/resource"
)

// RecordRow is the single table behind every collection. UniqueKey holds
// the value of the collection's unique field so MySQL enforces it.
type RecordRow struct {
	ID         int64             `gorm:"primaryKey;autoIncrement"`
	Collection string            `gorm:"type:varchar(64);not null;index:ix_records_collection;uniqueIndex:ux_records_collection_unique,priority:1"`
	UniqueKey  *string           `gorm:"type:varchar(191);uniqueIndex:ux_records_collection_unique,priority:2"`
	Data       datatypes.JSONMap `gorm:"type:json;not null"`
	CreatedAt  time.Time         `gorm:"type:datetime(3);not null"`
	UpdatedAt  time.Time         `gorm:"type:datetime(3);not null"`
}

func (RecordRow) TableName() string { return "records" }

// GormStore keeps records in MySQL. Ids are shared across collections.
type GormStore struct{ db *gorm.DB }

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

func (s *GormStore) List(ctx context.Context, collection string) ([]Row, error) {
	var rows []RecordRow
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toRow())
	}
	return out, nil
}

func (s *GormStore) Get(ctx context.Context, collection string, id int64) (Row, error) {
	r, err := s.find(s.db.WithContext(ctx), collection, id, false)
	if err != nil {
		return Row{}, err
	}
	return r.toRow(), nil
}

// lookup selects one record. With lock set the row stays locked until the
// surrounding transaction ends.
func lookup(tx *gorm.DB, collection string, id int64, lock bool) *gorm.DB {
	q := tx.Where("collection = ? AND id = ?", collection, id)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (s *GormStore) find(tx *gorm.DB, collection string, id int64, lock bool) (RecordRow, error) {
	var r RecordRow
	err := lookup(tx, collection, id, lock).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RecordRow{}, ErrNotFound
	}
	return r, err
}

func (s *GormStore) Create(ctx context.Context, collection string, data map[string]any, unique string) (Row, error) {
	now := time.Now()
	r := RecordRow{
		Collection: collection,
		UniqueKey:  uniqueKey(data, unique),
		Data:       datatypes.JSONMap(copyData(data)),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.db.WithContext(ctx).Create(&r).Error; err != nil {
		if isDup(err) {
			return Row{}, ErrDuplicate
		}
		return Row{}, err
	}
	return r.toRow(), nil
}

func (s *GormStore) Update(ctx context.Context, collection string, id int64, data map[string]any, unique string) (Row, error) {
	var out RecordRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := s.find(tx, collection, id, true)
		if err != nil {
			return err
		}
		merged := copyData(r.Data)
		for k, v := range data {
			merged[k] = v
		}
		r.Data = datatypes.JSONMap(merged)
		if unique != "" {
			r.UniqueKey = uniqueKey(merged, unique)
		}
		r.UpdatedAt = time.Now()
		if err := tx.Save(&r).Error; err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		if isDup(err) {
			return Row{}, ErrDuplicate
		}
		return Row{}, err
	}
	return out.toRow(), nil
}

func (s *GormStore) Delete(ctx context.Context, collection string, id int64) error {
	res := s.db.WithContext(ctx).Where("collection = ? AND id = ?", collection, id).Delete(&RecordRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r RecordRow) toRow() Row {
	return Row{ID: r.ID, Data: copyData(r.Data), CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

func uniqueKey(data map[string]any, unique string) *string {
	if unique == "" {
		return nil
	}
	v := resource.FormatScalar(data[unique])
	if v == "" {
		return nil
	}
	return &v
}

func isDup(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
