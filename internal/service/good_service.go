// good_service.go
package service

import (
	"context"
	"errors"
	"sync/atomic"

	"opt-shop/internal/apperror"
	"opt-shop/internal/dto"
	"opt-shop/internal/model"
	"opt-shop/internal/repository"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const categoriesCacheKey = "categories"

// CategoryCache keeps distinct category lists between writes. Misses and
// cache errors fall through to the database.
type CategoryCache interface {
	Get(ctx context.Context, key string) ([]string, bool)
	Set(ctx context.Context, key string, values []string)
	Invalidate(ctx context.Context)
}

type GoodService struct {
	goods GoodRepository
	users UserRepository
	cache CategoryCache
	log   *logrus.Logger

	// cacheGen counts invalidations. A load that saw an older generation
	// does not write back.
	cacheGen atomic.Uint64
}

func NewGoodService(goods GoodRepository, users UserRepository, cache CategoryCache, log *logrus.Logger) *GoodService {
	return &GoodService{goods: goods, users: users, cache: cache, log: log}
}

type GoodList struct {
	Goods []*model.Good `json:"goods"`
	model.PageInfo
}

func (s *GoodService) CreateGood(ctx context.Context, supplierID string, req dto.CreateGoodRequest) (*model.Good, error) {
	if req.Supplier != "" && req.Supplier != supplierID {
		return nil, apperror.ErrForbidden
	}
	sid, err := parseID(supplierID, apperror.ErrSupplierNotFound)
	if err != nil {
		return nil, err
	}
	supplier, err := s.users.FindByID(ctx, sid)
	if err != nil {
		return nil, mapNotFound(err, apperror.ErrSupplierNotFound)
	}

	g := req.ToModel()
	g.Supplier = model.RefTo[model.UserSummary](sid)
	if err := s.goods.Create(ctx, g); err != nil {
		return nil, err
	}
	s.invalidateCategories(ctx)

	g.Supplier.Expand(supplier.Summary())
	s.log.WithFields(logrus.Fields{"goodId": g.ID.Hex(), "supplierId": supplierID}).Info("good created")
	return g, nil
}

func (s *GoodService) GetGoods(ctx context.Context, q dto.GoodsQuery) (*GoodList, error) {
	f := model.GoodFilter{
		Search:      q.Search,
		Category:    q.Category,
		Subcategory: q.Subcategory,
		MinPrice:    q.MinPrice,
		MaxPrice:    q.MaxPrice,
		InStock:     q.InStock,
		SortBy:      model.GoodSortField(q.SortBy),
		Ascending:   q.SortOrder == "asc",
		Pagination:  model.Pagination{Page: q.Page, Limit: q.Limit}.Normalize(),
	}
	if q.Supplier != "" {
		sid, err := primitive.ObjectIDFromHex(q.Supplier)
		if err != nil {
			return &GoodList{Goods: []*model.Good{}, PageInfo: model.NewPageInfo(f.Pagination, 0)}, nil
		}
		f.SupplierID = &sid
	}

	goods, total, err := s.goods.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.expandSuppliers(ctx, goods); err != nil {
		return nil, err
	}
	return &GoodList{Goods: goods, PageInfo: model.NewPageInfo(f.Pagination, total)}, nil
}

func (s *GoodService) GetGoodByID(ctx context.Context, id string) (*model.Good, error) {
	gid, err := parseID(id, apperror.ErrGoodNotFound)
	if err != nil {
		return nil, err
	}
	g, err := s.goods.FindActiveByID(ctx, gid)
	if err != nil {
		return nil, mapNotFound(err, apperror.ErrGoodNotFound)
	}
	if err := s.expandSuppliers(ctx, []*model.Good{g}); err != nil {
		return nil, err
	}
	return g, nil
}

// UpdateGood is restricted to the good's supplier. Soft-deleted goods are
// reported as not found.
func (s *GoodService) UpdateGood(ctx context.Context, id, supplierID string, req dto.UpdateGoodRequest) (*model.Good, error) {
	gid, sid, err := s.authorizeOwner(ctx, id, supplierID)
	if err != nil {
		return nil, err
	}
	g, err := s.goods.Update(ctx, gid, sid, req.ToModel())
	if err != nil {
		return nil, mapNotFound(err, apperror.ErrGoodNotFound)
	}
	if req.Category != nil || req.Subcategory != nil {
		s.invalidateCategories(ctx)
	}
	if err := s.expandSuppliers(ctx, []*model.Good{g}); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GoodService) DeleteGood(ctx context.Context, id, supplierID string) error {
	gid, sid, err := s.authorizeOwner(ctx, id, supplierID)
	if err != nil {
		return err
	}
	if err := s.goods.SoftDelete(ctx, gid, sid); err != nil {
		return mapNotFound(err, apperror.ErrGoodNotFound)
	}
	s.invalidateCategories(ctx)
	s.log.WithFields(logrus.Fields{"goodId": id, "supplierId": supplierID}).Info("good deactivated")
	return nil
}

func (s *GoodService) authorizeOwner(ctx context.Context, id, supplierID string) (primitive.ObjectID, primitive.ObjectID, error) {
	gid, err := parseID(id, apperror.ErrGoodNotFound)
	if err != nil {
		return gid, primitive.NilObjectID, err
	}
	g, err := s.goods.FindActiveByID(ctx, gid)
	if err != nil {
		return gid, primitive.NilObjectID, mapNotFound(err, apperror.ErrGoodNotFound)
	}
	if g.Supplier.ID.Hex() != supplierID {
		return gid, primitive.NilObjectID, apperror.ErrForbidden
	}
	return gid, g.Supplier.ID, nil
}

func (s *GoodService) GetCategories(ctx context.Context) ([]string, error) {
	return s.cached(ctx, categoriesCacheKey, s.goods.Categories)
}

func (s *GoodService) GetSubcategories(ctx context.Context, category string) ([]string, error) {
	return s.cached(ctx, "subcategories:"+category, func(ctx context.Context) ([]string, error) {
		return s.goods.Subcategories(ctx, category)
	})
}

func (s *GoodService) cached(ctx context.Context, key string, load func(context.Context) ([]string, error)) ([]string, error) {
	if values, ok := s.cache.Get(ctx, key); ok {
		return values, nil
	}
	gen := s.cacheGen.Load()
	values, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if s.cacheGen.Load() == gen {
		s.cache.Set(ctx, key, values)
	}
	return values, nil
}

func (s *GoodService) invalidateCategories(ctx context.Context) {
	s.cacheGen.Add(1)
	s.cache.Invalidate(ctx)
}

// SyncStock applies a stock update pushed by a supplier system. Only the
// good's own supplier can change it.
func (s *GoodService) SyncStock(ctx context.Context, msg dto.StockSyncMessage) error {
	gid, err := parseID(msg.GoodID, apperror.ErrGoodNotFound)
	if err != nil {
		return err
	}
	sid, err := parseID(msg.SupplierID, apperror.ErrSupplierNotFound)
	if err != nil {
		return err
	}
	if msg.StockQuantity == nil && msg.InStock == nil {
		return apperror.Validation("stockQuantity or inStock is required")
	}
	if err := s.goods.SetStock(ctx, gid, sid, msg.StockQuantity, msg.InStock); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Either the good is gone or it belongs to someone else.
			return apperror.ErrGoodNotFound
		}
		return err
	}
	s.log.WithFields(logrus.Fields{"goodId": msg.GoodID, "supplierId": msg.SupplierID}).Info("stock synced")
	return nil
}

func (s *GoodService) expandSuppliers(ctx context.Context, goods []*model.Good) error {
	ids := make([]primitive.ObjectID, 0, len(goods))
	for _, g := range goods {
		ids = append(ids, g.Supplier.ID)
	}
	users, err := s.users.FindByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return err
	}
	for _, g := range goods {
		if u, ok := users[g.Supplier.ID]; ok {
			g.Supplier.Expand(u.Summary())
		}
	}
	return nil
}
