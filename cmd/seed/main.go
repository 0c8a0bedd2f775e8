package main

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"opt-shop/internal/cache"
	"opt-shop/internal/config"
	"opt-shop/internal/dto"
	"opt-shop/internal/logger"
	"opt-shop/internal/model"
	"opt-shop/internal/repository"
	"opt-shop/internal/service"
)

const (
	demoEmail    = "supplier@opt-shop.local"
	demoPassword = "demo12345"
)

type sampleGood struct {
	name        string
	category    string
	subcategory string
	price       float64
	unit        string
	moq         int
	stock       int
}

var samples = []sampleGood{
	{"Борошно пшеничне вищого ґатунку", "Продукти харчування", "Бакалія", 18.5, "кг", 50, 2000},
	{"Олія соняшникова рафінована", "Продукти харчування", "Олії", 62, "л", 20, 800},
	{"Цукор білий кристалічний", "Продукти харчування", "Бакалія", 27.9, "кг", 100, 5000},
	{"Рукавички робочі х/б", "Товари для дому", "Господарські товари", 14, "пара", 200, 10000},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.Environment, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := repository.Connect(ctx, cfg.MongoURI, cfg.DBConnectTimeout)
	if err != nil {
		log.WithError(err).Fatal("mongo unavailable")
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDBName)

	if err := repository.EnsureIndexes(ctx, db); err != nil {
		log.WithError(err).Fatal("failed to create indexes")
	}

	users := repository.NewMongoUserRepository(db)
	goods := service.NewGoodService(repository.NewMongoGoodRepository(db), users, cache.Noop{}, log)

	supplier, created, err := ensureSupplier(ctx, users)
	if err != nil {
		log.WithError(err).Fatal("failed to create demo supplier")
	}
	if !created {
		log.WithField("email", demoEmail).Info("demo supplier already exists, nothing to seed")
		return
	}

	for _, s := range samples {
		price, moq, stock := s.price, s.moq, s.stock
		g, err := goods.CreateGood(ctx, supplier.ID.Hex(), dto.CreateGoodRequest{
			Name:                 s.name,
			Category:             s.category,
			Subcategory:          s.subcategory,
			Price:                &price,
			Unit:                 s.unit,
			MinimumOrderQuantity: &moq,
			StockQuantity:        &stock,
		})
		if err != nil {
			log.WithError(err).WithField("good", s.name).Fatal("failed to create good")
		}
		log.WithFields(logrus.Fields{"id": g.ID.Hex(), "name": g.Name}).Info("good created")
	}

	log.WithFields(logrus.Fields{"email": demoEmail, "goods": len(samples)}).Info("seed complete")
}

func ensureSupplier(ctx context.Context, users *repository.MongoUserRepository) (*model.User, bool, error) {
	existing, err := users.FindByEmail(ctx, demoEmail)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, err
	}

	u := &model.User{Email: demoEmail, IsActive: true, IsVerified: true}
	if err := u.SetPassword(demoPassword); err != nil {
		return nil, false, err
	}
	u.CompanyName = "Демо Постачальник"
	u.Phone = "+380441234567"
	u.LegalForm = model.LegalFormLLC
	u.ContactPerson = &model.ContactPerson{FullName: "Іван Петренко", Position: "Менеджер з продажу", Phone: u.Phone}
	u.ProductCategories = []model.ProductCategory{
		{Name: "Продукти харчування", Subcategories: []string{"Бакалія", "Олії"}},
		{Name: "Товари для дому", Subcategories: []string{"Господарські товари"}},
	}

	if err := users.Create(ctx, u); err != nil {
		return nil, false, err
	}
	return u, true, nil
}
