// consumer_stock_sync.go
package rabbit

import (
	"context"
	"encoding/json"
	"time"

	"opt-shop/internal/apperror"
	"opt-shop/internal/dto"

	"github.com/sirupsen/logrus"
)

const handleTimeout = 10 * time.Second

type StockSyncer interface {
	SyncStock(ctx context.Context, msg dto.StockSyncMessage) error
}

// StockSyncConsumer applies stock levels pushed by supplier ERP systems.
type StockSyncConsumer struct {
	svc StockSyncer
	log *logrus.Logger
}

func NewStockSyncConsumer(svc StockSyncer, log *logrus.Logger) *StockSyncConsumer {
	return &StockSyncConsumer{svc: svc, log: log}
}

func (c *StockSyncConsumer) Handle(msg []byte) error {
	var payload dto.StockSyncMessage
	if err := json.Unmarshal(msg, &payload); err != nil {
		c.log.WithError(err).Warn("malformed stock sync message")
		return apperror.Validation("malformed stock sync message")
	}
	if err := dto.Validate(payload); err != nil {
		c.log.WithError(err).Warn("invalid stock sync message")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	entry := c.log.WithFields(logrus.Fields{"goodId": payload.GoodID, "supplierId": payload.SupplierID})
	if err := c.svc.SyncStock(ctx, payload); err != nil {
		entry.WithError(err).Error("stock sync failed")
		return err
	}
	entry.Debug("stock sync applied")
	return nil
}
