package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/blogem/corpdata-hub/models"
	"github.com/blogem/corpdata-hub/repositories"
	"github.com/blogem/corpdata-hub/userctx"
)

// DataProxy mediates every read and write of the data collection. Each
// operation is audited before the store is touched. Failures are always
// *models.ActionError; store errors never escape unclassified.
type DataProxy interface {
	GetItem(ctx context.Context, id, clientID, sessionID string) (models.Item, error)
	SetItem(ctx context.Context, item models.Item, clientID, sessionID string) (models.Item, error)
	ListItems(ctx context.Context, clientID, sessionID string) ([]models.Item, error)
}

// dataProxy implements DataProxy interface
type dataProxy struct {
	items  repositories.ItemRepository
	audit  AuditLogger
	logger logrus.FieldLogger
}

// NewDataProxy creates a new data proxy
func NewDataProxy(items repositories.ItemRepository, audit AuditLogger, logger logrus.FieldLogger) DataProxy {
	return &dataProxy{
		items:  items,
		audit:  audit,
		logger: logger,
	}
}

// GetItem retrieves one item. An absent id is a 404, not an empty success.
func (p *dataProxy) GetItem(ctx context.Context, id, clientID, sessionID string) (models.Item, error) {
	p.audit.Record(ctx, clientID, sessionID, models.ActionGet, fmt.Sprintf("requested id: %s", id))

	item, err := p.items.Get(ctx, id)
	if errors.Is(err, repositories.ErrItemNotFound) {
		return nil, models.NewActionError(models.KindMissingID, models.StatusNotFound,
			"no item found with id '%s'", id)
	}
	if err != nil {
		return nil, p.storeError(ctx, "get", err)
	}

	return item, nil
}

// SetItem replaces the item stored under its id and returns the item exactly
// as it was received. Numbers are converted to exact decimals before writing.
func (p *dataProxy) SetItem(ctx context.Context, item models.Item, clientID, sessionID string) (models.Item, error) {
	p.audit.Record(ctx, clientID, sessionID, models.ActionSet, "data to modify: "+describe(item))

	id, err := item.ID()
	if err != nil {
		return nil, models.NewActionError(models.KindDataError, models.StatusBadRequest,
			"data type error, empty fields? detail: %v", err)
	}

	normalized, err := models.NormalizeItem(item)
	if err != nil {
		return nil, models.NewActionError(models.KindDataError, models.StatusBadRequest,
			"item cannot be stored: %v", err)
	}

	body, err := json.Marshal(normalized)
	if err != nil {
		return nil, models.NewActionError(models.KindDataError, models.StatusBadRequest,
			"item cannot be serialized: %v", err)
	}

	if err := p.items.Put(ctx, id, body); err != nil {
		if errors.Is(err, repositories.ErrPutNotApplied) {
			p.log(ctx).WithError(err).Warn("put reported no change")
			return nil, models.NewActionError(models.KindSetFailed, models.StatusServerErr,
				"the put operation did not report success")
		}
		return nil, p.storeError(ctx, "set", err)
	}

	return item, nil
}

// ListItems returns every stored item. There is no pagination.
func (p *dataProxy) ListItems(ctx context.Context, clientID, sessionID string) ([]models.Item, error) {
	p.audit.Record(ctx, clientID, sessionID, models.ActionList, "full listing requested")

	items, err := p.items.Scan(ctx)
	if errors.Is(err, repositories.ErrScanCorrupt) {
		p.log(ctx).WithError(err).Warn("scan returned unreadable data")
		return nil, models.NewActionError(models.KindScanFailed, models.StatusServerErr,
			"the scan operation did not return items")
	}
	if err != nil {
		return nil, p.storeError(ctx, "list", err)
	}
	if items == nil {
		items = []models.Item{}
	}

	return items, nil
}

// storeError converts a store failure, passing its message through
func (p *dataProxy) storeError(ctx context.Context, op string, err error) *models.ActionError {
	p.log(ctx).WithError(err).WithField("op", op).Error("store operation failed")
	return models.NewActionError(models.KindDBError, models.StatusServerErr, "%s", err.Error())
}

func (p *dataProxy) log(ctx context.Context) logrus.FieldLogger {
	return p.logger.WithFields(logrus.Fields(userctx.Fields(ctx)))
}

// describe renders an item for the audit trail
func describe(item models.Item) string {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Sprintf("%v", map[string]any(item))
	}
	return string(data)
}
