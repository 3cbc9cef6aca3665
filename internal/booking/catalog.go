package booking

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/naveenspark/consultly/pkg/domain"
)

// Catalog loads the bookable services.
type Catalog struct {
	api    CatalogAPI
	logger *zap.Logger
}

func NewCatalog(api CatalogAPI, logger *zap.Logger) *Catalog {
	return &Catalog{api: api, logger: logger}
}

// Load issues one read for all services. An empty catalog is not an error.
func (c *Catalog) Load(ctx context.Context) ([]domain.Service, error) {
	services, err := c.api.ListServices(ctx)
	if err != nil {
		c.logger.Error("load services", zap.Error(err))
		return nil, fmt.Errorf("booking.Catalog.Load: %w", err)
	}
	c.logger.Debug("services loaded", zap.Int("count", len(services)))
	return services, nil
}
