package api

import (
	"context"

	apperrors "github.com/juancollazo-ch/crm-scheduled-jobs/internal/errors"
	"github.com/juancollazo-ch/crm-scheduled-jobs/internal/models"
)

// Hello ejecuta { hello }. Un campo hello nulo no es error.
func (c *GraphQLClient) Hello(ctx context.Context) (*models.HelloResponse, error) {
	var resp models.HelloResponse
	if err := c.Do(ctx, HelloQuery, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateLowStockProducts dispara el restock del lado del servidor
func (c *GraphQLClient) UpdateLowStockProducts(ctx context.Context) (*models.LowStockUpdate, error) {
	var resp models.LowStockResponse
	if err := c.Do(ctx, LowStockMutation, nil, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate(); err != nil {
		return nil, apperrors.ErrPayload("", err)
	}
	return resp.UpdateLowStockProducts, nil
}

// FetchReportData trae todos los clientes y órdenes para el reporte
func (c *GraphQLClient) FetchReportData(ctx context.Context) (*models.ReportData, error) {
	var resp models.ReportData
	if err := c.Do(ctx, ReportQuery, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
