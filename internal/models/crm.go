package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// HelloResponse es el campo data de la query { hello }
type HelloResponse struct {
	Hello *string `json:"hello"`
}

// Product es un registro de solo lectura devuelto por la mutación de restock.
// Ambos campos son obligatorios; Validate rechaza los ausentes.
type Product struct {
	Name  *string `json:"name"`
	Stock *int    `json:"stock"`
}

// LowStockUpdate es el payload de updateLowStockProducts.
// Los punteros permiten distinguir un campo ausente de uno vacío.
type LowStockUpdate struct {
	UpdatedProducts []Product `json:"updatedProducts"`
	Message         *string   `json:"message"`
}

type LowStockResponse struct {
	UpdateLowStockProducts *LowStockUpdate `json:"updateLowStockProducts"`
}

// Validate verifica que la respuesta tenga todas las claves que se van a loguear
func (r *LowStockResponse) Validate() error {
	switch {
	case r.UpdateLowStockProducts == nil:
		return errors.New("missing key updateLowStockProducts")
	case r.UpdateLowStockProducts.UpdatedProducts == nil:
		return errors.New("missing key updatedProducts")
	case r.UpdateLowStockProducts.Message == nil:
		return errors.New("missing key message")
	}
	for i, p := range r.UpdateLowStockProducts.UpdatedProducts {
		if p.Name == nil {
			return fmt.Errorf("missing key name in updatedProducts[%d]", i)
		}
		if p.Stock == nil {
			return fmt.Errorf("missing key stock in updatedProducts[%d]", i)
		}
	}
	return nil
}

type CustomerNode struct {
	ID string `json:"id"`
}

// OrderNode trae totalAmount como decimal serializado en string
type OrderNode struct {
	ID          string `json:"id"`
	TotalAmount string `json:"totalAmount"`
}

type CustomerEdge struct {
	Node CustomerNode `json:"node"`
}

type OrderEdge struct {
	Node *OrderNode `json:"node"`
}

// Edges es puntero: nil significa que la clave falta o vino en null
type CustomerConnection struct {
	Edges *[]CustomerEdge `json:"edges"`
}

type OrderConnection struct {
	Edges *[]OrderEdge `json:"edges"`
}

// ReportData es el campo data de la query del reporte
type ReportData struct {
	AllCustomers *CustomerConnection `json:"allCustomers"`
	AllOrders    *OrderConnection    `json:"allOrders"`
}

// ReportTotals son los agregados que se escriben en la línea del reporte
type ReportTotals struct {
	Customers int
	Orders    int
	Revenue   float64
}

// Totals cuenta clientes y órdenes y suma totalAmount. Un monto no numérico
// invalida todo el reporte.
func (r *ReportData) Totals() (ReportTotals, error) {
	if r.AllCustomers == nil {
		return ReportTotals{}, errors.New("missing key allCustomers")
	}
	if r.AllOrders == nil {
		return ReportTotals{}, errors.New("missing key allOrders")
	}
	if r.AllCustomers.Edges == nil {
		return ReportTotals{}, errors.New("missing key edges in allCustomers")
	}
	if r.AllOrders.Edges == nil {
		return ReportTotals{}, errors.New("missing key edges in allOrders")
	}

	orders := *r.AllOrders.Edges
	totals := ReportTotals{
		Customers: len(*r.AllCustomers.Edges),
		Orders:    len(orders),
	}
	for i, edge := range orders {
		if edge.Node == nil {
			return ReportTotals{}, fmt.Errorf("missing key node in allOrders.edges[%d]", i)
		}
		amount, err := strconv.ParseFloat(strings.TrimSpace(edge.Node.TotalAmount), 64)
		if err != nil {
			return ReportTotals{}, fmt.Errorf("invalid totalAmount %q for order %s", edge.Node.TotalAmount, edge.Node.ID)
		}
		totals.Revenue += amount
	}
	return totals, nil
}
