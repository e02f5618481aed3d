// Package report — выгрузка подтверждённых заказов в Excel для
// администратора салона.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Spok95/barber-kiosk/internal/domain/catalog"
	"github.com/Spok95/barber-kiosk/internal/domain/orders"
)

var header = []string{
	"Data", "Serviço",
	"Corte", "Método", "Máquina", "Degradê", "Topo", "Laterais", "Acabamento",
	"Barba", "Altura", "Contorno",
}

// OrdersXLSX собирает книгу с одной строкой на заказ.
func OrdersXLSX(rows []orders.Order) (*excelize.File, error) {
	f := excelize.NewFile()

	const sheet = "Pedidos"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if def := f.GetSheetName(0); def != sheet {
		_ = f.DeleteSheet(def)
	}

	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, err
		}
	}

	for i, o := range rows {
		d := o.HaircutDetails
		bd := o.BeardDetails
		values := []any{
			o.CreatedAt.Format("02.01.2006 15:04"),
			string(o.ServiceType),
			catalog.LabelFor(catalog.TypeHairStyle, o.HaircutStyleID),
			catalog.LabelFor(catalog.TypeMethod, d.Method),
			catalog.LabelFor(catalog.TypeMachineHeight, d.MachineHeight),
			catalog.LabelFor(catalog.TypeFadeType, d.FadeType),
			catalog.LabelFor(catalog.TypeScissorHeight, d.ScissorHeight),
			catalog.LabelFor(catalog.TypeSideStyle, d.SideStyle),
			catalog.LabelFor(catalog.TypeFinishStyle, d.Finish),
			catalog.LabelFor(catalog.TypeBeardStyle, o.BeardStyleID),
			catalog.LabelFor(catalog.TypeBeardHeight, bd.Height),
			catalog.LabelFor(catalog.TypeBeardContour, bd.Contour),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("row %d: %w", i+2, err)
			}
		}
	}
	return f, nil
}
