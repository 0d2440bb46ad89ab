package handler

import (
	"github.com/providex/supplier-registry/internal/core/domain"
	"github.com/providex/supplier-registry/internal/core/ports"
	"github.com/providex/supplier-registry/pkg/cnpj"
)

// --- Request → Service input ---

func toAddInput(req addSupplierRequest) ports.AddSupplierInput {
	return ports.AddSupplierInput{
		Identifier: req.Identifier,
		Name:       req.Name,
		Address:    req.Address,
		Contact:    req.Contact,
		LogoRef:    req.LogoRef,
		Notes:      req.Notes,
	}
}

// --- Domain → Response ---

func toSupplierResponse(s domain.Supplier) supplierResponse {
	return supplierResponse{
		Identifier: s.Identifier,
		Formatted:  cnpj.Format(s.Identifier),
		Name:       s.Name,
		Address:    s.Address,
		Contact:    s.Contact,
		LogoRef:    s.LogoRef,
		Notes:      s.Notes,
		CreatedAt:  s.CreatedAt.UTC(),
		Links:      supplierLinks{Self: "/v1/suppliers/" + s.Identifier},
	}
}

func toListResponse(suppliers []domain.Supplier) listSuppliersResponse {
	items := make([]supplierResponse, 0, len(suppliers))
	for _, s := range suppliers {
		items = append(items, toSupplierResponse(s))
	}
	return listSuppliersResponse{Items: items, Count: len(items)}
}
