package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type addSupplierRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Name       string `json:"name"       validate:"required"`
	Address    string `json:"address"`
	Contact    string `json:"contact"`
	LogoRef    string `json:"logoRef"`
	Notes      string `json:"notes"`
}

type supplierLinks struct {
	Self string `json:"self"`
}

type supplierResponse struct {
	Identifier string        `json:"identifier"`
	Formatted  string        `json:"formatted"`
	Name       string        `json:"name"`
	Address    string        `json:"address"`
	Contact    string        `json:"contact"`
	LogoRef    string        `json:"logoRef"`
	Notes      string        `json:"notes"`
	CreatedAt  time.Time     `json:"createdAt"`
	Links      supplierLinks `json:"_links"`
}

type listSuppliersResponse struct {
	Items []supplierResponse `json:"items"`
	Count int                `json:"count"`
}

type formatResponse struct {
	Input     string `json:"input"`
	Digits    string `json:"digits"`
	Formatted string `json:"formatted"`
	Complete  bool   `json:"complete"`
}
