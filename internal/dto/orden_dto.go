package dto

// ItemOrdenRequest is either a catalog reference (producto_id) or a free line
// with explicit tipo, nombre and precio_unitario. Amounts are minor units.
type ItemOrdenRequest struct {
	ProductoID     *string `json:"producto_id"     validate:"omitempty,uuid"`
	Tipo           string  `json:"tipo"            validate:"omitempty,max=40"`
	Nombre         string  `json:"nombre"          validate:"omitempty,max=120"`
	Cantidad       int     `json:"cantidad"        validate:"required,min=1,max=10000"`
	PrecioUnitario *int64  `json:"precio_unitario" validate:"omitempty,min=0,max=10000000000000"`
	Notas          *string `json:"notas"           validate:"omitempty,max=255"`
}

type AgregarItemsRequest struct {
	Items []ItemOrdenRequest `json:"items" validate:"required,min=1,dive"`
}

type ItemOrdenResponse struct {
	ID             string  `json:"id"`
	Tipo           string  `json:"tipo"`
	Nombre         string  `json:"nombre"`
	Cantidad       int     `json:"cantidad"`
	PrecioUnitario int64   `json:"precio_unitario"`
	PrecioTotal    int64   `json:"precio_total"`
	ProductoID     *string `json:"producto_id"`
	Notas          *string `json:"notas"`
}

type OrdenResponse struct {
	ID         string              `json:"id"`
	NumeroMesa int                 `json:"numero_mesa"`
	Estado     string              `json:"estado"`
	Total      int64               `json:"total"`
	Items      []ItemOrdenResponse `json:"items"`
	CreatedAt  string              `json:"created_at"`
	ClosedAt   *string             `json:"closed_at"`
}
