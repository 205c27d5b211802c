package dto

type CrearProductoRequest struct {
	Nombre      string  `json:"nombre"      validate:"required,min=2,max=120"`
	Descripcion *string `json:"descripcion" validate:"omitempty,max=500"`
	Tipo        string  `json:"tipo"        validate:"required,min=2,max=40"`
	Precio      int64   `json:"precio"      validate:"min=0,max=10000000000000"`
}

type ProductoResponse struct {
	ID          string  `json:"id"`
	Nombre      string  `json:"nombre"`
	Descripcion *string `json:"descripcion"`
	Tipo        string  `json:"tipo"`
	Precio      int64   `json:"precio"`
	Activo      bool    `json:"activo"`
}
