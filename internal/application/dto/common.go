package dto

// DefaultLimit tamaño de página cuando la query no trae limit.
const DefaultLimit = 20

// PageRequest paginación de listados; la validan los handlers antes de consultar.
type PageRequest struct {
	Limit  int `query:"limit" json:"limit" validate:"min=1,max=100"`
	Offset int `query:"offset" json:"offset" validate:"gte=0"`
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
