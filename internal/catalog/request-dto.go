package catalog

type UpdatePriceRequest struct {
	Price *float64 `json:"price" validate:"required,gte=0"`
}
