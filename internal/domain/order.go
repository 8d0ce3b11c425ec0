package domain

// Order is the checkout confirmation returned by the server.
type Order struct {
	ID      int64  `json:"id"`
	Status  string `json:"status,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	ZipCode string `json:"zip_code,omitempty"`
}
