package dto

// ProxyError is the error body of the provider-facing routes.
type ProxyError struct {
	Error   string `json:"error" example:"Plant.id response not JSON"`
	Status  int    `json:"status,omitempty" example:"503"`
	Body    string `json:"body,omitempty" example:"Service Unavailable"`
	Details string `json:"details,omitempty" example:"dial tcp: connection refused"`
}
