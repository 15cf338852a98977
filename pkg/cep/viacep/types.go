package viacep

// Address represents the response from the ViaCEP lookup API
type Address struct {
	CEP         string `json:"cep"`         // formatted, e.g. "01310-100"
	Logradouro  string `json:"logradouro"`  // street
	Complemento string `json:"complemento"` // complement
	Bairro      string `json:"bairro"`      // district
	Localidade  string `json:"localidade"`  // city
	UF          string `json:"uf"`          // state code
	IBGE        string `json:"ibge"`
	DDD         string `json:"ddd"`
	Erro        bool   `json:"erro,omitempty"` // true when the CEP does not exist
}
