package types

// AzureKeyResponse is returned by GET /get-azure-key.
type AzureKeyResponse struct {
	Token  string `json:"token"`
	Region string `json:"region"`
}

// OpenAIKeyResponse is returned by GET /get-openai-key.
type OpenAIKeyResponse struct {
	APIKey string `json:"apiKey"`
}
