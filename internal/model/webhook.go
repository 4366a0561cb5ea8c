package model

// StatusWebhook maps a (project, status) pair to a notification URL.
// Registration is an upsert: one URL per pair.
type StatusWebhook struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Status    string `json:"status"`
	URL       string `json:"url"`
}
