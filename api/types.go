package api

// StatsResponse is the queue snapshot returned by the stats routes.
type StatsResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Tasks          int    `json:"tasks"`
	Pending        int    `json:"pending"`
	Active         int    `json:"active"`
	Concurrency    int    `json:"concurrency"`
	ActivitySignal bool   `json:"activity_signal"`
	Suspended      bool   `json:"suspended"`
	Closed         bool   `json:"closed"`
}
