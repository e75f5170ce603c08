package catalog

// Pokemon is one catalog row. Description doubles as the search and sort
// key; BaseTotal is the combined base stat.
type Pokemon struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
	BaseTotal   int    `json:"base_total"`
}
