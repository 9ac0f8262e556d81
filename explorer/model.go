package explorer

// Types for the REST API.
type resultSummary struct {
	ID      string `json:"id"`
	Rows    int    `json:"rows"`
	Cols    int    `json:"cols"`
	Dims    int    `json:"dims,omitempty"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Created string `json:"created"`
}

type resultListResponse struct {
	Results []resultSummary `json:"results"`
}

type resultDetailResponse struct {
	ID               string    `json:"id"`
	Status           string    `json:"status"`
	Error            string    `json:"error,omitempty"`
	RowNames         []string  `json:"rowNames,omitempty"`
	ColNames         []string  `json:"colNames,omitempty"`
	DimLabels        []string  `json:"dimLabels,omitempty"`
	SingularValues   []float64 `json:"singularValues,omitempty"`
	RowMasses        []float64 `json:"rowMasses,omitempty"`
	ColMasses        []float64 `json:"colMasses,omitempty"`
	TotInertia       float64   `json:"totInertia"`
	ExplainedInertia []float64 `json:"explainedInertia,omitempty"`
}

type coordinatesResponse struct {
	ID        string      `json:"id"`
	Kind      string      `json:"kind"`
	Axis      string      `json:"axis"`
	Names     []string    `json:"names"`
	DimLabels []string    `json:"dimLabels"`
	Coords    [][]float64 `json:"coords"`
}

type dimsResponse struct {
	ID     string `json:"id"`
	Method string `json:"method"`
	Dims   int    `json:"dims"`
}
