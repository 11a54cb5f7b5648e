package models

type SimulationRequest struct {
	Season int     `json:"season" validate:"required,gte=1985,lte=2100"`
	Runs   int     `json:"runs" validate:"omitempty,min=1,max=100000"`
	Seed   *uint64 `json:"seed,omitempty"`
}

type SimulationAccepted struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}
