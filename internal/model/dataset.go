package model

// Dataset is the unit that moves between pipeline stages and is persisted
// across runs. It is owned exclusively by the current stage until handed off.
type Dataset struct {
	Hands   []*Hand
	Players map[string]*Player
}

// NewDataset allocates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{Players: make(map[string]*Player)}
}

// HandByID returns the hand with the given ID, or nil.
func (d *Dataset) HandByID(id string) *Hand {
	for _, h := range d.Hands {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// CollectAnomalies gathers the structural anomalies recorded on every hand.
func (d *Dataset) CollectAnomalies() []Anomaly {
	var out []Anomaly
	for _, h := range d.Hands {
		out = append(out, h.Anomalies...)
	}
	return out
}
